package entity

import "sync"

type envelopeKind uint8

const (
	kindCall envelopeKind = iota
	kindEvent
	kindPut
	kindRemove
	kindHas
	kindWatch
	kindUnwatch
	kindStop
)

type result struct {
	value any
	err   error
}

// envelope is one mailbox item. reply is non-nil for every kind a caller
// waits on and is buffered so the entity never blocks replying.
type envelope struct {
	kind      envelopeKind
	key       Key
	behaviour Behaviour
	payload   any
	watcher   *Ref
	reply     chan result
}

func (e envelope) respond(value any, err error) {
	if e.reply != nil {
		e.reply <- result{value: value, err: err}
	}
}

// mailbox is an unbounded FIFO. push never blocks, so event senders are never
// held up by a slow receiver.
type mailbox struct {
	mu     sync.Mutex
	items  []envelope
	signal chan struct{}
	closed bool
}

func newMailbox() *mailbox {
	return &mailbox{signal: make(chan struct{}, 1)}
}

// push reports false once the mailbox is closed.
func (m *mailbox) push(e envelope) bool {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return false
	}
	m.items = append(m.items, e)
	m.mu.Unlock()

	select {
	case m.signal <- struct{}{}:
	default:
	}
	return true
}

// next blocks until an envelope is available.
func (m *mailbox) next() envelope {
	for {
		m.mu.Lock()
		if len(m.items) > 0 {
			e := m.items[0]
			m.items[0] = envelope{}
			m.items = m.items[1:]
			m.mu.Unlock()
			return e
		}
		m.mu.Unlock()
		<-m.signal
	}
}

// close rejects further pushes and hands back whatever was still queued.
func (m *mailbox) close() []envelope {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	rest := m.items
	m.items = nil
	return rest
}

func (m *mailbox) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}
