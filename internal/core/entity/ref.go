package entity

import (
	"time"

	"github.com/google/uuid"
)

// DefaultCallTimeout bounds a call whose context carries no deadline.
const DefaultCallTimeout = 5 * time.Second

// Ref is the opaque handle to a spawned entity. It stays valid after the
// entity terminates; messages sent to a dead entity are rejected or dropped.
type Ref struct {
	id          uuid.UUID
	name        string
	mailbox     *mailbox
	done        chan struct{}
	reason      error
	callTimeout time.Duration
}

func (r *Ref) ID() uuid.UUID { return r.id }

func (r *Ref) Name() string { return r.name }

// Done is closed once the entity has terminated.
func (r *Ref) Done() <-chan struct{} { return r.done }

// Alive reports whether the entity is still running.
func (r *Ref) Alive() bool {
	select {
	case <-r.done:
		return false
	default:
		return true
	}
}

// Err returns the termination reason. It is nil while the entity runs and
// after a graceful Stop.
func (r *Ref) Err() error {
	select {
	case <-r.done:
		return r.reason
	default:
		return nil
	}
}

// Stop asks the entity to terminate after the messages already queued.
func (r *Ref) Stop() {
	r.mailbox.push(envelope{kind: kindStop})
}

func (r *Ref) String() string {
	if r == nil {
		return "<nil>"
	}
	id := r.id.String()[:8]
	if r.name == "" {
		return id
	}
	return r.name + "#" + id
}
