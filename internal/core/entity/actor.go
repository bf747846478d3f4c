package entity

import (
	"fmt"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"github.com/zeusync/worldcore/internal/core/observability/log"
)

type watch struct {
	ref *Ref
	key Key
}

// actor is the execution unit behind a Ref.
type actor struct {
	ref      *Ref
	store    *store
	watchers map[watch]struct{}
	logger   log.Log
	hooks    []func(*Ref, error)
	ctx      *Context
}

type options struct {
	name        string
	logger      log.Log
	callTimeout time.Duration
	hooks       []func(*Ref, error)
}

type Option func(*options)

func WithName(name string) Option {
	return func(o *options) { o.name = name }
}

func WithLogger(logger log.Log) Option {
	return func(o *options) { o.logger = logger }
}

// WithCallTimeout sets the wait applied to calls made with a context that
// has no deadline.
func WithCallTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.callTimeout = d
		}
	}
}

// WithTerminateHook registers fn to run on the entity goroutine after it
// terminated and its watchers were notified.
func WithTerminateHook(fn func(ref *Ref, reason error)) Option {
	return func(o *options) { o.hooks = append(o.hooks, fn) }
}

// Spawn starts an entity with an empty attribute store and behaviour registry.
func Spawn(opts ...Option) *Ref {
	o := options{callTimeout: DefaultCallTimeout}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = log.Provide()
	}

	ref := &Ref{
		id:          uuid.New(),
		name:        o.name,
		mailbox:     newMailbox(),
		done:        make(chan struct{}),
		callTimeout: o.callTimeout,
	}
	a := &actor{
		ref:      ref,
		store:    newStore(),
		watchers: make(map[watch]struct{}),
		logger:   o.logger.With(log.Stringer("entity", ref)),
		hooks:    o.hooks,
	}
	a.ctx = &Context{actor: a}

	go a.run()
	return ref
}

func (a *actor) run() {
	var reason error
	for {
		stop, err := a.handle(a.ref.mailbox.next())
		if stop {
			reason = err
			break
		}
	}
	a.terminate(reason)
}

// handle processes one envelope. A panic in a behaviour is turned into a
// termination reason; the in-flight caller is told the entity is gone.
func (a *actor) handle(env envelope) (stop bool, reason error) {
	defer func() {
		if r := recover(); r != nil {
			env.respond(nil, ErrUnreachable)
			stop, reason = true, &PanicError{Key: env.key, Value: r, Stack: debug.Stack()}
		}
	}()

	switch env.kind {
	case kindCall:
		a.call(env)
	case kindEvent:
		if err := a.event(env); err != nil {
			return true, err
		}
	case kindPut:
		env.respond(nil, a.put(env.behaviour, env.payload))
	case kindRemove:
		if _, ok := a.store.behaviour(env.key); !ok {
			env.respond(nil, fmt.Errorf("%w: %s", ErrNotRegistered, env.key))
			return false, nil
		}
		a.store.uninstall(env.key)
		a.logger.Debug("behaviour removed", log.String("behaviour", string(env.key)))
		env.respond(nil, nil)
	case kindHas:
		_, ok := a.store.behaviour(env.key)
		env.respond(ok, nil)
	case kindWatch:
		a.watchers[watch{ref: env.watcher, key: env.key}] = struct{}{}
	case kindUnwatch:
		delete(a.watchers, watch{ref: env.watcher, key: env.key})
	case kindStop:
		return true, nil
	}
	return false, nil
}

func (a *actor) call(env envelope) {
	b, ok := a.store.behaviour(env.key)
	if !ok {
		env.respond(nil, fmt.Errorf("%w: %s", ErrNotRegistered, env.key))
		return
	}
	attr, _ := a.store.get(env.key)
	reply, next, err := b.HandleCall(a.ctx, attr, env.payload)
	if err != nil {
		env.respond(nil, err)
		return
	}
	if err = a.commit(env.key, next); err != nil {
		env.respond(nil, err)
		return
	}
	env.respond(reply, nil)
}

func (a *actor) event(env envelope) error {
	b, ok := a.store.behaviour(env.key)
	if !ok {
		a.logger.Debug("event dropped",
			log.String("behaviour", string(env.key)),
			log.String("payload", fmt.Sprintf("%T", env.payload)),
		)
		return nil
	}
	attr, _ := a.store.get(env.key)
	next, err := b.HandleEvent(a.ctx, attr, env.payload)
	if err != nil {
		return fmt.Errorf("behaviour %q event %T: %w", env.key, env.payload, err)
	}
	return a.commit(env.key, next)
}

func (a *actor) put(b Behaviour, args any) error {
	if b == nil {
		return fmt.Errorf("%w: nil", ErrInvalidBehaviour)
	}
	if _, ok := a.store.behaviour(b.Key()); ok {
		return fmt.Errorf("%w: %s", ErrAlreadyRegistered, b.Key())
	}
	attr, err := b.Init(a.ctx, args)
	if err != nil {
		return fmt.Errorf("init %s: %w", b.Key(), err)
	}
	if attr == nil || attr.Key() != b.Key() {
		return fmt.Errorf("%w: %s initialised %T", ErrInvalidBehaviour, b.Key(), attr)
	}
	a.store.install(b, attr)
	a.logger.Debug("behaviour installed", log.String("behaviour", string(b.Key())))
	return nil
}

// commit stores next under key unless the handler removed its own
// behaviour meanwhile.
func (a *actor) commit(key Key, next Attribute) error {
	if _, ok := a.store.behaviour(key); !ok {
		return nil
	}
	if next == nil || next.Key() != key {
		return fmt.Errorf("%w: %s returned %T", ErrInvalidAttribute, key, next)
	}
	a.store.attributes[key] = next
	return nil
}

func (a *actor) terminate(reason error) {
	a.ref.reason = reason
	rest := a.ref.mailbox.close()
	close(a.ref.done)

	for _, env := range rest {
		switch env.kind {
		case kindWatch:
			Notify(env.watcher, Event{Key: env.key, Payload: Died{Ref: a.ref, Reason: reason}})
		default:
			env.respond(nil, ErrUnreachable)
		}
	}
	for w := range a.watchers {
		Notify(w.ref, Event{Key: w.key, Payload: Died{Ref: a.ref, Reason: reason}})
	}

	if reason != nil {
		fields := []log.Field{log.Error(reason)}
		if p, ok := reason.(*PanicError); ok {
			fields = append(fields, log.String("stack", string(p.Stack)))
		}
		a.logger.Error("entity terminated", fields...)
	} else {
		a.logger.Debug("entity stopped")
	}

	for _, hook := range a.hooks {
		hook(a.ref, reason)
	}
}
