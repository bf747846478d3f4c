package entity

import "fmt"

// Key identifies an attribute type and the behaviour owning it.
type Key string

// Attribute is the state slice a behaviour owns on one entity.
type Attribute interface {
	Key() Key
}

// Event addresses a fire-and-forget payload to the behaviour owning Key.
type Event struct {
	Key     Key
	Payload any
}

// Behaviour is a stateless capability bound to one attribute key. All
// methods run on the owning entity's goroutine.
type Behaviour interface {
	Key() Key
	// Init produces the starting attribute. args is whatever the caller of
	// PutBehaviour supplied.
	Init(ctx *Context, args any) (Attribute, error)
	// HandleCall answers a synchronous request. A returned error is replied
	// to the caller and next is discarded.
	HandleCall(ctx *Context, attr Attribute, req any) (reply any, next Attribute, err error)
	// HandleEvent reacts to an event. A returned error terminates the entity.
	HandleEvent(ctx *Context, attr Attribute, ev any) (next Attribute, err error)
}

// Handler is the typed form of Behaviour; wrap it with Adapt.
type Handler[A Attribute] interface {
	Key() Key
	Init(ctx *Context, args any) (A, error)
	HandleCall(ctx *Context, attr A, req any) (any, A, error)
	HandleEvent(ctx *Context, attr A, ev any) (A, error)
}

// Adapt exposes a typed Handler as a Behaviour.
func Adapt[A Attribute](h Handler[A]) Behaviour {
	return adapter[A]{h: h}
}

type adapter[A Attribute] struct {
	h Handler[A]
}

func (a adapter[A]) Key() Key { return a.h.Key() }

func (a adapter[A]) Init(ctx *Context, args any) (Attribute, error) {
	attr, err := a.h.Init(ctx, args)
	if err != nil {
		return nil, err
	}
	return attr, nil
}

func (a adapter[A]) HandleCall(ctx *Context, attr Attribute, req any) (any, Attribute, error) {
	typed, err := a.cast(attr)
	if err != nil {
		return nil, nil, err
	}
	reply, next, err := a.h.HandleCall(ctx, typed, req)
	if err != nil {
		return nil, nil, err
	}
	return reply, next, nil
}

func (a adapter[A]) HandleEvent(ctx *Context, attr Attribute, ev any) (Attribute, error) {
	typed, err := a.cast(attr)
	if err != nil {
		return nil, err
	}
	next, err := a.h.HandleEvent(ctx, typed, ev)
	if err != nil {
		return nil, err
	}
	return next, nil
}

func (a adapter[A]) cast(attr Attribute) (A, error) {
	typed, ok := attr.(A)
	if !ok {
		var zero A
		return zero, fmt.Errorf("%w: %T for %q", ErrInvalidAttribute, attr, a.h.Key())
	}
	return typed, nil
}
