package entity

import (
	"fmt"

	"github.com/zeusync/worldcore/internal/core/observability/log"
)

// Context is the surface a behaviour sees while handling a message: the
// entity's identity, its logger and read/update access to every attribute
// the entity holds. It is only valid during the handler invocation.
type Context struct {
	actor *actor
}

func (c *Context) Self() *Ref { return c.actor.ref }

func (c *Context) Logger() log.Log { return c.actor.logger }

// Get returns the attribute stored under key or ErrNotFound.
func (c *Context) Get(key Key) (Attribute, error) {
	return c.actor.store.get(key)
}

// Put overwrites the attribute for attr's key. It fails with
// ErrNotRegistered if no behaviour owns that key.
func (c *Context) Put(attr Attribute) error {
	return c.actor.store.put(attr)
}

// Update replaces the attribute under key with transform's result.
func (c *Context) Update(key Key, transform func(Attribute) Attribute) error {
	return c.actor.store.update(key, transform)
}

// Keys lists the behaviours registered on the entity, in no particular order.
func (c *Context) Keys() []Key {
	return c.actor.store.keys()
}

// GetAs is Get with a type assertion to the concrete attribute type.
func GetAs[A Attribute](c *Context, key Key) (A, error) {
	var zero A
	attr, err := c.Get(key)
	if err != nil {
		return zero, err
	}
	typed, ok := attr.(A)
	if !ok {
		return zero, fmt.Errorf("%w: %T under %s", ErrInvalidAttribute, attr, key)
	}
	return typed, nil
}
