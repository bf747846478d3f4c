package inventory

import (
	"context"
	"errors"

	"github.com/zeusync/worldcore/internal/core/entity"
)

var ErrNilEntity = errors.New("nil entity")

// Register attaches an inventory to ref. An optional Attribute overrides the
// empty default.
func Register(ctx context.Context, ref *entity.Ref, attrs ...Attribute) error {
	var args any
	if len(attrs) > 0 {
		args = attrs[0]
	}
	return entity.PutBehaviour(ctx, ref, Behaviour(), args)
}

// Unregister detaches the inventory and forgets its contents. Held entities
// keep their parent link until told otherwise.
func Unregister(ctx context.Context, ref *entity.Ref) error {
	return entity.RemoveBehaviour(ctx, ref, Key)
}

// AddEntity puts item at the front of ref's inventory. Duplicates are kept;
// a nil item is rejected with ErrNilEntity.
func AddEntity(ctx context.Context, ref, item *entity.Ref) error {
	_, err := entity.CallBehaviour(ctx, ref, Key, addEntity{item: item})
	return err
}

// RemoveEntity drops every occurrence of item and returns item. The result
// is the same whether or not item was held.
func RemoveEntity(ctx context.Context, ref, item *entity.Ref) (*entity.Ref, error) {
	v, err := entity.CallBehaviour(ctx, ref, Key, removeEntity{item: item})
	if err != nil {
		return nil, err
	}
	return v.(*entity.Ref), nil
}

func Get(ctx context.Context, ref *entity.Ref) (Attribute, error) {
	v, err := entity.CallBehaviour(ctx, ref, Key, getRequest{})
	if err != nil {
		return Attribute{}, err
	}
	return v.(Attribute), nil
}

func GetEntities(ctx context.Context, ref *entity.Ref) ([]*entity.Ref, error) {
	v, err := entity.CallBehaviour(ctx, ref, Key, getEntities{})
	if err != nil {
		return nil, err
	}
	return v.([]*entity.Ref), nil
}

// Notify asks ref to relay message to everything it holds. It returns at
// once; delivery to each held entity is independent and best effort.
func Notify(ref *entity.Ref, message entity.Event) {
	entity.Notify(ref, entity.Event{Key: Key, Payload: broadcast{message: message}})
}

// NotifyExcept is Notify skipping except, typically the originator.
func NotifyExcept(ref, except *entity.Ref, message entity.Event) {
	entity.Notify(ref, entity.Event{Key: Key, Payload: broadcast{message: message, except: except}})
}

// EntityDied tells ref that dead is gone. Applying it for an entity that is
// not held changes nothing.
func EntityDied(ref, dead *entity.Ref) {
	entity.Notify(ref, entity.Event{Key: Key, Payload: entity.Died{Ref: dead}})
}
