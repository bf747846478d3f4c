package inventory

import (
	"slices"

	"github.com/zeusync/worldcore/internal/core/behaviours/parent"
	"github.com/zeusync/worldcore/internal/core/entity"
	"github.com/zeusync/worldcore/internal/core/observability/log"
	"github.com/zeusync/worldcore/pkg/sequence"
)

const Key entity.Key = "inventory"

// Attribute is the held entities, newest first. Slices are never modified
// in place and callers only ever receive copies.
type Attribute struct {
	Entities []*entity.Ref
}

func (Attribute) Key() entity.Key { return Key }

type (
	addEntity    struct{ item *entity.Ref }
	removeEntity struct{ item *entity.Ref }
	getRequest   struct{}
	getEntities  struct{}
	broadcast    struct {
		message entity.Event
		except  *entity.Ref
	}
)

type behaviour struct{}

// Behaviour returns the inventory behaviour.
func Behaviour() entity.Behaviour {
	return entity.Adapt[Attribute](behaviour{})
}

func (behaviour) Key() entity.Key { return Key }

// Init starts from an empty list unless args is an Attribute with entities.
// Seeded entities are watched like added ones but get no AddParent.
func (behaviour) Init(ctx *entity.Context, args any) (Attribute, error) {
	attr := Attribute{Entities: []*entity.Ref{}}
	a, ok := args.(Attribute)
	if !ok || a.Entities == nil {
		return attr, nil
	}
	if slices.Contains(a.Entities, nil) {
		return attr, ErrNilEntity
	}
	attr.Entities = slices.Clone(a.Entities)

	self := ctx.Self()
	seen := make(map[*entity.Ref]struct{}, len(attr.Entities))
	for _, ref := range attr.Entities {
		if _, dup := seen[ref]; dup {
			continue
		}
		seen[ref] = struct{}{}
		entity.Watch(ref, self, Key)
	}
	return attr, nil
}

func (behaviour) HandleCall(ctx *entity.Context, attr Attribute, req any) (any, Attribute, error) {
	switch r := req.(type) {
	case addEntity:
		if r.item == nil {
			return nil, attr, ErrNilEntity
		}
		self := ctx.Self()
		entity.Notify(r.item, entity.Event{Key: parent.Key, Payload: parent.AddParent{Parent: self}})
		entity.Watch(r.item, self, Key)

		next := make([]*entity.Ref, 0, len(attr.Entities)+1)
		next = append(next, r.item)
		next = append(next, attr.Entities...)
		ctx.Logger().Debug("entity added", log.Stringer("item", r.item), log.Int("count", len(next)))
		return nil, Attribute{Entities: next}, nil

	case removeEntity:
		self := ctx.Self()
		entity.Notify(r.item, entity.Event{Key: parent.Key, Payload: parent.RemoveParent{Parent: self}})
		entity.Unwatch(r.item, self, Key)

		next := without(attr.Entities, r.item)
		ctx.Logger().Debug("entity removed", log.Stringer("item", r.item), log.Int("count", len(next)))
		return r.item, Attribute{Entities: next}, nil

	// replies carry copies; the stored slice never leaves the entity
	case getRequest:
		return Attribute{Entities: slices.Clone(attr.Entities)}, attr, nil

	case getEntities:
		return slices.Clone(attr.Entities), attr, nil
	}
	return nil, attr, entity.ErrUnknownMessage
}

func (behaviour) HandleEvent(ctx *entity.Context, attr Attribute, ev any) (Attribute, error) {
	switch e := ev.(type) {
	case broadcast:
		sequence.From(attr.Entities).
			Filter(func(r *entity.Ref) bool { return r != e.except }).
			ForEach(func(r *entity.Ref) { entity.Notify(r, e.message) })
		return attr, nil

	case entity.Died:
		if !slices.Contains(attr.Entities, e.Ref) {
			return attr, nil
		}
		ctx.Logger().Debug("held entity died", log.Stringer("item", e.Ref), log.Error(e.Reason))
		return Attribute{Entities: without(attr.Entities, e.Ref)}, nil
	}
	return attr, entity.ErrUnknownMessage
}

// without drops every occurrence of drop.
func without(refs []*entity.Ref, drop *entity.Ref) []*entity.Ref {
	return sequence.From(refs).Filter(func(r *entity.Ref) bool { return r != drop }).Collect()
}
