// Package parent keeps the child side of containment: the containers an
// entity believes it is held by. Containers update it with AddParent and
// RemoveParent events; these are hints that may lag behind the container's
// own membership list.
package parent

import (
	"context"
	"slices"

	"github.com/zeusync/worldcore/internal/core/entity"
	"github.com/zeusync/worldcore/internal/core/observability/log"
	"github.com/zeusync/worldcore/pkg/sequence"
)

const Key entity.Key = "parent"

type Attribute struct {
	Parents []*entity.Ref
}

func (Attribute) Key() entity.Key { return Key }

// AddParent tells an entity that Parent now holds it.
type AddParent struct {
	Parent *entity.Ref
}

// RemoveParent tells an entity that Parent no longer holds it.
type RemoveParent struct {
	Parent *entity.Ref
}

type getRequest struct{}

type behaviour struct{}

// Behaviour returns the parent-link behaviour.
func Behaviour() entity.Behaviour {
	return entity.Adapt[Attribute](behaviour{})
}

func (behaviour) Key() entity.Key { return Key }

func (behaviour) Init(_ *entity.Context, args any) (Attribute, error) {
	attr := Attribute{Parents: []*entity.Ref{}}
	if a, ok := args.(Attribute); ok && a.Parents != nil {
		attr.Parents = slices.Clone(a.Parents)
	}
	return attr, nil
}

func (behaviour) HandleCall(_ *entity.Context, attr Attribute, req any) (any, Attribute, error) {
	switch req.(type) {
	case getRequest:
		return Attribute{Parents: slices.Clone(attr.Parents)}, attr, nil
	}
	return nil, attr, entity.ErrUnknownMessage
}

func (behaviour) HandleEvent(ctx *entity.Context, attr Attribute, ev any) (Attribute, error) {
	switch e := ev.(type) {
	case AddParent:
		if slices.Contains(attr.Parents, e.Parent) {
			return attr, nil
		}
		ctx.Logger().Debug("parent added", log.Stringer("parent", e.Parent))
		return Attribute{Parents: append([]*entity.Ref{e.Parent}, attr.Parents...)}, nil
	case RemoveParent:
		ctx.Logger().Debug("parent removed", log.Stringer("parent", e.Parent))
		return Attribute{Parents: without(attr.Parents, e.Parent)}, nil
	}
	return attr, entity.ErrUnknownMessage
}

func without(refs []*entity.Ref, drop *entity.Ref) []*entity.Ref {
	return sequence.From(refs).Filter(func(r *entity.Ref) bool { return r != drop }).Collect()
}

// Register attaches the behaviour to ref. An optional Attribute seeds it.
func Register(ctx context.Context, ref *entity.Ref, attrs ...Attribute) error {
	var args any
	if len(attrs) > 0 {
		args = attrs[0]
	}
	return entity.PutBehaviour(ctx, ref, Behaviour(), args)
}

func Unregister(ctx context.Context, ref *entity.Ref) error {
	return entity.RemoveBehaviour(ctx, ref, Key)
}

// Get returns the containers ref believes it is held by, newest first.
func Get(ctx context.Context, ref *entity.Ref) ([]*entity.Ref, error) {
	v, err := entity.CallBehaviour(ctx, ref, Key, getRequest{})
	if err != nil {
		return nil, err
	}
	return v.(Attribute).Parents, nil
}
