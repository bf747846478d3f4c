package world

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/zeusync/worldcore/internal/core/behaviours/inventory"
	"github.com/zeusync/worldcore/internal/core/behaviours/parent"
	"github.com/zeusync/worldcore/internal/core/entity"
	"github.com/zeusync/worldcore/internal/core/observability/log"
	"github.com/zeusync/worldcore/pkg/concurrent"
	"github.com/zeusync/worldcore/pkg/sequence"
)

// Blueprint is the initial layout of a world: rooms and the items they hold.
//
//	rooms:
//	  - name: hall
//	    items: [lamp, chest]
type Blueprint struct {
	Rooms []RoomSpec `yaml:"rooms"`
}

type RoomSpec struct {
	Name  string   `yaml:"name"`
	Items []string `yaml:"items,omitempty"`
}

func LoadBlueprint(r io.Reader) (*Blueprint, error) {
	var b Blueprint
	if err := yaml.NewDecoder(r).Decode(&b); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode blueprint: %w", err)
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return &b, nil
}

func LoadBlueprintFile(path string) (*Blueprint, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open blueprint: %w", err)
	}
	defer f.Close()
	return LoadBlueprint(f)
}

// Validate checks that every room and item has a name and that names are
// unique across the whole blueprint.
func (b *Blueprint) Validate() error {
	seen := make(map[string]struct{})
	claim := func(name string) error {
		if name == "" {
			return fmt.Errorf("%w: empty name", ErrInvalidBlueprint)
		}
		if _, dup := seen[name]; dup {
			return fmt.Errorf("%w: duplicate name %q", ErrInvalidBlueprint, name)
		}
		seen[name] = struct{}{}
		return nil
	}
	for _, room := range b.Rooms {
		if err := claim(room.Name); err != nil {
			return err
		}
		for _, item := range room.Items {
			if err := claim(item); err != nil {
				return err
			}
		}
	}
	return nil
}

// Apply builds the blueprint: every room gets an inventory, every item a
// parent link, and items are added to their room in listed order. Rooms are
// built concurrently.
func (w *World) Apply(ctx context.Context, b *Blueprint) error {
	if err := b.Validate(); err != nil {
		return err
	}
	return concurrent.Concurrent(sequence.From(b.Rooms), func(spec RoomSpec) error {
		return w.buildRoom(ctx, spec)
	})
}

func (w *World) buildRoom(ctx context.Context, spec RoomSpec) error {
	room, err := w.Spawn(spec.Name)
	if err != nil {
		return err
	}
	if err = inventory.Register(ctx, room); err != nil {
		return fmt.Errorf("room %s: %w", spec.Name, err)
	}
	for _, name := range spec.Items {
		item, err := w.spawnItem(ctx, name)
		if err != nil {
			return fmt.Errorf("room %s: %w", spec.Name, err)
		}
		if err = inventory.AddEntity(ctx, room, item); err != nil {
			return fmt.Errorf("room %s: add %s: %w", spec.Name, name, err)
		}
	}
	w.logger.Debug("room built", log.Stringer("room", room), log.Int("items", len(spec.Items)))
	return nil
}

func (w *World) spawnItem(ctx context.Context, name string) (*entity.Ref, error) {
	item, err := w.Spawn(name)
	if err != nil {
		return nil, err
	}
	if err = parent.Register(ctx, item); err != nil {
		return nil, fmt.Errorf("item %s: %w", name, err)
	}
	return item, nil
}
