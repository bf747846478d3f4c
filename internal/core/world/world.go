// Package world owns the set of live entities: it spawns them with the
// configured runtime options, indexes them by ID and name, announces their
// lifecycle on the event bus and stops them all on shutdown.
package world

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/zeusync/worldcore/internal/config"
	"github.com/zeusync/worldcore/internal/core/entity"
	"github.com/zeusync/worldcore/internal/core/events/bus"
	"github.com/zeusync/worldcore/internal/core/observability/log"
	"github.com/zeusync/worldcore/pkg/concurrent"
	"github.com/zeusync/worldcore/pkg/sequence"
)

// Lifecycle event types published on the bus. Event data is a Lifecycle.
const (
	EventSpawned    = "entity.spawned"
	EventTerminated = "entity.terminated"
)

type Lifecycle struct {
	Ref    *entity.Ref
	Reason error
}

type World struct {
	callTimeout time.Duration
	stopTimeout time.Duration
	logger      log.Log
	events      bus.EventBus
	dir         *directory

	// mx orders registrations against the snapshot taken by Stop
	mx      sync.RWMutex
	stopped bool
}

func New(cfg config.Config, logger log.Log, events bus.EventBus) *World {
	return &World{
		callTimeout: cfg.Entity.CallTimeout,
		stopTimeout: cfg.World.StopTimeout,
		logger:      logger.With(log.String("component", "world")),
		events:      events,
		dir:         newDirectory(cfg.World.DirectoryShards),
	}
}

// Spawn starts an entity. A non-empty name must be unique among live
// entities.
func (w *World) Spawn(name string) (*entity.Ref, error) {
	ref, err := w.register(name)
	if err != nil {
		return nil, err
	}
	w.publish(EventSpawned, Lifecycle{Ref: ref})
	return ref, nil
}

// register spawns and indexes an entity unless Stop has already taken its
// snapshot.
func (w *World) register(name string) (*entity.Ref, error) {
	w.mx.RLock()
	defer w.mx.RUnlock()
	if w.stopped {
		return nil, ErrWorldStopped
	}

	// the hook waits for ready so removal never overtakes registration
	ready := make(chan struct{})
	var registered atomic.Bool
	ref := entity.Spawn(
		entity.WithName(name),
		entity.WithLogger(w.logger),
		entity.WithCallTimeout(w.callTimeout),
		entity.WithTerminateHook(func(ref *entity.Ref, reason error) {
			<-ready
			if !registered.Load() {
				return
			}
			w.dir.remove(ref)
			w.publish(EventTerminated, Lifecycle{Ref: ref, Reason: reason})
		}),
	)
	defer close(ready)

	if !w.dir.reserveName(name, ref) {
		ref.Stop()
		return nil, fmt.Errorf("%w: %q", ErrNameTaken, name)
	}
	w.dir.add(ref)
	registered.Store(true)
	return ref, nil
}

func (w *World) Lookup(id uuid.UUID) (*entity.Ref, bool) {
	return w.dir.lookup(id)
}

func (w *World) LookupName(name string) (*entity.Ref, bool) {
	if name == "" {
		return nil, false
	}
	return w.dir.lookupName(name)
}

// Len returns the number of live entities.
func (w *World) Len() int {
	return w.dir.len()
}

func (w *World) Entities() []*entity.Ref {
	return w.dir.all()
}

func (w *World) Events() bus.EventBus {
	return w.events
}

// Stop refuses further spawns, stops every entity and waits until they have
// all terminated or ctx (bounded by the configured stop timeout) expires.
func (w *World) Stop(ctx context.Context) error {
	w.mx.Lock()
	w.stopped = true
	refs := w.dir.all()
	w.mx.Unlock()

	ctx, cancel := context.WithTimeout(ctx, w.stopTimeout)
	defer cancel()

	w.logger.Info("stopping world", log.Int("entities", len(refs)))

	return concurrent.Concurrent(sequence.From(refs), func(ref *entity.Ref) error {
		ref.Stop()
		select {
		case <-ref.Done():
			return nil
		case <-ctx.Done():
			return fmt.Errorf("stop %s: %w", ref, ctx.Err())
		}
	})
}

func (w *World) publish(typ string, data Lifecycle) {
	if w.events == nil {
		return
	}
	if err := w.events.Publish(bus.NewEvent(typ, "world", data)); err != nil {
		w.logger.Warn("lifecycle handler failed",
			log.String("event", typ),
			log.Stringer("entity", data.Ref),
			log.Error(err),
		)
	}
}
