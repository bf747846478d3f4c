// Package entitytest provides test doubles for code built on package entity.
package entitytest

import (
	"context"
	"testing"
	"time"

	"github.com/zeusync/worldcore/internal/core/entity"
	"github.com/zeusync/worldcore/internal/core/observability/log"
)

// Probe is a behaviour that records every event it receives. Calls are
// recorded too and echoed back to the caller.
type Probe struct {
	key    entity.Key
	events chan any
}

type probeAttribute struct {
	key entity.Key
}

func (a probeAttribute) Key() entity.Key { return a.key }

func NewProbe(key entity.Key) *Probe {
	return &Probe{key: key, events: make(chan any, 1024)}
}

func (p *Probe) Key() entity.Key { return p.key }

func (p *Probe) Init(_ *entity.Context, _ any) (entity.Attribute, error) {
	return probeAttribute{key: p.key}, nil
}

func (p *Probe) HandleCall(_ *entity.Context, attr entity.Attribute, req any) (any, entity.Attribute, error) {
	p.events <- req
	return req, attr, nil
}

func (p *Probe) HandleEvent(_ *entity.Context, attr entity.Attribute, ev any) (entity.Attribute, error) {
	p.events <- ev
	return attr, nil
}

// Events exposes the recorded payloads in arrival order.
func (p *Probe) Events() <-chan any { return p.events }

// Next waits up to timeout for the next recorded payload.
func (p *Probe) Next(t testing.TB, timeout time.Duration) any {
	t.Helper()
	select {
	case ev := <-p.events:
		return ev
	case <-time.After(timeout):
		t.Fatalf("probe %s: no event within %s", p.key, timeout)
		return nil
	}
}

// ExpectNone fails if anything is recorded within window.
func (p *Probe) ExpectNone(t testing.TB, window time.Duration) {
	t.Helper()
	select {
	case ev := <-p.events:
		t.Fatalf("probe %s: unexpected event %#v", p.key, ev)
	case <-time.After(window):
	}
}

// Spawn starts an entity named name carrying a probe under key. The entity
// is stopped when the test ends.
func Spawn(t testing.TB, name string, key entity.Key) (*entity.Ref, *Probe) {
	t.Helper()
	ref := entity.Spawn(entity.WithName(name), entity.WithLogger(log.NewNop()))
	t.Cleanup(ref.Stop)

	probe := NewProbe(key)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := entity.PutBehaviour(ctx, ref, probe, nil); err != nil {
		t.Fatalf("install probe on %s: %v", name, err)
	}
	return ref, probe
}
