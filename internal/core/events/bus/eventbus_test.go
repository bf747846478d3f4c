package bus

import (
	"errors"
	"testing"
	"time"
)

func TestBasicPublishSubscribe(t *testing.T) {
	b := New()
	done := make(chan Event, 1)
	_, err := b.Subscribe("entity.spawned", func(e Event) error {
		done <- e
		return nil
	})
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	if err = b.Publish(NewEvent("entity.spawned", "world", "hall")); err != nil {
		t.Fatalf("publish: %v", err)
	}
	select {
	case e := <-done:
		if e.Data() != "hall" || e.Source() != "world" {
			t.Fatalf("unexpected event %#v", e)
		}
	case <-time.After(500 * time.Millisecond):
		t.Fatal("handler not called")
	}
}

func TestPublishOnlyMatchingType(t *testing.T) {
	b := New()
	count := 0
	_, _ = b.Subscribe("a", func(Event) error { count++; return nil })
	_ = b.Publish(NewEvent("b", "src", nil))
	if count != 0 {
		t.Fatalf("handler for a called on b: %d", count)
	}
}

func TestPublishJoinsErrors(t *testing.T) {
	b := New()
	e1, e2 := errors.New("one"), errors.New("two")
	_, _ = b.Subscribe("x", func(Event) error { return e1 })
	_, _ = b.Subscribe("x", func(Event) error { return e2 })
	err := b.Publish(NewEvent("x", "src", nil))
	if !errors.Is(err, e1) || !errors.Is(err, e2) {
		t.Fatalf("expected both errors, got %v", err)
	}
}

func TestPublishAsyncReturnsErrorChannel(t *testing.T) {
	b := New()
	handlerErr := errors.New("fail")
	_, err := b.Subscribe("x", func(e Event) error { return handlerErr })
	if err != nil {
		t.Fatalf("sub: %v", err)
	}
	if e := <-b.PublishAsync(NewEvent("x", "src", nil)); !errors.Is(e, handlerErr) {
		t.Fatalf("expected handler error, got %v", e)
	}
}

func TestUnsubscribe(t *testing.T) {
	b := New()
	count := 0
	sub, _ := b.Subscribe("x", func(Event) error { count++; return nil })
	if b.Subscribers("x") != 1 {
		t.Fatalf("expected one subscriber")
	}
	if err := b.Unsubscribe(sub); err != nil {
		t.Fatalf("unsubscribe: %v", err)
	}
	_ = sub.Cancel()
	_ = b.Unsubscribe(nil)
	_ = b.Publish(NewEvent("x", "src", nil))
	if count != 0 || sub.IsActive() || b.Subscribers("x") != 0 {
		t.Fatalf("subscription still active: count=%d", count)
	}
}

func TestSubscribeNilHandler(t *testing.T) {
	if _, err := New().Subscribe("x", nil); err == nil {
		t.Fatal("expected error for nil handler")
	}
}
