package inventory

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/worldcore/internal/core/behaviours/parent"
	"github.com/zeusync/worldcore/internal/core/entity"
	"github.com/zeusync/worldcore/internal/core/entity/entitytest"
	"github.com/zeusync/worldcore/internal/core/observability/log"
)

const listenKey entity.Key = "listen"

const window = 100 * time.Millisecond

func spawn(t *testing.T, name string) *entity.Ref {
	t.Helper()
	ref := entity.Spawn(entity.WithName(name), entity.WithLogger(log.NewNop()))
	t.Cleanup(ref.Stop)
	return ref
}

func spawnContainer(t *testing.T, name string) *entity.Ref {
	t.Helper()
	ref := spawn(t, name)
	require.NoError(t, Register(context.Background(), ref))
	return ref
}

func entities(t *testing.T, ref *entity.Ref) []*entity.Ref {
	t.Helper()
	out, err := GetEntities(context.Background(), ref)
	require.NoError(t, err)
	return out
}

func say(text string) entity.Event {
	return entity.Event{Key: listenKey, Payload: text}
}

func TestInit(t *testing.T) {
	ctx := context.Background()

	t.Run("defaults to empty", func(t *testing.T) {
		room := spawnContainer(t, "hall")
		attr, err := Get(ctx, room)
		require.NoError(t, err)
		assert.NotNil(t, attr.Entities)
		assert.Empty(t, attr.Entities)
	})

	t.Run("caller override", func(t *testing.T) {
		a := spawn(t, "a")
		room := spawn(t, "hall")
		require.NoError(t, Register(ctx, room, Attribute{Entities: []*entity.Ref{a}}))
		assert.Equal(t, []*entity.Ref{a}, entities(t, room))
	})

	t.Run("override rejects nil", func(t *testing.T) {
		room := spawn(t, "hall")
		err := Register(ctx, room, Attribute{Entities: []*entity.Ref{nil}})
		require.ErrorIs(t, err, ErrNilEntity)
	})

	t.Run("register twice", func(t *testing.T) {
		room := spawnContainer(t, "hall")
		require.ErrorIs(t, Register(ctx, room), entity.ErrAlreadyRegistered)
	})

	t.Run("unregister", func(t *testing.T) {
		room := spawnContainer(t, "hall")
		require.NoError(t, Unregister(ctx, room))
		_, err := GetEntities(ctx, room)
		require.ErrorIs(t, err, entity.ErrNotRegistered)
		require.ErrorIs(t, Unregister(ctx, room), entity.ErrNotRegistered)
	})
}

func TestAddEntityIsNewestFirst(t *testing.T) {
	ctx := context.Background()
	room := spawnContainer(t, "hall")
	a, b := spawn(t, "a"), spawn(t, "b")

	require.NoError(t, AddEntity(ctx, room, a))
	require.NoError(t, AddEntity(ctx, room, b))

	assert.Equal(t, []*entity.Ref{b, a}, entities(t, room))
}

func TestAddEntityKeepsDuplicates(t *testing.T) {
	ctx := context.Background()
	room := spawnContainer(t, "hall")
	a := spawn(t, "a")

	require.NoError(t, AddEntity(ctx, room, a))
	require.NoError(t, AddEntity(ctx, room, a))
	assert.Equal(t, []*entity.Ref{a, a}, entities(t, room))

	removed, err := RemoveEntity(ctx, room, a)
	require.NoError(t, err)
	assert.Same(t, a, removed)
	assert.Empty(t, entities(t, room))
}

func TestRemoveEntity(t *testing.T) {
	ctx := context.Background()

	t.Run("after add", func(t *testing.T) {
		room := spawnContainer(t, "hall")
		x, y := spawn(t, "x"), spawn(t, "y")
		require.NoError(t, AddEntity(ctx, room, y))
		require.NoError(t, AddEntity(ctx, room, x))

		removed, err := RemoveEntity(ctx, room, x)
		require.NoError(t, err)
		assert.Same(t, x, removed)
		assert.Equal(t, []*entity.Ref{y}, entities(t, room))
	})

	t.Run("never added", func(t *testing.T) {
		room := spawnContainer(t, "hall")
		a, x := spawn(t, "a"), spawn(t, "x")
		require.NoError(t, AddEntity(ctx, room, a))

		removed, err := RemoveEntity(ctx, room, x)
		require.NoError(t, err)
		assert.Same(t, x, removed)
		assert.Equal(t, []*entity.Ref{a}, entities(t, room))
	})

	t.Run("without inventory", func(t *testing.T) {
		room := spawn(t, "hall")
		_, err := RemoveEntity(ctx, room, spawn(t, "x"))
		require.ErrorIs(t, err, entity.ErrNotRegistered)
	})
}

func TestParentNotifications(t *testing.T) {
	ctx := context.Background()
	room := spawnContainer(t, "hall")
	item, probe := entitytest.Spawn(t, "lamp", parent.Key)

	require.NoError(t, AddEntity(ctx, room, item))
	assert.Equal(t, parent.AddParent{Parent: room}, probe.Next(t, time.Second))

	_, err := RemoveEntity(ctx, room, item)
	require.NoError(t, err)
	assert.Equal(t, parent.RemoveParent{Parent: room}, probe.Next(t, time.Second))
}

func TestParentLinkIsEventuallyConsistent(t *testing.T) {
	ctx := context.Background()
	room := spawnContainer(t, "hall")
	item := spawn(t, "lamp")
	require.NoError(t, parent.Register(ctx, item))

	require.NoError(t, AddEntity(ctx, room, item))
	require.Eventually(t, func() bool {
		parents, err := parent.Get(ctx, item)
		return err == nil && len(parents) == 1 && parents[0] == room
	}, time.Second, 5*time.Millisecond)

	_, err := RemoveEntity(ctx, room, item)
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		parents, err := parent.Get(ctx, item)
		return err == nil && len(parents) == 0
	}, time.Second, 5*time.Millisecond)
}

func TestNotify(t *testing.T) {
	ctx := context.Background()
	room := spawnContainer(t, "hall")
	a, probeA := entitytest.Spawn(t, "a", listenKey)
	b, probeB := entitytest.Spawn(t, "b", listenKey)
	require.NoError(t, AddEntity(ctx, room, a))
	require.NoError(t, AddEntity(ctx, room, b))

	Notify(room, say("hello"))

	assert.Equal(t, "hello", probeA.Next(t, time.Second))
	assert.Equal(t, "hello", probeB.Next(t, time.Second))
	probeA.ExpectNone(t, window)
	probeB.ExpectNone(t, window)
}

func TestNotifyExcept(t *testing.T) {
	ctx := context.Background()
	room := spawnContainer(t, "hall")
	a, probeA := entitytest.Spawn(t, "a", listenKey)
	b, probeB := entitytest.Spawn(t, "b", listenKey)
	require.NoError(t, AddEntity(ctx, room, a))
	require.NoError(t, AddEntity(ctx, room, b))

	NotifyExcept(room, b, say("psst"))

	assert.Equal(t, "psst", probeA.Next(t, time.Second))
	probeB.ExpectNone(t, window)
}

func TestNotifySkipsDeadReceivers(t *testing.T) {
	ctx := context.Background()
	room := spawnContainer(t, "hall")
	a, probeA := entitytest.Spawn(t, "a", listenKey)
	b := spawn(t, "b")
	require.NoError(t, AddEntity(ctx, room, a))
	require.NoError(t, AddEntity(ctx, room, b))

	b.Stop()
	<-b.Done()
	Notify(room, say("still here"))

	assert.Equal(t, "still here", probeA.Next(t, time.Second))
	assert.True(t, room.Alive())
}

func TestEntityDied(t *testing.T) {
	ctx := context.Background()
	room := spawnContainer(t, "hall")
	a, b := spawn(t, "a"), spawn(t, "b")
	require.NoError(t, AddEntity(ctx, room, a))
	require.NoError(t, AddEntity(ctx, room, b))

	EntityDied(room, b)
	assert.Equal(t, []*entity.Ref{a}, entities(t, room))

	EntityDied(room, b)
	assert.Equal(t, []*entity.Ref{a}, entities(t, room))
	assert.True(t, room.Alive())
}

func TestHeldEntityTerminationCleansUp(t *testing.T) {
	ctx := context.Background()
	room := spawnContainer(t, "hall")
	a, b := spawn(t, "a"), spawn(t, "b")
	require.NoError(t, AddEntity(ctx, room, a))
	require.NoError(t, AddEntity(ctx, room, b))

	b.Stop()

	require.Eventually(t, func() bool {
		got := entities(t, room)
		return len(got) == 1 && got[0] == a
	}, time.Second, 5*time.Millisecond)
}

func TestSeededEntityTerminationCleansUp(t *testing.T) {
	ctx := context.Background()
	a, b := spawn(t, "a"), spawn(t, "b")
	room := spawn(t, "hall")
	require.NoError(t, Register(ctx, room, Attribute{Entities: []*entity.Ref{b, a, b}}))

	b.Stop()
	<-b.Done()

	require.Eventually(t, func() bool {
		got := entities(t, room)
		return len(got) == 1 && got[0] == a
	}, time.Second, 5*time.Millisecond)
}

func TestSeededEntityGetsNoParentLink(t *testing.T) {
	ctx := context.Background()
	item, probe := entitytest.Spawn(t, "lamp", parent.Key)
	room := spawn(t, "hall")
	require.NoError(t, Register(ctx, room, Attribute{Entities: []*entity.Ref{item}}))

	probe.ExpectNone(t, window)
}

func TestAddingDeadEntityIsCleanedUp(t *testing.T) {
	ctx := context.Background()
	room := spawnContainer(t, "hall")
	ghost := spawn(t, "ghost")
	ghost.Stop()
	<-ghost.Done()

	require.NoError(t, AddEntity(ctx, room, ghost))
	require.Eventually(t, func() bool {
		return len(entities(t, room)) == 0
	}, time.Second, 5*time.Millisecond)
}

func TestConcurrentAddEntity(t *testing.T) {
	const n = 64
	ctx := context.Background()
	room := spawnContainer(t, "hall")

	items := make([]*entity.Ref, n)
	for i := range items {
		items[i] = spawn(t, fmt.Sprintf("item-%d", i))
	}

	var wg sync.WaitGroup
	for _, item := range items {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, AddEntity(ctx, room, item))
		}()
	}
	wg.Wait()

	got := entities(t, room)
	assert.Len(t, got, n)
	assert.ElementsMatch(t, items, got)
}

func TestAddEntityRejectsNil(t *testing.T) {
	ctx := context.Background()
	room := spawnContainer(t, "hall")

	require.ErrorIs(t, AddEntity(ctx, room, nil), ErrNilEntity)
	assert.Empty(t, entities(t, room))
	assert.True(t, room.Alive())
}

func TestRepliesAreCopies(t *testing.T) {
	ctx := context.Background()
	room := spawnContainer(t, "hall")
	a, b := spawn(t, "a"), spawn(t, "b")
	require.NoError(t, AddEntity(ctx, room, a))
	require.NoError(t, AddEntity(ctx, room, b))

	got := entities(t, room)
	got[0] = nil
	attr, err := Get(ctx, room)
	require.NoError(t, err)
	attr.Entities[1] = nil

	assert.Equal(t, []*entity.Ref{b, a}, entities(t, room))
	attr, err = Get(ctx, room)
	require.NoError(t, err)
	assert.Equal(t, []*entity.Ref{b, a}, attr.Entities)
}

func TestGetMatchesGetEntities(t *testing.T) {
	ctx := context.Background()
	room := spawnContainer(t, "hall")
	a, b := spawn(t, "a"), spawn(t, "b")
	require.NoError(t, AddEntity(ctx, room, a))
	require.NoError(t, AddEntity(ctx, room, b))

	attr, err := Get(ctx, room)
	require.NoError(t, err)
	assert.Equal(t, attr.Entities, entities(t, room))

	// a later add does not disturb the earlier snapshot
	require.NoError(t, AddEntity(ctx, room, spawn(t, "c")))
	assert.Equal(t, []*entity.Ref{b, a}, attr.Entities)
}

func TestRoomScenario(t *testing.T) {
	ctx := context.Background()
	room := spawnContainer(t, "room")
	alice, aliceProbe := entitytest.Spawn(t, "alice", listenKey)
	bob, bobProbe := entitytest.Spawn(t, "bob", listenKey)

	require.NoError(t, AddEntity(ctx, room, alice))
	require.NoError(t, AddEntity(ctx, room, bob))
	NotifyExcept(room, bob, say("bob enters"))

	assert.Equal(t, "bob enters", aliceProbe.Next(t, time.Second))
	bobProbe.ExpectNone(t, window)
	assert.Equal(t, []*entity.Ref{bob, alice}, entities(t, room))
}
