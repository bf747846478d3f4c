package world

import (
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"

	"github.com/zeusync/worldcore/internal/core/entity"
)

// directory indexes live entities by ID and by name. Both indexes are hash
// sharded so lookups from many gateway goroutines rarely contend.
type directory struct {
	shards []dirShard
}

type dirShard struct {
	mx     sync.RWMutex
	byID   map[uuid.UUID]*entity.Ref
	byName map[string]*entity.Ref
}

func newDirectory(shardCount int) *directory {
	if shardCount <= 0 {
		shardCount = 16
	}
	d := &directory{shards: make([]dirShard, shardCount)}
	for i := range d.shards {
		d.shards[i].byID = make(map[uuid.UUID]*entity.Ref)
		d.shards[i].byName = make(map[string]*entity.Ref)
	}
	return d
}

func (d *directory) shard(key string) *dirShard {
	return &d.shards[xxhash.Sum64String(key)%uint64(len(d.shards))]
}

// reserveName claims name for ref. Anonymous entities always succeed.
func (d *directory) reserveName(name string, ref *entity.Ref) bool {
	if name == "" {
		return true
	}
	sh := d.shard(name)
	sh.mx.Lock()
	defer sh.mx.Unlock()
	if _, taken := sh.byName[name]; taken {
		return false
	}
	sh.byName[name] = ref
	return true
}

func (d *directory) add(ref *entity.Ref) {
	sh := d.shard(ref.ID().String())
	sh.mx.Lock()
	sh.byID[ref.ID()] = ref
	sh.mx.Unlock()
}

func (d *directory) remove(ref *entity.Ref) {
	sh := d.shard(ref.ID().String())
	sh.mx.Lock()
	delete(sh.byID, ref.ID())
	sh.mx.Unlock()

	if ref.Name() == "" {
		return
	}
	sh = d.shard(ref.Name())
	sh.mx.Lock()
	if sh.byName[ref.Name()] == ref {
		delete(sh.byName, ref.Name())
	}
	sh.mx.Unlock()
}

func (d *directory) lookup(id uuid.UUID) (*entity.Ref, bool) {
	sh := d.shard(id.String())
	sh.mx.RLock()
	defer sh.mx.RUnlock()
	ref, ok := sh.byID[id]
	return ref, ok
}

func (d *directory) lookupName(name string) (*entity.Ref, bool) {
	sh := d.shard(name)
	sh.mx.RLock()
	defer sh.mx.RUnlock()
	ref, ok := sh.byName[name]
	return ref, ok
}

func (d *directory) all() []*entity.Ref {
	var out []*entity.Ref
	for i := range d.shards {
		sh := &d.shards[i]
		sh.mx.RLock()
		for _, ref := range sh.byID {
			out = append(out, ref)
		}
		sh.mx.RUnlock()
	}
	return out
}

func (d *directory) len() int {
	n := 0
	for i := range d.shards {
		sh := &d.shards[i]
		sh.mx.RLock()
		n += len(sh.byID)
		sh.mx.RUnlock()
	}
	return n
}
