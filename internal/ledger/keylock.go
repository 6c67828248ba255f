package ledger

import (
	"hash/fnv"
	"sync"
)

// defaultShardCount bounds the number of mutexes regardless of how many
// book names exist. Collisions across unrelated names only serialize
// them, they never produce a wrong result.
const defaultShardCount = 64

// keyLocks is a fixed-size table of mutexes keyed by a hash of the
// book name. It gives each name an exclusive critical section without
// growing per-key state.
type keyLocks struct {
	shards []sync.Mutex
}

func newKeyLocks(n int) *keyLocks {
	if n <= 0 {
		n = defaultShardCount
	}
	return &keyLocks{shards: make([]sync.Mutex, n)}
}

// shard returns the mutex guarding the given name.
func (k *keyLocks) shard(name string) *sync.Mutex {
	h := fnv.New32a()
	_, _ = h.Write([]byte(name))
	return &k.shards[h.Sum32()%uint32(len(k.shards))]
}
