package sync

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestShardedMutex_LockUnlock(t *testing.T) {
	m := NewShardedMutex()

	m.Lock("visitor-1")
	m.Unlock("visitor-1")

	m.Lock("")
	m.Unlock("")
}

func TestShardedMutex_SameKeySerializes(t *testing.T) {
	m := NewShardedMutex()
	counter := 0

	var wg sync.WaitGroup
	for range 100 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.With("visitor-1", func() { counter++ })
		}()
	}
	wg.Wait()

	assert.Equal(t, 100, counter)
}

func TestShardedMutex_ShardDistribution(t *testing.T) {
	m := NewShardedMutex()

	shards := make(map[int]bool)
	for range 64 {
		shards[m.shardFor(uuid.NewString())] = true
	}

	assert.GreaterOrEqual(t, len(shards), 8, "expected visitor ids to spread across shards")
	assert.Equal(t, m.shardFor("visitor-1"), m.shardFor("visitor-1"))
	assert.Equal(t, 0, m.shardFor(""))
}
