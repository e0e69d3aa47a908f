package addrbook

import (
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-ckbcrawler/internal/core/storage/engine"
	"github.com/dep2p/go-ckbcrawler/internal/core/storage/engine/badger"
	"github.com/dep2p/go-ckbcrawler/internal/core/storage/kv"
	"github.com/dep2p/go-ckbcrawler/pkg/types"
)

const (
	addrA = types.Multiaddr("/ip4/10.0.0.1/tcp/8114")
	addrB = types.Multiaddr("/ip4/10.0.0.2/tcp/8114")
	seed  = types.Multiaddr("/ip4/47.110.15.57/tcp/8114/p2p/QmXS4Kbc9HEeykHUTJCm2tNmqghbvWyYpUp6BtE5b6VrAU")
)

func TestBook_SeedsAndObserve(t *testing.T) {
	b := New([]types.Multiaddr{seed})

	n, ok := b.Count(seed)
	require.True(t, ok)
	assert.Equal(t, uint32(1), n)

	// 首次听说计为 1，之后递增
	assert.Equal(t, uint32(1), b.Observe(addrA))
	assert.Equal(t, uint32(2), b.Observe(addrA))
	assert.Equal(t, uint32(3), b.Observe(addrA))
	assert.Equal(t, 2, b.Len())

	_, ok = b.Count(addrB)
	assert.False(t, ok)
}

func TestBook_Confirm(t *testing.T) {
	b := New(nil)

	b.Observe(addrA)
	b.Observe(addrA)
	b.Confirm(addrA)
	n, _ := b.Count(addrA)
	assert.Equal(t, uint32(1), n)

	// 未知地址也会被插入
	b.Confirm(addrB)
	n, ok := b.Count(addrB)
	require.True(t, ok)
	assert.Equal(t, uint32(1), n)
}

func TestBook_TakeIfWitnessed(t *testing.T) {
	tests := []struct {
		name      string
		observe   int
		threshold uint32
		want      bool
		after     uint32
	}{
		{"below threshold", 2, 3, false, 2},
		{"at threshold", 3, 3, true, 0},
		{"above threshold", 5, 3, true, 0},
		{"threshold one", 1, 1, true, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := New(nil)
			for i := 0; i < tt.observe; i++ {
				b.Observe(addrA)
			}
			assert.Equal(t, tt.want, b.TakeIfWitnessed(addrA, tt.threshold))
			n, _ := b.Count(addrA)
			assert.Equal(t, tt.after, n)
		})
	}

	// 清零后不会再次触发，直到重新积累
	b := New(nil)
	for i := 0; i < 3; i++ {
		b.Observe(addrA)
	}
	require.True(t, b.TakeIfWitnessed(addrA, 3))
	assert.False(t, b.TakeIfWitnessed(addrA, 3))
	assert.False(t, b.TakeIfWitnessed(addrB, 1))
}

func TestBook_TakeIfWitnessed_Concurrent(t *testing.T) {
	b := New(nil)
	for i := 0; i < 3; i++ {
		b.Observe(addrA)
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	promoted := 0
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if b.TakeIfWitnessed(addrA, 3) {
				mu.Lock()
				promoted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	// 同一批见证只晋升一次
	assert.Equal(t, 1, promoted)
}

func TestBook_Random(t *testing.T) {
	empty := New(nil)
	_, ok := empty.Random()
	assert.False(t, ok)

	pick := 1
	b := New([]types.Multiaddr{addrA, addrB}, WithRand(func(n int) int {
		require.Equal(t, 2, n)
		return pick
	}))
	got, ok := b.Random()
	require.True(t, ok)
	assert.Equal(t, addrB, got)

	// 使用真实随机源时，多次选取覆盖全部地址
	r := New(nil)
	for i := 0; i < 4; i++ {
		r.Observe(types.Multiaddr(fmt.Sprintf("/ip4/10.0.1.%d/tcp/8114", i)))
	}
	seen := make(map[types.Multiaddr]bool)
	for i := 0; i < 400; i++ {
		a, _ := r.Random()
		seen[a] = true
	}
	assert.Len(t, seen, 4)
}

func TestBook_SnapshotRestore(t *testing.T) {
	b := New([]types.Multiaddr{seed})
	b.Observe(addrA)

	snap := b.Snapshot()
	assert.Equal(t, map[types.Multiaddr]uint32{seed: 1, addrA: 1}, snap)

	// 修改快照不影响地址簿
	snap[addrA] = 99
	n, _ := b.Count(addrA)
	assert.Equal(t, uint32(1), n)

	b.Restore(map[types.Multiaddr]uint32{seed: 0, addrB: 4})
	n, _ = b.Count(seed)
	assert.Equal(t, uint32(0), n)
	n, _ = b.Count(addrB)
	assert.Equal(t, uint32(4), n)
	assert.Equal(t, 3, b.Len())
}

func TestBook_CheckpointLoad(t *testing.T) {
	eng, err := badger.New(engine.DefaultConfig(filepath.Join(t.TempDir(), "book.db")))
	require.NoError(t, err)
	defer eng.Close()

	store := kv.New(eng, []byte("a/mirana/"))

	b := New([]types.Multiaddr{seed})
	for i := 0; i < 3; i++ {
		b.Observe(addrA)
	}
	n, err := b.Checkpoint(store)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	// 损坏条目被跳过
	require.NoError(t, store.Put([]byte(addrB), []byte("{")))
	require.NoError(t, store.Put([]byte("not-an-addr"), []byte(`{"count":1}`)))

	restored := New([]types.Multiaddr{seed})
	n, err = restored.Load(store)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	count, ok := restored.Count(addrA)
	require.True(t, ok)
	assert.Equal(t, uint32(3), count)
	_, ok = restored.Count(addrB)
	assert.False(t, ok)
}
