package kv

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-ckbcrawler/internal/core/storage/engine"
	"github.com/dep2p/go-ckbcrawler/internal/core/storage/engine/badger"
)

func openEngine(t *testing.T) engine.Engine {
	t.Helper()
	eng, err := badger.New(engine.DefaultConfig(filepath.Join(t.TempDir(), "kv.db")))
	require.NoError(t, err)
	t.Cleanup(func() { _ = eng.Close() })
	return eng
}

type entry struct {
	Count uint32 `json:"count"`
}

func TestStore_Isolation(t *testing.T) {
	eng := openEngine(t)
	mirana := New(eng, []byte("a/mirana/"))
	pudge := New(eng, []byte("a/pudge/"))

	require.NoError(t, mirana.Put([]byte("x"), []byte("1")))
	require.NoError(t, pudge.Put([]byte("x"), []byte("2")))

	v, err := mirana.Get([]byte("x"))
	require.NoError(t, err)
	assert.Equal(t, []byte("1"), v)

	raw, err := eng.Get([]byte("a/pudge/x"))
	require.NoError(t, err)
	assert.Equal(t, []byte("2"), raw)

	n, err := mirana.Count()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestStore_ScanStripsPrefix(t *testing.T) {
	eng := openEngine(t)
	s := New(eng, []byte("a/dev/"))

	var ops []engine.Op
	for _, k := range []string{"/ip4/1.1.1.1/tcp/1", "/ip4/2.2.2.2/tcp/2"} {
		op, err := JSON([]byte(k), entry{Count: 3})
		require.NoError(t, err)
		ops = append(ops, op)
	}
	require.NoError(t, s.Apply(ops...))

	got := map[string]entry{}
	require.NoError(t, s.Scan(func(k, v []byte) error {
		var e entry
		require.NoError(t, json.Unmarshal(v, &e))
		got[string(k)] = e
		return nil
	}))
	assert.Equal(t, map[string]entry{
		"/ip4/1.1.1.1/tcp/1": {Count: 3},
		"/ip4/2.2.2.2/tcp/2": {Count: 3},
	}, got)

	var e entry
	require.NoError(t, s.GetJSON([]byte("/ip4/1.1.1.1/tcp/1"), &e))
	assert.Equal(t, uint32(3), e.Count)
}

func TestStore_Errors(t *testing.T) {
	s := New(openEngine(t), []byte("a/dev/"))

	_, err := s.Get([]byte("missing"))
	assert.ErrorIs(t, err, engine.ErrNotFound)

	// 空键不会落到前缀本身
	assert.ErrorIs(t, s.Put(nil, []byte("v")), engine.ErrEmptyKey)

	// 删除
	require.NoError(t, s.Put([]byte("k"), []byte("v")))
	require.NoError(t, s.Apply(engine.Del([]byte("k"))))
	_, err = s.Get([]byte("k"))
	assert.ErrorIs(t, err, engine.ErrNotFound)

	_, err = JSON([]byte("bad"), make(chan int))
	assert.Error(t, err)
}
