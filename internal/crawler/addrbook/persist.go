package addrbook

import (
	"encoding/json"

	"github.com/dep2p/go-ckbcrawler/internal/core/storage/engine"
	"github.com/dep2p/go-ckbcrawler/internal/core/storage/kv"
	"github.com/dep2p/go-ckbcrawler/pkg/lib/log"
	"github.com/dep2p/go-ckbcrawler/pkg/types"
)

var logger = log.Logger("crawler/addrbook")

// persistedEntry 持久化的地址数据
type persistedEntry struct {
	Count uint32 `json:"count"`
}

// Checkpoint 将地址簿写入存储
//
// 键为 canonical 地址字符串。只写入不删除，与地址簿只增不删一致。
func (b *Book) Checkpoint(store *kv.Store) (int, error) {
	snapshot := b.Snapshot()

	ops := make([]engine.Op, 0, len(snapshot))
	for addr, n := range snapshot {
		op, err := kv.JSON([]byte(addr), persistedEntry{Count: n})
		if err != nil {
			return 0, err
		}
		ops = append(ops, op)
	}
	if err := store.Apply(ops...); err != nil {
		return 0, err
	}
	return len(ops), nil
}

// Load 从存储恢复地址簿，返回恢复的地址数量
//
// 损坏或无法解析的条目被跳过。
func (b *Book) Load(store *kv.Store) (int, error) {
	entries := make(map[types.Multiaddr]uint32)
	err := store.Scan(func(key, value []byte) error {
		addr, err := types.ParseMultiaddr(string(key))
		if err != nil {
			logger.Debug("skip invalid checkpoint key", "key", string(key), "error", err)
			return nil
		}

		var e persistedEntry
		if err := json.Unmarshal(value, &e); err != nil {
			logger.Debug("skip corrupted checkpoint entry", "addr", addr, "error", err)
			return nil
		}
		entries[addr] = e.Count
		return nil
	})
	if err != nil {
		return 0, err
	}

	b.Restore(entries)
	return len(entries), nil
}
