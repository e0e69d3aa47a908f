package kv

import (
	"encoding/json"
	"fmt"

	"github.com/dep2p/go-ckbcrawler/internal/core/storage/engine"
)

// Store 前缀命名空间
type Store struct {
	eng    engine.Engine
	prefix []byte
}

// New 创建前缀为 prefix 的命名空间
func New(eng engine.Engine, prefix []byte) *Store {
	return &Store{eng: eng, prefix: append([]byte(nil), prefix...)}
}

// Prefix 返回命名空间前缀
func (s *Store) Prefix() []byte {
	return append([]byte(nil), s.prefix...)
}

func (s *Store) key(k []byte) []byte {
	out := make([]byte, 0, len(s.prefix)+len(k))
	return append(append(out, s.prefix...), k...)
}

// Get 读取键
func (s *Store) Get(key []byte) ([]byte, error) {
	return s.eng.Get(s.key(key))
}

// GetJSON 读取键并解码到 v
func (s *Store) GetJSON(key []byte, v any) error {
	data, err := s.Get(key)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

// Put 写入单个键
func (s *Store) Put(key, value []byte) error {
	return s.Apply(engine.Put(key, value))
}

// Apply 给每个操作的键加上前缀后原子提交
//
// 空键在加前缀之前被拒绝，不会写到前缀本身上。
func (s *Store) Apply(ops ...engine.Op) error {
	prefixed := make([]engine.Op, len(ops))
	for i, op := range ops {
		if len(op.Key) == 0 {
			return engine.ErrEmptyKey
		}
		op.Key = s.key(op.Key)
		prefixed[i] = op
	}
	return s.eng.Apply(prefixed...)
}

// Scan 遍历命名空间，回调收到去掉前缀的键
func (s *Store) Scan(fn func(key, value []byte) error) error {
	n := len(s.prefix)
	return s.eng.Scan(s.prefix, func(k, v []byte) error {
		return fn(k[n:], v)
	})
}

// Count 命名空间内的键数量
func (s *Store) Count() (int, error) {
	n := 0
	err := s.Scan(func(_, _ []byte) error {
		n++
		return nil
	})
	return n, err
}

// JSON 构造值为 v 的 JSON 编码的写入操作
func JSON(key []byte, v any) (engine.Op, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return engine.Op{}, fmt.Errorf("encode %q: %w", key, err)
	}
	return engine.Put(key, data), nil
}
