package addrbook

import (
	"math/rand/v2"
	"sync"

	"github.com/dep2p/go-ckbcrawler/pkg/types"
)

// Book 地址簿
//
// 所有方法并发安全，读操作之间互不阻塞。
type Book struct {
	mu sync.RWMutex

	// counts 地址 → 见证计数
	counts map[types.Multiaddr]uint32

	// order 插入顺序，供 O(1) 随机选取；地址不删除，所以只追加
	order []types.Multiaddr

	// intn 随机数源，测试可替换
	intn func(n int) int
}

// Option 地址簿选项
type Option func(*Book)

// WithRand 替换随机数源
func WithRand(intn func(n int) int) Option {
	return func(b *Book) {
		b.intn = intn
	}
}

// New 创建地址簿，种子地址计数为 1
func New(seeds []types.Multiaddr, opts ...Option) *Book {
	b := &Book{
		counts: make(map[types.Multiaddr]uint32, len(seeds)),
		intn:   rand.IntN,
	}
	for _, opt := range opts {
		opt(b)
	}
	for _, addr := range seeds {
		b.insertLocked(addr, 1)
	}
	return b
}

func (b *Book) insertLocked(addr types.Multiaddr, count uint32) bool {
	if _, ok := b.counts[addr]; ok {
		return false
	}
	b.counts[addr] = count
	b.order = append(b.order, addr)
	return true
}

// Observe 记录一次见证，返回新的计数
func (b *Book) Observe(addr types.Multiaddr) uint32 {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.insertLocked(addr, 1) {
		return 1
	}
	b.counts[addr]++
	return b.counts[addr]
}

// Confirm 标记地址已被直接确认在线（计数置为 1）
func (b *Book) Confirm(addr types.Multiaddr) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.insertLocked(addr, 1) {
		b.counts[addr] = 1
	}
}

// Count 返回地址的见证计数
func (b *Book) Count(addr types.Multiaddr) (uint32, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	n, ok := b.counts[addr]
	return n, ok
}

// TakeIfWitnessed 见证计数达到阈值时清零并返回 true
//
// 检查与清零在同一把写锁内完成，同一批见证只会触发一次晋升。
func (b *Book) TakeIfWitnessed(addr types.Multiaddr, threshold uint32) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	n, ok := b.counts[addr]
	if !ok || n < threshold {
		return false
	}
	b.counts[addr] = 0
	return true
}

// Random 均匀随机选取一个地址
func (b *Book) Random() (types.Multiaddr, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if len(b.order) == 0 {
		return "", false
	}
	return b.order[b.intn(len(b.order))], true
}

// Len 返回地址数量
func (b *Book) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.order)
}

// Snapshot 返回地址与计数的拷贝
func (b *Book) Snapshot() map[types.Multiaddr]uint32 {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make(map[types.Multiaddr]uint32, len(b.counts))
	for addr, n := range b.counts {
		out[addr] = n
	}
	return out
}

// Restore 合并检查点数据，已有地址的计数被覆盖
func (b *Book) Restore(entries map[types.Multiaddr]uint32) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for addr, n := range entries {
		if !b.insertLocked(addr, n) {
			b.counts[addr] = n
		}
	}
}
