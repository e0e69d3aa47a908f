package ledger

import (
	"sync"

	"github.com/dep2p/go-ckbcrawler/pkg/types"
)

// VersionCache 地址 → 最近一次 identify 报告的版本
type VersionCache struct {
	mu       sync.RWMutex
	versions map[types.Multiaddr]string
}

// NewVersionCache 创建版本缓存
func NewVersionCache() *VersionCache {
	return &VersionCache{versions: make(map[types.Multiaddr]string)}
}

// Set 记录版本
func (c *VersionCache) Set(addr types.Multiaddr, version string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.versions[addr] = version
}

// Get 查询版本
func (c *VersionCache) Get(addr types.Multiaddr) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.versions[addr]
	return v, ok
}

// Len 返回缓存条目数量
func (c *VersionCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.versions)
}
