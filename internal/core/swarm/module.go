package swarm

import (
	"github.com/dep2p/go-ckbcrawler/config"
)

// ConfigFromUnified 从统一配置创建 Swarm 配置
func ConfigFromUnified(cfg *config.Config) Config {
	c := DefaultConfig()
	if cfg == nil {
		return c
	}
	if d := cfg.Crawler.DialTimeout.Duration(); d > 0 {
		c.DialTimeout = d
		c.NegotiateTimeout = d
	}
	c.ListenAddr = cfg.Crawler.ListenAddr
	return c
}
