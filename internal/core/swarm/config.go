package swarm

import (
	"io"
	"time"

	"github.com/libp2p/go-yamux/v5"
)

// Config Swarm 配置
type Config struct {
	// DialTimeout 拨号超时（TCP 连接 + yamux 握手）
	DialTimeout time.Duration

	// NegotiateTimeout 单条流的协议协商超时
	NegotiateTimeout time.Duration

	// MaxFrameSize 单帧最大长度
	MaxFrameSize int

	// ListenAddr 入站监听地址（multiaddr），为空时不监听
	ListenAddr string
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		DialTimeout:      10 * time.Second,
		NegotiateTimeout: 10 * time.Second,
		MaxFrameSize:     DefaultMaxFrameSize,
	}
}

// Validate 验证配置
func (c *Config) Validate() error {
	if c.DialTimeout <= 0 || c.NegotiateTimeout <= 0 || c.MaxFrameSize <= 0 {
		return ErrInvalidConfig
	}
	return nil
}

// yamuxConfig 返回会话使用的 yamux 配置
func yamuxConfig() *yamux.Config {
	cfg := yamux.DefaultConfig()
	cfg.LogOutput = io.Discard
	cfg.EnableKeepAlive = true
	cfg.KeepAliveInterval = 30 * time.Second
	return cfg
}
