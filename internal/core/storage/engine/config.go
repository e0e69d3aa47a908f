package engine

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Config 引擎配置
type Config struct {
	// Path 数据库目录
	Path string

	// SyncWrites 每次写入都 fsync
	SyncWrites bool

	// GCInterval 值日志回收间隔，0 表示不回收
	GCInterval time.Duration
}

// DefaultConfig 返回 path 上的默认配置
func DefaultConfig(path string) *Config {
	return &Config{
		Path:       path,
		GCInterval: 10 * time.Minute,
	}
}

// Validate 检查配置并把路径转换为绝对路径
func (c *Config) Validate() error {
	if c.Path == "" {
		return fmt.Errorf("%w: empty path", ErrInvalidConfig)
	}
	if c.GCInterval < 0 {
		return fmt.Errorf("%w: negative gc interval", ErrInvalidConfig)
	}
	abs, err := filepath.Abs(c.Path)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	c.Path = abs
	return nil
}

// EnsureDir 创建数据库目录
func (c *Config) EnsureDir() error {
	return os.MkdirAll(c.Path, 0o750)
}
