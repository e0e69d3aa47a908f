package config

import (
	"path/filepath"
	"time"
)

// StorageConfig 存储配置
//
// DataDir 为空时不启用本地存储，地址簿不做检查点。
//
// 数据目录结构：
//
//	${DataDir}/
//	└── ckb-crawler.db/     # BadgerDB 数据库
type StorageConfig struct {
	// DataDir 数据目录路径
	DataDir string `json:"data_dir" toml:"data_dir"`

	// CheckpointInterval 地址簿检查点间隔
	CheckpointInterval Duration `json:"checkpoint_interval" toml:"checkpoint_interval"`
}

// DefaultStorageConfig 返回默认的存储配置
func DefaultStorageConfig() StorageConfig {
	return StorageConfig{
		CheckpointInterval: Duration(5 * time.Minute),
	}
}

// Enabled 是否启用本地存储
func (c *StorageConfig) Enabled() bool {
	return c.DataDir != ""
}

// DBPath 返回 BadgerDB 数据库路径
func (c *StorageConfig) DBPath() string {
	return filepath.Join(c.DataDir, "ckb-crawler.db")
}
