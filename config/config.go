// Package config 提供统一的配置管理
//
// 本包采用混合配置模式：
//   - 主 Config 结构体嵌入所有子配置
//   - 每个子配置在独立文件中定义
//   - 支持从 TOML 或 JSON 文件加载，环境变量覆盖
//
// 使用示例：
//
//	// 创建默认配置
//	cfg := config.NewConfig()
//	cfg.WitnessThreshold = 5
//
//	// 从文件加载并应用环境变量
//	cfg, err := config.Load("ckb-crawler.toml")
package config

import (
	"encoding/json"
	"fmt"

	"github.com/dep2p/go-ckbcrawler/pkg/types"
)

// Config 是 ckb-crawler 的完整配置结构
//
// 配置按照功能模块组织：
//   - Networks: 要爬取的网络
//   - DB: PostgreSQL 连接参数
//   - Crawler: 各周期任务间隔与窗口
//   - Sink: 写入队列与批量参数
//   - GeoIP: ipinfo.io 查询参数
//   - Storage: 地址簿检查点目录
//   - Metrics: Prometheus 指标端点
type Config struct {
	// Networks 要爬取的网络，每个网络独立运行一个爬虫
	Networks []types.NetworkType `json:"networks" toml:"networks"`

	// WitnessThreshold 见证晋升阈值
	WitnessThreshold uint32 `json:"witness_threshold" toml:"witness_threshold"`

	// IPInfoToken ipinfo.io 访问令牌
	IPInfoToken string `json:"ipinfo_io_token" toml:"ipinfo_io_token"`

	// DB 数据库配置
	DB DBConfig `json:"db" toml:"db"`

	// Crawler 爬虫调度配置
	Crawler CrawlerConfig `json:"crawler" toml:"crawler"`

	// Sink 写入队列配置
	Sink SinkConfig `json:"sink" toml:"sink"`

	// GeoIP 地理位置查询配置
	GeoIP GeoIPConfig `json:"geoip" toml:"geoip"`

	// Storage 存储配置
	Storage StorageConfig `json:"storage" toml:"storage"`

	// Metrics 指标配置
	Metrics MetricsConfig `json:"metrics" toml:"metrics"`
}

// DefaultWitnessThreshold 默认见证晋升阈值
const DefaultWitnessThreshold = 3

// NewConfig 创建默认配置
func NewConfig() *Config {
	return &Config{
		Networks:         []types.NetworkType{types.Mirana, types.Pudge},
		WitnessThreshold: DefaultWitnessThreshold,
		DB:               DefaultDBConfig(),
		Crawler:          DefaultCrawlerConfig(),
		Sink:             DefaultSinkConfig(),
		GeoIP:            DefaultGeoIPConfig(),
		Storage:          DefaultStorageConfig(),
		Metrics:          DefaultMetricsConfig(),
	}
}

// Validate 验证整个配置的有效性
func (c *Config) Validate() error {
	if len(c.Networks) == 0 {
		return fmt.Errorf("%w: no network configured", ErrInvalidConfig)
	}
	seen := make(map[types.NetworkType]bool)
	for _, n := range c.Networks {
		if n.LegacyName() == "" {
			return fmt.Errorf("%w: network %d", types.ErrUnknownNetwork, int(n))
		}
		if seen[n] {
			return fmt.Errorf("%w: duplicate network %s", ErrInvalidConfig, n)
		}
		seen[n] = true
	}
	if c.WitnessThreshold < 1 {
		return fmt.Errorf("%w: witness_threshold must be >= 1", ErrInvalidConfig)
	}

	if err := c.DB.Validate(); err != nil {
		return fmt.Errorf("db: %w", err)
	}
	if err := c.Crawler.Validate(); err != nil {
		return fmt.Errorf("crawler: %w", err)
	}
	if err := c.Sink.Validate(); err != nil {
		return fmt.Errorf("sink: %w", err)
	}
	if err := c.GeoIP.Validate(); err != nil {
		return fmt.Errorf("geoip: %w", err)
	}
	return nil
}

// FromJSON 从 JSON 数据创建配置
//
// 未出现的字段保留默认值。
func FromJSON(data []byte) (*Config, error) {
	cfg := NewConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse json config: %w", err)
	}
	return cfg, nil
}

// ToJSON 将配置序列化为 JSON
func (c *Config) ToJSON() ([]byte, error) {
	return json.MarshalIndent(c, "", "  ")
}
