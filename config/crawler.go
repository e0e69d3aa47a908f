package config

import (
	"fmt"
	"time"
)

// CrawlerConfig 爬虫调度配置
type CrawlerConfig struct {
	// DialInterval 拨号间隔，每个周期拨一个候选地址
	DialInterval Duration `json:"dial_interval" toml:"dial_interval"`

	// StaleSweepInterval 过期会话清理间隔
	StaleSweepInterval Duration `json:"stale_sweep_interval" toml:"stale_sweep_interval"`

	// StaleWindow 超过该时间没有 identify 的会话会被断开
	StaleWindow Duration `json:"stale_window" toml:"stale_window"`

	// TelemetryInterval 遥测输出间隔
	TelemetryInterval Duration `json:"telemetry_interval" toml:"telemetry_interval"`

	// FreshnessWindow 在线判定窗口，必须短于 StaleWindow
	FreshnessWindow Duration `json:"freshness_window" toml:"freshness_window"`

	// PruneInterval 地址清理占位周期（当前不做任何事）
	PruneInterval Duration `json:"prune_interval" toml:"prune_interval"`

	// DialTimeout 单次拨号（含多路复用握手）超时
	DialTimeout Duration `json:"dial_timeout" toml:"dial_timeout"`

	// ListenAddr 入站监听地址，为空时不监听；入站会话总会被拒绝
	ListenAddr string `json:"listen_addr" toml:"listen_addr"`
}

// DefaultCrawlerConfig 返回默认爬虫配置
func DefaultCrawlerConfig() CrawlerConfig {
	return CrawlerConfig{
		DialInterval:       Duration(time.Second),
		StaleSweepInterval: Duration(10 * time.Second),
		StaleWindow:        Duration(10 * time.Second),
		TelemetryInterval:  Duration(60 * time.Second),
		FreshnessWindow:    Duration(8 * time.Second),
		PruneInterval:      Duration(30 * time.Minute),
		DialTimeout:        Duration(10 * time.Second),
	}
}

// Validate 验证爬虫配置
func (c *CrawlerConfig) Validate() error {
	durations := []struct {
		name string
		d    Duration
	}{
		{"dial_interval", c.DialInterval},
		{"stale_sweep_interval", c.StaleSweepInterval},
		{"stale_window", c.StaleWindow},
		{"telemetry_interval", c.TelemetryInterval},
		{"freshness_window", c.FreshnessWindow},
		{"prune_interval", c.PruneInterval},
		{"dial_timeout", c.DialTimeout},
	}
	for _, d := range durations {
		if d.d <= 0 {
			return fmt.Errorf("%w: %s must be positive", ErrInvalidConfig, d.name)
		}
	}
	if c.FreshnessWindow >= c.StaleWindow {
		return fmt.Errorf("%w: freshness_window (%s) must be shorter than stale_window (%s)",
			ErrInvalidConfig, c.FreshnessWindow, c.StaleWindow)
	}
	return nil
}

// SinkConfig 写入队列配置
type SinkConfig struct {
	// QueueSize 队列容量
	QueueSize int `json:"queue_size" toml:"queue_size"`

	// MaxBatchSize 单批最大请求数
	MaxBatchSize int `json:"max_batch_size" toml:"max_batch_size"`

	// MaxBatchDelay 批次最长等待时间
	MaxBatchDelay Duration `json:"max_batch_delay" toml:"max_batch_delay"`
}

// DefaultSinkConfig 返回默认写入队列配置
func DefaultSinkConfig() SinkConfig {
	return SinkConfig{
		QueueSize:     5000,
		MaxBatchSize:  200,
		MaxBatchDelay: Duration(3 * time.Second),
	}
}

// Validate 验证写入队列配置
func (c *SinkConfig) Validate() error {
	if c.QueueSize < 1 || c.MaxBatchSize < 1 {
		return fmt.Errorf("%w: queue_size and max_batch_size must be >= 1", ErrInvalidConfig)
	}
	if c.MaxBatchDelay <= 0 {
		return fmt.Errorf("%w: max_batch_delay must be positive", ErrInvalidConfig)
	}
	return nil
}

// GeoIPConfig 地理位置查询配置
type GeoIPConfig struct {
	// BaseURL ipinfo.io 接口地址
	BaseURL string `json:"base_url" toml:"base_url"`

	// RequestsPerSecond 查询速率上限
	RequestsPerSecond float64 `json:"requests_per_second" toml:"requests_per_second"`

	// Timeout 单次请求超时
	Timeout Duration `json:"timeout" toml:"timeout"`
}

// DefaultGeoIPConfig 返回默认地理位置查询配置
func DefaultGeoIPConfig() GeoIPConfig {
	return GeoIPConfig{
		BaseURL:           "https://ipinfo.io",
		RequestsPerSecond: 5,
		Timeout:           Duration(10 * time.Second),
	}
}

// Validate 验证地理位置查询配置
func (c *GeoIPConfig) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("%w: base_url is empty", ErrInvalidConfig)
	}
	if c.RequestsPerSecond <= 0 || c.Timeout <= 0 {
		return fmt.Errorf("%w: requests_per_second and timeout must be positive", ErrInvalidConfig)
	}
	return nil
}

// MetricsConfig 指标配置
type MetricsConfig struct {
	// ListenAddr /metrics 监听地址，为空时不启动 HTTP 服务
	ListenAddr string `json:"listen_addr" toml:"listen_addr"`
}

// DefaultMetricsConfig 返回默认指标配置
func DefaultMetricsConfig() MetricsConfig {
	return MetricsConfig{}
}
