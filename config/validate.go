package config

import (
	"errors"
)

// ValidateAll 验证整个配置的有效性
//
// 这是 Config.Validate() 的别名，允许传入 nil。
func ValidateAll(c *Config) error {
	if c == nil {
		return errors.New("config is nil")
	}
	return c.Validate()
}

// ValidateAndFix 验证配置并修复可自动修复的问题
//
// 可修复的问题：
//   - 空网络列表 -> 使用默认网络
//   - 见证阈值为 0 -> 使用默认阈值
//   - 非正的批量参数 -> 使用默认值
func ValidateAndFix(c *Config) (*Config, error) {
	if c == nil {
		return NewConfig(), nil
	}

	if len(c.Networks) == 0 {
		c.Networks = NewConfig().Networks
	}
	if c.WitnessThreshold == 0 {
		c.WitnessThreshold = DefaultWitnessThreshold
	}

	def := DefaultSinkConfig()
	if c.Sink.QueueSize <= 0 {
		c.Sink.QueueSize = def.QueueSize
	}
	if c.Sink.MaxBatchSize <= 0 {
		c.Sink.MaxBatchSize = def.MaxBatchSize
	}
	if c.Sink.MaxBatchDelay <= 0 {
		c.Sink.MaxBatchDelay = def.MaxBatchDelay
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}
