package ckbcrawler

import (
	"go.uber.org/fx"
)

// Option 用户配置选项函数
type Option func(*options) error

// options 内部选项结构
type options struct {
	// clientVersion identify 中报告的版本，为空时使用 ClientVersion()
	clientVersion string

	// fxEvents 输出 fx 依赖注入事件（调试用）
	fxEvents bool

	// userFxOptions 用户追加的 fx 选项
	userFxOptions []fx.Option
}

func newOptions() *options {
	return &options{clientVersion: ClientVersion()}
}

// WithClientVersion 覆盖 identify 中报告的客户端版本
func WithClientVersion(v string) Option {
	return func(o *options) error {
		if v != "" {
			o.clientVersion = v
		}
		return nil
	}
}

// WithFxEvents 输出 fx 依赖注入事件
func WithFxEvents(enabled bool) Option {
	return func(o *options) error {
		o.fxEvents = enabled
		return nil
	}
}

// WithFxOptions 追加 fx 选项，主要用于测试替换组件
func WithFxOptions(opts ...fx.Option) Option {
	return func(o *options) error {
		o.userFxOptions = append(o.userFxOptions, opts...)
		return nil
	}
}
