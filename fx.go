package ckbcrawler

import (
	"fmt"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"github.com/dep2p/go-ckbcrawler/config"
	"github.com/dep2p/go-ckbcrawler/internal/core/metrics"
	"github.com/dep2p/go-ckbcrawler/internal/core/storage"
	"github.com/dep2p/go-ckbcrawler/internal/crawler"
	"github.com/dep2p/go-ckbcrawler/internal/geoip"
	"github.com/dep2p/go-ckbcrawler/internal/sink"
	"github.com/dep2p/go-ckbcrawler/pkg/lib/log"
)

var logger = log.Logger("ckbcrawler")

// buildFxApp 构建 Fx 应用
//
// 加载顺序（按依赖）：
//  1. Metrics → Sink → GeoIP
//  2. Storage（DataDir 非空时）
//  3. Crawler（每个网络一个实例）
//
// fx 按逆序执行 OnStop：爬虫先停并写完检查点，随后排空写入队列，
// 最后关闭存储引擎。
func buildFxApp(cfg *config.Config, opts *options, c *Crawler) (*fx.App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	modules := []fx.Option{
		fx.Supply(cfg),
		fx.Supply(fx.Annotated{Name: "client_version", Target: opts.clientVersion}),

		metrics.Module(),
		sink.Module(),
		geoip.Module(),
	}

	if cfg.Storage.Enabled() {
		modules = append(modules, storage.Module())
	}

	modules = append(modules, crawler.Module())

	if len(opts.userFxOptions) > 0 {
		modules = append(modules, opts.userFxOptions...)
	}

	modules = append(modules,
		fx.Populate(&c.instances, &c.queue),
		fxLoggerOption(opts.fxEvents),
	)

	app := fx.New(modules...)
	if err := app.Err(); err != nil {
		return nil, err
	}
	return app, nil
}

// fxLoggerOption 默认静默 fx 事件日志
func fxLoggerOption(verbose bool) fx.Option {
	return fx.WithLogger(func() fxevent.Logger {
		if !verbose {
			return &fxevent.ZapLogger{Logger: zap.NewNop()}
		}
		l, err := zap.NewDevelopment()
		if err != nil {
			logger.Warn("build fx event logger failed", "err", err)
			return &fxevent.ZapLogger{Logger: zap.NewNop()}
		}
		return &fxevent.ZapLogger{Logger: l}
	})
}
