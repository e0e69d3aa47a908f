package storage

import (
	"context"

	"go.uber.org/fx"

	"github.com/dep2p/go-ckbcrawler/config"
	"github.com/dep2p/go-ckbcrawler/internal/core/storage/engine"
	"github.com/dep2p/go-ckbcrawler/internal/core/storage/engine/badger"
	"github.com/dep2p/go-ckbcrawler/pkg/lib/log"
)

var logger = log.Logger("core/storage")

// Params 模块依赖
type Params struct {
	fx.In

	Config *config.Config `optional:"true"`
}

// Module 返回 Storage Fx 模块
//
// 提供 engine.Engine。OnStart 启动值日志回收，OnStop 关闭数据库。
// 本模块须先于使用方注册，fx 逆序停止时使用方的最后一次检查点
// 先于引擎关闭写完。
func Module() fx.Option {
	return fx.Module("storage",
		fx.Provide(provideEngine),
		fx.Invoke(registerLifecycle),
	)
}

func provideEngine(p Params) (engine.Engine, error) {
	cfg, err := EngineConfig(p.Config)
	if err != nil {
		return nil, err
	}
	logger.Debug("opening storage engine", "path", cfg.Path)
	eng, err := badger.New(cfg)
	if err != nil {
		logger.Error("failed to open storage engine", "path", cfg.Path, "error", err)
		return nil, err
	}
	return eng, nil
}

// EngineConfig 由统一配置得到引擎配置
func EngineConfig(cfg *config.Config) (*engine.Config, error) {
	if cfg == nil || !cfg.Storage.Enabled() {
		return nil, ErrDisabled
	}
	ec := engine.DefaultConfig(cfg.Storage.DBPath())
	if err := ec.Validate(); err != nil {
		return nil, err
	}
	return ec, nil
}

func registerLifecycle(lc fx.Lifecycle, eng engine.Engine) {
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			if err := eng.Start(); err != nil {
				logger.Error("failed to start storage engine", "error", err)
				return err
			}
			logger.Info("storage engine started")
			return nil
		},
		OnStop: func(_ context.Context) error {
			if err := eng.Close(); err != nil {
				logger.Warn("failed to close storage engine", "error", err)
				return err
			}
			logger.Info("storage engine closed")
			return nil
		},
	})
}
