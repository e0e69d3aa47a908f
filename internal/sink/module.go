package sink

import (
	"context"
	"io"

	"go.uber.org/fx"
	"go.uber.org/multierr"

	"github.com/dep2p/go-ckbcrawler/config"
	"github.com/dep2p/go-ckbcrawler/internal/core/metrics"
)

// Params Sink 依赖参数
type Params struct {
	fx.In

	Config  *config.Config
	Metrics *metrics.Metrics `optional:"true"`
}

// Result Sink 模块提供的结果
type Result struct {
	fx.Out

	Queue  *Queue
	Writer *Writer
}

// Module 返回 Sink Fx 模块
//
// 提供:
//   - *Queue: 遥测任务的写入入口
//   - *Writer
//
// 生命周期:
//   - OnStart: 连接数据库（可选初始化 schema），启动 Writer
//   - OnStop: 关闭队列，等待剩余请求写完，关闭连接
func Module() fx.Option {
	return fx.Module("sink",
		fx.Provide(ProvideSink),
		fx.Invoke(registerLifecycle),
	)
}

// lazyExecutor 在 OnStart 之后才有真实执行器
type lazyExecutor struct {
	Executor
}

// ProvideSink 创建队列与写入器
func ProvideSink(p Params) Result {
	q := NewQueue(p.Config.Sink.QueueSize)
	w := NewWriter(q, &lazyExecutor{Executor: LogExecutor{}},
		WithBatchSize(p.Config.Sink.MaxBatchSize),
		WithBatchDelay(p.Config.Sink.MaxBatchDelay.Duration()),
		WithMetrics(p.Metrics),
	)
	return Result{Queue: q, Writer: w}
}

func registerLifecycle(lc fx.Lifecycle, cfg *config.Config, q *Queue, w *Writer) {
	runCtx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			lazy := w.exec.(*lazyExecutor)
			if cfg.DB.Enabled {
				pg, err := OpenPostgres(ctx, cfg.DB.DSN())
				if err != nil {
					return err
				}
				if cfg.DB.InitSchema {
					if err := pg.EnsureSchema(ctx, cfg.Networks); err != nil {
						_ = pg.Close()
						return err
					}
				}
				lazy.Executor = pg
				logger.Info("sink connected", "host", cfg.DB.Host, "database", cfg.DB.Database)
			} else {
				logger.Warn("database disabled, writes are only logged")
			}

			go func() {
				defer close(done)
				w.Run(runCtx)
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			q.Close()
			var err error
			select {
			case <-done:
			case <-ctx.Done():
				cancel()
				<-done
				err = ctx.Err()
			}
			cancel()
			if c, ok := w.exec.(*lazyExecutor).Executor.(io.Closer); ok {
				err = multierr.Append(err, c.Close())
			}
			return err
		},
	})
}
