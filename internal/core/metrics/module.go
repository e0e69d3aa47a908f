package metrics

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"

	"github.com/dep2p/go-ckbcrawler/config"
	"github.com/dep2p/go-ckbcrawler/pkg/lib/log"
)

var logger = log.Logger("core/metrics")

// Params Metrics 依赖参数
type Params struct {
	fx.In

	UnifiedCfg *config.Config `optional:"true"`
}

// Result Metrics 模块提供的结果
type Result struct {
	fx.Out

	Registry *prometheus.Registry
	Metrics  *Metrics
}

// Module 返回 Metrics Fx 模块
//
// 提供:
//   - *prometheus.Registry
//   - *Metrics
//
// 生命周期:
//   - OnStart: 配置了监听地址时启动 /metrics 服务
//   - OnStop: 关闭 HTTP 服务
func Module() fx.Option {
	return fx.Module("metrics",
		fx.Provide(ProvideMetrics),
		fx.Invoke(registerLifecycle),
	)
}

// ProvideMetrics 创建 Registry 与指标
func ProvideMetrics() Result {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return Result{Registry: reg, Metrics: New(reg)}
}

// Handler 返回 /metrics 处理器
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}

func registerLifecycle(lc fx.Lifecycle, p Params, reg *prometheus.Registry) {
	if p.UnifiedCfg == nil || p.UnifiedCfg.Metrics.ListenAddr == "" {
		return
	}
	addr := p.UnifiedCfg.Metrics.ListenAddr

	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler(reg))
	srv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			ln, err := net.Listen("tcp", addr)
			if err != nil {
				return err
			}
			logger.Info("metrics endpoint listening", "addr", ln.Addr().String())
			go func() {
				if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error("metrics server stopped", "error", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})
}
