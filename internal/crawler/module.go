package crawler

import (
	"context"

	"go.uber.org/fx"

	"github.com/dep2p/go-ckbcrawler/config"
	"github.com/dep2p/go-ckbcrawler/internal/core/metrics"
	"github.com/dep2p/go-ckbcrawler/internal/core/storage/engine"
	"github.com/dep2p/go-ckbcrawler/internal/core/storage/kv"
	"github.com/dep2p/go-ckbcrawler/internal/core/swarm"
	"github.com/dep2p/go-ckbcrawler/internal/geoip"
	"github.com/dep2p/go-ckbcrawler/internal/sink"
)

// Params Crawler 模块依赖参数
type Params struct {
	fx.In

	Config   *config.Config
	Metrics  *metrics.Metrics `optional:"true"`
	Queue    *sink.Queue      `optional:"true"`
	Resolver geoip.Resolver   `optional:"true"`
	Engine   engine.Engine    `optional:"true"`

	// ClientVersion 本端 identify 报告的版本
	ClientVersion string `name:"client_version" optional:"true"`
}

// Instance 一个网络的爬虫及其传输层与调度器
type Instance struct {
	Crawler   *Crawler
	Swarm     *swarm.Swarm
	Scheduler *Scheduler

	store *kv.Store
}

// Result Crawler 模块提供的结果
type Result struct {
	fx.Out

	Instances []*Instance
}

// Module 返回 Crawler Fx 模块
//
// 每个配置的网络一个 Instance。
//
// 生命周期:
//   - OnStart: 恢复地址簿检查点，启动监听（可选）与调度器
//   - OnStop: 停止调度器（写最后的检查点），关闭传输层
func Module() fx.Option {
	return fx.Module("crawler",
		fx.Provide(ProvideInstances),
		fx.Invoke(registerLifecycle),
	)
}

// ProvideInstances 为每个网络创建 Instance
func ProvideInstances(p Params) (Result, error) {
	var s Sink
	if p.Queue != nil {
		s = p.Queue
	}

	instances := make([]*Instance, 0, len(p.Config.Networks))
	for _, network := range p.Config.Networks {
		sw, err := swarm.New(swarm.ConfigFromUnified(p.Config))
		if err != nil {
			return Result{}, err
		}

		c := New(Options{
			State:            NewState(network, nil),
			Network:          sw,
			Sink:             s,
			Resolver:         p.Resolver,
			Metrics:          p.Metrics,
			WitnessThreshold: p.Config.WitnessThreshold,
			StaleWindow:      p.Config.Crawler.StaleWindow.Duration(),
			FreshnessWindow:  p.Config.Crawler.FreshnessWindow.Duration(),
			ClientVersion:    p.ClientVersion,
		})
		sw.SetHandler(c)
		for _, spec := range c.Protocols() {
			sw.AddProtocol(spec)
		}

		var store *kv.Store
		if p.Engine != nil {
			store = kv.New(p.Engine, []byte("a/"+network.String()+"/"))
		}

		instances = append(instances, &Instance{
			Crawler:   c,
			Swarm:     sw,
			Scheduler: NewScheduler(c, IntervalsFromConfig(p.Config), store),
			store:     store,
		})
	}
	return Result{Instances: instances}, nil
}

func registerLifecycle(lc fx.Lifecycle, cfg *config.Config, instances []*Instance) {
	for i, inst := range instances {
		lc.Append(fx.Hook{
			OnStart: func(_ context.Context) error {
				network := inst.Crawler.Network()
				if inst.store != nil {
					n, err := inst.Crawler.state.Book.Load(inst.store)
					if err != nil {
						logger.Warn("restore address book failed", "network", network, "err", err)
					} else if n > 0 {
						logger.Info("address book restored", "network", network, "addresses", n)
					}
				}
				// 只有第一个网络监听入站地址
				if i == 0 && cfg.Crawler.ListenAddr != "" {
					if err := inst.Swarm.Listen(cfg.Crawler.ListenAddr); err != nil {
						return err
					}
				}
				return inst.Scheduler.Start()
			},
			OnStop: func(_ context.Context) error {
				inst.Scheduler.Stop()
				return inst.Swarm.Close()
			},
		})
	}
}
