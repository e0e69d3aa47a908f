// Package ckbcrawler 爬取 CKB P2P 网络，记录在线节点与其地理位置
//
// 每个配置的网络运行一个独立的爬虫：随机拨号地址簿中的地址，通过
// discovery 协议收集邻居地址，通过 identify 协议取得客户端版本与能力位。
// 拨号失败但被足够多节点报告过的地址同样视为在线。周期性遥测把在线
// 节点写入 PostgreSQL，并查询尚未定位的 IP。
//
// # 快速开始
//
//	cfg := config.NewConfig()
//	cfg.DB.Password = "secret"
//
//	c, err := ckbcrawler.New(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := c.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// # 组件
//
//	┌────────────────────────────────────────────────────────────┐
//	│  Crawler (每个网络一个)                                     │
//	│   DialScheduler ─→ Swarm (TCP + yamux + multistream)        │
//	│   AddressBook / PeerLedger / VersionCache / SessionRegistry │
//	├────────────────────────────────────────────────────────────┤
//	│  Sink (批量写入 PostgreSQL)      GeoIP (ipinfo.io)          │
//	├────────────────────────────────────────────────────────────┤
//	│  Metrics (Prometheus)            Storage (BadgerDB 检查点)   │
//	└────────────────────────────────────────────────────────────┘
package ckbcrawler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/fx"

	"github.com/dep2p/go-ckbcrawler/config"
	"github.com/dep2p/go-ckbcrawler/internal/crawler"
	"github.com/dep2p/go-ckbcrawler/internal/sink"
	"github.com/dep2p/go-ckbcrawler/pkg/types"
)

const (
	// startTimeout Fx App 启动超时
	startTimeout = 30 * time.Second

	// stopTimeout 停止超时，需要覆盖写入队列的最后一次刷新
	stopTimeout = 30 * time.Second
)

// Crawler 爬虫进程
type Crawler struct {
	cfg *config.Config
	app *fx.App

	// 由 Fx 注入
	instances []*crawler.Instance
	queue     *sink.Queue

	mu      sync.Mutex
	started bool
	closed  bool
}

// New 创建爬虫但不启动
func New(cfg *config.Config, opts ...Option) (*Crawler, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}
	o := newOptions()
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, fmt.Errorf("apply option: %w", err)
		}
	}

	c := &Crawler{cfg: cfg}
	app, err := buildFxApp(cfg, o, c)
	if err != nil {
		return nil, fmt.Errorf("build fx app: %w", err)
	}
	c.app = app
	return c, nil
}

// Start 启动所有网络的爬虫
func (c *Crawler) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	if c.started {
		return ErrAlreadyStarted
	}

	startCtx, cancel := context.WithTimeout(ctx, startTimeout)
	defer cancel()
	if err := c.app.Start(startCtx); err != nil {
		logger.Error("crawler start failed", "err", err)
		return fmt.Errorf("start failed: %w", err)
	}
	c.started = true
	logger.Info("crawler started", "version", Version, "networks", c.cfg.Networks)
	return nil
}

// Stop 停止爬虫并释放资源；停止后不能再次启动
func (c *Crawler) Stop(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	if !c.started {
		return ErrNotStarted
	}
	c.started = false
	c.closed = true

	if err := c.app.Stop(ctx); err != nil {
		logger.Error("crawler stop failed", "err", err)
		return fmt.Errorf("stop fx app: %w", err)
	}
	logger.Info("crawler stopped")
	return nil
}

// Run 启动爬虫并阻塞到 ctx 结束，然后停止
func (c *Crawler) Run(ctx context.Context) error {
	if err := c.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()

	stopCtx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()
	return c.Stop(stopCtx)
}

// NetworkStats 单个网络的运行统计
type NetworkStats struct {
	Network   types.NetworkType
	Addresses int
	Peers     int
	Sessions  int
	Located   int
}

// Stats 返回各网络的运行统计
func (c *Crawler) Stats() []NetworkStats {
	out := make([]NetworkStats, 0, len(c.instances))
	for _, inst := range c.instances {
		st := inst.Crawler.State()
		out = append(out, NetworkStats{
			Network:   st.Network,
			Addresses: st.Book.Len(),
			Peers:     st.Ledger.Len(),
			Sessions:  st.Sessions.Len(),
			Located:   st.KnownCount(),
		})
	}
	return out
}

// PendingWrites 写入队列中尚未落库的请求数
func (c *Crawler) PendingWrites() int {
	if c.queue == nil {
		return 0
	}
	return c.queue.Len()
}
