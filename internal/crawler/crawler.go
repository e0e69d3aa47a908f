package crawler

import (
	"context"
	"time"

	"github.com/dep2p/go-ckbcrawler/config"
	"github.com/dep2p/go-ckbcrawler/internal/core/metrics"
	"github.com/dep2p/go-ckbcrawler/internal/geoip"
	"github.com/dep2p/go-ckbcrawler/internal/sink"
	"github.com/dep2p/go-ckbcrawler/pkg/interfaces"
	"github.com/dep2p/go-ckbcrawler/pkg/lib/log"
	"github.com/dep2p/go-ckbcrawler/pkg/types"
)

var logger = log.Logger("crawler")

// Sink 接收写入请求，*sink.Queue 实现了该接口
type Sink interface {
	Enqueue(ctx context.Context, req sink.WriteRequest) error
}

// Options 创建 Crawler 的参数
type Options struct {
	// State 共享状态，必填
	State *State

	// Network 传输层，必填（也可以之后用 SetNetwork 设置）
	Network interfaces.Network

	// Sink 写入队列，为空时遥测只更新指标
	Sink Sink

	// Resolver 地理位置解析器，为空时不做定位
	Resolver geoip.Resolver

	// Metrics 指标，为空时使用不注册的指标
	Metrics *metrics.Metrics

	// WitnessThreshold 见证晋升阈值
	WitnessThreshold uint32

	// StaleWindow 会话多久没有 identify 视为过期
	StaleWindow time.Duration

	// FreshnessWindow 遥测在线判定窗口
	FreshnessWindow time.Duration

	// ClientVersion 本端通过 identify 报告的客户端版本
	ClientVersion string
}

// Crawler 一个网络的爬虫
//
// 实现 interfaces.ServiceHandler；协议回调由 Protocols 返回的适配器转发。
type Crawler struct {
	state    *State
	net      interfaces.Network
	sink     Sink
	resolver geoip.Resolver
	metrics  *metrics.NetworkMetrics

	threshold     uint32
	staleWindow   time.Duration
	freshWindow   time.Duration
	clientVersion string
}

var _ interfaces.ServiceHandler = (*Crawler)(nil)

// New 创建 Crawler
func New(opts Options) *Crawler {
	def := config.DefaultCrawlerConfig()

	c := &Crawler{
		state:         opts.State,
		net:           opts.Network,
		sink:          opts.Sink,
		resolver:      opts.Resolver,
		threshold:     opts.WitnessThreshold,
		staleWindow:   opts.StaleWindow,
		freshWindow:   opts.FreshnessWindow,
		clientVersion: opts.ClientVersion,
	}
	if c.threshold == 0 {
		c.threshold = config.DefaultWitnessThreshold
	}
	if c.staleWindow <= 0 {
		c.staleWindow = def.StaleWindow.Duration()
	}
	if c.freshWindow <= 0 {
		c.freshWindow = def.FreshnessWindow.Duration()
	}
	if c.clientVersion == "" {
		c.clientVersion = "ckb-crawler"
	}

	m := opts.Metrics
	if m == nil {
		m = metrics.NewNop()
	}
	c.metrics = m.For(c.state.Network.String())
	c.metrics.KnownAddresses.Set(float64(c.state.Book.Len()))
	return c
}

// SetNetwork 设置传输层
func (c *Crawler) SetNetwork(n interfaces.Network) {
	c.net = n
}

// State 返回共享状态
func (c *Crawler) State() *State {
	return c.state
}

// Network 返回爬取的网络
func (c *Crawler) Network() types.NetworkType {
	return c.state.Network
}

// Protocols 返回需要在传输层注册的协议
func (c *Crawler) Protocols() []interfaces.ProtocolSpec {
	return []interfaces.ProtocolSpec{
		{
			ID:       types.ProtocolDiscovery,
			Versions: []string{types.DiscoveryVersionCurrent, types.DiscoveryVersionLegacy},
			Handler:  c.adapter(types.ChannelDiscovery),
		},
		{
			ID:       types.ProtocolIdentify,
			Versions: []string{types.IdentifyVersion},
			Handler:  c.adapter(types.ChannelIdentify),
		},
		{
			ID:       types.ProtocolSync,
			Versions: []string{types.SyncVersion},
			Handler:  c.adapter(types.ChannelSync),
		},
	}
}

func (c *Crawler) now() time.Time {
	return c.state.Clock.Now()
}
