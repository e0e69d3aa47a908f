package crawler

import (
	"context"

	"github.com/dep2p/go-ckbcrawler/internal/crawler/wire"
	"github.com/dep2p/go-ckbcrawler/pkg/interfaces"
	"github.com/dep2p/go-ckbcrawler/pkg/types"
)

// ============================================================================
//                              通道适配器
// ============================================================================

// channelAdapter 单个协议通道的适配器
//
// 自身不带状态，所有回调转发到共享 State 的 Crawler。
type channelAdapter struct {
	c  *Crawler
	ch types.Channel
}

var _ interfaces.ProtocolHandler = channelAdapter{}

func (c *Crawler) adapter(ch types.Channel) channelAdapter {
	return channelAdapter{c: c, ch: ch}
}

// Connected 协议通道打开
func (a channelAdapter) Connected(ctx context.Context, pc interfaces.ProtocolContext) {
	if pc.Session.Inbound() {
		return
	}
	a.c.state.Sessions.AddProtocol(pc.Session.ID, pc.Protocol)
	logger.Debug("protocol opened",
		"network", a.c.state.Network,
		"protocol", pc.Protocol,
		"version", pc.Version,
		"addr", pc.Session.Address)

	switch a.ch {
	case types.ChannelDiscovery:
		a.c.discoveryConnected(pc)
	case types.ChannelIdentify:
		a.c.identifyConnected(pc)
	}
}

// Received 收到一帧
//
// 任何载荷都不会导致会话关闭；解码失败只记录日志。
func (a channelAdapter) Received(ctx context.Context, pc interfaces.ProtocolContext, data []byte) {
	if pc.Session.Inbound() {
		return
	}
	switch a.ch {
	case types.ChannelDiscovery:
		a.c.discoveryReceived(pc, data)
	case types.ChannelIdentify:
		a.c.identifyReceived(pc, data)
	}
}

// Disconnected 协议通道关闭
func (a channelAdapter) Disconnected(ctx context.Context, pc interfaces.ProtocolContext) {
	a.c.state.Sessions.RemoveProtocol(pc.Session.ID, pc.Protocol)
}

// ============================================================================
//                              discovery
// ============================================================================

// discoveryConnected 请求邻居地址；旧版本需要长度前缀包装
func (c *Crawler) discoveryConnected(pc interfaces.ProtocolContext) {
	msg := wire.NewGetNodes().Marshal()
	if pc.Version == types.DiscoveryVersionLegacy {
		msg = wire.WrapFrame(msg)
	}
	if err := c.net.Send(pc.Session.ID, pc.Protocol, msg); err != nil {
		logger.Warn("send get-nodes failed", "addr", pc.Session.Address, "err", err)
	}
}

func (c *Crawler) discoveryReceived(pc interfaces.ProtocolContext, data []byte) {
	msg, err := wire.DecodeDiscovery(data)
	if err != nil {
		legacy, lerr := wire.DecodeDiscoveryLegacy(data)
		if lerr != nil {
			c.metrics.DecodeError(types.ChannelDiscovery.String())
			logger.Error("invalid discovery message",
				"addr", pc.Session.Address, "err", err, "legacy_err", lerr)
			return
		}
		msg = legacy
	}

	// 只观察，不回答 GetNodes
	if msg.Nodes == nil {
		return
	}

	var (
		ips      []string
		observed int
	)
	for _, node := range msg.Nodes.Items {
		for _, raw := range node.Addresses {
			addr, err := types.MultiaddrFromBytes(raw)
			if err != nil {
				logger.Debug("skip undecodable address", "reporter", pc.Session.Address, "err", err)
				continue
			}
			c.state.Book.Observe(addr)
			observed++
			if ip := addr.Host(); ip != "" {
				ips = append(ips, ip)
			}
		}
	}
	c.state.Ledger.ExtendReachable(pc.Session.Address, ips)

	c.metrics.DiscoveryAddresses.Add(float64(observed))
	c.metrics.KnownAddresses.Set(float64(c.state.Book.Len()))
	logger.Debug("discovery nodes received",
		"addr", pc.Session.Address, "items", len(msg.Nodes.Items), "addresses", observed)
}

// ============================================================================
//                              identify
// ============================================================================

// identifyConnected 发送本端身份，flag 为 0
func (c *Crawler) identifyConnected(pc interfaces.ProtocolContext) {
	self := wire.Identify{
		Flag:          0,
		Name:          c.state.Network.LegacyName(),
		ClientVersion: c.clientVersion,
	}
	msg := wire.IdentifyMessage{Identify: self.Marshal()}
	if m, err := pc.Session.Address.WithoutPeerID().ToMultiaddr(); err == nil {
		msg.ObservedAddr = m.Bytes()
	}
	if err := c.net.Send(pc.Session.ID, pc.Protocol, msg.Marshal()); err != nil {
		logger.Warn("send identify failed", "addr", pc.Session.Address, "err", err)
	}
}

func (c *Crawler) identifyReceived(pc interfaces.ProtocolContext, data []byte) {
	id, err := wire.ParseIdentify(data)
	if err != nil {
		c.metrics.DecodeError(types.ChannelIdentify.String())
		logger.Error("invalid identify message", "addr", pc.Session.Address, "err", err)
		return
	}

	class := types.NodeLight
	if id.IsFull() {
		class = types.NodeFull
	}
	addr := pc.Session.Address

	c.state.Book.Confirm(addr)
	c.state.Versions.Set(addr, id.ClientVersion)
	c.state.Ledger.Identified(addr, id.ClientVersion, class, c.now())

	c.metrics.IdentifyMessages.Inc()
	logger.Info("identify received",
		"network", c.state.Network,
		"addr", addr,
		"version", id.ClientVersion,
		"type", class)
}
