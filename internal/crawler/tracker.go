package crawler

import (
	"context"
	"errors"
	"time"

	"github.com/dep2p/go-ckbcrawler/pkg/interfaces"
	"github.com/dep2p/go-ckbcrawler/pkg/types"
)

// ============================================================================
//                              会话事件
// ============================================================================

// HandleEvent 处理会话事件
//
// 入站会话在打开时立即断开，不登记也不处理其任何消息。
func (c *Crawler) HandleEvent(ctx context.Context, ev interfaces.ServiceEvent) {
	s := ev.Session
	switch ev.Kind {
	case interfaces.SessionOpen:
		if s.Inbound() {
			c.metrics.RejectedInbound.Inc()
			logger.Debug("reject inbound session", "addr", s.Address)
			if err := c.net.Disconnect(s.ID); err != nil {
				logger.Warn("disconnect inbound session failed", "addr", s.Address, "err", err)
			}
			return
		}
		if c.state.Sessions.Add(s.ID, s.Address, c.now()) {
			logger.Debug("session opened", "network", c.state.Network, "session", s.ID, "addr", s.Address)
		}

	case interfaces.SessionClose:
		if c.state.Sessions.Remove(s.ID) {
			logger.Debug("session closed", "network", c.state.Network, "session", s.ID, "addr", s.Address)
		}
	}
	c.metrics.OpenSessions.Set(float64(c.state.Sessions.Len()))
}

// HandleError 处理传输层异步错误
//
// 拨号失败进入见证晋升检查，其余错误只记录。
func (c *Crawler) HandleError(ctx context.Context, err error) {
	var (
		dialErr   *interfaces.DialError
		selectErr *interfaces.ProtocolSelectError
	)
	switch {
	case errors.As(err, &dialErr):
		c.metrics.DialFailures.Inc()
		logger.Debug("dial failed", "addr", dialErr.Addr, "err", dialErr.Err)
		c.PromoteIfWitnessed(dialErr.Addr)
	case errors.As(err, &selectErr):
		logger.Debug("protocol select failed",
			"addr", selectErr.Session.Address, "protocol", selectErr.Protocol, "err", selectErr.Err)
	default:
		logger.Warn("service error", "network", c.state.Network, "err", err)
	}
}

// PromoteIfWitnessed 见证计数达到阈值时把地址标记为在线
//
// 依次进入地址簿、版本缓存、账本，每次只持有一把锁。
func (c *Crawler) PromoteIfWitnessed(addr types.Multiaddr) bool {
	if !c.state.Book.TakeIfWitnessed(addr, c.threshold) {
		return false
	}
	version, _ := c.state.Versions.Get(addr)
	c.state.Ledger.Promote(addr, version, c.now())

	c.metrics.Promotions.Inc()
	logger.Info("dial failed but treat as online by witnesses",
		"network", c.state.Network, "addr", addr, "threshold", c.threshold)
	return true
}

// ============================================================================
//                              过期会话清理
// ============================================================================

// SweepStale 断开过期的会话，返回断开数量
//
// 参考时间取该 IP 最近一次 identify 与会话登记时间中较晚者，
// 距今超过 staleWindow 即断开。
func (c *Crawler) SweepStale(ctx context.Context) int {
	now := c.now()
	n := 0
	for _, s := range c.state.Sessions.Sessions() {
		ref := s.OpenedAt
		if last, ok := c.state.Ledger.LastSeen(s.Address.Host()); ok && last.After(ref) {
			ref = last
		}
		if now.Sub(ref) <= c.staleWindow {
			continue
		}

		logger.Debug("disconnect stale session",
			"addr", s.Address, "idle", now.Sub(ref).Truncate(time.Millisecond))
		if err := c.net.Disconnect(s.ID); err != nil {
			logger.Debug("disconnect stale session failed", "addr", s.Address, "err", err)
			continue
		}
		c.metrics.StaleDisconnects.Inc()
		n++
	}
	return n
}

// ============================================================================
//                              拨号
// ============================================================================

// DialOnce 随机选一个地址拨号；已有会话时跳过
func (c *Crawler) DialOnce(ctx context.Context) (types.Multiaddr, bool) {
	addr, ok := c.state.Book.Random()
	if !ok || c.state.Sessions.HasAddress(addr) {
		return "", false
	}
	if err := c.net.Dial(ctx, addr); err != nil {
		logger.Warn("dial not issued", "addr", addr, "err", err)
		return "", false
	}
	c.metrics.Dials.Inc()
	return addr, true
}

// Prune 地址清理占位，当前不做任何事
func (c *Crawler) Prune(ctx context.Context) {
	logger.Debug("prune tick", "network", c.state.Network, "addresses", c.state.Book.Len())
}
