package crawler

import (
	"context"
	"net"

	"github.com/dep2p/go-ckbcrawler/internal/crawler/ledger"
	"github.com/dep2p/go-ckbcrawler/internal/sink"
)

// EmitResult 一次遥测的统计
type EmitResult struct {
	// Online 在线节点数
	Online int
	// Records 入队的节点记录数
	Records int
	// Located 本次成功定位的 IP 数
	Located int
	// LookupFailures 本次定位失败的 IP 数
	LookupFailures int
}

// Emit 执行一次遥测
//
// 节点在线当且仅当最后可见时间在 freshWindow 之内。每个在线节点输出一条
// 记录，其 Reachable 为可达集合与在线 IP 集合的交集大小。未定位的 IP
// 查询一次地理位置，失败的 IP 留待下次重试。
func (c *Crawler) Emit(ctx context.Context) EmitResult {
	now := c.now()

	var online []ledger.PeerInfo
	onlineIPs := make(map[string]struct{})
	for _, p := range c.state.Ledger.Snapshot() {
		if p.Online(now, c.freshWindow) {
			online = append(online, p)
			onlineIPs[p.IP] = struct{}{}
		}
	}

	res := EmitResult{Online: len(online)}
	c.metrics.OnlinePeers.Set(float64(len(online)))
	c.metrics.LedgerPeers.Set(float64(c.state.Ledger.Len()))

	for _, p := range online {
		n := 0
		for ip := range p.Reachable {
			if _, ok := onlineIPs[ip]; ok {
				n++
			}
		}
		rec := sink.PeerRecord{
			Network:   c.state.Network,
			Time:      now,
			Version:   p.Version,
			IP:        p.IP,
			Reachable: n,
			Address:   p.Address.String(),
			PeerID:    p.Address.PeerID(),
			NodeType:  p.Type,
		}
		if c.enqueue(ctx, rec.Request()) {
			res.Records++
			c.metrics.Record("peer")
		}
	}

	if c.resolver != nil {
		c.locate(ctx, online, &res)
	}

	logger.Info("telemetry emitted",
		"network", c.state.Network,
		"online", res.Online,
		"ledger", c.state.Ledger.Len(),
		"addresses", c.state.Book.Len(),
		"located", res.Located)
	return res
}

// locate 查询尚未定位的在线 IP
func (c *Crawler) locate(ctx context.Context, online []ledger.PeerInfo, res *EmitResult) {
	for _, p := range online {
		if ctx.Err() != nil {
			break
		}
		// 域名主机无法定位
		if c.state.KnownIP(p.IP) || net.ParseIP(p.IP) == nil {
			continue
		}
		info, err := c.resolver.Lookup(ctx, p.IP)
		if err != nil {
			res.LookupFailures++
			c.metrics.Lookup("error")
			logger.Warn("failed to lookup ipinfo", "ip", p.IP, "err", err)
			continue
		}
		rec := sink.IPInfoRecord{
			Network:   c.state.Network,
			IP:        p.IP,
			Country:   info.Country,
			City:      info.City,
			Region:    info.Region,
			Company:   info.Company,
			Latitude:  info.Latitude,
			Longitude: info.Longitude,
		}
		if c.sink != nil {
			// 未能入队时保留该 IP，下次重试
			if !c.enqueue(ctx, rec.Request()) {
				continue
			}
			c.metrics.Record("ipinfo")
		}
		c.state.MarkKnown(p.IP)
		c.metrics.Lookup("ok")
		res.Located++
	}
}

func (c *Crawler) enqueue(ctx context.Context, req sink.WriteRequest) bool {
	if c.sink == nil {
		return false
	}
	if err := c.sink.Enqueue(ctx, req); err != nil {
		logger.Warn("enqueue write request failed", "err", err)
		return false
	}
	return true
}
