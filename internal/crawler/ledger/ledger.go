// Package ledger 记录爬虫确认过的节点
//
// Ledger 以 IP 为键保存节点元数据；VersionCache 以地址为键保存最近一次
// identify 报告的客户端版本，用于回填见证晋升的节点。
//
// 条目只在两种情况下创建：完成 identify，或地址通过见证晋升。
// 条目从不删除，生命周期与进程相同。
//
// 尚无条目的 reporter 发来的邻居报告先暂存，条目创建时并入可达集合。
// 暂存区最多保存 MaxPendingReporters 个 reporter，每个最多
// MaxPendingNeighbors 个邻居 IP，超出的报告丢弃。
package ledger

import (
	"sync"
	"time"

	"github.com/dep2p/go-ckbcrawler/pkg/types"
)

// PeerInfo 节点元数据
type PeerInfo struct {
	// IP 账本键
	IP string

	// Address 创建条目时的地址
	Address types.Multiaddr

	// LastSeen 最近一次 identify 或晋升的时间，零值表示从未
	LastSeen time.Time

	// Reachable 该节点通过 discovery 报告的邻居 IP
	Reachable map[string]struct{}

	// Version 客户端版本
	Version string

	// Type 节点能力类型
	Type types.NodeType
}

// Online 在 now 时刻是否处于 window 窗口内
func (p *PeerInfo) Online(now time.Time, window time.Duration) bool {
	if p.LastSeen.IsZero() {
		return false
	}
	return now.Sub(p.LastSeen) <= window
}

func (p *PeerInfo) clone() PeerInfo {
	c := *p
	c.Reachable = make(map[string]struct{}, len(p.Reachable))
	for ip := range p.Reachable {
		c.Reachable[ip] = struct{}{}
	}
	return c
}

// 暂存区上限
const (
	MaxPendingReporters = 4096
	MaxPendingNeighbors = 4096
)

// Ledger 节点账本
type Ledger struct {
	mu    sync.RWMutex
	peers map[string]*PeerInfo

	// pending 条目创建之前收到的邻居报告，条目创建时合并
	pending map[string]map[string]struct{}
}

// New 创建空账本
func New() *Ledger {
	return &Ledger{
		peers:   make(map[string]*PeerInfo),
		pending: make(map[string]map[string]struct{}),
	}
}

// entryLocked 返回 ip 对应的条目，不存在时创建
func (l *Ledger) entryLocked(ip string, addr types.Multiaddr) *PeerInfo {
	if p, ok := l.peers[ip]; ok {
		return p
	}
	p := &PeerInfo{
		IP:        ip,
		Address:   addr,
		Reachable: l.pending[ip],
	}
	if p.Reachable == nil {
		p.Reachable = make(map[string]struct{})
	}
	delete(l.pending, ip)
	l.peers[ip] = p
	return p
}

// Identified 记录一次完成的 identify
//
// 每次 identify 都会刷新版本、能力类型与最后可见时间。
func (l *Ledger) Identified(addr types.Multiaddr, version string, class types.NodeType, now time.Time) {
	ip := addr.Host()
	if ip == "" {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	p := l.entryLocked(ip, addr)
	p.Version = version
	p.Type = class
	p.LastSeen = now
}

// Promote 将见证晋升的地址标记为在线
//
// 新建条目的能力类型为 Unknown；version 非空时覆盖版本。
func (l *Ledger) Promote(addr types.Multiaddr, version string, now time.Time) {
	ip := addr.Host()
	if ip == "" {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	p := l.entryLocked(ip, addr)
	p.LastSeen = now
	if version != "" {
		p.Version = version
	}
}

// ExtendReachable 把邻居 IP 加入 reporter 的可达集合
//
// reporter 尚无条目时先暂存，不创建条目。
func (l *Ledger) ExtendReachable(reporter types.Multiaddr, ips []string) {
	ip := reporter.Host()
	if ip == "" || len(ips) == 0 {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if p, ok := l.peers[ip]; ok {
		addAll(p.Reachable, ips, -1)
		return
	}

	set := l.pending[ip]
	if set == nil {
		if len(l.pending) >= MaxPendingReporters {
			return
		}
		set = make(map[string]struct{}, len(ips))
		l.pending[ip] = set
	}
	addAll(set, ips, MaxPendingNeighbors)
}

// addAll 把 ips 加入 set；limit 非负时 set 最多 limit 个元素
func addAll(set map[string]struct{}, ips []string, limit int) {
	for _, n := range ips {
		if n == "" {
			continue
		}
		if _, ok := set[n]; !ok && limit >= 0 && len(set) >= limit {
			return
		}
		set[n] = struct{}{}
	}
}

// PendingLen 暂存的 reporter 数量
func (l *Ledger) PendingLen() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.pending)
}

// Get 返回条目拷贝
func (l *Ledger) Get(ip string) (PeerInfo, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	p, ok := l.peers[ip]
	if !ok {
		return PeerInfo{}, false
	}
	return p.clone(), true
}

// LastSeen 返回最后可见时间，不拷贝可达集合
func (l *Ledger) LastSeen(ip string) (time.Time, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	p, ok := l.peers[ip]
	if !ok {
		return time.Time{}, false
	}
	return p.LastSeen, true
}

// Snapshot 返回所有条目的拷贝
func (l *Ledger) Snapshot() []PeerInfo {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]PeerInfo, 0, len(l.peers))
	for _, p := range l.peers {
		out = append(out, p.clone())
	}
	return out
}

// Len 返回条目数量
func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.peers)
}
