// Package session 记录爬虫当前打开的出站会话
package session

import (
	"sort"
	"sync"
	"time"

	"github.com/dep2p/go-ckbcrawler/pkg/types"
)

// Session 会话记录
type Session struct {
	ID       types.SessionID
	Address  types.Multiaddr
	OpenedAt time.Time

	// Protocols 已打开的协议通道
	Protocols []types.ProtocolID
}

type entry struct {
	addr      types.Multiaddr
	openedAt  time.Time
	protocols map[types.ProtocolID]struct{}
}

// Registry 会话登记表
type Registry struct {
	mu       sync.RWMutex
	sessions map[types.SessionID]*entry

	// byAddr 地址 → 会话数量，HasAddress 使用
	byAddr map[types.Multiaddr]int
}

// NewRegistry 创建会话登记表
func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[types.SessionID]*entry),
		byAddr:   make(map[types.Multiaddr]int),
	}
}

// Add 登记会话，重复登记返回 false
func (r *Registry) Add(id types.SessionID, addr types.Multiaddr, openedAt time.Time) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[id]; ok {
		return false
	}
	r.sessions[id] = &entry{
		addr:      addr,
		openedAt:  openedAt,
		protocols: make(map[types.ProtocolID]struct{}),
	}
	r.byAddr[addr]++
	return true
}

// Remove 注销会话
func (r *Registry) Remove(id types.SessionID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.sessions[id]
	if !ok {
		return false
	}
	delete(r.sessions, id)
	if r.byAddr[e.addr] <= 1 {
		delete(r.byAddr, e.addr)
	} else {
		r.byAddr[e.addr]--
	}
	return true
}

// AddProtocol 记录会话上打开的协议通道
func (r *Registry) AddProtocol(id types.SessionID, proto types.ProtocolID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e, ok := r.sessions[id]; ok {
		e.protocols[proto] = struct{}{}
	}
}

// RemoveProtocol 移除会话上关闭的协议通道
func (r *Registry) RemoveProtocol(id types.SessionID, proto types.ProtocolID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e, ok := r.sessions[id]; ok {
		delete(e.protocols, proto)
	}
}

// HasAddress 是否存在到该地址的会话
func (r *Registry) HasAddress(addr types.Multiaddr) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.byAddr[addr] > 0
}

// Get 返回单个会话
func (r *Registry) Get(id types.SessionID) (Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.sessions[id]
	if !ok {
		return Session{}, false
	}
	return e.session(id), true
}

// Sessions 返回所有会话的拷贝，按 ID 排序
func (r *Registry) Sessions() []Session {
	r.mu.RLock()
	out := make([]Session, 0, len(r.sessions))
	for id, e := range r.sessions {
		out = append(out, e.session(id))
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Len 返回会话数量
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

func (e *entry) session(id types.SessionID) Session {
	s := Session{
		ID:        id,
		Address:   e.addr,
		OpenedAt:  e.openedAt,
		Protocols: make([]types.ProtocolID, 0, len(e.protocols)),
	}
	for p := range e.protocols {
		s.Protocols = append(s.Protocols, p)
	}
	sort.Slice(s.Protocols, func(i, j int) bool { return s.Protocols[i] < s.Protocols[j] })
	return s
}
