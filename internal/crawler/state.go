package crawler

import (
	"sync"

	"github.com/benbjohnson/clock"

	"github.com/dep2p/go-ckbcrawler/internal/crawler/addrbook"
	"github.com/dep2p/go-ckbcrawler/internal/crawler/ledger"
	"github.com/dep2p/go-ckbcrawler/internal/crawler/session"
	"github.com/dep2p/go-ckbcrawler/pkg/types"
)

// State 一个网络的共享状态
type State struct {
	Network  types.NetworkType
	Book     *addrbook.Book
	Ledger   *ledger.Ledger
	Versions *ledger.VersionCache
	Sessions *session.Registry
	Clock    clock.Clock

	knownMu sync.RWMutex
	known   map[string]struct{}
}

// NewState 创建状态，地址簿用网络的引导节点初始化
func NewState(network types.NetworkType, clk clock.Clock, opts ...addrbook.Option) *State {
	if clk == nil {
		clk = clock.New()
	}
	return &State{
		Network:  network,
		Book:     addrbook.New(network.Bootnodes(), opts...),
		Ledger:   ledger.New(),
		Versions: ledger.NewVersionCache(),
		Sessions: session.NewRegistry(),
		Clock:    clk,
		known:    make(map[string]struct{}),
	}
}

// KnownIP 该 IP 是否已成功定位
func (s *State) KnownIP(ip string) bool {
	s.knownMu.RLock()
	defer s.knownMu.RUnlock()
	_, ok := s.known[ip]
	return ok
}

// MarkKnown 记录已成功定位的 IP
func (s *State) MarkKnown(ip string) {
	s.knownMu.Lock()
	defer s.knownMu.Unlock()
	s.known[ip] = struct{}{}
}

// KnownCount 已定位 IP 数量
func (s *State) KnownCount() int {
	s.knownMu.RLock()
	defer s.knownMu.RUnlock()
	return len(s.known)
}
