package swarm

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/libp2p/go-yamux/v5"
	ma "github.com/multiformats/go-multiaddr"
	manet "github.com/multiformats/go-multiaddr/net"
	"go.uber.org/multierr"

	"github.com/dep2p/go-ckbcrawler/pkg/interfaces"
	"github.com/dep2p/go-ckbcrawler/pkg/lib/log"
	"github.com/dep2p/go-ckbcrawler/pkg/types"
)

var logger = log.Logger("core/swarm")

// Swarm 会话管理
type Swarm struct {
	cfg Config

	mu        sync.RWMutex
	handler   interfaces.ServiceHandler
	protocols []interfaces.ProtocolSpec
	sessions  map[types.SessionID]*session
	listener  manet.Listener

	nextID atomic.Uint64
	closed atomic.Bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

var _ interfaces.Network = (*Swarm)(nil)

// New 创建 Swarm
func New(cfg Config) (*Swarm, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Swarm{
		cfg:      cfg,
		sessions: make(map[types.SessionID]*session),
		ctx:      ctx,
		cancel:   cancel,
	}, nil
}

// SetHandler 设置会话事件处理方，必须在 Dial / Listen 之前调用
func (s *Swarm) SetHandler(h interfaces.ServiceHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handler = h
}

// AddProtocol 注册协议，之后建立的会话都会打开该协议的流
func (s *Swarm) AddProtocol(spec interfaces.ProtocolSpec) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.protocols = append(s.protocols, spec)
}

func (s *Swarm) protocolSpecs() []interfaces.ProtocolSpec {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]interfaces.ProtocolSpec, len(s.protocols))
	copy(out, s.protocols)
	return out
}

func (s *Swarm) serviceHandler() interfaces.ServiceHandler {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.handler
}

// ============================================================================
//                              Network 接口
// ============================================================================

// Dial 发起出站拨号，立即返回
func (s *Swarm) Dial(ctx context.Context, addr types.Multiaddr) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed.Load() {
		return ErrSwarmClosed
	}
	if s.handler == nil {
		return ErrNoHandler
	}
	s.goLocked(func() { s.dial(addr) })
	return nil
}

// goLocked 启动受 wg 管理的 goroutine
//
// 调用方持有 s.mu 且已确认未关闭；Close 在写锁下置 closed，
// 因此 wg.Add 不会与 wg.Wait 并发。
func (s *Swarm) goLocked(fn func()) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		fn()
	}()
}

func (s *Swarm) dial(addr types.Multiaddr) {
	h := s.serviceHandler()

	dctx, cancel := context.WithTimeout(s.ctx, s.cfg.DialTimeout)
	defer cancel()

	conn, err := dialTCP(dctx, addr)
	if err != nil {
		h.HandleError(s.ctx, &interfaces.DialError{Addr: addr, Err: err})
		return
	}
	mux, err := yamux.Client(conn, yamuxConfig(), nil)
	if err != nil {
		_ = conn.Close()
		h.HandleError(s.ctx, &interfaces.DialError{Addr: addr, Err: err})
		return
	}

	sess := s.addSession(addr, types.DirOutbound, mux)
	if sess == nil {
		return
	}
	s.serve(sess, s.openStreams)
}

// dialTCP 建立 TCP 连接
//
// IP 地址通过 manet 拨号；域名地址用 net.Dialer 解析。
func dialTCP(ctx context.Context, addr types.Multiaddr) (net.Conn, error) {
	if addr.IP() != nil {
		m, err := addr.WithoutPeerID().ToMultiaddr()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnsupportedAddr, err)
		}
		var d manet.Dialer
		return d.DialContext(ctx, m)
	}

	host, port := addr.Host(), addr.Port()
	if host == "" || port == 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedAddr, addr)
	}
	var d net.Dialer
	return d.DialContext(ctx, "tcp", net.JoinHostPort(host, strconv.Itoa(port)))
}

// Disconnect 断开会话
func (s *Swarm) Disconnect(id types.SessionID) error {
	sess := s.session(id)
	if sess == nil {
		return ErrSessionNotFound
	}
	return sess.mux.Close()
}

// Send 在会话的协议流上发送一帧
func (s *Swarm) Send(id types.SessionID, proto types.ProtocolID, data []byte) error {
	sess := s.session(id)
	if sess == nil {
		return ErrSessionNotFound
	}
	st := sess.stream(proto)
	if st == nil {
		return fmt.Errorf("%w: %s on session %s", ErrProtocolNotOpen, proto, id)
	}

	st.wmu.Lock()
	defer st.wmu.Unlock()
	_ = st.s.SetWriteDeadline(time.Now().Add(s.cfg.NegotiateTimeout))
	defer st.s.SetWriteDeadline(time.Time{})
	return writeFrame(st.s, data, s.cfg.MaxFrameSize)
}

// ============================================================================
//                              监听
// ============================================================================

// Listen 监听入站连接
func (s *Swarm) Listen(addr string) error {
	maddr, err := ma.NewMultiaddr(addr)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnsupportedAddr, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed.Load() {
		return ErrSwarmClosed
	}
	if s.handler == nil {
		return ErrNoHandler
	}
	ln, err := manet.Listen(maddr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	s.listener = ln
	logger.Info("listening", "addr", ln.Multiaddr().String())

	s.goLocked(func() { s.acceptLoop(ln) })
	return nil
}

// ListenAddr 返回实际监听地址，未监听时返回 nil
func (s *Swarm) ListenAddr() ma.Multiaddr {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Multiaddr()
}

func (s *Swarm) acceptLoop(ln manet.Listener) {
	for {
		c, err := ln.Accept()
		if err != nil {
			if !s.closed.Load() {
				logger.Warn("accept failed, listener stopped", "err", err)
			}
			return
		}
		s.mu.RLock()
		if s.closed.Load() {
			s.mu.RUnlock()
			_ = c.Close()
			return
		}
		s.goLocked(func() { s.serveInbound(c) })
		s.mu.RUnlock()
	}
}

func (s *Swarm) serveInbound(c manet.Conn) {
	mux, err := yamux.Server(c, yamuxConfig(), nil)
	if err != nil {
		_ = c.Close()
		logger.Debug("inbound yamux setup failed", "remote", c.RemoteMultiaddr().String(), "err", err)
		return
	}
	addr, err := types.ParseMultiaddr(c.RemoteMultiaddr().String())
	if err != nil {
		_ = mux.Close()
		return
	}

	sess := s.addSession(addr, types.DirInbound, mux)
	if sess == nil {
		return
	}
	s.serve(sess, s.acceptStreams)
}

// ============================================================================
//                              关闭
// ============================================================================

// Close 关闭监听与所有会话，等待所有回调结束
func (s *Swarm) Close() error {
	s.mu.Lock()
	if !s.closed.CompareAndSwap(false, true) {
		s.mu.Unlock()
		return nil
	}
	var err error
	if s.listener != nil {
		err = multierr.Append(err, s.listener.Close())
	}
	for _, sess := range s.sessions {
		err = multierr.Append(err, sess.mux.Close())
	}
	s.mu.Unlock()

	s.cancel()
	s.wg.Wait()
	return err
}

// SessionCount 当前会话数
func (s *Swarm) SessionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
