package swarm

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/libp2p/go-yamux/v5"
	mss "github.com/multiformats/go-multistream"
	"golang.org/x/sync/errgroup"

	"github.com/dep2p/go-ckbcrawler/pkg/interfaces"
	"github.com/dep2p/go-ckbcrawler/pkg/types"
)

// session 一个 yamux 会话
type session struct {
	sc  interfaces.SessionContext
	mux *yamux.Session

	mu      sync.RWMutex
	streams map[types.ProtocolID]*stream
}

// stream 会话上一个协议的流
type stream struct {
	s   *yamux.Stream
	wmu sync.Mutex
}

func (sess *session) stream(proto types.ProtocolID) *stream {
	sess.mu.RLock()
	defer sess.mu.RUnlock()
	return sess.streams[proto]
}

func (sess *session) setStream(proto types.ProtocolID, st *stream) {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if st == nil {
		delete(sess.streams, proto)
		return
	}
	sess.streams[proto] = st
}

// addSession 登记新会话，Swarm 已关闭时关闭 mux 并返回 nil
func (s *Swarm) addSession(addr types.Multiaddr, dir types.Direction, mux *yamux.Session) *session {
	sess := &session{
		sc: interfaces.SessionContext{
			ID:        types.SessionID(s.nextID.Add(1)),
			Address:   addr,
			Direction: dir,
			OpenedAt:  time.Now(),
		},
		mux:     mux,
		streams: make(map[types.ProtocolID]*stream),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed.Load() {
		_ = mux.Close()
		return nil
	}
	s.sessions[sess.sc.ID] = sess
	return sess
}

func (s *Swarm) session(id types.SessionID) *session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sessions[id]
}

func (s *Swarm) removeSession(id types.SessionID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

// serve 驱动会话的完整生命周期
//
// SessionOpen 同步回调后，如果会话仍然存活，由 streams 打开并服务协议流；
// 所有流结束且会话关闭后回调 SessionClose。
func (s *Swarm) serve(sess *session, streams func(*session)) {
	h := s.serviceHandler()
	h.HandleEvent(s.ctx, interfaces.ServiceEvent{Kind: interfaces.SessionOpen, Session: sess.sc})

	if !sess.mux.IsClosed() {
		streams(sess)
	}

	<-sess.mux.CloseChan()
	s.removeSession(sess.sc.ID)
	h.HandleEvent(s.ctx, interfaces.ServiceEvent{Kind: interfaces.SessionClose, Session: sess.sc})
}

// openStreams 出站会话：为每个协议打开一条流并协商版本
func (s *Swarm) openStreams(sess *session) {
	var g errgroup.Group
	for _, spec := range s.protocolSpecs() {
		g.Go(func() error {
			s.openProtocol(sess, spec)
			return nil
		})
	}
	_ = g.Wait()
}

func (s *Swarm) openProtocol(sess *session, spec interfaces.ProtocolSpec) {
	ctx, cancel := context.WithTimeout(s.ctx, s.cfg.NegotiateTimeout)
	defer cancel()

	ys, err := sess.mux.OpenStream(ctx)
	if err != nil {
		s.selectFailed(sess, spec.ID, err)
		return
	}

	candidates := make([]string, len(spec.Versions))
	for i, v := range spec.Versions {
		candidates[i] = spec.ID.WithVersion(v)
	}

	_ = ys.SetDeadline(time.Now().Add(s.cfg.NegotiateTimeout))
	negotiated, err := mss.SelectOneOf(candidates, ys)
	if err != nil {
		_ = ys.Reset()
		s.selectFailed(sess, spec.ID, err)
		return
	}
	_ = ys.SetDeadline(time.Time{})

	version, _ := spec.ID.SplitVersion(negotiated)
	s.runStream(sess, spec, ys, version)
}

// acceptStreams 入站会话：接受对端打开的流并协商
func (s *Swarm) acceptStreams(sess *session) {
	specs := s.protocolSpecs()
	m := mss.NewMultistreamMuxer[string]()
	byName := make(map[string]interfaces.ProtocolSpec)
	for _, spec := range specs {
		for _, v := range spec.Versions {
			name := spec.ID.WithVersion(v)
			m.AddHandler(name, nil)
			byName[name] = spec
		}
	}

	var g errgroup.Group
	for {
		ys, err := sess.mux.AcceptStream()
		if err != nil {
			break
		}
		g.Go(func() error {
			_ = ys.SetDeadline(time.Now().Add(s.cfg.NegotiateTimeout))
			name, _, err := m.Negotiate(ys)
			if err != nil {
				_ = ys.Reset()
				logger.Debug("inbound negotiation failed", "session", sess.sc.ID, "err", err)
				return nil
			}
			_ = ys.SetDeadline(time.Time{})

			spec := byName[name]
			version, _ := spec.ID.SplitVersion(name)
			s.runStream(sess, spec, ys, version)
			return nil
		})
	}
	_ = g.Wait()
}

func (s *Swarm) selectFailed(sess *session, proto types.ProtocolID, err error) {
	if sess.mux.IsClosed() {
		return
	}
	s.serviceHandler().HandleError(s.ctx, &interfaces.ProtocolSelectError{
		Session:  sess.sc,
		Protocol: proto,
		Err:      err,
	})
}

// runStream 登记流，回调 Connected，然后读帧直到流结束
func (s *Swarm) runStream(sess *session, spec interfaces.ProtocolSpec, ys *yamux.Stream, version string) {
	pc := interfaces.ProtocolContext{
		Session:  sess.sc,
		Protocol: spec.ID,
		Version:  version,
	}

	sess.setStream(spec.ID, &stream{s: ys})
	defer func() {
		sess.setStream(spec.ID, nil)
		spec.Handler.Disconnected(s.ctx, pc)
	}()

	spec.Handler.Connected(s.ctx, pc)

	for {
		data, err := readFrame(ys, s.cfg.MaxFrameSize)
		if err != nil {
			if errors.Is(err, ErrFrameTooLarge) {
				logger.Warn("oversized frame, closing stream",
					"session", sess.sc.ID, "protocol", spec.ID, "err", err)
			} else if !errors.Is(err, io.EOF) && !sess.mux.IsClosed() {
				logger.Debug("stream read ended", "session", sess.sc.ID, "protocol", spec.ID, "err", err)
			}
			_ = ys.Reset()
			return
		}
		spec.Handler.Received(s.ctx, pc, data)
	}
}
