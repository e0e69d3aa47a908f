package crawler

import (
	"context"
	"sync"

	"github.com/dep2p/go-ckbcrawler/pkg/interfaces"
	"github.com/dep2p/go-ckbcrawler/pkg/types"
)

// SentFrame FakeNetwork 记录的一次发送
type SentFrame struct {
	Session  types.SessionID
	Protocol types.ProtocolID
	Data     []byte
}

// FakeNetwork 测试用传输层
//
// 只记录调用，不建立任何连接；拨号结果由测试自行回调 Crawler。
type FakeNetwork struct {
	mu           sync.Mutex
	dials        []types.Multiaddr
	disconnected []types.SessionID
	sent         []SentFrame

	// DialErr 非空时 Dial 直接返回该错误
	DialErr error
}

var _ interfaces.Network = (*FakeNetwork)(nil)

// NewFakeNetwork 创建测试用传输层
func NewFakeNetwork() *FakeNetwork {
	return &FakeNetwork{}
}

// Dial 记录拨号
func (f *FakeNetwork) Dial(_ context.Context, addr types.Multiaddr) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.DialErr != nil {
		return f.DialErr
	}
	f.dials = append(f.dials, addr)
	return nil
}

// Disconnect 记录断开
func (f *FakeNetwork) Disconnect(id types.SessionID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.disconnected = append(f.disconnected, id)
	return nil
}

// Send 记录发送
func (f *FakeNetwork) Send(id types.SessionID, proto types.ProtocolID, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, SentFrame{Session: id, Protocol: proto, Data: append([]byte(nil), data...)})
	return nil
}

// Dials 返回已记录的拨号
func (f *FakeNetwork) Dials() []types.Multiaddr {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]types.Multiaddr(nil), f.dials...)
}

// Disconnected 返回已断开的会话
func (f *FakeNetwork) Disconnected() []types.SessionID {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]types.SessionID(nil), f.disconnected...)
}

// Sent 返回已发送的帧
func (f *FakeNetwork) Sent() []SentFrame {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]SentFrame(nil), f.sent...)
}
