// Package interfaces 定义 ckb-crawler 公共接口
//
// 本文件定义传输层契约，对应 internal/core/swarm/ 实现。
package interfaces

import (
	"context"
	"fmt"
	"time"

	"github.com/dep2p/go-ckbcrawler/pkg/types"
)

// ============================================================================
//                              Network - 传输层控制接口
// ============================================================================

// Network 爬虫可以对传输层发出的控制指令
//
// 所有方法都不阻塞网络事件路径：Dial 立即返回，拨号结果通过
// ServiceHandler 异步回调。
type Network interface {
	// Dial 发起出站拨号
	//
	// 立即返回。成功时回调 HandleEvent(SessionOpen)，
	// 失败时回调 HandleError(*DialError)。
	Dial(ctx context.Context, addr types.Multiaddr) error

	// Disconnect 断开会话
	Disconnect(id types.SessionID) error

	// Send 在会话的协议通道上发送一帧数据
	Send(id types.SessionID, proto types.ProtocolID, data []byte) error
}

// ============================================================================
//                              会话上下文与事件
// ============================================================================

// SessionContext 会话的只读描述
type SessionContext struct {
	// ID 会话标识
	ID types.SessionID

	// Address 对端地址
	Address types.Multiaddr

	// Direction 会话方向
	Direction types.Direction

	// OpenedAt 会话建立时间
	OpenedAt time.Time
}

// Inbound 是否为入站会话
func (s SessionContext) Inbound() bool {
	return s.Direction == types.DirInbound
}

// EventKind 会话事件类型
type EventKind int

const (
	// SessionOpen 会话建立
	SessionOpen EventKind = iota + 1
	// SessionClose 会话关闭
	SessionClose
)

// String 返回事件类型名称
func (k EventKind) String() string {
	switch k {
	case SessionOpen:
		return "session_open"
	case SessionClose:
		return "session_close"
	default:
		return "unknown"
	}
}

// ServiceEvent 会话事件
type ServiceEvent struct {
	Kind    EventKind
	Session SessionContext
}

// ServiceHandler 接收会话级事件与错误
//
// HandleEvent(SessionOpen) 在任何协议流打开之前同步调用，
// 处理方可以在其中断开会话。
type ServiceHandler interface {
	HandleEvent(ctx context.Context, ev ServiceEvent)
	HandleError(ctx context.Context, err error)
}

// ============================================================================
//                              协议通道
// ============================================================================

// ProtocolContext 协议通道回调的上下文
type ProtocolContext struct {
	Session  SessionContext
	Protocol types.ProtocolID

	// Version 协商得到的协议版本
	Version string
}

// ProtocolHandler 单个协议通道的回调
//
// 同一会话同一协议的回调串行调用，不同会话之间并发调用。
type ProtocolHandler interface {
	Connected(ctx context.Context, pc ProtocolContext)
	Received(ctx context.Context, pc ProtocolContext, data []byte)
	Disconnected(ctx context.Context, pc ProtocolContext)
}

// ProtocolSpec 协议注册信息
type ProtocolSpec struct {
	ID types.ProtocolID

	// Versions 支持的版本，按优先级从高到低
	Versions []string

	Handler ProtocolHandler
}

// ============================================================================
//                              异步错误
// ============================================================================

// DialError 拨号失败
type DialError struct {
	Addr types.Multiaddr
	Err  error
}

func (e *DialError) Error() string {
	return fmt.Sprintf("failed to dial %s: %v", e.Addr, e.Err)
}

// Unwrap 返回底层错误
func (e *DialError) Unwrap() error {
	return e.Err
}

// ProtocolSelectError 协议协商失败
type ProtocolSelectError struct {
	Session  SessionContext
	Protocol types.ProtocolID
	Err      error
}

func (e *ProtocolSelectError) Error() string {
	return fmt.Sprintf("protocol %s select failed on session %s (%s): %v",
		e.Protocol, e.Session.ID, e.Session.Address, e.Err)
}

// Unwrap 返回底层错误
func (e *ProtocolSelectError) Unwrap() error {
	return e.Err
}
