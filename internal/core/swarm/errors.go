package swarm

import "errors"

var (
	// ErrSwarmClosed Swarm 已关闭
	ErrSwarmClosed = errors.New("swarm closed")

	// ErrNoHandler 未设置 ServiceHandler
	ErrNoHandler = errors.New("swarm: no service handler")

	// ErrSessionNotFound 会话不存在
	ErrSessionNotFound = errors.New("swarm: session not found")

	// ErrProtocolNotOpen 会话上没有该协议的流
	ErrProtocolNotOpen = errors.New("swarm: protocol not open")

	// ErrFrameTooLarge 帧超过长度上限
	ErrFrameTooLarge = errors.New("swarm: frame too large")

	// ErrUnsupportedAddr 地址无法拨号
	ErrUnsupportedAddr = errors.New("swarm: unsupported address")

	// ErrInvalidConfig 无效配置
	ErrInvalidConfig = errors.New("swarm: invalid config")
)
