package types

import (
	"strconv"
	"strings"
)

// ============================================================================
//                              SessionID - 会话标识
// ============================================================================

// SessionID 传输层分配的会话标识，进程内单调递增
type SessionID uint64

// String 返回会话 ID 的字符串表示
func (id SessionID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}

// ============================================================================
//                              ProtocolID - 协议标识
// ============================================================================

// ProtocolID 协议名称（不含版本号）
//
// 格式：/ckb/<name>，协商时与版本号拼接为 /ckb/<name>/<version>。
type ProtocolID string

// String 返回协议 ID 的字符串表示
func (p ProtocolID) String() string {
	return string(p)
}

// WithVersion 拼接协商用的完整协议串
func (p ProtocolID) WithVersion(version string) string {
	return string(p) + "/" + version
}

// SplitVersion 从协商结果中拆出版本号
//
// 协商结果不以本协议为前缀时返回 false。
func (p ProtocolID) SplitVersion(negotiated string) (string, bool) {
	prefix := string(p) + "/"
	if !strings.HasPrefix(negotiated, prefix) {
		return "", false
	}
	return negotiated[len(prefix):], true
}

// ============================================================================
//                              Channel - 协议通道类型
// ============================================================================

// Channel 爬虫关心的三类协议通道
type Channel int

const (
	// ChannelUnknown 未知通道
	ChannelUnknown Channel = iota
	// ChannelDiscovery 节点地址交换
	ChannelDiscovery
	// ChannelIdentify 身份交换（版本号与能力位）
	ChannelIdentify
	// ChannelSync 批量数据通道，仅为兼容全节点而打开
	ChannelSync
)

// String 返回通道名称
func (c Channel) String() string {
	switch c {
	case ChannelDiscovery:
		return "discovery"
	case ChannelIdentify:
		return "identify"
	case ChannelSync:
		return "sync"
	default:
		return "unknown"
	}
}

// ============================================================================
//                              协议常量
// ============================================================================

const (
	// ProtocolDiscovery 发现协议
	ProtocolDiscovery ProtocolID = "/ckb/discovery"
	// ProtocolIdentify 身份协议
	ProtocolIdentify ProtocolID = "/ckb/identify"
	// ProtocolSync 同步协议
	ProtocolSync ProtocolID = "/ckb/syn"
)

const (
	// DiscoveryVersionCurrent 当前发现协议版本
	DiscoveryVersionCurrent = "0.0.2"
	// DiscoveryVersionLegacy 旧版发现协议，消息需要长度前缀包装
	DiscoveryVersionLegacy = "0.0.1"
	// IdentifyVersion 身份协议版本
	IdentifyVersion = "0.0.1"
	// SyncVersion 同步协议版本
	SyncVersion = "1"
)

// ChannelOf 返回协议对应的通道类型
func ChannelOf(p ProtocolID) Channel {
	switch p {
	case ProtocolDiscovery:
		return ChannelDiscovery
	case ProtocolIdentify:
		return ChannelIdentify
	case ProtocolSync:
		return ChannelSync
	default:
		return ChannelUnknown
	}
}
