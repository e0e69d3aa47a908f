// Package types 提供 ckb-crawler 核心类型定义
package types

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"

	ma "github.com/multiformats/go-multiaddr"
)

// ============================================================================
//                              Multiaddr - 统一地址类型
// ============================================================================

// Multiaddr 统一地址类型（值对象）
//
// Multiaddr 是爬虫内部唯一的地址表示形式，可作为 map 键使用。
// 地址簿、会话登记、版本缓存都以 canonical 字符串为键。
//
// 约束：
//   - String() 必须始终返回 canonical multiaddr（以 "/" 开头）
//   - 构造后不可变
//
// 格式示例：
//   - /ip4/47.110.15.57/tcp/8114
//   - /ip4/47.110.15.57/tcp/8114/p2p/QmXS4Kbc9HEeykHUTJCm2tNmqghbvWyYpUp6BtE5b6VrAU
//   - /dns4/seed.example.com/tcp/8114
type Multiaddr string

// Multiaddr 错误定义
var (
	// ErrInvalidMultiaddr 无效的 multiaddr 格式
	ErrInvalidMultiaddr = errors.New("invalid multiaddr format")

	// ErrEmptyMultiaddr 空 multiaddr
	ErrEmptyMultiaddr = errors.New("empty multiaddr")

	// ErrNotMultiaddrFormat 不是 multiaddr 格式（不以 / 开头）
	ErrNotMultiaddrFormat = errors.New("not multiaddr format: must start with /")
)

// ============================================================================
//                              解析/构建
// ============================================================================

// ParseMultiaddr 解析并规范化 multiaddr
//
// 输入交给 go-multiaddr 校验，返回其规范字符串形式；第一个组件必须是
// IP、域名或 /p2p/。"1.2.3.4:8114" 这类 host:port 形式返回
// ErrNotMultiaddrFormat。
func ParseMultiaddr(s string) (Multiaddr, error) {
	s = strings.TrimRight(strings.TrimSpace(s), "/")
	switch {
	case s == "":
		return "", ErrEmptyMultiaddr
	case s[0] != '/':
		return "", ErrNotMultiaddrFormat
	}

	m, err := ma.NewMultiaddr(s)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidMultiaddr, err)
	}
	first, _ := ma.SplitFirst(m)
	if first == nil || !dialable[first.Protocol().Code] {
		return "", fmt.Errorf("%w: unsupported leading protocol in %q", ErrInvalidMultiaddr, s)
	}
	return Multiaddr(m.String()), nil
}

// dialable 允许出现在地址开头的协议
var dialable = map[int]bool{
	ma.P_IP4:     true,
	ma.P_IP6:     true,
	ma.P_DNS:     true,
	ma.P_DNS4:    true,
	ma.P_DNS6:    true,
	ma.P_DNSADDR: true,
	ma.P_P2P:     true,
}

// MustParseMultiaddr 解析 multiaddr，失败时 panic
//
// 仅用于常量初始化或测试代码，生产代码应使用 ParseMultiaddr。
func MustParseMultiaddr(s string) Multiaddr {
	addr, err := ParseMultiaddr(s)
	if err != nil {
		panic(fmt.Sprintf("MustParseMultiaddr(%q): %v", s, err))
	}
	return addr
}

// MultiaddrFromBytes 解码二进制 multiaddr（discovery 消息中的地址格式）
func MultiaddrFromBytes(b []byte) (Multiaddr, error) {
	if len(b) == 0 {
		return "", ErrEmptyMultiaddr
	}
	m, err := ma.NewMultiaddrBytes(b)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidMultiaddr, err)
	}
	return ParseMultiaddr(m.String())
}

// ============================================================================
//                              访问方法
// ============================================================================

// String 返回 canonical multiaddr 字符串
func (m Multiaddr) String() string {
	return string(m)
}

// IsEmpty 是否为空
func (m Multiaddr) IsEmpty() bool {
	return m == ""
}

// value 返回第一个名为 proto 之一的组件值
//
// 按 "/名称/值" 成对扫描规范字符串，不要求 /p2p/ 的值是合法 multihash，
// 已知键类型转换得到的地址同样可用。
func (m Multiaddr) value(protos ...string) string {
	parts := strings.Split(strings.TrimPrefix(string(m), "/"), "/")
	for i := 0; i+1 < len(parts); i += 2 {
		for _, p := range protos {
			if parts[i] == p {
				return parts[i+1]
			}
		}
	}
	return ""
}

// Host 返回地址中的主机部分（IP 或域名）
//
// 账本以该值作为节点键。无法提取时返回空字符串。
func (m Multiaddr) Host() string {
	return m.value("ip4", "ip6", "dns", "dns4", "dns6")
}

// IP 返回 IP 地址，域名地址返回 nil
func (m Multiaddr) IP() net.IP {
	return net.ParseIP(m.Host())
}

// Port 返回 TCP 端口号，没有时返回 0
func (m Multiaddr) Port() int {
	port, err := strconv.Atoi(m.value("tcp"))
	if err != nil {
		return 0
	}
	return port
}

// PeerID 返回末尾 /p2p/<id> 组件中的节点 ID
func (m Multiaddr) PeerID() string {
	_, id, _ := m.splitPeerID()
	return id
}

// WithoutPeerID 移除末尾的 /p2p/<id> 组件
func (m Multiaddr) WithoutPeerID() Multiaddr {
	head, _, ok := m.splitPeerID()
	if !ok {
		return m
	}
	return Multiaddr(head)
}

func (m Multiaddr) splitPeerID() (head, id string, ok bool) {
	s := string(m)
	i := strings.LastIndex(s, "/p2p/")
	if i < 0 {
		return "", "", false
	}
	id = s[i+len("/p2p/"):]
	if id == "" || strings.Contains(id, "/") {
		return "", "", false
	}
	return s[:i], id, true
}

// ToMultiaddr 转换为 go-multiaddr 值，供拨号使用
func (m Multiaddr) ToMultiaddr() (ma.Multiaddr, error) {
	return ma.NewMultiaddr(string(m))
}
