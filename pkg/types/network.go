package types

import (
	"fmt"
	"strings"
)

// ============================================================================
//                              NetworkType - CKB 网络
// ============================================================================

// NetworkType 爬虫支持的 CKB 网络
type NetworkType int

const (
	// Mirana 主网
	Mirana NetworkType = iota
	// Pudge 测试网
	Pudge
	// Dev 本地开发网
	Dev
)

// AllNetworks 所有支持的网络
var AllNetworks = []NetworkType{Mirana, Pudge, Dev}

// String 返回网络名称
func (n NetworkType) String() string {
	switch n {
	case Mirana:
		return "mirana"
	case Pudge:
		return "pudge"
	case Dev:
		return "dev"
	default:
		return "unknown"
	}
}

// LegacyName 返回 CKB 旧版网络名称
//
// 该名称同时用作身份消息中的 name 字段和数据库 schema 名。
func (n NetworkType) LegacyName() string {
	switch n {
	case Mirana:
		return "ckb"
	case Pudge:
		return "ckb_testnet"
	case Dev:
		return "ckb_dev"
	default:
		return ""
	}
}

// Bootnodes 返回网络内置的引导节点
//
// 引导地址固定写死，不可通过配置修改。
func (n NetworkType) Bootnodes() []Multiaddr {
	switch n {
	case Mirana:
		return []Multiaddr{
			"/ip4/47.110.15.57/tcp/8114/p2p/QmXS4Kbc9HEeykHUTJCm2tNmqghbvWyYpUp6BtE5b6VrAU",
		}
	case Pudge:
		return []Multiaddr{
			"/ip4/47.111.169.36/tcp/8111/p2p/QmNQ4jky6uVqLDrPU7snqxARuNGWNLgSrTnssbRuy3ij2W",
		}
	case Dev:
		return []Multiaddr{
			"/ip4/127.0.0.1/tcp/8114",
		}
	default:
		return nil
	}
}

// ParseNetwork 解析网络名称
//
// 接受新名称（mirana / pudge / dev）、旧版名称（ckb / ckb_testnet / ckb_dev）
// 以及 main / test 别名，大小写不敏感。
func ParseNetwork(s string) (NetworkType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "mirana", "ckb", "main", "mainnet":
		return Mirana, nil
	case "pudge", "ckb_testnet", "test", "testnet":
		return Pudge, nil
	case "dev", "ckb_dev":
		return Dev, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownNetwork, s)
	}
}

// ParseNetworks 解析逗号分隔的网络列表，去重并保持顺序
func ParseNetworks(s string) ([]NetworkType, error) {
	var out []NetworkType
	seen := make(map[NetworkType]bool)
	for _, part := range strings.Split(s, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		n, err := ParseNetwork(part)
		if err != nil {
			return nil, err
		}
		if seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out, nil
}

// MarshalText 实现 encoding.TextMarshaler
func (n NetworkType) MarshalText() ([]byte, error) {
	return []byte(n.String()), nil
}

// UnmarshalText 实现 encoding.TextUnmarshaler，供配置文件解析使用
func (n *NetworkType) UnmarshalText(text []byte) error {
	v, err := ParseNetwork(string(text))
	if err != nil {
		return err
	}
	*n = v
	return nil
}
