package wire

import (
	"encoding/binary"
	"fmt"
)

// 出站 GetNodes 的固定参数
const (
	GetNodesVersion = 1
	GetNodesCount   = 1000
)

// DiscoveryPayload 的成员编号
const (
	payloadGetNodes uint32 = 0
	payloadNodes    uint32 = 1
)

// GetNodes 请求对端返回已知地址
//
//	table GetNodes { version: Uint32, count: Uint32, listen_port: PortOpt }
//
// 早期节点只发送前两个字段。
type GetNodes struct {
	Version    uint32
	Count      uint32
	ListenPort uint16 // 0 表示不宣告监听端口
}

// Node 一个邻居节点的地址集合（二进制 multiaddr）
//
//	table Node { addresses: BytesVec }
type Node struct {
	Addresses [][]byte
}

// Nodes 邻居列表
//
//	table Nodes { announce: Bool, items: NodeVec }
type Nodes struct {
	Announce bool
	Items    []Node
}

// DiscoveryMessage discovery 通道消息，GetNodes 与 Nodes 二选一
//
//	table DiscoveryMessage { payload: DiscoveryPayload }
//	union DiscoveryPayload { GetNodes, Nodes }
type DiscoveryMessage struct {
	GetNodes *GetNodes
	Nodes    *Nodes
}

// NewGetNodes 构造爬虫发送的请求
func NewGetNodes() *DiscoveryMessage {
	return &DiscoveryMessage{GetNodes: &GetNodes{
		Version: GetNodesVersion,
		Count:   GetNodesCount,
	}}
}

// Marshal 编码消息
func (m *DiscoveryMessage) Marshal() []byte {
	var payload []byte
	switch {
	case m.GetNodes != nil:
		payload = packUnion(payloadGetNodes, m.GetNodes.marshal())
	case m.Nodes != nil:
		payload = packUnion(payloadNodes, m.Nodes.marshal())
	}
	return packTable(payload)
}

func (g *GetNodes) marshal() []byte {
	var port []byte
	if g.ListenPort != 0 {
		port = binary.LittleEndian.AppendUint16(nil, g.ListenPort)
	}
	return packTable(
		binary.LittleEndian.AppendUint32(nil, g.Version),
		binary.LittleEndian.AppendUint32(nil, g.Count),
		port,
	)
}

func (n *Nodes) marshal() []byte {
	announce := []byte{0}
	if n.Announce {
		announce[0] = 1
	}
	items := make([][]byte, len(n.Items))
	for i, item := range n.Items {
		addrs := make([][]byte, len(item.Addresses))
		for j, a := range item.Addresses {
			addrs[j] = packBytes(a)
		}
		items[i] = packTable(packTable(addrs...))
	}
	return packTable(announce, packTable(items...))
}

// DecodeDiscovery 解码 discovery 消息
//
// 未知的 union 成员返回 ErrUnknownPayload。
func DecodeDiscovery(data []byte) (*DiscoveryMessage, error) {
	f, err := unpackTable(data, "discovery message", 1)
	if err != nil {
		return nil, err
	}
	id, body, err := unpackUnion(f[0])
	if err != nil {
		return nil, fmt.Errorf("payload: %w", err)
	}

	switch id {
	case payloadGetNodes:
		g, err := decodeGetNodes(body)
		if err != nil {
			return nil, err
		}
		return &DiscoveryMessage{GetNodes: g}, nil
	case payloadNodes:
		n, err := decodeNodes(body)
		if err != nil {
			return nil, err
		}
		return &DiscoveryMessage{Nodes: n}, nil
	default:
		return nil, fmt.Errorf("%w: id %d", ErrUnknownPayload, id)
	}
}

// DecodeDiscoveryLegacy 去掉长度前缀后解码
func DecodeDiscoveryLegacy(data []byte) (*DiscoveryMessage, error) {
	payload, err := UnwrapFrame(data)
	if err != nil {
		return nil, err
	}
	return DecodeDiscovery(payload)
}

func decodeGetNodes(data []byte) (*GetNodes, error) {
	f, err := unpackTable(data, "get_nodes", 2)
	if err != nil {
		return nil, err
	}
	version, err := unpackFixed(f[0], "version", 4)
	if err != nil {
		return nil, err
	}
	count, err := unpackFixed(f[1], "count", 4)
	if err != nil {
		return nil, err
	}
	g := &GetNodes{
		Version: binary.LittleEndian.Uint32(version),
		Count:   binary.LittleEndian.Uint32(count),
	}

	// listen_port 是可选的第三个字段，空内容表示 None
	if all, _ := unpackOffsets(data); len(all) > 2 && len(all[2]) > 0 {
		port, err := unpackFixed(all[2], "listen_port", 2)
		if err != nil {
			return nil, err
		}
		g.ListenPort = binary.LittleEndian.Uint16(port)
	}
	return g, nil
}

func decodeNodes(data []byte) (*Nodes, error) {
	f, err := unpackTable(data, "nodes", 2)
	if err != nil {
		return nil, err
	}
	announce, err := unpackFixed(f[0], "announce", 1)
	if err != nil {
		return nil, err
	}
	items, err := unpackOffsets(f[1])
	if err != nil {
		return nil, fmt.Errorf("items: %w", err)
	}

	nodes := &Nodes{Announce: announce[0] != 0, Items: make([]Node, 0, len(items))}
	for i, item := range items {
		nf, err := unpackTable(item, "node", 1)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		raw, err := unpackOffsets(nf[0])
		if err != nil {
			return nil, fmt.Errorf("item %d addresses: %w", i, err)
		}
		var node Node
		for _, r := range raw {
			addr, err := unpackBytes(r)
			if err != nil {
				return nil, fmt.Errorf("item %d address: %w", i, err)
			}
			node.Addresses = append(node.Addresses, addr)
		}
		nodes.Items = append(nodes.Items, node)
	}
	return nodes, nil
}
