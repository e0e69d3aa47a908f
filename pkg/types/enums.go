package types

// ============================================================================
//                              NodeType - 节点能力类型
// ============================================================================

// NodeType 节点能力类型
//
// 数值即写入数据库 node_type 列的值。
type NodeType uint8

const (
	// NodeUnknown 未知（见证晋升的节点无法得到能力位）
	NodeUnknown NodeType = iota
	// NodeFull 全节点
	NodeFull
	// NodeLight 非全节点
	NodeLight
)

// String 返回节点类型的字符串表示
func (t NodeType) String() string {
	switch t {
	case NodeFull:
		return "full"
	case NodeLight:
		return "light"
	default:
		return "unknown"
	}
}

// ============================================================================
//                              Direction - 连接方向
// ============================================================================

// Direction 会话方向
type Direction int

const (
	// DirUnknown 未知方向
	DirUnknown Direction = iota
	// DirInbound 入站会话
	DirInbound
	// DirOutbound 出站会话
	DirOutbound
)

// String 返回方向的字符串表示
func (d Direction) String() string {
	switch d {
	case DirInbound:
		return "inbound"
	case DirOutbound:
		return "outbound"
	default:
		return "unknown"
	}
}
