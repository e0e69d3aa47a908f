// Package wire 实现 discovery 与 identify 通道的 molecule 编解码
//
// CKB 节点的协议消息使用 molecule 序列化，所有整数为小端：
//
//	fixvec   元素个数(u32) + 元素
//	table    总长度(u32) + 各字段偏移(u32) + 字段内容；dynvec 布局相同
//	union    成员编号(u32) + 成员内容
//	option   空内容表示 None
//
// 解码按兼容模式处理：table 末尾多出的字段忽略。旧版 discovery 协议
// （0.0.1）在消息外再包一层 4 字节大端长度前缀，见 frame.go。
package wire
