// Package swarm 实现爬虫使用的传输层
//
// 每个会话是一条 TCP 连接上的 yamux 会话；会话建立后，每个注册的协议
// 打开一条流，用 multistream-select 协商 "<协议>/<版本>"，之后在流上
// 收发 4 字节大端长度前缀的帧。
//
// 事件顺序:
//
//	Dial ──► TCP ──► yamux ──► HandleEvent(SessionOpen)
//	                              │ 处理方可在此断开
//	                              ▼
//	         每个协议: OpenStream ─► SelectOneOf ─► Connected ─► Received...
//	                                                              │
//	         会话结束: Disconnected (每条流) ──► HandleEvent(SessionClose)
//
// 拨号失败与协商失败通过 HandleError 异步报告。
package swarm
