// Package sink 实现爬虫观测结果的持久化写入
//
// 遥测任务把记录转换为 WriteRequest 放入有界队列；Writer 在独立的
// goroutine 中按数量或时间阈值攒批，每批在一个事务中执行。
// 失败的批次记录日志后丢弃，不重试。
//
// 记录类型:
//   - PeerRecord: <ns>.peer，按 address 更新 time 与 n_reachable
//   - IPInfoRecord: <ns>.ipinfo，已存在时忽略
//
// <ns> 为网络的旧名称（ckb / ckb_testnet / ckb_dev）。
package sink
