// Package interfaces 定义 ckb-crawler 的公共接口
//
// 本包只包含传输层与爬虫之间的契约：
//   - network.go  - Network（拨号、断开、发送）、ServiceHandler（会话事件）、
//     ProtocolHandler（协议通道回调）
//
// 具体实现位于 internal/core/swarm，消费方位于 internal/crawler。
// 测试可以用内存实现替换 Network，不需要真实网络。
package interfaces
