// Package addrbook 实现爬虫的地址簿
//
// 地址簿记录所有通过 discovery 听说过的地址及其见证计数：
//   - 首次听说计为 1，之后每次听说加 1
//   - 直接完成 identify 的地址计数置为 1
//   - 见证晋升时计数清零
//   - 地址只增不删，拨号候选从全体地址中均匀随机选取
//
// 配置了本地存储时，地址簿可以写入检查点并在启动时恢复（见 persist.go）。
package addrbook
