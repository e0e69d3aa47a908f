// Package crawler 实现 CKB 网络爬虫
//
// 每个网络一个 Crawler。所有组件共享同一个 State（地址簿、节点账本、
// 版本缓存、会话登记、已定位 IP 集合），每个结构各自加读写锁，任何操作
// 都不会同时持有两把锁。
//
// # 组件
//
//   - 协议适配器: discovery / identify / sync 三个通道各一个无状态适配器，
//     按 types.Channel 分派到 Crawler 的处理函数
//   - 会话跟踪: 拒绝入站会话，登记出站会话，断开长时间没有 identify 的会话
//   - 调度器: 拨号、过期会话清理、遥测、地址清理占位、地址簿检查点
//   - 遥测: 输出在线节点记录，查询未定位 IP 的地理位置
//
// # 见证晋升
//
// discovery 每报告一次地址，该地址的见证计数加一。拨号失败时若计数
// 达到阈值，地址被视为在线（能力类型 Unknown），计数清零。
package crawler
