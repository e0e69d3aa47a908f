// Package types 定义 ckb-crawler 的公共数据结构
//
// 这是整个系统的最底层包，不依赖任何其他内部包。
// 所有类型都是纯值类型，用于在各模块间传递数据。
//
// # 文件组织
//
//   - multiaddr.go  - Multiaddr 地址类型（可作为 map 键）
//   - network.go    - NetworkType 及各网络的引导节点
//   - enums.go      - NodeType, Direction
//   - ids.go        - SessionID, ProtocolID, Channel
//   - errors.go     - 公共错误定义
package types
