// Package storage 把 BadgerDB 引擎接入 fx 应用
//
// 仅在配置了 storage.data_dir 时装载，为各网络的地址簿检查点提供
// engine.Engine。键空间：
//
//	a/<network>/<canonical multiaddr>  →  {"count": n}
//
// 引擎本身在 engine/badger，前缀命名空间在 kv。
package storage
