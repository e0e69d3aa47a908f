// Package badger 用 BadgerDB 实现 engine.Engine
//
// 只保留每个键的最新版本；Apply 通过 WriteBatch 提交，值日志按
// Config.GCInterval 周期回收。
package badger
