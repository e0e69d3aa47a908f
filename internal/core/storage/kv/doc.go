// Package kv 在 engine.Engine 上划分命名空间
//
// 每个 Store 持有一个键前缀，读写时自动拼接，遍历时自动去掉。
// 爬虫为每个网络使用 a/<network>/ 前缀，例如：
//
//	book := kv.New(eng, []byte("a/mirana/"))
//	op, _ := kv.JSON([]byte("/ip4/1.2.3.4/tcp/8114"), entry)
//	err := book.Apply(op) // 实际键: a/mirana//ip4/1.2.3.4/tcp/8114
package kv
