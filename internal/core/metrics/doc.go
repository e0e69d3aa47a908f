// Package metrics 提供爬虫的 Prometheus 指标
//
// 所有指标注册到模块私有的 prometheus.Registry，按 network 标签区分网络。
// 配置 metrics.listen_addr 后通过 promhttp 暴露 /metrics。
//
// # 快速开始
//
//	m := metrics.New(prometheus.NewRegistry())
//	nm := m.For("mirana")
//	nm.Dials.Inc()
//	nm.OnlinePeers.Set(42)
package metrics
