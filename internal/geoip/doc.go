// Package geoip 提供节点 IP 的地理位置查询
//
// Client 查询 ipinfo.io 的 /<ip>/json 接口，使用 rate.Limiter 控制请求速率；
// StubResolver 用于单元测试。查询失败不是致命错误，调用方在下一个
// 遥测周期重新查询。
package geoip
