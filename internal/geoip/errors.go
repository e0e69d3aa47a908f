package geoip

import "errors"

var (
	// ErrNotFound 没有该 IP 的地理位置信息
	ErrNotFound = errors.New("geoip: not found")

	// ErrInvalidIP 无效的 IP 地址
	ErrInvalidIP = errors.New("geoip: invalid IP address")

	// ErrBadStatus 接口返回非 200 状态
	ErrBadStatus = errors.New("geoip: unexpected status")
)
