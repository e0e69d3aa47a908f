package types

import "errors"

// 公共错误定义
var (
	// ErrUnknownNetwork 未知的网络名称
	ErrUnknownNetwork = errors.New("unknown ckb network")
)
