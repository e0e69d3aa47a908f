package crawler

import "errors"

var (
	// ErrNoNetwork 未设置传输层
	ErrNoNetwork = errors.New("crawler: no network")

	// ErrAlreadyStarted 调度器已启动
	ErrAlreadyStarted = errors.New("crawler: scheduler already started")
)
