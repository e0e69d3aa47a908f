package ckbcrawler

import "errors"

// 公共错误定义
var (
	// ErrNotStarted 爬虫未启动
	ErrNotStarted = errors.New("crawler not started")

	// ErrAlreadyStarted 爬虫已启动
	ErrAlreadyStarted = errors.New("crawler already started")

	// ErrClosed 爬虫已关闭
	ErrClosed = errors.New("crawler closed")

	// ErrNilConfig 未提供配置
	ErrNilConfig = errors.New("nil config")
)
