package sink

import "errors"

var (
	// ErrQueueClosed 队列已关闭
	ErrQueueClosed = errors.New("sink: queue closed")

	// ErrNoDatabase 未配置数据库连接
	ErrNoDatabase = errors.New("sink: database not configured")
)
