package engine

import "errors"

var (
	// ErrNotFound 键不存在
	ErrNotFound = errors.New("storage: key not found")

	// ErrEmptyKey 写操作的键为空
	ErrEmptyKey = errors.New("storage: empty key")

	// ErrClosed 引擎已关闭
	ErrClosed = errors.New("storage: engine closed")

	// ErrInvalidConfig 引擎配置无效
	ErrInvalidConfig = errors.New("storage: invalid configuration")

	// ErrStop Scan 回调用来提前结束遍历
	ErrStop = errors.New("storage: stop scan")
)
