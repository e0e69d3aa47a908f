package storage

import "errors"

// ErrDisabled 配置中没有数据目录，不能提供存储引擎
var ErrDisabled = errors.New("storage: data_dir not configured")
