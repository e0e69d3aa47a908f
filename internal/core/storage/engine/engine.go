// Package engine 定义检查点存储引擎的接口
//
// 实现位于 engine/badger。实现必须可以被多个 goroutine 同时使用。
package engine

// Op 一次写操作
type Op struct {
	Key   []byte
	Value []byte

	// Delete 为 true 时删除 Key，忽略 Value
	Delete bool
}

// Put 构造写入操作
func Put(key, value []byte) Op {
	return Op{Key: key, Value: value}
}

// Del 构造删除操作
func Del(key []byte) Op {
	return Op{Key: key, Delete: true}
}

// Engine 存储引擎
type Engine interface {
	// Get 读取键，不存在时返回 ErrNotFound
	Get(key []byte) ([]byte, error)

	// Apply 原子地执行一组写操作
	Apply(ops ...Op) error

	// Scan 按键序遍历 prefix 下的键值
	//
	// fn 返回 ErrStop 时正常结束，返回其他错误时中止并返回该错误。
	// key 与 value 只在回调期间有效。
	Scan(prefix []byte, fn func(key, value []byte) error) error

	// Start 启动后台任务
	Start() error

	// Close 关闭引擎，可重复调用
	Close() error
}
