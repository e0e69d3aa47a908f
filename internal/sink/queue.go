package sink

import (
	"context"
	"sync"
)

// DefaultQueueSize 默认队列容量
const DefaultQueueSize = 5000

// Queue 有界写入队列
//
// 多个生产者并发入队，Writer 是唯一的消费者。
type Queue struct {
	ch chan WriteRequest

	mu     sync.RWMutex
	closed bool
}

// NewQueue 创建队列，size <= 0 时使用默认容量
func NewQueue(size int) *Queue {
	if size <= 0 {
		size = DefaultQueueSize
	}
	return &Queue{ch: make(chan WriteRequest, size)}
}

// Enqueue 放入一条写入请求
//
// 队列满时阻塞，直到有空位或 ctx 结束。
func (q *Queue) Enqueue(ctx context.Context, req WriteRequest) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return ErrQueueClosed
	}
	select {
	case q.ch <- req:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Len 当前排队数量
func (q *Queue) Len() int {
	return len(q.ch)
}

// Cap 队列容量
func (q *Queue) Cap() int {
	return cap(q.ch)
}

// Close 关闭队列，之后的 Enqueue 返回 ErrQueueClosed
//
// 已入队的请求仍可被消费。
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.closed = true
	close(q.ch)
}

// C 返回消费端 channel
func (q *Queue) C() <-chan WriteRequest {
	return q.ch
}
