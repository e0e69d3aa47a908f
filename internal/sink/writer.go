package sink

import (
	"context"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"

	"github.com/dep2p/go-ckbcrawler/internal/core/metrics"
	"github.com/dep2p/go-ckbcrawler/pkg/lib/log"
)

var logger = log.Logger("sink")

const (
	// DefaultMaxBatchSize 单批最大请求数
	DefaultMaxBatchSize = 200

	// DefaultMaxBatchDelay 单批最长等待时间
	DefaultMaxBatchDelay = 3 * time.Second

	// flushTimeout 关闭时最后一批的执行超时
	flushTimeout = 10 * time.Second
)

// Executor 批量执行写入语句
//
// 一次调用对应一个事务；返回错误表示整批失败。
type Executor interface {
	ExecBatch(ctx context.Context, batch []WriteRequest) error
}

// Writer 攒批写入器
type Writer struct {
	queue    *Queue
	exec     Executor
	maxBatch int
	maxDelay time.Duration
	clock    clock.Clock
	metrics  *metrics.Metrics
}

// WriterOption Writer 选项
type WriterOption func(*Writer)

// WithBatchSize 设置单批最大请求数
func WithBatchSize(n int) WriterOption {
	return func(w *Writer) {
		if n > 0 {
			w.maxBatch = n
		}
	}
}

// WithBatchDelay 设置单批最长等待时间
func WithBatchDelay(d time.Duration) WriterOption {
	return func(w *Writer) {
		if d > 0 {
			w.maxDelay = d
		}
	}
}

// WithClock 替换时钟（测试使用 clock.NewMock）
func WithClock(c clock.Clock) WriterOption {
	return func(w *Writer) {
		w.clock = c
	}
}

// WithMetrics 设置指标
func WithMetrics(m *metrics.Metrics) WriterOption {
	return func(w *Writer) {
		if m != nil {
			w.metrics = m
		}
	}
}

// NewWriter 创建写入器
func NewWriter(q *Queue, exec Executor, opts ...WriterOption) *Writer {
	w := &Writer{
		queue:    q,
		exec:     exec,
		maxBatch: DefaultMaxBatchSize,
		maxDelay: DefaultMaxBatchDelay,
		clock:    clock.New(),
		metrics:  metrics.NewNop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run 消费队列直到队列关闭或 ctx 结束
//
// 批次达到 maxBatch 立即执行，否则每 maxDelay 执行一次非空批次。
// 退出前执行剩余的请求。
func (w *Writer) Run(ctx context.Context) {
	ticker := w.clock.Ticker(w.maxDelay)
	defer ticker.Stop()

	batch := w.newBatch()
	for {
		select {
		case req, ok := <-w.queue.C():
			if !ok {
				w.final(ctx, batch)
				return
			}
			batch = append(batch, req)
			if len(batch) >= w.maxBatch {
				w.flush(ctx, batch)
				batch = w.newBatch()
			}

		case <-ticker.C:
			if len(batch) > 0 {
				w.flush(ctx, batch)
				batch = w.newBatch()
			}

		case <-ctx.Done():
			// 取走已排队的请求
			for drained := false; !drained; {
				select {
				case req, ok := <-w.queue.C():
					if !ok {
						drained = true
						break
					}
					batch = append(batch, req)
				default:
					drained = true
				}
			}
			w.final(ctx, batch)
			return
		}
	}
}

func (w *Writer) newBatch() []WriteRequest {
	return make([]WriteRequest, 0, w.maxBatch)
}

// final 在已取消的 ctx 之外执行最后的请求
func (w *Writer) final(ctx context.Context, batch []WriteRequest) {
	if len(batch) == 0 {
		return
	}
	fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), flushTimeout)
	defer cancel()
	for len(batch) > w.maxBatch {
		w.flush(fctx, batch[:w.maxBatch])
		batch = batch[w.maxBatch:]
	}
	w.flush(fctx, batch)
}

func (w *Writer) flush(ctx context.Context, batch []WriteRequest) {
	id := uuid.NewString()
	start := w.clock.Now()

	if err := w.exec.ExecBatch(ctx, batch); err != nil {
		w.metrics.SinkBatches.WithLabelValues("error").Inc()
		w.metrics.SinkRequests.WithLabelValues("error").Add(float64(len(batch)))
		stmts := make([]string, len(batch))
		for i, req := range batch {
			stmts[i] = req.String()
		}
		logger.Error("batch execute failed, discarding",
			"batch", id,
			"size", len(batch),
			"statements", stmts,
			"err", err)
		return
	}

	w.metrics.SinkBatches.WithLabelValues("ok").Inc()
	w.metrics.SinkRequests.WithLabelValues("ok").Add(float64(len(batch)))
	logger.Debug("batch executed",
		"batch", id,
		"size", len(batch),
		"elapsed", w.clock.Since(start))
}
