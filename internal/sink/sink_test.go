package sink

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"

	"github.com/dep2p/go-ckbcrawler/config"
	"github.com/dep2p/go-ckbcrawler/internal/core/metrics"
	"github.com/dep2p/go-ckbcrawler/pkg/types"
)

// fakeExecutor 记录每个批次
type fakeExecutor struct {
	mu      sync.Mutex
	batches [][]WriteRequest
	err     error
}

func (f *fakeExecutor) ExecBatch(_ context.Context, batch []WriteRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := make([]WriteRequest, len(batch))
	copy(cp, batch)
	f.batches = append(f.batches, cp)
	return f.err
}

func (f *fakeExecutor) sizes() []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]int, len(f.batches))
	for i, b := range f.batches {
		out[i] = len(b)
	}
	return out
}

func (f *fakeExecutor) total() int {
	n := 0
	for _, s := range f.sizes() {
		n += s
	}
	return n
}

// ============================================================================
//                              记录
// ============================================================================

func TestPeerRecordRequest(t *testing.T) {
	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	req := PeerRecord{
		Network:   types.Pudge,
		Time:      now,
		Version:   "ckb/0.100",
		IP:        "1.2.3.4",
		Reachable: 2,
		Address:   "/ip4/1.2.3.4/tcp/8115/p2p/QmABC",
		PeerID:    "QmABC",
		NodeType:  types.NodeFull,
	}.Request()

	assert.True(t, strings.HasPrefix(req.Query, `INSERT INTO "ckb_testnet".peer(`))
	assert.Contains(t, req.Query, "ON CONFLICT (address) DO UPDATE SET time = excluded.time, n_reachable = excluded.n_reachable")
	assert.Equal(t, []any{now, "ckb/0.100", "1.2.3.4", 2, "/ip4/1.2.3.4/tcp/8115/p2p/QmABC", "QmABC", 1}, req.Args)
}

func TestIPInfoRecordRequest(t *testing.T) {
	// 含单引号的值作为参数传递，不拼接进语句
	req := IPInfoRecord{
		Network: types.Mirana,
		IP:      "1.2.3.4",
		Country: "US",
		City:    "Coeur d'Alene",
		Company: "O'Reilly",
	}.Request()

	assert.True(t, strings.HasPrefix(req.Query, `INSERT INTO "ckb".ipinfo(`))
	assert.True(t, strings.HasSuffix(req.Query, "ON CONFLICT DO NOTHING"))
	assert.NotContains(t, req.Query, "Alene")
	assert.Equal(t, "Coeur d'Alene", req.Args[2])
}

func TestSchemaStatements(t *testing.T) {
	stmts := SchemaStatements(types.Dev)
	require.Len(t, stmts, 3)
	assert.Equal(t, `CREATE SCHEMA IF NOT EXISTS "ckb_dev"`, stmts[0])
	assert.Contains(t, stmts[1], `"ckb_dev".peer`)
	assert.Contains(t, stmts[1], "address TEXT PRIMARY KEY")
	assert.Contains(t, stmts[2], `"ckb_dev".ipinfo`)
}

// ============================================================================
//                              队列
// ============================================================================

func TestQueue(t *testing.T) {
	q := NewQueue(1)
	ctx := context.Background()

	require.NoError(t, q.Enqueue(ctx, WriteRequest{Query: "a"}))
	assert.Equal(t, 1, q.Len())

	// 队列满时等待 ctx 结束
	tctx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, q.Enqueue(tctx, WriteRequest{Query: "b"}), context.DeadlineExceeded)

	q.Close()
	q.Close()
	assert.ErrorIs(t, q.Enqueue(ctx, WriteRequest{Query: "c"}), ErrQueueClosed)

	// 关闭后仍可取出已入队的请求
	req, ok := <-q.C()
	assert.True(t, ok)
	assert.Equal(t, "a", req.Query)
}

func TestNewQueueDefaultSize(t *testing.T) {
	assert.Equal(t, DefaultQueueSize, NewQueue(0).Cap())
}

// ============================================================================
//                              写入器
// ============================================================================

func TestWriterBatchBySize(t *testing.T) {
	q := NewQueue(100)
	exec := &fakeExecutor{}
	w := NewWriter(q, exec, WithBatchSize(3), WithClock(clock.NewMock()))

	done := make(chan struct{})
	go func() {
		defer close(done)
		w.Run(context.Background())
	}()

	for i := 0; i < 7; i++ {
		require.NoError(t, q.Enqueue(context.Background(), WriteRequest{Query: "q"}))
	}
	require.Eventually(t, func() bool { return exec.total() >= 6 }, time.Second, time.Millisecond)

	// 关闭队列后剩余的一条也被写入
	q.Close()
	<-done
	assert.Equal(t, []int{3, 3, 1}, exec.sizes())
}

func TestWriterBatchByDelay(t *testing.T) {
	q := NewQueue(100)
	exec := &fakeExecutor{}
	mock := clock.NewMock()
	w := NewWriter(q, exec, WithBatchSize(200), WithBatchDelay(3*time.Second), WithClock(mock))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	require.NoError(t, q.Enqueue(ctx, WriteRequest{Query: "q"}))
	require.NoError(t, q.Enqueue(ctx, WriteRequest{Query: "q"}))

	require.Eventually(t, func() bool {
		mock.Add(3 * time.Second)
		return exec.total() == 2
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, []int{2}, exec.sizes())
}

func TestWriterDrainOnCancel(t *testing.T) {
	q := NewQueue(100)
	exec := &fakeExecutor{}
	w := NewWriter(q, exec, WithBatchSize(2), WithClock(clock.NewMock()))

	for i := 0; i < 5; i++ {
		require.NoError(t, q.Enqueue(context.Background(), WriteRequest{Query: "q"}))
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	w.Run(ctx)

	assert.Equal(t, 5, exec.total())
	for _, s := range exec.sizes() {
		assert.LessOrEqual(t, s, 2)
	}
}

func TestWriterFailedBatchDiscarded(t *testing.T) {
	q := NewQueue(10)
	exec := &fakeExecutor{err: errors.New("boom")}
	m := metrics.NewNop()
	w := NewWriter(q, exec, WithBatchSize(2), WithClock(clock.NewMock()), WithMetrics(m))

	done := make(chan struct{})
	go func() {
		defer close(done)
		w.Run(context.Background())
	}()

	for i := 0; i < 4; i++ {
		require.NoError(t, q.Enqueue(context.Background(), WriteRequest{Query: "q", Args: []any{i}}))
	}
	q.Close()
	<-done

	// 失败批次不重试，继续处理后续批次
	assert.Equal(t, []int{2, 2}, exec.sizes())
	assert.Equal(t, 2.0, testutil.ToFloat64(m.SinkBatches.WithLabelValues("error")))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.SinkRequests.WithLabelValues("error")))
}

func TestPostgresWithoutDB(t *testing.T) {
	p := NewPostgres(nil)
	assert.ErrorIs(t, p.ExecBatch(context.Background(), nil), ErrNoDatabase)
	assert.ErrorIs(t, p.EnsureSchema(context.Background(), types.AllNetworks), ErrNoDatabase)
	assert.NoError(t, p.Close())
}

// ============================================================================
//                              模块
// ============================================================================

func TestModuleDryRun(t *testing.T) {
	cfg := config.NewConfig()
	cfg.DB.Enabled = false

	var q *Queue
	app := fxtest.New(t,
		fx.Supply(cfg),
		Module(),
		fx.Populate(&q),
	)
	require.NoError(t, app.Start(context.Background()))
	require.NoError(t, q.Enqueue(context.Background(), PeerRecord{Network: types.Mirana}.Request()))
	require.NoError(t, app.Stop(context.Background()))

	assert.ErrorIs(t, q.Enqueue(context.Background(), WriteRequest{}), ErrQueueClosed)
}
