package crawler

import (
	"context"
	"sync"
	"time"

	"github.com/dep2p/go-ckbcrawler/config"
	"github.com/dep2p/go-ckbcrawler/internal/core/storage/kv"
)

// Intervals 调度周期
type Intervals struct {
	Dial       time.Duration
	StaleSweep time.Duration
	Telemetry  time.Duration
	Prune      time.Duration

	// Checkpoint 地址簿检查点周期，store 为空时不生效
	Checkpoint time.Duration
}

// IntervalsFromConfig 从配置取调度周期
func IntervalsFromConfig(cfg *config.Config) Intervals {
	return Intervals{
		Dial:       cfg.Crawler.DialInterval.Duration(),
		StaleSweep: cfg.Crawler.StaleSweepInterval.Duration(),
		Telemetry:  cfg.Crawler.TelemetryInterval.Duration(),
		Prune:      cfg.Crawler.PruneInterval.Duration(),
		Checkpoint: cfg.Storage.CheckpointInterval.Duration(),
	}
}

// Scheduler 驱动一个 Crawler 的周期任务
//
// 每个任务一个 goroutine 和一个 ticker，任务之间只通过 State 的锁协调。
type Scheduler struct {
	c         *Crawler
	intervals Intervals
	store     *kv.Store

	mu      sync.Mutex
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	running bool
}

// NewScheduler 创建调度器；store 非空时定期写地址簿检查点
func NewScheduler(c *Crawler, iv Intervals, store *kv.Store) *Scheduler {
	return &Scheduler{c: c, intervals: iv, store: store}
}

// Start 启动所有周期任务
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return ErrAlreadyStarted
	}
	if s.c.net == nil {
		return ErrNoNetwork
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.running = true

	s.every(ctx, s.intervals.Dial, func(ctx context.Context) { s.c.DialOnce(ctx) })
	s.every(ctx, s.intervals.StaleSweep, func(ctx context.Context) { s.c.SweepStale(ctx) })
	s.every(ctx, s.intervals.Telemetry, func(ctx context.Context) { s.c.Emit(ctx) })
	s.every(ctx, s.intervals.Prune, s.c.Prune)
	if s.store != nil {
		s.every(ctx, s.intervals.Checkpoint, func(context.Context) { s.checkpoint() })
	}

	logger.Info("scheduler started",
		"network", s.c.state.Network,
		"dial", s.intervals.Dial,
		"telemetry", s.intervals.Telemetry)
	return nil
}

// Stop 停止所有任务，并写最后一次检查点
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.cancel()
	s.mu.Unlock()

	s.wg.Wait()
	if s.store != nil {
		s.checkpoint()
	}
	logger.Info("scheduler stopped", "network", s.c.state.Network)
}

func (s *Scheduler) every(ctx context.Context, d time.Duration, fn func(context.Context)) {
	if d <= 0 {
		return
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		t := s.c.state.Clock.Ticker(d)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				fn(ctx)
			}
		}
	}()
}

func (s *Scheduler) checkpoint() {
	n, err := s.c.state.Book.Checkpoint(s.store)
	if err != nil {
		logger.Warn("address book checkpoint failed", "network", s.c.state.Network, "err", err)
		return
	}
	logger.Debug("address book checkpoint written", "network", s.c.state.Network, "addresses", n)
}
