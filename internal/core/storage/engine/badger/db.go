package badger

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/dep2p/go-ckbcrawler/internal/core/storage/engine"
	"github.com/dep2p/go-ckbcrawler/pkg/lib/log"
)

var logger = log.Logger("storage/badger")

// gcDiscardRatio 值日志文件可回收空间超过该比例才重写
const gcDiscardRatio = 0.5

// DB BadgerDB 引擎
type DB struct {
	db  *badger.DB
	cfg engine.Config

	closed atomic.Bool
	stop   chan struct{}
	wg     sync.WaitGroup
	once   sync.Once
}

var _ engine.Engine = (*DB)(nil)

// New 打开 cfg.Path 上的数据库
func New(cfg *engine.Config) (*DB, error) {
	if cfg == nil {
		return nil, engine.ErrInvalidConfig
	}
	c := *cfg
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if err := c.EnsureDir(); err != nil {
		return nil, err
	}

	opts := badger.DefaultOptions(c.Path).
		WithSyncWrites(c.SyncWrites).
		WithNumVersionsToKeep(1).
		WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &DB{db: db, cfg: c, stop: make(chan struct{})}, nil
}

// Start 启动值日志回收
func (d *DB) Start() error {
	if d.closed.Load() {
		return engine.ErrClosed
	}
	if d.cfg.GCInterval <= 0 {
		return nil
	}
	d.once.Do(func() {
		d.wg.Add(1)
		go d.gcLoop(d.cfg.GCInterval)
	})
	return nil
}

func (d *DB) gcLoop(interval time.Duration) {
	defer d.wg.Done()
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-d.stop:
			return
		case <-t.C:
			// 一次可能只回收一个文件，循环到没有可回收的为止
			for !d.closed.Load() {
				err := d.db.RunValueLogGC(gcDiscardRatio)
				if err != nil {
					if !errors.Is(err, badger.ErrNoRewrite) {
						logger.Debug("value log gc stopped", "err", err)
					}
					break
				}
			}
		}
	}
}

// Get 读取键
func (d *DB) Get(key []byte) ([]byte, error) {
	if d.closed.Load() {
		return nil, engine.ErrClosed
	}
	var out []byte
	err := d.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		out, err = item.ValueCopy(nil)
		return err
	})
	switch {
	case errors.Is(err, badger.ErrKeyNotFound):
		return nil, engine.ErrNotFound
	case errors.Is(err, badger.ErrEmptyKey):
		return nil, engine.ErrEmptyKey
	}
	return out, err
}

// Apply 通过一个 WriteBatch 提交 ops
func (d *DB) Apply(ops ...engine.Op) error {
	if d.closed.Load() {
		return engine.ErrClosed
	}
	for _, op := range ops {
		if len(op.Key) == 0 {
			return engine.ErrEmptyKey
		}
	}
	if len(ops) == 0 {
		return nil
	}

	wb := d.db.NewWriteBatch()
	defer wb.Cancel()
	for _, op := range ops {
		var err error
		if op.Delete {
			err = wb.Delete(op.Key)
		} else {
			err = wb.Set(op.Key, op.Value)
		}
		if err != nil {
			return err
		}
	}
	return wb.Flush()
}

// Scan 遍历 prefix 下的键值
func (d *DB) Scan(prefix []byte, fn func(key, value []byte) error) error {
	if d.closed.Load() {
		return engine.ErrClosed
	}
	err := d.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			if err := item.Value(func(v []byte) error {
				return fn(item.Key(), v)
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if errors.Is(err, engine.ErrStop) {
		return nil
	}
	return err
}

// Close 停止回收并关闭数据库
func (d *DB) Close() error {
	if d.closed.Swap(true) {
		return nil
	}
	close(d.stop)
	d.wg.Wait()
	return d.db.Close()
}
