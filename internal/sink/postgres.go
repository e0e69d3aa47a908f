package sink

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq" // postgres 驱动

	"github.com/dep2p/go-ckbcrawler/pkg/types"
)

// Postgres 基于 database/sql 的执行器
type Postgres struct {
	db *sql.DB
}

// OpenPostgres 打开连接并检查可用性
func OpenPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(4)
	db.SetConnMaxIdleTime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &Postgres{db: db}, nil
}

// NewPostgres 包装已有连接
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

// ExecBatch 在一个事务中执行整批语句
func (p *Postgres) ExecBatch(ctx context.Context, batch []WriteRequest) (err error) {
	if p.db == nil {
		return ErrNoDatabase
	}
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for i, req := range batch {
		if _, err = tx.ExecContext(ctx, req.Query, req.Args...); err != nil {
			return fmt.Errorf("statement %d: %w", i, err)
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// EnsureSchema 创建各网络的 schema 与表
func (p *Postgres) EnsureSchema(ctx context.Context, networks []types.NetworkType) error {
	if p.db == nil {
		return ErrNoDatabase
	}
	for _, n := range networks {
		for _, stmt := range SchemaStatements(n) {
			if _, err := p.db.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("init schema %s: %w", n.LegacyName(), err)
			}
		}
	}
	return nil
}

// Close 关闭连接
func (p *Postgres) Close() error {
	if p.db == nil {
		return nil
	}
	return p.db.Close()
}

// ============================================================================
//                              LogExecutor
// ============================================================================

// LogExecutor 只输出日志的执行器，数据库未启用时使用
type LogExecutor struct{}

// ExecBatch 逐条输出语句
func (LogExecutor) ExecBatch(_ context.Context, batch []WriteRequest) error {
	for _, req := range batch {
		logger.Info("dry-run write", "statement", req.String())
	}
	return nil
}
