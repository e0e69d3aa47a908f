package ckbcrawler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-ckbcrawler/config"
	"github.com/dep2p/go-ckbcrawler/pkg/types"
)

// testConfig 单个 dev 网络，不连数据库，周期足够长
func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.NewConfig()
	cfg.Networks = []types.NetworkType{types.Dev}
	cfg.DB.Enabled = false
	cfg.Crawler.DialInterval = config.Duration(time.Hour)
	cfg.Crawler.StaleSweepInterval = config.Duration(time.Hour)
	cfg.Crawler.TelemetryInterval = config.Duration(time.Hour)
	cfg.Crawler.PruneInterval = config.Duration(time.Hour)
	cfg.Storage.DataDir = t.TempDir()
	return cfg
}

func TestNew_Errors(t *testing.T) {
	_, err := New(nil)
	assert.ErrorIs(t, err, ErrNilConfig)

	cfg := testConfig(t)
	cfg.Networks = nil
	_, err = New(cfg)
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
}

func TestCrawler_Lifecycle(t *testing.T) {
	c, err := New(testConfig(t), WithClientVersion("ckb-crawler/test"))
	require.NoError(t, err)

	assert.ErrorIs(t, c.Stop(context.Background()), ErrNotStarted)
	require.NoError(t, c.Start(context.Background()))
	assert.ErrorIs(t, c.Start(context.Background()), ErrAlreadyStarted)

	stats := c.Stats()
	require.Len(t, stats, 1)
	assert.Equal(t, types.Dev, stats[0].Network)
	assert.Equal(t, 1, stats[0].Addresses)
	assert.Zero(t, stats[0].Peers)
	assert.Zero(t, c.PendingWrites())

	require.NoError(t, c.Stop(context.Background()))
	assert.ErrorIs(t, c.Stop(context.Background()), ErrClosed)
	assert.ErrorIs(t, c.Start(context.Background()), ErrClosed)
}

func TestCrawler_Run(t *testing.T) {
	c, err := New(testConfig(t))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()

	require.Eventually(t, func() bool {
		c.mu.Lock()
		defer c.mu.Unlock()
		return c.started
	}, 5*time.Second, 10*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestVersionInfo(t *testing.T) {
	assert.Equal(t, "ckb-crawler "+Version, VersionInfo())
	assert.Equal(t, "ckb-crawler/"+Version, ClientVersion())

	GitCommit = "0123456789abcdef"
	defer func() { GitCommit = "" }()
	assert.Equal(t, "ckb-crawler "+Version+" (01234567)", VersionInfo())
}
