package crawler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"

	"github.com/dep2p/go-ckbcrawler/config"
	"github.com/dep2p/go-ckbcrawler/internal/core/metrics"
	"github.com/dep2p/go-ckbcrawler/internal/core/storage"
	"github.com/dep2p/go-ckbcrawler/internal/geoip"
	"github.com/dep2p/go-ckbcrawler/internal/sink"
	"github.com/dep2p/go-ckbcrawler/pkg/types"
)

// testConfig 单个 dev 网络，周期足够长，测试期间不会触发
func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.NewConfig()
	cfg.Networks = []types.NetworkType{types.Dev}
	cfg.DB.Enabled = false
	cfg.Crawler.DialInterval = config.Duration(time.Hour)
	cfg.Crawler.StaleSweepInterval = config.Duration(time.Hour)
	cfg.Crawler.TelemetryInterval = config.Duration(time.Hour)
	cfg.Crawler.PruneInterval = config.Duration(time.Hour)
	cfg.Storage.CheckpointInterval = config.Duration(time.Hour)
	return cfg
}

func TestModule(t *testing.T) {
	cfg := testConfig(t)
	cfg.Crawler.ListenAddr = "/ip4/127.0.0.1/tcp/0"

	var instances []*Instance
	app := fxtest.New(t,
		fx.Supply(cfg),
		fx.Supply(fx.Annotated{Name: "client_version", Target: "ckb-crawler/test"}),
		metrics.Module(),
		sink.Module(),
		geoip.Module(),
		Module(),
		fx.Populate(&instances),
	)
	require.NoError(t, app.Start(context.Background()))

	require.Len(t, instances, 1)
	inst := instances[0]
	assert.Equal(t, types.Dev, inst.Crawler.Network())
	assert.Equal(t, "ckb-crawler/test", inst.Crawler.clientVersion)
	assert.NotNil(t, inst.Crawler.sink)
	assert.NotNil(t, inst.Swarm.ListenAddr())
	assert.Nil(t, inst.store)

	require.NoError(t, app.Stop(context.Background()))
}

func TestModule_Checkpoint(t *testing.T) {
	cfg := testConfig(t)
	cfg.Storage.DataDir = t.TempDir()

	run := func(fn func(inst *Instance)) {
		var instances []*Instance
		app := fxtest.New(t,
			fx.Supply(cfg),
			storage.Module(),
			Module(),
			fx.Populate(&instances),
		)
		require.NoError(t, app.Start(context.Background()))
		require.Len(t, instances, 1)
		fn(instances[0])
		require.NoError(t, app.Stop(context.Background()))
	}

	run(func(inst *Instance) {
		assert.NotNil(t, inst.store)
		assert.Nil(t, inst.Crawler.sink)
		inst.Crawler.State().Book.Observe("/ip4/10.0.0.9/tcp/8114")
	})

	// 重启后地址簿从检查点恢复
	run(func(inst *Instance) {
		_, ok := inst.Crawler.State().Book.Count("/ip4/10.0.0.9/tcp/8114")
		assert.True(t, ok)
	})
}
