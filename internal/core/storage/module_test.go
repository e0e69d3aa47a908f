package storage

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"

	"github.com/dep2p/go-ckbcrawler/config"
	"github.com/dep2p/go-ckbcrawler/internal/core/storage/engine"
)

func TestModule_Lifecycle(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Storage.DataDir = t.TempDir()

	var eng engine.Engine
	app := fxtest.New(t,
		fx.Supply(cfg),
		Module(),
		fx.Populate(&eng),
	)
	app.RequireStart()

	require.NotNil(t, eng)
	require.NoError(t, eng.Apply(engine.Put([]byte("k"), []byte("v"))))

	app.RequireStop()
	assert.ErrorIs(t, eng.Apply(engine.Put([]byte("k"), []byte("v"))), engine.ErrClosed)
}

func TestEngineConfig(t *testing.T) {
	_, err := EngineConfig(nil)
	assert.ErrorIs(t, err, ErrDisabled)

	// 没有 data_dir 时不启用
	_, err = EngineConfig(config.NewConfig())
	assert.ErrorIs(t, err, ErrDisabled)

	cfg := config.NewConfig()
	cfg.Storage.DataDir = "/var/lib/ckb-crawler"
	ec, err := EngineConfig(cfg)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/var/lib/ckb-crawler", "ckb-crawler.db"), ec.Path)
}

func TestModule_Disabled(t *testing.T) {
	app := fx.New(
		fx.NopLogger,
		fx.Supply(config.NewConfig()),
		Module(),
	)
	assert.ErrorContains(t, app.Err(), ErrDisabled.Error())
}
