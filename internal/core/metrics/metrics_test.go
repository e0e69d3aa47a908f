package metrics

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"

	"github.com/dep2p/go-ckbcrawler/config"
)

func TestNetworkMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	main := m.For("mirana")
	test := m.For("pudge")

	main.Dials.Inc()
	main.Dials.Inc()
	test.Dials.Inc()
	main.DecodeError("discovery")
	main.Record("peer")
	main.Lookup("ok")
	main.OnlinePeers.Set(3)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Dials.WithLabelValues("mirana")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Dials.WithLabelValues("pudge")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DecodeErrors.WithLabelValues("mirana", "discovery")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.TelemetryRecords.WithLabelValues("mirana", "peer")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.GeoIPLookups.WithLabelValues("mirana", "ok")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.OnlinePeers.WithLabelValues("mirana")))
}

func TestNewNop(t *testing.T) {
	// 未注册的指标可以正常使用
	m := NewNop()
	m.For("dev").Promotions.Inc()
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Promotions.WithLabelValues("dev")))
}

func TestHandler(t *testing.T) {
	res := ProvideMetrics()
	res.Metrics.For("mirana").Dials.Inc()

	srv := httptest.NewServer(Handler(res.Registry))
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), `ckb_crawler_dials_total{network="mirana"} 1`))
}

func TestModule(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Metrics.ListenAddr = "127.0.0.1:0"

	var m *Metrics
	app := fxtest.New(t,
		fx.Supply(cfg),
		Module(),
		fx.Populate(&m),
	)
	require.NoError(t, app.Start(context.Background()))
	require.NotNil(t, m)
	require.NoError(t, app.Stop(context.Background()))
}
