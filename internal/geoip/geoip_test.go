package geoip

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"

	"github.com/dep2p/go-ckbcrawler/config"
)

func TestParseLoc(t *testing.T) {
	tests := []struct {
		loc       string
		lat, long float64
	}{
		{"37.3860,-122.0838", 37.386, -122.0838},
		{"1.5", 1.5, 0},
		{"", 0, 0},
		{"x,2", 0, 2},
	}
	for _, tt := range tests {
		t.Run(tt.loc, func(t *testing.T) {
			lat, long := ParseLoc(tt.loc)
			assert.InDelta(t, tt.lat, lat, 1e-9)
			assert.InDelta(t, tt.long, long, 1e-9)
		})
	}
}

func TestStubResolver(t *testing.T) {
	r := NewStubResolver()
	r.SetMapping("1.2.3.4", &Info{IP: "1.2.3.4", Country: "CN"})

	info, err := r.Lookup(context.Background(), "1.2.3.4")
	require.NoError(t, err)
	assert.Equal(t, "CN", info.Country)

	// 未设置的 IP
	_, err = r.Lookup(context.Background(), "5.6.7.8")
	assert.ErrorIs(t, err, ErrNotFound)

	// 注入错误
	boom := errors.New("boom")
	r.SetError(boom)
	_, err = r.Lookup(context.Background(), "1.2.3.4")
	assert.ErrorIs(t, err, boom)

	assert.Equal(t, 2, r.Calls("1.2.3.4"))
	assert.Equal(t, 1, r.Calls("5.6.7.8"))
}

func TestClientLookup(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		switch r.URL.Path {
		case "/1.2.3.4/json":
			_, _ = w.Write([]byte(`{"ip":"1.2.3.4","city":"Mountain View","region":"California",
				"country":"US","loc":"37.3860,-122.0838","org":"AS15169 Google LLC",
				"company":{"name":"Google LLC"}}`))
		case "/5.6.7.8/json":
			_, _ = w.Write([]byte(`{"ip":"5.6.7.8","country":"DE","loc":"bad","org":"AS3320 DTAG"}`))
		default:
			w.WriteHeader(http.StatusTooManyRequests)
		}
	}))
	defer srv.Close()

	c := NewClient("secret", WithBaseURL(srv.URL), WithRate(1000))

	info, err := c.Lookup(context.Background(), "1.2.3.4")
	require.NoError(t, err)
	assert.Equal(t, "US", info.Country)
	assert.Equal(t, "Mountain View", info.City)
	assert.Equal(t, "California", info.Region)
	assert.Equal(t, "Google LLC", info.Company)
	assert.InDelta(t, 37.386, info.Latitude, 1e-9)
	assert.InDelta(t, -122.0838, info.Longitude, 1e-9)

	// 没有 company 时使用 org，坐标解析失败为 0
	info, err = c.Lookup(context.Background(), "5.6.7.8")
	require.NoError(t, err)
	assert.Equal(t, "AS3320 DTAG", info.Company)
	assert.Zero(t, info.Latitude)

	_, err = c.Lookup(context.Background(), "9.9.9.9")
	assert.ErrorIs(t, err, ErrBadStatus)

	_, err = c.Lookup(context.Background(), "not-an-ip")
	assert.ErrorIs(t, err, ErrInvalidIP)
}

func TestClientLimiterHonorsContext(t *testing.T) {
	c := NewClient("", WithRate(0.001))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.Lookup(ctx, "1.2.3.4")
	assert.Error(t, err)
}

func TestModule(t *testing.T) {
	var r Resolver
	app := fxtest.New(t,
		fx.Supply(config.NewConfig()),
		Module(),
		fx.Populate(&r),
	)
	app.RequireStart().RequireStop()
	assert.IsType(t, &Client{}, r)
}
