package geoip

import (
	"go.uber.org/fx"

	"github.com/dep2p/go-ckbcrawler/config"
)

// Params GeoIP 参数
type Params struct {
	fx.In

	Config *config.Config
}

// Result GeoIP 结果
type Result struct {
	fx.Out

	Resolver Resolver
}

// Module GeoIP 模块
func Module() fx.Option {
	return fx.Module("geoip",
		fx.Provide(ProvideResolver),
	)
}

// ProvideResolver 从配置创建 ipinfo.io 客户端
func ProvideResolver(p Params) Result {
	g := p.Config.GeoIP
	return Result{
		Resolver: NewClient(p.Config.IPInfoToken,
			WithBaseURL(g.BaseURL),
			WithRate(g.RequestsPerSecond),
			WithTimeout(g.Timeout.Duration()),
		),
	}
}
