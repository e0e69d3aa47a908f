// Package main 提供 ckb-crawler 命令行入口
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dep2p/go-ckbcrawler"
	"github.com/dep2p/go-ckbcrawler/config"
	"github.com/dep2p/go-ckbcrawler/pkg/lib/log"
	"github.com/dep2p/go-ckbcrawler/pkg/types"
)

var logger = log.Logger("cmd")

// ═══════════════════════════════════════════════════════════════════════════
// 命令行参数
// ═══════════════════════════════════════════════════════════════════════════
//
// 优先级：命令行参数 > 环境变量 > 配置文件 > 默认值。
// 数据库、ipinfo 令牌等长期配置只能通过配置文件或环境变量设置。
var (
	configFile  = flag.String("config", "", "配置文件路径（.toml 或 .json）")
	networks    = flag.String("ckb-network", "mirana,pudge", "要爬取的网络，逗号分隔 (mirana/pudge/dev)")
	logLevel    = flag.String("log-level", "", "日志级别 (debug/info/warn/error)")
	logJSON     = flag.Bool("log-json", false, "以 JSON 格式输出日志")
	fxEvents    = flag.Bool("fx-events", false, "输出依赖注入事件")
	showVersion = flag.Bool("version", false, "显示版本信息")
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	flag.Parse()

	if *showVersion {
		fmt.Println(ckbcrawler.VersionInfo())
		return nil
	}

	if err := setupLogging(); err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	c, err := ckbcrawler.New(cfg, ckbcrawler.WithFxEvents(*fxEvents))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("starting ckb-crawler",
		"version", ckbcrawler.Version,
		"commit", ckbcrawler.GitCommit,
		"networks", cfg.Networks,
		"db", cfg.DB.Enabled)
	if err := c.Run(ctx); err != nil {
		return err
	}
	for _, st := range c.Stats() {
		logger.Info("final state",
			"network", st.Network,
			"addresses", st.Addresses,
			"peers", st.Peers,
			"located", st.Located)
	}
	return nil
}

// loadConfig 加载配置文件，应用环境变量与命令行覆盖
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(*configFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	// 只有显式给出 --ckb-network，或者配置文件与环境变量都未指定时才使用参数值
	if isFlagSet("ckb-network") || !networksConfigured() {
		list, err := types.ParseNetworks(*networks)
		if err != nil {
			return nil, fmt.Errorf("--ckb-network: %w", err)
		}
		cfg.Networks = list
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// networksConfigured 配置文件或环境变量是否可能给出了网络列表
func networksConfigured() bool {
	if os.Getenv(config.EnvNetworks) != "" || *configFile != "" {
		return true
	}
	_, err := os.Stat(config.DefaultConfigFile)
	return err == nil
}

// setupLogging 应用日志参数
func setupLogging() error {
	if *logLevel != "" {
		l, ok := log.ParseLevel(*logLevel)
		if !ok {
			return fmt.Errorf("--log-level: unknown level %q", *logLevel)
		}
		log.SetLevel(l)
	}
	if *logJSON {
		log.SetJSON(true)
	}
	return nil
}

// isFlagSet 检查命令行参数是否被显式设置
func isFlagSet(name string) bool {
	found := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}
