package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/dep2p/go-ckbcrawler/pkg/types"
)

// DefaultConfigFile 默认配置文件名
const DefaultConfigFile = "ckb-crawler.toml"

// 环境变量名
const (
	EnvNetworks         = "CKBCRAWLER_NETWORKS"
	EnvWitnessThreshold = "CKBCRAWLER_WITNESS_THRESHOLD"
	EnvIPInfoToken      = "IPINFO_IO_TOKEN"
)

// LoadFile 从文件加载配置
//
// 根据扩展名选择格式：.toml 或 .json。未出现的字段保留默认值。
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FromTOML(data)
	case ".json":
		return FromJSON(data)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

// FromTOML 从 TOML 数据创建配置
func FromTOML(data []byte) (*Config, error) {
	cfg := NewConfig()
	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return nil, fmt.Errorf("parse toml config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return nil, fmt.Errorf("%w: unknown keys %s", ErrInvalidConfig, strings.Join(keys, ", "))
	}
	return cfg, nil
}

// Load 加载配置文件并应用环境变量覆盖
//
// path 为空时使用默认配置；默认文件不存在时不报错。
func Load(path string) (*Config, error) {
	var cfg *Config
	switch {
	case path != "":
		c, err := LoadFile(path)
		if err != nil {
			return nil, err
		}
		cfg = c
	default:
		if _, err := os.Stat(DefaultConfigFile); err == nil {
			c, err := LoadFile(DefaultConfigFile)
			if err != nil {
				return nil, err
			}
			cfg = c
		} else {
			cfg = NewConfig()
		}
	}

	if err := ApplyEnv(cfg, os.Getenv); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv 应用环境变量覆盖
//
// 数据库参数同时接受 libpq 的 PG* 变量与 docker 镜像常用的 POSTGRES_* 变量，
// PG* 优先。
func ApplyEnv(cfg *Config, getenv func(string) string) error {
	first := func(keys ...string) string {
		for _, k := range keys {
			if v := getenv(k); v != "" {
				return v
			}
		}
		return ""
	}

	if v := first("PGHOST", "POSTGRES_HOST"); v != "" {
		cfg.DB.Host = v
	}
	if v := first("PGPORT", "POSTGRES_PORT"); v != "" {
		port, err := strconv.ParseUint(v, 10, 16)
		if err != nil {
			return fmt.Errorf("%w: invalid postgres port %q", ErrInvalidConfig, v)
		}
		cfg.DB.Port = uint16(port)
	}
	if v := first("PGDATABASE", "POSTGRES_DB"); v != "" {
		cfg.DB.Database = v
	}
	if v := first("PGUSER", "POSTGRES_USER"); v != "" {
		cfg.DB.User = v
	}
	if v := first("PGPASSWORD", "POSTGRES_PASSWORD"); v != "" {
		cfg.DB.Password = v
	}
	if v := getenv(EnvIPInfoToken); v != "" {
		cfg.IPInfoToken = v
	}
	if v := getenv(EnvNetworks); v != "" {
		networks, err := types.ParseNetworks(v)
		if err != nil {
			return err
		}
		cfg.Networks = networks
	}
	if v := getenv(EnvWitnessThreshold); v != "" {
		n, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return fmt.Errorf("%w: invalid witness threshold %q", ErrInvalidConfig, v)
		}
		cfg.WitnessThreshold = uint32(n)
	}
	return nil
}
