package config

import (
	"fmt"
	"net/url"
	"strconv"
)

// DBConfig PostgreSQL 连接配置
type DBConfig struct {
	// Enabled 为 false 时写入请求只记录日志，不落库
	Enabled bool `json:"enabled" toml:"enabled"`

	Host     string `json:"host" toml:"host"`
	Port     uint16 `json:"port" toml:"port"`
	Database string `json:"database" toml:"database"`
	User     string `json:"user" toml:"user"`
	Password string `json:"password" toml:"password"`

	// SSLMode 对应 lib/pq 的 sslmode 参数
	SSLMode string `json:"sslmode" toml:"sslmode"`

	// InitSchema 启动时创建各网络的 schema 与表
	InitSchema bool `json:"init_schema" toml:"init_schema"`
}

// DefaultDBConfig 返回默认数据库配置
func DefaultDBConfig() DBConfig {
	return DBConfig{
		Enabled:  true,
		Host:     "localhost",
		Port:     5432,
		Database: "ckb",
		User:     "postgres",
		SSLMode:  "disable",
	}
}

// Validate 验证数据库配置
func (c *DBConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.Host == "" {
		return fmt.Errorf("%w: host is empty", ErrInvalidConfig)
	}
	if c.Port == 0 {
		return fmt.Errorf("%w: port is zero", ErrInvalidConfig)
	}
	if c.Database == "" {
		return fmt.Errorf("%w: database is empty", ErrInvalidConfig)
	}
	return nil
}

// DSN 返回 lib/pq 连接串
func (c *DBConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		Host:   c.Host + ":" + strconv.Itoa(int(c.Port)),
		Path:   "/" + c.Database,
	}
	if c.Password != "" {
		u.User = url.UserPassword(c.User, c.Password)
	} else if c.User != "" {
		u.User = url.User(c.User)
	}
	if c.SSLMode != "" {
		u.RawQuery = url.Values{"sslmode": {c.SSLMode}}.Encode()
	}
	return u.String()
}
