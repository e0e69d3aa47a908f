package config

import (
	"encoding/json"
	"fmt"
	"time"
)

// Duration 配置文件中的时间间隔
//
// TOML 与 JSON 都写作 Go 的时长字符串，如 "8s"、"30m"。JSON 另外接受
// 纳秒整数。
type Duration time.Duration

// Duration 返回 time.Duration
func (d Duration) Duration() time.Duration { return time.Duration(d) }

func (d Duration) String() string { return time.Duration(d).String() }

// MarshalText 输出时长字符串
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText 解析时长字符串，BurntSushi/toml 通过它解码
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("%w: duration %q", ErrInvalidConfig, text)
	}
	*d = Duration(v)
	return nil
}

// MarshalJSON 输出带引号的时长字符串
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON 接受时长字符串或纳秒整数
func (d *Duration) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		return d.UnmarshalText([]byte(s))
	}
	var ns int64
	if err := json.Unmarshal(data, &ns); err != nil {
		return fmt.Errorf("%w: duration %s", ErrInvalidConfig, data)
	}
	*d = Duration(ns)
	return nil
}
