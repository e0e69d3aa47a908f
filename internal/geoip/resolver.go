package geoip

import (
	"context"
	"strconv"
	"strings"
	"sync"
)

// ============================================================================
//                              类型定义
// ============================================================================

// Info 地理位置信息
type Info struct {
	IP      string
	Country string
	City    string
	Region  string
	Company string

	// Loc 原始的 "lat,long" 字符串
	Loc string

	Latitude  float64
	Longitude float64
}

// ParseLoc 解析 "lat,long"，无法解析的部分为 0
func ParseLoc(loc string) (lat, long float64) {
	parts := strings.SplitN(loc, ",", 2)
	if v, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64); err == nil {
		lat = v
	}
	if len(parts) == 2 {
		if v, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64); err == nil {
			long = v
		}
	}
	return lat, long
}

// Resolver 地理位置解析器接口
type Resolver interface {
	// Lookup 查询 IP 地址的地理位置信息
	Lookup(ctx context.Context, ip string) (*Info, error)
}

// ============================================================================
//                              Stub Resolver（测试用）
// ============================================================================

// StubResolver 测试用桩解析器
//
// 允许预设 IP -> Info 映射；未设置的 IP 返回 ErrNotFound。
type StubResolver struct {
	mu      sync.RWMutex
	mapping map[string]*Info
	err     error
	calls   map[string]int
}

var _ Resolver = (*StubResolver)(nil)

// NewStubResolver 创建桩解析器
func NewStubResolver() *StubResolver {
	return &StubResolver{
		mapping: make(map[string]*Info),
		calls:   make(map[string]int),
	}
}

// SetMapping 设置 IP 到 Info 的映射
func (r *StubResolver) SetMapping(ip string, info *Info) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.mapping[ip] = info
}

// SetError 设置所有查询返回的错误，nil 恢复正常
func (r *StubResolver) SetError(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.err = err
}

// Lookup 查询 IP
func (r *StubResolver) Lookup(_ context.Context, ip string) (*Info, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls[ip]++
	if r.err != nil {
		return nil, r.err
	}
	info, ok := r.mapping[ip]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *info
	return &cp, nil
}

// Calls 返回某个 IP 被查询的次数
func (r *StubResolver) Calls(ip string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.calls[ip]
}
