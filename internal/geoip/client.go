package geoip

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL ipinfo.io 接口地址
	DefaultBaseURL = "https://ipinfo.io"

	// DefaultRate 默认每秒请求数
	DefaultRate = 5

	// DefaultTimeout 默认请求超时
	DefaultTimeout = 10 * time.Second

	maxBodySize = 64 << 10
)

// ipDetails ipinfo.io 返回的字段
type ipDetails struct {
	IP      string `json:"ip"`
	City    string `json:"city"`
	Region  string `json:"region"`
	Country string `json:"country"`
	Loc     string `json:"loc"`
	Org     string `json:"org"`
	Company *struct {
		Name string `json:"name"`
	} `json:"company"`
}

// Client ipinfo.io 客户端
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	limiter *rate.Limiter
}

var _ Resolver = (*Client)(nil)

// ClientOption Client 选项
type ClientOption func(*Client)

// WithBaseURL 设置接口地址
func WithBaseURL(u string) ClientOption {
	return func(c *Client) {
		if u != "" {
			c.baseURL = strings.TrimRight(u, "/")
		}
	}
}

// WithRate 设置每秒请求数
func WithRate(rps float64) ClientOption {
	return func(c *Client) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
		}
	}
}

// WithTimeout 设置单次请求超时
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithHTTPClient 替换 HTTP 客户端
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// NewClient 创建客户端，token 为空时使用匿名额度
func NewClient(token string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		token:   token,
		http:    &http.Client{Timeout: DefaultTimeout},
		limiter: rate.NewLimiter(DefaultRate, 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Lookup 查询 IP 的地理位置
func (c *Client) Lookup(ctx context.Context, ip string) (*Info, error) {
	if net.ParseIP(ip) == nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidIP, ip)
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	u := c.baseURL + "/" + url.PathEscape(ip) + "/json"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geoip: request %s: %w", ip, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %d for %s", ErrBadStatus, resp.StatusCode, ip)
	}

	var d ipDetails
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodySize)).Decode(&d); err != nil {
		return nil, fmt.Errorf("geoip: decode %s: %w", ip, err)
	}

	info := &Info{
		IP:      d.IP,
		Country: d.Country,
		City:    d.City,
		Region:  d.Region,
		Loc:     d.Loc,
	}
	if info.IP == "" {
		info.IP = ip
	}
	if d.Company != nil && d.Company.Name != "" {
		info.Company = d.Company.Name
	} else {
		info.Company = d.Org
	}
	info.Latitude, info.Longitude = ParseLoc(d.Loc)
	return info, nil
}
