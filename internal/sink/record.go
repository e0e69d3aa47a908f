package sink

import (
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/dep2p/go-ckbcrawler/pkg/types"
)

// WriteRequest 一条待执行的写入语句
type WriteRequest struct {
	Query string
	Args  []any
}

// String 返回便于日志输出的形式
func (r WriteRequest) String() string {
	if len(r.Args) == 0 {
		return r.Query
	}
	return fmt.Sprintf("%s %v", r.Query, r.Args)
}

// namespace 返回网络对应的 schema 名（已转义）
func namespace(n types.NetworkType) string {
	return pq.QuoteIdentifier(n.LegacyName())
}

// ============================================================================
//                              PeerRecord
// ============================================================================

// PeerRecord 节点在线记录
type PeerRecord struct {
	Network   types.NetworkType
	Time      time.Time
	Version   string
	IP        string
	Reachable int
	Address   string
	PeerID    string
	NodeType  types.NodeType
}

// Request 生成按 address 更新的 upsert 语句
func (r PeerRecord) Request() WriteRequest {
	q := "INSERT INTO " + namespace(r.Network) +
		".peer(time, version, ip, n_reachable, address, peer_id, node_type) " +
		"VALUES ($1, $2, $3, $4, $5, $6, $7) " +
		"ON CONFLICT (address) DO UPDATE SET time = excluded.time, n_reachable = excluded.n_reachable"
	return WriteRequest{
		Query: q,
		Args: []any{
			r.Time.UTC(), r.Version, r.IP, r.Reachable, r.Address, r.PeerID, int(r.NodeType),
		},
	}
}

// ============================================================================
//                              IPInfoRecord
// ============================================================================

// IPInfoRecord IP 地理位置记录
type IPInfoRecord struct {
	Network   types.NetworkType
	IP        string
	Country   string
	City      string
	Region    string
	Company   string
	Latitude  float64
	Longitude float64
}

// Request 生成已存在时忽略的 insert 语句
func (r IPInfoRecord) Request() WriteRequest {
	q := "INSERT INTO " + namespace(r.Network) +
		".ipinfo(ip, country, city, region, company, latitude, longitude) " +
		"VALUES ($1, $2, $3, $4, $5, $6, $7) ON CONFLICT DO NOTHING"
	return WriteRequest{
		Query: q,
		Args: []any{
			r.IP, r.Country, r.City, r.Region, r.Company, r.Latitude, r.Longitude,
		},
	}
}

// ============================================================================
//                              Schema
// ============================================================================

// SchemaStatements 返回创建网络 schema 与表的语句
func SchemaStatements(n types.NetworkType) []string {
	ns := namespace(n)
	return []string{
		"CREATE SCHEMA IF NOT EXISTS " + ns,
		strings.Join([]string{
			"CREATE TABLE IF NOT EXISTS " + ns + ".peer (",
			"id BIGSERIAL, ",
			"time TIMESTAMPTZ NOT NULL, ",
			"version TEXT NOT NULL, ",
			"ip TEXT NOT NULL, ",
			"n_reachable INTEGER NOT NULL, ",
			"address TEXT PRIMARY KEY, ",
			"peer_id TEXT NOT NULL, ",
			"node_type SMALLINT NOT NULL)",
		}, ""),
		strings.Join([]string{
			"CREATE TABLE IF NOT EXISTS " + ns + ".ipinfo (",
			"ip TEXT PRIMARY KEY, ",
			"country TEXT, ",
			"city TEXT, ",
			"region TEXT, ",
			"company TEXT, ",
			"latitude DOUBLE PRECISION, ",
			"longitude DOUBLE PRECISION)",
		}, ""),
	}
}
