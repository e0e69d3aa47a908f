package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	// Namespace 指标命名空间
	Namespace = "ckb_crawler"
)

// Metrics 爬虫全部指标
type Metrics struct {
	KnownAddresses     *prometheus.GaugeVec
	OnlinePeers        *prometheus.GaugeVec
	LedgerPeers        *prometheus.GaugeVec
	OpenSessions       *prometheus.GaugeVec
	Dials              *prometheus.CounterVec
	DialFailures       *prometheus.CounterVec
	Promotions         *prometheus.CounterVec
	RejectedInbound    *prometheus.CounterVec
	StaleDisconnects   *prometheus.CounterVec
	IdentifyMessages   *prometheus.CounterVec
	DiscoveryAddresses *prometheus.CounterVec
	DecodeErrors       *prometheus.CounterVec
	TelemetryRecords   *prometheus.CounterVec
	GeoIPLookups       *prometheus.CounterVec
	SinkBatches        *prometheus.CounterVec
	SinkRequests       *prometheus.CounterVec
}

// New 创建指标并注册到 reg
func New(reg prometheus.Registerer) *Metrics {
	gauge := func(name, help string, labels ...string) *prometheus.GaugeVec {
		return prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      name,
			Help:      help,
		}, labels)
	}
	counter := func(name, help string, labels ...string) *prometheus.CounterVec {
		return prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      name,
			Help:      help,
		}, labels)
	}

	m := &Metrics{
		KnownAddresses:     gauge("known_addresses", "Number of addresses in the address book.", "network"),
		OnlinePeers:        gauge("online_peers", "Number of peers online in the last telemetry emission.", "network"),
		LedgerPeers:        gauge("ledger_peers", "Number of peers ever confirmed.", "network"),
		OpenSessions:       gauge("open_sessions", "Number of open outbound sessions.", "network"),
		Dials:              counter("dials_total", "Number of outbound dials issued.", "network"),
		DialFailures:       counter("dial_failures_total", "Number of failed outbound dials.", "network"),
		Promotions:         counter("witness_promotions_total", "Number of addresses promoted online by witnesses.", "network"),
		RejectedInbound:    counter("rejected_inbound_total", "Number of inbound sessions rejected.", "network"),
		StaleDisconnects:   counter("stale_disconnects_total", "Number of sessions disconnected for missing identify.", "network"),
		IdentifyMessages:   counter("identify_messages_total", "Number of identify messages accepted.", "network"),
		DiscoveryAddresses: counter("discovery_addresses_total", "Number of addresses received through discovery.", "network"),
		DecodeErrors:       counter("decode_errors_total", "Number of undecodable payloads by channel.", "network", "channel"),
		TelemetryRecords:   counter("telemetry_records_total", "Number of records emitted by kind.", "network", "kind"),
		GeoIPLookups:       counter("geoip_lookups_total", "Number of geolocation lookups by result.", "network", "result"),
		SinkBatches:        counter("sink_batches_total", "Number of write batches by result.", "result"),
		SinkRequests:       counter("sink_requests_total", "Number of write requests by result.", "result"),
	}

	if reg != nil {
		reg.MustRegister(
			m.KnownAddresses, m.OnlinePeers, m.LedgerPeers, m.OpenSessions,
			m.Dials, m.DialFailures, m.Promotions, m.RejectedInbound, m.StaleDisconnects,
			m.IdentifyMessages, m.DiscoveryAddresses, m.DecodeErrors,
			m.TelemetryRecords, m.GeoIPLookups, m.SinkBatches, m.SinkRequests,
		)
	}
	return m
}

// NewNop 创建不注册到任何 Registry 的指标，测试与未启用指标时使用
func NewNop() *Metrics {
	return New(nil)
}

// NetworkMetrics 绑定 network 标签的指标
type NetworkMetrics struct {
	KnownAddresses     prometheus.Gauge
	OnlinePeers        prometheus.Gauge
	LedgerPeers        prometheus.Gauge
	OpenSessions       prometheus.Gauge
	Dials              prometheus.Counter
	DialFailures       prometheus.Counter
	Promotions         prometheus.Counter
	RejectedInbound    prometheus.Counter
	StaleDisconnects   prometheus.Counter
	IdentifyMessages   prometheus.Counter
	DiscoveryAddresses prometheus.Counter

	decodeErrors *prometheus.CounterVec
	records      *prometheus.CounterVec
	lookups      *prometheus.CounterVec
}

// For 返回指定网络的指标
func (m *Metrics) For(network string) *NetworkMetrics {
	l := prometheus.Labels{"network": network}
	return &NetworkMetrics{
		KnownAddresses:     m.KnownAddresses.With(l),
		OnlinePeers:        m.OnlinePeers.With(l),
		LedgerPeers:        m.LedgerPeers.With(l),
		OpenSessions:       m.OpenSessions.With(l),
		Dials:              m.Dials.With(l),
		DialFailures:       m.DialFailures.With(l),
		Promotions:         m.Promotions.With(l),
		RejectedInbound:    m.RejectedInbound.With(l),
		StaleDisconnects:   m.StaleDisconnects.With(l),
		IdentifyMessages:   m.IdentifyMessages.With(l),
		DiscoveryAddresses: m.DiscoveryAddresses.With(l),
		decodeErrors:       m.DecodeErrors.MustCurryWith(l),
		records:            m.TelemetryRecords.MustCurryWith(l),
		lookups:            m.GeoIPLookups.MustCurryWith(l),
	}
}

// DecodeError 记录一次解码失败
func (n *NetworkMetrics) DecodeError(channel string) {
	n.decodeErrors.WithLabelValues(channel).Inc()
}

// Record 记录一条遥测输出
func (n *NetworkMetrics) Record(kind string) {
	n.records.WithLabelValues(kind).Inc()
}

// Lookup 记录一次地理位置查询结果
func (n *NetworkMetrics) Lookup(result string) {
	n.lookups.WithLabelValues(result).Inc()
}
