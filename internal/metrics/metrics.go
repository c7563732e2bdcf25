// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector はメトリクス収集のインターフェース。
// ミドルウェア、キャッシュ、外部APIクライアントから利用する。
type MetricsCollector interface {
	RecordHTTPStatus(statusCode int)
	RecordHTTPLatency(duration time.Duration)
	RecordAuthzDecision(decision string)
	RecordUpstreamCall(endpoint, outcome string, duration time.Duration)
	CacheHit(region string)
	CacheMiss(region string)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	httpStatus      *prometheus.CounterVec
	httpLatency     prometheus.Histogram
	authzDecisions  *prometheus.CounterVec
	upstreamCalls   *prometheus.CounterVec
	upstreamLatency *prometheus.HistogramVec
	cacheHits       *prometheus.CounterVec
	cacheMisses     *prometheus.CounterVec
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "furcode_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		httpLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "furcode_http_request_duration_seconds",
			Help:    "HTTPリクエストの処理時間（秒）",
			Buckets: prometheus.DefBuckets,
		}),
		authzDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "furcode_authz_decisions_total",
			Help: "認可判定の結果別の件数",
		}, []string{"decision"}),
		upstreamCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "furcode_upstream_requests_total",
			Help: "外部犬種APIへのリクエスト数",
		}, []string{"endpoint", "outcome"}),
		upstreamLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "furcode_upstream_request_duration_seconds",
			Help:    "外部犬種APIのレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),
		cacheHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "furcode_cache_hits_total",
			Help: "キャッシュリージョン別のヒット数",
		}, []string{"region"}),
		cacheMisses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "furcode_cache_misses_total",
			Help: "キャッシュリージョン別のミス数",
		}, []string{"region"}),
	}

	reg.MustRegister(
		c.httpStatus,
		c.httpLatency,
		c.authzDecisions,
		c.upstreamCalls,
		c.upstreamLatency,
		c.cacheHits,
		c.cacheMisses,
	)

	return c
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordHTTPLatency はリクエストの処理時間を記録する。
func (c *Collector) RecordHTTPLatency(duration time.Duration) {
	c.httpLatency.Observe(duration.Seconds())
}

// RecordAuthzDecision は認可判定の結果を記録する。
func (c *Collector) RecordAuthzDecision(decision string) {
	c.authzDecisions.WithLabelValues(decision).Inc()
}

// RecordUpstreamCall は外部APIの呼び出し結果とレイテンシを記録する。
func (c *Collector) RecordUpstreamCall(endpoint, outcome string, duration time.Duration) {
	c.upstreamCalls.WithLabelValues(endpoint, outcome).Inc()
	c.upstreamLatency.WithLabelValues(endpoint).Observe(duration.Seconds())
}

// CacheHit はキャッシュヒットを記録する。
func (c *Collector) CacheHit(region string) {
	c.cacheHits.WithLabelValues(region).Inc()
}

// CacheMiss はキャッシュミスを記録する。
func (c *Collector) CacheMiss(region string) {
	c.cacheMisses.WithLabelValues(region).Inc()
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
