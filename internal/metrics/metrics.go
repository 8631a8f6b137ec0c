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
// セッションストア、OAuth完了処理、APIクライアントから利用する。
type MetricsCollector interface {
	RecordSessionEvent(namespace, event string)
	RecordOAuthCompletion(result string)
	RecordAPIStatus(statusCode int)
	RecordAPILatency(duration time.Duration)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	sessionEvents *prometheus.CounterVec
	oauthResults  *prometheus.CounterVec
	apiStatus     *prometheus.CounterVec
	apiLatency    prometheus.Histogram
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		sessionEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "teamfinder_session_events_total",
			Help: "名前空間・イベント別のセッションイベント数",
		}, []string{"namespace", "event"}),
		oauthResults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "teamfinder_oauth_completions_total",
			Help: "結果別のOAuthコールバック処理数",
		}, []string{"result"}),
		apiStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "teamfinder_api_requests_total",
			Help: "HTTPステータスコード別のコラボレーターAPI呼び出し数",
		}, []string{"status_code"}),
		apiLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "teamfinder_api_latency_seconds",
			Help:    "コラボレーターAPI呼び出しのレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(
		c.sessionEvents,
		c.oauthResults,
		c.apiStatus,
		c.apiLatency,
	)

	return c
}

// RecordSessionEvent はセッションイベントを記録する。
func (c *Collector) RecordSessionEvent(namespace, event string) {
	c.sessionEvents.WithLabelValues(namespace, event).Inc()
}

// RecordOAuthCompletion はOAuthコールバックの結果を記録する。
func (c *Collector) RecordOAuthCompletion(result string) {
	c.oauthResults.WithLabelValues(result).Inc()
}

// RecordAPIStatus はAPIレスポンスのステータスコードを記録する。
// ネットワークエラーで応答がない場合は0を渡す。
func (c *Collector) RecordAPIStatus(statusCode int) {
	c.apiStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordAPILatency はAPI呼び出しのレイテンシを記録する。
func (c *Collector) RecordAPILatency(duration time.Duration) {
	c.apiLatency.Observe(duration.Seconds())
}

// Nop は何も記録しないMetricsCollector。
type Nop struct{}

func (Nop) RecordSessionEvent(string, string) {}
func (Nop) RecordOAuthCompletion(string)      {}
func (Nop) RecordAPIStatus(int)               {}
func (Nop) RecordAPILatency(time.Duration)    {}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
