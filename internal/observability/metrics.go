package observability

import "github.com/prometheus/client_golang/prometheus"

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lucidata_http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "lucidata_http_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	translationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lucidata_translations_total",
			Help: "Completed translations by SQL origin and schema source.",
		},
		[]string{"sql_origin", "schema_source"},
	)
)

func init() {
	prometheus.MustRegister(httpRequestsTotal, httpRequestDurationSeconds, translationsTotal)
}

func ObserveTranslation(sqlOrigin, schemaSource string) {
	translationsTotal.WithLabelValues(sqlOrigin, schemaSource).Inc()
}
