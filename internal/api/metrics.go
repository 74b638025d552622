package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the collectors exported by the analysis service.
type Metrics struct {
	RequestsTotal    *prometheus.CounterVec
	AnalysisDuration prometheus.Histogram
	PacketsAnalyzed  prometheus.Counter
	AnomaliesFound   prometheus.Counter
}

// NewMetrics registers the service collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "packetprism_requests_total",
			Help: "Number of analysis requests, partitioned by outcome.",
		}, []string{"status"}),
		AnalysisDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "packetprism_analysis_duration_seconds",
			Help:    "Wall-clock time of a full analysis run.",
			Buckets: prometheus.DefBuckets,
		}),
		PacketsAnalyzed: factory.NewCounter(prometheus.CounterOpts{
			Name: "packetprism_packets_analyzed_total",
			Help: "Number of packet summaries that went through clustering.",
		}),
		AnomaliesFound: factory.NewCounter(prometheus.CounterOpts{
			Name: "packetprism_anomalies_found_total",
			Help: "Number of packets flagged above the anomaly threshold.",
		}),
	}
}
