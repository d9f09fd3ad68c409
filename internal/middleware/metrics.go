package middleware

import (
	"context"
	"time"

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the service's Prometheus collectors.
type Metrics struct {
	rpcRequests        *prometheus.CounterVec
	rpcDuration        *prometheus.HistogramVec
	extractions        *prometheus.CounterVec
	extractionDuration prometheus.Histogram
}

// Extraction outcomes.
const (
	ExtractionOK       = "ok"
	ExtractionRejected = "rejected"
	ExtractionFailed   = "failed"
)

// NewMetrics creates the collectors and registers them with reg.
// liveSessions is sampled on every scrape; it may be nil.
func NewMetrics(reg prometheus.Registerer, liveSessions func() float64) *Metrics {
	m := &Metrics{
		rpcRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "billbeam",
			Name:      "rpc_requests_total",
			Help:      "RPC calls by procedure and result code.",
		}, []string{"procedure", "code"}),
		rpcDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "billbeam",
			Name:      "rpc_duration_seconds",
			Help:      "RPC latency by procedure.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"procedure"}),
		extractions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "billbeam",
			Name:      "extractions_total",
			Help:      "Receipt extractions by outcome.",
		}, []string{"outcome"}),
		extractionDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "billbeam",
			Name:      "extraction_duration_seconds",
			Help:      "Time spent waiting on the extraction model.",
			Buckets:   []float64{0.5, 1, 2, 4, 8, 16, 32},
		}),
	}
	reg.MustRegister(m.rpcRequests, m.rpcDuration, m.extractions, m.extractionDuration)

	if liveSessions != nil {
		reg.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "billbeam",
			Name:      "live_sessions",
			Help:      "Bill-splitting sessions held in memory.",
		}, liveSessions))
	}
	return m
}

// Interceptor counts and times every RPC.
func (m *Metrics) Interceptor() connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			start := time.Now()
			procedure := req.Spec().Procedure

			resp, err := next(ctx, req)

			code := "ok"
			if err != nil {
				code = connect.CodeOf(err).String()
			}
			m.rpcRequests.WithLabelValues(procedure, code).Inc()
			m.rpcDuration.WithLabelValues(procedure).Observe(time.Since(start).Seconds())
			return resp, err
		}
	}
}

// ObserveExtraction records one extraction attempt. A nil Metrics is a no-op.
func (m *Metrics) ObserveExtraction(outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.extractions.WithLabelValues(outcome).Inc()
	m.extractionDuration.Observe(d.Seconds())
}
