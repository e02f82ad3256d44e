package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ChatRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_requests_total",
			Help: "Total number of chat requests by pipeline outcome",
		},
		[]string{"outcome"},
	)

	ChatGenerationAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_generation_attempts_total",
			Help: "Total number of generation attempts by provider and result",
		},
		[]string{"provider", "result"},
	)

	ChatStreamDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "chat_stream_duration_seconds",
			Help:    "Duration of streamed chat answers in seconds",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 40, 80},
		},
		[]string{"intent", "state"},
	)

	ChatStreamsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "chat_streams_active",
			Help: "Number of answers currently streaming",
		},
	)

	BreedLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "breed_lookup_requests_total",
			Help: "Total number of breed lookups by result",
		},
		[]string{"result"},
	)
)
