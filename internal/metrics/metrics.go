package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mindbridge_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mindbridge_http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: []float64{.005, .01, .05, .1, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"method", "path"},
	)

	// Business metrics
	ChatTurns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mindbridge_chat_turns_total",
			Help: "Total chat turns handled",
		},
		[]string{"crisis"}, // "true" or "false"
	)

	Checkins = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mindbridge_checkins_total",
			Help: "Total mood check-ins submitted",
		},
	)

	UnscreenedCrisisCheckins = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mindbridge_checkin_unscreened_crisis_total",
			Help: "Check-in notes containing crisis language that were answered without crisis messaging",
		},
	)

	ProviderOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mindbridge_provider_outcomes_total",
			Help: "Text generation outcomes by provider",
		},
		[]string{"provider", "outcome"},
	)

	ProviderLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mindbridge_provider_latency_seconds",
			Help:    "Text generation call latency",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"provider"},
	)

	SpeechSyntheses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mindbridge_tts_requests_total",
			Help: "Text-to-speech requests by result",
		},
		[]string{"result"},
	)

	// Infrastructure metrics
	StoreLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mindbridge_store_latency_seconds",
			Help:    "Persistence operation latency",
			Buckets: []float64{.0005, .001, .005, .01, .025, .05, .1},
		},
		[]string{"driver", "op"},
	)
)
