package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Session engine metrics
var (
	// Request counters
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "corp1o1",
			Subsystem: "sessions",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	// Request duration histogram
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "corp1o1",
			Subsystem: "sessions",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"method", "endpoint", "status"},
	)

	// Turn outcomes
	TurnsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "corp1o1",
			Subsystem: "sessions",
			Name:      "turns_total",
			Help:      "Completed assistant turns by outcome",
		},
		[]string{"model", "outcome"},
	)

	// Streamed fragments
	FragmentsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "corp1o1",
			Subsystem: "sessions",
			Name:      "fragments_total",
			Help:      "Total streamed response fragments",
		},
		[]string{"model"},
	)

	// Token counters
	TokensPromptTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "corp1o1",
			Subsystem: "sessions",
			Name:      "tokens_prompt_total",
			Help:      "Total prompt tokens consumed",
		},
		[]string{"model", "provider"},
	)

	TokensCompletionTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "corp1o1",
			Subsystem: "sessions",
			Name:      "tokens_completion_total",
			Help:      "Total completion tokens generated",
		},
		[]string{"model", "provider"},
	)

	// Provider errors
	ProviderErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "corp1o1",
			Subsystem: "sessions",
			Name:      "provider_errors_total",
			Help:      "Total provider call failures",
		},
		[]string{"provider", "error_type"},
	)

	// Conversations
	ConversationsCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "corp1o1",
			Subsystem: "sessions",
			Name:      "conversations_created_total",
			Help:      "Total conversations created",
		},
	)

	// Model call duration
	ModelDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "corp1o1",
			Subsystem: "sessions",
			Name:      "model_duration_seconds",
			Help:      "Model inference duration in seconds",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 30, 60, 120},
		},
		[]string{"model", "provider", "stream"},
	)

	// Time to first fragment (streaming)
	FirstFragmentDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "corp1o1",
			Subsystem: "sessions",
			Name:      "first_fragment_seconds",
			Help:      "Time to first fragment for streaming turns",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5},
		},
		[]string{"model", "provider"},
	)

	// Active streaming connections gauge
	ActiveStreams = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "corp1o1",
			Subsystem: "sessions",
			Name:      "active_streams",
			Help:      "Currently active streaming connections",
		},
		[]string{"model"},
	)
)

// RecordRequest records an HTTP request with all relevant labels
func RecordRequest(method, endpoint, status string, durationSec float64) {
	RequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	RequestDuration.WithLabelValues(method, endpoint, status).Observe(durationSec)
}

// RecordTurn records one finished assistant turn
func RecordTurn(model, outcome string) {
	TurnsTotal.WithLabelValues(model, outcome).Inc()
}

// RecordFragment records one streamed fragment
func RecordFragment(model string) {
	FragmentsTotal.WithLabelValues(model).Inc()
}

// RecordTokens records token usage for a completion request
func RecordTokens(model, provider string, promptTokens, completionTokens int) {
	TokensPromptTotal.WithLabelValues(model, provider).Add(float64(promptTokens))
	TokensCompletionTotal.WithLabelValues(model, provider).Add(float64(completionTokens))
}

// RecordModelDuration records the duration of a model inference call
func RecordModelDuration(model, provider string, stream bool, durationSec float64) {
	streamStr := "false"
	if stream {
		streamStr = "true"
	}
	ModelDuration.WithLabelValues(model, provider, streamStr).Observe(durationSec)
}

// RecordFirstFragment records time to first fragment for streaming
func RecordFirstFragment(model, provider string, durationSec float64) {
	FirstFragmentDuration.WithLabelValues(model, provider).Observe(durationSec)
}

// RecordProviderError records a provider error
func RecordProviderError(provider, errorType string) {
	ProviderErrorsTotal.WithLabelValues(provider, errorType).Inc()
}

// IncrementActiveStreams increments the active streams gauge
func IncrementActiveStreams(model string) {
	ActiveStreams.WithLabelValues(model).Inc()
}

// DecrementActiveStreams decrements the active streams gauge
func DecrementActiveStreams(model string) {
	ActiveStreams.WithLabelValues(model).Dec()
}
