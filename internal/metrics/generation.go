package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// LLM and generation Prometheus metrics.
var (
	LLMRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "scriptforge",
			Name:      "llm_requests_total",
			Help:      "Total number of language model requests",
		},
		[]string{"model", "status"},
	)

	LLMRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "scriptforge",
			Name:      "llm_request_duration_seconds",
			Help:      "Language model request duration in seconds",
			Buckets:   []float64{0.25, 0.5, 1, 2.5, 5, 10, 20, 30, 60},
		},
		[]string{"model"},
	)

	LLMTokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "scriptforge",
			Name:      "llm_tokens_total",
			Help:      "Total language model tokens consumed",
		},
		[]string{"model", "type"},
	)

	GenerationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "scriptforge",
			Name:      "generation_requests_total",
			Help:      "Generated scenes and outlines by output type and source",
		},
		[]string{"output_type", "source"},
	)

	CorpusDocuments = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "scriptforge",
			Name:      "corpus_documents",
			Help:      "Documents currently held in the corpus",
		},
	)
)

var registerOnce sync.Once

// RegisterGenerationMetrics registers LLM, generation and corpus metrics. Safe to call more than once.
func RegisterGenerationMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(LLMRequestsTotal)
		prometheus.MustRegister(LLMRequestDuration)
		prometheus.MustRegister(LLMTokensTotal)
		prometheus.MustRegister(GenerationsTotal)
		prometheus.MustRegister(CorpusDocuments)
	})
}
