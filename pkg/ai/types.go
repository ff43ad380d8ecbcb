package ai

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	generationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "evallab",
		Subsystem: "ai",
		Name:      "generation_duration_seconds",
		Help:      "Duration of text generation requests",
	}, []string{"provider", "model"})

	generationFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "evallab",
		Subsystem: "ai",
		Name:      "generation_failures_total",
		Help:      "Number of failed text generation requests",
	}, []string{"provider", "model"})
)

// GenerateRequest describes one text generation call. JSONOutput marks
// calls whose prompt demands a bare JSON object; providers then strip
// fences and surrounding prose from the response when a valid object can
// be recovered. Judge calls leave it unset so free-text feedback passes
// through untouched.
type GenerateRequest struct {
	Prompt      string
	Model       string
	Temperature float32
	JSONOutput  bool
}

// Generator describes a synchronous text generation backend. One network
// call per Generate; no retries, no timeout beyond what the provider's
// client enforces. The same backend serves both the answer-generating role
// and the judging role.
type Generator interface {
	Generate(ctx context.Context, req GenerateRequest) (string, error)
}
