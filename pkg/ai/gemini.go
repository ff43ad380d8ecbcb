package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/genai"
)

// GeminiConfig defines configuration options for the Gemini generator.
type GeminiConfig struct {
	APIKey string
	Logger zerolog.Logger
}

// GeminiGenerator implements Generator against the Gemini API.
type GeminiGenerator struct {
	client *genai.Client
	tracer trace.Tracer
	logger zerolog.Logger
}

// NewGeminiGenerator builds a new generator using the provided configuration.
func NewGeminiGenerator(ctx context.Context, cfg GeminiConfig) (*GeminiGenerator, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	logger := cfg.Logger
	if logger.GetLevel() == zerolog.Disabled {
		logger = zerolog.Nop()
	}

	return &GeminiGenerator{
		client: client,
		tracer: otel.Tracer("github.com/noah-isme/eval-lab-api/pkg/ai/gemini"),
		logger: logger,
	}, nil
}

// Generate issues a single content generation call and returns the response
// text. Failures are returned to the caller untouched by retries.
func (g *GeminiGenerator) Generate(parent context.Context, req GenerateRequest) (string, error) {
	ctx, span := g.tracer.Start(parent, "gemini.generate", trace.WithAttributes(
		attribute.String("model", req.Model),
	))
	defer span.End()

	temperature := req.Temperature
	config := &genai.GenerateContentConfig{
		Temperature: &temperature,
	}

	start := time.Now()
	resp, err := g.client.Models.GenerateContent(ctx, req.Model, genai.Text(req.Prompt), config)
	generationDuration.WithLabelValues("gemini", req.Model).Observe(time.Since(start).Seconds())
	if err != nil {
		generationFailures.WithLabelValues("gemini", req.Model).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", fmt.Errorf("gemini generate: %w", err)
	}

	text := responseText(req, resp.Text())
	if strings.TrimSpace(text) == "" {
		// An empty candidate is not a transport failure; it flows back to
		// the caller so answer validation can record it as Invalid.
		g.logger.Warn().
			Str("model", req.Model).
			Msg("gemini returned empty text")
	}

	g.logger.Debug().
		Str("model", req.Model).
		Int("response_len", len(text)).
		Msg("gemini generation completed")

	return text, nil
}
