package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// OpenAIConfig defines configuration options for the OpenAI generator.
type OpenAIConfig struct {
	APIKey    string
	MaxTokens int
	Logger    zerolog.Logger
}

// OpenAIGenerator implements Generator against the OpenAI chat completion API.
type OpenAIGenerator struct {
	client *openai.Client
	cfg    OpenAIConfig
	tracer trace.Tracer
	logger zerolog.Logger
}

// NewOpenAIGenerator builds a new generator using the provided configuration.
func NewOpenAIGenerator(cfg OpenAIConfig) (*OpenAIGenerator, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai api key is required")
	}

	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 2048
	}

	logger := cfg.Logger
	if logger.GetLevel() == zerolog.Disabled {
		logger = zerolog.Nop()
	}

	config := openai.DefaultConfig(cfg.APIKey)
	client := openai.NewClientWithConfig(config)

	return &OpenAIGenerator{
		client: client,
		cfg:    cfg,
		tracer: otel.Tracer("github.com/noah-isme/eval-lab-api/pkg/ai/openai"),
		logger: logger,
	}, nil
}

// Generate issues a single chat completion call and returns the response text.
func (g *OpenAIGenerator) Generate(parent context.Context, req GenerateRequest) (string, error) {
	ctx, span := g.tracer.Start(parent, "openai.generate", trace.WithAttributes(
		attribute.String("model", req.Model),
	))
	defer span.End()

	request := openai.ChatCompletionRequest{
		Model:       req.Model,
		MaxTokens:   g.cfg.MaxTokens,
		Temperature: req.Temperature,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: req.Prompt,
			},
		},
	}

	start := time.Now()
	resp, err := g.client.CreateChatCompletion(ctx, request)
	generationDuration.WithLabelValues("openai", req.Model).Observe(time.Since(start).Seconds())
	if err != nil {
		generationFailures.WithLabelValues("openai", req.Model).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", fmt.Errorf("openai generate: %w", err)
	}

	if len(resp.Choices) == 0 {
		err := fmt.Errorf("no choices returned from openai")
		generationFailures.WithLabelValues("openai", req.Model).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}

	content := responseText(req, strings.TrimSpace(resp.Choices[0].Message.Content))

	g.logger.Debug().
		Str("model", req.Model).
		Int("response_len", len(content)).
		Msg("openai generation completed")

	return content, nil
}
