package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	oracleDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "craftfolio",
		Subsystem: "ai",
		Name:      "generation_duration_seconds",
		Help:      "Duration of oracle generation requests",
	}, []string{"model"})

	oracleFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "craftfolio",
		Subsystem: "ai",
		Name:      "generation_failures_total",
		Help:      "Number of oracle generation failures",
	}, []string{"model"})
)

// OpenAIConfig defines configuration options for the OpenAI oracle.
type OpenAIConfig struct {
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float32
	Logger      zerolog.Logger
}

// OpenAIOracle implements Oracle against the OpenAI chat completion API.
type OpenAIOracle struct {
	client *openai.Client
	cfg    OpenAIConfig
	tracer trace.Tracer
	logger zerolog.Logger
}

// NewOpenAIOracle builds a new oracle using the provided configuration.
func NewOpenAIOracle(cfg OpenAIConfig) (*OpenAIOracle, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai api key is required")
	}

	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}

	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 768
	}

	tracer := otel.Tracer("github.com/craftfolio/craftfolio-api/pkg/ai/openai")
	logger := cfg.Logger
	if logger.GetLevel() == zerolog.Disabled {
		logger = zerolog.Nop()
	}

	config := openai.DefaultConfig(cfg.APIKey)
	client := openai.NewClientWithConfig(config)

	return &OpenAIOracle{
		client: client,
		cfg:    cfg,
		tracer: tracer,
		logger: logger,
	}, nil
}

// Generate sends the prompt to OpenAI and returns the raw text reply.
func (o *OpenAIOracle) Generate(parent context.Context, req GenerationRequest) (GenerationResult, error) {
	ctx, span := o.tracer.Start(parent, "openai.generate", trace.WithAttributes(
		attribute.String("model", o.cfg.Model),
	))
	defer span.End()

	messages := []openai.ChatCompletionMessage{}
	if req.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.System,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.Prompt,
	})

	start := time.Now()
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       o.cfg.Model,
		MaxTokens:   o.cfg.MaxTokens,
		Temperature: o.cfg.Temperature,
		Messages:    messages,
	})
	duration := time.Since(start)
	oracleDuration.WithLabelValues(o.cfg.Model).Observe(duration.Seconds())
	if err != nil {
		oracleFailures.WithLabelValues(o.cfg.Model).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return GenerationResult{}, fmt.Errorf("openai generate: %w", err)
	}

	if len(resp.Choices) == 0 {
		err := fmt.Errorf("no choices returned from openai")
		oracleFailures.WithLabelValues(o.cfg.Model).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return GenerationResult{}, err
	}

	choice := resp.Choices[0]
	text := strings.TrimSpace(choice.Message.Content)
	if text == "" {
		err := fmt.Errorf("empty reply from openai")
		oracleFailures.WithLabelValues(o.cfg.Model).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return GenerationResult{}, err
	}

	return GenerationResult{
		Text:       text,
		Confidence: generationConfidence(choice.FinishReason),
		Raw: map[string]interface{}{
			"usage": resp.Usage,
		},
	}, nil
}

// generationConfidence maps the completion outcome to the oracle's
// self-reported confidence. A truncated reply is markedly less trustworthy.
func generationConfidence(reason openai.FinishReason) int {
	switch reason {
	case openai.FinishReasonStop:
		return 85
	case openai.FinishReasonLength:
		return 55
	default:
		return 60
	}
}
