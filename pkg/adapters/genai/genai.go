// Package genai generates fortune reports with the OpenAI chat completions API.
package genai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/aretw0/uranai/internal/logging"
	"github.com/aretw0/uranai/pkg/domain"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const (
	DefaultModel       = openai.ChatModelGPT4oMini
	DefaultMaxTokens   = 1500
	DefaultTemperature = 0.7

	// Reports shorter than this are delivered but logged as suspicious.
	minReportRunes = 100
)

// ErrNoChoicesReturned is returned when the API answers without a completion.
var ErrNoChoicesReturned = errors.New("no choices returned")

// ErrEmptyReport is returned when the completion has no text.
var ErrEmptyReport = errors.New("empty report")

// chatService defines minimal interface for chat completions.
type chatService interface {
	Create(ctx context.Context, params openai.ChatCompletionNewParams) (openai.ChatCompletion, error)
}

// completions adapts the SDK service to chatService.
type completions struct {
	svc *openai.ChatCompletionService
}

func (c completions) Create(ctx context.Context, params openai.ChatCompletionNewParams) (openai.ChatCompletion, error) {
	resp, err := c.svc.New(ctx, params)
	if err != nil {
		return openai.ChatCompletion{}, err
	}
	return *resp, nil
}

// Generator implements ports.Generator.
type Generator struct {
	chat        chatService
	model       openai.ChatModel
	maxTokens   int64
	temperature float64
	logger      *slog.Logger
}

type Option func(*generatorConfig)

type generatorConfig struct {
	apiKey      string
	baseURL     string
	model       string
	maxTokens   int64
	temperature float64
	logger      *slog.Logger
}

// WithAPIKey sets the API key.
func WithAPIKey(key string) Option {
	return func(c *generatorConfig) { c.apiKey = key }
}

// WithBaseURL points the client at a compatible endpoint.
func WithBaseURL(url string) Option {
	return func(c *generatorConfig) { c.baseURL = url }
}

// WithModel overrides the chat model.
func WithModel(model string) Option {
	return func(c *generatorConfig) { c.model = model }
}

// WithMaxTokens caps the completion length.
func WithMaxTokens(n int64) Option {
	return func(c *generatorConfig) { c.maxTokens = n }
}

// WithTemperature sets the sampling temperature.
func WithTemperature(t float64) Option {
	return func(c *generatorConfig) { c.temperature = t }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *generatorConfig) { c.logger = logger }
}

// New creates a Generator. An API key is required.
func New(opts ...Option) (*Generator, error) {
	cfg := generatorConfig{
		model:       string(DefaultModel),
		maxTokens:   DefaultMaxTokens,
		temperature: DefaultTemperature,
		logger:      logging.NewNop(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.apiKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY not set")
	}

	// One attempt per turn.
	reqOpts := []option.RequestOption{
		option.WithAPIKey(cfg.apiKey),
		option.WithMaxRetries(0),
	}
	if cfg.baseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(cfg.baseURL))
	}
	cli := openai.NewClient(reqOpts...)

	return newGenerator(completions{svc: &cli.Chat.Completions}, cfg), nil
}

func newGenerator(chat chatService, cfg generatorConfig) *Generator {
	return &Generator{
		chat:        chat,
		model:       openai.ChatModel(cfg.model),
		maxTokens:   cfg.maxTokens,
		temperature: cfg.temperature,
		logger:      cfg.logger,
	}
}

// Generate produces a report draft for the operator to review.
func (g *Generator) Generate(ctx context.Context, name, birth string, theme domain.Theme) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model: g.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(UserPrompt(name, birth, theme)),
		},
		MaxTokens:   openai.Int(g.maxTokens),
		Temperature: openai.Float(g.temperature),
	}

	g.logger.Debug("Requesting fortune report", "model", string(g.model), "theme", string(theme))

	resp, err := g.chat.Create(ctx, params)
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrNoChoicesReturned
	}

	report := strings.TrimSpace(resp.Choices[0].Message.Content)
	if report == "" {
		return "", ErrEmptyReport
	}
	if n := utf8.RuneCountInString(report); n < minReportRunes {
		g.logger.Warn("Generated report is unusually short", "runes", n, "finish_reason", resp.Choices[0].FinishReason)
	}
	return report, nil
}

// UserPrompt renders the per-request prompt.
func UserPrompt(name, birth string, theme domain.Theme) string {
	return fmt.Sprintf(userPromptFormat, name, birth, theme)
}
