// Package generation wraps the external answer-generation service
// behind a single Complete capability.
package generation

import (
	"context"
	"errors"

	openai "github.com/sashabaranov/go-openai"

	"github.com/meridianhq/docsearch/internal/domain"
)

const (
	DefaultModel       = "mistral-small"
	DefaultAPIBase     = "https://api.mistral.ai/v1"
	DefaultTemperature = 0.7
	DefaultMaxTokens   = 4096
)

// Config configures the generation client.
type Config struct {
	APIKey      string
	APIBase     string
	Model       string
	Temperature float32
	MaxTokens   int
}

// Client calls a Mistral/OpenAI-compatible chat completion endpoint.
type Client struct {
	client      *openai.Client
	model       string
	apiKey      string
	temperature float32
	maxTokens   int
}

// NewClient creates a new generation Client instance
func NewClient(cfg Config) *Client {
	if cfg.APIBase == "" {
		cfg.APIBase = DefaultAPIBase
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = DefaultTemperature
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	clientCfg.BaseURL = cfg.APIBase

	return &Client{
		client:      openai.NewClientWithConfig(clientCfg),
		model:       cfg.Model,
		apiKey:      cfg.APIKey,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
	}
}

// Complete sends the prompt and returns the generated text. Any failure
// is reported as GenerationUnavailable for the query pipeline to
// surface unchanged.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	if c.apiKey == "" {
		return "", domain.NewDomainErrorWithCause(
			domain.ErrCodeGenerationUnavailable,
			"generation service unavailable",
			errors.New("MISTRAL_API_KEY not set"),
		)
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", domain.NewDomainErrorWithCause(
			domain.ErrCodeGenerationUnavailable,
			"generation service unavailable",
			err,
		)
	}
	if len(resp.Choices) == 0 {
		return "", domain.NewDomainErrorWithCause(
			domain.ErrCodeGenerationUnavailable,
			"generation service unavailable",
			errors.New("no completion choices returned"),
		)
	}

	return resp.Choices[0].Message.Content, nil
}
