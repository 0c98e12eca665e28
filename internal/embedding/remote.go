// Package embedding converts text into fixed-dimension vectors. A
// remote OpenAI-compatible client and an offline local model implement
// the same Embedder capability; Provider composes them with failover.
package embedding

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"

	"github.com/meridianhq/docsearch/internal/domain"
)

const (
	// DefaultRemoteDimension is the dimension of gemini-embedding-exp-03-07.
	DefaultRemoteDimension = 3072

	maxAttempts = 3
)

// Embedder converts a batch of texts into one vector per text, in the
// same order.
type Embedder interface {
	Name() string
	Dimension() int
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// RemoteConfig configures the remote embeddings client.
type RemoteConfig struct {
	APIKey            string
	APIBase           string
	Model             string
	Dimension         int
	RequestsPerSecond float64
}

// RemoteClient calls an OpenAI-compatible embeddings endpoint. The API
// key is captured once at construction; a missing key surfaces as an
// authentication error on first use, not at startup.
type RemoteClient struct {
	client    *openai.Client
	model     string
	apiKey    string
	dimension int
	limiter   *rate.Limiter
}

// NewRemoteClient creates a new RemoteClient instance
func NewRemoteClient(cfg RemoteConfig) *RemoteClient {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.APIBase != "" {
		clientCfg.BaseURL = cfg.APIBase
	}

	dimension := cfg.Dimension
	if dimension <= 0 {
		dimension = DefaultRemoteDimension
	}

	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 2
	}

	return &RemoteClient{
		client:    openai.NewClientWithConfig(clientCfg),
		model:     cfg.Model,
		apiKey:    cfg.APIKey,
		dimension: dimension,
		limiter:   rate.NewLimiter(rate.Limit(rps), 1),
	}
}

// Name returns the embedder variant identifier.
func (c *RemoteClient) Name() string { return "remote" }

// Dimension returns the dimensionality of the produced vectors.
func (c *RemoteClient) Dimension() int { return c.dimension }

// Embed requests embeddings for the whole batch in one call, retrying
// transient failures with capped exponential backoff. Authentication
// failures are never retried.
func (c *RemoteClient) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	if c.apiKey == "" {
		return nil, domain.NewDomainErrorWithCause(
			domain.ErrCodeAuthentication,
			"embedding API authentication failed",
			errors.New("GEMINI_API_KEY not set"),
		)
	}

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			if err := sleepCtx(ctx, retryDelay(attempt-1)); err != nil {
				return nil, err
			}
		}
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		resp, err := c.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
			Input: texts,
			Model: openai.EmbeddingModel(c.model),
		})
		if err != nil {
			if isAuthError(err) {
				return nil, domain.NewDomainErrorWithCause(
					domain.ErrCodeAuthentication,
					"embedding API authentication failed",
					err,
				)
			}
			if !isTransient(err) {
				return nil, domain.NewDomainErrorWithCause(
					domain.ErrCodeEmbeddingUnavailable,
					"remote embedding request rejected",
					err,
				)
			}
			lastErr = err
			continue
		}

		vectors, err := orderVectors(resp, len(texts))
		if err != nil {
			lastErr = err
			continue
		}
		return vectors, nil
	}

	return nil, domain.NewDomainErrorWithCause(
		domain.ErrCodeEmbeddingUnavailable,
		fmt.Sprintf("remote embedding failed after %d attempts", maxAttempts),
		lastErr,
	)
}

// orderVectors reassembles the response by the index the API tags each
// embedding with; completion order is not guaranteed to match input
// order.
func orderVectors(resp openai.EmbeddingResponse, want int) ([][]float32, error) {
	if len(resp.Data) != want {
		return nil, fmt.Errorf("expected %d embeddings, got %d", want, len(resp.Data))
	}

	vectors := make([][]float32, want)
	for _, d := range resp.Data {
		if d.Index < 0 || d.Index >= want || vectors[d.Index] != nil {
			return nil, fmt.Errorf("unexpected embedding index %d", d.Index)
		}
		vectors[d.Index] = d.Embedding
	}

	dim := len(vectors[0])
	for i, v := range vectors {
		if len(v) != dim {
			return nil, fmt.Errorf("embedding %d has dimension %d, batch started with %d", i, len(v), dim)
		}
	}
	return vectors, nil
}

func isAuthError(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode == http.StatusUnauthorized ||
			apiErr.HTTPStatusCode == http.StatusForbidden
	}
	return false
}

// isTransient reports whether the failure is worth retrying: network
// errors, rate limits and server-side failures.
func isTransient(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode == http.StatusTooManyRequests ||
			apiErr.HTTPStatusCode >= http.StatusInternalServerError
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode == http.StatusTooManyRequests ||
			reqErr.HTTPStatusCode >= http.StatusInternalServerError
	}
	// Transport-level failure without a status code
	return true
}

func retryDelay(attempt int) time.Duration {
	base := 200 * time.Millisecond
	d := base << attempt
	if d > 5*time.Second {
		d = 5 * time.Second
	}
	return d
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
