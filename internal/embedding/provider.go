package embedding

import (
	"context"
	"errors"
	"log"

	"github.com/meridianhq/docsearch/internal/domain"
)

// Provider composes the remote and local embedder variants and applies
// the failover policy. All vectors returned by one EmbedBatch call come
// from a single variant, identified by the returned name.
type Provider struct {
	remote           Embedder
	local            Embedder
	useLocalFallback bool
}

// NewProvider creates a new Provider instance. Either embedder may be
// nil when that variant is not configured.
func NewProvider(remote, local Embedder, useLocalFallback bool) *Provider {
	return &Provider{
		remote:           remote,
		local:            local,
		useLocalFallback: useLocalFallback,
	}
}

// EmbedBatch embeds all texts with the remote variant when available,
// switching to the local variant for the remainder of the call once
// remote retries are exhausted (or on an authentication failure) and
// fallback is enabled. With fallback disabled the failure propagates.
func (p *Provider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, string, error) {
	if len(texts) == 0 {
		return nil, "", nil
	}

	if p.remote != nil {
		vectors, err := p.remote.Embed(ctx, texts)
		if err == nil {
			return vectors, p.remote.Name(), nil
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, "", err
		}
		if !p.useLocalFallback || p.local == nil {
			return nil, "", err
		}
		log.Printf("WARN embedding: remote embedder failed, falling back to local model: %v", err)
	}

	if p.local == nil {
		return nil, "", domain.NewDomainError(
			domain.ErrCodeEmbeddingUnavailable,
			"no embedding provider configured",
		)
	}

	vectors, err := p.local.Embed(ctx, texts)
	if err != nil {
		return nil, "", domain.NewDomainErrorWithCause(
			domain.ErrCodeEmbeddingUnavailable,
			"local embedding failed",
			err,
		)
	}
	return vectors, p.local.Name(), nil
}
