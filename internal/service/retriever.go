package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/meridianhq/docsearch/internal/domain"
)

const (
	DefaultResultLimit     = 5
	DefaultMaxContextChars = 4000
)

// RetrieverService embeds a query, ranks the nearest chunks and
// assembles a context bounded by a character budget.
type RetrieverService struct {
	embedder      Embedder
	store         VectorStore
	defaultLimit  int
	defaultBudget int
}

// NewRetrieverService creates a new RetrieverService instance
func NewRetrieverService(embedder Embedder, store VectorStore, defaultLimit, defaultBudget int) *RetrieverService {
	if defaultLimit <= 0 {
		defaultLimit = DefaultResultLimit
	}
	if defaultBudget <= 0 {
		defaultBudget = DefaultMaxContextChars
	}
	return &RetrieverService{
		embedder:      embedder,
		store:         store,
		defaultLimit:  defaultLimit,
		defaultBudget: defaultBudget,
	}
}

// Search embeds queryText and returns the k nearest chunks without
// assembling a context. A missing collection yields zero hits.
func (s *RetrieverService) Search(ctx context.Context, collection, queryText string, k int) ([]domain.SearchHit, error) {
	if k <= 0 {
		k = s.defaultLimit
	}

	vectors, _, err := s.embedder.EmbedBatch(ctx, []string{queryText})
	if err != nil {
		return nil, err
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("expected one query embedding, got %d", len(vectors))
	}

	hits, err := s.store.Query(ctx, collection, vectors[0], k)
	if err != nil {
		if errors.Is(err, domain.ErrCollectionNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return hits, nil
}

// Retrieve embeds queryText, fetches the top k candidates and greedily
// appends them in descending-score order, skipping any candidate whose
// addition would exceed maxContextChars. An empty or missing collection
// yields an empty context with reason no_results, not an error.
func (s *RetrieverService) Retrieve(ctx context.Context, collection, queryText string, k, maxContextChars int) (*domain.AssembledContext, error) {
	if k <= 0 {
		k = s.defaultLimit
	}
	if maxContextChars <= 0 {
		maxContextChars = s.defaultBudget
	}

	vectors, _, err := s.embedder.EmbedBatch(ctx, []string{queryText})
	if err != nil {
		return nil, err
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("expected one query embedding, got %d", len(vectors))
	}

	hits, err := s.store.Query(ctx, collection, vectors[0], k)
	if err != nil {
		if errors.Is(err, domain.ErrCollectionNotFound) {
			return &domain.AssembledContext{Reason: domain.ReasonNoResults}, nil
		}
		return nil, err
	}
	if len(hits) == 0 {
		return &domain.AssembledContext{Reason: domain.ReasonNoResults}, nil
	}

	var sb strings.Builder
	result := &domain.AssembledContext{}
	used := 0
	for _, hit := range hits {
		block := fmt.Sprintf("Source: %s (chunk %d, relevance %.2f)\n%s",
			hit.SourceID, hit.ChunkIndex, hit.Score, hit.Content)

		sep := ""
		if used > 0 {
			sep = "\n\n"
		}
		// The budget counts characters the same way chunk offsets do,
		// as runes.
		cost := len(sep) + utf8.RuneCountInString(block)
		if used+cost > maxContextChars {
			continue
		}

		sb.WriteString(sep)
		sb.WriteString(block)
		used += cost
		result.Attributions = append(result.Attributions, domain.Attribution{
			SourceID:   hit.SourceID,
			ChunkIndex: hit.ChunkIndex,
			Score:      hit.Score,
		})
	}

	result.Text = sb.String()
	return result, nil
}
