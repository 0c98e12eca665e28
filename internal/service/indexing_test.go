package service

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridianhq/docsearch/internal/domain"
)

// fakeEmbedder embeds every text as a tiny deterministic vector. Texts
// containing failOn trigger an error, and the variant can be switched
// mid-run to simulate failover.
type fakeEmbedder struct {
	mu      sync.Mutex
	variant string
	failOn  string
	calls   int
}

func (f *fakeEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++

	for _, text := range texts {
		if f.failOn != "" && strings.Contains(text, f.failOn) {
			return nil, "", domain.NewDomainError(
				domain.ErrCodeEmbeddingUnavailable, "embedding service unavailable")
		}
	}

	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vectors[i] = []float32{float32(len(text)), 1}
	}
	return vectors, f.variant, nil
}

type fakeStore struct {
	mu      sync.Mutex
	upserts []upsertCall
	hits    []domain.SearchHit
}

type upsertCall struct {
	collection string
	variant    string
	records    []domain.VectorRecord
}

func (f *fakeStore) Upsert(ctx context.Context, collection, variant string, records []domain.VectorRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.upserts = append(f.upserts, upsertCall{collection: collection, variant: variant, records: records})
	return nil
}

func (f *fakeStore) Query(ctx context.Context, collection string, vector []float32, k int) ([]domain.SearchHit, error) {
	if k > len(f.hits) {
		k = len(f.hits)
	}
	return f.hits[:k], nil
}

func testDocument(text string) *domain.Document {
	return domain.NewDocument("notes.md", "md", text, time.Now().UTC())
}

func TestIndexDocument_FullPipeline(t *testing.T) {
	embedder := &fakeEmbedder{variant: "local"}
	store := &fakeStore{}
	svc := NewIndexingService(embedder, store, 2, 2)

	text := strings.Repeat("abcdefghij", 5) // 50 runes, chunkSize 20 overlap 5 -> 4 chunks
	report, err := svc.IndexDocument(context.Background(), testDocument(text), "docs", 20, 5)
	require.NoError(t, err)

	assert.Equal(t, "notes.md", report.SourceID)
	assert.Equal(t, "docs", report.Collection)
	assert.Equal(t, "local", report.Embedder)
	assert.Equal(t, 4, report.TotalChunks)
	assert.Equal(t, 4, report.Indexed)
	assert.True(t, report.Complete())
	assert.Empty(t, report.Failed)
	assert.NotEmpty(t, report.ID)

	// Records arrive in chunk order with deterministic ids.
	var ids []string
	for _, call := range store.upserts {
		assert.Equal(t, "docs", call.collection)
		assert.Equal(t, "local", call.variant)
		for _, r := range call.records {
			ids = append(ids, r.ChunkID)
		}
	}
	assert.Equal(t, []string{"notes.md:0", "notes.md:1", "notes.md:2", "notes.md:3"}, ids)
}

func TestIndexDocument_PartialBatchFailure(t *testing.T) {
	embedder := &fakeEmbedder{variant: "local", failOn: "POIS"}
	store := &fakeStore{}
	svc := NewIndexingService(embedder, store, 1, 1)

	// Three chunks of 4 runes each; the middle one fails.
	text := "aaaaPOISbbbb"
	report, err := svc.IndexDocument(context.Background(), testDocument(text), "docs", 4, 0)
	require.NoError(t, err)
	require.Equal(t, 3, report.TotalChunks)

	assert.Equal(t, 2, report.Indexed)
	assert.False(t, report.Complete())
	require.Len(t, report.Failed, 1)
	assert.Equal(t, 1, report.Failed[0].Start)
	assert.Equal(t, 2, report.Failed[0].End)
	assert.Contains(t, report.Failed[0].Error, "embedding service unavailable")

	// Successful batches were still stored.
	var ids []string
	for _, call := range store.upserts {
		for _, r := range call.records {
			ids = append(ids, r.ChunkID)
		}
	}
	assert.Equal(t, []string{"notes.md:0", "notes.md:2"}, ids)
}

func TestIndexDocument_EmptyDocument(t *testing.T) {
	svc := NewIndexingService(&fakeEmbedder{variant: "local"}, &fakeStore{}, 0, 0)

	report, err := svc.IndexDocument(context.Background(), testDocument(""), "docs", 512, 50)
	require.NoError(t, err)
	assert.Equal(t, 0, report.TotalChunks)
	assert.Equal(t, 0, report.Indexed)
	assert.True(t, report.Complete())
}

func TestIndexDocument_InvalidChunking(t *testing.T) {
	svc := NewIndexingService(&fakeEmbedder{variant: "local"}, &fakeStore{}, 0, 0)

	_, err := svc.IndexDocument(context.Background(), testDocument("text"), "docs", 10, 10)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidConfiguration)
}

func TestIndexDocument_NilDocument(t *testing.T) {
	svc := NewIndexingService(&fakeEmbedder{variant: "local"}, &fakeStore{}, 0, 0)

	_, err := svc.IndexDocument(context.Background(), nil, "docs", 512, 50)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidConfiguration)
}

func TestSplitBatches(t *testing.T) {
	batches := splitBatches(10, 4)
	require.Len(t, batches, 3)
	assert.Equal(t, 0, batches[0].start)
	assert.Equal(t, 4, batches[0].end)
	assert.Equal(t, 8, batches[2].start)
	assert.Equal(t, 10, batches[2].end)
}
