// Package service orchestrates the indexing and query pipelines over
// the chunker, the embedding provider and the vector store.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/meridianhq/docsearch/internal/chunker"
	"github.com/meridianhq/docsearch/internal/domain"
)

const (
	DefaultBatchSize   = 16
	DefaultConcurrency = 4
)

// Embedder defines the embedding capability the pipelines depend on.
// One call returns one vector per text, in order, plus the variant that
// produced them.
type Embedder interface {
	EmbedBatch(ctx context.Context, texts []string) (vectors [][]float32, variant string, err error)
}

// VectorStore defines the persistence interface the pipelines depend on.
type VectorStore interface {
	Upsert(ctx context.Context, collection, variant string, records []domain.VectorRecord) error
	Query(ctx context.Context, collection string, vector []float32, k int) ([]domain.SearchHit, error)
}

// IndexingService runs the chunk → embed → upsert pipeline for a
// document.
type IndexingService struct {
	embedder    Embedder
	store       VectorStore
	batchSize   int
	concurrency int
}

// NewIndexingService creates a new IndexingService instance
func NewIndexingService(embedder Embedder, store VectorStore, batchSize, concurrency int) *IndexingService {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	return &IndexingService{
		embedder:    embedder,
		store:       store,
		batchSize:   batchSize,
		concurrency: concurrency,
	}
}

type embedBatch struct {
	start   int // first chunk index, inclusive
	end     int // last chunk index, exclusive
	vectors [][]float32
	variant string
	err     error
}

// IndexDocument chunks the document, embeds the chunks in concurrent
// batches and upserts them in original chunk order. Batches that fail
// after failover exhaustion are reported as failed ranges; batches
// already upserted stay committed. Re-running with identical inputs
// produces identical chunk ids, so upsert deduplicates.
func (s *IndexingService) IndexDocument(ctx context.Context, doc *domain.Document, collection string, chunkSize, overlap int) (*domain.IndexReport, error) {
	if err := domain.ValidateDocument(doc); err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeInvalidConfiguration, "invalid configuration", err)
	}

	start := time.Now()
	chunks, err := chunker.Chunk(doc.SourceID, doc.Text, chunkSize, overlap)
	if err != nil {
		return nil, err
	}

	report := &domain.IndexReport{
		ID:          uuid.NewString(),
		SourceID:    doc.SourceID,
		Collection:  collection,
		TotalChunks: len(chunks),
	}
	if len(chunks) == 0 {
		report.Duration = time.Since(start)
		return report, nil
	}

	batches := splitBatches(len(chunks), s.batchSize)

	// Embed batches concurrently. Each batch carries its chunk range,
	// so results land in a fixed slot and original chunk order is
	// restored regardless of completion order. A failed batch must not
	// cancel its siblings, so errors are recorded per batch instead of
	// propagated through the group.
	g := new(errgroup.Group)
	g.SetLimit(s.concurrency)
	for i := range batches {
		b := &batches[i]
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				b.err = err
				return nil
			}
			texts := make([]string, 0, b.end-b.start)
			for _, c := range chunks[b.start:b.end] {
				texts = append(texts, c.Text)
			}
			b.vectors, b.variant, b.err = s.embedder.EmbedBatch(ctx, texts)
			return nil
		})
	}
	_ = g.Wait()

	// Upsert in chunk order. The embedder variant is pinned to the
	// first successful batch; a batch from a different variant would
	// mix embedding spaces and is failed instead of stored.
	for i := range batches {
		b := &batches[i]
		if b.err != nil {
			report.Failed = append(report.Failed, domain.ChunkRange{Start: b.start, End: b.end, Error: b.err.Error()})
			continue
		}
		if report.Embedder == "" {
			report.Embedder = b.variant
		} else if b.variant != report.Embedder {
			err := domain.NewDomainErrorWithCause(
				domain.ErrCodeDimensionMismatch,
				"embedding dimension mismatch",
				fmt.Errorf("batch [%d,%d) embedded with %s, indexing run pinned to %s", b.start, b.end, b.variant, report.Embedder),
			)
			report.Failed = append(report.Failed, domain.ChunkRange{Start: b.start, End: b.end, Error: err.Error()})
			continue
		}

		records := make([]domain.VectorRecord, 0, b.end-b.start)
		for j, c := range chunks[b.start:b.end] {
			records = append(records, domain.VectorRecord{
				ChunkID:     c.ID(),
				Vector:      b.vectors[j],
				SourceID:    c.SourceID,
				ChunkIndex:  c.Index,
				StartOffset: c.StartOffset,
				EndOffset:   c.EndOffset,
				Content:     c.Text,
			})
		}

		if err := s.store.Upsert(ctx, collection, b.variant, records); err != nil {
			report.Failed = append(report.Failed, domain.ChunkRange{Start: b.start, End: b.end, Error: err.Error()})
			continue
		}
		report.Indexed += len(records)
		report.Succeeded = append(report.Succeeded, domain.ChunkRange{Start: b.start, End: b.end})
	}

	report.Duration = time.Since(start)
	return report, nil
}

func splitBatches(total, size int) []embedBatch {
	batches := make([]embedBatch, 0, (total+size-1)/size)
	for start := 0; start < total; start += size {
		end := start + size
		if end > total {
			end = total
		}
		batches = append(batches, embedBatch{start: start, end: end})
	}
	return batches
}
