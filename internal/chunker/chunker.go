// Package chunker splits extracted document text into overlapping
// fixed-size chunks with stable rune offsets.
package chunker

import (
	"fmt"

	"github.com/meridianhq/docsearch/internal/domain"
)

// Chunk slides a window of width chunkSize over text with stride
// chunkSize-overlap. The final window is truncated to the remaining
// text, never padded. Offsets are rune positions in the source text.
//
// Identical inputs always produce identical chunk sequences; chunk ids
// derived from them are stable across re-indexing runs.
func Chunk(sourceID, text string, chunkSize, overlap int) ([]domain.Chunk, error) {
	if err := Validate(chunkSize, overlap); err != nil {
		return nil, err
	}

	runes := []rune(text)
	if len(runes) == 0 {
		return nil, nil
	}

	stride := chunkSize - overlap
	chunks := make([]domain.Chunk, 0, (len(runes)+stride-1)/stride)
	for start := 0; start < len(runes); start += stride {
		end := start + chunkSize
		if end > len(runes) {
			end = len(runes)
		}

		chunks = append(chunks, domain.Chunk{
			SourceID:    sourceID,
			Index:       len(chunks),
			StartOffset: start,
			EndOffset:   end,
			Text:        string(runes[start:end]),
		})

		if end == len(runes) {
			break
		}
	}

	return chunks, nil
}

// Validate checks the chunking parameters: chunkSize must be positive
// and 0 <= overlap < chunkSize.
func Validate(chunkSize, overlap int) error {
	if chunkSize <= 0 {
		return domain.NewDomainErrorWithCause(
			domain.ErrCodeInvalidConfiguration,
			"invalid configuration",
			fmt.Errorf("chunk_size must be positive, got %d", chunkSize),
		)
	}
	if overlap < 0 || overlap >= chunkSize {
		return domain.NewDomainErrorWithCause(
			domain.ErrCodeInvalidConfiguration,
			"invalid configuration",
			fmt.Errorf("chunk_overlap must satisfy 0 <= overlap < chunk_size, got overlap=%d chunk_size=%d", overlap, chunkSize),
		)
	}
	return nil
}
