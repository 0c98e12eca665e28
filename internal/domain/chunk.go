package domain

import "fmt"

// Chunk is a contiguous slice of a document's text produced during
// indexing. Offsets are rune positions in the source text; adjacent
// chunks overlap by the configured overlap width. Chunks are created
// once and never mutated.
type Chunk struct {
	SourceID    string
	Index       int
	StartOffset int
	EndOffset   int
	Text        string
}

// ID returns the deterministic chunk identifier. Re-chunking the same
// document yields the same ids, which lets upserts deduplicate.
func (c Chunk) ID() string {
	return fmt.Sprintf("%s:%d", c.SourceID, c.Index)
}

// VectorRecord is a (chunk id, embedding, metadata) triple as stored in
// a vector store collection.
type VectorRecord struct {
	ChunkID     string
	Vector      []float32
	SourceID    string
	ChunkIndex  int
	StartOffset int
	EndOffset   int
	Content     string
}

// SearchHit is a single nearest-neighbour match returned by a vector
// store query, ordered by descending cosine similarity.
type SearchHit struct {
	ChunkID    string  `json:"chunk_id"`
	Score      float64 `json:"score"`
	SourceID   string  `json:"source_id"`
	ChunkIndex int     `json:"chunk_index"`
	Content    string  `json:"content"`
}

// CollectionStats describes a single vector store collection.
type CollectionStats struct {
	Name      string `json:"name"`
	Records   int    `json:"records"`
	Dimension int    `json:"dimension"`
	Embedder  string `json:"embedder,omitempty"`
}
