package domain

import "time"

// ReasonNoResults marks an AssembledContext built from an empty or
// missing collection.
const ReasonNoResults = "no_results"

// Attribution ties a piece of assembled context back to its source.
type Attribution struct {
	SourceID   string  `json:"source_id"`
	ChunkIndex int     `json:"chunk_index"`
	Score      float64 `json:"score"`
}

// AssembledContext is the budget-bounded concatenation of retrieved
// chunk texts handed to the generation call. It is ephemeral and never
// persisted.
type AssembledContext struct {
	Text         string        `json:"text"`
	Attributions []Attribution `json:"attributions"`
	Reason       string        `json:"reason,omitempty"`
}

// Empty reports whether the context carries no usable text.
func (c *AssembledContext) Empty() bool {
	return c == nil || c.Text == ""
}

// Answer is the result of the query pipeline.
type Answer struct {
	Text         string        `json:"text"`
	Attributions []Attribution `json:"attributions,omitempty"`
	Generated    bool          `json:"generated"`
	Reason       string        `json:"reason,omitempty"`
}

// ChunkRange identifies a half-open range [Start, End) of chunk indexes
// that succeeded or failed during indexing.
type ChunkRange struct {
	Start int    `json:"start"`
	End   int    `json:"end"`
	Error string `json:"error,omitempty"`
}

// IndexReport summarises one indexing run. Failed ranges can be
// re-indexed idempotently because chunk ids are deterministic.
type IndexReport struct {
	ID          string        `json:"id"`
	SourceID    string        `json:"source_id"`
	Collection  string        `json:"collection"`
	Embedder    string        `json:"embedder,omitempty"`
	TotalChunks int           `json:"total_chunks"`
	Indexed     int           `json:"indexed"`
	Succeeded   []ChunkRange  `json:"succeeded,omitempty"`
	Failed      []ChunkRange  `json:"failed,omitempty"`
	Duration    time.Duration `json:"duration_ns"`
}

// Complete reports whether every chunk was embedded and upserted.
func (r *IndexReport) Complete() bool {
	return len(r.Failed) == 0 && r.Indexed == r.TotalChunks
}
