package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/meridianhq/docsearch/internal/api"
	"github.com/meridianhq/docsearch/internal/domain"
)

type IndexingService interface {
	IndexDocument(ctx context.Context, doc *domain.Document, collection string, chunkSize, overlap int) (*domain.IndexReport, error)
}

type IndexHandler struct {
	svc          IndexingService
	chunkSize    int
	chunkOverlap int
}

func NewIndexHandler(svc IndexingService, chunkSize, chunkOverlap int) *IndexHandler {
	return &IndexHandler{svc: svc, chunkSize: chunkSize, chunkOverlap: chunkOverlap}
}

type IndexRequest struct {
	Collection   string `json:"collection"`
	SourceID     string `json:"source_id"`
	Text         string `json:"text"`
	Format       string `json:"format,omitempty"`
	ChunkSize    int    `json:"chunk_size,omitempty"`
	// Pointer so an explicit zero overlap is distinguishable from the
	// field being absent.
	ChunkOverlap *int `json:"chunk_overlap,omitempty"`
}

type ChunkRangeResponse struct {
	Start int    `json:"start"`
	End   int    `json:"end"`
	Error string `json:"error,omitempty"`
}

type IndexResponse struct {
	ID          string                `json:"id"`
	SourceID    string                `json:"source_id"`
	Collection  string                `json:"collection"`
	Embedder    string                `json:"embedder,omitempty"`
	TotalChunks int                   `json:"total_chunks"`
	Indexed     int                   `json:"indexed"`
	Complete    bool                  `json:"complete"`
	Succeeded   []*ChunkRangeResponse `json:"succeeded,omitempty"`
	Failed      []*ChunkRangeResponse `json:"failed,omitempty"`
	DurationMS  int64                 `json:"duration_ms"`
}

// Index chunks, embeds and stores a document in a collection.
func (h *IndexHandler) Index(w http.ResponseWriter, r *http.Request) {
	var req IndexRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Collection = strings.TrimSpace(req.Collection)
	req.SourceID = strings.TrimSpace(req.SourceID)
	if req.Collection == "" || req.SourceID == "" {
		api.Error(w, http.StatusBadRequest, "collection and source_id are required")
		return
	}
	if req.Text == "" {
		api.Error(w, http.StatusBadRequest, "text is required")
		return
	}

	chunkSize := req.ChunkSize
	if chunkSize <= 0 {
		chunkSize = h.chunkSize
	}
	overlap := h.chunkOverlap
	if req.ChunkOverlap != nil {
		overlap = *req.ChunkOverlap
	}

	doc := domain.NewDocument(req.SourceID, req.Format, req.Text, time.Now().UTC())
	report, err := h.svc.IndexDocument(r.Context(), doc, req.Collection, chunkSize, overlap)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	resp := IndexResponse{
		ID:          report.ID,
		SourceID:    report.SourceID,
		Collection:  report.Collection,
		Embedder:    report.Embedder,
		TotalChunks: report.TotalChunks,
		Indexed:     report.Indexed,
		Complete:    report.Complete(),
		DurationMS:  report.Duration.Milliseconds(),
	}
	for _, rng := range report.Succeeded {
		resp.Succeeded = append(resp.Succeeded, &ChunkRangeResponse{Start: rng.Start, End: rng.End})
	}
	for _, rng := range report.Failed {
		resp.Failed = append(resp.Failed, &ChunkRangeResponse{Start: rng.Start, End: rng.End, Error: rng.Error})
	}

	status := http.StatusOK
	if len(resp.Failed) > 0 {
		status = http.StatusMultiStatus
	}
	api.Success(w, status, resp)
}
