package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/meridianhq/docsearch/internal/api"
	"github.com/meridianhq/docsearch/internal/domain"
)

type SearchService interface {
	Search(ctx context.Context, collection, queryText string, k int) ([]domain.SearchHit, error)
	Retrieve(ctx context.Context, collection, queryText string, k, maxContextChars int) (*domain.AssembledContext, error)
}

type SearchHandler struct {
	svc SearchService
}

func NewSearchHandler(svc SearchService) *SearchHandler {
	return &SearchHandler{svc: svc}
}

type SearchRequest struct {
	Collection string `json:"collection"`
	Query      string `json:"query"`
	Limit      int    `json:"limit,omitempty"`
}

type SearchResultResponse struct {
	ChunkID    string  `json:"chunk_id"`
	SourceID   string  `json:"source_id"`
	ChunkIndex int     `json:"chunk_index"`
	Score      float64 `json:"score"`
	Content    string  `json:"content"`
}

type SearchResponse struct {
	Results []*SearchResultResponse `json:"results"`
}

// Search returns the ranked nearest chunks for a query.
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Collection = strings.TrimSpace(req.Collection)
	req.Query = strings.TrimSpace(req.Query)
	if req.Collection == "" || req.Query == "" {
		api.Error(w, http.StatusBadRequest, "collection and query are required")
		return
	}

	hits, err := h.svc.Search(r.Context(), req.Collection, req.Query, req.Limit)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	results := make([]*SearchResultResponse, 0, len(hits))
	for _, hit := range hits {
		results = append(results, &SearchResultResponse{
			ChunkID:    hit.ChunkID,
			SourceID:   hit.SourceID,
			ChunkIndex: hit.ChunkIndex,
			Score:      hit.Score,
			Content:    hit.Content,
		})
	}

	api.Success(w, http.StatusOK, SearchResponse{Results: results})
}
