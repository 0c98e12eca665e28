package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/meridianhq/docsearch/internal/api"
	"github.com/meridianhq/docsearch/internal/domain"
)

type AnswerService interface {
	AnswerQuestion(ctx context.Context, question, collection string, k, maxContextChars int) (*domain.Answer, error)
}

type AskHandler struct {
	svc AnswerService
}

func NewAskHandler(svc AnswerService) *AskHandler {
	return &AskHandler{svc: svc}
}

type AskRequest struct {
	Collection      string `json:"collection"`
	Question        string `json:"question"`
	Limit           int    `json:"limit,omitempty"`
	MaxContextChars int    `json:"max_context_chars,omitempty"`
}

type AttributionResponse struct {
	SourceID   string  `json:"source_id"`
	ChunkIndex int     `json:"chunk_index"`
	Score      float64 `json:"score"`
}

type AskResponse struct {
	Answer       string                 `json:"answer"`
	Generated    bool                   `json:"generated"`
	Reason       string                 `json:"reason,omitempty"`
	Attributions []*AttributionResponse `json:"attributions,omitempty"`
}

// Ask answers a question with retrieval-augmented generation.
func (h *AskHandler) Ask(w http.ResponseWriter, r *http.Request) {
	var req AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Collection = strings.TrimSpace(req.Collection)
	req.Question = strings.TrimSpace(req.Question)
	if req.Collection == "" || req.Question == "" {
		api.Error(w, http.StatusBadRequest, "collection and question are required")
		return
	}

	answer, err := h.svc.AnswerQuestion(r.Context(), req.Question, req.Collection, req.Limit, req.MaxContextChars)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	resp := AskResponse{
		Answer:    answer.Text,
		Generated: answer.Generated,
		Reason:    answer.Reason,
	}
	for _, attr := range answer.Attributions {
		resp.Attributions = append(resp.Attributions, &AttributionResponse{
			SourceID:   attr.SourceID,
			ChunkIndex: attr.ChunkIndex,
			Score:      attr.Score,
		})
	}

	api.Success(w, http.StatusOK, resp)
}
