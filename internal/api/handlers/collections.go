package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/meridianhq/docsearch/internal/api"
	"github.com/meridianhq/docsearch/internal/domain"
)

type CollectionStore interface {
	ListCollections() ([]string, error)
	Stats(ctx context.Context, name string) (*domain.CollectionStats, error)
	DropCollection(name string) error
}

type CollectionsHandler struct {
	store CollectionStore
}

func NewCollectionsHandler(store CollectionStore) *CollectionsHandler {
	return &CollectionsHandler{store: store}
}

type CollectionListResponse struct {
	Collections []string `json:"collections"`
}

type CollectionStatsResponse struct {
	Name      string `json:"name"`
	Records   int    `json:"records"`
	Dimension int    `json:"dimension"`
	Embedder  string `json:"embedder,omitempty"`
}

// List returns the names of all collections.
func (h *CollectionsHandler) List(w http.ResponseWriter, r *http.Request) {
	names, err := h.store.ListCollections()
	if err != nil {
		api.HandleError(w, err)
		return
	}
	if names == nil {
		names = []string{}
	}
	api.Success(w, http.StatusOK, CollectionListResponse{Collections: names})
}

// Stats returns record count and embedding metadata for one collection.
func (h *CollectionsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	stats, err := h.store.Stats(r.Context(), name)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, CollectionStatsResponse{
		Name:      stats.Name,
		Records:   stats.Records,
		Dimension: stats.Dimension,
		Embedder:  stats.Embedder,
	})
}

// Drop removes a collection and its stored vectors.
func (h *CollectionsHandler) Drop(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	if err := h.store.DropCollection(name); err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, map[string]string{"dropped": name})
}
