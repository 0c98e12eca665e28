package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/meridianhq/docsearch/internal/api/handlers"
	"github.com/meridianhq/docsearch/internal/domain"
)

type MockSearchService struct {
	mock.Mock
}

func (m *MockSearchService) Search(ctx context.Context, collection, queryText string, k int) ([]domain.SearchHit, error) {
	args := m.Called(ctx, collection, queryText, k)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.SearchHit), args.Error(1)
}

func (m *MockSearchService) Retrieve(ctx context.Context, collection, queryText string, k, maxContextChars int) (*domain.AssembledContext, error) {
	args := m.Called(ctx, collection, queryText, k, maxContextChars)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AssembledContext), args.Error(1)
}

type MockAnswerService struct {
	mock.Mock
}

func (m *MockAnswerService) AnswerQuestion(ctx context.Context, question, collection string, k, maxContextChars int) (*domain.Answer, error) {
	args := m.Called(ctx, question, collection, k, maxContextChars)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Answer), args.Error(1)
}

type MockIndexingService struct {
	mock.Mock
}

func (m *MockIndexingService) IndexDocument(ctx context.Context, doc *domain.Document, collection string, chunkSize, overlap int) (*domain.IndexReport, error) {
	args := m.Called(ctx, doc, collection, chunkSize, overlap)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.IndexReport), args.Error(1)
}

type MockCollectionStore struct {
	mock.Mock
}

func (m *MockCollectionStore) ListCollections() ([]string, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockCollectionStore) Stats(ctx context.Context, name string) (*domain.CollectionStats, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CollectionStats), args.Error(1)
}

func (m *MockCollectionStore) DropCollection(name string) error {
	args := m.Called(name)
	return args.Error(0)
}

func setupRouter() (http.Handler, *MockSearchService, *MockAnswerService, *MockIndexingService, *MockCollectionStore) {
	searchSvc := new(MockSearchService)
	answerSvc := new(MockAnswerService)
	indexSvc := new(MockIndexingService)
	store := new(MockCollectionStore)

	cfg := RouterConfig{
		SearchHandler:      handlers.NewSearchHandler(searchSvc),
		AskHandler:         handlers.NewAskHandler(answerSvc),
		IndexHandler:       handlers.NewIndexHandler(indexSvc, 512, 50),
		CollectionsHandler: handlers.NewCollectionsHandler(store),
	}

	router := NewRouter(cfg)
	return router, searchSvc, answerSvc, indexSvc, store
}

func TestRouter_HealthEndpoint(t *testing.T) {
	router, _, _, _, _ := setupRouter()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "ok", data["status"])
}

func TestRouter_Search(t *testing.T) {
	router, searchSvc, _, _, _ := setupRouter()

	hits := []domain.SearchHit{
		{ChunkID: "notes.md:0", SourceID: "notes.md", ChunkIndex: 0, Score: 0.91, Content: "alpha"},
		{ChunkID: "notes.md:1", SourceID: "notes.md", ChunkIndex: 1, Score: 0.72, Content: "beta"},
	}
	searchSvc.On("Search", mock.Anything, "docs", "alpha", 2).Return(hits, nil)

	body := `{"collection":"docs","query":"alpha","limit":2}`
	req := httptest.NewRequest(http.MethodPost, "/search", strings.NewReader(body))
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data struct {
			Results []struct {
				ChunkID string  `json:"chunk_id"`
				Score   float64 `json:"score"`
			} `json:"results"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data.Results, 2)
	assert.Equal(t, "notes.md:0", resp.Data.Results[0].ChunkID)
	assert.InDelta(t, 0.91, resp.Data.Results[0].Score, 1e-9)

	searchSvc.AssertExpectations(t)
}

func TestRouter_Search_MissingFields(t *testing.T) {
	router, _, _, _, _ := setupRouter()

	req := httptest.NewRequest(http.MethodPost, "/search", strings.NewReader(`{"collection":"docs"}`))
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRouter_Ask(t *testing.T) {
	router, _, answerSvc, _, _ := setupRouter()

	answer := &domain.Answer{
		Text:      "Alpha is the first letter.",
		Generated: true,
		Attributions: []domain.Attribution{
			{SourceID: "notes.md", ChunkIndex: 0, Score: 0.91},
		},
	}
	answerSvc.On("AnswerQuestion", mock.Anything, "what is alpha?", "docs", 0, 0).Return(answer, nil)

	body := `{"collection":"docs","question":"what is alpha?"}`
	req := httptest.NewRequest(http.MethodPost, "/ask", strings.NewReader(body))
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data struct {
			Answer    string `json:"answer"`
			Generated bool   `json:"generated"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Alpha is the first letter.", resp.Data.Answer)
	assert.True(t, resp.Data.Generated)

	answerSvc.AssertExpectations(t)
}

func TestRouter_Index(t *testing.T) {
	router, _, _, indexSvc, _ := setupRouter()

	report := &domain.IndexReport{
		ID:          "run-1",
		SourceID:    "notes.md",
		Collection:  "docs",
		Embedder:    "remote:gemini-embedding-exp-03-07",
		TotalChunks: 3,
		Indexed:     3,
		Succeeded:   []domain.ChunkRange{{Start: 0, End: 3}},
	}
	indexSvc.On("IndexDocument", mock.Anything, mock.Anything, "docs", 512, 50).Return(report, nil)

	body := `{"collection":"docs","source_id":"notes.md","text":"alpha beta gamma"}`
	req := httptest.NewRequest(http.MethodPost, "/index", strings.NewReader(body))
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data struct {
			Indexed  int  `json:"indexed"`
			Complete bool `json:"complete"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 3, resp.Data.Indexed)
	assert.True(t, resp.Data.Complete)

	indexSvc.AssertExpectations(t)
}

func TestRouter_Index_ExplicitZeroOverlap(t *testing.T) {
	router, _, _, indexSvc, _ := setupRouter()

	report := &domain.IndexReport{
		ID:          "run-2",
		SourceID:    "notes.md",
		Collection:  "docs",
		TotalChunks: 1,
		Indexed:     1,
		Succeeded:   []domain.ChunkRange{{Start: 0, End: 1}},
	}
	// An explicit chunk_overlap of 0 reaches the service as 0 instead of
	// the configured default.
	indexSvc.On("IndexDocument", mock.Anything, mock.Anything, "docs", 512, 0).Return(report, nil)

	body := `{"collection":"docs","source_id":"notes.md","text":"alpha","chunk_overlap":0}`
	req := httptest.NewRequest(http.MethodPost, "/index", strings.NewReader(body))
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	indexSvc.AssertExpectations(t)
}

func TestRouter_Collections(t *testing.T) {
	router, _, _, _, store := setupRouter()

	store.On("ListCollections").Return([]string{"docs", "wiki"}, nil)
	store.On("Stats", mock.Anything, "docs").Return(&domain.CollectionStats{
		Name: "docs", Records: 42, Dimension: 384, Embedder: "local:all-MiniLM-L6-v2",
	}, nil)
	store.On("DropCollection", "wiki").Return(nil)

	req := httptest.NewRequest(http.MethodGet, "/collections", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/collections/docs", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data struct {
			Records   int `json:"records"`
			Dimension int `json:"dimension"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 42, resp.Data.Records)
	assert.Equal(t, 384, resp.Data.Dimension)

	req = httptest.NewRequest(http.MethodDelete, "/collections/wiki", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	store.AssertExpectations(t)
}

func TestRouter_Collections_StatsNotFound(t *testing.T) {
	router, _, _, _, store := setupRouter()

	store.On("Stats", mock.Anything, "missing").Return(nil, domain.NewDomainError(
		domain.ErrCodeCollectionNotFound, "collection not found"))

	req := httptest.NewRequest(http.MethodGet, "/collections/missing", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
