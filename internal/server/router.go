package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/meridianhq/docsearch/internal/api"
	"github.com/meridianhq/docsearch/internal/api/handlers"
	"github.com/meridianhq/docsearch/internal/api/middleware"
)

type RouterConfig struct {
	SearchHandler      *handlers.SearchHandler
	AskHandler         *handlers.AskHandler
	IndexHandler       *handlers.IndexHandler
	CollectionsHandler *handlers.CollectionsHandler
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	const maxBodyBytes int64 = 5 * 1024 * 1024

	r.Use(middleware.RequestID)
	r.Use(middleware.SentryMiddleware)
	r.Use(middleware.AccessLog)
	r.Use(middleware.MaxBodyBytes(maxBodyBytes))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		api.Success(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Post("/index", cfg.IndexHandler.Index)
	r.Post("/search", cfg.SearchHandler.Search)
	r.Post("/ask", cfg.AskHandler.Ask)

	r.Route("/collections", func(r chi.Router) {
		r.Get("/", cfg.CollectionsHandler.List)
		r.Get("/{name}", cfg.CollectionsHandler.Stats)
		r.Delete("/{name}", cfg.CollectionsHandler.Drop)
	})

	return r
}
