package cli

import (
	"github.com/meridianhq/docsearch/internal/config"
	"github.com/meridianhq/docsearch/internal/embedding"
	"github.com/meridianhq/docsearch/internal/generation"
	"github.com/meridianhq/docsearch/internal/service"
	"github.com/meridianhq/docsearch/internal/vectorstore"
)

// Runtime wires the vector store, the embedding provider and the
// pipeline services from configuration. Both binaries and the local
// commands share this wiring.
type Runtime struct {
	Cfg       *config.Config
	Store     *vectorstore.Store
	Indexing  *service.IndexingService
	Retriever *service.RetrieverService
	Query     *service.QueryService
}

// NewRuntime builds a Runtime from configuration. The caller owns the
// store and must Close the runtime when done.
func NewRuntime(cfg *config.Config) (*Runtime, error) {
	store, err := vectorstore.Open(cfg.VectorDBPath)
	if err != nil {
		return nil, err
	}

	remote := embedding.NewRemoteClient(embedding.RemoteConfig{
		APIKey:  cfg.GeminiAPIKey,
		APIBase: cfg.EmbeddingAPIBase,
		Model:   cfg.EmbeddingModel,
	})
	local := embedding.NewLocalEmbedder(cfg.LocalEmbeddingModel, embedding.DefaultLocalDimension)
	provider := embedding.NewProvider(remote, local, cfg.UseLocalFallback)

	completer := generation.NewClient(generation.Config{
		APIKey:  cfg.MistralAPIKey,
		APIBase: cfg.GenerationAPIBase,
		Model:   cfg.GenerationModel,
	})

	indexing := service.NewIndexingService(provider, store, cfg.EmbedBatchSize, cfg.EmbedConcurrency)
	retriever := service.NewRetrieverService(provider, store, cfg.ResultLimit, cfg.MaxContextLength)
	query := service.NewQueryService(retriever, completer)

	return &Runtime{
		Cfg:       cfg,
		Store:     store,
		Indexing:  indexing,
		Retriever: retriever,
		Query:     query,
	}, nil
}

// Close releases the runtime's store.
func (r *Runtime) Close() error {
	return r.Store.Close()
}
