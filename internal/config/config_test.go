package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "gemini-embedding-exp-03-07", cfg.EmbeddingModel)
	assert.True(t, cfg.UseLocalFallback)
	assert.Equal(t, 512, cfg.ChunkSize)
	assert.Equal(t, 50, cfg.ChunkOverlap)
	assert.Equal(t, 16, cfg.EmbedBatchSize)
	assert.Equal(t, 4, cfg.EmbedConcurrency)
	assert.Equal(t, "data/index", cfg.VectorDBPath)
	assert.Equal(t, 5, cfg.ResultLimit)
	assert.Equal(t, 4000, cfg.MaxContextLength)
	assert.Equal(t, "mistral-small", cfg.GenerationModel)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("DOCSEARCH_PORT", "9090")
	t.Setenv("DOCSEARCH_CHUNK_SIZE", "256")
	t.Setenv("DOCSEARCH_USE_LOCAL_FALLBACK", "false")
	t.Setenv("DOCSEARCH_VECTOR_DB_PATH", "/tmp/vectors")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 256, cfg.ChunkSize)
	assert.False(t, cfg.UseLocalFallback)
	assert.Equal(t, "/tmp/vectors", cfg.VectorDBPath)
}

func TestLoad_UnprefixedAPIKeys(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "gm-key")
	t.Setenv("MISTRAL_API_KEY", "mi-key")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "gm-key", cfg.GeminiAPIKey)
	assert.Equal(t, "mi-key", cfg.MistralAPIKey)
	assert.True(t, cfg.HasRemoteEmbedding())
}

func TestHasS3(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.HasS3())

	t.Setenv("DOCSEARCH_S3_ENDPOINT", "http://localhost:9000")
	t.Setenv("DOCSEARCH_S3_ACCESS_KEY_ID", "access")
	t.Setenv("DOCSEARCH_S3_SECRET_ACCESS_KEY", "secret")

	cfg, err = Load()
	require.NoError(t, err)
	assert.True(t, cfg.HasS3())
}
