package config

import (
	"fmt"
	"log"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port  string `envconfig:"PORT" default:"8080"`
	Debug bool   `envconfig:"DEBUG" default:"false"`

	// Remote embedding endpoint. envconfig also checks the plain tag
	// name, so GEMINI_API_KEY / MISTRAL_API_KEY work unprefixed.
	EmbeddingModel      string `envconfig:"EMBEDDING_MODEL" default:"gemini-embedding-exp-03-07"`
	EmbeddingAPIBase    string `envconfig:"EMBEDDING_API_BASE" default:"https://generativelanguage.googleapis.com/v1beta/openai"`
	GeminiAPIKey        string `envconfig:"GEMINI_API_KEY"`
	UseLocalFallback    bool   `envconfig:"USE_LOCAL_FALLBACK" default:"true"`
	LocalEmbeddingModel string `envconfig:"LOCAL_EMBEDDING_MODEL" default:"all-MiniLM-L6-v2"`
	EmbedBatchSize      int    `envconfig:"EMBED_BATCH_SIZE" default:"16"`
	EmbedConcurrency    int    `envconfig:"EMBED_CONCURRENCY" default:"4"`

	ChunkSize    int `envconfig:"CHUNK_SIZE" default:"512"`
	ChunkOverlap int `envconfig:"CHUNK_OVERLAP" default:"50"`

	VectorDBPath string `envconfig:"VECTOR_DB_PATH" default:"data/index"`

	ResultLimit      int `envconfig:"RESULT_LIMIT" default:"5"`
	MaxContextLength int `envconfig:"MAX_CONTEXT_LENGTH" default:"4000"`

	GenerationModel   string `envconfig:"GENERATION_MODEL" default:"mistral-small"`
	GenerationAPIBase string `envconfig:"GENERATION_API_BASE" default:"https://api.mistral.ai/v1"`
	MistralAPIKey     string `envconfig:"MISTRAL_API_KEY"`

	// Optional S3-compatible target for collection backup/restore
	S3Endpoint  string `envconfig:"S3_ENDPOINT"`
	S3AccessKey string `envconfig:"S3_ACCESS_KEY_ID"`
	S3SecretKey string `envconfig:"S3_SECRET_ACCESS_KEY"`
	S3Bucket    string `envconfig:"S3_BUCKET" default:"docsearch-collections"`
	S3Region    string `envconfig:"S3_REGION" default:"us-east-1"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("DOCSEARCH", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	return cfg
}

func (c *Config) HasS3() bool {
	return c.S3Endpoint != "" && c.S3AccessKey != "" && c.S3SecretKey != ""
}

func (c *Config) HasRemoteEmbedding() bool {
	return c.GeminiAPIKey != ""
}
