package config

import (
	"fmt"
	"log"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// MaxUploadBytes is the hard limit on uploaded/analyzed file size, enforced
// before any extraction work happens.
const MaxUploadBytes = 50 * 1024 * 1024

// MaxBodyOverhead is the slack the HTTP body cap allows on top of
// MaxUploadBytes for multipart framing and form fields, so a file right at
// the limit still reaches the extraction size gate intact.
const MaxBodyOverhead = 1024 * 1024

type Config struct {
	Port  string `envconfig:"PORT" default:"8080"`
	Debug bool   `envconfig:"DEBUG" default:"false"`

	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`

	// Tika-compatible extraction server, used for PDF parsing and image OCR.
	TikaURL      string `envconfig:"TIKA_URL"`
	OCRLanguages string `envconfig:"OCR_LANGUAGES" default:"fra+eng"`

	OpenAIAPIKey        string `envconfig:"OPENAI_API_KEY"`
	EmbeddingModel      string `envconfig:"EMBEDDING_MODEL"`
	EmbeddingDimensions int    `envconfig:"EMBEDDING_DIMENSIONS" default:"1536"`

	ChunkMaxChars int `envconfig:"CHUNK_MAX_CHARS" default:"1200"`
	ChunkOverlap  int `envconfig:"CHUNK_OVERLAP" default:"200"`

	// Worker pool bounds. OCR defaults to a single job at a time to cap
	// memory; embedding batches may run with limited parallelism.
	OCRConcurrency       int `envconfig:"OCR_CONCURRENCY" default:"1"`
	EmbeddingConcurrency int `envconfig:"EMBEDDING_CONCURRENCY" default:"4"`
	IndexWorkers         int `envconfig:"INDEX_WORKERS" default:"2"`

	// Remote store for knowledge-base sync.
	S3Endpoint  string `envconfig:"S3_ENDPOINT"`
	S3AccessKey string `envconfig:"S3_ACCESS_KEY_ID"`
	S3SecretKey string `envconfig:"S3_SECRET_ACCESS_KEY"`
	S3Bucket    string `envconfig:"S3_BUCKET" default:"lucide-knowledge"`
	S3Region    string `envconfig:"S3_REGION" default:"us-east-1"`

	SyncInterval string `envconfig:"SYNC_INTERVAL" default:"5m"`

	// Static bearer token table, "token:owner" pairs separated by commas.
	APITokens string `envconfig:"API_TOKENS"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("LUCIDE", &cfg); err != nil {
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

func (c *Config) HasOpenAI() bool {
	return c.OpenAIAPIKey != ""
}

func (c *Config) HasTika() bool {
	return c.TikaURL != ""
}

// TokenTable parses APITokens into a token to owner lookup map.
func (c *Config) TokenTable() map[string]string {
	tokens := make(map[string]string)
	for _, pair := range strings.Split(c.APITokens, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		token, owner, ok := strings.Cut(pair, ":")
		if !ok || token == "" || owner == "" {
			continue
		}
		tokens[token] = owner
	}
	return tokens
}
