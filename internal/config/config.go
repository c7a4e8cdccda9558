package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

var ErrMissingRequired = errors.New("missing required configuration")

const (
	BackendMongo    = "mongo"
	BackendWeaviate = "weaviate"
)

type Config struct {
	MongoURI         string `envconfig:"MONGODB_URI" default:"mongodb://localhost:27017"`
	MongoDBName      string `envconfig:"MONGODB_DB_NAME" default:"properties_db"`
	SourceCollection string `envconfig:"SOURCE_COLLECTION" default:"properties"`
	TargetCollection string `envconfig:"TARGET_COLLECTION" default:"properties_embeddings"`

	GeminiAPIKey       string `envconfig:"GOOGLE_GENERATIVE_AI_API_KEY"`
	EmbeddingModel     string `envconfig:"EMBEDDING_MODEL" default:"text-embedding-004"`
	EmbeddingDimension int    `envconfig:"EMBEDDING_DIMENSION" default:"768"`

	// Pipeline
	WorkerCount      int `envconfig:"WORKER_COUNT" default:"4"`
	BatchSize        int `envconfig:"BATCH_SIZE" default:"50"`
	EmbedMaxAttempts int `envconfig:"EMBED_MAX_ATTEMPTS" default:"5"`
	EmbedBaseDelayMS int `envconfig:"EMBED_BASE_DELAY_MS" default:"1000"`

	TargetBackend  string `envconfig:"TARGET_BACKEND" default:"mongo"`
	WeaviateHost   string `envconfig:"WEAVIATE_HOST" default:"localhost:8080"`
	WeaviateScheme string `envconfig:"WEAVIATE_SCHEME" default:"http"`

	// Failure ledger
	EnableFailureLedger bool   `envconfig:"ENABLE_FAILURE_LEDGER" default:"false"`
	DBHost              string `envconfig:"DB_HOST" default:"localhost"`
	DBPort              int    `envconfig:"DB_PORT" default:"5432"`
	DBUser              string `envconfig:"DB_USER" default:"propembed"`
	DBPass              string `envconfig:"DB_PASS" default:"password"`
	DBName              string `envconfig:"DB_NAME" default:"propembed"`
	MigrationPath       string `envconfig:"MIGRATION_PATH" default:"file://migrations"`

	// Empty disables result events.
	NSQDHost string `envconfig:"NSQD_HOST"`

	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// Resilience
	BootstrapRetryAttempts     int `envconfig:"BOOTSTRAP_RETRY_ATTEMPTS" default:"10"`
	BootstrapRetryDelaySeconds int `envconfig:"BOOTSTRAP_RETRY_DELAY_SECONDS" default:"2"`
}

func Load() (*Config, error) {
	// Env vars set in the shell take precedence; missing files are fine.
	_ = godotenv.Load(".env")

	cwd, _ := os.Getwd()
	_ = godotenv.Load(filepath.Join(cwd, "../.env"))

	var cfg Config
	err := envconfig.Process("", &cfg)
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.GeminiAPIKey == "" {
		return fmt.Errorf("%w: GOOGLE_GENERATIVE_AI_API_KEY", ErrMissingRequired)
	}
	if c.MongoURI == "" {
		return fmt.Errorf("%w: MONGODB_URI", ErrMissingRequired)
	}
	if c.MongoDBName == "" {
		return fmt.Errorf("%w: MONGODB_DB_NAME", ErrMissingRequired)
	}
	if c.SourceCollection == "" || c.TargetCollection == "" {
		return fmt.Errorf("%w: SOURCE_COLLECTION/TARGET_COLLECTION", ErrMissingRequired)
	}
	if c.WorkerCount < 1 {
		return fmt.Errorf("WORKER_COUNT must be at least 1, got %d", c.WorkerCount)
	}
	if c.BatchSize < 1 {
		return fmt.Errorf("BATCH_SIZE must be at least 1, got %d", c.BatchSize)
	}
	if c.EmbedMaxAttempts < 1 {
		return fmt.Errorf("EMBED_MAX_ATTEMPTS must be at least 1, got %d", c.EmbedMaxAttempts)
	}
	switch c.TargetBackend {
	case BackendMongo:
	case BackendWeaviate:
		if c.WeaviateHost == "" {
			return fmt.Errorf("%w: WEAVIATE_HOST", ErrMissingRequired)
		}
	default:
		return fmt.Errorf("unknown TARGET_BACKEND %q", c.TargetBackend)
	}
	if c.EnableFailureLedger && (c.DBHost == "" || c.DBUser == "" || c.DBName == "") {
		return fmt.Errorf("%w: DB_HOST/DB_USER/DB_NAME for failure ledger", ErrMissingRequired)
	}
	return nil
}

func (c *Config) EmbedBaseDelay() time.Duration {
	return time.Duration(c.EmbedBaseDelayMS) * time.Millisecond
}

func (c *Config) BootstrapRetryDelay() time.Duration {
	return time.Duration(c.BootstrapRetryDelaySeconds) * time.Second
}

func (c *Config) PostgresDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		c.DBHost, c.DBPort, c.DBUser, c.DBPass, c.DBName)
}
