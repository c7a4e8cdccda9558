package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"
	"github.com/nsqio/go-nsq"
	"github.com/weaviate/weaviate-go-client/v5/weaviate"
	"go.mongodb.org/mongo-driver/mongo"

	"propembed/features/job"
	"propembed/internal/adapter/gemini"
	mongostore "propembed/internal/adapter/mongo"
	wstore "propembed/internal/adapter/weaviate"
	"propembed/internal/config"
	"propembed/internal/embedding"
	"propembed/internal/listing"
	"propembed/internal/worker"
)

// Dependencies are the long-lived clients of one run. Optional parts are nil
// when disabled.
type Dependencies struct {
	Source   worker.SourceStore
	Embedder embedding.Provider
	Opener   worker.StoreOpener
	Failures worker.FailureRecorder
	// FailureCount reads the ledger back; set together with Failures.
	FailureCount worker.FailureCounter
	Publisher    worker.EventPublisher

	mongo    *mongo.Client
	gemini   *gemini.Embedder
	db       *sql.DB
	producer *nsq.Producer
}

// IndexEnsurer is the part of a target store bootstrap needs.
type IndexEnsurer interface {
	EnsureIndex(ctx context.Context, field string) error
}

func Bootstrap(ctx context.Context, cfg *config.Config) (*Dependencies, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	deps := &Dependencies{}
	ok := false
	defer func() {
		if !ok {
			deps.Close(context.Background())
		}
	}()

	attempts := cfg.BootstrapRetryAttempts
	delay := cfg.BootstrapRetryDelay()

	// MongoDB
	err := withRetry(ctx, "mongodb", attempts, delay, func() error {
		client, err := mongostore.Connect(ctx, cfg.MongoURI)
		if err != nil {
			return err
		}
		deps.mongo = client
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}
	slog.Info("connected to mongodb", "database", cfg.MongoDBName)

	db := deps.mongo.Database(cfg.MongoDBName)
	source := mongostore.NewSourceStore(db.Collection(cfg.SourceCollection))
	total, err := source.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read source collection: %w", err)
	}
	slog.Info("source collection reachable", "collection", cfg.SourceCollection, "documents", total)
	deps.Source = source

	// Embedding provider
	embedder, err := gemini.NewEmbedder(ctx, cfg.GeminiAPIKey, cfg.EmbeddingModel)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedding client: %w", err)
	}
	deps.gemini = embedder
	deps.Embedder = embedder

	// Target
	opener := &storeOpener{cfg: cfg}
	target, err := opener.target(deps.mongo)
	if err != nil {
		return nil, err
	}
	if err := EnsureIndexWithRetry(ctx, target, listing.SourceIDField, attempts, delay); err != nil {
		return nil, fmt.Errorf("failed to ensure target index: %w", err)
	}
	slog.Info("target index ready", "backend", cfg.TargetBackend, "field", listing.SourceIDField)
	deps.Opener = opener

	// Failure ledger
	if cfg.EnableFailureLedger {
		sqlDB, err := openLedger(ctx, cfg, attempts, delay)
		if err != nil {
			return nil, err
		}
		deps.db = sqlDB
		ledger := job.NewService(job.NewPostgresRepo(sqlDB))
		deps.Failures = ledger
		deps.FailureCount = ledger
		slog.Info("failure ledger enabled")
	}

	// NSQ Producer
	if cfg.NSQDHost != "" {
		producer, err := nsq.NewProducer(cfg.NSQDHost, nsq.NewConfig())
		if err != nil {
			return nil, fmt.Errorf("nsq producer error: %w", err)
		}
		deps.producer = producer
		deps.Publisher = producer
	}

	ok = true
	return deps, nil
}

func openLedger(ctx context.Context, cfg *config.Config, attempts int, delay time.Duration) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.PostgresDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}

	if err := withRetry(ctx, "postgres", attempts, delay, func() error {
		return db.PingContext(ctx)
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping db: %w", err)
	}

	// Migrations
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("migration driver error: %w", err)
	}
	m, err := migrate.NewWithDatabaseInstance(cfg.MigrationPath, "postgres", driver)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("migration instance error: %w", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		db.Close()
		return nil, fmt.Errorf("migration up error: %w", err)
	}
	return db, nil
}

// Close releases every client Bootstrap opened. Safe on a partially built
// Dependencies.
func (d *Dependencies) Close(ctx context.Context) {
	if d.producer != nil {
		d.producer.Stop()
	}
	if d.db != nil {
		if err := d.db.Close(); err != nil {
			slog.Warn("failed to close db", "error", err)
		}
	}
	if d.gemini != nil {
		if err := d.gemini.Close(); err != nil {
			slog.Warn("failed to close embedding client", "error", err)
		}
	}
	if d.mongo != nil {
		if err := d.mongo.Disconnect(ctx); err != nil {
			slog.Warn("failed to disconnect from mongodb", "error", err)
		}
	}
}

// EnsureIndexWithRetry creates the source-id index on the target, retrying
// while the target is still coming up.
func EnsureIndexWithRetry(ctx context.Context, store IndexEnsurer, field string, attempts int, delay time.Duration) error {
	return withRetry(ctx, "target index", attempts, delay, func() error {
		return store.EnsureIndex(ctx, field)
	})
}

func withRetry(ctx context.Context, what string, attempts int, delay time.Duration, op func() error) error {
	if attempts < 1 {
		attempts = 1
	}
	var err error
	for i := 0; i < attempts; i++ {
		if err = op(); err == nil {
			return nil
		}
		if i == attempts-1 {
			break
		}
		slog.Warn("bootstrap step failed, retrying...", "step", what, "attempt", i+1, "error", err)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
	return err
}

// storeOpener hands every worker its own MongoDB client, and its own
// Weaviate client when that backend is selected.
type storeOpener struct {
	cfg *config.Config
}

func (o *storeOpener) Open(ctx context.Context) (*worker.Handles, error) {
	client, err := mongostore.Connect(ctx, o.cfg.MongoURI)
	if err != nil {
		return nil, err
	}
	target, err := o.target(client)
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return &worker.Handles{
		Source: mongostore.NewSourceStore(client.Database(o.cfg.MongoDBName).Collection(o.cfg.SourceCollection)),
		Target: target,
		Close:  client.Disconnect,
	}, nil
}

func (o *storeOpener) target(client *mongo.Client) (worker.TargetStore, error) {
	switch o.cfg.TargetBackend {
	case config.BackendWeaviate:
		wClient, err := weaviate.NewClient(weaviate.Config{Host: o.cfg.WeaviateHost, Scheme: o.cfg.WeaviateScheme})
		if err != nil {
			return nil, fmt.Errorf("weaviate client error: %w", err)
		}
		return wstore.NewStore(wClient), nil
	default:
		return mongostore.NewTargetStore(client.Database(o.cfg.MongoDBName).Collection(o.cfg.TargetCollection)), nil
	}
}
