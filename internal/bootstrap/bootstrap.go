// Package bootstrap wires configuration into a ready-to-use engine: embedding
// client, search adapters for the configured backends, use cases, and the
// optional review notifier.
package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/grantpilot/ragengine/internal/config"
	"github.com/grantpilot/ragengine/internal/core/ports"
	"github.com/grantpilot/ragengine/internal/core/usecase"
	"github.com/grantpilot/ragengine/internal/infrastructure/embedding/ollama"
	"github.com/grantpilot/ragengine/internal/infrastructure/embedding/rediscache"
	"github.com/grantpilot/ragengine/internal/infrastructure/queue/nats"
	"github.com/grantpilot/ragengine/internal/infrastructure/rerank/lexical"
	"github.com/grantpilot/ragengine/internal/infrastructure/repository/postgres"
	"github.com/grantpilot/ragengine/internal/infrastructure/resilience"
	"github.com/grantpilot/ragengine/internal/infrastructure/vector/qdrant"
	"github.com/grantpilot/ragengine/internal/observability/logging"
	"github.com/grantpilot/ragengine/internal/observability/metrics"
)

type App struct {
	Config  config.Config
	Logger  *slog.Logger
	Metrics *metrics.EngineMetrics

	Embedder   ports.EmbeddingModel
	RetrieveUC *usecase.RetrieveUseCase
	ValidateUC *usecase.ValidateUseCase
	CitationUC *usecase.CitationUseCase
	Notifier   ports.ReviewNotifier

	closeFn func()
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger := logging.NewJSONLogger(cfg.ServiceName, cfg.LogLevel)
	executor := resilience.NewExecutor(resilience.DefaultPolicy())

	var embedder ports.EmbeddingModel
	ollamaClient := ollama.New(cfg.OllamaURL, cfg.OllamaEmbedModel, ollama.Options{
		RequestsPerSecond: cfg.OllamaRPS,
		Burst:             cfg.OllamaBurst,
		Executor:          executor,
	})
	embedder = ollamaClient

	var closers []func()

	if cfg.RedisAddr != "" {
		cache, err := rediscache.New(ctx, ollamaClient, ollamaClient.Model(), rediscache.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			TTL:      time.Duration(cfg.CacheTTLHours) * time.Hour,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("init embedding cache: %w", err)
		}
		embedder = cache
		closers = append(closers, func() { _ = cache.Close() })
	}

	var db *sql.DB
	if cfg.NeedsPostgres() {
		var err error
		db, err = postgres.OpenDB(cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		closers = append(closers, func() { _ = db.Close() })
	}

	var qdrantClient *qdrant.Client
	if cfg.NeedsQdrant() {
		qdrantClient = qdrant.New(cfg.QdrantURL, cfg.QdrantCollection)
	}

	var vectorAdapter ports.VectorSearchAdapter
	switch cfg.VectorBackend {
	case config.BackendQdrant:
		vectorAdapter = qdrantClient
	case config.BackendPgvector:
		vectorAdapter = postgres.NewVectorSearch(db)
	}

	var keywordAdapter ports.KeywordSearchAdapter
	switch cfg.KeywordBackend {
	case config.BackendQdrant:
		keywordAdapter = qdrant.NewLexicalAdapter(qdrantClient)
	case config.BackendPostgres:
		keywordAdapter = postgres.NewKeywordSearch(db)
	}

	var reranker ports.Reranker
	if cfg.RerankEnabled {
		reranker = lexical.NewReranker()
	}

	topics, err := config.LoadTopicTable(cfg.TopicTablePath)
	if err != nil {
		return nil, err
	}

	var notifier ports.ReviewNotifier
	if cfg.NATSURL != "" {
		queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.ReviewSubject, nats.Options{
			ResilienceExecutor: executor,
		})
		if err != nil {
			return nil, fmt.Errorf("init review notifier: %w", err)
		}
		notifier = queue
		closers = append(closers, queue.Close)
	}

	return &App{
		Config:  cfg,
		Logger:  logger,
		Metrics: metrics.NewEngineMetrics(cfg.ServiceName),

		Embedder:   embedder,
		RetrieveUC: usecase.NewRetrieveUseCase(embedder, vectorAdapter, keywordAdapter, reranker),
		ValidateUC: usecase.NewValidateUseCase(embedder, topics),
		CitationUC: usecase.NewCitationUseCase(),
		Notifier:   notifier,

		closeFn: func() {
			for i := len(closers) - 1; i >= 0; i-- {
				closers[i]()
			}
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
