// Package ragengine is a hybrid retrieval and quality validation engine for
// grant-writing assistants: it fuses vector and keyword search over a document
// chunk corpus, validates generated text against its sources, and processes
// citation markers.
package ragengine

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/grantpilot/ragengine/internal/bootstrap"
	"github.com/grantpilot/ragengine/internal/config"
	"github.com/grantpilot/ragengine/internal/core/domain"
	"github.com/grantpilot/ragengine/internal/core/ports"
	"github.com/grantpilot/ragengine/internal/observability/metrics"
)

type Engine struct {
	retriever ports.Retriever
	validator ports.Validator
	citations ports.CitationProcessor
	notifier  ports.ReviewNotifier

	logger  *slog.Logger
	metrics *metrics.EngineMetrics
	service string
	now     func() time.Time

	closeFn func()
}

// Components assembles an Engine from prebuilt parts. Notifier, Logger, and
// Metrics are optional.
type Components struct {
	Retriever ports.Retriever
	Validator ports.Validator
	Citations ports.CitationProcessor
	Notifier  ports.ReviewNotifier
	Logger    *slog.Logger
	Metrics   *metrics.EngineMetrics
	Service   string
}

func NewEngine(c Components) *Engine {
	logger := c.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	service := c.Service
	if service == "" {
		service = "ragengine"
	}
	return &Engine{
		retriever: c.Retriever,
		validator: c.Validator,
		citations: c.Citations,
		notifier:  c.Notifier,
		logger:    logger,
		metrics:   c.Metrics,
		service:   service,
		now:       time.Now,
	}
}

// New builds an Engine from configuration, connecting to the configured
// search backends, embedding model, and optional cache and notifier.
func New(ctx context.Context, cfg config.Config) (*Engine, error) {
	app, err := bootstrap.New(ctx, cfg)
	if err != nil {
		return nil, err
	}
	engine := NewEngine(Components{
		Retriever: app.RetrieveUC,
		Validator: app.ValidateUC,
		Citations: app.CitationUC,
		Notifier:  app.Notifier,
		Logger:    app.Logger,
		Metrics:   app.Metrics,
		Service:   cfg.ServiceName,
	})
	engine.closeFn = app.Close
	return engine, nil
}

func (e *Engine) Close() {
	if e.closeFn != nil {
		e.closeFn()
	}
}

// Metrics returns the Prometheus registry handler, or nil when metrics are
// not configured.
func (e *Engine) Metrics() *metrics.EngineMetrics {
	return e.metrics
}

func (e *Engine) Retrieve(ctx context.Context, query string, params domain.RetrievalParams) (*domain.RetrievalSet, error) {
	traceID := uuid.NewString()
	start := e.now()

	set, err := e.retriever.Retrieve(ctx, query, params)
	duration := e.now().Sub(start)

	if err != nil {
		if e.metrics != nil {
			e.metrics.RecordRetrieval(e.service, 0, false, duration, err)
		}
		e.logger.Error("retrieval_failed",
			"trace_id", traceID,
			"error", err,
			"duration_ms", duration.Milliseconds(),
		)
		return nil, err
	}

	if e.metrics != nil {
		e.metrics.RecordRetrieval(e.service, len(set.Results), set.Degraded, duration, nil)
	}
	e.logger.Info("retrieval_completed",
		"trace_id", traceID,
		"results", len(set.Results),
		"degraded", set.Degraded,
		"duration_ms", duration.Milliseconds(),
	)
	return set, nil
}

func (e *Engine) Validate(
	ctx context.Context,
	query, response string,
	sources []domain.RetrievalResult,
	params domain.ValidationParams,
) (*domain.ValidationResult, error) {
	traceID := uuid.NewString()
	start := e.now()

	result, err := e.validator.Validate(ctx, query, response, sources, params)
	duration := e.now().Sub(start)

	if err != nil {
		if e.metrics != nil {
			e.metrics.RecordValidation(e.service, false, duration, err)
		}
		e.logger.Error("validation_failed",
			"trace_id", traceID,
			"error", err,
			"duration_ms", duration.Milliseconds(),
		)
		return nil, err
	}

	if e.metrics != nil {
		e.metrics.RecordValidation(e.service, result.NeedsReview, duration, nil)
	}
	e.logger.Info("validation_completed",
		"trace_id", traceID,
		"confidence", result.Confidence,
		"groundedness", result.Groundedness,
		"relevance", result.Relevance,
		"needs_review", result.NeedsReview,
		"issues", len(result.Issues),
		"duration_ms", duration.Milliseconds(),
	)

	if result.NeedsReview && e.notifier != nil {
		e.publishReview(ctx, traceID, query, params.SectionType, result, sources)
	}
	return result, nil
}

// publishReview is best-effort: a validation call never fails because the
// review queue is down.
func (e *Engine) publishReview(
	ctx context.Context,
	traceID, query, sectionType string,
	result *domain.ValidationResult,
	sources []domain.RetrievalResult,
) {
	req := domain.ReviewRequest{
		ID:                traceID,
		Query:             query,
		SectionType:       sectionType,
		Confidence:        result.Confidence,
		Groundedness:      result.Groundedness,
		Relevance:         result.Relevance,
		Issues:            result.Issues,
		SourceDocumentIDs: sourceDocumentIDs(sources),
		CreatedAt:         e.now().UTC(),
	}
	if err := e.notifier.PublishReviewRequested(ctx, req); err != nil {
		e.logger.Warn("review_publish_failed", "trace_id", traceID, "error", err)
	}
}

func (e *Engine) ProcessCitations(
	ctx context.Context,
	response string,
	sources []domain.RetrievalResult,
	style domain.CitationStyle,
) (*domain.CitationResult, error) {
	traceID := uuid.NewString()

	result, err := e.citations.ProcessCitations(ctx, response, sources, style)
	if err != nil {
		if e.metrics != nil {
			e.metrics.RecordCitations(e.service, string(style), 0, err)
		}
		e.logger.Error("citation_processing_failed", "trace_id", traceID, "error", err)
		return nil, err
	}

	if e.metrics != nil {
		e.metrics.RecordCitations(e.service, string(style), len(result.InvalidCitations), nil)
	}
	e.logger.Info("citations_processed",
		"trace_id", traceID,
		"style", string(style),
		"cited_sources", len(result.CitationMap),
		"invalid_markers", len(result.InvalidCitations),
	)
	return result, nil
}

func sourceDocumentIDs(sources []domain.RetrievalResult) []string {
	seen := make(map[string]bool, len(sources))
	out := make([]string, 0, len(sources))
	for _, src := range sources {
		id := src.Chunk.Metadata.DocumentID
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
