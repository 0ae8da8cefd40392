package ports

import (
	"context"

	"github.com/grantpilot/ragengine/internal/core/domain"
)

// Retriever selects, scores, and orders chunks for a query.
type Retriever interface {
	Retrieve(ctx context.Context, query string, params domain.RetrievalParams) (*domain.RetrievalSet, error)
}

// Validator checks generated text against the sources used to produce it.
type Validator interface {
	Validate(ctx context.Context, query, response string, sources []domain.RetrievalResult, params domain.ValidationParams) (*domain.ValidationResult, error)
}

// CitationProcessor extracts, validates, and reformats citation markers.
type CitationProcessor interface {
	ProcessCitations(ctx context.Context, response string, sources []domain.RetrievalResult, style domain.CitationStyle) (*domain.CitationResult, error)
}
