package ports

import (
	"context"

	"github.com/grantpilot/ragengine/internal/core/domain"
)

// EmbeddingModel builds vectors for query text, response sentences, and
// concatenated source text.
type EmbeddingModel interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// VectorSearchAdapter performs nearest-neighbor lookup over chunk embeddings.
type VectorSearchAdapter interface {
	Search(ctx context.Context, queryVector []float32, topK int, filter domain.SearchFilter) ([]domain.ScoredChunk, error)
}

// KeywordSearchAdapter performs lexical (BM25-style) lookup over chunk text.
type KeywordSearchAdapter interface {
	Search(ctx context.Context, queryText string, topK int, filter domain.SearchFilter) ([]domain.ScoredChunk, error)
}

// Reranker is an optional second-pass precision scorer over a shortlist.
// Implementations must not change which chunks are eligible, only their order
// and FinalScore. A nil Reranker is valid and means "no reranking".
type Reranker interface {
	Rerank(ctx context.Context, query string, candidates []domain.RetrievalResult, topK int) []domain.RetrievalResult
}

// ReviewNotifier publishes review requests for answers that failed quality
// validation. Publishing is best-effort; the engine never fails a Validate
// call on notifier errors.
type ReviewNotifier interface {
	PublishReviewRequested(ctx context.Context, req domain.ReviewRequest) error
}
