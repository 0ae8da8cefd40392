package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/grantpilot/ragengine/internal/core/domain"
	"github.com/grantpilot/ragengine/internal/core/ports"
)

const (
	vectorCandidateFactor  = 4
	keywordCandidateFactor = 2
	rerankShortlistFactor  = 2
)

type RetrieveUseCase struct {
	embedder ports.EmbeddingModel
	vector   ports.VectorSearchAdapter
	keyword  ports.KeywordSearchAdapter
	reranker ports.Reranker

	now func() time.Time
}

// NewRetrieveUseCase wires the retrieval orchestrator. reranker may be nil;
// a nil reranker makes the rerank step a no-op regardless of RerankEnabled.
func NewRetrieveUseCase(
	embedder ports.EmbeddingModel,
	vector ports.VectorSearchAdapter,
	keyword ports.KeywordSearchAdapter,
	reranker ports.Reranker,
) *RetrieveUseCase {
	return &RetrieveUseCase{
		embedder: embedder,
		vector:   vector,
		keyword:  keyword,
		reranker: reranker,
		now:      time.Now,
	}
}

func (uc *RetrieveUseCase) Retrieve(
	ctx context.Context,
	query string,
	params domain.RetrievalParams,
) (*domain.RetrievalSet, error) {
	params = params.Normalize()
	if err := params.Validate(); err != nil {
		return nil, err
	}

	vectorQuery, keywordQuery := normalizeQuery(query)
	if vectorQuery == "" {
		return nil, domain.WrapError(domain.ErrInvalidParams, "normalize query", errors.New("query is empty"))
	}

	semantic, lexical := uc.searchBothPaths(ctx, vectorQuery, keywordQuery, params)
	if semantic.err != nil && lexical.err != nil {
		if ctx.Err() != nil {
			return nil, domain.WrapError(domain.ErrTimeout, "retrieve", ctx.Err())
		}
		return nil, domain.WrapError(
			domain.ErrSearchBackend,
			"retrieve",
			fmt.Errorf("vector search: %v; keyword search: %v", semantic.err, lexical.err),
		)
	}
	degraded := semantic.err != nil || lexical.err != nil

	candidates := fuseWeighted(semantic.chunks, lexical.chunks, params.VectorWeight, params.KeywordWeight)
	candidates = applyRecency(candidates, params.RecencyWeight, uc.now().Year())

	if params.RerankEnabled && uc.reranker != nil {
		reranked := uc.reranker.Rerank(ctx, vectorQuery, candidates, rerankShortlistFactor*params.TopK)
		// A reranker must only reorder; a shrunk or grown list means it
		// changed eligibility, so its output is discarded. A reranker
		// expresses its ordering through the scores it assigns, and ranking
		// stays score-sorted even when it rescored only a prefix.
		if len(reranked) == len(candidates) {
			sortByFinalScore(reranked)
			candidates = reranked
		}
	}

	results := trimResults(diversify(candidates, params.MaxPerDocument), params.TopK)
	if len(results) == 0 {
		return nil, domain.WrapError(domain.ErrEmptyResults, "retrieve", errors.New("no chunks survived filtering"))
	}
	for i := range results {
		results[i].Rank = i + 1
	}

	return &domain.RetrievalSet{Results: results, Degraded: degraded}, nil
}

type searchBranch struct {
	chunks []domain.ScoredChunk
	err    error
}

// searchBothPaths issues the vector and keyword lookups concurrently and
// waits for both. Each branch fails independently; the caller decides between
// degraded mode and a hard error.
func (uc *RetrieveUseCase) searchBothPaths(
	ctx context.Context,
	vectorQuery, keywordQuery string,
	params domain.RetrievalParams,
) (semantic, lexical searchBranch) {
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		queryVector, err := uc.embedder.EmbedQuery(ctx, vectorQuery)
		if err != nil {
			semantic.err = fmt.Errorf("embed query: %w", err)
			return
		}
		chunks, err := uc.vector.Search(ctx, queryVector, vectorCandidateFactor*params.TopK, params.Filter)
		if err != nil {
			semantic.err = fmt.Errorf("vector search: %w", err)
			return
		}
		semantic.chunks = chunks
	}()

	go func() {
		defer wg.Done()
		chunks, err := uc.keyword.Search(ctx, keywordQuery, keywordCandidateFactor*params.TopK, params.Filter)
		if err != nil {
			lexical.err = fmt.Errorf("keyword search: %w", err)
			return
		}
		lexical.chunks = chunks
	}()

	wg.Wait()
	return semantic, lexical
}

func trimResults(results []domain.RetrievalResult, limit int) []domain.RetrievalResult {
	if limit <= 0 || len(results) <= limit {
		return results
	}
	return results[:limit]
}
