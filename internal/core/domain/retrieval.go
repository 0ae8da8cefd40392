package domain

import (
	"errors"
	"math"
)

const (
	DefaultVectorWeight   = 0.7
	DefaultKeywordWeight  = 0.3
	DefaultMaxPerDocument = 3

	weightSumTolerance = 1e-6
)

// RetrievalParams is the per-call configuration for Retrieve.
type RetrievalParams struct {
	TopK           int          `json:"top_k"`
	RecencyWeight  float64      `json:"recency_weight"`
	VectorWeight   float64      `json:"vector_weight"`
	KeywordWeight  float64      `json:"keyword_weight"`
	MaxPerDocument int          `json:"max_per_document"`
	RerankEnabled  bool         `json:"rerank_enabled"`
	Filter         SearchFilter `json:"filter"`
}

// Normalize fills in defaults for unset fields. The weight pair defaults
// together: setting only one of the two is treated as unset.
func (p RetrievalParams) Normalize() RetrievalParams {
	out := p
	if out.VectorWeight == 0 && out.KeywordWeight == 0 {
		out.VectorWeight = DefaultVectorWeight
		out.KeywordWeight = DefaultKeywordWeight
	}
	if out.MaxPerDocument <= 0 {
		out.MaxPerDocument = DefaultMaxPerDocument
	}
	return out
}

// Validate checks normalized params against the engine contract.
func (p RetrievalParams) Validate() error {
	if p.TopK < 1 {
		return WrapError(ErrInvalidParams, "validate retrieval params", errors.New("top_k must be >= 1"))
	}
	if p.VectorWeight < 0 || p.KeywordWeight < 0 {
		return WrapError(ErrInvalidParams, "validate retrieval params", errors.New("weights must be non-negative"))
	}
	if math.Abs(p.VectorWeight+p.KeywordWeight-1.0) > weightSumTolerance {
		return WrapError(ErrInvalidParams, "validate retrieval params", errors.New("vector_weight and keyword_weight must sum to 1.0"))
	}
	if p.RecencyWeight < 0 || p.RecencyWeight > 1 {
		return WrapError(ErrInvalidParams, "validate retrieval params", errors.New("recency_weight must be in [0,1]"))
	}
	return nil
}

// RetrievalResult is one scored chunk inside a query's result set. Score
// fields are clamped to [0,1]; a chunk missed by one adapter keeps a zero
// score from that adapter.
type RetrievalResult struct {
	Chunk         Chunk   `json:"chunk"`
	VectorScore   float64 `json:"vector_score"`
	KeywordScore  float64 `json:"keyword_score"`
	CombinedScore float64 `json:"combined_score"`
	FinalScore    float64 `json:"final_score"`
	Rank          int     `json:"rank"`
}

// RetrievalSet is the outcome of one Retrieve call. Degraded is set when
// exactly one search adapter failed and the engine proceeded on the survivor.
type RetrievalSet struct {
	Results  []RetrievalResult `json:"results"`
	Degraded bool              `json:"degraded"`
}

// ClampScore bounds a score to [0,1]. NaN collapses to 0.
func ClampScore(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
