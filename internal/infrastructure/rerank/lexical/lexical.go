// Package lexical implements a second-pass reranker that needs no model
// calls: it blends the fused score with query-token overlap and a filename
// hit, then reorders the head of the candidate list.
package lexical

import (
	"context"
	"sort"
	"strings"
	"unicode"

	"github.com/grantpilot/ragengine/internal/core/domain"
)

const (
	fusedWeight    = 0.60
	overlapWeight  = 0.30
	filenameWeight = 0.10
)

type Reranker struct{}

func NewReranker() *Reranker { return &Reranker{} }

// Rerank reorders the first topN candidates by the blended lexical score.
// Blended scores are mapped back into the head's original score span, so for
// a score-sorted input the head never falls below the untouched tail. The
// tail past topN keeps its order; the output always has the same length and
// members as the input.
func (r *Reranker) Rerank(
	_ context.Context,
	query string,
	candidates []domain.RetrievalResult,
	topN int,
) []domain.RetrievalResult {
	if len(candidates) == 0 {
		return candidates
	}
	if topN <= 0 || topN > len(candidates) {
		topN = len(candidates)
	}

	head := make([]domain.RetrievalResult, topN)
	copy(head, candidates[:topN])
	queryTokens := toTokenSet(query)

	minScore := head[0].FinalScore
	maxScore := head[0].FinalScore
	for _, c := range head[1:] {
		if c.FinalScore < minScore {
			minScore = c.FinalScore
		}
		if c.FinalScore > maxScore {
			maxScore = c.FinalScore
		}
	}

	scoreRange := maxScore - minScore
	normalize := func(v float64) float64 {
		if scoreRange <= 0 {
			if v > 0 {
				return 1
			}
			return 0
		}
		return (v - minScore) / scoreRange
	}

	for i := range head {
		normalizedFused := normalize(head[i].FinalScore)
		overlap := tokenOverlap(queryTokens, toTokenSet(head[i].Chunk.Text))
		filenameBoost := filenameTokenHit(queryTokens, head[i].Chunk.Metadata.Filename)
		head[i].FinalScore = domain.ClampScore(
			fusedWeight*normalizedFused + overlapWeight*overlap + filenameWeight*filenameBoost,
		)
	}

	sort.SliceStable(head, func(i, j int) bool {
		if head[i].FinalScore != head[j].FinalScore {
			return head[i].FinalScore > head[j].FinalScore
		}
		if head[i].Chunk.Metadata.DocumentID != head[j].Chunk.Metadata.DocumentID {
			return head[i].Chunk.Metadata.DocumentID < head[j].Chunk.Metadata.DocumentID
		}
		return head[i].Chunk.ID < head[j].Chunk.ID
	})

	for i := range head {
		head[i].FinalScore = minScore + head[i].FinalScore*scoreRange
	}

	if topN == len(candidates) {
		return head
	}

	out := make([]domain.RetrievalResult, 0, len(candidates))
	out = append(out, head...)
	out = append(out, candidates[topN:]...)
	return out
}

func tokenOverlap(query, chunk map[string]struct{}) float64 {
	if len(query) == 0 || len(chunk) == 0 {
		return 0
	}
	matches := 0
	for token := range query {
		if _, ok := chunk[token]; ok {
			matches++
		}
	}
	return float64(matches) / float64(len(query))
}

func filenameTokenHit(query map[string]struct{}, filename string) float64 {
	if len(query) == 0 || filename == "" {
		return 0
	}
	filename = strings.ToLower(filename)
	for token := range query {
		if token == "" {
			continue
		}
		if strings.Contains(filename, token) {
			return 1
		}
	}
	return 0
}

func toTokenSet(s string) map[string]struct{} {
	tokens := splitAlphaNumLower(s)
	out := make(map[string]struct{}, len(tokens))
	for _, token := range tokens {
		out[token] = struct{}{}
	}
	return out
}

func splitAlphaNumLower(s string) []string {
	if s == "" {
		return nil
	}

	tokens := make([]string, 0, 16)
	var b strings.Builder
	for _, r := range s {
		r = unicode.ToLower(r)
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			continue
		}
		if b.Len() > 0 {
			tokens = append(tokens, b.String())
			b.Reset()
		}
	}
	if b.Len() > 0 {
		tokens = append(tokens, b.String())
	}
	return tokens
}
