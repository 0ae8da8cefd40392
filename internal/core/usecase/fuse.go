package usecase

import (
	"sort"

	"github.com/grantpilot/ragengine/internal/core/domain"
)

// fuseWeighted merges the semantic and lexical candidate sets by chunk id,
// blending the per-adapter scores into CombinedScore. A chunk found by only
// one adapter keeps a zero score from the other. Output is sorted with
// deterministic tie-breaking so identical adapter responses always produce
// identical rankings.
func fuseWeighted(semantic, lexical []domain.ScoredChunk, vectorWeight, keywordWeight float64) []domain.RetrievalResult {
	acc := make(map[string]domain.RetrievalResult, len(semantic)+len(lexical))

	for _, sc := range semantic {
		key := chunkKey(sc.Chunk)
		cand := acc[key]
		cand.Chunk = preferRicherChunk(cand.Chunk, sc.Chunk)
		cand.VectorScore = domain.ClampScore(sc.Score)
		acc[key] = cand
	}
	for _, sc := range lexical {
		key := chunkKey(sc.Chunk)
		cand := acc[key]
		cand.Chunk = preferRicherChunk(cand.Chunk, sc.Chunk)
		cand.KeywordScore = domain.ClampScore(sc.Score)
		acc[key] = cand
	}

	out := make([]domain.RetrievalResult, 0, len(acc))
	for _, cand := range acc {
		cand.CombinedScore = domain.ClampScore(cand.VectorScore*vectorWeight + cand.KeywordScore*keywordWeight)
		cand.FinalScore = cand.CombinedScore
		out = append(out, cand)
	}

	sortByFinalScore(out)
	return out
}

func chunkKey(c domain.Chunk) string {
	if c.ID != "" {
		return c.ID
	}
	return c.Metadata.DocumentID + "|" + c.Text
}

// preferRicherChunk keeps the more complete of two adapter views of the same
// chunk. Adapters differ in what they return: the lexical path may omit
// embeddings, the vector path may omit text highlights.
func preferRicherChunk(current, candidate domain.Chunk) domain.Chunk {
	if current.ID == "" && current.Text == "" {
		return candidate
	}
	if current.Text == "" && candidate.Text != "" {
		current.Text = candidate.Text
	}
	if len(current.Embedding) == 0 && len(candidate.Embedding) > 0 {
		current.Embedding = candidate.Embedding
	}
	if current.Metadata.DocumentID == "" && candidate.Metadata.DocumentID != "" {
		current.Metadata = candidate.Metadata
	}
	return current
}

func sortByFinalScore(results []domain.RetrievalResult) {
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].FinalScore != results[j].FinalScore {
			return results[i].FinalScore > results[j].FinalScore
		}
		if results[i].Chunk.Metadata.DocumentID != results[j].Chunk.Metadata.DocumentID {
			return results[i].Chunk.Metadata.DocumentID < results[j].Chunk.Metadata.DocumentID
		}
		return results[i].Chunk.ID < results[j].Chunk.ID
	})
}
