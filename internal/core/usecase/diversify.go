package usecase

import "github.com/grantpilot/ragengine/internal/core/domain"

// diversify walks the sorted list once, keeping a result only while its
// document's counter is below maxPerDocument. Relative order is preserved.
// Dropped results are not backfilled from lower ranks of the same pass.
func diversify(results []domain.RetrievalResult, maxPerDocument int) []domain.RetrievalResult {
	if maxPerDocument <= 0 {
		return results
	}
	counts := make(map[string]int, len(results))
	out := make([]domain.RetrievalResult, 0, len(results))
	for _, r := range results {
		docID := r.Chunk.Metadata.DocumentID
		if counts[docID] >= maxPerDocument {
			continue
		}
		counts[docID]++
		out = append(out, r)
	}
	return out
}
