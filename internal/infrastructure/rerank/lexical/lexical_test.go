package lexical

import (
	"context"
	"testing"

	"github.com/grantpilot/ragengine/internal/core/domain"
)

func candidate(id, docID, filename, text string, score float64) domain.RetrievalResult {
	return domain.RetrievalResult{
		Chunk: domain.Chunk{
			ID:   id,
			Text: text,
			Metadata: domain.ChunkMetadata{
				DocumentID: docID,
				Filename:   filename,
			},
		},
		FinalScore: score,
	}
}

func TestRerankPromotesLexicalMatch(t *testing.T) {
	candidates := []domain.RetrievalResult{
		candidate("c1", "doc-1", "generic.pdf", "unrelated narrative text", 0.90),
		candidate("c2", "doc-2", "impact_report.pdf", "impact report with measured outcomes", 0.95),
	}

	out := NewReranker().Rerank(context.Background(), "impact report", candidates, 2)
	if len(out) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(out))
	}
	if out[0].Chunk.ID != "c2" {
		t.Fatalf("expected c2 first after rerank, got %s", out[0].Chunk.ID)
	}
	// Full lexical match maps to the top of the span, no match to the bottom.
	if out[0].FinalScore != 0.95 || out[1].FinalScore != 0.90 {
		t.Fatalf("expected scores remapped into [0.90, 0.95], got %v, %v",
			out[0].FinalScore, out[1].FinalScore)
	}
}

// Rescored head entries stay within their original score span, so a
// score-sorted input stays non-increasing across the head/tail boundary.
func TestRerankKeepsSortedInputMonotone(t *testing.T) {
	candidates := []domain.RetrievalResult{
		candidate("c1", "doc-1", "a.pdf", "unrelated first chunk", 0.9),
		candidate("c2", "doc-2", "budget_narrative.pdf", "budget narrative with totals", 0.85),
		candidate("c3", "doc-3", "c.pdf", "no match here", 0.8),
		candidate("c4", "doc-4", "d.pdf", "tail entry", 0.7),
	}

	out := NewReranker().Rerank(context.Background(), "budget narrative", candidates, 3)
	if out[0].Chunk.ID != "c2" {
		t.Fatalf("expected lexical match promoted, got %s first", out[0].Chunk.ID)
	}
	for i := 1; i < len(out); i++ {
		if out[i].FinalScore > out[i-1].FinalScore {
			t.Fatalf("position %d score %v exceeds position %d score %v",
				i, out[i].FinalScore, i-1, out[i-1].FinalScore)
		}
	}
	for _, c := range out[:3] {
		if c.FinalScore < 0.8 || c.FinalScore > 0.9 {
			t.Fatalf("expected head score within [0.8, 0.9], got %v", c.FinalScore)
		}
	}
}

func TestRerankKeepsTailOrder(t *testing.T) {
	candidates := []domain.RetrievalResult{
		candidate("c1", "doc-1", "a.pdf", "budget plan", 0.9),
		candidate("c2", "doc-2", "b.pdf", "budget narrative", 0.8),
		candidate("c3", "doc-3", "c.pdf", "untouched tail", 0.7),
		candidate("c4", "doc-4", "d.pdf", "also untouched", 0.6),
	}

	out := NewReranker().Rerank(context.Background(), "budget", candidates, 2)
	if len(out) != 4 {
		t.Fatalf("expected 4 candidates, got %d", len(out))
	}
	if out[2].Chunk.ID != "c3" || out[3].Chunk.ID != "c4" {
		t.Fatalf("expected tail order preserved, got %s, %s", out[2].Chunk.ID, out[3].Chunk.ID)
	}
}

func TestRerankHandlesEmptyInput(t *testing.T) {
	out := NewReranker().Rerank(context.Background(), "anything", nil, 10)
	if len(out) != 0 {
		t.Fatalf("expected empty output, got %d", len(out))
	}
}

func TestRerankDeterministicTieBreak(t *testing.T) {
	candidates := []domain.RetrievalResult{
		candidate("c2", "doc-b", "x.pdf", "same text", 0.5),
		candidate("c1", "doc-a", "y.pdf", "same text", 0.5),
	}

	out := NewReranker().Rerank(context.Background(), "nomatch", candidates, 2)
	if out[0].Chunk.Metadata.DocumentID != "doc-a" {
		t.Fatalf("expected doc-a first on tie, got %s", out[0].Chunk.Metadata.DocumentID)
	}
}
