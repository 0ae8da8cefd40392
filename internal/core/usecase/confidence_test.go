package usecase

import (
	"math"
	"testing"

	"github.com/grantpilot/ragengine/internal/core/domain"
)

func TestComputeConfidenceNoSources(t *testing.T) {
	if got := computeConfidence(nil, "any response", 500); got != 0 {
		t.Fatalf("expected 0 with no sources, got %v", got)
	}
}

func TestComputeConfidenceBlendsComponents(t *testing.T) {
	sources := []domain.RetrievalResult{
		{Chunk: domain.Chunk{ID: "c1"}, FinalScore: 0.8},
		{Chunk: domain.Chunk{ID: "c2"}, FinalScore: 0.6},
	}
	// avg 0.7, count 2/5, agreement 1 (no embeddings), length exact ideal.
	got := computeConfidence(sources, "one two three four five", 5)
	want := 0.4*0.7 + 0.2*0.4 + 0.2*1 + 0.2*1
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestSourceAgreement(t *testing.T) {
	fewEmbedded := []domain.RetrievalResult{
		{Chunk: domain.Chunk{ID: "c1", Embedding: []float32{1, 0}}},
		{Chunk: domain.Chunk{ID: "c2"}},
	}
	if got := sourceAgreement(fewEmbedded); got != 1 {
		t.Fatalf("expected 1 with fewer than two embedded sources, got %v", got)
	}

	orthogonal := []domain.RetrievalResult{
		{Chunk: domain.Chunk{ID: "c1", Embedding: []float32{1, 0}}},
		{Chunk: domain.Chunk{ID: "c2", Embedding: []float32{0, 1}}},
	}
	if got := sourceAgreement(orthogonal); got != 0 {
		t.Fatalf("expected 0 for orthogonal embeddings, got %v", got)
	}

	identical := []domain.RetrievalResult{
		{Chunk: domain.Chunk{ID: "c1", Embedding: []float32{1, 1}}},
		{Chunk: domain.Chunk{ID: "c2", Embedding: []float32{1, 1}}},
	}
	if got := sourceAgreement(identical); math.Abs(got-1) > 1e-9 {
		t.Fatalf("expected 1 for identical embeddings, got %v", got)
	}
}

func TestTriangularLengthScore(t *testing.T) {
	cases := []struct {
		words, ideal int
		want         float64
	}{
		{500, 500, 1},
		{250, 500, 0.5},
		{750, 500, 0.5},
		{1000, 500, 0},
		{1500, 500, 0},
		{0, 500, 0},
	}
	for _, tc := range cases {
		if got := triangularLengthScore(tc.words, tc.ideal); math.Abs(got-tc.want) > 1e-9 {
			t.Fatalf("triangularLengthScore(%d, %d) = %v, want %v", tc.words, tc.ideal, got, tc.want)
		}
	}
}

func TestIdealWordCountFor(t *testing.T) {
	cases := map[string]int{
		SectionOrganizationalCapacity: 400,
		SectionProgramDescription:     600,
		SectionImpactOutcomes:         500,
		SectionBudgetNarrative:        300,
		"Cover Letter":                500,
		"":                            500,
	}
	for section, want := range cases {
		if got := idealWordCountFor(section); got != want {
			t.Fatalf("idealWordCountFor(%q) = %d, want %d", section, got, want)
		}
	}
}
