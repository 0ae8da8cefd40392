package usecase

import (
	"context"
	"errors"
	"testing"
)

func TestSplitSentences(t *testing.T) {
	got := splitSentences("First sentence here. Second one!\nThird line? Tail without terminator")
	want := []string{"First sentence here", "Second one", "Third line", "Tail without terminator"}
	if len(got) != len(want) {
		t.Fatalf("expected %d sentences, got %d: %v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("sentence %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}

func TestIsStructuralSentence(t *testing.T) {
	cases := []struct {
		sentence string
		want     bool
	}{
		{"Yes", true},
		{"We agree on that", false},
		{"However, this was very good", true},
		{"However, this was a very good result", false},
		{"As a result, totals rose", true},
		{"The program served two hundred forty students", false},
	}
	for _, tc := range cases {
		if got := isStructuralSentence(tc.sentence); got != tc.want {
			t.Fatalf("isStructuralSentence(%q) = %v, want %v", tc.sentence, got, tc.want)
		}
	}
}

func TestComputeGroundednessRatio(t *testing.T) {
	embedder := embedderByContent("unsupported")
	response := "The program served two hundred forty students. An unsupported claim about lunar funding is included here."

	score, scorable, err := computeGroundedness(context.Background(), embedder, response, "program attendance records")
	if err != nil {
		t.Fatalf("computeGroundedness() error = %v", err)
	}
	if scorable != 2 {
		t.Fatalf("expected 2 scorable sentences, got %d", scorable)
	}
	if score != 0.5 {
		t.Fatalf("expected ratio 0.5, got %v", score)
	}
}

func TestComputeGroundednessNoScorableSentences(t *testing.T) {
	score, scorable, err := computeGroundedness(context.Background(), embedderByContent(), "Yes. No. Maybe so.", "sources")
	if err != nil {
		t.Fatalf("computeGroundedness() error = %v", err)
	}
	if score != 0 || scorable != 0 {
		t.Fatalf("expected (0, 0) for structural-only response, got (%v, %d)", score, scorable)
	}
}

func TestComputeGroundednessEmptySourceText(t *testing.T) {
	score, scorable, err := computeGroundedness(context.Background(), embedderByContent(), "A sentence with enough words to score.", "  ")
	if err != nil {
		t.Fatalf("computeGroundedness() error = %v", err)
	}
	if score != 0 || scorable != 0 {
		t.Fatalf("expected (0, 0) without source text, got (%v, %d)", score, scorable)
	}
}

func TestComputeGroundednessEmbedError(t *testing.T) {
	embedder := &stubEmbedder{err: errors.New("model down")}
	_, _, err := computeGroundedness(context.Background(), embedder, "A sentence with enough words to score.", "sources")
	if err == nil {
		t.Fatalf("expected error")
	}
}
