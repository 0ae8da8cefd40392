package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/grantpilot/ragengine/internal/core/domain"
)

// embedderByContent returns [0,1] for texts containing any off-topic marker
// and [1,0] for everything else, so cosine against [1,0] source text is 1 or 0.
func embedderByContent(offMarkers ...string) *stubEmbedder {
	return &stubEmbedder{fn: func(text string) []float32 {
		for _, marker := range offMarkers {
			if strings.Contains(text, marker) {
				return []float32{0, 1}
			}
		}
		return []float32{1, 0}
	}}
}

func strongSources(n int) []domain.RetrievalResult {
	out := make([]domain.RetrievalResult, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, domain.RetrievalResult{
			Chunk: domain.Chunk{
				ID:   "c" + string(rune('0'+i)),
				Text: "source material about program outcomes and attendance",
				Metadata: domain.ChunkMetadata{
					DocumentID: "doc-" + string(rune('0'+i)),
				},
			},
			FinalScore: 1.0,
		})
	}
	return out
}

func TestValidateCleanResponse(t *testing.T) {
	response := "The program served two hundred forty students this year. Attendance improved strongly across all participating school sites."
	uc := NewValidateUseCase(embedderByContent(), nil)

	got, err := uc.Validate(context.Background(), "program results", response, strongSources(5), domain.ValidationParams{
		IdealWordCount: len(strings.Fields(response)),
	})
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if got.Confidence != 1.0 {
		t.Fatalf("expected confidence 1.0, got %v", got.Confidence)
	}
	if got.Groundedness != 1.0 {
		t.Fatalf("expected groundedness 1.0, got %v", got.Groundedness)
	}
	if got.Relevance != 1.0 {
		t.Fatalf("expected relevance 1.0, got %v", got.Relevance)
	}
	if len(got.Issues) != 0 {
		t.Fatalf("expected no issues, got %v", got.Issues)
	}
	if got.NeedsReview {
		t.Fatalf("did not expect needs review")
	}
}

func TestValidateLowConfidenceWarns(t *testing.T) {
	uc := NewValidateUseCase(embedderByContent(), nil)
	sources := []domain.RetrievalResult{
		{Chunk: domain.Chunk{ID: "c1", Text: "weak source"}, FinalScore: 0.1},
	}

	got, err := uc.Validate(context.Background(), "query", "This response has about eight words total here.", sources, domain.ValidationParams{})
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if !got.NeedsReview {
		t.Fatalf("expected needs review")
	}
	found := false
	for _, issue := range got.Issues {
		if issue.Severity == domain.SeverityWarning && strings.Contains(issue.Message, "confidence") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a confidence warning, got %v", got.Issues)
	}
}

func TestValidateUngroundedSentenceWarns(t *testing.T) {
	response := "The program served two hundred forty students this year. The hallucinated claim about lunar funding appears nowhere in sources."
	uc := NewValidateUseCase(embedderByContent("hallucinated"), nil)

	got, err := uc.Validate(context.Background(), "program results", response, strongSources(5), domain.ValidationParams{
		IdealWordCount: len(strings.Fields(response)),
	})
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if got.Groundedness != 0.5 {
		t.Fatalf("expected groundedness 0.5, got %v", got.Groundedness)
	}
	if !got.NeedsReview {
		t.Fatalf("expected needs review")
	}
	found := false
	for _, issue := range got.Issues {
		if issue.Severity == domain.SeverityWarning && strings.Contains(issue.Message, "groundedness") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a groundedness warning, got %v", got.Issues)
	}
}

func TestValidateNoScorableSentencesSkipsGroundednessWarning(t *testing.T) {
	uc := NewValidateUseCase(embedderByContent(), nil)

	got, err := uc.Validate(context.Background(), "query", "Yes. Agreed. Done now.", strongSources(5), domain.ValidationParams{})
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if got.Groundedness != 0 {
		t.Fatalf("expected groundedness 0 when unknown, got %v", got.Groundedness)
	}
	for _, issue := range got.Issues {
		if strings.Contains(issue.Message, "groundedness") {
			t.Fatalf("did not expect a groundedness issue, got %v", got.Issues)
		}
	}
}

func TestValidateMissingTopicsAreInfoOnly(t *testing.T) {
	response := "The program served two hundred forty students this year. Attendance improved strongly across all participating school sites."
	uc := NewValidateUseCase(embedderByContent(), nil)

	got, err := uc.Validate(context.Background(), "budget question", response, strongSources(5), domain.ValidationParams{
		SectionType:    SectionBudgetNarrative,
		IdealWordCount: len(strings.Fields(response)),
	})
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if len(got.Issues) != 5 {
		t.Fatalf("expected 5 missing-topic issues, got %v", got.Issues)
	}
	for _, issue := range got.Issues {
		if issue.Severity != domain.SeverityInfo {
			t.Fatalf("expected info severity, got %v", issue)
		}
	}
	if got.NeedsReview {
		t.Fatalf("info issues alone must not trip needs review")
	}
}

func TestValidateCustomTopicTable(t *testing.T) {
	topics := map[string][]string{"Letter of Intent": {"mission"}}
	uc := NewValidateUseCase(embedderByContent(), topics)

	response := "The program served two hundred forty students this year and documented every result carefully."
	got, err := uc.Validate(context.Background(), "q", response, strongSources(5), domain.ValidationParams{
		SectionType:    "Letter of Intent",
		IdealWordCount: len(strings.Fields(response)),
	})
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if len(got.Issues) != 1 || !strings.Contains(got.Issues[0].Message, "mission") {
		t.Fatalf("expected one missing-topic issue for mission, got %v", got.Issues)
	}
}

func TestValidateEmptyResponse(t *testing.T) {
	uc := NewValidateUseCase(embedderByContent(), nil)

	_, err := uc.Validate(context.Background(), "query", "   ", nil, domain.ValidationParams{})
	if !domain.IsKind(err, domain.ErrInvalidParams) {
		t.Fatalf("expected ErrInvalidParams, got %v", err)
	}
}

func TestValidateEmbedderErrorPropagates(t *testing.T) {
	uc := NewValidateUseCase(&stubEmbedder{err: errors.New("model down")}, nil)

	_, err := uc.Validate(context.Background(), "query", "A perfectly ordinary sentence with enough words.", strongSources(2), domain.ValidationParams{})
	if err == nil {
		t.Fatalf("expected error")
	}
}
