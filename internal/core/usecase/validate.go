package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/grantpilot/ragengine/internal/core/domain"
	"github.com/grantpilot/ragengine/internal/core/ports"
)

const (
	confidenceWarnBelow   = 0.6
	groundednessWarnBelow = 0.8
	relevanceWarnBelow    = 0.7
)

type ValidateUseCase struct {
	embedder ports.EmbeddingModel
	topics   map[string][]string
}

// NewValidateUseCase wires the validation orchestrator. topics overrides the
// completeness table; nil selects the built-in one.
func NewValidateUseCase(embedder ports.EmbeddingModel, topics map[string][]string) *ValidateUseCase {
	if topics == nil {
		topics = DefaultSectionTopics()
	}
	return &ValidateUseCase{embedder: embedder, topics: topics}
}

// Validate runs the four quality checks concurrently and aggregates one
// report. It never calls the generator or the search adapters.
func (uc *ValidateUseCase) Validate(
	ctx context.Context,
	query, response string,
	sources []domain.RetrievalResult,
	params domain.ValidationParams,
) (*domain.ValidationResult, error) {
	if strings.TrimSpace(response) == "" {
		return nil, domain.WrapError(domain.ErrInvalidParams, "validate", errors.New("response is empty"))
	}

	idealWords := params.IdealWordCount
	if idealWords <= 0 {
		idealWords = idealWordCountFor(params.SectionType)
	}

	var (
		wg sync.WaitGroup

		confidence float64

		groundedness      float64
		scorableSentences int
		groundednessErr   error

		missing []string

		relevance    float64
		relevanceErr error
	)

	wg.Add(4)
	go func() {
		defer wg.Done()
		confidence = computeConfidence(sources, response, idealWords)
	}()
	go func() {
		defer wg.Done()
		groundedness, scorableSentences, groundednessErr = computeGroundedness(ctx, uc.embedder, response, concatSourceText(sources))
	}()
	go func() {
		defer wg.Done()
		missing = missingTopics(uc.topics, params.SectionType, response)
	}()
	go func() {
		defer wg.Done()
		relevance, relevanceErr = uc.queryRelevance(ctx, query, response)
	}()
	wg.Wait()

	if groundednessErr != nil {
		return nil, fmt.Errorf("groundedness check: %w", groundednessErr)
	}
	if relevanceErr != nil {
		return nil, fmt.Errorf("relevance check: %w", relevanceErr)
	}

	var issues []domain.QualityIssue
	if confidence < confidenceWarnBelow {
		issues = append(issues, domain.QualityIssue{
			Severity: domain.SeverityWarning,
			Message:  fmt.Sprintf("confidence %.2f is below %.2f", confidence, confidenceWarnBelow),
		})
	}
	// Zero scorable sentences means groundedness is unknown, not zero.
	if scorableSentences > 0 && groundedness < groundednessWarnBelow {
		issues = append(issues, domain.QualityIssue{
			Severity: domain.SeverityWarning,
			Message:  fmt.Sprintf("groundedness %.2f is below %.2f", groundedness, groundednessWarnBelow),
		})
	}
	if relevance < relevanceWarnBelow {
		issues = append(issues, domain.QualityIssue{
			Severity: domain.SeverityWarning,
			Message:  fmt.Sprintf("relevance %.2f is below %.2f", relevance, relevanceWarnBelow),
		})
	}
	for _, topic := range missing {
		issues = append(issues, domain.QualityIssue{
			Severity: domain.SeverityInfo,
			Message:  fmt.Sprintf("expected topic not covered: %s", topic),
		})
	}

	result := domain.NewValidationResult(confidence, groundedness, relevance, issues)
	return &result, nil
}

// queryRelevance is the cosine similarity between the query and response
// embeddings, clamped to [0,1].
func (uc *ValidateUseCase) queryRelevance(ctx context.Context, query, response string) (float64, error) {
	if strings.TrimSpace(query) == "" {
		return 0, nil
	}
	vectors, err := uc.embedder.Embed(ctx, []string{query, response})
	if err != nil {
		return 0, fmt.Errorf("embed query/response: %w", err)
	}
	if len(vectors) != 2 {
		return 0, fmt.Errorf("embed query/response: got %d vectors for 2 inputs", len(vectors))
	}
	return domain.ClampScore(cosineSimilarity(vectors[0], vectors[1])), nil
}

func concatSourceText(sources []domain.RetrievalResult) string {
	var b strings.Builder
	for _, src := range sources {
		if src.Chunk.Text == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString(src.Chunk.Text)
	}
	return b.String()
}
