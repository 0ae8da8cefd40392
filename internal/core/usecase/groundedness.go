package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/grantpilot/ragengine/internal/core/ports"
)

const (
	groundedSimilarityThreshold = 0.5

	// Sentences below these word counts are treated as structural filler and
	// excluded from groundedness scoring.
	minScorableWords           = 4
	minScorableTransitionWords = 6
)

// transitionOpeners are connective sentence openers. A short sentence that
// starts with one carries no checkable content of its own.
var transitionOpeners = []string{
	"however",
	"moreover",
	"furthermore",
	"additionally",
	"in addition",
	"in conclusion",
	"in summary",
	"finally",
	"overall",
	"therefore",
	"thus",
	"meanwhile",
	"nonetheless",
	"as a result",
}

// computeGroundedness embeds each scorable response sentence and compares it
// against the embedding of the concatenated source text. A sentence counts as
// grounded at cosine similarity >= 0.5. Returns the grounded ratio plus the
// number of scored sentences; zero scorable sentences yields (0, 0, nil) and
// callers must treat that as "unknown", not "ungrounded".
func computeGroundedness(
	ctx context.Context,
	embedder ports.EmbeddingModel,
	response string,
	sourceText string,
) (score float64, scorable int, err error) {
	sentences := scorableSentences(response)
	if len(sentences) == 0 || strings.TrimSpace(sourceText) == "" {
		return 0, 0, nil
	}

	// One batch call: all sentences plus the combined source text last.
	vectors, err := embedder.Embed(ctx, append(sentences, sourceText))
	if err != nil {
		return 0, 0, fmt.Errorf("embed sentences: %w", err)
	}
	if len(vectors) != len(sentences)+1 {
		return 0, 0, fmt.Errorf("embed sentences: got %d vectors for %d inputs", len(vectors), len(sentences)+1)
	}

	sourceVector := vectors[len(vectors)-1]
	grounded := 0
	for _, v := range vectors[:len(sentences)] {
		if cosineSimilarity(v, sourceVector) >= groundedSimilarityThreshold {
			grounded++
		}
	}
	return float64(grounded) / float64(len(sentences)), len(sentences), nil
}

// scorableSentences splits the response into sentences and drops structural
// ones per isStructuralSentence.
func scorableSentences(response string) []string {
	var out []string
	for _, s := range splitSentences(response) {
		if !isStructuralSentence(s) {
			out = append(out, s)
		}
	}
	return out
}

// splitSentences breaks text on '.', '!', '?', and newlines. Good enough for
// generated prose; abbreviation handling is deliberately out of scope.
func splitSentences(text string) []string {
	var out []string
	var b strings.Builder
	flush := func() {
		if s := strings.TrimSpace(b.String()); s != "" {
			out = append(out, s)
		}
		b.Reset()
	}
	for _, r := range text {
		switch r {
		case '.', '!', '?', '\n':
			flush()
		default:
			b.WriteRune(r)
		}
	}
	flush()
	return out
}

// isStructuralSentence flags transitional filler: anything under four words,
// or a sentence opening with a transition connective that is under six words.
func isStructuralSentence(sentence string) bool {
	words := len(strings.Fields(sentence))
	if words < minScorableWords {
		return true
	}
	lower := strings.ToLower(sentence)
	for _, opener := range transitionOpeners {
		if strings.HasPrefix(lower, opener) && words < minScorableTransitionWords {
			return true
		}
	}
	return false
}
