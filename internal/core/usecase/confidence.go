package usecase

import (
	"strings"

	"github.com/grantpilot/ragengine/internal/core/domain"
)

const (
	weightSourceRelevance = 0.4
	weightSourceCount     = 0.2
	weightSourceAgreement = 0.2
	weightResponseLength  = 0.2

	adequateSourceCount    = 5
	defaultIdealWordCount  = 500
	sectionCapacityWords   = 400
	sectionProgramWords    = 600
	sectionImpactWords     = 500
	sectionBudgetWords     = 300
)

// idealWordCountFor returns the target response length for a section type.
func idealWordCountFor(sectionType string) int {
	switch sectionType {
	case SectionOrganizationalCapacity:
		return sectionCapacityWords
	case SectionProgramDescription:
		return sectionProgramWords
	case SectionImpactOutcomes:
		return sectionImpactWords
	case SectionBudgetNarrative:
		return sectionBudgetWords
	default:
		return defaultIdealWordCount
	}
}

// computeConfidence blends four normalized sub-scores: average source
// relevance (0.4), source count adequacy (0.2), pairwise source agreement
// (0.2), and response-length appropriateness (0.2).
func computeConfidence(sources []domain.RetrievalResult, response string, idealWords int) float64 {
	if len(sources) == 0 {
		return 0
	}

	var relevanceSum float64
	for _, src := range sources {
		relevanceSum += domain.ClampScore(src.FinalScore)
	}
	avgRelevance := relevanceSum / float64(len(sources))

	countScore := float64(len(sources)) / adequateSourceCount
	if countScore > 1 {
		countScore = 1
	}

	agreement := sourceAgreement(sources)
	lengthScore := triangularLengthScore(len(strings.Fields(response)), idealWords)

	return domain.ClampScore(
		weightSourceRelevance*avgRelevance +
			weightSourceCount*countScore +
			weightSourceAgreement*agreement +
			weightResponseLength*lengthScore,
	)
}

// sourceAgreement averages pairwise cosine similarity across the source
// embeddings. Fewer than two embedded sources cannot disagree, so the score
// is 1. Negative cosines clamp to 0.
func sourceAgreement(sources []domain.RetrievalResult) float64 {
	embedded := make([][]float32, 0, len(sources))
	for _, src := range sources {
		if len(src.Chunk.Embedding) > 0 {
			embedded = append(embedded, src.Chunk.Embedding)
		}
	}
	if len(embedded) < 2 {
		return 1
	}

	var sum float64
	pairs := 0
	for i := 0; i < len(embedded); i++ {
		for j := i + 1; j < len(embedded); j++ {
			sum += domain.ClampScore(cosineSimilarity(embedded[i], embedded[j]))
			pairs++
		}
	}
	return sum / float64(pairs)
}

// triangularLengthScore peaks at the ideal word count and decays linearly to
// 0 at zero words and at twice the ideal.
func triangularLengthScore(words, ideal int) float64 {
	if ideal <= 0 {
		ideal = defaultIdealWordCount
	}
	if words <= 0 {
		return 0
	}
	deviation := float64(words-ideal) / float64(ideal)
	if deviation < 0 {
		deviation = -deviation
	}
	return domain.ClampScore(1 - deviation)
}
