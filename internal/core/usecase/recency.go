package usecase

import "github.com/grantpilot/ragengine/internal/core/domain"

// recencyMultiplier maps document age in years to the base score multiplier.
func recencyMultiplier(yearsOld int) float64 {
	switch {
	case yearsOld <= 0:
		return 1.00
	case yearsOld == 1:
		return 0.95
	case yearsOld == 2:
		return 0.90
	default:
		return 0.85
	}
}

// applyRecency sets FinalScore = CombinedScore × effective multiplier and
// re-sorts. The effective multiplier interpolates between 1.0 and the table
// value by recencyWeight, so weight 0 leaves the combined order untouched.
// Chunks without a year (0) are treated as age-unknown and not penalized.
func applyRecency(results []domain.RetrievalResult, recencyWeight float64, currentYear int) []domain.RetrievalResult {
	for i := range results {
		multiplier := 1.0
		if year := results[i].Chunk.Metadata.Year; year > 0 {
			yearsOld := currentYear - year
			if yearsOld < 0 {
				yearsOld = 0
			}
			multiplier = 1.0 + (recencyMultiplier(yearsOld)-1.0)*recencyWeight
		}
		results[i].FinalScore = domain.ClampScore(results[i].CombinedScore * multiplier)
	}
	sortByFinalScore(results)
	return results
}
