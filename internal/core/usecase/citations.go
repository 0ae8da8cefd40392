package usecase

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/grantpilot/ragengine/internal/core/domain"
)

const excerptMaxRunes = 160

var citationPattern = regexp.MustCompile(`\[(\d+)\]`)

var superscriptDigits = []rune("⁰¹²³⁴⁵⁶⁷⁸⁹")

type CitationUseCase struct{}

func NewCitationUseCase() *CitationUseCase {
	return &CitationUseCase{}
}

// ProcessCitations extracts [N] markers left-to-right, validates them against
// the source list, reformats the text for the requested style, and builds a
// bibliography. Invalid numbers are recorded and left untouched in the text.
func (uc *CitationUseCase) ProcessCitations(
	ctx context.Context,
	response string,
	sources []domain.RetrievalResult,
	style domain.CitationStyle,
) (*domain.CitationResult, error) {
	if !style.Valid() {
		return nil, domain.WrapError(domain.ErrInvalidParams, "process citations", fmt.Errorf("unknown citation style %q", style))
	}
	if err := ctx.Err(); err != nil {
		return nil, domain.WrapError(domain.ErrTimeout, "process citations", err)
	}

	citationMap := make(map[int]domain.Source)
	invalid := make([]int, 0)
	seenInvalid := make(map[int]bool)

	for _, match := range citationPattern.FindAllStringSubmatch(response, -1) {
		n, err := strconv.Atoi(match[1])
		if err != nil {
			continue
		}
		if n < 1 || n > len(sources) {
			if !seenInvalid[n] {
				seenInvalid[n] = true
				invalid = append(invalid, n)
			}
			continue
		}
		if _, ok := citationMap[n]; !ok {
			citationMap[n] = sourceEntry(sources[n-1])
		}
	}

	return &domain.CitationResult{
		FormattedText:    formatCitations(response, style, citationMap),
		Bibliography:     buildBibliography(citationMap, style),
		CitationMap:      citationMap,
		InvalidCitations: invalid,
	}, nil
}

func sourceEntry(result domain.RetrievalResult) domain.Source {
	meta := result.Chunk.Metadata
	return domain.Source{
		Filename:       meta.Filename,
		DocumentType:   meta.DocumentType,
		Year:           meta.Year,
		Excerpt:        truncateRunes(result.Chunk.Text, excerptMaxRunes),
		RelevanceScore: domain.ClampScore(result.FinalScore),
	}
}

// formatCitations rewrites valid markers per style. Numbered leaves the text
// untouched; invalid markers stay as-is in every style.
func formatCitations(response string, style domain.CitationStyle, citationMap map[int]domain.Source) string {
	if style == domain.StyleNumbered {
		return response
	}
	return citationPattern.ReplaceAllStringFunc(response, func(match string) string {
		n, err := strconv.Atoi(strings.Trim(match, "[]"))
		if err != nil {
			return match
		}
		source, ok := citationMap[n]
		if !ok {
			return match
		}
		switch style {
		case domain.StyleFootnote:
			return toSuperscript(n)
		case domain.StyleAPA:
			return "(" + organizationLabel(source.Filename) + ", " + apaYear(source.Year) + ")"
		default:
			return match
		}
	})
}

// buildBibliography emits one line per distinct valid citation number,
// ascending.
func buildBibliography(citationMap map[int]domain.Source, style domain.CitationStyle) []string {
	out := make([]string, 0, len(citationMap))
	for n := 1; ; n++ {
		if len(out) == len(citationMap) {
			break
		}
		source, ok := citationMap[n]
		if !ok {
			continue
		}
		out = append(out, bibliographyLine(n, source, style))
	}
	return out
}

func bibliographyLine(n int, source domain.Source, style domain.CitationStyle) string {
	year := apaYear(source.Year)
	switch style {
	case domain.StyleFootnote:
		if source.DocumentType != "" {
			return fmt.Sprintf("%s %s (%s, %s)", toSuperscript(n), source.Filename, source.DocumentType, year)
		}
		return fmt.Sprintf("%s %s (%s)", toSuperscript(n), source.Filename, year)
	case domain.StyleAPA:
		return fmt.Sprintf("%s (%s). %s.", organizationLabel(source.Filename), year, source.Filename)
	default:
		if source.DocumentType != "" {
			return fmt.Sprintf("[%d] %s (%s, %s)", n, source.Filename, source.DocumentType, year)
		}
		return fmt.Sprintf("[%d] %s (%s)", n, source.Filename, year)
	}
}

// organizationLabel derives an APA-style organization name from a filename:
// extension stripped, separators spaced, words title-cased.
func organizationLabel(filename string) string {
	stem := filename
	if idx := strings.LastIndex(stem, "."); idx > 0 {
		stem = stem[:idx]
	}
	stem = strings.NewReplacer("_", " ", "-", " ").Replace(stem)
	words := strings.Fields(stem)
	if len(words) == 0 {
		return "Unknown"
	}
	for i, w := range words {
		runes := []rune(w)
		words[i] = strings.ToUpper(string(runes[0])) + string(runes[1:])
	}
	return strings.Join(words, " ")
}

func apaYear(year int) string {
	if year <= 0 {
		return "n.d."
	}
	return strconv.Itoa(year)
}

func toSuperscript(n int) string {
	digits := strconv.Itoa(n)
	var b strings.Builder
	for _, d := range digits {
		b.WriteRune(superscriptDigits[d-'0'])
	}
	return b.String()
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return strings.TrimSpace(string(runes[:limit])) + "…"
}
