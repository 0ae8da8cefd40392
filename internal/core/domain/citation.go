package domain

// CitationStyle is a closed enum; unknown values fail with ErrInvalidParams.
type CitationStyle string

const (
	StyleNumbered CitationStyle = "numbered"
	StyleFootnote CitationStyle = "footnote"
	StyleAPA      CitationStyle = "apa"
)

// Valid reports whether the style is a member of the closed enum.
func (s CitationStyle) Valid() bool {
	switch s {
	case StyleNumbered, StyleFootnote, StyleAPA:
		return true
	default:
		return false
	}
}

// Source describes one cited source for display purposes.
type Source struct {
	Filename       string  `json:"filename"`
	DocumentType   string  `json:"document_type,omitempty"`
	Year           int     `json:"year,omitempty"`
	Excerpt        string  `json:"excerpt,omitempty"`
	RelevanceScore float64 `json:"relevance_score"`
}

// CitationResult is the outcome of ProcessCitations. CitationMap keys are a
// subset of [1, len(sources)]; InvalidCitations holds out-of-range numbers in
// order of first appearance.
type CitationResult struct {
	FormattedText    string         `json:"formatted_text"`
	Bibliography     []string       `json:"bibliography"`
	CitationMap      map[int]Source `json:"citation_map"`
	InvalidCitations []int          `json:"invalid_citations"`
}
