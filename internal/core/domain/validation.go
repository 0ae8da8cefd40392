package domain

// Severity grades a quality issue. Only warnings and errors trip NeedsReview.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// QualityIssue is a single finding produced by a validation check.
type QualityIssue struct {
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}

// ValidationParams configures a Validate call. SectionType selects the
// completeness topic table and the ideal word count; IdealWordCount
// overrides the table value when positive.
type ValidationParams struct {
	SectionType    string `json:"section_type,omitempty"`
	IdealWordCount int    `json:"ideal_word_count,omitempty"`
}

// ValidationResult is the aggregated report from Validate. NeedsReview is
// always derived from Issues, never set independently.
type ValidationResult struct {
	Confidence   float64        `json:"confidence"`
	Groundedness float64        `json:"groundedness"`
	Relevance    float64        `json:"relevance"`
	Issues       []QualityIssue `json:"issues"`
	NeedsReview  bool           `json:"needs_review"`
}

// NewValidationResult builds a result with NeedsReview derived from issues.
func NewValidationResult(confidence, groundedness, relevance float64, issues []QualityIssue) ValidationResult {
	return ValidationResult{
		Confidence:   ClampScore(confidence),
		Groundedness: ClampScore(groundedness),
		Relevance:    ClampScore(relevance),
		Issues:       issues,
		NeedsReview:  AnyNeedsReview(issues),
	}
}

// AnyNeedsReview reports whether any issue is warning or error severity.
func AnyNeedsReview(issues []QualityIssue) bool {
	for _, issue := range issues {
		if issue.Severity == SeverityWarning || issue.Severity == SeverityError {
			return true
		}
	}
	return false
}
