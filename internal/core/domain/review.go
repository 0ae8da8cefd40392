package domain

import "time"

// ReviewRequest is the event published when a validated answer needs human
// review. Carries enough context for a reviewer to pull up the answer and
// its sources.
type ReviewRequest struct {
	ID                string         `json:"id"`
	Query             string         `json:"query"`
	SectionType       string         `json:"section_type,omitempty"`
	Confidence        float64        `json:"confidence"`
	Groundedness      float64        `json:"groundedness"`
	Relevance         float64        `json:"relevance"`
	Issues            []QualityIssue `json:"issues"`
	SourceDocumentIDs []string       `json:"source_document_ids,omitempty"`
	CreatedAt         time.Time      `json:"created_at"`
}
