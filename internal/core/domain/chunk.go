package domain

// ChunkMetadata carries the document attributes attached to a chunk by the
// ingestion pipeline. The engine only reads it.
type ChunkMetadata struct {
	DocumentID   string   `json:"document_id"`
	Filename     string   `json:"filename"`
	DocumentType string   `json:"document_type,omitempty"`
	Year         int      `json:"year,omitempty"`
	Programs     []string `json:"programs,omitempty"`
	Tags         []string `json:"tags,omitempty"`
	Outcome      string   `json:"outcome,omitempty"`
}

// Chunk is an immutable fragment of a source document with its embedding.
type Chunk struct {
	ID        string        `json:"id"`
	Text      string        `json:"text"`
	Embedding []float32     `json:"embedding,omitempty"`
	Metadata  ChunkMetadata `json:"metadata"`
}

// SearchFilter constrains both search adapters identically. The zero value
// means "no constraint"; an empty slice field likewise.
type SearchFilter struct {
	DocumentTypes      []string `json:"document_types,omitempty"`
	Years              []int    `json:"years,omitempty"`
	YearFrom           int      `json:"year_from,omitempty"`
	YearTo             int      `json:"year_to,omitempty"`
	Programs           []string `json:"programs,omitempty"`
	Outcomes           []string `json:"outcomes,omitempty"`
	ExcludeDocumentIDs []string `json:"exclude_document_ids,omitempty"`
}

// IsZero reports whether the filter imposes no constraint at all.
func (f SearchFilter) IsZero() bool {
	return len(f.DocumentTypes) == 0 &&
		len(f.Years) == 0 &&
		f.YearFrom == 0 &&
		f.YearTo == 0 &&
		len(f.Programs) == 0 &&
		len(f.Outcomes) == 0 &&
		len(f.ExcludeDocumentIDs) == 0
}

// ScoredChunk is what a search adapter returns: a chunk plus the adapter's
// own relevance score, normalized to [0,1].
type ScoredChunk struct {
	Chunk Chunk   `json:"chunk"`
	Score float64 `json:"score"`
}
