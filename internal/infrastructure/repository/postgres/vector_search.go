package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pgvector/pgvector-go"

	"github.com/grantpilot/ragengine/internal/core/domain"
)

// VectorSearch is the dense search adapter over pgvector. Cosine distance
// maps to similarity as 1 - distance, clamped to [0,1].
type VectorSearch struct {
	db *sql.DB
}

func NewVectorSearch(db *sql.DB) *VectorSearch {
	return &VectorSearch{db: db}
}

func (s *VectorSearch) Search(
	ctx context.Context,
	queryVector []float32,
	topK int,
	filter domain.SearchFilter,
) ([]domain.ScoredChunk, error) {
	if len(queryVector) == 0 || topK <= 0 {
		return nil, nil
	}

	clauses, filterArgs := appendFilterClauses(filter, 1)
	query := fmt.Sprintf(`
SELECT id, doc_id, filename, document_type, year, programs, tags, outcome, text, embedding,
	1 - (embedding <=> $1) AS score
FROM chunks
WHERE embedding IS NOT NULL%s
ORDER BY embedding <=> $1, id
LIMIT $%d
`, whereClause(clauses), len(filterArgs)+2)

	args := append([]any{pgvector.NewVector(queryVector)}, filterArgs...)
	args = append(args, topK)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("vector search query: %w", err)
	}
	defer rows.Close()

	var out []domain.ScoredChunk
	for rows.Next() {
		var chunk domain.Chunk
		var programsRaw, tagsRaw []byte
		var embedding pgvector.Vector
		var score float64
		err := rows.Scan(
			&chunk.ID, &chunk.Metadata.DocumentID, &chunk.Metadata.Filename,
			&chunk.Metadata.DocumentType, &chunk.Metadata.Year,
			&programsRaw, &tagsRaw, &chunk.Metadata.Outcome, &chunk.Text,
			&embedding, &score,
		)
		if err != nil {
			return nil, fmt.Errorf("scan vector result: %w", err)
		}
		if err := unmarshalStringList(programsRaw, &chunk.Metadata.Programs); err != nil {
			return nil, fmt.Errorf("unmarshal programs: %w", err)
		}
		if err := unmarshalStringList(tagsRaw, &chunk.Metadata.Tags); err != nil {
			return nil, fmt.Errorf("unmarshal tags: %w", err)
		}
		chunk.Embedding = embedding.Slice()
		out = append(out, domain.ScoredChunk{Chunk: chunk, Score: domain.ClampScore(score)})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("vector search rows: %w", err)
	}
	return out, nil
}
