package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/grantpilot/ragengine/internal/core/domain"
)

// KeywordSearch is the lexical search adapter: Postgres full-text search with
// ts_rank_cd scoring. Ranks are unbounded, so results are normalized against
// the best hit of the response.
type KeywordSearch struct {
	db *sql.DB
}

func NewKeywordSearch(db *sql.DB) *KeywordSearch {
	return &KeywordSearch{db: db}
}

func (s *KeywordSearch) Search(
	ctx context.Context,
	queryText string,
	topK int,
	filter domain.SearchFilter,
) ([]domain.ScoredChunk, error) {
	if queryText == "" || topK <= 0 {
		return nil, nil
	}

	clauses, filterArgs := appendFilterClauses(filter, 1)
	query := fmt.Sprintf(`
SELECT id, doc_id, filename, document_type, year, programs, tags, outcome, text,
	ts_rank_cd(text_search, q) AS rank
FROM chunks, plainto_tsquery('english', $1) AS q
WHERE text_search @@ q%s
ORDER BY rank DESC, id
LIMIT $%d
`, whereClause(clauses), len(filterArgs)+2)

	args := append([]any{queryText}, filterArgs...)
	args = append(args, topK)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("keyword search query: %w", err)
	}
	defer rows.Close()

	var out []domain.ScoredChunk
	var maxRank float64
	for rows.Next() {
		var chunk domain.Chunk
		var programsRaw, tagsRaw []byte
		var rank float64
		err := rows.Scan(
			&chunk.ID, &chunk.Metadata.DocumentID, &chunk.Metadata.Filename,
			&chunk.Metadata.DocumentType, &chunk.Metadata.Year,
			&programsRaw, &tagsRaw, &chunk.Metadata.Outcome, &chunk.Text,
			&rank,
		)
		if err != nil {
			return nil, fmt.Errorf("scan keyword result: %w", err)
		}
		if err := unmarshalStringList(programsRaw, &chunk.Metadata.Programs); err != nil {
			return nil, fmt.Errorf("unmarshal programs: %w", err)
		}
		if err := unmarshalStringList(tagsRaw, &chunk.Metadata.Tags); err != nil {
			return nil, fmt.Errorf("unmarshal tags: %w", err)
		}
		if rank > maxRank {
			maxRank = rank
		}
		out = append(out, domain.ScoredChunk{Chunk: chunk, Score: rank})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("keyword search rows: %w", err)
	}

	for i := range out {
		if maxRank > 0 {
			out[i].Score = domain.ClampScore(out[i].Score / maxRank)
		}
	}
	return out, nil
}

func unmarshalStringList(raw []byte, dst *[]string) error {
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, dst)
}
