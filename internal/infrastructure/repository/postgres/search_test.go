package postgres

import (
	"context"
	"database/sql"
	"errors"
	"math"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/grantpilot/ragengine/internal/core/domain"
)

func searchFilter() domain.SearchFilter { return domain.SearchFilter{} }

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	return db, mock, func() { _ = db.Close() }
}

func chunkColumns(extra ...string) []string {
	cols := []string{"id", "doc_id", "filename", "document_type", "year", "programs", "tags", "outcome", "text"}
	return append(cols, extra...)
}

func TestKeywordSearchNormalizesByMaxRank(t *testing.T) {
	db, mock, done := newMockDB(t)
	defer done()

	rows := sqlmock.NewRows(chunkColumns("rank")).
		AddRow("c1", "d1", "report_2024.pdf", "annual_report", 2024, []byte(`["youth"]`), []byte(`["impact"]`), "funded", "chunk one", 0.8).
		AddRow("c2", "d2", "grant.pdf", "proposal", 2023, nil, nil, "", "chunk two", 0.2)

	mock.ExpectQuery("SELECT id, doc_id, filename").
		WithArgs("youth programs", 10).
		WillReturnRows(rows)

	search := NewKeywordSearch(db)
	got, err := search.Search(context.Background(), "youth programs", 10, searchFilter())
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 results, got %d", len(got))
	}
	if got[0].Score != 1.0 {
		t.Fatalf("expected top score normalized to 1.0, got %v", got[0].Score)
	}
	if math.Abs(got[1].Score-0.25) > 1e-9 {
		t.Fatalf("expected second score 0.25, got %v", got[1].Score)
	}
	if got[0].Chunk.Metadata.Programs[0] != "youth" {
		t.Fatalf("expected programs decoded, got %v", got[0].Chunk.Metadata.Programs)
	}
	if got[1].Chunk.Metadata.Programs != nil {
		t.Fatalf("expected nil programs for null column, got %v", got[1].Chunk.Metadata.Programs)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestKeywordSearchAppliesScalarFilters(t *testing.T) {
	db, mock, done := newMockDB(t)
	defer done()

	mock.ExpectQuery("year >= ").
		WithArgs("budget", 2022, 2024, 5).
		WillReturnRows(sqlmock.NewRows(chunkColumns("rank")))

	search := NewKeywordSearch(db)
	filter := searchFilter()
	filter.YearFrom = 2022
	filter.YearTo = 2024

	got, err := search.Search(context.Background(), "budget", 5, filter)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no results, got %d", len(got))
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

// Placeholder numbers must line up with argument positions: $1 is the query
// text, filter clauses follow, LIMIT comes last. A loose query pattern would
// not notice clauses bound to the wrong argument.
func TestKeywordSearchPlaceholderNumbering(t *testing.T) {
	db, mock, done := newMockDB(t)
	defer done()

	mock.ExpectQuery(`(?s)year >= \$2 AND year <= \$3.*LIMIT \$4`).
		WithArgs("budget", 2022, 2024, 5).
		WillReturnRows(sqlmock.NewRows(chunkColumns("rank")))

	search := NewKeywordSearch(db)
	filter := searchFilter()
	filter.YearFrom = 2022
	filter.YearTo = 2024

	if _, err := search.Search(context.Background(), "budget", 5, filter); err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestKeywordSearchSkipsEmptyQuery(t *testing.T) {
	db, _, done := newMockDB(t)
	defer done()

	search := NewKeywordSearch(db)
	got, err := search.Search(context.Background(), "", 10, searchFilter())
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil results for empty query, got %v", got)
	}
}

func TestKeywordSearchPropagatesQueryError(t *testing.T) {
	db, mock, done := newMockDB(t)
	defer done()

	mock.ExpectQuery("SELECT id, doc_id").
		WillReturnError(errors.New("connection reset"))

	search := NewKeywordSearch(db)
	_, err := search.Search(context.Background(), "anything", 3, searchFilter())
	if err == nil {
		t.Fatalf("expected error")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestVectorSearchScansEmbeddingAndScore(t *testing.T) {
	db, mock, done := newMockDB(t)
	defer done()

	rows := sqlmock.NewRows(chunkColumns("embedding", "score")).
		AddRow("c1", "d1", "outcomes.pdf", "annual_report", 2024, []byte(`[]`), []byte(`["metrics"]`), "funded", "measured outcomes", "[0.1,0.2,0.3]", 0.91)

	mock.ExpectQuery("embedding IS NOT NULL").
		WithArgs(sqlmock.AnyArg(), 4).
		WillReturnRows(rows)

	search := NewVectorSearch(db)
	got, err := search.Search(context.Background(), []float32{0.1, 0.2, 0.3}, 4, searchFilter())
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 result, got %d", len(got))
	}
	if got[0].Score != 0.91 {
		t.Fatalf("expected score 0.91, got %v", got[0].Score)
	}
	if len(got[0].Chunk.Embedding) != 3 {
		t.Fatalf("expected embedding of dim 3, got %d", len(got[0].Chunk.Embedding))
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestVectorSearchClampsNegativeScore(t *testing.T) {
	db, mock, done := newMockDB(t)
	defer done()

	rows := sqlmock.NewRows(chunkColumns("embedding", "score")).
		AddRow("c1", "d1", "a.pdf", "proposal", 2020, nil, nil, "", "far away", "[1,0]", -0.2)

	mock.ExpectQuery("embedding IS NOT NULL").
		WithArgs(sqlmock.AnyArg(), 1).
		WillReturnRows(rows)

	search := NewVectorSearch(db)
	got, err := search.Search(context.Background(), []float32{0, 1}, 1, searchFilter())
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if got[0].Score != 0 {
		t.Fatalf("expected clamped score 0, got %v", got[0].Score)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestVectorSearchSkipsEmptyVector(t *testing.T) {
	db, _, done := newMockDB(t)
	defer done()

	search := NewVectorSearch(db)
	got, err := search.Search(context.Background(), nil, 5, searchFilter())
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil results for empty vector, got %v", got)
	}
}
