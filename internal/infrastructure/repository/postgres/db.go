// Package postgres implements the keyword and vector search ports over a
// Postgres chunk store. The chunks table is owned by the ingestion pipeline:
//
//	chunks(id, doc_id, filename, document_type, year, programs jsonb,
//	       tags jsonb, outcome, text, text_search tsvector, embedding vector)
//
// This engine only reads it.
package postgres

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}
