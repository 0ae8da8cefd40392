package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadUsesDefaults(t *testing.T) {
	cfg := Load()
	if cfg.VectorBackend != BackendQdrant {
		t.Fatalf("expected default vector backend %q, got %q", BackendQdrant, cfg.VectorBackend)
	}
	if cfg.TopK != 10 {
		t.Fatalf("expected default top k 10, got %d", cfg.TopK)
	}
	if cfg.VectorWeight != 0.7 || cfg.KeywordWeight != 0.3 {
		t.Fatalf("unexpected default weights: %v / %v", cfg.VectorWeight, cfg.KeywordWeight)
	}
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("VECTOR_BACKEND", "pgvector")
	t.Setenv("KEYWORD_BACKEND", "postgres")
	t.Setenv("RETRIEVAL_TOP_K", "5")
	t.Setenv("RETRIEVAL_RERANK_ENABLED", "true")
	t.Setenv("OLLAMA_RPS", "2.5")

	cfg := Load()
	if cfg.VectorBackend != BackendPgvector {
		t.Fatalf("expected pgvector backend, got %q", cfg.VectorBackend)
	}
	if cfg.KeywordBackend != BackendPostgres {
		t.Fatalf("expected postgres backend, got %q", cfg.KeywordBackend)
	}
	if cfg.TopK != 5 {
		t.Fatalf("expected top k 5, got %d", cfg.TopK)
	}
	if !cfg.RerankEnabled {
		t.Fatalf("expected rerank enabled")
	}
	if cfg.OllamaRPS != 2.5 {
		t.Fatalf("expected rps 2.5, got %v", cfg.OllamaRPS)
	}
	if !cfg.NeedsPostgres() {
		t.Fatalf("expected NeedsPostgres with pgvector backend")
	}
	if cfg.NeedsQdrant() {
		t.Fatalf("did not expect NeedsQdrant with postgres backends")
	}
}

func TestLoadIgnoresMalformedValues(t *testing.T) {
	t.Setenv("RETRIEVAL_TOP_K", "not-a-number")
	t.Setenv("RETRIEVAL_RERANK_ENABLED", "maybe")

	cfg := Load()
	if cfg.TopK != 10 {
		t.Fatalf("expected fallback top k 10, got %d", cfg.TopK)
	}
	if cfg.RerankEnabled {
		t.Fatalf("expected fallback rerank disabled")
	}
}

func TestValidateRejectsUnknownBackend(t *testing.T) {
	cfg := Load()
	cfg.VectorBackend = "elasticsearch"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error for unknown vector backend")
	}

	cfg = Load()
	cfg.KeywordBackend = "sphinx"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error for unknown keyword backend")
	}
}

func TestLoadTopicTable(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "topics.yaml")
	content := []byte("Budget Narrative:\n  - budget\n  - cost\nProgram Description:\n  - goal\n")
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	table, err := LoadTopicTable(path)
	if err != nil {
		t.Fatalf("LoadTopicTable() error = %v", err)
	}
	if len(table["Budget Narrative"]) != 2 {
		t.Fatalf("expected 2 budget topics, got %v", table["Budget Narrative"])
	}
	if table["Program Description"][0] != "goal" {
		t.Fatalf("unexpected program topics: %v", table["Program Description"])
	}
}

func TestLoadTopicTableEmptyPath(t *testing.T) {
	table, err := LoadTopicTable("")
	if err != nil {
		t.Fatalf("LoadTopicTable() error = %v", err)
	}
	if table != nil {
		t.Fatalf("expected nil table for empty path, got %v", table)
	}
}
