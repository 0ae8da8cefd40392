// Command basic runs one retrieve / validate / cite round-trip against the
// backends named in the environment.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/grantpilot/ragengine"
	"github.com/grantpilot/ragengine/internal/config"
	"github.com/grantpilot/ragengine/internal/core/domain"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()
	engine, err := ragengine.New(ctx, cfg)
	if err != nil {
		log.Fatalf("init engine: %v", err)
	}
	defer engine.Close()

	query := "How did the after-school literacy program perform last year?"
	if len(os.Args) > 1 {
		query = os.Args[1]
	}

	set, err := engine.Retrieve(ctx, query, domain.RetrievalParams{
		TopK:          cfg.TopK,
		VectorWeight:  cfg.VectorWeight,
		KeywordWeight: cfg.KeywordWeight,
		RecencyWeight: cfg.RecencyWeight,
		RerankEnabled: cfg.RerankEnabled,
	})
	if err != nil {
		log.Fatalf("retrieve: %v", err)
	}

	fmt.Printf("retrieved %d chunks (degraded=%v)\n", len(set.Results), set.Degraded)
	for _, r := range set.Results {
		fmt.Printf("%2d. %.3f %s (%s, %d)\n",
			r.Rank, r.FinalScore, r.Chunk.Metadata.Filename,
			r.Chunk.Metadata.DocumentType, r.Chunk.Metadata.Year)
	}

	response := "The program served 240 students [1]. Attendance improved over the prior year [2]."
	report, err := engine.Validate(ctx, query, response, set.Results, domain.ValidationParams{
		SectionType: "Impact & Outcomes",
	})
	if err != nil {
		log.Fatalf("validate: %v", err)
	}
	fmt.Printf("confidence=%.2f groundedness=%.2f relevance=%.2f needs_review=%v\n",
		report.Confidence, report.Groundedness, report.Relevance, report.NeedsReview)
	for _, issue := range report.Issues {
		fmt.Printf("  [%s] %s\n", issue.Severity, issue.Message)
	}

	cited, err := engine.ProcessCitations(ctx, response, set.Results, domain.StyleNumbered)
	if err != nil {
		log.Fatalf("citations: %v", err)
	}
	fmt.Println(cited.FormattedText)
	fmt.Println(cited.Bibliography)
}
