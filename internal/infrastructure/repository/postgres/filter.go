package postgres

import (
	"fmt"
	"strings"

	"github.com/grantpilot/ragengine/internal/core/domain"
)

// appendFilterClauses renders the search filter into SQL conditions. Both
// search adapters use it, keeping filtering identical. argOffset is the
// number of placeholders already consumed by the caller's query.
func appendFilterClauses(filter domain.SearchFilter, argOffset int) (clauses []string, args []any) {
	next := func() int { return argOffset + len(args) + 1 }

	if len(filter.DocumentTypes) > 0 {
		clauses = append(clauses, fmt.Sprintf("document_type = ANY($%d)", next()))
		args = append(args, filter.DocumentTypes)
	}
	if len(filter.Years) > 0 {
		clauses = append(clauses, fmt.Sprintf("year = ANY($%d)", next()))
		args = append(args, filter.Years)
	}
	if filter.YearFrom > 0 {
		clauses = append(clauses, fmt.Sprintf("year >= $%d", next()))
		args = append(args, filter.YearFrom)
	}
	if filter.YearTo > 0 {
		clauses = append(clauses, fmt.Sprintf("year <= $%d", next()))
		args = append(args, filter.YearTo)
	}
	if len(filter.Programs) > 0 {
		clauses = append(clauses, fmt.Sprintf("programs ?| $%d", next()))
		args = append(args, filter.Programs)
	}
	if len(filter.Outcomes) > 0 {
		clauses = append(clauses, fmt.Sprintf("outcome = ANY($%d)", next()))
		args = append(args, filter.Outcomes)
	}
	if len(filter.ExcludeDocumentIDs) > 0 {
		clauses = append(clauses, fmt.Sprintf("NOT (doc_id = ANY($%d))", next()))
		args = append(args, filter.ExcludeDocumentIDs)
	}
	return clauses, args
}

func whereClause(clauses []string) string {
	if len(clauses) == 0 {
		return ""
	}
	return " AND " + strings.Join(clauses, " AND ")
}
