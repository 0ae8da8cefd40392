package qdrant

import "github.com/grantpilot/ragengine/internal/core/domain"

// buildFilter translates the engine's search filter into a Qdrant filter
// clause. Both search paths call it, keeping filtering identical. Returns
// nil when the filter imposes no constraint.
func buildFilter(filter domain.SearchFilter) map[string]any {
	if filter.IsZero() {
		return nil
	}

	var must []map[string]any
	var mustNot []map[string]any

	if len(filter.DocumentTypes) > 0 {
		must = append(must, matchAny("document_type", filter.DocumentTypes))
	}
	if len(filter.Programs) > 0 {
		must = append(must, matchAny("programs", filter.Programs))
	}
	if len(filter.Outcomes) > 0 {
		must = append(must, matchAny("outcome", filter.Outcomes))
	}
	if len(filter.Years) > 0 {
		years := make([]any, 0, len(filter.Years))
		for _, y := range filter.Years {
			years = append(years, y)
		}
		must = append(must, map[string]any{
			"key":   "year",
			"match": map[string]any{"any": years},
		})
	}
	if filter.YearFrom > 0 || filter.YearTo > 0 {
		rangeClause := map[string]any{}
		if filter.YearFrom > 0 {
			rangeClause["gte"] = filter.YearFrom
		}
		if filter.YearTo > 0 {
			rangeClause["lte"] = filter.YearTo
		}
		must = append(must, map[string]any{
			"key":   "year",
			"range": rangeClause,
		})
	}
	if len(filter.ExcludeDocumentIDs) > 0 {
		mustNot = append(mustNot, matchAny("doc_id", filter.ExcludeDocumentIDs))
	}

	out := map[string]any{}
	if len(must) > 0 {
		out["must"] = must
	}
	if len(mustNot) > 0 {
		out["must_not"] = mustNot
	}
	return out
}

func matchAny(key string, values []string) map[string]any {
	anyValues := make([]any, 0, len(values))
	for _, v := range values {
		anyValues = append(anyValues, v)
	}
	return map[string]any{
		"key":   key,
		"match": map[string]any{"any": anyValues},
	}
}
