package usecase

import "testing"

func TestMissingTopicsStemMatching(t *testing.T) {
	response := "We measured outcomes with survey data and reported the impact of evaluations."
	missing := missingTopics(DefaultSectionTopics(), SectionImpactOutcomes, response)
	if len(missing) != 0 {
		t.Fatalf("expected stems to match inflected forms, missing = %v", missing)
	}
}

func TestMissingTopicsReportsGaps(t *testing.T) {
	response := "The budget allocates funds across personnel costs."
	missing := missingTopics(DefaultSectionTopics(), SectionBudgetNarrative, response)
	if len(missing) != 1 || missing[0] != "expense" {
		t.Fatalf("expected only expense missing, got %v", missing)
	}
}

func TestMissingTopicsCaseInsensitive(t *testing.T) {
	missing := missingTopics(DefaultSectionTopics(), SectionBudgetNarrative, "BUDGET COST FUND EXPENSE ALLOCATION")
	if len(missing) != 0 {
		t.Fatalf("expected case-insensitive matching, missing = %v", missing)
	}
}

func TestMissingTopicsUnknownSection(t *testing.T) {
	if missing := missingTopics(DefaultSectionTopics(), "Appendix", "anything"); missing != nil {
		t.Fatalf("expected nil for unknown section, got %v", missing)
	}
}
