package usecase

import "strings"

// Section types with a required-topic table. Unknown section types produce
// no completeness issues.
const (
	SectionOrganizationalCapacity = "Organizational Capacity"
	SectionProgramDescription     = "Program Description"
	SectionImpactOutcomes         = "Impact & Outcomes"
	SectionBudgetNarrative        = "Budget Narrative"
)

// DefaultSectionTopics is the built-in required-topic table. Deployments can
// replace it with a YAML file via configuration.
func DefaultSectionTopics() map[string][]string {
	return map[string][]string{
		SectionOrganizationalCapacity: {"staff", "experience", "leadership", "partner", "track record"},
		SectionProgramDescription:     {"goal", "activit", "timeline", "participant", "service"},
		SectionImpactOutcomes:         {"outcome", "measur", "evaluat", "impact", "data"},
		SectionBudgetNarrative:        {"cost", "budget", "fund", "expense", "allocat"},
	}
}

// missingTopics reports which required topics for the section type do not
// appear in the response. Matching is a case-insensitive substring check, so
// table entries are word stems ("measur" matches both "measure" and
// "measurement").
func missingTopics(topics map[string][]string, sectionType, response string) []string {
	required, ok := topics[sectionType]
	if !ok {
		return nil
	}
	lower := strings.ToLower(response)
	var missing []string
	for _, topic := range required {
		if !strings.Contains(lower, topic) {
			missing = append(missing, topic)
		}
	}
	return missing
}
