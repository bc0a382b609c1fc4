package models

import "strings"

// The four canonical urgency categories.
const (
	CategoryUrgentReferral       = "urgent_referral"
	CategoryUrgentInvestigation  = "urgent_investigation"
	CategoryNoUrgentAction       = "no_urgent_action"
	CategoryInsufficientEvidence = "insufficient_evidence"
)

// NormalizeCategory maps a free-form urgency label onto the canonical
// taxonomy. Matching ignores case, surrounding whitespace and the
// space/underscore distinction. Anything unrecognized maps to
// urgent_investigation: over-triage is the safer failure mode for a
// suspected-cancer pathway.
func NormalizeCategory(cat string) string {
	c := strings.ReplaceAll(strings.ToLower(cat), "_", " ")
	c = strings.Join(strings.Fields(c), " ")
	switch c {
	case "urgent referral":
		return CategoryUrgentReferral
	case "urgent investigation":
		return CategoryUrgentInvestigation
	case "no urgent action", "routine":
		return CategoryNoUrgentAction
	case "insufficient evidence", "uncertain":
		return CategoryInsufficientEvidence
	}
	return CategoryUrgentInvestigation
}
