package rag

import (
	"fmt"
	"sort"
	"strings"

	"ng12-backend/evidence"
	"ng12-backend/models"
)

// AssessQuery composes the retrieval query for the structured assessment
// flow. Symptoms are normalized and sorted so that semantically identical
// patients produce byte-identical queries, and hence identical retrieval
// ranking, regardless of list order or casing in the source record. Pure
// string composition; missing fields render as empty segments.
func AssessQuery(p *models.Patient) string {
	symptoms := make([]string, 0, len(p.Symptoms))
	for _, s := range p.Symptoms {
		symptoms = append(symptoms, evidence.Norm(s))
	}
	sort.Strings(symptoms)

	return fmt.Sprintf(
		"NICE NG12 suspected cancer recognition and referral.\n"+
			"Patient: age=%d, sex=%s, duration=%s\n"+
			"Symptoms: %s\n"+
			"Question: Based on NG12, what is the recommended next action and urgency category?",
		p.Age, p.Sex, p.Duration, strings.Join(symptoms, ", "),
	)
}

// ChatQuery composes the retrieval query for a free-text question about the
// patient.
func ChatQuery(p *models.Patient, message string) string {
	return strings.TrimSpace(fmt.Sprintf(
		"NG12 suspected cancer pathway referral urgent investigation. "+
			"Patient age %d, sex %s. "+
			"Symptoms: %s. Findings: %s. "+
			"Question: %s",
		p.Age, p.Sex, joinList(p.Symptoms), joinList(p.Findings), message,
	))
}

func joinList(items []string) string {
	var kept []string
	for _, it := range items {
		if it != "" {
			kept = append(kept, it)
		}
	}
	return strings.Join(kept, "; ")
}
