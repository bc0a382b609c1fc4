// Package evidence ranks and filters retrieved guideline excerpts against an
// individual patient record. Scoring decides which excerpts ground the answer;
// gating removes excerpts that would attribute clinical findings the patient
// does not have.
package evidence

import (
	"sort"
	"strings"

	"ng12-backend/models"
)

// Norm lowercases and collapses whitespace runs to single spaces. All text
// comparison in this package happens on normalized text.
func Norm(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// PatientTerms is the patient's combined symptom, finding and investigation
// text, normalized.
func PatientTerms(p *models.Patient) string {
	var parts []string
	for _, group := range [][]string{p.Symptoms, p.Findings, p.Investigations} {
		for _, item := range group {
			parts = append(parts, Norm(item))
		}
	}
	return strings.Join(parts, " ")
}

// phraseBonuses are the strong referral signals, most specific first. Bonuses
// are additive: an excerpt carrying the full pathway wording also contains the
// shorter pathway phrase and collects both.
var phraseBonuses = []struct {
	phrase string
	bonus  int
}{
	{"refer using a suspected cancer pathway referral", 120},
	{"suspected cancer pathway referral", 90},
	{"offer urgent investigation", 80},
	{"urgent referral", 60},
}

// keywords are the domain terms that earn a co-occurrence bonus when present
// in both the excerpt and the patient record (or the chat message).
var keywords = []string{
	"weight loss",
	"change in bowel",
	"bowel habit",
	"abdominal pain",
	"upper abdominal pain",
	"ct scan",
}

const genericSectionPenalty = 40

// Score assigns a relevance score to one excerpt. Higher is more relevant.
// message is the chat question, empty for the assess flow. ruleOverrides
// enables the symptom-combination rules that encode a clinically preferred
// action path for known presentations ("rule beats model"); the assess flow
// turns them on.
func Score(c models.Citation, p *models.Patient, message string, ruleOverrides bool) int {
	text := Norm(c.Excerpt)
	msg := Norm(message)
	patientText := PatientTerms(p)

	score := 0

	for _, pb := range phraseBonuses {
		if strings.Contains(text, pb.phrase) {
			score += pb.bonus
		}
	}

	for _, kw := range keywords {
		if strings.Contains(text, kw) && (strings.Contains(patientText, kw) || (msg != "" && strings.Contains(msg, kw))) {
			score += 10
		}
	}

	if ruleOverrides {
		hasWeightLoss := strings.Contains(patientText, "weight loss")
		hasBowelChange := strings.Contains(patientText, "change in bowel") || strings.Contains(patientText, "bowel habit")
		hasAbdominalPain := strings.Contains(patientText, "abdominal pain")
		mentionsCT := strings.Contains(text, "ct scan") || strings.Contains(text, "direct access ct")

		// Weight loss with a bowel habit change points at the pathway referral;
		// direct-access CT is the de-prioritized alternative for that combination.
		if hasWeightLoss && hasBowelChange {
			if hasUrgentSignal(text) {
				score += 80
			}
			if mentionsCT {
				score -= 20
			}
		}

		// CT is the relevant route when weight loss pairs with abdominal pain.
		if hasWeightLoss && hasAbdominalPain && mentionsCT {
			score += 15
		}
	}

	// Table-of-contents style sections cite everything and recommend nothing.
	if strings.Contains(text, "recommendations organised by symptom") {
		score -= genericSectionPenalty
	}

	// Longer excerpts tend to carry the full recommendation wording; capped so
	// length never beats a phrase signal.
	specificity := len(text) / 250
	if specificity > 6 {
		specificity = 6
	}
	score += specificity

	return score
}

// hasUrgentSignal reports whether the normalized excerpt carries any urgent
// referral or investigation wording.
func hasUrgentSignal(text string) bool {
	for _, pb := range phraseBonuses {
		if strings.Contains(text, pb.phrase) {
			return true
		}
	}
	return strings.Contains(text, "urgent investigation")
}

// Rank sorts candidates by score descending. The sort is stable: equal-score
// candidates keep the evidence store's similarity order, which is the
// tie-break since it already reflects embedding proximity.
func Rank(candidates []models.Citation, p *models.Patient, message string, ruleOverrides bool) []models.Citation {
	type scored struct {
		citation models.Citation
		score    int
	}
	items := make([]scored, len(candidates))
	for i, c := range candidates {
		items[i] = scored{citation: c, score: Score(c, p, message, ruleOverrides)}
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].score > items[j].score
	})
	ranked := make([]models.Citation, len(items))
	for i, it := range items {
		ranked[i] = it.citation
	}
	return ranked
}
