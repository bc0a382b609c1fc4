package evidence

import (
	"strings"

	"ng12-backend/models"
)

// gatedTerms are clinical signs the guideline mentions constantly but that
// must never be implicitly attributed to a patient who was not recorded as
// having them.
var gatedTerms = []string{
	"splenomegaly",
	"lymphadenopathy",
	"night sweats",
	"fever",
	"pruritus",
}

// Allowed reports whether an excerpt may be shown for this patient. A single
// gated term present in the excerpt but absent from the patient's recorded
// symptoms, findings and investigations rejects the excerpt outright, no
// matter how highly it ranked.
func Allowed(c models.Citation, p *models.Patient) bool {
	text := Norm(c.Excerpt)
	patientText := PatientTerms(p)

	for _, term := range gatedTerms {
		if strings.Contains(text, term) && !strings.Contains(patientText, term) {
			return false
		}
	}
	return true
}

// Filter removes gated excerpts from a ranked list, preserving order. It runs
// after ranking; this is a hard filter, not a scoring penalty.
func Filter(ranked []models.Citation, p *models.Patient) []models.Citation {
	var out []models.Citation
	for _, c := range ranked {
		if Allowed(c, p) {
			out = append(out, c)
		}
	}
	return out
}
