// Package assess runs the structured risk assessment flow: retrieve guideline
// evidence for a patient, rank and gate it, ground a deterministic generation
// call in the single best excerpt and always come back with a usable result.
// Service failures degrade to rule-based fallbacks, never to a server error.
package assess

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"ng12-backend/evidence"
	"ng12-backend/models"
	"ng12-backend/rag"
	"ng12-backend/vertex"
)

// Retriever maps a query to candidate citations.
type Retriever interface {
	Retrieve(ctx context.Context, query string, topK int) ([]models.Citation, error)
}

// Generator is the deterministic generation boundary.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Assessor orchestrates the assess flow.
type Assessor struct {
	retriever Retriever
	generator Generator
	topK      int
}

func NewAssessor(retriever Retriever, generator Generator, topK int) *Assessor {
	if topK <= 0 {
		topK = 10
	}
	return &Assessor{retriever: retriever, generator: generator, topK: topK}
}

// Assess produces an AssessResponse for the patient. It never returns an
// error: every failure path terminates in a category, with the best available
// citation attached whenever evidence was actually retrieved.
func (a *Assessor) Assess(ctx context.Context, p *models.Patient) models.AssessResponse {
	query := rag.AssessQuery(p)

	candidates, err := a.retriever.Retrieve(ctx, query, a.topK)
	if err != nil {
		log.Printf("[assess][retrieval-error] patient=%s err=%v", p.PatientID, err)
		return models.AssessResponse{
			PatientID:         p.PatientID,
			Category:          models.CategoryInsufficientEvidence,
			Rationale:         fmt.Sprintf("Retrieval failed: %v", err),
			RecommendedAction: "Retry retrieval or review NG12 guidance manually.",
			Citations:         []models.Citation{},
		}
	}

	ranked := evidence.Rank(candidates, p, "", true)
	gated := evidence.Filter(ranked, p)
	if len(gated) == 0 {
		log.Printf("[assess][no-evidence] patient=%s candidates=%d", p.PatientID, len(candidates))
		return models.AssessResponse{
			PatientID:         p.PatientID,
			Category:          models.CategoryInsufficientEvidence,
			Rationale:         "No relevant NG12 guidance could be retrieved for the given symptoms.",
			RecommendedAction: "Review NG12 guidance manually and consider clinical review.",
			Citations:         []models.Citation{},
		}
	}

	// Assessment is single-citation by design: the best ranked, gated excerpt.
	best := gated[0]

	raw, err := a.generator.Generate(ctx, buildPrompt(p, best))
	if err != nil {
		log.Printf("[assess][generation-error] patient=%s err=%v", p.PatientID, err)
		return a.excerptFallback(p, best, fmt.Sprintf("Generation failed: %v. Returning best available citation.", err))
	}

	obj := vertex.ExtractJSON(raw)
	if len(obj) == 0 {
		log.Printf("[assess][malformed-output] patient=%s chunk=%s", p.PatientID, best.ChunkID)
		return a.excerptFallback(p, best, "Model output could not be parsed. Returning best available citation.")
	}

	category := models.NormalizeCategory(asString(obj["category"]))
	rationale := strings.TrimSpace(asString(obj["rationale"]))
	action := strings.TrimSpace(asString(obj["recommended_action"]))

	if rationale == "" {
		rationale = "Recommendation is grounded in the retrieved NG12 excerpt."
	}
	if action == "" {
		text := evidence.Norm(best.Excerpt)
		switch {
		case strings.Contains(text, "suspected cancer pathway") || strings.Contains(text, "urgent referral"):
			action = "Refer using a suspected cancer pathway referral."
			category = models.CategoryUrgentReferral
		case strings.Contains(text, "urgent investigation"):
			action = "Offer urgent investigation."
			category = models.CategoryUrgentInvestigation
		default:
			action = "Follow NG12 guidance as per the cited excerpt."
		}
	}

	return models.AssessResponse{
		PatientID:         p.PatientID,
		Category:          category,
		Rationale:         rationale,
		RecommendedAction: action,
		Citations:         []models.Citation{best},
	}
}

// excerptFallback synthesizes a result from the best excerpt's own wording
// when generation failed or returned nothing usable. The excerpt is still
// attached: the evidence is real even if synthesis failed.
func (a *Assessor) excerptFallback(p *models.Patient, best models.Citation, failureNote string) models.AssessResponse {
	text := evidence.Norm(best.Excerpt)

	if strings.Contains(text, "suspected cancer pathway") || strings.Contains(text, "urgent referral") {
		return models.AssessResponse{
			PatientID:         p.PatientID,
			Category:          models.CategoryUrgentReferral,
			Rationale:         "NG12 excerpt indicates a suspected cancer pathway referral.",
			RecommendedAction: "Refer using a suspected cancer pathway referral.",
			Citations:         []models.Citation{best},
		}
	}
	if strings.Contains(text, "urgent investigation") {
		return models.AssessResponse{
			PatientID:         p.PatientID,
			Category:          models.CategoryUrgentInvestigation,
			Rationale:         "NG12 excerpt indicates urgent investigation.",
			RecommendedAction: "Offer urgent investigation.",
			Citations:         []models.Citation{best},
		}
	}
	return models.AssessResponse{
		PatientID:         p.PatientID,
		Category:          models.CategoryInsufficientEvidence,
		Rationale:         failureNote,
		RecommendedAction: "Follow NG12 guidance as per the cited excerpt.",
		Citations:         []models.Citation{best},
	}
}

func buildPrompt(p *models.Patient, best models.Citation) string {
	patientJSON, _ := json.MarshalIndent(p, "", "  ")
	return fmt.Sprintf(`You are a clinical decision support assistant.
You MUST ground your answer only in the NG12 excerpt below.

Patient JSON:
%s

NG12 excerpt (primary evidence):
Source: %s
Page: %d
Chunk: %s
Text:
%s

Return ONLY a JSON object with these keys:
- category: one of ["urgent_referral","urgent_investigation","no_urgent_action","insufficient_evidence"]
- rationale: short, quote/point to the excerpt wording
- recommended_action: short, actionable, aligned with the excerpt`,
		patientJSON, best.Source, best.Page, best.ChunkID, best.Excerpt)
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}
