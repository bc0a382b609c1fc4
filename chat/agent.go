// Package chat answers free-text questions about a patient, grounded in
// retrieved NG12 excerpts. It serves the chat endpoint and the per-patient
// conversation history endpoints.
package chat

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

// RefusalAnswer is the exact sentence returned whenever an answer cannot be
// grounded in the gated evidence.
const RefusalAnswer = "I can’t find that in the provided NG12 excerpts."

// noEvidenceAnswer is returned when no excerpt survives ranking and gating.
const noEvidenceAnswer = "I couldn’t retrieve a relevant NG12 excerpt for that question."

// Retriever maps a query to candidate citations.
type Retriever interface {
	Retrieve(ctx context.Context, query string, topK int) ([]models.Citation, error)
}

// Generator is the deterministic generation boundary.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Result is the uniform chat outcome: an answer (never empty) and the gated
// citations that ground it, in rank order.
type Result struct {
	Answer    string
	Citations []models.Citation
}

// Agent orchestrates the chat flow.
type Agent struct {
	retriever    Retriever
	generator    Generator
	topK         int
	topCitations int
}

func NewAgent(retriever Retriever, generator Generator, topK, topCitations int) *Agent {
	if topK <= 0 {
		topK = 10
	}
	if topCitations < 1 {
		topCitations = 1
	}
	return &Agent{retriever: retriever, generator: generator, topK: topK, topCitations: topCitations}
}

// Answer runs retrieve → rank → gate → generate for one question. A retrieval
// failure propagates to the caller; every later failure degrades to the
// refusal sentence, keeping the gated citations when evidence was found.
func (a *Agent) Answer(ctx context.Context, p *models.Patient, message string) (Result, error) {
	query := rag.ChatQuery(p, message)

	candidates, err := a.retriever.Retrieve(ctx, query, a.topK)
	if err != nil {
		return Result{}, err
	}

	ranked := evidence.Rank(candidates, p, message, false)
	gated := evidence.Filter(ranked, p)
	if len(gated) == 0 {
		log.Printf("[chat][no-evidence] patient=%s candidates=%d", p.PatientID, len(candidates))
		return Result{Answer: noEvidenceAnswer, Citations: []models.Citation{}}, nil
	}
	if len(gated) > a.topCitations {
		gated = gated[:a.topCitations]
	}

	raw, err := a.generator.Generate(ctx, buildPrompt(p, message, gated))
	if err != nil {
		// The evidence is real even though synthesis failed; refuse but keep
		// the citations.
		log.Printf("[chat][generation-error] patient=%s err=%v", p.PatientID, err)
		return Result{Answer: RefusalAnswer, Citations: gated}, nil
	}

	answer := strings.TrimSpace(asString(vertex.ExtractJSON(raw)["answer"]))
	if answer == "" {
		log.Printf("[chat][malformed-output] patient=%s", p.PatientID)
		answer = RefusalAnswer
	}

	return Result{Answer: answer, Citations: gated}, nil
}

func buildPrompt(p *models.Patient, message string, citations []models.Citation) string {
	var evidenceBlock strings.Builder
	for i, c := range citations {
		if i > 0 {
			evidenceBlock.WriteString("\n\n")
		}
		fmt.Fprintf(&evidenceBlock, "Evidence %d:\nSource: %s\nPage: %d\nChunk: %s\nText:\n%s",
			i+1, c.Source, c.Page, c.ChunkID, c.Excerpt)
	}

	patientJSON, _ := json.MarshalIndent(p, "", "  ")

	return fmt.Sprintf(`You are a clinical decision support assistant.

RULES:
- Use ONLY the provided Evidence.
- If not supported by Evidence, say exactly:
  "I can’t find that in the provided NG12 excerpts."
- Do NOT invent findings.
- Keep the answer concise and specific to the patient.

Patient:
%s

User question:
%s

Evidence:
%s

Return ONLY JSON:
{
  "answer": "string"
}`, patientJSON, message, evidenceBlock.String())
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}
