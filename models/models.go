// Package models defines the request, response and domain types shared by the
// assess and chat flows.
package models

// Patient is a record from the patient store. Read-only to the service; it is
// never mutated once loaded.
type Patient struct {
	PatientID      string   `json:"patient_id"`
	Age            int      `json:"age"`
	Sex            string   `json:"sex"`
	Symptoms       []string `json:"symptoms"`
	Findings       []string `json:"findings"`
	Investigations []string `json:"investigations"`
	Duration       string   `json:"duration,omitempty"`
}

// Citation is a retrieved span of guideline text with its source identity and
// a transient relevance score assigned during ranking. The score is never
// serialized.
type Citation struct {
	Source  string `json:"source"`
	Page    int    `json:"page"`
	ChunkID string `json:"chunk_id"`
	Excerpt string `json:"excerpt"`
}

// Message is one conversation entry.
type Message struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

type AssessRequest struct {
	PatientID string `json:"patient_id" binding:"required"`
}

type AssessResponse struct {
	PatientID         string     `json:"patient_id"`
	Category          string     `json:"category"`
	Rationale         string     `json:"rationale"`
	RecommendedAction string     `json:"recommended_action"`
	Citations         []Citation `json:"citations"`
}

type ChatRequest struct {
	PatientID string `json:"patient_id" binding:"required"`
	Message   string `json:"message" binding:"required"`
}

type ChatResponse struct {
	PatientID string     `json:"patient_id"`
	Answer    string     `json:"answer"`
	Citations []Citation `json:"citations"`
	History   []Message  `json:"history"`
}

type HistoryResponse struct {
	PatientID string    `json:"patient_id"`
	History   []Message `json:"history"`
}
