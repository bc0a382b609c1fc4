package chat

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"ng12-backend/models"
	"ng12-backend/patients"
	"ng12-backend/rag"
	"ng12-backend/sessions"
)

type fakePatients struct {
	known map[string]*models.Patient
}

func (f *fakePatients) Lookup(patientID string) (*models.Patient, error) {
	p, ok := f.known[patientID]
	if !ok {
		return nil, patients.ErrNotFound
	}
	return p, nil
}

type fakeService struct {
	result Result
	err    error
}

func (f *fakeService) Answer(ctx context.Context, p *models.Patient, message string) (Result, error) {
	return f.result, f.err
}

func newChatRouter(t *testing.T, store sessions.Store, svc Service) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	known := &fakePatients{known: map[string]*models.Patient{
		"PT-101": {PatientID: "PT-101", Age: 62, Sex: "male"},
	}}
	h := NewHandler(known, store, svc)
	r := gin.New()
	r.POST("/chat", h.Chat)
	r.GET("/history/:patient_id", h.History)
	r.DELETE("/history/:patient_id", h.ClearHistory)
	return r
}

func postChat(r *gin.Engine, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestChatHandlerRejectsIncompleteRequest(t *testing.T) {
	r := newChatRouter(t, sessions.NewMemoryStore(), &fakeService{})

	w := postChat(r, `{"patient_id":"PT-101"}`)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestChatHandlerUnknownPatient(t *testing.T) {
	r := newChatRouter(t, sessions.NewMemoryStore(), &fakeService{})

	w := postChat(r, `{"patient_id":"PT-999","message":"hello"}`)

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}

func TestChatHandlerRetrievalErrorIs500(t *testing.T) {
	store := sessions.NewMemoryStore()
	svc := &fakeService{err: &rag.RetrievalError{Err: errors.New("index unreachable")}}
	r := newChatRouter(t, store, svc)

	w := postChat(r, `{"patient_id":"PT-101","message":"What next?"}`)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500, body=%s", w.Code, w.Body.String())
	}

	// The user turn is still on record even though the flow failed.
	history, err := store.History("PT-101")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 1 || history[0].Role != "user" {
		t.Fatalf("history = %+v, want single user turn", history)
	}
}

func TestChatHandlerSuccessRecordsBothTurns(t *testing.T) {
	store := sessions.NewMemoryStore()
	svc := &fakeService{result: Result{
		Answer: "NG12 recommends a suspected cancer pathway referral.",
		Citations: []models.Citation{
			{Source: "NG12 PDF", Page: 4, ChunkID: "c0002", Excerpt: "..."},
		},
	}}
	r := newChatRouter(t, store, svc)

	w := postChat(r, `{"patient_id":"PT-101","message":"What next?"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body=%s", w.Code, w.Body.String())
	}

	var resp models.ChatResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.Answer != svc.result.Answer {
		t.Errorf("answer = %q", resp.Answer)
	}
	if len(resp.Citations) != 1 || resp.Citations[0].ChunkID != "c0002" {
		t.Errorf("citations = %+v", resp.Citations)
	}
	if len(resp.History) != 2 {
		t.Fatalf("history length = %d, want 2", len(resp.History))
	}
	if resp.History[0].Role != "user" || resp.History[0].Content != "What next?" {
		t.Errorf("first turn = %+v, want the user question", resp.History[0])
	}
	if resp.History[1].Role != "assistant" || resp.History[1].Content != svc.result.Answer {
		t.Errorf("second turn = %+v, want the assistant answer", resp.History[1])
	}
}

func TestHistoryEndpoints(t *testing.T) {
	store := sessions.NewMemoryStore()
	if err := store.Append("PT-101", "user", "first question"); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := store.Append("PT-101", "assistant", "first answer"); err != nil {
		t.Fatalf("append: %v", err)
	}
	r := newChatRouter(t, store, &fakeService{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/history/PT-101", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("GET status = %d, want 200", w.Code)
	}
	var resp models.HistoryResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.PatientID != "PT-101" || len(resp.History) != 2 {
		t.Fatalf("history response = %+v", resp)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/history/PT-101", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("DELETE status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"cleared"`) {
		t.Fatalf("DELETE body = %s", w.Body.String())
	}

	history, err := store.History("PT-101")
	if err != nil {
		t.Fatalf("history after clear: %v", err)
	}
	if len(history) != 0 {
		t.Fatalf("history after clear = %+v, want empty", history)
	}
}

func TestHistoryUnknownPatientIsEmpty(t *testing.T) {
	r := newChatRouter(t, sessions.NewMemoryStore(), &fakeService{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/history/PT-404", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var resp models.HistoryResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(resp.History) != 0 {
		t.Fatalf("history = %+v, want empty", resp.History)
	}
}
