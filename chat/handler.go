package chat

import (
	"context"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"ng12-backend/models"
	"ng12-backend/sessions"
)

// PatientStore is the read-only patient lookup boundary.
type PatientStore interface {
	Lookup(patientID string) (*models.Patient, error)
}

// Service abstracts the agent for handler tests.
type Service interface {
	Answer(ctx context.Context, p *models.Patient, message string) (Result, error)
}

// Handler serves POST /chat and the history endpoints.
type Handler struct {
	patients PatientStore
	store    sessions.Store
	service  Service
}

func NewHandler(patients PatientStore, store sessions.Store, service Service) *Handler {
	return &Handler{patients: patients, store: store, service: service}
}

func (h *Handler) Chat(c *gin.Context) {
	var req models.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "patient_id and message are required"})
		return
	}

	p, err := h.patients.Lookup(req.PatientID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Patient not found"})
		return
	}

	// The user turn is recorded before the flow runs, like the assistant turn
	// after it; a failed request still shows what the user asked.
	if err := h.store.Append(req.PatientID, "user", req.Message); err != nil {
		log.Printf("[chat][session-append] patient=%s err=%v", req.PatientID, err)
	}

	result, err := h.service.Answer(c.Request.Context(), p, req.Message)
	if err != nil {
		log.Printf("[chat][error] patient=%s err=%v", req.PatientID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if err := h.store.Append(req.PatientID, "assistant", result.Answer); err != nil {
		log.Printf("[chat][session-append] patient=%s err=%v", req.PatientID, err)
	}

	history, err := h.store.History(req.PatientID)
	if err != nil {
		log.Printf("[chat][session-history] patient=%s err=%v", req.PatientID, err)
	}

	c.JSON(http.StatusOK, models.ChatResponse{
		PatientID: req.PatientID,
		Answer:    result.Answer,
		Citations: result.Citations,
		History:   history,
	})
}

func (h *Handler) History(c *gin.Context) {
	patientID := c.Param("patient_id")
	history, err := h.store.History(patientID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, models.HistoryResponse{PatientID: patientID, History: history})
}

func (h *Handler) ClearHistory(c *gin.Context) {
	patientID := c.Param("patient_id")
	if err := h.store.Clear(patientID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "cleared", "patient_id": patientID})
}
