package assess

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"ng12-backend/models"
)

// PatientStore is the read-only patient lookup boundary.
type PatientStore interface {
	Lookup(patientID string) (*models.Patient, error)
}

// Service abstracts the assessor for handler tests.
type Service interface {
	Assess(ctx context.Context, p *models.Patient) models.AssessResponse
}

// Handler serves POST /assess.
type Handler struct {
	patients PatientStore
	service  Service
}

func NewHandler(patients PatientStore, service Service) *Handler {
	return &Handler{patients: patients, service: service}
}

func (h *Handler) Assess(c *gin.Context) {
	var req models.AssessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "patient_id is required"})
		return
	}

	p, err := h.patients.Lookup(req.PatientID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Patient not found"})
		return
	}

	c.JSON(http.StatusOK, h.service.Assess(c.Request.Context(), p))
}
