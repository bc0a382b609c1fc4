// Package patients reads patient records from a JSON file. The file may hold
// either an object keyed by patient id or an array of records; both shapes are
// accepted. The store is read-only.
package patients

import (
	"encoding/json"
	"errors"
	"os"

	"ng12-backend/models"
)

// ErrNotFound is returned when no record exists for the requested patient id.
var ErrNotFound = errors.New("patient not found")

// Store looks up patient records by id.
type Store struct {
	path string
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

// Lookup returns the record for patientID or ErrNotFound. A missing, empty or
// corrupt patients file is treated as "no patients" rather than an error.
func (s *Store) Lookup(patientID string) (*models.Patient, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return nil, ErrNotFound
	}
	if len(raw) == 0 {
		return nil, ErrNotFound
	}

	// Object shape: {"PT-101": {...}}
	var byID map[string]models.Patient
	if err := json.Unmarshal(raw, &byID); err == nil {
		if p, ok := byID[patientID]; ok {
			if p.PatientID == "" {
				p.PatientID = patientID
			}
			return &p, nil
		}
		return nil, ErrNotFound
	}

	// Array shape: [{"patient_id": "...", ...}]
	var list []models.Patient
	if err := json.Unmarshal(raw, &list); err == nil {
		for i := range list {
			if list[i].PatientID == patientID {
				return &list[i], nil
			}
		}
	}
	return nil, ErrNotFound
}
