// Package sessions stores per-patient conversation history. Entries are
// append-only and returned in request order.
package sessions

import (
	"sync"

	"ng12-backend/models"
)

// Store is the conversation log abstraction injected into the chat handler.
// Append must be atomic per patient id; History returns a snapshot at call
// time with no consistency guarantee against a concurrent in-flight append.
type Store interface {
	Append(patientID, role, content string) error
	History(patientID string) ([]models.Message, error)
	Clear(patientID string) error
}

// MemoryStore keeps history in memory behind a single coarse lock. It is the
// default backend; history is lost on restart.
type MemoryStore struct {
	mu       sync.Mutex
	messages map[string][]models.Message
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{messages: make(map[string][]models.Message)}
}

func (s *MemoryStore) Append(patientID, role, content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages[patientID] = append(s.messages[patientID], models.Message{Role: role, Content: content})
	return nil
}

func (s *MemoryStore) History(patientID string) ([]models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Message, len(s.messages[patientID]))
	copy(out, s.messages[patientID])
	return out, nil
}

func (s *MemoryStore) Clear(patientID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.messages, patientID)
	return nil
}
