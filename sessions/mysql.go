package sessions

import (
	"database/sql"

	"ng12-backend/models"
)

// MySQLStore persists conversation history so it survives restarts. FIFO
// order is guaranteed by the auto-increment id.
type MySQLStore struct {
	db *sql.DB
}

// NewMySQLStore creates the backing table if needed.
func NewMySQLStore(db *sql.DB) (*MySQLStore, error) {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS conversation_messages (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		patient_id VARCHAR(64) NOT NULL,
		role VARCHAR(16) NOT NULL,
		content TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		INDEX idx_conversation_patient (patient_id)
	)`)
	if err != nil {
		return nil, err
	}
	return &MySQLStore{db: db}, nil
}

func (s *MySQLStore) Append(patientID, role, content string) error {
	_, err := s.db.Exec(
		`INSERT INTO conversation_messages (patient_id, role, content) VALUES (?, ?, ?)`,
		patientID, role, content,
	)
	return err
}

func (s *MySQLStore) History(patientID string) ([]models.Message, error) {
	rows, err := s.db.Query(
		`SELECT role, content FROM conversation_messages WHERE patient_id = ? ORDER BY id`,
		patientID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Message
	for rows.Next() {
		var m models.Message
		if err := rows.Scan(&m.Role, &m.Content); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *MySQLStore) Clear(patientID string) error {
	_, err := s.db.Exec(`DELETE FROM conversation_messages WHERE patient_id = ?`, patientID)
	return err
}
