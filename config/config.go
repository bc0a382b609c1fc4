// Package config loads service configuration from environment variables.
package config

import (
	"errors"
	"os"
	"strconv"
	"time"
)

// ErrMissingProject is returned when the required cloud project id is not set.
// It is fatal: the embedding and generation endpoints cannot be resolved without it.
var ErrMissingProject = errors.New("GOOGLE_CLOUD_PROJECT is not set; export your GCP project id before starting")

// Settings holds the runtime configuration. All fields except ProjectID have
// safe defaults.
type Settings struct {
	ProjectID   string
	Location    string
	Model       string
	EmbedModel  string
	AccessToken string

	TopK         int
	TopCitations int

	PDFPath      string
	IndexPath    string
	PatientsPath string
	HTTPAddr     string

	RequestTimeout time.Duration

	// MySQL session persistence; memory store is used when DBHost is empty.
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
}

// Load reads all settings from the environment.
func Load() *Settings {
	return &Settings{
		ProjectID:      os.Getenv("GOOGLE_CLOUD_PROJECT"),
		Location:       envDefault("GOOGLE_CLOUD_LOCATION", "us-central1"),
		Model:          envDefault("NG12_MODEL", "gemini-2.0-flash-001"),
		EmbedModel:     envDefault("VERTEX_EMBED_MODEL", "text-embedding-004"),
		AccessToken:    os.Getenv("VERTEX_ACCESS_TOKEN"),
		TopK:           envInt("NG12_TOP_K", 10),
		TopCitations:   envInt("NG12_CHAT_TOP_CITATIONS", 3),
		PDFPath:        envDefault("NG12_PDF_PATH", "data/ng12.pdf"),
		IndexPath:      envDefault("NG12_INDEX_PATH", "data/index/ng12.db"),
		PatientsPath:   envDefault("NG12_PATIENTS_PATH", "data/patients.json"),
		HTTPAddr:       envDefault("NG12_HTTP_ADDR", ":8080"),
		RequestTimeout: time.Duration(envInt("NG12_TIMEOUT_SEC", 30)) * time.Second,
		DBHost:         os.Getenv("DB_HOST"),
		DBPort:         envDefault("DB_PORT", "3306"),
		DBUser:         os.Getenv("DB_USER"),
		DBPassword:     os.Getenv("DB_PASSWORD"),
		DBName:         envDefault("DB_NAME", "ng12"),
	}
}

// Validate reports configuration errors that must stop the process before it
// serves any request.
func (s *Settings) Validate() error {
	if s.ProjectID == "" {
		return ErrMissingProject
	}
	return nil
}

// SessionsInMySQL reports whether conversation history should be persisted.
func (s *Settings) SessionsInMySQL() bool {
	return s.DBHost != ""
}

func envDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}
