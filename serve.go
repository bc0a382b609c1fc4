package main

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"ng12-backend/assess"
	"ng12-backend/chat"
	"ng12-backend/config"
	"ng12-backend/conn"
	"ng12-backend/patients"
	"ng12-backend/rag"
	"ng12-backend/sessions"
	"ng12-backend/vertex"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return err
	}

	log.Printf("[main] starting NG12 server")
	log.Printf("[main] GOOGLE_CLOUD_PROJECT=%s GOOGLE_CLOUD_LOCATION=%s", cfg.ProjectID, cfg.Location)
	log.Printf("[main] NG12_MODEL=%s NG12_TOP_K=%d NG12_CHAT_TOP_CITATIONS=%d", cfg.Model, cfg.TopK, cfg.TopCitations)

	ai, err := vertex.NewClient(cfg)
	if err != nil {
		return err
	}

	index, err := rag.Open(cfg.IndexPath)
	if err != nil {
		return err
	}
	log.Printf("[main] guideline index loaded: %d chunks from %s", index.Len(), cfg.IndexPath)

	patientStore := patients.NewStore(cfg.PatientsPath)
	sessionStore := newSessionStore(cfg)

	retriever := rag.NewRetriever(ai, index)
	assessHandler := assess.NewHandler(patientStore, assess.NewAssessor(retriever, ai, cfg.TopK))
	chatHandler := chat.NewHandler(patientStore, sessionStore, chat.NewAgent(retriever, ai, cfg.TopK, cfg.TopCitations))

	r := gin.Default()
	r.Use(requestID())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.POST("/assess", assessHandler.Assess)
	r.POST("/chat", chatHandler.Chat)
	r.GET("/history/:patient_id", chatHandler.History)
	r.DELETE("/history/:patient_id", chatHandler.ClearHistory)

	return r.Run(cfg.HTTPAddr)
}

// newSessionStore picks MySQL-backed history when DB_HOST is configured and
// falls back to the in-memory store otherwise.
func newSessionStore(cfg *config.Settings) sessions.Store {
	if !cfg.SessionsInMySQL() {
		return sessions.NewMemoryStore()
	}
	db, err := conn.NewMySQL(cfg)
	if err != nil {
		log.Printf("[main] mysql unavailable, using in-memory sessions: %v", err)
		return sessions.NewMemoryStore()
	}
	store, err := sessions.NewMySQLStore(db)
	if err != nil {
		log.Printf("[main] mysql session table failed, using in-memory sessions: %v", err)
		return sessions.NewMemoryStore()
	}
	log.Printf("[main] session history persisted to mysql db=%s", cfg.DBName)
	return store
}

func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Writer.Header().Set("X-Request-ID", id)
		c.Next()
	}
}
