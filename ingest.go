package main

import (
	"log"

	"github.com/spf13/cobra"

	"ng12-backend/config"
	"ng12-backend/rag"
	"ng12-backend/vertex"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Build the guideline index from the NG12 PDF",
	Long: `ingest extracts the NG12 PDF page by page, chunks the text, embeds every
chunk and writes a fresh index. It must run once before "serve"; rerunning it
rebuilds the index from scratch.`,
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return err
	}

	ai, err := vertex.NewClient(cfg)
	if err != nil {
		return err
	}

	n, err := rag.Ingest(cmd.Context(), cfg.PDFPath, cfg.IndexPath, ai)
	if err != nil {
		return err
	}
	log.Printf("[ingest] done: %d chunks indexed at %s", n, cfg.IndexPath)
	return nil
}
