// ng12-backend answers clinical questions about cancer-referral urgency,
// grounded in excerpts of the NICE NG12 guideline matched to an individual
// patient's recorded symptoms and findings.
package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "ng12-backend",
	Short: "NG12 cancer-referral urgency assessment service",
	Long: `ng12-backend serves structured risk assessments and evidence-grounded chat
over the NICE NG12 suspected-cancer guideline.

Run "ingest" once to build the guideline index from the NG12 PDF, then
"serve" to start the HTTP API.`,
}

func main() {
	// Optional .env for local development; real deployments set the
	// environment directly.
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
