package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/meridianhq/docsearch/internal/cli"
	"github.com/meridianhq/docsearch/internal/cli/client"
)

var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "docsearch",
		Short: "Docsearch CLI - Retrieval-augmented document search",
		Long: `Docsearch CLI indexes documents and answers questions over them.

Environment variables:
  GEMINI_API_KEY    API key for remote embeddings (optional, local fallback used otherwise)
  MISTRAL_API_KEY   API key for answer generation (required for ask)
  VECTOR_DB_PATH    Directory holding collection databases (default: data/index)`,
		Version: version,
	}

	rootCmd.PersistentFlags().Bool("output", false, "Output as JSON")
	cli.AddHelpJSONFlag(rootCmd)

	rootCmd.AddCommand(client.IndexCmd())
	rootCmd.AddCommand(client.SearchCmd())
	rootCmd.AddCommand(client.AskCmd())
	rootCmd.AddCommand(client.CollectionsCmd())

	cli.CheckHelpJSON(rootCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
