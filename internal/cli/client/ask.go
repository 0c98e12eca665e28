package client

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/meridianhq/docsearch/internal/cli"
	"github.com/meridianhq/docsearch/internal/config"
)

// AskCmd creates the ask command.
func AskCmd() *cobra.Command {
	var (
		collection      string
		limit           int
		maxContextChars int
	)

	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask a question",
		Long:  "Answers a question using retrieval-augmented generation over a collection.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runAsk(cmd.Context(), args[0], collection, limit, maxContextChars, outputJSON)
		},
	}

	cmd.Flags().StringVarP(&collection, "collection", "c", "default", "Collection to query")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Maximum number of retrieved chunks (default: from config)")
	cmd.Flags().IntVar(&maxContextChars, "max-context", 0, "Context budget in characters (default: from config)")

	return cmd
}

func runAsk(ctx context.Context, question, collection string, limit, maxContextChars int, outputJSON bool) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	rt, err := cli.NewRuntime(cfg)
	if err != nil {
		return err
	}
	defer rt.Close()

	answer, err := rt.Query.AnswerQuestion(ctx, question, collection, limit, maxContextChars)
	if err != nil {
		return err
	}

	if outputJSON {
		return json.NewEncoder(os.Stdout).Encode(answer)
	}

	fmt.Println(answer.Text)
	if len(answer.Attributions) > 0 {
		fmt.Println("\nSources:")
		for _, attr := range answer.Attributions {
			fmt.Printf("  - %s (chunk %d, score %.2f)\n", attr.SourceID, attr.ChunkIndex, attr.Score)
		}
	}
	return nil
}
