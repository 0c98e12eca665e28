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

// SearchCmd creates the search command.
func SearchCmd() *cobra.Command {
	var (
		collection string
		limit      int
	)

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search a collection",
		Long:  "Searches a collection using semantic similarity.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runSearch(cmd.Context(), args[0], collection, limit, outputJSON)
		},
	}

	cmd.Flags().StringVarP(&collection, "collection", "c", "default", "Collection to search")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Maximum number of results (default: from config)")

	return cmd
}

func runSearch(ctx context.Context, query, collection string, limit int, outputJSON bool) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	rt, err := cli.NewRuntime(cfg)
	if err != nil {
		return err
	}
	defer rt.Close()

	hits, err := rt.Retriever.Search(ctx, collection, query, limit)
	if err != nil {
		return err
	}

	if outputJSON {
		return json.NewEncoder(os.Stdout).Encode(hits)
	}

	if len(hits) == 0 {
		fmt.Println("No results found.")
		return nil
	}

	for i, hit := range hits {
		fmt.Printf("%d. %s (chunk %d, score %.4f)\n", i+1, hit.SourceID, hit.ChunkIndex, hit.Score)
		fmt.Printf("   %s\n", snippet(hit.Content, 160))
	}
	return nil
}

func snippet(text string, max int) string {
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max]) + "..."
}
