package client

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/meridianhq/docsearch/internal/cli"
	"github.com/meridianhq/docsearch/internal/config"
	"github.com/meridianhq/docsearch/internal/domain"
	"github.com/meridianhq/docsearch/internal/extract"
)

// IndexCmd creates the index command.
func IndexCmd() *cobra.Command {
	var (
		collection   string
		sourceID     string
		chunkSize    int
		chunkOverlap int
	)

	cmd := &cobra.Command{
		Use:   "index <file>",
		Short: "Index a document",
		Long:  "Chunks, embeds and stores a document in a collection.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runIndex(cmd.Context(), args[0], collection, sourceID, chunkSize, chunkOverlap, outputJSON)
		},
	}

	cmd.Flags().StringVarP(&collection, "collection", "c", "default", "Target collection")
	cmd.Flags().StringVar(&sourceID, "source-id", "", "Source identifier (default: file name)")
	cmd.Flags().IntVar(&chunkSize, "chunk-size", 0, "Chunk size in characters (default: from config)")
	cmd.Flags().IntVar(&chunkOverlap, "chunk-overlap", -1, "Chunk overlap in characters (default: from config)")

	return cmd
}

func runIndex(ctx context.Context, path, collection, sourceID string, chunkSize, chunkOverlap int, outputJSON bool) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	text, format, err := extract.Text(path)
	if err != nil {
		return err
	}

	if sourceID == "" {
		sourceID = filepath.Base(path)
	}
	if chunkSize <= 0 {
		chunkSize = cfg.ChunkSize
	}
	// -1 means the flag was not set; an explicit 0 is a valid overlap.
	if chunkOverlap < 0 {
		chunkOverlap = cfg.ChunkOverlap
	}

	rt, err := cli.NewRuntime(cfg)
	if err != nil {
		return err
	}
	defer rt.Close()

	doc := domain.NewDocument(sourceID, format, text, time.Now().UTC())
	report, err := rt.Indexing.IndexDocument(ctx, doc, collection, chunkSize, chunkOverlap)
	if err != nil {
		return err
	}

	if outputJSON {
		return json.NewEncoder(os.Stdout).Encode(report)
	}

	fmt.Printf("Indexed %d/%d chunks from %s into collection %q (embedder: %s, took %s)\n",
		report.Indexed, report.TotalChunks, sourceID, collection, report.Embedder, report.Duration.Round(time.Millisecond))
	for _, rng := range report.Failed {
		fmt.Printf("  failed chunks [%d,%d): %s\n", rng.Start, rng.End, rng.Error)
	}
	if !report.Complete() {
		return fmt.Errorf("indexing incomplete: %d of %d chunks stored", report.Indexed, report.TotalChunks)
	}
	return nil
}
