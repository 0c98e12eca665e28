package client

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/meridianhq/docsearch/internal/cli"
	"github.com/meridianhq/docsearch/internal/config"
)

// CollectionsCmd creates the collections command group.
func CollectionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "collections",
		Short: "Manage collections",
	}

	cmd.AddCommand(collectionsListCmd())
	cmd.AddCommand(collectionsStatsCmd())
	cmd.AddCommand(collectionsDropCmd())

	return cmd
}

func collectionsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List collections",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")

			rt, err := openRuntime()
			if err != nil {
				return err
			}
			defer rt.Close()

			names, err := rt.Store.ListCollections()
			if err != nil {
				return err
			}

			if outputJSON {
				if names == nil {
					names = []string{}
				}
				return json.NewEncoder(os.Stdout).Encode(names)
			}

			if len(names) == 0 {
				fmt.Println("No collections found.")
				return nil
			}
			for _, name := range names {
				fmt.Println(name)
			}
			return nil
		},
	}
}

func collectionsStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats <name>",
		Short: "Show collection statistics",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")

			rt, err := openRuntime()
			if err != nil {
				return err
			}
			defer rt.Close()

			stats, err := rt.Store.Stats(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if outputJSON {
				return json.NewEncoder(os.Stdout).Encode(stats)
			}

			fmt.Printf("Collection: %s\n", stats.Name)
			fmt.Printf("Records:    %d\n", stats.Records)
			fmt.Printf("Dimension:  %d\n", stats.Dimension)
			if stats.Embedder != "" {
				fmt.Printf("Embedder:   %s\n", stats.Embedder)
			}
			return nil
		},
	}
}

func collectionsDropCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "drop <name>",
		Short: "Drop a collection",
		Long:  "Removes a collection and all of its stored vectors.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime()
			if err != nil {
				return err
			}
			defer rt.Close()

			if err := rt.Store.DropCollection(args[0]); err != nil {
				return err
			}

			fmt.Printf("Dropped collection %q\n", args[0])
			return nil
		},
	}
}

func openRuntime() (*cli.Runtime, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return cli.NewRuntime(cfg)
}
