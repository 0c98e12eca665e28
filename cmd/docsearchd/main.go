package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/meridianhq/docsearch/internal/cli"
	"github.com/meridianhq/docsearch/internal/cli/admin"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "docsearchd",
		Short: "Docsearch daemon and admin CLI",
		Long:  "Docsearch daemon for running the API server and managing collection backups",
	}

	cli.AddHelpJSONFlag(rootCmd)
	rootCmd.AddCommand(admin.ServeCmd())
	rootCmd.AddCommand(admin.BackupCmd())
	rootCmd.AddCommand(admin.RestoreCmd())

	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	cli.CheckHelpJSON(rootCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
