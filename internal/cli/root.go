package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	workDir    string
	outputJSON bool
)

// Execute runs the root cobra command.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "coverbuild",
		Short: "Durable build-progress ledger for repository-wide package testing",
	}

	cmd.PersistentFlags().StringVar(&workDir, "workdir", "", "Path to the workspace directory")
	cmd.PersistentFlags().BoolVar(&outputJSON, "json", false, "Output machine-readable JSON")

	cmd.AddCommand(newInitCmd())
	cmd.AddCommand(newStatusCmd())
	cmd.AddCommand(newReportCmd())
	cmd.AddCommand(newWatchCmd())

	return cmd
}
