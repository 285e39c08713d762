// Command skillgap runs resume analyses from the terminal.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"skillgap-backend/internal/bootstrap"
	"skillgap-backend/internal/shared/config"
	"skillgap-backend/internal/shared/telemetry"
)

// appBuilder builds the dependencies a command needs.
type appBuilder func(ctx context.Context) (*bootstrap.App, error)

func defaultBuilder(ctx context.Context) (*bootstrap.App, error) {
	cfg := config.Load()
	return bootstrap.Build(ctx, cfg, bootstrap.RoleCLI)
}

func newRootCmd(build appBuilder) *cobra.Command {
	root := &cobra.Command{
		Use:           "skillgap",
		Short:         "Resume skill-gap analyzer",
		Long:          "skillgap compares a resume against current job postings, reports the skills it is missing and builds a four-week learning plan.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newAnalyzeCmd(build), newHistoryCmd(build), newResourcesCmd(build))
	return root
}

func main() {
	_ = godotenv.Load()
	// keep stdout for command output
	telemetry.SetOutput(os.Stderr, false)

	if err := newRootCmd(defaultBuilder).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
