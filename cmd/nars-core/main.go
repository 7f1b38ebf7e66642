// Command nars-core runs the non-axiomatic reasoning core: an HTTP API
// front door over a belief/task memory, a cycling driver advancing it, and
// optional snapshot persistence and cluster membership.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var (
	version = "0.1.0-dev"
	logger  *slog.Logger
)

func main() {
	logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	rootCmd := &cobra.Command{
		Use:     "nars-core",
		Short:   "Non-axiomatic reasoning core",
		Version: version,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(cycleCmd())
	rootCmd.AddCommand(snapshotCmd())
	rootCmd.AddCommand(clusterCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
