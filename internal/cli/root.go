// Package cli holds the maturitymap command tree: the HTTP server, the
// interactive terminal assessment, and read-only catalog and history views.
package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

// Version is injected at build time via -ldflags
var Version = "dev"

// NewRootCommand creates and returns the root cobra command for maturitymap
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "maturitymap",
		Short: "Healthcare AI maturity assessment",
		Long: `MaturityMap walks a healthcare organization through a ten question
survey on AI readiness, sends the answers to Gemini for scoring, and
presents category scores, recommendations and a benchmark comparison.

Run it as an HTTP service with "serve" or answer the survey in the
terminal with "take".`,
		Version:      Version,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().String("config", "", "path to a YAML config file")

	cmd.AddCommand(NewServeCommand())
	cmd.AddCommand(NewTakeCommand())
	cmd.AddCommand(NewHistoryCommand())
	cmd.AddCommand(NewCatalogCommand())

	return cmd
}

// defaultDataDir is where the terminal runner keeps its previous result and history
func defaultDataDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".maturitymap"), nil
}

func resolveDataDir(cmd *cobra.Command) (string, error) {
	dir, _ := cmd.Flags().GetString("data-dir")
	if dir != "" {
		return dir, nil
	}
	return defaultDataDir()
}

func historyPath(dataDir string) string {
	return filepath.Join(dataDir, "history.db")
}
