package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"maturitymap/internal/repository"
	"os"

	"github.com/spf13/cobra"
)

// NewHistoryCommand creates the 'maturitymap history' command
func NewHistoryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List past terminal assessments for an email",
		Args:  cobra.NoArgs,
		RunE:  runHistory,
	}

	cmd.Flags().String("email", "", "email used to log in (required)")
	cmd.Flags().Int("limit", repository.DefaultHistoryLimit, "maximum number of assessments to show")
	cmd.Flags().Bool("json", false, "print records as JSON")
	cmd.Flags().String("data-dir", "", "directory holding history.db (default ~/.maturitymap)")
	cmd.MarkFlagRequired("email")

	return cmd
}

func runHistory(cmd *cobra.Command, _ []string) error {
	email, _ := cmd.Flags().GetString("email")
	limit, _ := cmd.Flags().GetInt("limit")
	asJSON, _ := cmd.Flags().GetBool("json")
	output := cmd.OutOrStdout()

	dataDir, err := resolveDataDir(cmd)
	if err != nil {
		return err
	}
	path := historyPath(dataDir)
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(output, "No assessments recorded yet (%s)\n", path)
		return nil
	}

	repo, err := repository.NewSQLiteAssessmentRepo(path)
	if err != nil {
		return fmt.Errorf("open history: %w", err)
	}
	defer repo.Close()

	records, err := repo.ListByEmail(cmd.Context(), email, limit)
	if err != nil {
		return fmt.Errorf("list history: %w", err)
	}

	if asJSON {
		enc := json.NewEncoder(output)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	}
	if len(records) == 0 {
		fmt.Fprintf(output, "No assessments recorded for %s\n", email)
		return nil
	}
	renderHistory(output, records)
	return nil
}
