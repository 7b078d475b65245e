package cli

import (
	"encoding/json"
	"fmt"
	"maturitymap/internal/catalog"

	"github.com/spf13/cobra"
)

// NewCatalogCommand creates the 'maturitymap catalog' command
func NewCatalogCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Print the assessment questions",
		Args:  cobra.NoArgs,
		RunE:  runCatalog,
	}
	cmd.Flags().Bool("json", false, "print the catalog as JSON")
	return cmd
}

func runCatalog(cmd *cobra.Command, _ []string) error {
	asJSON, _ := cmd.Flags().GetBool("json")
	output := cmd.OutOrStdout()
	questions := catalog.Questions()

	if asJSON {
		enc := json.NewEncoder(output)
		enc.SetIndent("", "  ")
		return enc.Encode(questions)
	}

	for _, q := range questions {
		titleColor.Fprintf(output, "%d. %s\n", q.ID, q.Text)
		dimColor.Fprintf(output, "   %s: %s\n", q.Category, catalog.CategoryDescription(q.Category))
		fmt.Fprintf(output, "   Options: ")
		for i, opt := range q.Options {
			if i > 0 {
				fmt.Fprint(output, ", ")
			}
			fmt.Fprint(output, opt)
		}
		fmt.Fprintln(output)
	}
	return nil
}
