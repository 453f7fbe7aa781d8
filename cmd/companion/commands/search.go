// ABOUTME: CLI command to search the conversation log
// ABOUTME: Term-AND retrieval with chronological output
package commands

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

var searchMaxHits int

// NewSearchCmd creates the search command
func NewSearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search past conversation turns",
		Long: `Search past conversation turns.

Returns turns whose content contains every term of the query, oldest
first. Assistant and system turns are preferred over user turns.

Examples:
  companion search "favorite colour"
  companion search --max-hits 10 "birthday"
  companion search --format json "project deadline"`,
		Args: cobra.ExactArgs(1),
		RunE: runSearch,
	}

	cmd.Flags().IntVar(&searchMaxHits, "max-hits", 5, "Maximum number of results")

	return cmd
}

func runSearch(cmd *cobra.Command, args []string) error {
	c, err := initCore()
	if err != nil {
		return err
	}
	defer c.Shutdown()

	hits := c.SearchMemories(args[0], searchMaxHits)

	if outputFormat == "json" {
		data, err := json.MarshalIndent(hits, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", data)
		return nil
	}

	if len(hits) == 0 {
		if !quiet {
			fmt.Fprintln(cmd.OutOrStdout(), "No matching turns found")
		}
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "WHEN\tROLE\tCONTENT\n")
	for _, hit := range hits {
		when := hit.Timestamp
		if t, err := time.Parse(time.RFC3339, hit.Timestamp); err == nil {
			when = formatTime(t)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", when, hit.Role, truncate(hit.Content, 70))
	}
	return w.Flush()
}
