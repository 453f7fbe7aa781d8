// ABOUTME: CLI commands to inspect and update user profiles
// ABOUTME: Show, learn, summarize, and audit subcommands
package commands

import (
	"encoding/json"
	"fmt"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var (
	profilePerCategory int
	auditCategory      string
)

// NewProfileCmd creates the profile command group
func NewProfileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Inspect and update user profiles",
		Long: `Inspect and update user profiles.

Examples:
  companion profile show Kira
  companion profile learn Kira "I love hiking near Bergen"
  companion profile summary Kira
  companion profile audit Kira --category preferences`,
	}

	cmd.AddCommand(newProfileShowCmd())
	cmd.AddCommand(newProfileLearnCmd())
	cmd.AddCommand(newProfileSummaryCmd())
	cmd.AddCommand(newProfileAuditCmd())

	return cmd
}

func newProfileShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [user]",
		Short: "Show a user's profile",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runProfileShow,
	}
}

func newProfileLearnCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "learn <user> <text>",
		Short: "Extract and record facts from a piece of text",
		Args:  cobra.ExactArgs(2),
		RunE:  runProfileLearn,
	}
}

func newProfileSummaryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "summary [user]",
		Short: "Print a one-line summary of what is known about a user",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runProfileSummary,
	}
	cmd.Flags().IntVar(&profilePerCategory, "per-category", 3, "Values shown per category")
	return cmd
}

func newProfileAuditCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "audit [user]",
		Short: "Show the preference audit trail for a user",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runProfileAudit,
	}
	cmd.Flags().StringVar(&auditCategory, "category", "preferences", "Fact category to audit")
	return cmd
}

func optionalUser(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return ""
}

func runProfileShow(cmd *cobra.Command, args []string) error {
	c, err := initCore()
	if err != nil {
		return err
	}
	defer c.Shutdown()

	p := c.GetProfile(optionalUser(args))

	if outputFormat == "json" {
		data, err := json.MarshalIndent(p, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", data)
		return nil
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "User:         %s\n", p.User)
	fmt.Fprintf(out, "Display name: %s\n", p.DisplayName)
	fmt.Fprintf(out, "Relationship: %s\n", p.Relationship)
	fmt.Fprintf(out, "Interactions: %d\n", p.Interactions)
	fmt.Fprintf(out, "Created:      %s\n", p.Created)
	fmt.Fprintf(out, "Updated:      %s\n", p.Updated)
	if p.Guardian.Pending {
		fmt.Fprintf(out, "Pending incident: %s (%s)\n", p.Guardian.PendingReason, p.Guardian.PendingSeverity)
	}

	categories := make([]string, 0, len(p.Facts))
	for cat := range p.Facts {
		categories = append(categories, cat)
	}
	sort.Strings(categories)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "CATEGORY\tVALUES\n")
	for _, cat := range categories {
		values := p.Facts[cat]
		if len(values) == 0 {
			continue
		}
		fmt.Fprintf(w, "%s\t%d recorded\n", cat, len(values))
		if verbose {
			for _, v := range values {
				fmt.Fprintf(w, "\t%s\n", truncate(v, 70))
			}
		}
	}
	return w.Flush()
}

func runProfileLearn(cmd *cobra.Command, args []string) error {
	c, err := initCore()
	if err != nil {
		return err
	}
	defer c.Shutdown()

	if c.LearnFromText(args[1], args[0]) {
		if !quiet {
			fmt.Fprintln(cmd.OutOrStdout(), "✓ Learned something new")
		}
		return nil
	}
	if !quiet {
		fmt.Fprintln(cmd.OutOrStdout(), "Nothing new to learn")
	}
	return nil
}

func runProfileSummary(cmd *cobra.Command, args []string) error {
	c, err := initCore()
	if err != nil {
		return err
	}
	defer c.Shutdown()

	fmt.Fprintln(cmd.OutOrStdout(), c.SummarizeUser(optionalUser(args), profilePerCategory))
	return nil
}

func runProfileAudit(cmd *cobra.Command, args []string) error {
	c, err := initCore()
	if err != nil {
		return err
	}
	defer c.Shutdown()

	entries := c.AuditEntries(optionalUser(args), auditCategory)

	if outputFormat == "json" {
		data, err := json.MarshalIndent(entries, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", data)
		return nil
	}

	if len(entries) == 0 {
		if !quiet {
			fmt.Fprintln(cmd.OutOrStdout(), "No audit entries")
		}
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "VALUE\tFIRST RECORDED\tLAST UPDATED\n")
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%s\t%s\n", truncate(e.Value, 50), e.FirstRecorded, e.LastUpdated)
	}
	return w.Flush()
}
