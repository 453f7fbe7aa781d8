// ABOUTME: CLI commands to manage relationships and guardian incidents
// ABOUTME: Set, show, incident, and apology subcommands
package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bjorgsun/companion-core/internal/profile"
)

var incidentSeverity string

// NewRelationshipCmd creates the relationship command group
func NewRelationshipCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "relationship",
		Short: "Manage relationships and guardian incidents",
		Long: `Manage relationships and guardian incidents.

Protected standings (father, family, best friend, dislike, ignore,
block) never change through interaction counting. Assigning father
status to anyone but the owner requires the father override code.

Examples:
  companion relationship set Kira friend
  companion relationship show Kira
  companion relationship incident Kira "shouted at me" --severity high
  companion relationship apology Kira`,
	}

	cmd.AddCommand(newRelationshipSetCmd())
	cmd.AddCommand(newRelationshipShowCmd())
	cmd.AddCommand(newRelationshipIncidentCmd())
	cmd.AddCommand(newRelationshipApologyCmd())

	return cmd
}

func newRelationshipSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <user> <status>",
		Short: "Set a user's relationship standing",
		Args:  cobra.ExactArgs(2),
		RunE:  runRelationshipSet,
	}
}

func newRelationshipShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [user]",
		Short: "Show a user's relationship standing",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runRelationshipShow,
	}
}

func newRelationshipIncidentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "incident <user> <reason>",
		Short: "Register a guardian incident against a user",
		Args:  cobra.ExactArgs(2),
		RunE:  runRelationshipIncident,
	}
	cmd.Flags().StringVar(&incidentSeverity, "severity", "low", "Incident severity")
	return cmd
}

func newRelationshipApologyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "apology <user>",
		Short: "Process an apology for a pending incident",
		Args:  cobra.ExactArgs(1),
		RunE:  runRelationshipApology,
	}
}

func runRelationshipSet(cmd *cobra.Command, args []string) error {
	c, err := initCore()
	if err != nil {
		return err
	}
	defer c.Shutdown()

	if !c.SetRelationship(args[0], args[1]) {
		return fmt.Errorf("relationship %q was not applied", args[1])
	}
	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "✓ %s is now %q\n", args[0], args[1])
	}
	return nil
}

func runRelationshipShow(cmd *cobra.Command, args []string) error {
	c, err := initCore()
	if err != nil {
		return err
	}
	defer c.Shutdown()

	user := optionalUser(args)
	fmt.Fprintln(cmd.OutOrStdout(), c.GetRelationship(user))
	if verbose && c.GuardianPending(user) {
		fmt.Fprintln(cmd.OutOrStdout(), "A guardian incident is pending")
	}
	return nil
}

func runRelationshipIncident(cmd *cobra.Command, args []string) error {
	c, err := initCore()
	if err != nil {
		return err
	}
	defer c.Shutdown()

	c.GuardianRegisterIncident(args[0], args[1], incidentSeverity)
	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Incident recorded for %s\n", args[0])
	}
	return nil
}

func runRelationshipApology(cmd *cobra.Command, args []string) error {
	c, err := initCore()
	if err != nil {
		return err
	}
	defer c.Shutdown()

	user := args[0]
	result := c.ProcessApology(user, c.GetRelationship(user))

	if outputFormat == "json" {
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", data)
		return nil
	}

	switch result.Status {
	case profile.ApologyForgiven:
		if result.Remaining >= 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "Forgiven (%d forgiveness left)\n", result.Remaining)
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), "Forgiven")
		}
	case profile.ApologyNoPending:
		fmt.Fprintln(cmd.OutOrStdout(), "Nothing to forgive")
	default:
		fmt.Fprintln(cmd.OutOrStdout(), "Forgiveness limit reached")
	}
	return nil
}
