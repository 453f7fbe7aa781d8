// ABOUTME: Root CLI command wiring global flags and subcommands
// ABOUTME: The CLI is an operator adapter over the core; it holds no state of its own
package commands

import (
	"github.com/spf13/cobra"
)

var (
	verbose      bool
	quiet        bool
	outputFormat string
)

// NewRootCmd creates the root command with all subcommands attached
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "companion",
		Short: "Operator CLI for the Bjorgsun-26 companion memory core",
		Long: `Operator CLI for the Bjorgsun-26 companion memory core.

Inspect and manage the conversation log, user profiles, relationships,
and memory exports from the terminal.

Examples:
  companion log user "good morning"
  companion search "favorite colour"
  companion profile Kira
  companion relationship set Kira friend`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	cmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress non-essential output")
	cmd.PersistentFlags().StringVar(&outputFormat, "format", "auto", "Output format: auto, json, table")
	cmd.MarkFlagsMutuallyExclusive("verbose", "quiet")

	cmd.AddCommand(NewLogCmd())
	cmd.AddCommand(NewSearchCmd())
	cmd.AddCommand(NewProfileCmd())
	cmd.AddCommand(NewRelationshipCmd())
	cmd.AddCommand(NewExportCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command
func Execute() error {
	return NewRootCmd().Execute()
}
