// ABOUTME: CLI commands for memory snapshots and log maintenance
// ABOUTME: Export, prune, and persistence subcommands
package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var exportLabel string

// NewExportCmd creates the export command group
func NewExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Manage memory snapshots and the conversation log",
		Long: `Manage memory snapshots and the conversation log.

Examples:
  companion export snapshot --label before-upgrade
  companion export prune 5
  companion export persistence off`,
	}

	cmd.AddCommand(newExportSnapshotCmd())
	cmd.AddCommand(newExportPruneCmd())
	cmd.AddCommand(newExportPersistenceCmd())

	return cmd
}

func newExportSnapshotCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Write a timestamped export of the memory file",
		Args:  cobra.NoArgs,
		RunE:  runExportSnapshot,
	}
	cmd.Flags().StringVar(&exportLabel, "label", "", "Optional label appended to the export filename")
	return cmd
}

func newExportPruneCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "prune <count>",
		Short: "Drop the most recent turns from the conversation log",
		Args:  cobra.ExactArgs(1),
		RunE:  runExportPrune,
	}
}

func newExportPersistenceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "persistence <on|off>",
		Short: "Toggle disk persistence for the current process",
		Args:  cobra.ExactArgs(1),
		RunE:  runExportPersistence,
	}
}

func runExportSnapshot(cmd *cobra.Command, args []string) error {
	c, err := initCore()
	if err != nil {
		return err
	}
	defer c.Shutdown()

	path, ok := c.ExportSnapshot(exportLabel)
	if !ok {
		return fmt.Errorf("export failed")
	}
	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Exported to %s\n", path)
	}
	return nil
}

func runExportPrune(cmd *cobra.Command, args []string) error {
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 1 {
		return fmt.Errorf("count must be a positive integer, got %q", args[0])
	}

	c, err := initCore()
	if err != nil {
		return err
	}
	defer c.Shutdown()

	dropped := c.PruneRecent(n)
	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Dropped %d turn(s)\n", dropped)
	}
	return nil
}

func runExportPersistence(cmd *cobra.Command, args []string) error {
	var on bool
	switch args[0] {
	case "on":
		on = true
	case "off":
		on = false
	default:
		return fmt.Errorf("expected on or off, got %q", args[0])
	}

	c, err := initCore()
	if err != nil {
		return err
	}
	defer c.Shutdown()

	c.SetPersistence(on)
	if !quiet {
		state := "enabled"
		if !on {
			state = "disabled"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Persistence %s\n", state)
	}
	return nil
}
