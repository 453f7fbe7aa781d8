// ABOUTME: Tests for the export command group structure
// ABOUTME: Verifies subcommands, the label flag, and prune argument validation

package commands

import (
	"strings"
	"testing"
)

func TestNewExportCmd(t *testing.T) {
	cmd := NewExportCmd()

	if cmd.Use != "export" {
		t.Errorf("Use = %q, want export", cmd.Use)
	}

	expected := []string{"snapshot", "prune", "persistence"}
	for _, name := range expected {
		found := false
		for _, sub := range cmd.Commands() {
			if sub.Use == name || strings.HasPrefix(sub.Use, name+" ") {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("Subcommand %q not found", name)
		}
	}
}

func TestExportSnapshotCmd_LabelFlag(t *testing.T) {
	cmd := newExportSnapshotCmd()

	flag := cmd.Flags().Lookup("label")
	if flag == nil {
		t.Fatal("--label flag not found")
	}
	if flag.DefValue != "" {
		t.Errorf("--label default = %q, want empty", flag.DefValue)
	}
}

func TestExportPruneCmd_RequiresCount(t *testing.T) {
	cmd := newExportPruneCmd()

	if err := cmd.Args(cmd, []string{}); err == nil {
		t.Error("no args accepted, want error")
	}
	if err := cmd.Args(cmd, []string{"5"}); err != nil {
		t.Errorf("one arg rejected: %v", err)
	}
}

func TestExportPersistenceCmd_RequiresMode(t *testing.T) {
	cmd := newExportPersistenceCmd()

	if err := cmd.Args(cmd, []string{}); err == nil {
		t.Error("no args accepted, want error")
	}
	if err := cmd.Args(cmd, []string{"on"}); err != nil {
		t.Errorf("one arg rejected: %v", err)
	}
}
