// ABOUTME: CLI command to append turns to the conversation log
// ABOUTME: Also learns facts from user turns unless disabled
package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bjorgsun/companion-core/internal/models"
)

var (
	logUser    string
	logNoLearn bool
)

// NewLogCmd creates the log command
func NewLogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "log <role> <content>",
		Short: "Append a turn to the conversation log",
		Long: `Append a turn to the conversation log and persist it.

Role is one of: user, assistant, system. User turns are also run
through the fact learner unless --no-learn is set.

Examples:
  companion log user "good morning"
  companion log assistant "good morning to you too"
  companion log --user Kira user "I love hiking"`,
		Args: cobra.ExactArgs(2),
		RunE: runLog,
	}

	cmd.Flags().StringVar(&logUser, "user", "", "User handle for fact learning (defaults to the owner)")
	cmd.Flags().BoolVar(&logNoLearn, "no-learn", false, "Skip fact learning for user turns")

	return cmd
}

func runLog(cmd *cobra.Command, args []string) error {
	role, content := args[0], args[1]

	c, err := initCore()
	if err != nil {
		return err
	}
	defer c.Shutdown()

	appended := c.LogTurn(role, content)
	if !appended {
		if !quiet {
			fmt.Fprintln(cmd.OutOrStdout(), "Skipped (empty or duplicate of the prior turn)")
		}
		return nil
	}

	learned := false
	if role == models.RoleUser && !logNoLearn {
		learned = c.LearnFromText(content, logUser)
	}

	if !quiet {
		msg := "✓ Logged turn"
		if learned {
			msg += " (learned something new)"
		}
		fmt.Fprintln(cmd.OutOrStdout(), msg)
	}
	return nil
}
