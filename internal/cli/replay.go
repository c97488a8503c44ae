package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/vrorigins/internal/command"
)

// ReplayResult holds the overall replay result.
type ReplayResult struct {
	Actions      []command.ReplayResult `json:"actions"`
	TotalActions int                    `json:"total_actions"`
	AllUnchanged bool                   `json:"all_unchanged"`
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "replay",
		Short: "Re-resolve recorded actions and compare digests",
		Long: `Re-resolve every action with a successful resolution in the history
store and verify the current bindings produce the same result digest.

Exit codes:
  0 - Every action resolves to the recorded result
  1 - At least one action changed or no longer resolves
  2 - Command error (no history configured, bring-up failed, etc.)

Examples:
  vrorigins replay --db ./vrorigins.db
  vrorigins replay --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(rootOpts, cmd)
		},
	}
}

func runReplay(opts *RootOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	formatter := opts.formatter(cmd)

	sess, err := openSession(ctx, opts, cmd.ErrOrStderr())
	if err != nil {
		return failLoad(formatter, err)
	}
	defer sess.Close(context.WithoutCancel(ctx))

	if sess.store == nil {
		return formatter.Fail(ExitCommandError, ErrCodeNoHistory, "no history database configured", nil)
	}

	actions, err := sess.svc.Replay(ctx)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeStore, err.Error(), nil)
	}

	result := ReplayResult{
		Actions:      actions,
		TotalActions: len(actions),
		AllUnchanged: true,
	}
	for _, a := range actions {
		if !a.Unchanged {
			result.AllUnchanged = false
		}
	}

	if formatter.JSON() {
		return outputReplayJSON(formatter, result)
	}
	return outputReplayText(cmd, result, opts.Verbose)
}

func outputReplayJSON(formatter *OutputFormatter, result ReplayResult) error {
	if result.Actions == nil {
		result.Actions = []command.ReplayResult{}
	}
	response := CLIResponse{Status: "ok", Data: result}
	if !result.AllUnchanged {
		response.Status = "error"
		response.Error = &CLIError{
			Code:    ErrCodeBindingsChanged,
			Message: "bindings changed since they were recorded",
		}
	}
	if err := formatter.encode(response); err != nil {
		return err
	}
	if !result.AllUnchanged {
		return NewExitError(ExitFailure, "bindings changed since they were recorded")
	}
	return nil
}

func outputReplayText(cmd *cobra.Command, result ReplayResult, verbose bool) error {
	w := cmd.OutOrStdout()

	if result.TotalActions == 0 {
		fmt.Fprintln(w, "No successful resolutions recorded.")
		return nil
	}

	fmt.Fprintf(w, "Replay Summary: %d action(s)\n", result.TotalActions)
	fmt.Fprintln(w)

	for _, a := range result.Actions {
		status := "✓"
		if !a.Unchanged {
			status = "✗"
		}
		fmt.Fprintf(w, "%s %s %s -> %s\n", status, a.ActionSet, a.Action, a.Outcome)
		if verbose || !a.Unchanged {
			fmt.Fprintf(w, "  recorded: %s (%s)\n", a.StoredDigest, a.StoredID)
			fmt.Fprintf(w, "  current:  %s\n", a.Digest)
		}
	}
	fmt.Fprintln(w)

	if result.AllUnchanged {
		fmt.Fprintln(w, "✓ All actions resolve to their recorded results")
		return nil
	}
	fmt.Fprintln(w, "✗ Bindings changed since they were recorded")
	return NewExitError(ExitFailure, "bindings changed since they were recorded")
}
