package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/vrorigins/internal/ir"
	"github.com/roach88/vrorigins/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Limit     int
	Action    string
	ActionSet string
	Launches  bool
}

// HistoryResult is the JSON payload of the history command.
type HistoryResult struct {
	Resolutions []ir.Resolution         `json:"resolutions,omitempty"`
	Launches    []store.BindingUILaunch `json:"launches,omitempty"`
	Total       int                     `json:"total"`
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded resolutions",
		Long: `List resolutions recorded in the history store, oldest first.

Examples:
  vrorigins history --db ./vrorigins.db
  vrorigins history --limit 10
  vrorigins history --action-set /actions/default --action /actions/default/in/squeeze
  vrorigins history --launches`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, cmd)
		},
	}

	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", 20, "show the last n resolutions (0 for all)")
	cmd.Flags().StringVar(&opts.ActionSet, "action-set", "", "only this action set (requires --action)")
	cmd.Flags().StringVar(&opts.Action, "action", "", "only this action")
	cmd.Flags().BoolVar(&opts.Launches, "launches", false, "list binding UI launches instead")

	return cmd
}

func runHistory(opts *HistoryOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	formatter := opts.formatter(cmd)

	if opts.ActionSet != "" && opts.Action == "" {
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, "--action-set requires --action", nil)
	}

	cfg, err := loadConfig(opts.RootOptions)
	if err != nil {
		return failLoad(formatter, err)
	}
	if cfg.Database == "" {
		return formatter.Fail(ExitCommandError, ErrCodeNoHistory, "no history database configured", nil)
	}

	st, _, err := openStore(ctx, cfg)
	if err != nil {
		return failLoad(formatter, err)
	}
	defer st.Close()

	if opts.Launches {
		launches, err := st.ListBindingUILaunches(ctx)
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeStore, "failed to read launches: "+err.Error(), nil)
		}
		if formatter.JSON() {
			return formatter.Success(HistoryResult{Launches: launches, Total: len(launches)})
		}
		w := cmd.OutOrStdout()
		if len(launches) == 0 {
			fmt.Fprintln(w, "No binding UI launches recorded.")
			return nil
		}
		for _, l := range launches {
			fmt.Fprintf(w, "[%d] %s desktop=%t -> %s\n", l.Seq, l.Device, l.ShowOnDesktop, l.Outcome)
		}
		return nil
	}

	var resolutions []ir.Resolution
	if opts.Action != "" {
		resolutions, err = listFor(ctx, st, opts)
	} else {
		resolutions, err = st.ListResolutions(ctx, opts.Limit)
	}
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeStore, "failed to read history: "+err.Error(), nil)
	}

	if formatter.JSON() {
		if resolutions == nil {
			resolutions = []ir.Resolution{}
		}
		return formatter.Success(HistoryResult{Resolutions: resolutions, Total: len(resolutions)})
	}

	w := cmd.OutOrStdout()
	if len(resolutions) == 0 {
		fmt.Fprintln(w, "No resolutions recorded.")
		return nil
	}
	for _, r := range resolutions {
		fmt.Fprintf(w, "[%d] %s %s -> %s", r.Seq, r.ActionSet, r.Action, r.Outcome)
		if r.Succeeded() {
			fmt.Fprintf(w, " (%d origin(s))", len(r.Records))
		}
		fmt.Fprintln(w)
		if opts.Verbose {
			fmt.Fprintf(w, "    id: %s  policy: %s  digest: %s\n", r.ID, r.Policy, r.Digest)
		}
	}
	return nil
}

// listFor filters by action, optionally within one action set, keeping the
// last Limit rows.
func listFor(ctx context.Context, st *store.Store, opts *HistoryOptions) ([]ir.Resolution, error) {
	var (
		rows []ir.Resolution
		err  error
	)
	if opts.ActionSet != "" {
		rows, err = st.ListResolutionsFor(ctx, opts.ActionSet, opts.Action)
		if err != nil {
			return nil, err
		}
	} else {
		all, err := st.ListResolutions(ctx, 0)
		if err != nil {
			return nil, err
		}
		for _, r := range all {
			if r.Action == opts.Action {
				rows = append(rows, r)
			}
		}
	}
	if opts.Limit > 0 && len(rows) > opts.Limit {
		rows = rows[len(rows)-opts.Limit:]
	}
	return rows, nil
}
