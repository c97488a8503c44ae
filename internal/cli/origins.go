package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/vrorigins/internal/ir"
	"github.com/roach88/vrorigins/internal/origins"
)

// OriginsResult is the JSON payload of the origins command.
type OriginsResult struct {
	ActionSet string                 `json:"action_set"`
	Action    string                 `json:"action"`
	Policy    string                 `json:"policy"`
	Digest    string                 `json:"digest"`
	Records   []ir.BindingOriginData `json:"records"`
}

// NewOriginsCommand creates the origins command.
func NewOriginsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "origins <action-set> <action>",
		Short: "Resolve the binding origins of an action",
		Long: `Resolve the physical controller inputs bound to an action.

For every bound origin the localized controller type, hand and input
source names are printed together with the binding's device path, input
path, mode, slot and source type.

Exit codes:
  0 - Origins resolved (possibly none)
  1 - No result (unknown action, runtime query failed, metadata mismatch)
  2 - Command error (bad config, manifest or fixture)

Examples:
  vrorigins origins /actions/default /actions/default/in/squeeze
  vrorigins origins /actions/default /actions/default/in/squeeze --format json
  vrorigins origins /actions/menu /actions/menu/in/select --policy fail_call`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOrigins(cmd.Context(), rootOpts, args[0], args[1], cmd)
		},
	}
}

func runOrigins(ctx context.Context, opts *RootOptions, actionSet, action string, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	formatter := opts.formatter(cmd)

	sess, err := openSession(ctx, opts, cmd.ErrOrStderr())
	if err != nil {
		return failLoad(formatter, err)
	}
	defer sess.Close(context.WithoutCancel(ctx))

	res, err := sess.svc.Resolve(ctx, actionSet, action)
	if err != nil {
		details := map[string]string{"outcome": res.Outcome}
		if query := resolveQuery(err); query != "" {
			details["query"] = query
		}
		return formatter.Fail(ExitFailure, ErrCodeNoResult, err.Error(), details)
	}

	formatter.VerboseLog("Resolved %s with policy %s (digest %s)", action, res.Policy, res.Digest)

	if formatter.JSON() {
		records := res.Records
		if records == nil {
			records = []ir.BindingOriginData{}
		}
		return formatter.Success(OriginsResult{
			ActionSet: actionSet,
			Action:    action,
			Policy:    res.Policy,
			Digest:    res.Digest,
			Records:   records,
		})
	}

	writeOriginsText(cmd.OutOrStdout(), action, res.Records)
	return nil
}

func resolveQuery(err error) string {
	var re *origins.ResolveError
	if errors.As(err, &re) {
		return string(re.Query)
	}
	return ""
}

func writeOriginsText(w io.Writer, action string, records []ir.BindingOriginData) {
	fmt.Fprintf(w, "%s: %d origin(s)\n", action, len(records))
	for i, r := range records {
		fmt.Fprintf(w, "[%d] %s | %s | %s\n", i, r.LocalizedHand, r.LocalizedControllerType, r.LocalizedInputSource)
		fmt.Fprintf(w, "    device: %s  input: %s\n", r.DevicePathName, r.InputPathName)
		fmt.Fprintf(w, "    mode: %s  slot: %s  source: %s\n", r.ModeName, r.SlotName, r.InputSourceType)
	}
}
