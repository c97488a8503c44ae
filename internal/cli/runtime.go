package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/vrorigins/internal/command"
)

// BindingUIResult is the JSON payload of the binding-ui command.
type BindingUIResult struct {
	Device        string `json:"device"`
	ShowOnDesktop bool   `json:"show_on_desktop"`
	Opened        bool   `json:"opened"`
}

// NewBindingUICommand creates the binding-ui command.
func NewBindingUICommand(rootOpts *RootOptions) *cobra.Command {
	var desktop bool

	cmd := &cobra.Command{
		Use:   "binding-ui",
		Short: "Open the runtime's binding configuration UI",
		Long: `Ask the runtime to open its binding configuration UI for the right
hand controller. Failures are logged and recorded in the history store.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBindingUI(rootOpts, desktop, cmd)
		},
	}
	cmd.Flags().BoolVar(&desktop, "desktop", false, "show the UI on the desktop instead of in the headset")
	return cmd
}

func runBindingUI(opts *RootOptions, desktop bool, cmd *cobra.Command) error {
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

	before := len(sess.runtime.BindingUIRequests())
	sess.svc.LaunchBindingConfiguration(ctx, desktop)
	opened := len(sess.runtime.BindingUIRequests()) > before

	result := BindingUIResult{
		Device:        command.BindingUIDevice,
		ShowOnDesktop: desktop,
		Opened:        opened,
	}
	if formatter.JSON() {
		return formatter.Success(result)
	}
	if opened {
		return formatter.Success(fmt.Sprintf("✓ Binding UI opened for %s", result.Device))
	}
	return formatter.Success(fmt.Sprintf("✗ Binding UI not opened for %s (see log)", result.Device))
}

// NewDashboardCommand creates the dashboard command.
func NewDashboardCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "dashboard",
		Short:         "Report whether the runtime dashboard is visible",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			formatter := rootOpts.formatter(cmd)

			sess, err := openSession(ctx, rootOpts, cmd.ErrOrStderr())
			if err != nil {
				return failLoad(formatter, err)
			}
			defer sess.Close(context.WithoutCancel(ctx))

			visible := sess.svc.IsDashboardVisible(ctx)
			if formatter.JSON() {
				return formatter.Success(map[string]bool{"visible": visible})
			}
			return formatter.Success(fmt.Sprintf("dashboard visible: %t", visible))
		},
	}
}
