package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/vrorigins/internal/manifest"
)

// ValidationError describes one problem in an action manifest.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Line    int    `json:"line,omitempty"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid      bool              `json:"valid"`
	Manifest   string            `json:"manifest"`
	ActionSets int               `json:"action_sets"`
	Actions    int               `json:"actions"`
	Errors     []ValidationError `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate [manifest]",
		Short: "Validate an action manifest",
		Long: `Validate an action manifest against the manifest schema without
connecting to a runtime.

Checks required fields, action types and requirements, unique names and
that every action belongs to a declared action set. Defaults to the
configured manifest when no path is given.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			return runValidate(rootOpts, path, cmd)
		},
	}
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	if path == "" {
		cfg, err := loadConfig(opts)
		if err != nil {
			return failLoad(formatter, err)
		}
		path = cfg.Manifest
	}

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return formatter.Fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("manifest not found: %s", path), nil)
	}

	formatter.VerboseLog("Validating %s", path)

	m, err := manifest.Load(path)
	if err != nil {
		return outputValidationErrors(formatter, path, []ValidationError{toValidationError(err)})
	}

	result := ValidationResult{
		Valid:      true,
		Manifest:   path,
		ActionSets: len(m.ActionSets),
		Actions:    len(m.Actions),
	}
	if formatter.JSON() {
		return formatter.Success(result)
	}
	return formatter.Success(fmt.Sprintf("✓ Manifest valid: %d action set(s), %d action(s)", result.ActionSets, result.Actions))
}

func toValidationError(err error) ValidationError {
	var merr *manifest.Error
	if errors.As(err, &merr) {
		ve := ValidationError{Field: merr.Field, Message: merr.Message, Code: ErrCodeManifest}
		if merr.Pos.IsValid() {
			ve.Line = merr.Pos.Line()
		}
		return ve
	}
	return ValidationError{Field: "manifest", Message: err.Error(), Code: ErrCodeGeneric}
}

func outputValidationErrors(formatter *OutputFormatter, path string, errs []ValidationError) error {
	if formatter.JSON() {
		if err := formatter.encode(CLIResponse{
			Status: "error",
			Data:   ValidationResult{Valid: false, Manifest: path, Errors: errs},
			Error: &CLIError{
				Code:    ErrCodeManifest,
				Message: fmt.Sprintf("%d validation error(s)", len(errs)),
			},
		}); err != nil {
			return err
		}
		return NewExitError(ExitFailure, "manifest invalid")
	}

	w := formatter.Writer
	fmt.Fprintf(w, "✗ %s\n", path)
	for _, e := range errs {
		if e.Line > 0 {
			fmt.Fprintf(w, "  line %d: %s: %s [%s]\n", e.Line, e.Field, e.Message, e.Code)
		} else {
			fmt.Fprintf(w, "  %s: %s [%s]\n", e.Field, e.Message, e.Code)
		}
	}
	return NewExitError(ExitFailure, "manifest invalid")
}
