package manifest

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/roach88/vrorigins/internal/ir"
	"github.com/roach88/vrorigins/internal/openvr"
	"github.com/roach88/vrorigins/internal/vrstate"
)

// RegisterOptions controls Register.
type RegisterOptions struct {
	// Path is handed to the runtime via SetActionManifestPath when set.
	Path string

	// ActiveSets names the sets to activate, in order. Empty activates
	// every manifest set in declaration order.
	ActiveSets []string

	Logger *slog.Logger
}

// Register resolves handles for every action set and action in m and loads
// them into state, then replaces the active-set list.
//
// Handles are fetched before the registry is touched, so a runtime failure
// leaves the previous registry in place.
func Register(ctx context.Context, state *vrstate.State, input openvr.Input, m *Manifest, opts RegisterOptions) error {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	if opts.Path != "" {
		abs, err := filepath.Abs(opts.Path)
		if err != nil {
			return fmt.Errorf("register manifest: %w", err)
		}
		if err := input.SetActionManifestPath(abs); err != nil {
			return fmt.Errorf("register manifest: set manifest path: %w", err)
		}
	}

	sets := make([]ir.ActionSet, 0, len(m.ActionSets))
	byName := make(map[string]ir.ActionSetHandle, len(m.ActionSets))
	for _, s := range m.ActionSets {
		h, err := input.ActionSetHandle(s.Name)
		if err != nil {
			return fmt.Errorf("register manifest: action set %q: %w", s.Name, err)
		}
		sets = append(sets, ir.ActionSet{Name: s.Name, Handle: h})
		byName[s.Name] = h
	}

	actions := make([]ir.Action, 0, len(m.Actions))
	for _, a := range m.Actions {
		h, err := input.ActionHandle(a.Name)
		if err != nil {
			return fmt.Errorf("register manifest: action %q: %w", a.Name, err)
		}
		actions = append(actions, ir.Action{Name: a.Name, Handle: h})
	}

	active, err := activeSets(sets, byName, opts.ActiveSets)
	if err != nil {
		return err
	}

	if err := state.LoadRegistry(ctx, sets, actions); err != nil {
		return fmt.Errorf("register manifest: %w", err)
	}
	if err := state.SetActiveSets(ctx, active); err != nil {
		return fmt.Errorf("register manifest: %w", err)
	}

	logger.Info("manifest registered",
		"action_sets", len(sets),
		"actions", len(actions),
		"active_sets", len(active),
	)
	return nil
}

func activeSets(sets []ir.ActionSet, byName map[string]ir.ActionSetHandle, names []string) ([]ir.ActiveActionSet, error) {
	if len(names) == 0 {
		out := make([]ir.ActiveActionSet, len(sets))
		for i, s := range sets {
			out[i] = ir.ActiveActionSet{ActionSet: s.Handle}
		}
		return out, nil
	}

	out := make([]ir.ActiveActionSet, 0, len(names))
	for _, name := range names {
		h, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("register manifest: active set %q is not declared", name)
		}
		out = append(out, ir.ActiveActionSet{ActionSet: h})
	}
	return out, nil
}
