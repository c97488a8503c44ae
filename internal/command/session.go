package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/roach88/vrorigins/internal/ir"
	"github.com/roach88/vrorigins/internal/manifest"
	"github.com/roach88/vrorigins/internal/openvr"
)

// ConnectOptions controls session bring-up.
type ConnectOptions struct {
	// ManifestPath is handed to the runtime when set.
	ManifestPath string

	// ActiveSets names the sets to activate. Empty activates every
	// manifest set in declaration order.
	ActiveSets []string
}

// Connect brings a runtime session up: it installs rt as the runtime
// context and registers m. If registration fails the context is cleared
// again so no half-initialized session is visible.
func (s *Service) Connect(ctx context.Context, rt openvr.Context, m *manifest.Manifest, opts ConnectOptions) error {
	if err := s.state.SetContext(ctx, rt); err != nil {
		return fmt.Errorf("connect: %w", err)
	}

	err := manifest.Register(ctx, s.state, rt.Input(), m, manifest.RegisterOptions{
		Path:       opts.ManifestPath,
		ActiveSets: opts.ActiveSets,
		Logger:     s.logger,
	})
	if err != nil {
		if cerr := s.state.ClearContext(context.WithoutCancel(ctx)); cerr != nil {
			err = errors.Join(err, cerr)
		}
		return fmt.Errorf("connect: %w", err)
	}

	s.logger.Info("runtime session connected")
	return nil
}

// Disconnect tears the session down: the runtime context, the registry and
// the active-set list are all cleared.
func (s *Service) Disconnect(ctx context.Context) error {
	if err := s.state.ClearContext(ctx); err != nil {
		return fmt.Errorf("disconnect: %w", err)
	}
	if err := s.state.ResetRegistry(ctx); err != nil {
		return fmt.Errorf("disconnect: %w", err)
	}
	if err := s.state.SetActiveSets(ctx, nil); err != nil {
		return fmt.Errorf("disconnect: %w", err)
	}
	s.logger.Info("runtime session disconnected")
	return nil
}

// SwitchActiveSets replaces the active-set list with the named sets, in
// order. Every name must be registered.
func (s *Service) SwitchActiveSets(ctx context.Context, names []string) error {
	active := make([]ir.ActiveActionSet, 0, len(names))
	for _, name := range names {
		h, ok, err := s.state.ActionSetHandle(ctx, name)
		if err != nil {
			return fmt.Errorf("switch active sets: %w", err)
		}
		if !ok {
			return fmt.Errorf("switch active sets: unknown action set %q", name)
		}
		active = append(active, ir.ActiveActionSet{ActionSet: h})
	}
	if err := s.state.SetActiveSets(ctx, active); err != nil {
		return fmt.Errorf("switch active sets: %w", err)
	}
	return nil
}
