package vrstate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/roach88/vrorigins/internal/ir"
	"github.com/roach88/vrorigins/internal/openvr"
)

var (
	// ErrRegistryLoaded is returned when the registry is loaded twice in
	// one session without ResetRegistry.
	ErrRegistryLoaded = errors.New("action registry already loaded")

	// ErrRuntimeUnavailable is returned when no runtime context is set.
	ErrRuntimeUnavailable = errors.New("runtime not connected")
)

// actionSets and actions hold the registry in manifest declaration order.
type actionSets struct {
	loaded bool
	items  []ir.ActionSet
}

type actions struct {
	items []ir.Action
}

// State is the shared state consulted by resolver calls.
// The zero value is not usable; use New or Default.
type State struct {
	actionSets *slot[actionSets]
	actions    *slot[actions]
	activeSets *slot[[]ir.ActiveActionSet]
	runtime    *slot[openvr.Context]

	logger *slog.Logger
}

// Option configures a State.
type Option func(*State)

// WithLogger sets the logger used for lifecycle messages.
func WithLogger(l *slog.Logger) Option {
	return func(s *State) {
		s.logger = l
	}
}

// New creates an empty State: no registry, no active sets, no runtime.
func New(opts ...Option) *State {
	s := &State{
		actionSets: newSlot(actionSets{}),
		actions:    newSlot(actions{}),
		activeSets: newSlot[[]ir.ActiveActionSet](nil),
		runtime:    newSlot[openvr.Context](nil),
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var (
	defaultOnce  sync.Once
	defaultState *State
)

// Default returns the process-wide State.
func Default() *State {
	defaultOnce.Do(func() {
		defaultState = New()
	})
	return defaultState
}

// LoadRegistry bulk-loads action sets and actions, in declaration order.
// It is called once per runtime session by the manifest loader.
//
// Names must be non-empty and unique within each collection and handles
// must be non-zero. Returns ErrRegistryLoaded if a registry is already
// present.
func (s *State) LoadRegistry(ctx context.Context, sets []ir.ActionSet, acts []ir.Action) error {
	if err := validateRegistry(sets, acts); err != nil {
		return err
	}

	setsCopy := append([]ir.ActionSet(nil), sets...)
	actsCopy := append([]ir.Action(nil), acts...)

	// Load holds both registry slots (sets, then actions) so readers never
	// observe a half-loaded registry.
	return s.actionSets.with(ctx, func(as *actionSets) error {
		if as.loaded {
			return ErrRegistryLoaded
		}
		return s.actions.with(ctx, func(a *actions) error {
			as.items = setsCopy
			as.loaded = true
			a.items = actsCopy
			s.logger.Info("action registry loaded",
				"action_sets", len(setsCopy),
				"actions", len(actsCopy),
			)
			return nil
		})
	})
}

// ResetRegistry clears the registry. Called on session teardown so the next
// session can load its own manifest.
func (s *State) ResetRegistry(ctx context.Context) error {
	return s.actionSets.with(ctx, func(as *actionSets) error {
		return s.actions.with(ctx, func(a *actions) error {
			*as = actionSets{}
			*a = actions{}
			s.logger.Info("action registry reset")
			return nil
		})
	})
}

func validateRegistry(sets []ir.ActionSet, acts []ir.Action) error {
	seen := make(map[string]bool, len(sets))
	for i, set := range sets {
		if set.Name == "" {
			return fmt.Errorf("action set %d: empty name", i)
		}
		if set.Handle == 0 {
			return fmt.Errorf("action set %q: zero handle", set.Name)
		}
		if seen[set.Name] {
			return fmt.Errorf("action set %q: duplicate name", set.Name)
		}
		seen[set.Name] = true
	}
	seen = make(map[string]bool, len(acts))
	for i, a := range acts {
		if a.Name == "" {
			return fmt.Errorf("action %d: empty name", i)
		}
		if a.Handle == 0 {
			return fmt.Errorf("action %q: zero handle", a.Name)
		}
		if seen[a.Name] {
			return fmt.Errorf("action %q: duplicate name", a.Name)
		}
		seen[a.Name] = true
	}
	return nil
}

// WithActionSets runs fn with the registered action sets.
// fn must not retain the slice.
func (s *State) WithActionSets(ctx context.Context, fn func([]ir.ActionSet) error) error {
	return s.actionSets.with(ctx, func(as *actionSets) error {
		return fn(as.items)
	})
}

// WithActions runs fn with the registered actions.
// fn must not retain the slice.
func (s *State) WithActions(ctx context.Context, fn func([]ir.Action) error) error {
	return s.actions.with(ctx, func(a *actions) error {
		return fn(a.items)
	})
}

// ActionSetHandle looks up an action set by exact name.
// ok is false when the name is not registered.
func (s *State) ActionSetHandle(ctx context.Context, name string) (h ir.ActionSetHandle, ok bool, err error) {
	err = s.WithActionSets(ctx, func(sets []ir.ActionSet) error {
		for _, set := range sets {
			if set.Name == name {
				h, ok = set.Handle, true
				return nil
			}
		}
		return nil
	})
	return h, ok, err
}

// ActionHandle looks up an action by exact name.
// ok is false when the name is not registered.
func (s *State) ActionHandle(ctx context.Context, name string) (h ir.ActionHandle, ok bool, err error) {
	err = s.WithActions(ctx, func(acts []ir.Action) error {
		for _, a := range acts {
			if a.Name == name {
				h, ok = a.Handle, true
				return nil
			}
		}
		return nil
	})
	return h, ok, err
}

// ActionSets returns a copy of the registered action sets.
func (s *State) ActionSets(ctx context.Context) ([]ir.ActionSet, error) {
	var out []ir.ActionSet
	err := s.WithActionSets(ctx, func(sets []ir.ActionSet) error {
		out = append([]ir.ActionSet(nil), sets...)
		return nil
	})
	return out, err
}

// Actions returns a copy of the registered actions.
func (s *State) Actions(ctx context.Context) ([]ir.Action, error) {
	var out []ir.Action
	err := s.WithActions(ctx, func(acts []ir.Action) error {
		out = append([]ir.Action(nil), acts...)
		return nil
	})
	return out, err
}

// SetActiveSets replaces the active-set list. Invoked when the user switches
// binding profile. The slice is copied.
func (s *State) SetActiveSets(ctx context.Context, sets []ir.ActiveActionSet) error {
	cp := append([]ir.ActiveActionSet(nil), sets...)
	return s.activeSets.with(ctx, func(active *[]ir.ActiveActionSet) error {
		*active = cp
		s.logger.Debug("active action sets replaced", "count", len(cp))
		return nil
	})
}

// ActiveSets returns a copy of the active-set list.
func (s *State) ActiveSets(ctx context.Context) ([]ir.ActiveActionSet, error) {
	var out []ir.ActiveActionSet
	err := s.activeSets.with(ctx, func(active *[]ir.ActiveActionSet) error {
		out = append([]ir.ActiveActionSet(nil), (*active)...)
		return nil
	})
	return out, err
}

// SetContext installs the runtime connection. Invoked by session bring-up.
func (s *State) SetContext(ctx context.Context, rt openvr.Context) error {
	return s.runtime.with(ctx, func(cur *openvr.Context) error {
		*cur = rt
		s.logger.Info("runtime context set")
		return nil
	})
}

// ClearContext removes the runtime connection. Invoked by session teardown.
func (s *State) ClearContext(ctx context.Context) error {
	return s.runtime.with(ctx, func(cur *openvr.Context) error {
		*cur = nil
		s.logger.Info("runtime context cleared")
		return nil
	})
}

// WithContext runs fn with the runtime context.
// Returns ErrRuntimeUnavailable without calling fn if no runtime is set.
func (s *State) WithContext(ctx context.Context, fn func(openvr.Context) error) error {
	return s.runtime.with(ctx, func(cur *openvr.Context) error {
		if *cur == nil {
			return ErrRuntimeUnavailable
		}
		return fn(*cur)
	})
}

// Session is the view handed to WithSession callbacks.
type Session struct {
	// Context is the live runtime connection.
	Context openvr.Context

	// ActiveSets is the guarded active-set list itself, passed to the
	// runtime's refresh call. Callers must not change its length.
	ActiveSets []ir.ActiveActionSet
}

// WithSession runs fn holding both the runtime context and the active-set
// list. The context slot is taken first; if no runtime is set the call
// returns ErrRuntimeUnavailable without touching the active-set slot.
func (s *State) WithSession(ctx context.Context, fn func(*Session) error) error {
	return s.runtime.with(ctx, func(cur *openvr.Context) error {
		if *cur == nil {
			return ErrRuntimeUnavailable
		}
		rt := *cur
		return s.activeSets.with(ctx, func(active *[]ir.ActiveActionSet) error {
			return fn(&Session{Context: rt, ActiveSets: *active})
		})
	})
}
