package command

import (
	"context"
	"errors"
	"log/slog"

	"github.com/roach88/vrorigins/internal/ir"
	"github.com/roach88/vrorigins/internal/openvr"
	"github.com/roach88/vrorigins/internal/origins"
	"github.com/roach88/vrorigins/internal/store"
	"github.com/roach88/vrorigins/internal/vrstate"
)

// BindingUIDevice is the input source the binding UI is opened for.
const BindingUIDevice = "/user/hand/right"

// Service implements the command surface over shared runtime state.
type Service struct {
	state    *vrstate.State
	resolver *origins.Resolver
	history  *store.Store

	clock  Sequencer
	ids    IDGenerator
	logger *slog.Logger

	policy origins.MetadataPolicy
	appKey string
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger for the service and its resolver.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		s.logger = l
	}
}

// WithPolicy sets the resolver's metadata policy.
func WithPolicy(p origins.MetadataPolicy) Option {
	return func(s *Service) {
		s.policy = p
	}
}

// WithHistory records every resolution and binding UI launch in st.
func WithHistory(st *store.Store) Option {
	return func(s *Service) {
		s.history = st
	}
}

// WithClock sets the sequencer for history rows.
//
// Default: a Clock starting at 0
func WithClock(c Sequencer) Option {
	return func(s *Service) {
		s.clock = c
	}
}

// WithIDGenerator sets the generator for history row IDs.
//
// Default: UUIDv7Generator
func WithIDGenerator(g IDGenerator) Option {
	return func(s *Service) {
		s.ids = g
	}
}

// WithAppKey sets the application key passed to the binding UI. Empty
// lets the runtime pick the calling application.
func WithAppKey(key string) Option {
	return func(s *Service) {
		s.appKey = key
	}
}

// New creates a Service over state.
func New(state *vrstate.State, opts ...Option) *Service {
	s := &Service{
		state:  state,
		clock:  NewClock(),
		ids:    UUIDv7Generator{},
		logger: slog.Default(),
		policy: origins.DefaultPolicy,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.resolver = origins.New(state,
		origins.WithLogger(s.logger),
		origins.WithPolicy(s.policy),
	)
	return s
}

// State returns the shared state the service operates on.
func (s *Service) State() *vrstate.State {
	return s.state
}

// GetBindingOrigins returns the binding origins of an action, or false when
// no result can be produced. An action without bound origins yields an
// empty list and true.
func (s *Service) GetBindingOrigins(ctx context.Context, actionSetKey, actionKey string) ([]ir.BindingOriginData, bool) {
	res, err := s.Resolve(ctx, actionSetKey, actionKey)
	if err != nil {
		return nil, false
	}
	return res.Records, true
}

// Resolve resolves an action's binding origins and records the outcome in
// the history store when one is configured. On failure the returned error
// is an *origins.ResolveError and the Resolution carries its code.
//
// A history write failure is logged, never returned: the resolution itself
// succeeded or failed on its own terms.
func (s *Service) Resolve(ctx context.Context, actionSetKey, actionKey string) (ir.Resolution, error) {
	records, err := s.resolver.Resolve(ctx, actionSetKey, actionKey)

	res := ir.Resolution{
		ActionSet: actionSetKey,
		Action:    actionKey,
		Policy:    string(s.policy),
		Outcome:   ir.OutcomeOK,
		Records:   records,
	}
	if err != nil {
		res.Outcome = string(origins.CodeOf(err))
		res.Records = nil
	} else {
		digest, derr := ir.ResultDigest(actionSetKey, actionKey, records)
		if derr != nil {
			// Resolved records are plain strings; this only fails on a bug.
			s.logger.Error("digest failed", "error", derr)
		}
		res.Digest = digest
	}

	s.record(ctx, &res)
	return res, err
}

func (s *Service) record(ctx context.Context, res *ir.Resolution) {
	if s.history == nil {
		return
	}
	res.ID = s.ids.Generate()
	res.Seq = s.clock.Next()

	// Record cancelled calls too; the write must not inherit the caller's
	// cancellation.
	if err := s.history.WriteResolution(context.WithoutCancel(ctx), *res); err != nil {
		s.logger.Warn("failed to record resolution",
			"action_set", res.ActionSet,
			"action", res.Action,
			"error", err,
		)
	}
}

// LaunchBindingConfiguration asks the runtime to open its binding UI for
// the right hand. Failures are logged; there is no result.
func (s *Service) LaunchBindingConfiguration(ctx context.Context, showOnDesktop bool) {
	launch := store.BindingUILaunch{
		Device:        BindingUIDevice,
		ShowOnDesktop: showOnDesktop,
		Outcome:       ir.OutcomeOK,
	}

	err := s.state.WithContext(ctx, func(rt openvr.Context) error {
		input := rt.Input()
		device, err := input.InputSourceHandle(BindingUIDevice)
		if err != nil {
			s.logger.Error("failed to get input source handle",
				"device", BindingUIDevice,
				"error", err,
			)
			return err
		}
		if err := input.OpenBindingUI(s.appKey, 0, device, showOnDesktop); err != nil {
			s.logger.Error("failed to open binding UI", "error", err)
			return err
		}
		return nil
	})
	switch {
	case err == nil:
		s.logger.Info("binding UI opened", "show_on_desktop", showOnDesktop)
	case errors.Is(err, vrstate.ErrRuntimeUnavailable):
		s.logger.Debug("binding UI not opened: runtime not connected")
		launch.Outcome = string(origins.ErrCodeRuntimeUnavailable)
	default:
		launch.Outcome = outcomeOf(err)
	}

	if s.history == nil {
		return
	}
	launch.ID = s.ids.Generate()
	launch.Seq = s.clock.Next()
	if err := s.history.WriteBindingUILaunch(context.WithoutCancel(ctx), launch); err != nil {
		s.logger.Warn("failed to record binding UI launch", "error", err)
	}
}

// IsDashboardVisible reports whether the runtime dashboard is showing.
// False when no runtime is connected.
func (s *Service) IsDashboardVisible(ctx context.Context) bool {
	var visible bool
	err := s.state.WithContext(ctx, func(rt openvr.Context) error {
		visible = rt.Overlay().IsDashboardVisible()
		return nil
	})
	if err != nil {
		return false
	}
	return visible
}

// outcomeOf names a binding UI failure for the history store: the runtime
// error name when there is one.
func outcomeOf(err error) string {
	if code, ok := openvr.InputErrorCodeOf(err); ok {
		return code.String()
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return string(origins.ErrCodeCanceled)
	}
	return "FAILED"
}
