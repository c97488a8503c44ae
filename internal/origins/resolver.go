package origins

import (
	"context"
	"errors"
	"log/slog"

	"github.com/roach88/vrorigins/internal/ir"
	"github.com/roach88/vrorigins/internal/openvr"
	"github.com/roach88/vrorigins/internal/vrstate"
)

// Resolver resolves binding origins against shared runtime state.
//
// Thread-safety: a Resolver is safe for concurrent use. Concurrent calls
// serialize on the vrstate slots only; refreshes from different calls may
// interleave, which costs redundant work but cannot corrupt results.
type Resolver struct {
	state  *vrstate.State
	logger *slog.Logger
	policy MetadataPolicy
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Resolver) {
		r.logger = l
	}
}

// WithPolicy sets how per-origin name failures are handled.
//
// Default: PolicyOmitOrigin
func WithPolicy(p MetadataPolicy) Option {
	return func(r *Resolver) {
		r.policy = p
	}
}

// New creates a Resolver reading from state.
func New(state *vrstate.State, opts ...Option) *Resolver {
	r := &Resolver{
		state:  state,
		logger: slog.Default(),
		policy: DefaultPolicy,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Policy returns the configured metadata policy.
func (r *Resolver) Policy() MetadataPolicy {
	return r.policy
}

// request carries the names and handles of one resolution.
type request struct {
	setKey    string
	actionKey string
	set       ir.ActionSetHandle
	action    ir.ActionHandle
}

// Lookup is the optional-result form of Resolve used by the command
// surface: ok is false for every failure, and an action without bound
// origins yields an empty, non-nil slice with ok true.
func (r *Resolver) Lookup(ctx context.Context, actionSetKey, actionKey string) ([]ir.BindingOriginData, bool) {
	records, err := r.Resolve(ctx, actionSetKey, actionKey)
	if err != nil {
		r.logger.Debug("no binding origins",
			"action_set", actionSetKey,
			"action", actionKey,
			"code", string(CodeOf(err)),
		)
		return nil, false
	}
	return records, true
}

// Resolve returns the annotated binding origins of an action, in the order
// the runtime reports the origins.
//
// Registry lookups happen first and release their slots before the runtime
// session is entered. The runtime refresh, origin query, name queries and
// binding info query all run inside one session.
func (r *Resolver) Resolve(ctx context.Context, actionSetKey, actionKey string) ([]ir.BindingOriginData, error) {
	q := &request{setKey: actionSetKey, actionKey: actionKey}

	set, ok, err := r.state.ActionSetHandle(ctx, actionSetKey)
	if err != nil {
		return nil, newCanceledError(q, err)
	}
	if !ok {
		return nil, newUnknownActionSetError(q)
	}
	q.set = set

	action, ok, err := r.state.ActionHandle(ctx, actionKey)
	if err != nil {
		return nil, newCanceledError(q, err)
	}
	if !ok {
		return nil, newUnknownActionError(q)
	}
	q.action = action

	var records []ir.BindingOriginData
	err = r.state.WithSession(ctx, func(sess *vrstate.Session) error {
		var err error
		records, err = r.resolveInSession(sess, q)
		return err
	})
	var re *ResolveError
	switch {
	case err == nil:
		return records, nil
	case errors.As(err, &re):
		return nil, err
	case errors.Is(err, vrstate.ErrRuntimeUnavailable):
		return nil, newRuntimeUnavailableError(q)
	default:
		// Only lock acquisition returns bare errors: the context ended.
		return nil, newCanceledError(q, err)
	}
}

func (r *Resolver) resolveInSession(sess *vrstate.Session, q *request) ([]ir.BindingOriginData, error) {
	input := sess.Context.Input()

	if err := input.UpdateActionState(sess.ActiveSets); err != nil {
		r.logger.Error("failed to update action state",
			"action_set", q.setKey,
			"active_sets", len(sess.ActiveSets),
			"error", err,
		)
		return nil, newQueryError(q, QueryUpdateActions, uint64(q.set), err)
	}

	raw, err := input.ActionOrigins(q.set, q.action)
	if err != nil {
		r.logger.Error("failed to get action origins",
			"action_set", q.setKey,
			"action", q.actionKey,
			"set_handle", uint64(q.set),
			"action_handle", uint64(q.action),
			"error", err,
		)
		return nil, newQueryError(q, QueryActionOrigins, uint64(q.action), err)
	}

	origins := filterOrigins(raw)
	if len(origins) == 0 {
		r.logger.Debug("action has no bound origins", "action", q.actionKey)
		return []ir.BindingOriginData{}, nil
	}

	names, err := r.collectNames(input, q, origins)
	if err != nil {
		return nil, err
	}

	infos, err := input.ActionBindingInfo(q.action)
	if err != nil {
		r.logger.Error("failed to get action binding info",
			"action", q.actionKey,
			"action_handle", uint64(q.action),
			"error", err,
		)
		return nil, newQueryError(q, QueryBindingInfo, uint64(q.action), err)
	}

	records, err := names.assemble(q, origins, infos)
	if err != nil {
		r.logger.Error("failed to assemble binding origins",
			"action", q.actionKey,
			"code", string(CodeOf(err)),
			"error", err,
		)
		return nil, err
	}

	r.logger.Debug("binding origins resolved",
		"action_set", q.setKey,
		"action", q.actionKey,
		"origins", len(origins),
		"records", len(records),
	)
	return records, nil
}

// filterOrigins drops the NoOrigin sentinel, keeping runtime order.
func filterOrigins(raw []ir.OriginHandle) []ir.OriginHandle {
	out := make([]ir.OriginHandle, 0, len(raw))
	for _, o := range raw {
		if o != ir.NoOrigin {
			out = append(out, o)
		}
	}
	return out
}

// collectNames runs the three localized name queries for every origin.
// Each query is independent; how a failure is treated depends on the policy.
func (r *Resolver) collectNames(input openvr.Input, q *request, origins []ir.OriginHandle) (nameSet, error) {
	switch r.policy {
	case PolicyPositional:
		p := &positionalNames{}
		for _, kind := range ir.LocalizedNameKinds {
			list := make([]string, 0, len(origins))
			for _, o := range origins {
				name, err := input.OriginLocalizedName(o, kind)
				if err != nil {
					r.logNameFailure(q, o, kind, err)
					continue
				}
				list = append(list, name)
			}
			p.set(kind, list)
		}
		return p, nil

	default:
		k := &keyedNames{
			names:  make(map[ir.OriginHandle]*ir.LocalizedNames, len(origins)),
			failed: make(map[ir.OriginHandle]bool),
			logger: r.logger,
		}
		for _, kind := range ir.LocalizedNameKinds {
			for _, o := range origins {
				name, err := input.OriginLocalizedName(o, kind)
				if err != nil {
					r.logNameFailure(q, o, kind, err)
					if r.policy == PolicyFailCall {
						return nil, newMetadataIncompleteError(q, uint64(o), err)
					}
					k.failed[o] = true
					continue
				}
				k.put(o, kind, name)
			}
		}
		return k, nil
	}
}

func (r *Resolver) logNameFailure(q *request, origin ir.OriginHandle, kind ir.InputString, err error) {
	attrs := []any{
		"action", q.actionKey,
		"origin", uint64(origin),
		"kind", kind.String(),
		"error", err,
	}
	if code, ok := openvr.InputErrorCodeOf(err); ok {
		attrs = append(attrs, "runtime_code", code.String())
	}
	r.logger.Warn("failed to get origin localized name", attrs...)
}
