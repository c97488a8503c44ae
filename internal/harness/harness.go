package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"

	"github.com/roach88/vrorigins/internal/command"
	"github.com/roach88/vrorigins/internal/ir"
	"github.com/roach88/vrorigins/internal/manifest"
	"github.com/roach88/vrorigins/internal/openvr"
	"github.com/roach88/vrorigins/internal/openvr/simvr"
	"github.com/roach88/vrorigins/internal/origins"
	"github.com/roach88/vrorigins/internal/store"
	"github.com/roach88/vrorigins/internal/testutil"
	"github.com/roach88/vrorigins/internal/vrstate"
)

// Harness executes one scenario against a fresh simulated runtime.
type Harness struct {
	svc     *command.Service
	runtime *simvr.Runtime
	store   *store.Store
	logger  *slog.Logger
}

// Run executes a scenario and returns the result.
//
// Each scenario runs against its own simulated runtime and an in-memory
// history store. The clock and ID generator are deterministic, so repeated
// runs produce identical traces.
//
// An error is returned only when the scenario cannot be executed at all
// (bad manifest, failed bring-up). Failed expectations are reported in the
// Result.
func Run(ctx context.Context, scenario *Scenario) (*Result, error) {
	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	m, err := manifest.Load(scenario.Manifest)
	if err != nil {
		return nil, fmt.Errorf("failed to load manifest: %w", err)
	}

	policy, err := origins.ParsePolicy(scenario.Policy)
	if err != nil {
		return nil, err
	}

	svc := command.New(vrstate.New(vrstate.WithLogger(logger)),
		command.WithLogger(logger),
		command.WithPolicy(policy),
		command.WithHistory(st),
		command.WithClock(testutil.NewDeterministicClock()),
		command.WithIDGenerator(testutil.NewSequentialIDGenerator("res")),
	)

	rig := scenario.Rig
	rt := simvr.New(&rig)
	if err := svc.Connect(ctx, rt, m, command.ConnectOptions{ActiveSets: scenario.ActiveSets}); err != nil {
		return nil, fmt.Errorf("failed to connect: %w", err)
	}

	h := &Harness{svc: svc, runtime: rt, store: st, logger: logger}

	result := NewResult()
	for i, step := range scenario.Steps {
		if err := h.executeStep(ctx, i+1, step, result); err != nil {
			return nil, fmt.Errorf("step %d: %w", i+1, err)
		}
	}

	actx := &AssertionContext{Store: st, Runtime: rt, Ctx: ctx}
	for _, msg := range EvaluateAssertions(result, scenario.Assertions, actx) {
		result.AddError(msg)
	}

	return result, nil
}

func (h *Harness) executeStep(ctx context.Context, n int, step Step, result *Result) error {
	switch {
	case step.Resolve != nil:
		return h.executeResolve(ctx, n, step.Resolve, result)

	case step.Fail != nil:
		code, err := openvr.ParseInputErrorCode(step.Fail.Code)
		if err != nil {
			return err
		}
		h.runtime.Fail(step.Fail.Op, code)
		result.AddEvent(TraceEvent{Type: EventFail, Step: n, Detail: step.Fail.Op + "=" + code.String()})

	case step.FailName != nil:
		which, err := simvr.ParseNameKind(step.FailName.Kind)
		if err != nil {
			return err
		}
		code, err := openvr.ParseInputErrorCode(step.FailName.Code)
		if err != nil {
			return err
		}
		h.runtime.FailLocalizedName(ir.OriginHandle(step.FailName.Origin), which, code)
		result.AddEvent(TraceEvent{
			Type:   EventFailName,
			Step:   n,
			Detail: fmt.Sprintf("%d/%s=%s", step.FailName.Origin, step.FailName.Kind, code),
		})

	case step.Clear != "":
		h.runtime.ClearFailure(step.Clear)
		result.AddEvent(TraceEvent{Type: EventClear, Step: n, Detail: step.Clear})

	case step.SwitchActiveSets != nil:
		if err := h.svc.SwitchActiveSets(ctx, step.SwitchActiveSets.Sets); err != nil {
			return err
		}
		result.AddEvent(TraceEvent{Type: EventSwitch, Step: n, Detail: strings.Join(step.SwitchActiveSets.Sets, ",")})

	case step.BindingUI != nil:
		h.svc.LaunchBindingConfiguration(ctx, step.BindingUI.ShowOnDesktop)
		result.AddEvent(TraceEvent{Type: EventBindingUI, Step: n, Detail: fmt.Sprintf("show_on_desktop=%t", step.BindingUI.ShowOnDesktop)})

	case step.Disconnect:
		if err := h.svc.Disconnect(ctx); err != nil {
			return err
		}
		result.AddEvent(TraceEvent{Type: EventDisconnect, Step: n})
	}
	return nil
}

func (h *Harness) executeResolve(ctx context.Context, n int, step *ResolveStep, result *Result) error {
	res, err := h.svc.Resolve(ctx, step.ActionSet, step.Action)
	if origins.CodeOf(err) == origins.ErrCodeCanceled {
		return err
	}

	result.AddEvent(TraceEvent{
		Type:      EventResolve,
		Step:      n,
		ActionSet: step.ActionSet,
		Action:    step.Action,
		Outcome:   res.Outcome,
		Records:   res.Records,
		Digest:    res.Digest,
		Seq:       res.Seq,
	})

	expect := step.Expect
	if expect == nil {
		expect = &Expect{Outcome: ir.OutcomeOK}
	}
	for _, msg := range checkExpect(res, expect) {
		result.AddError(fmt.Sprintf("step %d (%s): %s", n, step.Action, msg))
	}

	h.logger.Info("resolve step completed",
		"step", n,
		"action", step.Action,
		"outcome", res.Outcome,
	)
	return nil
}

// checkExpect compares a resolution with an expectation and returns one
// message per mismatch.
func checkExpect(res ir.Resolution, expect *Expect) []string {
	var msgs []string
	if res.Outcome != expect.Outcome {
		msgs = append(msgs, fmt.Sprintf("outcome = %s, want %s", res.Outcome, expect.Outcome))
		return msgs
	}
	if expect.Count != nil && len(res.Records) != *expect.Count {
		msgs = append(msgs, fmt.Sprintf("record count = %d, want %d", len(res.Records), *expect.Count))
	}
	if len(expect.Records) > len(res.Records) {
		msgs = append(msgs, fmt.Sprintf("got %d records, expectations for %d", len(res.Records), len(expect.Records)))
		return msgs
	}
	for i, want := range expect.Records {
		got := res.Records[i].ToCanonical()
		fields := make([]string, 0, len(want))
		for k := range want {
			fields = append(fields, k)
		}
		slices.Sort(fields)
		for _, field := range fields {
			value := want[field]
			actual, ok := got[field]
			if !ok {
				msgs = append(msgs, fmt.Sprintf("records[%d]: unknown field %q", i, field))
				continue
			}
			if actual != value {
				msgs = append(msgs, fmt.Sprintf("records[%d].%s = %q, want %q", i, field, actual, value))
			}
		}
	}
	return msgs
}
