package harness

import (
	"context"
	"fmt"
	"strings"

	"github.com/roach88/vrorigins/internal/ir"
	"github.com/roach88/vrorigins/internal/openvr/simvr"
	"github.com/roach88/vrorigins/internal/store"
)

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type     string
	Expected string
	Actual   string
	History  []ir.Resolution
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.History) > 0 {
		fmt.Fprintf(&buf, "\nHistory:\n")
		for _, r := range e.History {
			fmt.Fprintf(&buf, "  [%d] %s %s -> %s\n", r.Seq, r.ActionSet, r.Action, r.Outcome)
		}
	}

	return buf.String()
}

// AssertionContext provides what assertions inspect.
type AssertionContext struct {
	Store   *store.Store
	Runtime *simvr.Runtime
	Ctx     context.Context
}

// EvaluateAssertions evaluates all assertions and returns one message per
// failed assertion.
func EvaluateAssertions(result *Result, assertions []Assertion, actx *AssertionContext) []string {
	if len(assertions) == 0 {
		return nil
	}
	if actx == nil || actx.Store == nil {
		return []string{"assertions require a history store"}
	}

	history, err := actx.Store.ListResolutions(actx.Ctx, 0)
	if err != nil {
		return []string{fmt.Sprintf("read history: %v", err)}
	}

	var errors []string
	for i, assertion := range assertions {
		var err error

		switch assertion.Type {
		case AssertHistoryContains:
			err = assertHistoryContains(history, assertion)
		case AssertHistoryOrder:
			err = assertHistoryOrder(history, assertion)
		case AssertHistoryCount:
			err = assertHistoryCount(history, assertion)
		case AssertStableDigest:
			err = assertStableDigest(history, assertion)
		case AssertRuntimeCalls:
			if actx.Runtime == nil {
				err = fmt.Errorf("assertion[%d]: runtime_calls requires a runtime", i)
			} else {
				err = assertRuntimeCalls(actx.Runtime, assertion)
			}
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}
	return errors
}

// matches reports whether a history row is selected by the assertion.
// Empty selector fields match anything.
func matches(r ir.Resolution, a Assertion) bool {
	if a.ActionSet != "" && r.ActionSet != a.ActionSet {
		return false
	}
	if a.Action != "" && r.Action != a.Action {
		return false
	}
	if a.Outcome != "" && r.Outcome != a.Outcome {
		return false
	}
	return true
}

func assertHistoryContains(history []ir.Resolution, a Assertion) error {
	for _, r := range history {
		if matches(r, a) {
			return nil
		}
	}
	return &AssertionError{
		Type:     AssertHistoryContains,
		Expected: fmt.Sprintf("resolution of %s with outcome %q", a.Action, a.Outcome),
		Actual:   "not found in history",
		History:  history,
	}
}

// assertHistoryOrder checks that actions were first resolved in the given
// order. Intervening resolutions are allowed.
func assertHistoryOrder(history []ir.Resolution, a Assertion) error {
	positions := make(map[string]int)
	for i, r := range history {
		if positions[r.Action] == 0 {
			positions[r.Action] = i + 1
		}
	}

	for _, action := range a.Actions {
		if positions[action] == 0 {
			return &AssertionError{
				Type:     AssertHistoryOrder,
				Expected: fmt.Sprintf("all actions present: %v", a.Actions),
				Actual:   fmt.Sprintf("missing action: %s", action),
				History:  history,
			}
		}
	}

	for i := 1; i < len(a.Actions); i++ {
		prev, curr := a.Actions[i-1], a.Actions[i]
		if positions[prev] >= positions[curr] {
			return &AssertionError{
				Type:     AssertHistoryOrder,
				Expected: fmt.Sprintf("actions in order: %v", a.Actions),
				Actual: fmt.Sprintf("%s (pos %d) should be before %s (pos %d)",
					prev, positions[prev], curr, positions[curr]),
				History: history,
			}
		}
	}
	return nil
}

func assertHistoryCount(history []ir.Resolution, a Assertion) error {
	count := 0
	for _, r := range history {
		if matches(r, a) {
			count++
		}
	}
	if count != a.Count {
		return &AssertionError{
			Type:     AssertHistoryCount,
			Expected: fmt.Sprintf("%d resolutions of %s", a.Count, a.Action),
			Actual:   fmt.Sprintf("%d resolutions", count),
			History:  history,
		}
	}
	return nil
}

// assertStableDigest checks every successful resolution of the action
// produced the same digest.
func assertStableDigest(history []ir.Resolution, a Assertion) error {
	var (
		first string
		n     int
	)
	for _, r := range history {
		if r.Action != a.Action || !r.Succeeded() {
			continue
		}
		if a.ActionSet != "" && r.ActionSet != a.ActionSet {
			continue
		}
		n++
		if first == "" {
			first = r.Digest
			continue
		}
		if r.Digest != first {
			return &AssertionError{
				Type:     AssertStableDigest,
				Expected: fmt.Sprintf("digest %s for every resolution of %s", first, a.Action),
				Actual:   fmt.Sprintf("digest %s at seq %d", r.Digest, r.Seq),
				History:  history,
			}
		}
	}
	if n < 2 {
		return &AssertionError{
			Type:     AssertStableDigest,
			Expected: fmt.Sprintf("at least 2 successful resolutions of %s", a.Action),
			Actual:   fmt.Sprintf("%d", n),
			History:  history,
		}
	}
	return nil
}

func assertRuntimeCalls(rt *simvr.Runtime, a Assertion) error {
	if got := rt.Calls(a.Op); got != a.Count {
		return &AssertionError{
			Type:     AssertRuntimeCalls,
			Expected: fmt.Sprintf("%d calls to %s", a.Count, a.Op),
			Actual:   fmt.Sprintf("%d calls", got),
		}
	}
	return nil
}
