package harness

import (
	"context"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/vrorigins/internal/ir"
)

// Snapshot is the golden form of a scenario run.
type Snapshot struct {
	ScenarioName string
	Trace        []TraceEvent
}

// toCanonicalMap converts the snapshot for ir.MarshalCanonical. Digests are
// left out: they are covered by the stable_digest assertion and would make
// golden files unreadable.
func (s *Snapshot) toCanonicalMap() map[string]any {
	trace := make([]any, len(s.Trace))
	for i, ev := range s.Trace {
		m := map[string]any{
			"type": ev.Type,
			"step": ev.Step,
		}
		if ev.ActionSet != "" {
			m["action_set"] = ev.ActionSet
		}
		if ev.Action != "" {
			m["action"] = ev.Action
		}
		if ev.Outcome != "" {
			m["outcome"] = ev.Outcome
		}
		if ev.Type == EventResolve && ev.Outcome == ir.OutcomeOK {
			records := ev.Records
			if records == nil {
				records = []ir.BindingOriginData{}
			}
			m["records"] = records
		}
		if ev.Seq != 0 {
			m["seq"] = ev.Seq
		}
		if ev.Detail != "" {
			m["detail"] = ev.Detail
		}
		trace[i] = m
	}
	return map[string]any{
		"scenario_name": s.ScenarioName,
		"trace":         trace,
	}
}

// MarshalSnapshot renders a result as canonical JSON for golden comparison.
func MarshalSnapshot(scenarioName string, result *Result) ([]byte, error) {
	snap := Snapshot{ScenarioName: scenarioName, Trace: result.Trace}
	return ir.MarshalCanonical(snap.toCanonicalMap())
}

// RunWithGolden executes a scenario and compares its trace against
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(context.Background(), scenario)
	if err != nil {
		return nil, err
	}

	data, err := MarshalSnapshot(scenario.Name, result)
	if err != nil {
		return nil, err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, data)

	return result, nil
}
