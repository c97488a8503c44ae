package harness

import "github.com/roach88/vrorigins/internal/ir"

// Trace event types.
const (
	EventResolve    = "resolve"
	EventFail       = "fail"
	EventFailName   = "fail_name"
	EventClear      = "clear"
	EventSwitch     = "switch_active_sets"
	EventBindingUI  = "binding_ui"
	EventDisconnect = "disconnect"
)

// TraceEvent records one executed step.
type TraceEvent struct {
	Type string `json:"type"`
	Step int    `json:"step"`

	// Resolve events.
	ActionSet string                 `json:"action_set,omitempty"`
	Action    string                 `json:"action,omitempty"`
	Outcome   string                 `json:"outcome,omitempty"`
	Records   []ir.BindingOriginData `json:"records,omitempty"`
	Digest    string                 `json:"digest,omitempty"`
	Seq       int64                  `json:"seq,omitempty"`

	// Detail describes runtime steps, e.g. "ActionBindingInfo=IPCError".
	Detail string `json:"detail,omitempty"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when every expectation and assertion held.
	Pass bool `json:"pass"`

	// Trace lists executed steps in order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains failed expectations and assertions.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError records a failure and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddEvent appends a trace event.
func (r *Result) AddEvent(ev TraceEvent) {
	r.Trace = append(r.Trace, ev)
}
