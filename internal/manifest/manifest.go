package manifest

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
)

//go:embed schema.cue
var schemaCUE string

// Manifest is the decoded action manifest.
type Manifest struct {
	ActionSets      []ActionSet      `json:"action_sets"`
	Actions         []Action         `json:"actions"`
	DefaultBindings []DefaultBinding `json:"default_bindings,omitempty"`
}

// ActionSet declares one action set.
type ActionSet struct {
	Name  string `json:"name"`
	Usage string `json:"usage,omitempty"`
}

// Action declares one action.
type Action struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Requirement string `json:"requirement,omitempty"`
}

// SetName returns the action set path an action belongs to
// ("/actions/default/in/squeeze" -> "/actions/default").
func (a Action) SetName() string {
	parts := strings.SplitN(a.Name, "/", 4)
	if len(parts) < 3 {
		return ""
	}
	return "/" + parts[1] + "/" + parts[2]
}

// DefaultBinding points at a default binding file for a controller type.
type DefaultBinding struct {
	ControllerType string `json:"controller_type"`
	BindingURL     string `json:"binding_url"`
}

// Error reports an invalid manifest, with a source position when known.
type Error struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *Error) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Load reads and validates a manifest file.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	return Parse(path, data)
}

// Parse validates manifest bytes against the schema and decodes them.
// filename is only used in error positions.
func Parse(filename string, data []byte) (*Manifest, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("manifest schema: %w", err)
	}

	value := ctx.CompileBytes(data, cue.Filename(filename))
	if err := value.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	unified := schema.LookupPath(cue.ParsePath("#Manifest")).Unify(value)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return nil, formatCUEError(err)
	}

	var m Manifest
	if err := unified.Decode(&m); err != nil {
		return nil, formatCUEError(err)
	}

	if err := m.check(); err != nil {
		return nil, err
	}
	return &m, nil
}

// check enforces rules the schema cannot express: unique names and every
// action belonging to a declared set.
func (m *Manifest) check() error {
	sets := make(map[string]bool, len(m.ActionSets))
	for i, s := range m.ActionSets {
		if sets[s.Name] {
			return &Error{Field: fmt.Sprintf("action_sets[%d]", i), Message: fmt.Sprintf("duplicate action set %q", s.Name)}
		}
		sets[s.Name] = true
	}

	actions := make(map[string]bool, len(m.Actions))
	for i, a := range m.Actions {
		if actions[a.Name] {
			return &Error{Field: fmt.Sprintf("actions[%d]", i), Message: fmt.Sprintf("duplicate action %q", a.Name)}
		}
		actions[a.Name] = true
		if !sets[a.SetName()] {
			return &Error{Field: fmt.Sprintf("actions[%d]", i), Message: fmt.Sprintf("action %q belongs to undeclared set %q", a.Name, a.SetName())}
		}
	}
	return nil
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	first := errs[0]
	field := strings.Join(first.Path(), ".")
	if field == "" {
		field = "manifest"
	}
	positions := cueerrors.Positions(first)
	if len(positions) > 0 {
		return &Error{
			Field:   field,
			Message: first.Error(),
			Pos:     positions[0],
		}
	}
	return &Error{Field: field, Message: first.Error()}
}
