package toolfn

import (
	"context"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/xlog"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// DefaultOutputLabel is the result key used when no output label is set.
const DefaultOutputLabel = "output"

// Func is the target signature of an annotated tool function.
// Arguments arrive as a flat name to value map, already merged from the
// tool call and any caller overrides.
type Func func(ctx context.Context, args map[string]any) (any, error)

// Tool is the metadata record of one annotated function: its name,
// description, output label and ordered parameter definitions.
// Every annotation method mutates the same record and returns the same
// handle, so chained annotations converge regardless of order.
// The record may only be changed through the With* methods.
type Tool struct {
	mu sync.RWMutex

	fn   Func
	name string

	description    string
	descriptionSet bool
	outputLabel    string
	labelSet       bool

	params   *orderedmap.OrderedMap[string, ParameterSpec]
	warnings []Warning
	sink     WarningSink
}

// New creates a tool record for fn, deriving the tool name from the
// function symbol.
func New(fn Func) *Tool {
	return NewNamed(deriveName(fn), fn)
}

// NewNamed creates a tool record with an explicit name.
func NewNamed(name string, fn Func) *Tool {
	return &Tool{
		fn:          fn,
		name:        name,
		outputLabel: DefaultOutputLabel,
		params:      orderedmap.New[string, ParameterSpec](),
	}
}

// WithDescription sets the tool description.
// Overwriting a non-empty description emits a conflict warning;
// the new value always wins.
func (t *Tool) WithDescription(text string) *Tool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.descriptionSet && t.description != "" {
		t.warn(Warning{
			Tool:    t.name,
			Field:   FieldDescription,
			Message: "description is already set, the new value replaces it",
		})
	}
	t.description = text
	t.descriptionSet = true
	return t
}

// WithOutputLabel sets the key under which the dispatchers report the
// function result. Overwriting a label that already differs from the
// default emits a conflict warning; the new value always wins.
func (t *Tool) WithOutputLabel(label string) *Tool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.labelSet && t.outputLabel != DefaultOutputLabel {
		t.warn(Warning{
			Tool:    t.name,
			Field:   FieldOutputLabel,
			Message: "output label is already set, the new value replaces it",
		})
	}
	t.outputLabel = label
	t.labelSet = true
	return t
}

// WithParameter adds a required parameter definition.
func (t *Tool) WithParameter(name string, typ ParamType, description string) *Tool {
	return t.WithParameterSpec(name, ParameterSpec{
		Type:        typ,
		Description: description,
		Required:    true,
	})
}

// WithOptionalParameter adds a parameter the model may omit.
func (t *Tool) WithOptionalParameter(name string, typ ParamType, description string) *Tool {
	return t.WithParameterSpec(name, ParameterSpec{
		Type:        typ,
		Description: description,
	})
}

// WithParameterSpec adds a parameter definition. Re-adding an existing
// name replaces the whole spec and emits a conflict warning; the
// parameter keeps its original position.
func (t *Tool) WithParameterSpec(name string, spec ParameterSpec) *Tool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.params.Get(name); ok {
		t.warn(Warning{
			Tool:      t.name,
			Field:     FieldParameter,
			Parameter: name,
			Message:   "parameter is already defined, the new definition replaces it",
		})
	}
	t.params.Set(name, spec)
	return t
}

// WithWarningSink directs conflict warnings to s instead of the
// package logger. Warnings are still accumulated on the record.
func (t *Tool) WithWarningSink(s WarningSink) *Tool {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sink = s
	return t
}

// caller must hold t.mu
func (t *Tool) warn(w Warning) {
	t.warnings = append(t.warnings, w)
	if t.sink != nil {
		t.sink.OnAnnotationConflict(w)
		return
	}
	logger.KV(xlog.WARNING,
		"tool", w.Tool,
		"field", w.Field,
		"parameter", w.Parameter,
		"reason", w.Message,
	)
}

// Name returns the tool name.
func (t *Tool) Name() string {
	return t.name
}

// Description returns the tool description.
func (t *Tool) Description() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.description
}

// OutputLabel returns the result key used by the dispatchers.
func (t *Tool) OutputLabel() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.outputLabel
}

// Parameters returns the parameter definitions in declaration order.
func (t *Tool) Parameters() []Parameter {
	t.mu.RLock()
	defer t.mu.RUnlock()
	res := make([]Parameter, 0, t.params.Len())
	for pair := t.params.Oldest(); pair != nil; pair = pair.Next() {
		res = append(res, Parameter{Name: pair.Key, Spec: pair.Value})
	}
	return res
}

// Warnings returns a copy of the accumulated conflict warnings.
func (t *Tool) Warnings() []Warning {
	t.mu.RLock()
	defer t.mu.RUnlock()
	res := make([]Warning, len(t.warnings))
	copy(res, t.warnings)
	return res
}

// Invoke calls the target function with the given arguments and
// returns its result and error unchanged.
func (t *Tool) Invoke(ctx context.Context, args map[string]any) (any, error) {
	if t.fn == nil {
		return nil, errors.Newf("tool %q has no target function", t.name)
	}
	return t.fn(ctx, args)
}
