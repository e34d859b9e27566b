// Package registry keeps a catalog of annotated tools and dispatches
// incoming tool calls to them by name, in either dialect.
package registry

import (
	"context"
	"maps"
	"regexp"
	"slices"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/gentools/callctx"
	"github.com/effective-security/gentools/pkg/dialects/cohere"
	"github.com/effective-security/gentools/pkg/dialects/generic"
	"github.com/effective-security/gentools/pkg/llmutils"
	"github.com/effective-security/gentools/pkg/metricskey"
	"github.com/effective-security/gentools/toolfn"
	"github.com/effective-security/xlog"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/gentools", "registry")

// Dialect names used in logs, metrics tags and callbacks.
// The set is closed: tool calls arrive in one of these two shapes.
const (
	DialectCohere  = "cohere"
	DialectGeneric = "generic"
)

var (
	// ErrToolNotFound is returned when a tool call names an
	// unregistered tool.
	ErrToolNotFound = errors.New("tool not found")
	// ErrAlreadyRegistered is returned on duplicate registration.
	ErrAlreadyRegistered = errors.New("tool is already registered")
	// ErrInvalidName is returned when a tool name is not usable in a
	// tool-calling protocol.
	ErrInvalidName = errors.New("invalid tool name")
)

var nameRe = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_-]{0,63}$`)

// Callback receives dispatch lifecycle events.
type Callback interface {
	OnDispatchStart(ctx context.Context, dialect string, tool *toolfn.Tool)
	OnDispatchEnd(ctx context.Context, dialect string, tool *toolfn.Tool, elapsed time.Duration)
	OnDispatchError(ctx context.Context, dialect string, tool *toolfn.Tool, err error)
	OnToolNotFound(ctx context.Context, dialect string, name string)
}

// Registry is a name-keyed tool catalog.
type Registry struct {
	mu       sync.RWMutex
	tools    map[string]*toolfn.Tool
	callback Callback
	lenient  bool
}

// Option configures a Registry.
type Option func(*Registry)

// WithCallback sets the dispatch event callback.
func WithCallback(cb Callback) Option {
	return func(r *Registry) {
		r.callback = cb
	}
}

// WithLenientArguments enables lenient argument decoding for
// function-style dispatch.
func WithLenientArguments() Option {
	return func(r *Registry) {
		r.lenient = true
	}
}

// New creates an empty Registry.
func New(opts ...Option) *Registry {
	r := &Registry{
		tools: make(map[string]*toolfn.Tool),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds tools to the catalog. The whole batch is validated
// first: on error no tool from the batch is registered.
func (r *Registry) Register(tools ...*toolfn.Tool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	seen := make(map[string]bool, len(tools))
	for _, t := range tools {
		name := t.Name()
		if !nameRe.MatchString(name) {
			return errors.WithMessagef(ErrInvalidName, "%q", name)
		}
		if _, ok := r.tools[name]; ok || seen[name] {
			return errors.WithMessagef(ErrAlreadyRegistered, "%q", name)
		}
		seen[name] = true
	}
	for _, t := range tools {
		r.tools[t.Name()] = t
	}
	return nil
}

// Lookup finds a registered tool by name.
func (r *Registry) Lookup(name string) (*toolfn.Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[name]
	return t, ok
}

// Names returns the registered tool names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.tools))
}

// Len returns the number of registered tools.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tools)
}

// CohereTools returns structured-parameter definitions for all
// registered tools, sorted by name.
func (r *Registry) CohereTools() []cohere.Tool {
	res := make([]cohere.Tool, 0, r.Len())
	for _, name := range r.Names() {
		if t, ok := r.Lookup(name); ok {
			res = append(res, cohere.BuildDefinition(t))
		}
	}
	return res
}

// GenericTools returns function definitions for all registered tools,
// sorted by name.
func (r *Registry) GenericTools() []generic.Tool {
	res := make([]generic.Tool, 0, r.Len())
	for _, name := range r.Names() {
		if t, ok := r.Lookup(name); ok {
			res = append(res, generic.BuildDefinition(t))
		}
	}
	return res
}

// DispatchCohere resolves the called tool by name and dispatches the
// structured-parameter tool call to it.
func (r *Registry) DispatchCohere(ctx context.Context, call cohere.ToolCall, overrides map[string]any) (*cohere.ToolResult, error) {
	t, err := r.resolve(ctx, DialectCohere, call.Name)
	if err != nil {
		return nil, err
	}
	res, err := dispatch(ctx, r.callback, DialectCohere, t, func() (*cohere.ToolResult, error) {
		return cohere.Dispatch(ctx, t, call, overrides)
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// DispatchGeneric resolves the called tool by name and dispatches the
// function-style tool call to it.
func (r *Registry) DispatchGeneric(ctx context.Context, call generic.ToolCall, overrides map[string]any) (*generic.ToolMessage, error) {
	if call.Function == nil {
		return nil, errors.WithMessage(generic.ErrMalformedArguments, "tool call has no function")
	}
	t, err := r.resolve(ctx, DialectGeneric, call.Function.Name)
	if err != nil {
		return nil, err
	}
	var opts []generic.DispatchOption
	if r.lenient {
		opts = append(opts, generic.WithLenientArguments())
	}
	res, err := dispatch(ctx, r.callback, DialectGeneric, t, func() (*generic.ToolMessage, error) {
		return generic.Dispatch(ctx, t, call, overrides, opts...)
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (r *Registry) resolve(ctx context.Context, dialect, name string) (*toolfn.Tool, error) {
	t, ok := r.Lookup(name)
	if !ok {
		metricskey.StatsToolCallsNotFound.IncrCounter(1, name, dialect)
		if r.callback != nil {
			r.callback.OnToolNotFound(ctx, dialect, name)
		}
		logger.ContextKV(ctx, xlog.WARNING,
			"dialect", dialect,
			"status", "tool_not_found",
			"tool", name,
			"cid", callctx.GetCorrelationID(ctx),
		)
		return nil, errors.WithMessagef(ErrToolNotFound, "%q", name)
	}
	return t, nil
}

func dispatch[T any](ctx context.Context, cb Callback, dialect string, t *toolfn.Tool, call func() (T, error)) (T, error) {
	if cb != nil {
		cb.OnDispatchStart(ctx, dialect, t)
	}
	started := time.Now()
	res, err := call()
	elapsed := time.Since(started)
	metricskey.PerfToolCall.MeasureSince(started, t.Name(), dialect)

	if err != nil {
		if errors.Is(err, generic.ErrMalformedArguments) {
			metricskey.StatsToolCallsMalformed.IncrCounter(1, t.Name(), dialect)
		} else {
			metricskey.StatsToolCallsFailed.IncrCounter(1, t.Name(), dialect)
		}
		if cb != nil {
			cb.OnDispatchError(ctx, dialect, t, err)
		}
		logger.ContextKV(ctx, xlog.ERROR,
			"dialect", dialect,
			"tool", t.Name(),
			"cid", callctx.GetCorrelationID(ctx),
			"err", err.Error(),
		)
		return res, err
	}

	metricskey.StatsToolCallsSucceeded.IncrCounter(1, t.Name(), dialect)
	if cb != nil {
		cb.OnDispatchEnd(ctx, dialect, t, elapsed)
	}
	logger.ContextKV(ctx, xlog.DEBUG,
		"dialect", dialect,
		"tool", t.Name(),
		"cid", callctx.GetCorrelationID(ctx),
		"elapsed", elapsed.String(),
	)
	return res, nil
}

type toolDescription struct {
	Name        string `json:"Name" yaml:"Name"`
	Description string `json:"Description" yaml:"Description"`
}

type toolsDescription struct {
	Tools []toolDescription `json:"Tools" yaml:"Tools"`
}

// Describe returns a fenced-JSON listing of the registered tools,
// suitable for embedding into a prompt.
func (r *Registry) Describe() string {
	var d toolsDescription
	for _, name := range r.Names() {
		if t, ok := r.Lookup(name); ok {
			d.Tools = append(d.Tools, toolDescription{
				Name:        t.Name(),
				Description: t.Description(),
			})
		}
	}
	return llmutils.BackticksJSON(llmutils.ToJSONIndent(d))
}
