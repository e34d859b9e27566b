// Package callctx carries per-call correlation data through the
// context passed into tool dispatch.
package callctx

import (
	"context"
	"strconv"
	"sync"

	"github.com/effective-security/x/values"
	"github.com/effective-security/xdb/pkg/flake"
)

// CallContext is the correlation context of one tool invocation chain.
// It carries a correlation ID, immutable app data and mutable metadata.
type CallContext interface {
	GetCorrelationID() string
	// AppData returns immutable app data
	AppData() any
	// GetMetadata retrieves metadata by key
	GetMetadata(key string) (value any, ok bool)
	// SetMetadata sets metadata by key
	SetMetadata(key string, value any)
}

type callContext struct {
	correlationID string
	metadata      sync.Map
	appData       any
}

func (c *callContext) GetCorrelationID() string {
	return c.correlationID
}

func (c *callContext) AppData() any {
	return c.appData
}

func (c *callContext) GetMetadata(key string) (value any, ok bool) {
	return c.metadata.Load(key)
}

func (c *callContext) SetMetadata(key string, value any) {
	c.metadata.Store(key, value)
}

// NewCallContext creates a CallContext. An empty correlationID is
// replaced with a generated one.
func NewCallContext(correlationID string, appData any) CallContext {
	return &callContext{
		correlationID: values.StringsCoalesce(correlationID, NewCorrelationID()),
		appData:       appData,
		metadata:      sync.Map{},
	}
}

type contextKey int

const (
	keyContext contextKey = iota
)

// WithCallContext returns a new context with CallContext value
func WithCallContext(ctx context.Context, callCtx CallContext) context.Context {
	return context.WithValue(ctx, keyContext, callCtx)
}

// GetCallContext retrieves the CallContext from the context
func GetCallContext(ctx context.Context) CallContext {
	if v, ok := ctx.Value(keyContext).(CallContext); ok {
		return v
	}
	return nil
}

// GetCorrelationID retrieves the correlation ID from the provided
// context. If the context does not contain a CallContext, it returns
// an empty string.
func GetCorrelationID(ctx context.Context) string {
	if v, ok := ctx.Value(keyContext).(CallContext); ok {
		return v.GetCorrelationID()
	}
	return ""
}

// NewCorrelationID generates a new ID using the flake ID generator.
func NewCorrelationID() string {
	return strconv.FormatUint(flake.DefaultIDGenerator.NextID(), 10)
}
