// Package callbacks provides ready-made sinks for annotation warnings
// and dispatch events: silent, printing, logging and fan-out.
package callbacks

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/effective-security/gentools/registry"
	"github.com/effective-security/gentools/toolfn"
	"github.com/effective-security/xlog"
)

// ensure that the callbacks implement the correct interfaces
var (
	_ registry.Callback  = (*Noop)(nil)
	_ toolfn.WarningSink = (*Noop)(nil)
	_ registry.Callback  = (*Printer)(nil)
	_ toolfn.WarningSink = (*Printer)(nil)
	_ registry.Callback  = (*PackageLogger)(nil)
	_ toolfn.WarningSink = (*PackageLogger)(nil)
	_ registry.Callback  = (*Fanout)(nil)
	_ toolfn.WarningSink = (*Fanout)(nil)
)

// Handler is both a dispatch callback and an annotation warning sink.
type Handler interface {
	registry.Callback
	toolfn.WarningSink
}

// Mode defines the mode for callback printing
type Mode int

const (
	// ModeDefault is the default mode for callback printing
	ModeDefault Mode = iota
	// ModeVerbose is the verbose mode for callback printing
	ModeVerbose
)

// Noop does nothing.
type Noop struct{}

func NewNoop() *Noop {
	return &Noop{}
}

func (l *Noop) OnDispatchStart(ctx context.Context, dialect string, tool *toolfn.Tool) {}
func (l *Noop) OnDispatchEnd(ctx context.Context, dialect string, tool *toolfn.Tool, elapsed time.Duration) {
}
func (l *Noop) OnDispatchError(ctx context.Context, dialect string, tool *toolfn.Tool, err error) {}
func (l *Noop) OnToolNotFound(ctx context.Context, dialect string, name string)                   {}
func (l *Noop) OnAnnotationConflict(w toolfn.Warning)                                             {}

// Printer is a callback handler that prints to the Writer.
type Printer struct {
	Out  io.Writer
	Mode Mode

	lock sync.Mutex
}

func NewPrinter(out io.Writer, mode Mode) *Printer {
	return &Printer{Out: out, Mode: mode}
}

func (l *Printer) OnDispatchStart(ctx context.Context, dialect string, tool *toolfn.Tool) {
	l.lock.Lock()
	defer l.lock.Unlock()
	fmt.Fprintf(l.Out, "Dispatch Start: %s (%s)\n", tool.Name(), dialect)
}

func (l *Printer) OnDispatchEnd(ctx context.Context, dialect string, tool *toolfn.Tool, elapsed time.Duration) {
	l.lock.Lock()
	defer l.lock.Unlock()
	fmt.Fprintf(l.Out, "Dispatch End: %s (%s)\n", tool.Name(), dialect)
	if l.Mode == ModeVerbose {
		fmt.Fprintf(l.Out, "Elapsed: %s\n", elapsed)
	}
}

func (l *Printer) OnDispatchError(ctx context.Context, dialect string, tool *toolfn.Tool, err error) {
	l.lock.Lock()
	defer l.lock.Unlock()
	fmt.Fprintf(l.Out, "Dispatch Error: %s (%s): %s\n", tool.Name(), dialect, err.Error())
}

func (l *Printer) OnToolNotFound(ctx context.Context, dialect string, name string) {
	l.lock.Lock()
	defer l.lock.Unlock()
	fmt.Fprintf(l.Out, "Tool Not Found: %s (%s)\n", name, dialect)
}

func (l *Printer) OnAnnotationConflict(w toolfn.Warning) {
	l.lock.Lock()
	defer l.lock.Unlock()
	fmt.Fprintf(l.Out, "Annotation Conflict: %s\n", w.String())
}

// PackageLogger is a callback handler that prints to the logger.
type PackageLogger struct {
	logger *xlog.PackageLogger
}

func NewPackageLogger(logger *xlog.PackageLogger) *PackageLogger {
	return &PackageLogger{logger: logger}
}

func (l *PackageLogger) OnDispatchStart(ctx context.Context, dialect string, tool *toolfn.Tool) {
	l.logger.ContextKV(ctx, xlog.DEBUG,
		"event", "dispatch_start",
		"dialect", dialect,
		"tool", tool.Name(),
	)
}

func (l *PackageLogger) OnDispatchEnd(ctx context.Context, dialect string, tool *toolfn.Tool, elapsed time.Duration) {
	l.logger.ContextKV(ctx, xlog.DEBUG,
		"event", "dispatch_end",
		"dialect", dialect,
		"tool", tool.Name(),
		"elapsed", elapsed.String(),
	)
}

func (l *PackageLogger) OnDispatchError(ctx context.Context, dialect string, tool *toolfn.Tool, err error) {
	l.logger.ContextKV(ctx, xlog.ERROR,
		"event", "dispatch_error",
		"dialect", dialect,
		"tool", tool.Name(),
		"err", err.Error(),
	)
}

func (l *PackageLogger) OnToolNotFound(ctx context.Context, dialect string, name string) {
	l.logger.ContextKV(ctx, xlog.WARNING,
		"event", "tool_not_found",
		"dialect", dialect,
		"tool", name,
	)
}

func (l *PackageLogger) OnAnnotationConflict(w toolfn.Warning) {
	l.logger.KV(xlog.WARNING,
		"event", "annotation_conflict",
		"tool", w.Tool,
		"field", w.Field,
		"parameter", w.Parameter,
		"reason", w.Message,
	)
}

// Fanout is a callback handler that forwards the events to multiple callbacks.
type Fanout struct {
	callbacks []Handler
}

func NewFanout(callbacks ...Handler) *Fanout {
	return &Fanout{callbacks: callbacks}
}

func (l *Fanout) Add(callback Handler) {
	l.callbacks = append(l.callbacks, callback)
}

func (l *Fanout) OnDispatchStart(ctx context.Context, dialect string, tool *toolfn.Tool) {
	for _, callback := range l.callbacks {
		callback.OnDispatchStart(ctx, dialect, tool)
	}
}

func (l *Fanout) OnDispatchEnd(ctx context.Context, dialect string, tool *toolfn.Tool, elapsed time.Duration) {
	for _, callback := range l.callbacks {
		callback.OnDispatchEnd(ctx, dialect, tool, elapsed)
	}
}

func (l *Fanout) OnDispatchError(ctx context.Context, dialect string, tool *toolfn.Tool, err error) {
	for _, callback := range l.callbacks {
		callback.OnDispatchError(ctx, dialect, tool, err)
	}
}

func (l *Fanout) OnToolNotFound(ctx context.Context, dialect string, name string) {
	for _, callback := range l.callbacks {
		callback.OnToolNotFound(ctx, dialect, name)
	}
}

func (l *Fanout) OnAnnotationConflict(w toolfn.Warning) {
	for _, callback := range l.callbacks {
		callback.OnAnnotationConflict(w)
	}
}
