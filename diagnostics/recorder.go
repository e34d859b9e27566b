// Package diagnostics collects annotation conflict warnings so
// callers can inspect them after wiring up their tools.
package diagnostics

import (
	"sync"

	"github.com/effective-security/gentools/toolfn"
)

// Recorder accumulates annotation warnings per tool.
type Recorder interface {
	toolfn.WarningSink

	// List returns the warnings recorded for one tool.
	List(tool string) []toolfn.Warning
	// All returns every recorded warning, in arrival order.
	All() []toolfn.Warning
	// Reset discards the warnings recorded for one tool.
	Reset(tool string)
}

// NewInMemory creates a Recorder backed by process memory.
func NewInMemory() Recorder {
	return &inMemory{
		byTool: make(map[string][]toolfn.Warning),
	}
}

type inMemory struct {
	mu     sync.RWMutex
	byTool map[string][]toolfn.Warning
	all    []toolfn.Warning
}

var _ toolfn.WarningSink = (*inMemory)(nil)

func (r *inMemory) OnAnnotationConflict(w toolfn.Warning) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byTool[w.Tool] = append(r.byTool[w.Tool], w)
	r.all = append(r.all, w)
}

func (r *inMemory) List(tool string) []toolfn.Warning {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := r.byTool[tool]
	res := make([]toolfn.Warning, len(list))
	copy(res, list)
	return res
}

func (r *inMemory) All() []toolfn.Warning {
	r.mu.RLock()
	defer r.mu.RUnlock()
	res := make([]toolfn.Warning, len(r.all))
	copy(res, r.all)
	return res
}

func (r *inMemory) Reset(tool string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byTool, tool)
	kept := r.all[:0]
	for _, w := range r.all {
		if w.Tool != tool {
			kept = append(kept, w)
		}
	}
	r.all = kept
}
