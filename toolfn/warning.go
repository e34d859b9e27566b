package toolfn

import (
	"fmt"

	"github.com/effective-security/xlog"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/gentools", "toolfn")

// Warning fields.
const (
	FieldDescription = "description"
	FieldOutputLabel = "output_label"
	FieldParameter   = "parameter"
)

// Warning is an advisory diagnostic emitted when an annotation
// overwrites already-set metadata. Warnings never fail the annotation,
// the latest value always wins.
type Warning struct {
	Tool      string `json:"tool" yaml:"tool"`
	Field     string `json:"field" yaml:"field"`
	Parameter string `json:"parameter,omitempty" yaml:"parameter,omitempty"`
	Message   string `json:"message" yaml:"message"`
}

func (w Warning) String() string {
	if w.Parameter != "" {
		return fmt.Sprintf("%s: %s %q: %s", w.Tool, w.Field, w.Parameter, w.Message)
	}
	return fmt.Sprintf("%s: %s: %s", w.Tool, w.Field, w.Message)
}

// WarningSink receives annotation conflict warnings.
// When a tool has no sink, warnings are logged at WARNING level.
type WarningSink interface {
	OnAnnotationConflict(Warning)
}
