package cohere

import (
	"context"
	"reflect"

	"github.com/effective-security/gentools/pkg/llmutils"
	"github.com/effective-security/gentools/toolfn"
	"github.com/effective-security/xlog"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/gentools", "cohere")

// Tool is the structured-parameter tool definition advertised to the
// model. Parameter type labels are passed through verbatim.
type Tool struct {
	Name                 string                         `json:"name"`
	Description          string                         `json:"description"`
	ParameterDefinitions map[string]ParameterDefinition `json:"parameter_definitions"`
}

// ParameterDefinition describes one tool parameter in the definition.
type ParameterDefinition struct {
	Description string `json:"description"`
	Type        string `json:"type"`
	IsRequired  bool   `json:"is_required"`
}

// ToolCall is a tool invocation returned by the model, carrying the
// arguments as a flat parameter map.
type ToolCall struct {
	Name       string         `json:"name"`
	Parameters map[string]any `json:"parameters"`
}

// ToolResult reports the outcome of a tool call back to the model.
// Outputs is always a list, even for a single output.
type ToolResult struct {
	Call    ToolCall `json:"call"`
	Outputs []any    `json:"outputs"`
}

// BuildDefinition produces the tool definition for a metadata record.
// A tool without parameters yields an empty parameter_definitions map,
// not a missing field.
func BuildDefinition(t *toolfn.Tool) Tool {
	params := make(map[string]ParameterDefinition)
	for _, p := range t.Parameters() {
		params[p.Name] = ParameterDefinition{
			Description: p.Spec.Description,
			Type:        string(p.Spec.Type),
			IsRequired:  p.Spec.Required,
		}
	}
	return Tool{
		Name:                 t.Name(),
		Description:          t.Description(),
		ParameterDefinitions: params,
	}
}

// Dispatch invokes the tool with the call parameters merged with the
// caller overrides, overrides winning on name collision. The function
// error is returned as is. The result echoes the original call.
func Dispatch(ctx context.Context, t *toolfn.Tool, call ToolCall, overrides map[string]any) (*ToolResult, error) {
	args := llmutils.MergeArguments(call.Parameters, overrides)

	logger.ContextKV(ctx, xlog.DEBUG,
		"tool", t.Name(),
		"dialect", "cohere",
		"args", len(args),
	)

	out, err := t.Invoke(ctx, args)
	if err != nil {
		return nil, err
	}

	return &ToolResult{
		Call:    call,
		Outputs: outputsList(t.OutputLabel(), out),
	}, nil
}

// The service expects outputs as a list: a slice result is used as the
// output list directly, anything else is wrapped under the output
// label as a one-element list.
func outputsList(label string, out any) []any {
	if out != nil {
		v := reflect.ValueOf(out)
		if (v.Kind() == reflect.Slice || v.Kind() == reflect.Array) &&
			v.Type() != reflect.TypeOf([]byte(nil)) {
			list := make([]any, v.Len())
			for i := range v.Len() {
				list[i] = v.Index(i).Interface()
			}
			return list
		}
	}
	return []any{map[string]any{label: out}}
}
