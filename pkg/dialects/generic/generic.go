package generic

import (
	"context"
	"encoding/json"

	"github.com/bububa/ljson"
	"github.com/cockroachdb/errors"
	"github.com/effective-security/gentools/pkg/llmutils"
	"github.com/effective-security/gentools/toolfn"
	"github.com/effective-security/xlog"
	"github.com/invopop/jsonschema"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/gentools", "generic")

// SchemaVersion is emitted in every function definition.
const SchemaVersion = "https://json-schema.org/draft/2020-12/schema"

// ToolType is the only tool type of this dialect.
const ToolType = "function"

// ErrMalformedArguments is returned when the arguments string of a
// tool call is not a valid JSON object. The target function is not
// invoked in that case.
var ErrMalformedArguments = errors.New("malformed tool call arguments")

// Tool is the function-style tool definition advertised to the model.
type Tool struct {
	Type     string              `json:"type"`
	Function *FunctionDefinition `json:"function"`
}

// FunctionDefinition carries the tool name, description and the
// JSON Schema of its parameters.
type FunctionDefinition struct {
	Name        string             `json:"name"`
	Description string             `json:"description"`
	Parameters  *jsonschema.Schema `json:"parameters"`
}

// FunctionCall carries the arguments of a tool call as a JSON-encoded
// object string.
type FunctionCall struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// ToolCall is a tool invocation returned by the model.
type ToolCall struct {
	ID       string        `json:"id"`
	Type     string        `json:"type"`
	Function *FunctionCall `json:"function"`
}

// TextContent is one text part of a tool message.
type TextContent struct {
	Text string `json:"text"`
}

// ToolMessage reports the outcome of a tool call back to the model.
type ToolMessage struct {
	ToolCallID string        `json:"tool_call_id"`
	Content    []TextContent `json:"content"`
}

// BuildDefinition produces the function definition for a metadata
// record. Parameter types are mapped to JSON Schema types, the
// required list keeps declaration order.
func BuildDefinition(t *toolfn.Tool) Tool {
	props := orderedmap.New[string, *jsonschema.Schema]()
	var required []string
	for _, p := range t.Parameters() {
		props.Set(p.Name, &jsonschema.Schema{
			Type:        toolfn.SchemaType(p.Spec.Type),
			Description: p.Spec.Description,
		})
		if p.Spec.Required {
			required = append(required, p.Name)
		}
	}
	return Tool{
		Type: ToolType,
		Function: &FunctionDefinition{
			Name:        t.Name(),
			Description: t.Description(),
			Parameters: &jsonschema.Schema{
				Version:    SchemaVersion,
				Type:       "object",
				Properties: props,
				Required:   required,
			},
		},
	}
}

type dispatchOptions struct {
	lenient bool
}

// DispatchOption configures a single dispatch.
type DispatchOption func(*dispatchOptions)

// WithLenientArguments tolerates backtick-fenced or prefixed JSON in
// the arguments string. Strict decoding is the default.
func WithLenientArguments() DispatchOption {
	return func(o *dispatchOptions) {
		o.lenient = true
	}
}

// Dispatch decodes the call arguments, merges the caller overrides
// (overrides win on name collision) and invokes the tool. The result
// is JSON-encoded under the tool output label as the message text.
// Malformed arguments fail with ErrMalformedArguments before the
// function is invoked; a function error is returned as is.
func Dispatch(ctx context.Context, t *toolfn.Tool, call ToolCall, overrides map[string]any, opts ...DispatchOption) (*ToolMessage, error) {
	var opt dispatchOptions
	for _, o := range opts {
		o(&opt)
	}

	if call.Function == nil {
		return nil, errors.WithMessage(ErrMalformedArguments, "tool call has no function")
	}
	args, err := decodeArguments(call.Function.Arguments, opt.lenient)
	if err != nil {
		return nil, err
	}
	callArgs := llmutils.MergeArguments(args, overrides)

	logger.ContextKV(ctx, xlog.DEBUG,
		"tool", t.Name(),
		"dialect", "generic",
		"call_id", call.ID,
		"args", len(callArgs),
	)

	out, err := t.Invoke(ctx, callArgs)
	if err != nil {
		return nil, err
	}

	text, err := llmutils.JSONWithKey(t.OutputLabel(), out)
	if err != nil {
		return nil, errors.WithMessagef(err, "failed to encode result of tool %q", t.Name())
	}
	return &ToolMessage{
		ToolCallID: call.ID,
		Content:    []TextContent{{Text: text}},
	}, nil
}

// An empty arguments string means a call without arguments.
// Valid JSON that is not an object, such as a null or a bare value,
// fails the same way as undecodable input: decoding into a map would
// silently accept a null document.
func decodeArguments(arguments string, lenient bool) (map[string]any, error) {
	if arguments == "" {
		return map[string]any{}, nil
	}
	var doc any
	var err error
	if lenient {
		err = ljson.Unmarshal(llmutils.CleanJSON([]byte(arguments)), &doc)
	} else {
		err = json.Unmarshal([]byte(arguments), &doc)
	}
	if err != nil {
		return nil, errors.WithMessagef(ErrMalformedArguments, "%s", err.Error())
	}
	args, ok := doc.(map[string]any)
	if !ok {
		return nil, errors.WithMessage(ErrMalformedArguments, "arguments are not a JSON object")
	}
	return args, nil
}
