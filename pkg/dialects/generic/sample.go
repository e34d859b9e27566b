package generic

import (
	"github.com/brianvoe/gofakeit/v7"
	"github.com/effective-security/gentools/pkg/llmutils"
	"github.com/effective-security/gentools/toolfn"
	"github.com/google/uuid"
)

// SampleCall produces a syntactically valid tool call for the tool,
// with fake arguments matching each parameter type. Useful for docs
// and round-trip tests without a live model.
func SampleCall(t *toolfn.Tool) ToolCall {
	args := map[string]any{}
	for _, p := range t.Parameters() {
		args[p.Name] = fakeValue(p.Spec.Type)
	}
	return ToolCall{
		ID:   "call_" + uuid.NewString(),
		Type: ToolType,
		Function: &FunctionCall{
			Name:      t.Name(),
			Arguments: llmutils.ToJSON(args),
		},
	}
}

func fakeValue(t toolfn.ParamType) any {
	switch toolfn.SchemaType(t) {
	case "integer":
		return gofakeit.Number(1, 100)
	case "number":
		return gofakeit.Float64Range(0, 100)
	case "boolean":
		return gofakeit.Bool()
	case "object":
		return map[string]any{gofakeit.Word(): gofakeit.Word()}
	case "array":
		return []any{gofakeit.Word(), gofakeit.Word()}
	default:
		return gofakeit.Word()
	}
}
