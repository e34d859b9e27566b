package generic

import (
	"encoding/json"

	"github.com/cockroachdb/errors"
	"github.com/openai/openai-go/v3"
)

// ToOpenAI converts tool definitions to the official OpenAI SDK
// request params. This is a representation change within the same
// dialect, not a separate one.
func ToOpenAI(tools ...Tool) ([]openai.ChatCompletionToolUnionParam, error) {
	out := make([]openai.ChatCompletionToolUnionParam, 0, len(tools))
	for _, t := range tools {
		if t.Function == nil {
			continue
		}
		var params openai.FunctionParameters
		js, err := json.Marshal(t.Function.Parameters)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to encode parameters of tool %q", t.Function.Name)
		}
		if err := json.Unmarshal(js, &params); err != nil {
			return nil, errors.Wrapf(err, "failed to decode parameters of tool %q", t.Function.Name)
		}
		out = append(out, openai.ChatCompletionFunctionTool(openai.FunctionDefinitionParam{
			Name:        t.Function.Name,
			Description: openai.String(t.Function.Description),
			Parameters:  params,
		}))
	}
	return out, nil
}

// FromOpenAI converts a tool call from an OpenAI SDK completion
// message into the dialect's tool call.
func FromOpenAI(call openai.ChatCompletionMessageToolCallUnion) ToolCall {
	return ToolCall{
		ID:   call.ID,
		Type: call.Type,
		Function: &FunctionCall{
			Name:      call.Function.Name,
			Arguments: call.Function.Arguments,
		},
	}
}

// ToOpenAI converts the tool message to an OpenAI SDK chat message.
func (m *ToolMessage) ToOpenAI() openai.ChatCompletionMessageParamUnion {
	var text string
	if len(m.Content) > 0 {
		text = m.Content[0].Text
	}
	return openai.ToolMessage(text, m.ToolCallID)
}
