package toolfn_test

import (
	"context"
	"testing"

	"github.com/effective-security/gentools/toolfn"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func greet(_ context.Context, args map[string]any) (any, error) {
	name, ok := args["name"].(string)
	if !ok {
		name = "world"
	}
	return "Hello " + name, nil
}

func TestInvokePassThrough(t *testing.T) {
	tool := toolfn.New(greet)

	res, err := tool.Invoke(context.Background(), map[string]any{"name": "Ann"})
	require.NoError(t, err)
	assert.Equal(t, "Hello Ann", res)

	res, err = tool.Invoke(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "Hello world", res)
}

func TestInvokeNilFunc(t *testing.T) {
	tool := toolfn.NewNamed("empty", nil)
	_, err := tool.Invoke(context.Background(), nil)
	assert.EqualError(t, err, `tool "empty" has no target function`)
}

func TestDefaults(t *testing.T) {
	tool := toolfn.New(greet)
	assert.Equal(t, "greet", tool.Name())
	assert.Empty(t, tool.Description())
	assert.Equal(t, toolfn.DefaultOutputLabel, tool.OutputLabel())
	assert.Empty(t, tool.Parameters())
	assert.Empty(t, tool.Warnings())
}

type toolView struct {
	Name        string
	Description string
	OutputLabel string
	Parameters  []toolfn.Parameter
}

func viewOf(tool *toolfn.Tool) toolView {
	return toolView{
		Name:        tool.Name(),
		Description: tool.Description(),
		OutputLabel: tool.OutputLabel(),
		Parameters:  tool.Parameters(),
	}
}

func TestAnnotationOrderIndependence(t *testing.T) {
	annotations := []func(*toolfn.Tool) *toolfn.Tool{
		func(tool *toolfn.Tool) *toolfn.Tool { return tool.WithDescription("greets someone") },
		func(tool *toolfn.Tool) *toolfn.Tool { return tool.WithOutputLabel("greeting") },
		func(tool *toolfn.Tool) *toolfn.Tool {
			return tool.WithOptionalParameter("name", toolfn.TypeString, "who to greet")
		},
		func(tool *toolfn.Tool) *toolfn.Tool {
			return tool.WithParameter("informal", toolfn.TypeBool, "use informal language")
		},
	}

	base := toolfn.NewNamed("greet", greet)
	for _, apply := range annotations {
		base = apply(base)
	}

	// every application returns the same record, in any order
	orders := [][]int{
		{3, 2, 1, 0},
		{1, 3, 0, 2},
		{2, 0, 3, 1},
	}
	for _, order := range orders {
		tool := toolfn.NewNamed("greet", greet)
		for _, i := range order {
			got := annotations[i](tool)
			require.Same(t, tool, got)
		}
		assert.Empty(t, tool.Warnings())
		assert.Empty(t, cmp.Diff(viewOf(base), viewOf(tool)))
	}
}

func TestDescriptionConflict(t *testing.T) {
	tool := toolfn.NewNamed("greet", greet).
		WithDescription("first").
		WithDescription("second")

	assert.Equal(t, "second", tool.Description())
	warnings := tool.Warnings()
	require.Len(t, warnings, 1)
	assert.Equal(t, toolfn.FieldDescription, warnings[0].Field)
	assert.Equal(t, `greet: description: description is already set, the new value replaces it`, warnings[0].String())
}

func TestEmptyDescriptionNoConflict(t *testing.T) {
	tool := toolfn.NewNamed("greet", greet).
		WithDescription("").
		WithDescription("set after empty")

	assert.Equal(t, "set after empty", tool.Description())
	assert.Empty(t, tool.Warnings())
}

func TestOutputLabelConflict(t *testing.T) {
	tool := toolfn.NewNamed("greet", greet).
		WithOutputLabel("greeting").
		WithOutputLabel("salutation")

	assert.Equal(t, "salutation", tool.OutputLabel())
	warnings := tool.Warnings()
	require.Len(t, warnings, 1)
	assert.Equal(t, toolfn.FieldOutputLabel, warnings[0].Field)
}

func TestParameterConflict(t *testing.T) {
	tool := toolfn.NewNamed("greet", greet).
		WithParameter("x", toolfn.TypeInt, "first description").
		WithOptionalParameter("y", toolfn.TypeString, "other").
		WithOptionalParameter("x", toolfn.TypeInt, "second description")

	params := tool.Parameters()
	require.Len(t, params, 2)
	// replaced spec keeps its original position
	assert.Equal(t, "x", params[0].Name)
	assert.Equal(t, "second description", params[0].Spec.Description)
	assert.False(t, params[0].Spec.Required)
	assert.Equal(t, "y", params[1].Name)

	warnings := tool.Warnings()
	require.Len(t, warnings, 1)
	assert.Equal(t, toolfn.FieldParameter, warnings[0].Field)
	assert.Equal(t, "x", warnings[0].Parameter)
}

type capturedWarnings struct {
	list []toolfn.Warning
}

func (c *capturedWarnings) OnAnnotationConflict(w toolfn.Warning) {
	c.list = append(c.list, w)
}

func TestWarningSink(t *testing.T) {
	var sink capturedWarnings
	tool := toolfn.NewNamed("greet", greet).
		WithWarningSink(&sink).
		WithDescription("first").
		WithDescription("second")

	require.Len(t, sink.list, 1)
	assert.Equal(t, tool.Warnings(), sink.list)
}

func TestParameterOrder(t *testing.T) {
	tool := toolfn.NewNamed("multi", greet).
		WithParameter("c", toolfn.TypeString, "").
		WithParameter("a", toolfn.TypeInt, "").
		WithOptionalParameter("b", toolfn.TypeBool, "")

	var names []string
	for _, p := range tool.Parameters() {
		names = append(names, p.Name)
	}
	assert.Equal(t, []string{"c", "a", "b"}, names)
}

func TestSchemaType(t *testing.T) {
	tcases := []struct {
		typ toolfn.ParamType
		exp string
	}{
		{toolfn.TypeInt, "integer"},
		{toolfn.TypeFloat, "number"},
		{toolfn.TypeString, "string"},
		{toolfn.TypeBool, "boolean"},
		{toolfn.TypeDict, "object"},
		{toolfn.TypeList, "array"},
		{toolfn.TypeTuple, "array"},
		{toolfn.ParamType("datetime"), "string"},
		{toolfn.ParamType(""), "string"},
	}
	for _, tc := range tcases {
		assert.Equal(t, tc.exp, toolfn.SchemaType(tc.typ), "type: %s", tc.typ)
	}
}
