// Package prompts renders tool instruction blocks for system prompts,
// in either go-template or jinja2 flavor.
package prompts

import (
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"github.com/cockroachdb/errors"
	"github.com/effective-security/gentools/toolfn"
	"github.com/nikolalohinski/gonja"
)

// TemplateFormat selects the template syntax.
type TemplateFormat string

const (
	// FormatGoTemplate renders with text/template and the sprig
	// function map.
	FormatGoTemplate TemplateFormat = "go-template"
	// FormatJinja2 renders with jinja2 syntax.
	FormatJinja2 TemplateFormat = "jinja2"
)

// DefaultToolTemplate renders a tool list section for a system prompt.
const DefaultToolTemplate = `You have access to the following tools:
{{ range .Tools }}- {{ .Name }}: {{ .Description }}
{{ end }}`

// Render executes the template with the given data.
func Render(format TemplateFormat, tmpl string, data map[string]any) (string, error) {
	switch format {
	case FormatGoTemplate, "":
		t, err := template.New("prompt").Funcs(sprig.TxtFuncMap()).Parse(tmpl)
		if err != nil {
			return "", errors.Wrap(err, "failed to parse template")
		}
		var b strings.Builder
		if err := t.Execute(&b, data); err != nil {
			return "", errors.Wrap(err, "failed to render template")
		}
		return b.String(), nil
	case FormatJinja2:
		t, err := gonja.FromString(tmpl)
		if err != nil {
			return "", errors.Wrap(err, "failed to parse template")
		}
		out, err := t.Execute(gonja.Context(data))
		if err != nil {
			return "", errors.Wrap(err, "failed to render template")
		}
		return out, nil
	default:
		return "", errors.Newf("unsupported template format: %s", format)
	}
}

// ToolsData builds the template view of the given tools.
func ToolsData(tools ...*toolfn.Tool) map[string]any {
	list := make([]map[string]any, 0, len(tools))
	for _, t := range tools {
		params := make([]map[string]any, 0, len(t.Parameters()))
		for _, p := range t.Parameters() {
			params = append(params, map[string]any{
				"Name":        p.Name,
				"Type":        string(p.Spec.Type),
				"Description": p.Spec.Description,
				"Required":    p.Spec.Required,
			})
		}
		list = append(list, map[string]any{
			"Name":        t.Name(),
			"Description": t.Description(),
			"OutputLabel": t.OutputLabel(),
			"Parameters":  params,
		})
	}
	return map[string]any{"Tools": list}
}
