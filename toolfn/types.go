package toolfn

// ParamType is the canonical source-type label of a tool parameter.
// The label is advertised verbatim in structured-parameter definitions
// and mapped to a JSON Schema type in function definitions.
type ParamType string

// Well-known parameter type labels.
const (
	TypeInt    ParamType = "int"
	TypeFloat  ParamType = "float"
	TypeString ParamType = "str"
	TypeBool   ParamType = "bool"
	TypeDict   ParamType = "dict"
	TypeList   ParamType = "list"
	TypeTuple  ParamType = "tuple"
)

var schemaTypes = map[ParamType]string{
	TypeInt:    "integer",
	TypeFloat:  "number",
	TypeString: "string",
	TypeBool:   "boolean",
	TypeDict:   "object",
	TypeList:   "array",
	TypeTuple:  "array",
}

// SchemaType returns the JSON Schema type for a parameter type label.
// Unknown labels default to "string".
func SchemaType(t ParamType) string {
	if st, ok := schemaTypes[t]; ok {
		return st
	}
	return "string"
}

// ParameterSpec describes a single tool parameter.
type ParameterSpec struct {
	Type        ParamType `json:"type" yaml:"type"`
	Description string    `json:"description,omitempty" yaml:"description,omitempty"`
	Required    bool      `json:"required" yaml:"required"`
}

// Parameter is a named ParameterSpec, returned in declaration order.
type Parameter struct {
	Name string
	Spec ParameterSpec
}
