package tools

import (
	"github.com/invopop/jsonschema"
)

// Declaration is the wire form of a tool schema sent in session
// configuration.
type Declaration struct {
	Type        string             `json:"type"`
	Name        string             `json:"name"`
	Description string             `json:"description,omitempty"`
	Parameters  *jsonschema.Schema `json:"parameters"`
}

// Declaration builds the wire schema for this tool.
func (t Tool) Declaration() Declaration {
	return Declaration{
		Type:        "function",
		Name:        t.Name,
		Description: t.Description,
		Parameters:  t.parameterSchema(),
	}
}

// Declarations builds wire schemas for every registered tool.
func (r *Registry) Declarations() []Declaration {
	declarations := make([]Declaration, 0, len(r.tools))
	for _, tool := range r.tools {
		declarations = append(declarations, tool.Declaration())
	}
	return declarations
}

func (t Tool) parameterSchema() *jsonschema.Schema {
	if t.reflected != nil {
		reflector := jsonschema.Reflector{DoNotReference: true, ExpandedStruct: true}
		return reflector.Reflect(t.reflected)
	}

	schema := &jsonschema.Schema{
		Type:       "object",
		Properties: jsonschema.NewProperties(),
		Required:   t.required,
	}
	for name, parameter := range t.parameters {
		property := &jsonschema.Schema{
			Type:        parameter.Type,
			Description: parameter.Description,
		}
		for _, value := range parameter.Enum {
			property.Enum = append(property.Enum, value)
		}
		schema.Properties.Set(name, property)
	}
	return schema
}
