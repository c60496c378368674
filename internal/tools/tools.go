// Package tools defines the callable capabilities exposed to the
// reasoning backend. Tools are registered programmatically as explicit
// descriptor values; the backend decides when to invoke them.
package tools

import (
	"context"
	"encoding/json"
)

// Parameter describes one typed argument of a tool.
type Parameter struct {
	Name        string
	Type        string // JSON schema type: "integer", "string", ...
	Description string
	Required    bool
}

// Descriptor is a named, described, typed capability plus its handler.
// The handler receives the provider-supplied arguments as raw JSON and
// returns the textual result fed back into the round-trip.
type Descriptor struct {
	Name        string
	Description string
	Parameters  []Parameter
	Handler     func(ctx context.Context, args json.RawMessage) (string, error)
}

// InputSchema renders the parameters as a JSON-schema object for the
// provider wire formats.
func (d Descriptor) InputSchema() map[string]any {
	props := make(map[string]any, len(d.Parameters))
	var required []string
	for _, p := range d.Parameters {
		props[p.Name] = map[string]any{
			"type":        p.Type,
			"description": p.Description,
		}
		if p.Required {
			required = append(required, p.Name)
		}
	}
	schema := map[string]any{
		"type":       "object",
		"properties": props,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}
