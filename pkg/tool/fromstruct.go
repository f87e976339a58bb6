package tool

import (
	"encoding/json"

	invschema "github.com/invopop/jsonschema"
)

// FromStruct generates a Definition's raw JSON Schema from a Go struct's
// field tags (json/jsonschema), for callers that would rather describe a
// tool's parameters as a typed struct than build a ParameterSchema by hand.
// The result is provider-ready but bypasses ParameterSchema entirely, so
// Execute's structural validator cannot check arguments built this way;
// callers wanting validation should pair this with CrossValidate.
func FromStruct(v any) map[string]any {
	reflector := &invschema.Reflector{
		DoNotReference: true,
		ExpandedStruct: true,
	}
	schema := reflector.Reflect(v)

	raw, err := schema.MarshalJSON()
	if err != nil {
		return map[string]any{}
	}

	var out map[string]any
	if unmarshalErr := json.Unmarshal(raw, &out); unmarshalErr != nil {
		return map[string]any{}
	}
	return out
}
