package tool

import (
	"bytes"
	"encoding/json"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/loomware/agentcore/pkg/aierrors"
)

// CrossValidate re-checks arguments against the emitted JSON Schema using a
// standards-conformant compiler, as a second check alongside the hand-rolled
// structural validator in execute.go. Useful when a Definition's schema was
// authored by hand and may not exactly match what Validate enforces.
func CrossValidate(schema ParameterSchema, arguments map[string]any) *aierrors.Error {
	rendered := schema.ToJSONSchema(false)

	raw, err := json.Marshal(rendered)
	if err != nil {
		return aierrors.NewValidation("", "failed to marshal schema for cross-validation: "+err.Error())
	}

	compiler := jsonschema.NewCompiler()
	resource, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return aierrors.NewValidation("", "failed to parse rendered schema: "+err.Error())
	}
	if err := compiler.AddResource("tool-schema.json", resource); err != nil {
		return aierrors.NewValidation("", "failed to register schema resource: "+err.Error())
	}

	compiled, err := compiler.Compile("tool-schema.json")
	if err != nil {
		return aierrors.NewValidation("", "failed to compile schema: "+err.Error())
	}

	if err := compiled.Validate(map[string]any(arguments)); err != nil {
		return aierrors.NewValidation("", "schema cross-validation failed: "+err.Error())
	}
	return nil
}
