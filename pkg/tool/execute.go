package tool

import (
	"context"
	"fmt"

	"github.com/loomware/agentcore/pkg/aierrors"
	"github.com/loomware/agentcore/pkg/convo"
)

// Request is one ToolRegistry.execute call: the function name and its raw
// JSON-decoded arguments (nil, or a map[string]any after json.Unmarshal).
type Request struct {
	FunctionName string
	Arguments    any
}

// Result is the structured value returned by a successful execution, ready
// to be rendered to JSON for the resulting ToolMessage.
type Result struct {
	ToolName    string
	Value       any
	Annotations []convo.ResourceContentBlock
}

// Annotated lets a Handler attach structured resource annotations to its
// return value. An MCP-backed tool's handler returns one of these so the
// resource content blocks an MCP server folds into a CallTool result ride
// alongside the plain text Value through to the resulting ToolMessage.
type Annotated interface {
	ToolValue() any
	ToolAnnotations() []convo.ResourceContentBlock
}

// Execute implements ToolRegistry.execute: resolve the tool, validate
// arguments against its schema, invoke its handler, and wrap any failure in
// the appropriate aierrors.Error.
func Execute(ctx context.Context, source Source, req Request) (Result, *aierrors.Error) {
	def, ok := source.Get(req.FunctionName)
	if !ok {
		return Result{}, aierrors.NewUnknownFunction(req.FunctionName)
	}

	args, aerr := coerceArguments(def, req.Arguments)
	if aerr != nil {
		return Result{}, aerr
	}

	if aerr := validate(def.Schema, args, ""); aerr != nil {
		return Result{}, aerr
	}

	value, err := invoke(ctx, def, args)
	if err != nil {
		return Result{}, aierrors.NewToolExecution(def.Name, "", err.Error(), err)
	}

	if annotated, ok := value.(Annotated); ok {
		return Result{ToolName: def.Name, Value: annotated.ToolValue(), Annotations: annotated.ToolAnnotations()}, nil
	}
	return Result{ToolName: def.Name, Value: value}, nil
}

// coerceArguments implements the null-argument rule: a schema with no
// required properties accepts a null argument as an empty object; any other
// schema rejects null arguments outright.
func coerceArguments(def Definition, arguments any) (map[string]any, *aierrors.Error) {
	if arguments == nil {
		if !def.Schema.HasRequiredProperties() {
			return map[string]any{}, nil
		}
		return nil, aierrors.NewValidation("arguments",
			fmt.Sprintf("tool '%s' received null arguments; expected an object", def.Name))
	}

	m, ok := arguments.(map[string]any)
	if !ok {
		return nil, aierrors.NewValidation("arguments",
			fmt.Sprintf("tool '%s' received non-object arguments; expected an object", def.Name))
	}
	return m, nil
}

// invoke recovers a panicking handler into a plain error, mirroring a
// caught-exception path in a language with unchecked exceptions.
func invoke(ctx context.Context, def Definition, args map[string]any) (value any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("tool handler panicked: %v", r)
		}
	}()
	return def.Handler(ctx, args)
}

// validate checks arguments against an Object ParameterSchema: every
// required property must be present, and every present property's JSON
// type must match its schema.
func validate(schema ParameterSchema, arguments map[string]any, pathPrefix string) *aierrors.Error {
	if schema.Kind != KindObject {
		return nil
	}

	for _, required := range schema.Required {
		if _, present := arguments[required]; !present {
			return aierrors.NewValidation(pathPrefix+required,
				fmt.Sprintf("missing required field '%s'", required))
		}
	}

	for name, propSchema := range schema.Properties {
		value, present := arguments[name]
		if !present {
			continue
		}
		if aerr := checkType(propSchema, value, name); aerr != nil {
			return aerr
		}
	}
	return nil
}

// checkType reports a type-mismatch aierrors.Error if value's JSON-decoded
// Go type does not match schema.Kind.
func checkType(schema ParameterSchema, value any, fieldName string) *aierrors.Error {
	mismatch := func(expected string) *aierrors.Error {
		return aierrors.NewValidation(fieldName, fmt.Sprintf("field '%s' expected %s", fieldName, expected))
	}

	switch schema.Kind {
	case KindString:
		if _, ok := value.(string); !ok {
			return mismatch("string")
		}
	case KindNumber:
		if _, ok := value.(float64); !ok {
			if _, ok := value.(int); !ok {
				return mismatch("number")
			}
		}
	case KindInteger:
		switch v := value.(type) {
		case float64:
			if v != float64(int64(v)) {
				return mismatch("integer")
			}
		case int, int64:
			// already integral
		default:
			return mismatch("integer")
		}
	case KindBoolean:
		if _, ok := value.(bool); !ok {
			return mismatch("boolean")
		}
	case KindArray:
		items, ok := value.([]any)
		if !ok {
			return mismatch("array")
		}
		if schema.Items != nil {
			for i, item := range items {
				if aerr := checkType(*schema.Items, item, fmt.Sprintf("%s[%d]", fieldName, i)); aerr != nil {
					return aerr
				}
			}
		}
	case KindObject:
		obj, ok := value.(map[string]any)
		if !ok {
			return mismatch("object")
		}
		return validate(schema, obj, fieldName+".")
	case KindEnum:
		for _, allowed := range schema.EnumValues {
			if allowed == value {
				return nil
			}
		}
		return mismatch(fmt.Sprintf("one of %v", schema.EnumValues))
	}
	return nil
}
