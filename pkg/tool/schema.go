// Package tool implements the C4 tool schema and registry: typed parameter
// schemas, JSON Schema emission per provider dialect, and safe argument
// extraction/validation ahead of invoking a handler. Grounded on the
// teacher's pkg/provider/types/tool.go (Tool/ToolCall/ToolChoice shapes) and
// pkg/providerutils/tool/converter.go (per-provider JSON Schema emission),
// generalized from an untyped interface{} schema to a typed tagged union.
package tool

import "regexp"

// namePattern is the tool-name grammar: ^[A-Za-z_][A-Za-z0-9_]*$.
var namePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ValidName reports whether name is a legal tool name.
func ValidName(name string) bool {
	return namePattern.MatchString(name)
}

// SchemaKind tags the variant of a ParameterSchema.
type SchemaKind string

const (
	KindString  SchemaKind = "string"
	KindNumber  SchemaKind = "number"
	KindInteger SchemaKind = "integer"
	KindBoolean SchemaKind = "boolean"
	KindArray   SchemaKind = "array"
	KindObject  SchemaKind = "object"
	KindEnum    SchemaKind = "enum"

	// KindRaw carries a pre-rendered JSON Schema map verbatim, for schemas
	// sourced from a system this module doesn't own the shape of (an MCP
	// server's tools/list response, for instance) where reconstructing a
	// faithful tagged union isn't worthwhile.
	KindRaw SchemaKind = "raw"
)

// ParameterSchema is a tagged union over String|Number|Integer|Boolean|
// Array<T>|Object{properties,required}|Enum<T>|Raw. Only the fields relevant
// to Kind are meaningful; the zero value has an empty Kind, renders with no
// "type", and is not type-checked by Execute.
type ParameterSchema struct {
	Kind SchemaKind

	Description string

	// Array: Items describes the element schema.
	Items *ParameterSchema

	// Object: Properties maps property name to schema; Required lists the
	// property names that must appear in a call's arguments.
	Properties map[string]ParameterSchema
	Required   []string

	// Enum: EnumValues lists the allowed literal values; EnumType names the
	// underlying JSON type ("string", "integer", ...) for schema emission.
	EnumValues []any
	EnumType   string

	// Raw: RawSchema is emitted as-is by ToJSONSchema.
	RawSchema map[string]any
}

func String(description string) ParameterSchema {
	return ParameterSchema{Kind: KindString, Description: description}
}

func Number(description string) ParameterSchema {
	return ParameterSchema{Kind: KindNumber, Description: description}
}

func Integer(description string) ParameterSchema {
	return ParameterSchema{Kind: KindInteger, Description: description}
}

func Boolean(description string) ParameterSchema {
	return ParameterSchema{Kind: KindBoolean, Description: description}
}

func Array(items ParameterSchema, description string) ParameterSchema {
	return ParameterSchema{Kind: KindArray, Items: &items, Description: description}
}

func Object(properties map[string]ParameterSchema, required []string, description string) ParameterSchema {
	return ParameterSchema{
		Kind:        KindObject,
		Properties:  properties,
		Required:    required,
		Description: description,
	}
}

func Enum(enumType string, values []any, description string) ParameterSchema {
	return ParameterSchema{Kind: KindEnum, EnumType: enumType, EnumValues: values, Description: description}
}

// Raw wraps a pre-rendered JSON Schema map so it can flow through the
// registry and ToJSONSchema unchanged.
func Raw(schema map[string]any, description string) ParameterSchema {
	return ParameterSchema{Kind: KindRaw, RawSchema: schema, Description: description}
}

// ToJSONSchema renders a ParameterSchema to a provider-agnostic JSON Schema
// map. In strict mode, Object schemas set additionalProperties:false and
// list every property (including non-required ones) in required, per the
// OpenAI strict-mode convention of required-but-optional nulls.
func (s ParameterSchema) ToJSONSchema(strict bool) map[string]any {
	out := map[string]any{}
	if s.Description != "" {
		out["description"] = s.Description
	}

	switch s.Kind {
	case KindString:
		out["type"] = "string"
	case KindNumber:
		out["type"] = "number"
	case KindInteger:
		out["type"] = "integer"
	case KindBoolean:
		out["type"] = "boolean"
	case KindArray:
		out["type"] = "array"
		if s.Items != nil {
			out["items"] = s.Items.ToJSONSchema(strict)
		}
	case KindEnum:
		if s.EnumType != "" {
			out["type"] = s.EnumType
		}
		out["enum"] = s.EnumValues
	case KindObject:
		out["type"] = "object"
		props := make(map[string]any, len(s.Properties))
		for name, prop := range s.Properties {
			props[name] = prop.ToJSONSchema(strict)
		}
		out["properties"] = props

		if strict {
			required := make([]string, 0, len(s.Properties))
			for name := range s.Properties {
				required = append(required, name)
			}
			out["required"] = required
			out["additionalProperties"] = false
		} else {
			out["required"] = s.Required
		}
	case KindRaw:
		for k, v := range s.RawSchema {
			out[k] = v
		}
	}
	return out
}

// HasRequiredProperties reports whether an Object schema, or a Raw schema's
// "required" list, declares at least one required property; other kinds
// report false.
func (s ParameterSchema) HasRequiredProperties() bool {
	if s.Kind == KindObject {
		return len(s.Required) > 0
	}
	if s.Kind == KindRaw {
		if req, ok := s.RawSchema["required"].([]any); ok {
			return len(req) > 0
		}
		if req, ok := s.RawSchema["required"].([]string); ok {
			return len(req) > 0
		}
	}
	return false
}
