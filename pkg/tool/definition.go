package tool

import "context"

// Handler executes a tool given its parsed arguments. Implementations must
// be pure/thread-safe when registered under a parallel execution strategy;
// the registry documents this requirement but does not enforce it.
type Handler func(ctx context.Context, arguments map[string]any) (any, error)

// Definition is a registrable tool: name (unique in a Registry), human
// description, its ParameterSchema, and the Handler invoked on execute.
type Definition struct {
	Name        string
	Description string
	Schema      ParameterSchema
	Handler     Handler

	// Strict enables OpenAI-style strict schema emission for this tool.
	Strict bool

	// InputExamples optionally guides the model with example arguments, kept
	// from the teacher's Tool.InputExamples field as advisory metadata that
	// does not change schema emission semantics.
	InputExamples []InputExample
}

// InputExample is one example invocation shown to the model as guidance.
type InputExample struct {
	Arguments   map[string]any
	Description string
}

// ToOpenAIFormat renders a Definition to OpenAI's function-tool wire shape.
func (d Definition) ToOpenAIFormat() map[string]any {
	fn := map[string]any{
		"name":        d.Name,
		"description": d.Description,
		"parameters":  d.Schema.ToJSONSchema(d.Strict),
	}
	if d.Strict {
		fn["strict"] = true
	}
	return map[string]any{"type": "function", "function": fn}
}

// ToAnthropicFormat renders a Definition to Anthropic's tool wire shape.
func (d Definition) ToAnthropicFormat() map[string]any {
	return map[string]any{
		"name":         d.Name,
		"description":  d.Description,
		"input_schema": d.Schema.ToJSONSchema(d.Strict),
	}
}

// ToGoogleFormat renders a Definition to Google's function-declaration shape.
func (d Definition) ToGoogleFormat() map[string]any {
	return map[string]any{
		"name":        d.Name,
		"description": d.Description,
		"parameters":  d.Schema.ToJSONSchema(false),
	}
}
