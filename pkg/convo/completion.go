package convo

// TokenUsage reports non-negative token counts for one completion.
// TotalTokens is PromptTokens+CompletionTokens unless a provider reports a
// different total directly (some providers include reasoning tokens).
type TokenUsage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// Completion is the canonical result of a provider call, whether it arrived
// whole or was reconstructed from streamed chunks.
type Completion struct {
	ID           string
	Created      int64
	Content      string
	ToolCalls    []ToolCall
	Model        string
	Usage        *TokenUsage
	FinishReason FinishReason
}

// FinishReason describes why generation stopped, mirrored across every
// provider's native finish-reason vocabulary.
type FinishReason string

const (
	FinishStop          FinishReason = "stop"
	FinishLength        FinishReason = "length"
	FinishToolCalls     FinishReason = "tool_calls"
	FinishContentFilter FinishReason = "content_filter"
	FinishError         FinishReason = "error"
)

// PartialToolCall is a tool call under construction while streaming: the
// provider may emit a call's name and then its arguments across several
// chunks, correlated by Index (OpenAI-style) or ID (Anthropic-style).
type PartialToolCall struct {
	Index         int
	ID            string
	Name          string
	ArgumentsJSON string // accumulated raw JSON text, concatenated chunk by chunk
}

// StreamedChunk is one increment of a streaming completion. Concatenating
// every chunk's Content across a stream, in order, must equal the final
// Completion's Content (§8 invariant 2); similarly folding ToolCall deltas
// by Index/ID must reconstruct the final Completion's ToolCalls.
type StreamedChunk struct {
	Content      string
	ToolCall     *PartialToolCall
	FinishReason FinishReason
	Usage        *TokenUsage
}

// ToolChoice constrains which tool(s) the model may call.
type ToolChoiceMode string

const (
	ToolChoiceAuto     ToolChoiceMode = "auto"
	ToolChoiceNone     ToolChoiceMode = "none"
	ToolChoiceRequired ToolChoiceMode = "required"
	ToolChoiceSpecific ToolChoiceMode = "specific"
)

type ToolChoice struct {
	Mode     ToolChoiceMode
	ToolName string // set when Mode == ToolChoiceSpecific
}

// CompletionOptions are the request-level knobs threaded through to every
// provider's request builder.
type CompletionOptions struct {
	Temperature     *float64
	TopP            *float64
	MaxTokens       *int
	Tools           []ToolDefinition
	ToolChoice      *ToolChoice
	StopSequences   []string
	ReasoningEffort string
}

// ToolDefinition is the provider-facing view of a registered tool: enough
// to emit a JSON Schema without depending on the tool registry's execution
// machinery. pkg/agent's toolDefinitions builds these from a tool.Source.
type ToolDefinition struct {
	Name        string
	Description string
	Schema      any // the rendered JSON Schema map from the tool's ToJSONSchema; any here avoids an import cycle
	Strict      bool
}
