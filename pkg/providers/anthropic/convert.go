package anthropic

import (
	"encoding/json"
	"fmt"

	"github.com/loomware/agentcore/internal/httpx"
	"github.com/loomware/agentcore/pkg/convo"
)

// contentBlock is one block of an Anthropic message's "content" array:
// text, tool_use (a model-issued call), or tool_result (a call's output).
type contentBlock struct {
	Type      string `json:"type"`
	Text      string `json:"text,omitempty"`
	ID        string `json:"id,omitempty"`
	Name      string `json:"name,omitempty"`
	Input     any    `json:"input,omitempty"`
	ToolUseID string `json:"tool_use_id,omitempty"`
	Content   string `json:"content,omitempty"`
}

type anthropicMessage struct {
	Role    string         `json:"role"`
	Content []contentBlock `json:"content"`
}

type anthropicTool struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	InputSchema map[string]any `json:"input_schema,omitempty"`
}

func buildRequestBody(modelID string, conv convo.Conversation, opts convo.CompletionOptions, stream bool) map[string]any {
	maxTokens := defaultMaxTokens
	if opts.MaxTokens != nil {
		maxTokens = *opts.MaxTokens
	}

	body := map[string]any{
		"model":      modelID,
		"max_tokens": maxTokens,
		"messages":   buildMessages(conv),
		"stream":     stream,
	}
	if system := extractSystem(conv); system != "" {
		body["system"] = system
	}
	if opts.Temperature != nil {
		body["temperature"] = *opts.Temperature
	}
	if opts.TopP != nil {
		body["top_p"] = *opts.TopP
	}
	if len(opts.StopSequences) > 0 {
		body["stop_sequences"] = opts.StopSequences
	}
	if len(opts.Tools) > 0 {
		body["tools"] = buildTools(opts.Tools)
	}
	if opts.ToolChoice != nil {
		body["tool_choice"] = buildToolChoice(*opts.ToolChoice)
	}
	return body
}

// extractSystem concatenates every SystemMessage's text, since Anthropic
// takes system instructions as a single top-level field rather than as
// messages in the conversation array.
func extractSystem(conv convo.Conversation) string {
	var system string
	for _, msg := range conv.Messages {
		if sm, ok := msg.(convo.SystemMessage); ok {
			if system != "" {
				system += "\n\n"
			}
			system += sm.Content
		}
	}
	return system
}

func buildMessages(conv convo.Conversation) []anthropicMessage {
	out := make([]anthropicMessage, 0, len(conv.Messages))
	for _, msg := range conv.Messages {
		switch m := msg.(type) {
		case convo.SystemMessage:
			continue
		case convo.UserMessage:
			out = append(out, anthropicMessage{Role: "user", Content: []contentBlock{{Type: "text", Text: m.Content}}})
		case convo.AssistantMessage:
			var blocks []contentBlock
			if m.Content != "" {
				blocks = append(blocks, contentBlock{Type: "text", Text: m.Content})
			}
			for _, tc := range m.ToolCalls {
				blocks = append(blocks, contentBlock{Type: "tool_use", ID: tc.ID, Name: tc.Name, Input: tc.Arguments})
			}
			out = append(out, anthropicMessage{Role: "assistant", Content: blocks})
		case convo.ToolMessage:
			out = append(out, anthropicMessage{Role: "user", Content: []contentBlock{
				{Type: "tool_result", ToolUseID: m.ToolCallID, Content: m.Content},
			}})
		}
	}
	return out
}

func buildTools(defs []convo.ToolDefinition) []anthropicTool {
	out := make([]anthropicTool, 0, len(defs))
	for _, d := range defs {
		schema, _ := d.Schema.(map[string]any)
		out = append(out, anthropicTool{Name: d.Name, Description: d.Description, InputSchema: schema})
	}
	return out
}

func buildToolChoice(choice convo.ToolChoice) any {
	switch choice.Mode {
	case convo.ToolChoiceNone:
		return map[string]any{"type": "none"}
	case convo.ToolChoiceRequired:
		return map[string]any{"type": "any"}
	case convo.ToolChoiceSpecific:
		return map[string]any{"type": "tool", "name": choice.ToolName}
	default:
		return map[string]any{"type": "auto"}
	}
}

type completionResponse struct {
	ID         string         `json:"id"`
	Model      string         `json:"model"`
	Content    []contentBlock `json:"content"`
	StopReason string         `json:"stop_reason"`
	Usage      struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

func parseCompletionResponse(body []byte) (convo.Completion, error) {
	var resp completionResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return convo.Completion{}, fmt.Errorf("decode completion response: %w", err)
	}

	completion := convo.Completion{
		ID:           resp.ID,
		Model:        resp.Model,
		FinishReason: mapStopReason(resp.StopReason),
	}
	for _, block := range resp.Content {
		switch block.Type {
		case "text":
			completion.Content += block.Text
		case "tool_use":
			completion.ToolCalls = append(completion.ToolCalls, convo.ToolCall{
				ID:        block.ID,
				Name:      block.Name,
				Arguments: block.Input,
			})
		}
	}
	completion.Usage = &convo.TokenUsage{
		PromptTokens:     resp.Usage.InputTokens,
		CompletionTokens: resp.Usage.OutputTokens,
		TotalTokens:      resp.Usage.InputTokens + resp.Usage.OutputTokens,
	}
	return completion, nil
}

func mapStopReason(reason string) convo.FinishReason {
	switch reason {
	case "end_turn", "stop_sequence":
		return convo.FinishStop
	case "max_tokens":
		return convo.FinishLength
	case "tool_use":
		return convo.FinishToolCalls
	case "":
		return ""
	default:
		return convo.FinishError
	}
}

// streamDecoder accumulates Anthropic's multi-event-type SSE stream
// (message_start/content_block_start/content_block_delta/
// content_block_stop/message_delta/message_stop) into StreamedChunks,
// correlating tool_use blocks by their content-block index.
type streamDecoder struct {
	chunks      []convo.StreamedChunk
	blockIndex  map[int]*convo.ToolCall
	blockKind   map[int]string
}

func newStreamDecoder() *streamDecoder {
	return &streamDecoder{
		blockIndex: make(map[int]*convo.ToolCall),
		blockKind:  make(map[int]string),
	}
}

type streamEvent struct {
	Type         string `json:"type"`
	Index        int    `json:"index"`
	ContentBlock *struct {
		Type string `json:"type"`
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"content_block"`
	Delta *struct {
		Type        string `json:"type"`
		Text        string `json:"text"`
		PartialJSON string `json:"partial_json"`
		StopReason  string `json:"stop_reason"`
	} `json:"delta"`
	Usage *struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

// decode turns one SSE event into a StreamedChunk. ok is false for events
// that carry no chunk-worthy content (message_start, content_block_stop,
// message_stop, ping).
func (d *streamDecoder) decode(event *httpx.SSEEvent) (convo.StreamedChunk, bool, error) {
	if event.Data == "" {
		return convo.StreamedChunk{}, false, nil
	}

	var evt streamEvent
	if err := json.Unmarshal([]byte(event.Data), &evt); err != nil {
		return convo.StreamedChunk{}, false, fmt.Errorf("decode stream event: %w", err)
	}

	switch evt.Type {
	case "content_block_start":
		if evt.ContentBlock != nil && evt.ContentBlock.Type == "tool_use" {
			d.blockKind[evt.Index] = "tool_use"
			d.blockIndex[evt.Index] = &convo.ToolCall{ID: evt.ContentBlock.ID, Name: evt.ContentBlock.Name}
		}
		return convo.StreamedChunk{}, false, nil

	case "content_block_delta":
		if evt.Delta == nil {
			return convo.StreamedChunk{}, false, nil
		}
		switch evt.Delta.Type {
		case "text_delta":
			return convo.StreamedChunk{Content: evt.Delta.Text}, true, nil
		case "input_json_delta":
			tc := d.blockIndex[evt.Index]
			name := ""
			id := ""
			if tc != nil {
				name = tc.Name
				id = tc.ID
			}
			return convo.StreamedChunk{ToolCall: &convo.PartialToolCall{
				Index:         evt.Index,
				ID:            id,
				Name:          name,
				ArgumentsJSON: evt.Delta.PartialJSON,
			}}, true, nil
		}
		return convo.StreamedChunk{}, false, nil

	case "message_delta":
		chunk := convo.StreamedChunk{}
		if evt.Delta != nil && evt.Delta.StopReason != "" {
			chunk.FinishReason = mapStopReason(evt.Delta.StopReason)
		}
		if evt.Usage != nil {
			chunk.Usage = &convo.TokenUsage{
				CompletionTokens: evt.Usage.OutputTokens,
				TotalTokens:      evt.Usage.OutputTokens,
			}
		}
		if chunk.FinishReason == "" && chunk.Usage == nil {
			return convo.StreamedChunk{}, false, nil
		}
		return chunk, true, nil

	default:
		return convo.StreamedChunk{}, false, nil
	}
}
