package openrouter

import (
	"encoding/json"
	"fmt"

	"github.com/loomware/agentcore/pkg/convo"
)

// chatMessage mirrors OpenAI's chat completion dialect, which OpenRouter
// serves unchanged regardless of which upstream model handles the request.
type chatMessage struct {
	Role       string         `json:"role"`
	Content    *string        `json:"content"`
	ToolCalls  []chatToolCall `json:"tool_calls,omitempty"`
	ToolCallID string         `json:"tool_call_id,omitempty"`
}

type chatToolCall struct {
	ID       string           `json:"id"`
	Type     string           `json:"type"`
	Function chatToolCallFunc `json:"function"`
}

type chatToolCallFunc struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

type chatTool struct {
	Type     string       `json:"type"`
	Function chatFunction `json:"function"`
}

type chatFunction struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Parameters  map[string]any `json:"parameters,omitempty"`
}

func buildRequestBody(modelID string, conv convo.Conversation, opts convo.CompletionOptions, stream bool) map[string]any {
	body := map[string]any{
		"model":    modelID,
		"messages": buildMessages(conv),
		"stream":   stream,
	}
	if opts.Temperature != nil {
		body["temperature"] = *opts.Temperature
	}
	if opts.TopP != nil {
		body["top_p"] = *opts.TopP
	}
	if opts.MaxTokens != nil {
		body["max_tokens"] = *opts.MaxTokens
	}
	if len(opts.StopSequences) > 0 {
		body["stop"] = opts.StopSequences
	}
	if len(opts.Tools) > 0 {
		body["tools"] = buildTools(opts.Tools)
	}
	return body
}

func buildMessages(conv convo.Conversation) []chatMessage {
	out := make([]chatMessage, 0, len(conv.Messages))
	for _, msg := range conv.Messages {
		switch m := msg.(type) {
		case convo.SystemMessage:
			content := m.Content
			out = append(out, chatMessage{Role: "system", Content: &content})
		case convo.UserMessage:
			content := m.Content
			out = append(out, chatMessage{Role: "user", Content: &content})
		case convo.AssistantMessage:
			cm := chatMessage{Role: "assistant"}
			if m.Content != "" {
				content := m.Content
				cm.Content = &content
			}
			for _, tc := range m.ToolCalls {
				cm.ToolCalls = append(cm.ToolCalls, chatToolCall{
					ID:   tc.ID,
					Type: "function",
					Function: chatToolCallFunc{
						Name:      tc.Name,
						Arguments: argumentsToJSON(tc.Arguments),
					},
				})
			}
			out = append(out, cm)
		case convo.ToolMessage:
			content := m.Content
			out = append(out, chatMessage{Role: "tool", Content: &content, ToolCallID: m.ToolCallID})
		}
	}
	return out
}

func argumentsToJSON(args any) string {
	switch v := args.(type) {
	case string:
		return v
	case nil:
		return "{}"
	default:
		raw, err := json.Marshal(v)
		if err != nil {
			return "{}"
		}
		return string(raw)
	}
}

func buildTools(defs []convo.ToolDefinition) []chatTool {
	out := make([]chatTool, 0, len(defs))
	for _, d := range defs {
		params, _ := d.Schema.(map[string]any)
		out = append(out, chatTool{Type: "function", Function: chatFunction{Name: d.Name, Description: d.Description, Parameters: params}})
	}
	return out
}

type completionResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Message      chatMessage `json:"message"`
		FinishReason string      `json:"finish_reason"`
	} `json:"choices"`
	Usage *struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

func parseCompletionResponse(body []byte) (convo.Completion, error) {
	var resp completionResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return convo.Completion{}, fmt.Errorf("decode completion response: %w", err)
	}
	if len(resp.Choices) == 0 {
		return convo.Completion{}, fmt.Errorf("completion response carries no choices")
	}
	choice := resp.Choices[0]

	completion := convo.Completion{
		ID:           resp.ID,
		Model:        resp.Model,
		FinishReason: mapFinishReason(choice.FinishReason),
	}
	if choice.Message.Content != nil {
		completion.Content = *choice.Message.Content
	}
	for _, tc := range choice.Message.ToolCalls {
		completion.ToolCalls = append(completion.ToolCalls, convo.ToolCall{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: tc.Function.Arguments,
		})
	}
	if resp.Usage != nil {
		completion.Usage = &convo.TokenUsage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		}
	}
	return completion, nil
}

func mapFinishReason(reason string) convo.FinishReason {
	switch reason {
	case "stop":
		return convo.FinishStop
	case "length":
		return convo.FinishLength
	case "tool_calls":
		return convo.FinishToolCalls
	case "content_filter":
		return convo.FinishContentFilter
	case "":
		return ""
	default:
		return convo.FinishError
	}
}

type streamChunk struct {
	Choices []struct {
		Delta struct {
			Content   *string `json:"content"`
			ToolCalls []struct {
				Index    int    `json:"index"`
				ID       string `json:"id"`
				Function struct {
					Name      string `json:"name"`
					Arguments string `json:"arguments"`
				} `json:"function"`
			} `json:"tool_calls"`
		} `json:"delta"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage *struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

func parseStreamChunk(data string) (convo.StreamedChunk, bool, error) {
	var raw streamChunk
	if err := json.Unmarshal([]byte(data), &raw); err != nil {
		return convo.StreamedChunk{}, false, fmt.Errorf("decode stream chunk: %w", err)
	}

	chunk := convo.StreamedChunk{}
	if raw.Usage != nil {
		chunk.Usage = &convo.TokenUsage{
			PromptTokens:     raw.Usage.PromptTokens,
			CompletionTokens: raw.Usage.CompletionTokens,
			TotalTokens:      raw.Usage.TotalTokens,
		}
	}
	if len(raw.Choices) == 0 {
		if chunk.Usage == nil {
			return convo.StreamedChunk{}, false, nil
		}
		return chunk, true, nil
	}

	choice := raw.Choices[0]
	if choice.Delta.Content != nil {
		chunk.Content = *choice.Delta.Content
	}
	if choice.FinishReason != "" {
		chunk.FinishReason = mapFinishReason(choice.FinishReason)
	}
	if len(choice.Delta.ToolCalls) > 0 {
		tc := choice.Delta.ToolCalls[0]
		chunk.ToolCall = &convo.PartialToolCall{
			Index:         tc.Index,
			ID:            tc.ID,
			Name:          tc.Function.Name,
			ArgumentsJSON: tc.Function.Arguments,
		}
	}
	return chunk, true, nil
}
