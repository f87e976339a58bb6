package google

import (
	"encoding/json"
	"fmt"

	"github.com/loomware/agentcore/pkg/convo"
)

// geminiContent is one turn in a Gemini conversation: Gemini uses "model"
// rather than "assistant" for the generated-by-the-model role, and has no
// separate tool role — tool results are a "user"-role functionResponse
// part.
type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text         string              `json:"text,omitempty"`
	FunctionCall *geminiFunctionCall `json:"functionCall,omitempty"`
	FunctionResp *geminiFunctionResp `json:"functionResponse,omitempty"`
}

type geminiFunctionCall struct {
	Name string `json:"name"`
	Args any    `json:"args,omitempty"`
}

type geminiFunctionResp struct {
	Name     string `json:"name"`
	Response any    `json:"response"`
}

type geminiTool struct {
	FunctionDeclarations []geminiFunctionDecl `json:"functionDeclarations"`
}

type geminiFunctionDecl struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Parameters  map[string]any `json:"parameters,omitempty"`
}

func buildRequestBody(conv convo.Conversation, opts convo.CompletionOptions) map[string]any {
	body := map[string]any{
		"contents": buildContents(conv),
	}
	if system := extractSystem(conv); system != "" {
		body["systemInstruction"] = geminiContent{Parts: []geminiPart{{Text: system}}}
	}

	genConfig := map[string]any{}
	if opts.Temperature != nil {
		genConfig["temperature"] = *opts.Temperature
	}
	if opts.TopP != nil {
		genConfig["topP"] = *opts.TopP
	}
	if opts.MaxTokens != nil {
		genConfig["maxOutputTokens"] = *opts.MaxTokens
	}
	if len(opts.StopSequences) > 0 {
		genConfig["stopSequences"] = opts.StopSequences
	}
	if len(genConfig) > 0 {
		body["generationConfig"] = genConfig
	}

	if len(opts.Tools) > 0 {
		body["tools"] = []geminiTool{{FunctionDeclarations: buildFunctionDecls(opts.Tools)}}
	}
	return body
}

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

// buildContents serializes the conversation into Gemini's role/parts
// shape. Gemini correlates a functionResponse to its call by function
// name, not by an opaque id, so toolCallNames tracks each emitted
// ToolCall's id -> name as it's seen, so a later ToolMessage can recover
// the name its functionResponse must carry.
func buildContents(conv convo.Conversation) []geminiContent {
	out := make([]geminiContent, 0, len(conv.Messages))
	toolCallNames := make(map[string]string)

	for _, msg := range conv.Messages {
		switch m := msg.(type) {
		case convo.SystemMessage:
			continue
		case convo.UserMessage:
			out = append(out, geminiContent{Role: "user", Parts: []geminiPart{{Text: m.Content}}})
		case convo.AssistantMessage:
			var parts []geminiPart
			if m.Content != "" {
				parts = append(parts, geminiPart{Text: m.Content})
			}
			for _, tc := range m.ToolCalls {
				toolCallNames[tc.ID] = tc.Name
				parts = append(parts, geminiPart{FunctionCall: &geminiFunctionCall{Name: tc.Name, Args: tc.Arguments}})
			}
			out = append(out, geminiContent{Role: "model", Parts: parts})
		case convo.ToolMessage:
			name := toolCallNames[m.ToolCallID]
			out = append(out, geminiContent{Role: "user", Parts: []geminiPart{{
				FunctionResp: &geminiFunctionResp{Name: name, Response: map[string]any{"result": m.Content}},
			}}})
		}
	}
	return out
}

func buildFunctionDecls(defs []convo.ToolDefinition) []geminiFunctionDecl {
	out := make([]geminiFunctionDecl, 0, len(defs))
	for _, d := range defs {
		params, _ := d.Schema.(map[string]any)
		out = append(out, geminiFunctionDecl{Name: d.Name, Description: d.Description, Parameters: params})
	}
	return out
}

type generateContentResponse struct {
	Candidates []struct {
		Content      geminiContent `json:"content"`
		FinishReason string        `json:"finishReason"`
	} `json:"candidates"`
	UsageMetadata *struct {
		PromptTokenCount     int `json:"promptTokenCount"`
		CandidatesTokenCount int `json:"candidatesTokenCount"`
		TotalTokenCount      int `json:"totalTokenCount"`
	} `json:"usageMetadata"`
}

func parseCompletionResponse(body []byte) (convo.Completion, error) {
	var resp generateContentResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return convo.Completion{}, fmt.Errorf("decode completion response: %w", err)
	}
	if len(resp.Candidates) == 0 {
		return convo.Completion{}, fmt.Errorf("completion response carries no candidates")
	}
	candidate := resp.Candidates[0]

	completion := convo.Completion{FinishReason: mapFinishReason(candidate.FinishReason)}
	callIndex := 0
	for _, part := range candidate.Content.Parts {
		if part.Text != "" {
			completion.Content += part.Text
		}
		if part.FunctionCall != nil {
			completion.ToolCalls = append(completion.ToolCalls, convo.ToolCall{
				ID:        fmt.Sprintf("call_%d", callIndex),
				Name:      part.FunctionCall.Name,
				Arguments: part.FunctionCall.Args,
			})
			callIndex++
		}
	}
	if resp.UsageMetadata != nil {
		completion.Usage = &convo.TokenUsage{
			PromptTokens:     resp.UsageMetadata.PromptTokenCount,
			CompletionTokens: resp.UsageMetadata.CandidatesTokenCount,
			TotalTokens:      resp.UsageMetadata.TotalTokenCount,
		}
	}
	return completion, nil
}

func mapFinishReason(reason string) convo.FinishReason {
	switch reason {
	case "STOP":
		return convo.FinishStop
	case "MAX_TOKENS":
		return convo.FinishLength
	case "SAFETY", "RECITATION":
		return convo.FinishContentFilter
	case "":
		return ""
	default:
		return convo.FinishError
	}
}

// parseStreamChunk decodes one streamGenerateContent SSE payload. Unlike
// OpenAI/Anthropic, Gemini's streamed chunks carry whole function calls
// rather than incremental argument deltas, so a tool-call chunk's
// ArgumentsJSON is already complete. Index and ID here come from the part's
// position within this chunk; client.go's doStream renumbers them
// sequentially across the stream so FoldChunks keeps calls from separate
// chunks apart.
func parseStreamChunk(data string) (convo.StreamedChunk, bool, error) {
	var resp generateContentResponse
	if err := json.Unmarshal([]byte(data), &resp); err != nil {
		return convo.StreamedChunk{}, false, fmt.Errorf("decode stream chunk: %w", err)
	}
	if len(resp.Candidates) == 0 {
		return convo.StreamedChunk{}, false, nil
	}
	candidate := resp.Candidates[0]

	chunk := convo.StreamedChunk{}
	if candidate.FinishReason != "" {
		chunk.FinishReason = mapFinishReason(candidate.FinishReason)
	}
	for i, part := range candidate.Content.Parts {
		if part.Text != "" {
			chunk.Content += part.Text
		}
		if part.FunctionCall != nil {
			argsJSON, err := json.Marshal(part.FunctionCall.Args)
			if err != nil {
				return convo.StreamedChunk{}, false, fmt.Errorf("encode function call args: %w", err)
			}
			chunk.ToolCall = &convo.PartialToolCall{
				Index:         i,
				ID:            fmt.Sprintf("call_%d", i),
				Name:          part.FunctionCall.Name,
				ArgumentsJSON: string(argsJSON),
			}
		}
	}
	if resp.UsageMetadata != nil {
		chunk.Usage = &convo.TokenUsage{
			PromptTokens:     resp.UsageMetadata.PromptTokenCount,
			CompletionTokens: resp.UsageMetadata.CandidatesTokenCount,
			TotalTokens:      resp.UsageMetadata.TotalTokenCount,
		}
	}
	return chunk, true, nil
}
