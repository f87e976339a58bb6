package google

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loomware/agentcore/pkg/convo"
)

func TestBuildContentsUsesModelRoleAndCorrelatesToolResultByName(t *testing.T) {
	conv := convo.Conversation{Messages: []convo.Message{
		convo.SystemMessage{Content: "be terse"},
		convo.UserMessage{Content: "weather?"},
		convo.AssistantMessage{ToolCalls: []convo.ToolCall{
			{ID: "call_0", Name: "get_weather", Arguments: map[string]any{"city": "nyc"}},
		}},
		convo.ToolMessage{Content: "72F", ToolCallID: "call_0"},
	}}

	contents := buildContents(conv)
	require.Len(t, contents, 3)

	assert.Equal(t, "user", contents[0].Role)
	assert.Equal(t, "model", contents[1].Role)
	require.Len(t, contents[1].Parts, 1)
	require.NotNil(t, contents[1].Parts[0].FunctionCall)
	assert.Equal(t, "get_weather", contents[1].Parts[0].FunctionCall.Name)

	assert.Equal(t, "user", contents[2].Role)
	require.NotNil(t, contents[2].Parts[0].FunctionResp)
	assert.Equal(t, "get_weather", contents[2].Parts[0].FunctionResp.Name)
}

func TestBuildRequestBodyEmitsSystemInstructionSeparately(t *testing.T) {
	conv := convo.Conversation{Messages: []convo.Message{
		convo.SystemMessage{Content: "be terse"},
		convo.UserMessage{Content: "hi"},
	}}
	body := buildRequestBody(conv, convo.CompletionOptions{})
	sysInstr, ok := body["systemInstruction"].(geminiContent)
	require.True(t, ok)
	assert.Equal(t, "be terse", sysInstr.Parts[0].Text)
}

func TestParseCompletionResponseExtractsTextAndFunctionCall(t *testing.T) {
	body := []byte(`{
		"candidates": [{
			"content": {"parts": [{"text": "checking"}, {"functionCall": {"name": "get_weather", "args": {"city": "nyc"}}}]},
			"finishReason": "STOP"
		}],
		"usageMetadata": {"promptTokenCount": 10, "candidatesTokenCount": 5, "totalTokenCount": 15}
	}`)

	completion, err := parseCompletionResponse(body)
	require.NoError(t, err)
	assert.Equal(t, "checking", completion.Content)
	assert.Equal(t, convo.FinishStop, completion.FinishReason)
	require.Len(t, completion.ToolCalls, 1)
	assert.Equal(t, "get_weather", completion.ToolCalls[0].Name)
	require.NotNil(t, completion.Usage)
	assert.Equal(t, 15, completion.Usage.TotalTokens)
}

func TestMapFinishReasonMapsSafetyToContentFilter(t *testing.T) {
	assert.Equal(t, convo.FinishContentFilter, mapFinishReason("SAFETY"))
	assert.Equal(t, convo.FinishLength, mapFinishReason("MAX_TOKENS"))
}

func TestContextWindowForKnownAndUnknownModels(t *testing.T) {
	assert.Equal(t, 1_048_576, contextWindowFor("gemini-2.5-flash"))
	assert.Equal(t, 2_097_152, contextWindowFor("gemini-1.5-pro"))
	assert.Equal(t, defaultContextWindow, contextWindowFor("gemini-9.9-future"))
}
