package azure

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loomware/agentcore/pkg/convo"
)

func TestBuildRequestBodyOmitsModelField(t *testing.T) {
	conv := convo.Conversation{Messages: []convo.Message{convo.UserMessage{Content: "hi"}}}
	body := buildRequestBody(conv, convo.CompletionOptions{}, false)
	_, hasModel := body["model"]
	assert.False(t, hasModel, "Azure routes by deployment path, not a model field in the body")
}

func TestParseCompletionResponseHappyPath(t *testing.T) {
	body := []byte(`{
		"id": "chatcmpl-1",
		"model": "gpt-4o",
		"choices": [{"message": {"role":"assistant","content":"hi there"}, "finish_reason": "stop"}],
		"usage": {"prompt_tokens": 3, "completion_tokens": 2, "total_tokens": 5}
	}`)
	completion, err := parseCompletionResponse(body)
	require.NoError(t, err)
	assert.Equal(t, "hi there", completion.Content)
	assert.Equal(t, convo.FinishStop, completion.FinishReason)
}

func TestContextWindowForMatchesDeploymentNameSubstring(t *testing.T) {
	assert.Equal(t, 128_000, contextWindowFor("my-gpt-4o-mini-deployment"))
	assert.Equal(t, 8_192, contextWindowFor("prod-gpt-4"))
	assert.Equal(t, defaultContextWindow, contextWindowFor("custom-finetune-v3"))
}
