package google_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loomware/agentcore/internal/config"
	"github.com/loomware/agentcore/pkg/convo"
	"github.com/loomware/agentcore/pkg/providers/google"
)

func TestClientCompleteUsesGenerateContentPathAndKeyParam(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "gemini-2.5-flash:generateContent")
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"candidates":[{"content":{"parts":[{"text":"hi there"}]},"finishReason":"STOP"}]}`)
	}))
	defer server.Close()

	client := google.NewClient("gemini-2.5-flash", config.ProviderConfig{APIKey: "test-key", BaseURL: server.URL})
	conv := convo.Conversation{Messages: []convo.Message{convo.UserMessage{Content: "hello"}}}
	result := client.Complete(t.Context(), conv, convo.CompletionOptions{})
	require.True(t, result.IsOk())
	assert.Equal(t, "hi there", result.Value().Content)
}
