package convo_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loomware/agentcore/pkg/convo"
)

func TestConversationAppendIsImmutable(t *testing.T) {
	c1 := convo.Conversation{Messages: []convo.Message{convo.UserMessage{Content: "hi"}}}
	c2 := c1.Append(convo.AssistantMessage{Content: "hello"})

	assert.Len(t, c1.Messages, 1)
	assert.Len(t, c2.Messages, 2)
}

func TestValidateToolReferencesPasses(t *testing.T) {
	c := convo.Conversation{Messages: []convo.Message{
		convo.UserMessage{Content: "what's 2+2"},
		convo.AssistantMessage{ToolCalls: []convo.ToolCall{{ID: "call_1", Name: "calc"}}},
		convo.ToolMessage{Content: "4", ToolCallID: "call_1"},
	}}

	require.NoError(t, c.ValidateToolReferences())
}

func TestValidateToolReferencesFailsOnUnknownID(t *testing.T) {
	c := convo.Conversation{Messages: []convo.Message{
		convo.ToolMessage{Content: "4", ToolCallID: "call_ghost"},
	}}

	err := c.ValidateToolReferences()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "call_ghost")
}

func TestPinnedDigestDetection(t *testing.T) {
	digest := convo.SystemMessage{Content: "[HISTORY_SUMMARY] earlier context..."}
	plain := convo.SystemMessage{Content: "You are a helpful assistant."}

	assert.True(t, digest.IsPinnedDigest())
	assert.False(t, plain.IsPinnedDigest())
}

func TestLastReturnsNilOnEmptyConversation(t *testing.T) {
	var c convo.Conversation
	assert.Nil(t, c.Last())
}

func TestRoleDispatchViaTypeSwitch(t *testing.T) {
	msgs := []convo.Message{
		convo.SystemMessage{Content: "sys"},
		convo.UserMessage{Content: "usr"},
		convo.AssistantMessage{Content: "asst"},
		convo.ToolMessage{Content: "tool", ToolCallID: "call_1"},
	}

	roles := make([]convo.Role, 0, len(msgs))
	for _, m := range msgs {
		roles = append(roles, m.Role())
	}

	assert.Equal(t, []convo.Role{convo.RoleSystem, convo.RoleUser, convo.RoleAssistant, convo.RoleTool}, roles)
}
