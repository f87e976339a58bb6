package ctxwindow_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loomware/agentcore/pkg/convo"
	"github.com/loomware/agentcore/pkg/ctxwindow"
	"github.com/loomware/agentcore/pkg/tokenizer"
)

func longConversation(pairs int) []convo.Message {
	var msgs []convo.Message
	for i := 0; i < pairs; i++ {
		msgs = append(msgs,
			convo.UserMessage{Content: "this is a reasonably long question to spend tokens on"},
			convo.AssistantMessage{Content: "this is a reasonably long answer to spend tokens on"},
		)
	}
	return msgs
}

func TestPruneToBudgetNoopWhenAlreadyUnderBudget(t *testing.T) {
	counter := tokenizer.NewConversationTokenCounter(nil)
	msgs := longConversation(1)

	result, aerr := ctxwindow.PruneToBudget(msgs, counter, 100000, 0, ctxwindow.OldestFirst)
	require.Nil(t, aerr)
	assert.Equal(t, msgs, result)
}

func TestPruneToBudgetEvictsOldestFirst(t *testing.T) {
	counter := tokenizer.NewConversationTokenCounter(nil)
	msgs := longConversation(5)
	fullBudget := counter.CountConversation(convo.Conversation{Messages: msgs})

	result, aerr := ctxwindow.PruneToBudget(msgs, counter, fullBudget-1, 0, ctxwindow.OldestFirst)
	require.Nil(t, aerr)
	require.Less(t, len(result), len(msgs))

	// Eviction removed the oldest blocks, so the survivors are the newest
	// messages in their original order and start with a user message.
	firstUser := result[0].(convo.UserMessage)
	assert.Equal(t, msgs[len(msgs)-len(result):], result)
	_ = firstUser
}

func TestPruneToBudgetPreservesPinnedDigest(t *testing.T) {
	counter := tokenizer.NewConversationTokenCounter(nil)
	msgs := append([]convo.Message{
		convo.SystemMessage{Content: "[HISTORY_SUMMARY] pinned fact"},
	}, longConversation(4)...)

	fullBudget := counter.CountConversation(convo.Conversation{Messages: msgs})
	result, aerr := ctxwindow.PruneToBudget(msgs, counter, fullBudget-1, 0, ctxwindow.OldestFirst)
	require.Nil(t, aerr)

	found := false
	for _, m := range result {
		if sys, ok := m.(convo.SystemMessage); ok && sys.IsPinnedDigest() {
			found = true
		}
	}
	assert.True(t, found, "pinned digest must survive eviction")
}

func TestPruneToBudgetOldestPairOnlyEvictsPairs(t *testing.T) {
	counter := tokenizer.NewConversationTokenCounter(nil)
	msgs := append([]convo.Message{
		convo.SystemMessage{Content: "system preamble"},
	}, longConversation(3)...)

	fullBudget := counter.CountConversation(convo.Conversation{Messages: msgs})
	result, aerr := ctxwindow.PruneToBudget(msgs, counter, fullBudget-1, 0, ctxwindow.OldestPair)
	require.Nil(t, aerr)

	// The non-pair system block must still be present since OldestPair never
	// evicts it.
	found := false
	for _, m := range result {
		if sys, ok := m.(convo.SystemMessage); ok && sys.Content == "system preamble" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestPruneToBudgetReturnsEmptyResultWhenImpossible(t *testing.T) {
	counter := tokenizer.NewConversationTokenCounter(nil)
	msgs := []convo.Message{
		convo.SystemMessage{Content: "[HISTORY_SUMMARY] pinned fact that cannot be evicted"},
	}

	_, aerr := ctxwindow.PruneToBudget(msgs, counter, 0, 0, ctxwindow.OldestFirst)
	require.NotNil(t, aerr)
}
