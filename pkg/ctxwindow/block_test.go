package ctxwindow_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loomware/agentcore/pkg/convo"
	"github.com/loomware/agentcore/pkg/ctxwindow"
)

func TestGroupIntoSemanticBlocksPairsUserAndAssistant(t *testing.T) {
	msgs := []convo.Message{
		convo.UserMessage{Content: "hi"},
		convo.AssistantMessage{Content: "hello"},
	}

	blocks := ctxwindow.GroupIntoSemanticBlocks(msgs)

	require.Len(t, blocks, 1)
	assert.Equal(t, ctxwindow.BlockUserAssistantPair, blocks[0].BlockType)
	assert.False(t, blocks[0].ExpectingAssistantResponse)
	assert.Len(t, blocks[0].Messages, 2)
}

func TestGroupIntoSemanticBlocksStandaloneAssistant(t *testing.T) {
	msgs := []convo.Message{
		convo.AssistantMessage{Content: "unprompted"},
	}

	blocks := ctxwindow.GroupIntoSemanticBlocks(msgs)

	require.Len(t, blocks, 1)
	assert.Equal(t, ctxwindow.BlockStandaloneAssistant, blocks[0].BlockType)
}

func TestGroupIntoSemanticBlocksToolAttachesToOpenBlock(t *testing.T) {
	msgs := []convo.Message{
		convo.UserMessage{Content: "search for x"},
		convo.AssistantMessage{ToolCalls: []convo.ToolCall{{ID: "call_1", Name: "search"}}},
		convo.ToolMessage{Content: "results", ToolCallID: "call_1"},
	}

	blocks := ctxwindow.GroupIntoSemanticBlocks(msgs)

	require.Len(t, blocks, 1)
	assert.Equal(t, ctxwindow.BlockUserAssistantPair, blocks[0].BlockType)
	assert.Len(t, blocks[0].Messages, 3)
}

func TestGroupIntoSemanticBlocksStandaloneTool(t *testing.T) {
	msgs := []convo.Message{
		convo.ToolMessage{Content: "orphaned", ToolCallID: "call_x"},
	}

	blocks := ctxwindow.GroupIntoSemanticBlocks(msgs)

	require.Len(t, blocks, 1)
	assert.Equal(t, ctxwindow.BlockStandaloneTool, blocks[0].BlockType)
}

func TestGroupIntoSemanticBlocksSystemIsOwnBlock(t *testing.T) {
	msgs := []convo.Message{
		convo.SystemMessage{Content: "you are helpful"},
		convo.UserMessage{Content: "hi"},
		convo.AssistantMessage{Content: "hello"},
	}

	blocks := ctxwindow.GroupIntoSemanticBlocks(msgs)

	require.Len(t, blocks, 2)
	assert.Equal(t, ctxwindow.BlockSystem, blocks[0].BlockType)
	assert.Equal(t, ctxwindow.BlockUserAssistantPair, blocks[1].BlockType)
}

func TestFlattenPreservesOrder(t *testing.T) {
	msgs := []convo.Message{
		convo.UserMessage{Content: "a"},
		convo.AssistantMessage{Content: "b"},
		convo.UserMessage{Content: "c"},
		convo.AssistantMessage{Content: "d"},
	}

	blocks := ctxwindow.GroupIntoSemanticBlocks(msgs)
	flat := ctxwindow.Flatten(blocks)

	assert.Equal(t, msgs, flat)
}
