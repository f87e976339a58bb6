// Package ctxwindow groups a Conversation into semantic blocks, compresses
// old history into a pinned digest, and enforces a token budget by pruning
// whole blocks. None of this existed in the teacher beyond a flat
// prune (pkg/ai/pruning.go); the semantic-block and digest logic here is
// new, built in the teacher's idiom (small structs, injected Tokenizer,
// pure functions over []convo.Message).
package ctxwindow

import "github.com/loomware/agentcore/pkg/convo"

// BlockType classifies a SemanticBlock, the minimal unit the history
// compressor may summarize as one.
type BlockType string

const (
	BlockUserAssistantPair   BlockType = "UserAssistantPair"
	BlockStandaloneAssistant BlockType = "StandaloneAssistant"
	BlockStandaloneTool      BlockType = "StandaloneTool"
	BlockSystem              BlockType = "System"
)

// SemanticBlock is a contiguous run of messages that belong together for
// compression/pruning purposes.
type SemanticBlock struct {
	Messages                   []convo.Message
	BlockType                  BlockType
	ExpectingAssistantResponse bool
}

// IsPinnedDigest reports whether this block is a single System message
// holding a HistoryCompressor-produced digest.
func (b SemanticBlock) IsPinnedDigest() bool {
	if b.BlockType != BlockSystem || len(b.Messages) != 1 {
		return false
	}
	sys, ok := b.Messages[0].(convo.SystemMessage)
	return ok && sys.IsPinnedDigest()
}

// GroupIntoSemanticBlocks implements C3.groupIntoSemanticBlocks:
//   - a User message starts a new UserAssistantPair expecting an assistant
//     reply; the next Assistant message closes it.
//   - an Assistant message with no open pair becomes its own
//     StandaloneAssistant block.
//   - Tool messages attach to the currently open block, or form a
//     StandaloneTool block if none is open.
//   - System messages always form their own block.
func GroupIntoSemanticBlocks(messages []convo.Message) []SemanticBlock {
	var blocks []SemanticBlock
	var open *SemanticBlock

	closeOpen := func() {
		if open != nil {
			blocks = append(blocks, *open)
			open = nil
		}
	}

	for _, msg := range messages {
		switch m := msg.(type) {
		case convo.SystemMessage:
			closeOpen()
			blocks = append(blocks, SemanticBlock{Messages: []convo.Message{m}, BlockType: BlockSystem})

		case convo.UserMessage:
			closeOpen()
			open = &SemanticBlock{
				Messages:                   []convo.Message{m},
				BlockType:                  BlockUserAssistantPair,
				ExpectingAssistantResponse: true,
			}

		case convo.AssistantMessage:
			if open != nil && open.BlockType == BlockUserAssistantPair && open.ExpectingAssistantResponse {
				open.Messages = append(open.Messages, m)
				open.ExpectingAssistantResponse = false
				continue
			}
			closeOpen()
			open = &SemanticBlock{Messages: []convo.Message{m}, BlockType: BlockStandaloneAssistant}

		case convo.ToolMessage:
			if open != nil {
				open.Messages = append(open.Messages, m)
				continue
			}
			open = &SemanticBlock{Messages: []convo.Message{m}, BlockType: BlockStandaloneTool}
		}
	}
	closeOpen()

	return blocks
}

// Flatten concatenates every block's messages back into a flat slice,
// preserving order.
func Flatten(blocks []SemanticBlock) []convo.Message {
	var out []convo.Message
	for _, b := range blocks {
		out = append(out, b.Messages...)
	}
	return out
}
