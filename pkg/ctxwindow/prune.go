package ctxwindow

import (
	"github.com/loomware/agentcore/pkg/aierrors"
	"github.com/loomware/agentcore/pkg/convo"
	"github.com/loomware/agentcore/pkg/tokenizer"
)

// BudgetStrategy names the block-eviction order used once compression
// alone does not bring a conversation under budget.
type BudgetStrategy string

const (
	// OldestFirst removes whole semantic blocks, oldest first, regardless
	// of type.
	OldestFirst BudgetStrategy = "OldestFirst"

	// OldestPair removes whole UserAssistantPair blocks, oldest first,
	// leaving standalone/system blocks untouched.
	OldestPair BudgetStrategy = "OldestPair"
)

// PruneToBudget removes whole semantic blocks, oldest first per strategy,
// until CountConversation(result) <= budget-reserveCompletion, a pinned
// digest block is never removed, and at least one block survives. Returns
// EmptyResult if removing even the single remaining non-pinned block would
// still leave the conversation over budget.
func PruneToBudget(
	messages []convo.Message,
	counter *tokenizer.ConversationTokenCounter,
	budget, reserveCompletion int,
	strategy BudgetStrategy,
) ([]convo.Message, *aierrors.Error) {
	if counter == nil {
		counter = tokenizer.NewConversationTokenCounter(nil)
	}

	target := budget - reserveCompletion
	blocks := GroupIntoSemanticBlocks(messages)

	fits := func(bs []SemanticBlock) bool {
		return counter.CountConversation(convo.Conversation{Messages: Flatten(bs)}) <= target
	}

	if fits(blocks) {
		return Flatten(blocks), nil
	}

	for {
		idx := nextEvictionIndex(blocks, strategy)
		if idx < 0 {
			return nil, aierrors.NewEmptyResult("no further blocks eligible for eviction under " + string(strategy))
		}

		blocks = append(blocks[:idx], blocks[idx+1:]...)

		if len(blocks) == 0 {
			return nil, aierrors.NewEmptyResult("pruning removed every block before reaching the token budget")
		}
		if fits(blocks) {
			return Flatten(blocks), nil
		}
	}
}

// nextEvictionIndex returns the index of the oldest block eligible for
// removal under strategy, or -1 if none remain.
func nextEvictionIndex(blocks []SemanticBlock, strategy BudgetStrategy) int {
	for i, b := range blocks {
		if b.IsPinnedDigest() {
			continue
		}
		switch strategy {
		case OldestPair:
			if b.BlockType == BlockUserAssistantPair {
				return i
			}
		default: // OldestFirst
			return i
		}
	}
	return -1
}
