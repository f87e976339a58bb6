package tokenizer

import (
	"encoding/json"

	"github.com/loomware/agentcore/pkg/convo"
)

const (
	// DefaultMessageOverhead is the fixed per-message token cost added on
	// top of encoded content, approximating role/delimiter overhead a real
	// BPE tokenizer would also charge.
	DefaultMessageOverhead = 4

	// DefaultConversationOverhead is a one-time fixed cost added per
	// conversation (priming tokens).
	DefaultConversationOverhead = 10
)

// ConversationTokenCounter computes token counts for messages and whole
// conversations using an injected Tokenizer plus the §4.3 overhead
// constants.
type ConversationTokenCounter struct {
	Tokenizer             Tokenizer
	MessageOverhead       int
	ConversationOverhead int
}

// NewConversationTokenCounter builds a counter with the spec-default
// overheads and the given tokenizer (HeuristicTokenizer if nil).
func NewConversationTokenCounter(t Tokenizer) *ConversationTokenCounter {
	if t == nil {
		t = HeuristicTokenizer{}
	}
	return &ConversationTokenCounter{
		Tokenizer:            t,
		MessageOverhead:      DefaultMessageOverhead,
		ConversationOverhead: DefaultConversationOverhead,
	}
}

// CountMessage returns the token count for a single message: its text
// content plus, for an AssistantMessage, the serialized JSON of every tool
// call's arguments, plus MessageOverhead.
func (c *ConversationTokenCounter) CountMessage(msg convo.Message) int {
	total := c.MessageOverhead + Count(c.Tokenizer, msg.Text())

	if am, ok := msg.(convo.AssistantMessage); ok {
		for _, tc := range am.ToolCalls {
			total += Count(c.Tokenizer, marshalArguments(tc.Arguments))
		}
	}

	return total
}

// CountConversation returns the total token count for every message plus
// the one-time ConversationOverhead.
func (c *ConversationTokenCounter) CountConversation(conv convo.Conversation) int {
	total := c.ConversationOverhead
	for _, msg := range conv.Messages {
		total += c.CountMessage(msg)
	}
	return total
}

func marshalArguments(args any) string {
	switch v := args.(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return ""
		}
		return string(b)
	}
}
