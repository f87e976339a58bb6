// Package convo defines the conversation data model shared by the context
// window manager, the agent loop, and every provider client: a sealed
// Message variant set (System/User/Assistant/Tool), ToolCall, Conversation,
// Completion, and the streaming/usage types folded from provider chunks.
//
// The sealed-variant shape is generalized from the teacher's
// pkg/provider/types.ContentPart interface-based polymorphism, simplified
// to the flat content-string model this spec's Message entity calls for.
package convo

import "fmt"

// Role tags which Message variant a value holds.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Message is the sealed interface implemented by exactly the four role
// variants below. Type-switch on the concrete type (or call Role()) to
// recover the variant.
type Message interface {
	Role() Role
	Text() string
}

// SystemMessage carries system instructions. A System message whose
// content begins with "[HISTORY_SUMMARY]" is a pinned digest produced by
// the context window manager's HistoryCompressor and must never be
// reordered or re-summarized.
type SystemMessage struct {
	Content string
}

func (m SystemMessage) Role() Role   { return RoleSystem }
func (m SystemMessage) Text() string { return m.Content }

// IsPinnedDigest reports whether m is a HistoryCompressor-produced digest.
func (m SystemMessage) IsPinnedDigest() bool {
	return hasHistorySummaryPrefix(m.Content)
}

const historySummaryPrefix = "[HISTORY_SUMMARY]"

func hasHistorySummaryPrefix(content string) bool {
	return len(content) >= len(historySummaryPrefix) && content[:len(historySummaryPrefix)] == historySummaryPrefix
}

// UserMessage carries user-authored text.
type UserMessage struct {
	Content string
}

func (m UserMessage) Role() Role   { return RoleUser }
func (m UserMessage) Text() string { return m.Content }

// ToolCall is a model-requested invocation of a registered tool. Id is
// unique within a Conversation; Arguments is the raw JSON the provider
// emitted (a map for providers that parse it, a string for providers whose
// streamed arguments are reassembled as text).
type ToolCall struct {
	ID        string
	Name      string
	Arguments any
}

// AssistantMessage carries a model response, optionally requesting tool
// calls. Invariant: every Tool message elsewhere in the Conversation whose
// ToolCallID matches one of ToolCalls must follow this message.
type AssistantMessage struct {
	Content   string
	ToolCalls []ToolCall
}

func (m AssistantMessage) Role() Role   { return RoleAssistant }
func (m AssistantMessage) Text() string { return m.Content }

// ResourceContentBlock is a structured annotation attached to a ToolMessage
// when the tool that produced it returned MCP resource content
// (`{type:"resource", resource:{uri, type?}}`) alongside its folded text.
type ResourceContentBlock struct {
	URI      string
	MimeType string
}

// ToolMessage carries the result of executing one ToolCall. ToolCallID
// must reference a ToolCall on a preceding AssistantMessage. Annotations is
// non-empty only for tool calls that an MCP bridge served and whose result
// included resource content; local tools never populate it.
type ToolMessage struct {
	Content     string
	ToolCallID  string
	Annotations []ResourceContentBlock
}

func (m ToolMessage) Role() Role   { return RoleTool }
func (m ToolMessage) Text() string { return m.Content }

// Conversation is an ordered, append-only (from the agent loop's
// perspective) sequence of Messages.
type Conversation struct {
	Messages []Message
}

// Append returns a new Conversation with msg appended; Conversation values
// are treated as immutable and updated by copy.
func (c Conversation) Append(msg Message) Conversation {
	out := make([]Message, len(c.Messages), len(c.Messages)+1)
	copy(out, c.Messages)
	out = append(out, msg)
	return Conversation{Messages: out}
}

// Last returns the final message, or nil if the conversation is empty.
func (c Conversation) Last() Message {
	if len(c.Messages) == 0 {
		return nil
	}
	return c.Messages[len(c.Messages)-1]
}

// ValidateToolReferences checks invariant 1 from §8: every Tool message
// references an id that appears in some preceding Assistant message's
// ToolCalls.
func (c Conversation) ValidateToolReferences() error {
	seen := make(map[string]bool)
	for _, msg := range c.Messages {
		switch m := msg.(type) {
		case AssistantMessage:
			for _, tc := range m.ToolCalls {
				seen[tc.ID] = true
			}
		case ToolMessage:
			if !seen[m.ToolCallID] {
				return fmt.Errorf("tool message references unknown tool call id %q", m.ToolCallID)
			}
		}
	}
	return nil
}
