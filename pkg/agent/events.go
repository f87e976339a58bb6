package agent

import (
	"github.com/loomware/agentcore/pkg/aierrors"
	"github.com/loomware/agentcore/pkg/convo"
)

// EventKind tags which of the seven agent-loop events a value carries.
type EventKind string

const (
	EventLLMRequestStart EventKind = "llm_request_start"
	EventLLMChunk        EventKind = "llm_chunk"
	EventLLMRequestEnd   EventKind = "llm_request_end"
	EventToolCallStart   EventKind = "tool_call_start"
	EventToolCallEnd     EventKind = "tool_call_end"
	EventStepComplete    EventKind = "step_complete"
	EventRunComplete     EventKind = "run_complete"
)

// Event is one point in the lazy, finite, non-restartable stream the agent
// loop emits through an EventSink. Only the fields relevant to Kind are
// populated; the rest are zero.
type Event struct {
	Kind EventKind
	Step int

	// LLMChunk
	Delta string

	// LLMRequestEnd
	Usage *convo.TokenUsage

	// ToolCallStart / ToolCallEnd
	ToolCallID string
	ToolName   string
	ToolResult any
	ToolErr    *aierrors.Error

	// StepComplete / RunComplete
	State State
}

// EventSink receives agent-loop events in causal order: across parallel
// tool executions, a given call's ToolCallStart precedes its ToolCallEnd,
// and every ToolCallEnd in a step precedes that step's next
// LLMRequestStart. Returning false tells the loop to stop: cancellation
// propagates by "dropping" the sink this way, and the loop returns
// Failed(Cancelled) at its next suspension point (before the next LLM call
// or tool execution) rather than mid-flight.
type EventSink func(Event) bool

// noopSink never stops the loop and discards every event; used when a
// caller calls Run instead of RunWithEvents.
func noopSink(Event) bool { return true }
