// Package agent implements C6: the agent loop state machine that drives a
// conversation through a provider client and a tool registry until a final
// textual answer is reached, a step/tool limit is hit, or a guardrail or
// provider error aborts the run.
//
// Grounded on the teacher's pkg/agent/toolloop.go (step loop shape,
// callback-merging discipline) and pkg/agent/agent.go, regeneralized from
// the teacher's provider-agnostic generate/stream wrapper and
// five-callback-group event surface down to this module's explicit
// Idle/AwaitingLLM/ExecutingTools/Done/Failed state machine and seven-event
// stream.
package agent

import (
	"github.com/loomware/agentcore/pkg/convo"
)

// Status is one state of the agent loop's state machine:
//
//	Idle --user query--> AwaitingLLM
//	AwaitingLLM --completion w/o tool calls--> Done
//	AwaitingLLM --completion w/ tool calls--> ExecutingTools
//	ExecutingTools --every tool result appended--> AwaitingLLM
//	(any state) --guardrail fail / step limit / provider error / cancel--> Failed
type Status string

const (
	StatusIdle           Status = "idle"
	StatusAwaitingLLM    Status = "awaiting_llm"
	StatusExecutingTools Status = "executing_tools"
	StatusDone           Status = "done"
	StatusFailed         Status = "failed"
)

// State is the serializable snapshot of one run: the conversation so far,
// the names of the tools that were available (not the tools themselves —
// handlers are not serializable and must be re-supplied by the caller to
// resume a run), the step counter, and the terminal outcome once Status is
// Done or Failed.
type State struct {
	Conversation convo.Conversation
	ToolNames    []string
	Step         int
	Status       Status
	FinalText    string
	FailReason   string
}

// IsTerminal reports whether the run has reached Done or Failed.
func (s State) IsTerminal() bool {
	return s.Status == StatusDone || s.Status == StatusFailed
}
