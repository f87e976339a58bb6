package agent

import (
	"context"
	"time"

	"github.com/loomware/agentcore/pkg/aierrors"
	"github.com/loomware/agentcore/pkg/convo"
	"github.com/loomware/agentcore/pkg/guardrail"
	"github.com/loomware/agentcore/pkg/provider"
	"github.com/loomware/agentcore/pkg/tool"
)

// DefaultMaxSteps bounds a run when Config.MaxSteps is left at zero (or set
// negative).
const DefaultMaxSteps = 10

// Config configures one Loop: the provider client and tool registry every
// run shares, the guardrails applied to user input and assistant output,
// and the knobs governing how many steps a run may take and how its tool
// calls are executed.
type Config struct {
	Client provider.Client

	// Tools resolves every tool callable from this Loop. It is usually a
	// plain *tool.Registry; pkg/mcp.ToolBridge also implements Source,
	// composing local tools with an MCP server's, with local tools taking
	// precedence on a name collision.
	Tools tool.Source

	InputGuardrails  []guardrail.Guardrail
	OutputGuardrails []guardrail.Guardrail

	MaxSteps int
	Strategy Strategy

	// System, when non-empty, is prepended as a SystemMessage to every new
	// run (continueConversation does not re-prepend it; it is only part of
	// the conversation the first time).
	System string

	// CompletionOptions seeds every Complete/StreamComplete call; its Tools
	// field is overwritten from the registry on each call.
	CompletionOptions convo.CompletionOptions

	// Stream, if true, drives each LLM call through Client.StreamComplete
	// and emits LLMChunk events; otherwise Client.Complete is used and no
	// LLMChunk events are emitted.
	Stream bool

	ToolTimeout     time.Duration
	ToolTimeoutMode ToolTimeoutMode
}

// Loop runs the C6 agent state machine against a fixed Config.
type Loop struct {
	cfg Config
}

// New builds a Loop. A zero Config.MaxSteps is treated as DefaultMaxSteps,
// a zero Config.Strategy is treated as Sequential.
func New(cfg Config) *Loop {
	if cfg.MaxSteps <= 0 {
		cfg.MaxSteps = DefaultMaxSteps
	}
	if cfg.Strategy.Kind == "" {
		cfg.Strategy = Sequential()
	}
	return &Loop{cfg: cfg}
}

// Run starts a fresh conversation from query and drives the loop to
// completion, discarding events.
func (l *Loop) Run(ctx context.Context, query string) aierrors.Result[State] {
	return l.RunWithEvents(ctx, query, noopSink)
}

// RunWithEvents starts a fresh conversation from query, invoking sink for
// every event emitted along the way.
func (l *Loop) RunWithEvents(ctx context.Context, query string, sink EventSink) aierrors.Result[State] {
	conv := convo.Conversation{}
	if l.cfg.System != "" {
		conv = conv.Append(convo.SystemMessage{Content: l.cfg.System})
	}

	state := State{
		Conversation: conv,
		ToolNames:    l.cfg.Tools.Names(),
		Step:         0,
		Status:       StatusIdle,
	}

	return aierrors.Ok(l.drive(ctx, state, query, sink))
}

// ContinueConversation resumes a prior State with new user input,
// discarding events.
func (l *Loop) ContinueConversation(ctx context.Context, state State, input string) aierrors.Result[State] {
	return l.ContinueConversationWithEvents(ctx, state, input, noopSink)
}

// ContinueConversationWithEvents resumes state with new user input,
// invoking sink for every event emitted.
func (l *Loop) ContinueConversationWithEvents(ctx context.Context, state State, input string, sink EventSink) aierrors.Result[State] {
	state.Status = StatusIdle
	state.FinalText = ""
	state.FailReason = ""
	return aierrors.Ok(l.drive(ctx, state, input, sink))
}

// drive is the shared state-machine core for both Run and
// ContinueConversation: apply input guardrails to the new user text (the
// spec's "before the first LLM call on user text" applies equally to text
// introduced by continueConversation, since that text hasn't been checked
// yet either), append it, then loop AwaitingLLM/ExecutingTools until Done
// or Failed. A run never returns a Go-level error: every outcome, success
// or failure, is a terminal State a caller inspects via Status.
func (l *Loop) drive(ctx context.Context, state State, userText string, sink EventSink) State {
	if len(l.cfg.InputGuardrails) > 0 {
		composite := guardrail.All("input", l.cfg.InputGuardrails...)
		res := composite.Check(ctx, userText)
		if res.Outcome == guardrail.OutcomeFail {
			return l.terminateFailed(state, sink, "input guardrail: "+res.Err.Error())
		}
		userText = res.Text
	}

	state.Conversation = state.Conversation.Append(convo.UserMessage{Content: userText})
	state.Status = StatusAwaitingLLM

	for {
		if ctx.Err() != nil {
			return l.terminateFailed(state, sink, "context cancelled")
		}
		if state.Step >= l.cfg.MaxSteps {
			return l.terminateFailed(state, sink, "max steps exceeded")
		}

		switch state.Status {
		case StatusAwaitingLLM:
			state = l.stepLLM(ctx, state, sink)

		case StatusExecutingTools:
			state = l.stepTools(ctx, state, sink)

		case StatusDone, StatusFailed:
			sink(Event{Kind: EventRunComplete, Step: state.Step, State: state})
			return state

		default:
			return l.terminateFailed(state, sink, "invalid state")
		}
	}
}

// stepLLM issues one completion call. A completion with no tool calls runs
// output guardrails and transitions to Done; one with tool calls
// transitions to ExecutingTools.
func (l *Loop) stepLLM(ctx context.Context, state State, sink EventSink) State {
	if !sink(Event{Kind: EventLLMRequestStart, Step: state.Step}) {
		return l.terminateFailed(state, sink, "cancelled before llm request")
	}

	opts := l.cfg.CompletionOptions
	opts.Tools = toolDefinitions(l.cfg.Tools)

	completion, aerr := l.complete(ctx, state.Conversation, opts, state.Step, sink)
	if aerr != nil {
		return l.terminateFailed(state, sink, "provider error: "+aerr.Error())
	}

	sink(Event{Kind: EventLLMRequestEnd, Step: state.Step, Usage: completion.Usage})

	state.Conversation = state.Conversation.Append(convo.AssistantMessage{
		Content:   completion.Content,
		ToolCalls: completion.ToolCalls,
	})

	if len(completion.ToolCalls) == 0 {
		finalText := completion.Content
		if len(l.cfg.OutputGuardrails) > 0 {
			composite := guardrail.All("output", l.cfg.OutputGuardrails...)
			res := composite.Check(ctx, finalText)
			if res.Outcome == guardrail.OutcomeFail {
				return l.terminateFailed(state, sink, "output guardrail: "+res.Err.Error())
			}
			finalText = res.Text
		}
		state.FinalText = finalText
		state.Status = StatusDone
		sink(Event{Kind: EventStepComplete, Step: state.Step, State: state})
		return state
	}

	state.Status = StatusExecutingTools
	sink(Event{Kind: EventStepComplete, Step: state.Step, State: state})
	return state
}

// stepTools executes the pending tool calls from the last Assistant
// message and appends their results before returning to AwaitingLLM.
func (l *Loop) stepTools(ctx context.Context, state State, sink EventSink) State {
	last, ok := state.Conversation.Last().(convo.AssistantMessage)
	if !ok || len(last.ToolCalls) == 0 {
		return l.terminateFailed(state, sink, "executing tools with no pending tool calls")
	}

	messages, aerr := executeTools(ctx, last.ToolCalls, l.cfg.Tools, l.cfg.Strategy, l.cfg.ToolTimeout, l.cfg.ToolTimeoutMode, state.Step, sink)
	if aerr != nil {
		return l.terminateFailed(state, sink, "tool execution: "+aerr.Error())
	}

	for _, m := range messages {
		state.Conversation = state.Conversation.Append(m)
	}

	state.Step++
	state.Status = StatusAwaitingLLM
	return state
}

// complete dispatches to Client.StreamComplete (emitting LLMChunk events)
// or Client.Complete depending on Config.Stream.
func (l *Loop) complete(ctx context.Context, conv convo.Conversation, opts convo.CompletionOptions, step int, sink EventSink) (convo.Completion, *aierrors.Error) {
	if !l.cfg.Stream {
		res := l.cfg.Client.Complete(ctx, conv, opts)
		return res.Unwrap()
	}

	res := l.cfg.Client.StreamComplete(ctx, conv, opts, func(chunk convo.StreamedChunk) {
		if chunk.Content != "" {
			sink(Event{Kind: EventLLMChunk, Step: step, Delta: chunk.Content})
		}
	})
	return res.Unwrap()
}

// toolDefinitions renders every registered tool to the provider-facing
// convo.ToolDefinition shape, with Schema holding the rendered JSON Schema
// map every provider client's buildTools expects.
func toolDefinitions(registry tool.Source) []convo.ToolDefinition {
	defs := registry.List()
	out := make([]convo.ToolDefinition, 0, len(defs))
	for _, d := range defs {
		out = append(out, convo.ToolDefinition{
			Name:        d.Name,
			Description: d.Description,
			Schema:      d.Schema.ToJSONSchema(d.Strict),
			Strict:      d.Strict,
		})
	}
	return out
}

// terminateFailed transitions state to Failed, emits RunComplete, and
// returns it. Reaching Failed is a normal, inspectable outcome (guardrail
// rejection, step limit, provider error, cancellation) rather than a Go
// panic or error return.
func (l *Loop) terminateFailed(state State, sink EventSink, reason string) State {
	state.Status = StatusFailed
	state.FailReason = reason
	sink(Event{Kind: EventRunComplete, Step: state.Step, State: state})
	return state
}
