package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/loomware/agentcore/pkg/aierrors"
	"github.com/loomware/agentcore/pkg/convo"
	"github.com/loomware/agentcore/pkg/tool"
)

// ToolTimeoutMode controls what happens when a single tool call exceeds its
// configured timeout.
type ToolTimeoutMode string

const (
	// ToolTimeoutAbortStep fails the whole step when any call times out.
	ToolTimeoutAbortStep ToolTimeoutMode = "abort_step"
	// ToolTimeoutSyntheticError appends a Tool message carrying a timeout
	// error for the timed-out call and lets the step proceed with the rest.
	ToolTimeoutSyntheticError ToolTimeoutMode = "synthetic_error"
)

// toolOutcome is one call's result, kept alongside its original index so
// results can be appended to the conversation in toolCalls order regardless
// of which goroutine finished first.
type toolOutcome struct {
	message convo.ToolMessage
	err     *aierrors.Error // set only when the step must abort (timeout under ToolTimeoutAbortStep, or cancellation)
}

// executeTools runs every call in toolCalls according to strategy, calling
// sink with ToolCallStart/ToolCallEnd around each one, and returns the
// resulting Tool messages in toolCalls order. If sink returns false or ctx
// is cancelled before a call starts, that call (and the rest) are reported
// as Cancelled. If any call aborts the step (timeout under
// ToolTimeoutAbortStep, or cancellation), the first such error is returned
// and the caller should transition to Failed. Other execution errors
// (unknown tool, invalid arguments, handler failure) do not abort the step:
// each becomes a Tool message carrying the error text.
func executeTools(
	ctx context.Context,
	calls []convo.ToolCall,
	registry tool.Source,
	strategy Strategy,
	perCallTimeout time.Duration,
	timeoutMode ToolTimeoutMode,
	step int,
	sink EventSink,
) ([]convo.ToolMessage, *aierrors.Error) {
	n := len(calls)
	outcomes := make([]toolOutcome, n)

	limit := strategy.concurrency(n)
	if limit <= 0 {
		limit = 1
	}
	sem := make(chan struct{}, limit)
	var wg sync.WaitGroup
	var mu sync.Mutex
	var aborted *aierrors.Error

	for i, call := range calls {
		mu.Lock()
		stop := aborted != nil
		mu.Unlock()
		if stop {
			break
		}
		if ctx.Err() != nil || !sink(Event{Kind: EventToolCallStart, Step: step, ToolCallID: call.ID, ToolName: call.Name}) {
			outcomes[i] = toolOutcome{err: aierrors.NewCancelled("run cancelled before tool call " + call.ID)}
			mu.Lock()
			if aborted == nil {
				aborted = outcomes[i].err
			}
			mu.Unlock()
			continue
		}

		sem <- struct{}{}
		wg.Add(1)
		go func(idx int, call convo.ToolCall) {
			defer wg.Done()
			defer func() { <-sem }()

			msg, execErr := runOneTool(ctx, registry, call, perCallTimeout, timeoutMode)

			sink(Event{
				Kind:       EventToolCallEnd,
				Step:       step,
				ToolCallID: call.ID,
				ToolName:   call.Name,
				ToolResult: msg.Content,
				ToolErr:    execErr,
			})

			mu.Lock()
			outcomes[idx] = toolOutcome{message: msg, err: execErr}
			if execErr != nil && aborted == nil {
				aborted = execErr
			}
			mu.Unlock()
		}(i, call)
	}
	wg.Wait()

	if aborted != nil {
		return nil, aborted
	}

	messages := make([]convo.ToolMessage, 0, n)
	for _, o := range outcomes {
		messages = append(messages, o.message)
	}
	return messages, nil
}

// runOneTool executes a single tool call, applying perCallTimeout if set.
// Under ToolTimeoutAbortStep a timeout is returned as a non-nil
// *aierrors.Error that the caller must treat as step-aborting; under
// ToolTimeoutSyntheticError it instead becomes a Tool message carrying the
// timeout's error text, and the step continues.
func runOneTool(
	ctx context.Context,
	registry tool.Source,
	call convo.ToolCall,
	perCallTimeout time.Duration,
	timeoutMode ToolTimeoutMode,
) (convo.ToolMessage, *aierrors.Error) {
	callCtx := ctx
	var cancel context.CancelFunc
	if perCallTimeout > 0 {
		callCtx, cancel = context.WithTimeout(ctx, perCallTimeout)
		defer cancel()
	}

	result, aerr := tool.Execute(callCtx, registry, tool.Request{
		FunctionName: call.Name,
		Arguments:    call.Arguments,
	})

	if aerr != nil {
		if callCtx.Err() != nil && perCallTimeout > 0 {
			timeoutErr := aierrors.NewToolTimeout(call.Name, call.ID)
			if timeoutMode == ToolTimeoutAbortStep {
				return convo.ToolMessage{}, timeoutErr
			}
			return convo.ToolMessage{
				Content:    timeoutErr.Error(),
				ToolCallID: call.ID,
			}, nil
		}
		return convo.ToolMessage{
			Content:    aerr.Error(),
			ToolCallID: call.ID,
		}, nil
	}

	return convo.ToolMessage{
		Content:     renderToolResult(result.Value),
		ToolCallID:  call.ID,
		Annotations: result.Annotations,
	}, nil
}

// renderToolResult serializes a tool handler's return value to the JSON
// text a Tool message carries, falling back to fmt.Sprint for values that
// cannot be marshaled. A string value is used as-is, without JSON quoting.
func renderToolResult(value any) string {
	if s, ok := value.(string); ok {
		return s
	}
	b, err := json.Marshal(value)
	if err != nil {
		return fmt.Sprint(value)
	}
	return string(b)
}
