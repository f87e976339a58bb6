package agent

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loomware/agentcore/pkg/convo"
	"github.com/loomware/agentcore/pkg/tool"
)

func echoTool(name string, delay time.Duration) tool.Definition {
	return tool.Definition{
		Name:   name,
		Schema: tool.Object(nil, nil, ""),
		Handler: func(ctx context.Context, args map[string]any) (any, error) {
			if delay > 0 {
				select {
				case <-time.After(delay):
				case <-ctx.Done():
					return nil, ctx.Err()
				}
			}
			return name + "-result", nil
		},
	}
}

func TestExecuteToolsSequentialPreservesOrder(t *testing.T) {
	t.Parallel()

	registry := tool.NewRegistry()
	require.Nil(t, registry.Register(echoTool("a", 0)))
	require.Nil(t, registry.Register(echoTool("b", 0)))
	require.Nil(t, registry.Register(echoTool("c", 0)))

	calls := []convo.ToolCall{
		{ID: "1", Name: "a"}, {ID: "2", Name: "b"}, {ID: "3", Name: "c"},
	}

	msgs, aerr := executeTools(t.Context(), calls, registry, Sequential(), 0, "", 0, noopSink)
	require.Nil(t, aerr)
	require.Len(t, msgs, 3)
	assert.Equal(t, "1", msgs[0].ToolCallID)
	assert.Equal(t, "2", msgs[1].ToolCallID)
	assert.Equal(t, "3", msgs[2].ToolCallID)
}

func TestExecuteToolsParallelPreservesCallOrderRegardlessOfCompletionOrder(t *testing.T) {
	t.Parallel()

	registry := tool.NewRegistry()
	require.Nil(t, registry.Register(echoTool("slow", 30*time.Millisecond)))
	require.Nil(t, registry.Register(echoTool("fast", 0)))

	calls := []convo.ToolCall{
		{ID: "slow-call", Name: "slow"},
		{ID: "fast-call", Name: "fast"},
	}

	msgs, aerr := executeTools(t.Context(), calls, registry, Parallel(), 0, "", 0, noopSink)
	require.Nil(t, aerr)
	require.Len(t, msgs, 2)
	assert.Equal(t, "slow-call", msgs[0].ToolCallID)
	assert.Equal(t, "fast-call", msgs[1].ToolCallID)
}

func TestExecuteToolsParallelWithLimitCapsConcurrency(t *testing.T) {
	t.Parallel()

	registry := tool.NewRegistry()
	var inFlight int32
	var maxObserved int32

	for _, name := range []string{"t1", "t2", "t3", "t4"} {
		n := name
		require.Nil(t, registry.Register(tool.Definition{
			Name:   n,
			Schema: tool.Object(nil, nil, ""),
			Handler: func(ctx context.Context, args map[string]any) (any, error) {
				cur := atomic.AddInt32(&inFlight, 1)
				defer atomic.AddInt32(&inFlight, -1)
				for {
					observed := atomic.LoadInt32(&maxObserved)
					if cur <= observed || atomic.CompareAndSwapInt32(&maxObserved, observed, cur) {
						break
					}
				}
				time.Sleep(10 * time.Millisecond)
				return n, nil
			},
		}))
	}

	calls := []convo.ToolCall{
		{ID: "1", Name: "t1"}, {ID: "2", Name: "t2"}, {ID: "3", Name: "t3"}, {ID: "4", Name: "t4"},
	}

	_, aerr := executeTools(t.Context(), calls, registry, ParallelWithLimit(2), 0, "", 0, noopSink)
	require.Nil(t, aerr)
	assert.LessOrEqual(t, atomic.LoadInt32(&maxObserved), int32(2))
}

func TestExecuteToolsSyntheticErrorOnTimeoutContinuesStep(t *testing.T) {
	t.Parallel()

	registry := tool.NewRegistry()
	require.Nil(t, registry.Register(echoTool("slow", 50*time.Millisecond)))

	calls := []convo.ToolCall{{ID: "1", Name: "slow"}}

	msgs, aerr := executeTools(t.Context(), calls, registry, Sequential(), 5*time.Millisecond, ToolTimeoutSyntheticError, 0, noopSink)
	require.Nil(t, aerr)
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0].Content, "timed out")
}

func TestExecuteToolsAbortStepOnTimeout(t *testing.T) {
	t.Parallel()

	registry := tool.NewRegistry()
	require.Nil(t, registry.Register(echoTool("slow", 50*time.Millisecond)))

	calls := []convo.ToolCall{{ID: "1", Name: "slow"}}

	_, aerr := executeTools(t.Context(), calls, registry, Sequential(), 5*time.Millisecond, ToolTimeoutAbortStep, 0, noopSink)
	require.NotNil(t, aerr)
}

func TestExecuteToolsUnknownFunctionBecomesSyntheticErrorMessage(t *testing.T) {
	t.Parallel()

	registry := tool.NewRegistry()
	calls := []convo.ToolCall{{ID: "1", Name: "does_not_exist"}}

	msgs, aerr := executeTools(t.Context(), calls, registry, Sequential(), 0, "", 0, noopSink)
	require.Nil(t, aerr)
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0].Content, "does_not_exist")
}
