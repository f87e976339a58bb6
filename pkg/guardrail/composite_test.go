package guardrail_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loomware/agentcore/pkg/aierrors"
	"github.com/loomware/agentcore/pkg/guardrail"
)

func okGuardrail(name string) guardrail.Guardrail {
	return guardrail.Func{
		FuncName: name,
		CheckFn: func(_ context.Context, text string) guardrail.Result {
			return guardrail.Ok(text)
		},
	}
}

func failGuardrail(name, msg string) guardrail.Guardrail {
	return guardrail.Func{
		FuncName: name,
		CheckFn: func(_ context.Context, text string) guardrail.Result {
			return guardrail.Fail(aierrors.NewValidation("text", msg))
		},
	}
}

func warnGuardrail(name string) guardrail.Guardrail {
	return guardrail.Func{
		FuncName: name,
		CheckFn: func(_ context.Context, text string) guardrail.Result {
			return guardrail.Warn(text + "-warned")
		},
	}
}

func TestAllPassesWhenEveryGuardrailPasses(t *testing.T) {
	t.Parallel()

	g := guardrail.All("all-ok", okGuardrail("a"), okGuardrail("b"))
	res := g.Check(t.Context(), "hello")
	assert.Equal(t, guardrail.OutcomeOk, res.Outcome)
}

func TestAllAccumulatesEveryFailure(t *testing.T) {
	t.Parallel()

	g := guardrail.All("all-fail",
		failGuardrail("a", "reason-a"),
		okGuardrail("b"),
		failGuardrail("c", "reason-c"),
	)
	res := g.Check(t.Context(), "hello")
	require.Equal(t, guardrail.OutcomeFail, res.Outcome)
	require.NotNil(t, res.Err)
	assert.True(t, strings.Contains(res.Err.Error(), "reason-a"))
	assert.True(t, strings.Contains(res.Err.Error(), "reason-c"))
}

func TestAllPropagatesWarnWhenNoFailure(t *testing.T) {
	t.Parallel()

	g := guardrail.All("all-warn", warnGuardrail("a"), okGuardrail("b"))
	res := g.Check(t.Context(), "hello")
	assert.Equal(t, guardrail.OutcomeWarn, res.Outcome)
	assert.Equal(t, "hello-warned", res.Text)
}

func TestAllChainsTextSerially(t *testing.T) {
	t.Parallel()

	appendSuffix := func(name, suffix string) guardrail.Guardrail {
		return guardrail.Func{
			FuncName: name,
			CheckFn: func(_ context.Context, text string) guardrail.Result {
				return guardrail.Ok(text + suffix)
			},
		}
	}
	g := guardrail.All("all-chain", appendSuffix("a", "-a"), appendSuffix("b", "-b"))
	res := g.Check(t.Context(), "x")
	assert.Equal(t, "x-a-b", res.Text)
}

func TestAnyReturnsFirstPass(t *testing.T) {
	t.Parallel()

	g := guardrail.Any("any-ok", failGuardrail("a", "nope"), okGuardrail("b"), okGuardrail("c"))
	res := g.Check(t.Context(), "hello")
	assert.Equal(t, guardrail.OutcomeOk, res.Outcome)
}

func TestAnyFailsWhenEveryGuardrailFails(t *testing.T) {
	t.Parallel()

	g := guardrail.Any("any-fail", failGuardrail("a", "reason-a"), failGuardrail("b", "reason-b"))
	res := g.Check(t.Context(), "hello")
	require.Equal(t, guardrail.OutcomeFail, res.Outcome)
	assert.True(t, strings.Contains(res.Err.Error(), "reason-a"))
	assert.True(t, strings.Contains(res.Err.Error(), "reason-b"))
}

func TestAnyReturnsWarnWhenNoPassButSomeWarn(t *testing.T) {
	t.Parallel()

	g := guardrail.Any("any-warn", failGuardrail("a", "nope"), warnGuardrail("b"))
	res := g.Check(t.Context(), "hello")
	assert.Equal(t, guardrail.OutcomeWarn, res.Outcome)
}

func TestSequentialShortCircuitsOnFirstFailure(t *testing.T) {
	t.Parallel()

	called := false
	neverRuns := guardrail.Func{
		FuncName: "never",
		CheckFn: func(_ context.Context, text string) guardrail.Result {
			called = true
			return guardrail.Ok(text)
		},
	}

	g := guardrail.Sequential("seq", failGuardrail("a", "stop-here"), neverRuns)
	res := g.Check(t.Context(), "hello")
	require.Equal(t, guardrail.OutcomeFail, res.Outcome)
	assert.False(t, called)
	assert.True(t, strings.Contains(res.Err.Error(), "stop-here"))
}

func TestSequentialCarriesWarnForward(t *testing.T) {
	t.Parallel()

	g := guardrail.Sequential("seq-warn", warnGuardrail("a"), okGuardrail("b"))
	res := g.Check(t.Context(), "hello")
	assert.Equal(t, guardrail.OutcomeWarn, res.Outcome)
	assert.Equal(t, "hello-warned", res.Text)
}

func TestSequentialPassesWhenAllPass(t *testing.T) {
	t.Parallel()

	g := guardrail.Sequential("seq-ok", okGuardrail("a"), okGuardrail("b"))
	res := g.Check(t.Context(), "hello")
	assert.Equal(t, guardrail.OutcomeOk, res.Outcome)
}
