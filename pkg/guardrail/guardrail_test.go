package guardrail_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/loomware/agentcore/pkg/aierrors"
	"github.com/loomware/agentcore/pkg/guardrail"
)

func TestOkWarnFail(t *testing.T) {
	t.Parallel()

	ok := guardrail.Ok("hello")
	assert.Equal(t, guardrail.OutcomeOk, ok.Outcome)
	assert.Equal(t, "hello", ok.Text)

	warn := guardrail.Warn("hello")
	assert.Equal(t, guardrail.OutcomeWarn, warn.Outcome)

	err := aierrors.NewValidation("text", "bad")
	fail := guardrail.Fail(err)
	assert.Equal(t, guardrail.OutcomeFail, fail.Outcome)
	assert.Same(t, err, fail.Err)
}

func TestFuncAdapter(t *testing.T) {
	t.Parallel()

	g := guardrail.Func{
		FuncName: "uppercase-blocker",
		CheckFn: func(_ context.Context, text string) guardrail.Result {
			if text == "BLOCK" {
				return guardrail.Fail(aierrors.NewValidation("text", "blocked"))
			}
			return guardrail.Ok(text)
		},
	}

	assert.Equal(t, "uppercase-blocker", g.Name())

	res := g.Check(t.Context(), "fine")
	assert.Equal(t, guardrail.OutcomeOk, res.Outcome)

	res = g.Check(t.Context(), "BLOCK")
	assert.Equal(t, guardrail.OutcomeFail, res.Outcome)
}
