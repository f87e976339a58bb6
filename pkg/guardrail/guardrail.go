// Package guardrail implements C7: pre/post text validators that the agent
// loop runs before the first LLM call (on user input) and after each
// assistant textual response (on output), plus AND/OR/short-circuit
// composites and PII/prompt-injection presets. Grounded on this module's
// own aierrors Result/Error taxonomy (pkg/aierrors) and pkg/tool's
// functional-validator shape, since no repo in the retrieval pack
// implements anything resembling an input/output guardrail.
package guardrail

import (
	"context"

	"github.com/loomware/agentcore/pkg/aierrors"
)

// Outcome is the verdict of a single guardrail check.
type Outcome string

const (
	OutcomeOk   Outcome = "ok"
	OutcomeWarn Outcome = "warn"
	OutcomeFail Outcome = "fail"
)

// Result is a guardrail's verdict on one piece of text.
//   - Ok carries a possibly-transformed version of the input (e.g. PII
//     redacted in place).
//   - Warn carries the original, unmodified text; the run continues.
//   - Fail carries the validation error that aborts the run.
type Result struct {
	Outcome Outcome
	Text    string
	Err     *aierrors.Error
}

// Ok builds a passing Result, optionally carrying transformed text.
func Ok(text string) Result { return Result{Outcome: OutcomeOk, Text: text} }

// Warn builds a non-blocking Result that still lets the run proceed.
func Warn(text string) Result { return Result{Outcome: OutcomeWarn, Text: text} }

// Fail builds a blocking Result.
func Fail(err *aierrors.Error) Result { return Result{Outcome: OutcomeFail, Err: err} }

// Guardrail validates or transforms one piece of text, either the initial
// user query (an input guardrail) or an assistant's textual response (an
// output guardrail). The same interface serves both roles; which role a
// Guardrail plays is determined by where the agent loop invokes it.
type Guardrail interface {
	Name() string
	Check(ctx context.Context, text string) Result
}

// Func adapts a plain function into a Guardrail.
type Func struct {
	FuncName string
	CheckFn  func(ctx context.Context, text string) Result
}

func (f Func) Name() string                            { return f.FuncName }
func (f Func) Check(ctx context.Context, text string) Result { return f.CheckFn(ctx, text) }
