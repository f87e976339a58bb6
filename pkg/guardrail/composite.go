package guardrail

import (
	"context"
	"strings"

	"github.com/loomware/agentcore/pkg/aierrors"
)

// All builds an AND composite: every guardrail must pass. Text flows
// serially — each guardrail sees the previous one's (possibly-transformed)
// output — and every failing guardrail's error is accumulated into the
// single returned Fail rather than short-circuiting on the first one, so a
// caller sees every violation at once.
func All(name string, guardrails ...Guardrail) Guardrail {
	return &allComposite{name: name, guardrails: guardrails}
}

type allComposite struct {
	name       string
	guardrails []Guardrail
}

func (c *allComposite) Name() string { return c.name }

func (c *allComposite) Check(ctx context.Context, text string) Result {
	current := text
	warned := false
	var failures []*aierrors.Error

	for _, g := range c.guardrails {
		res := g.Check(ctx, current)
		switch res.Outcome {
		case OutcomeFail:
			failures = append(failures, res.Err)
		case OutcomeWarn:
			warned = true
			current = res.Text
		default:
			current = res.Text
		}
	}

	if len(failures) > 0 {
		return Fail(combineFailures(c.name, failures))
	}
	if warned {
		return Warn(current)
	}
	return Ok(current)
}

// Any builds an OR composite: the first guardrail to pass wins, and its
// (possibly-transformed) text is returned immediately without running the
// rest. If every guardrail fails, every failure is accumulated into the
// returned Fail. A Warn from one guardrail does not short-circuit the
// search for an Ok; it is remembered and returned only if no guardrail
// fully passes.
func Any(name string, guardrails ...Guardrail) Guardrail {
	return &anyComposite{name: name, guardrails: guardrails}
}

type anyComposite struct {
	name       string
	guardrails []Guardrail
}

func (c *anyComposite) Name() string { return c.name }

func (c *anyComposite) Check(ctx context.Context, text string) Result {
	var failures []*aierrors.Error
	var bestWarn *Result

	for _, g := range c.guardrails {
		res := g.Check(ctx, text)
		switch res.Outcome {
		case OutcomeOk:
			return res
		case OutcomeWarn:
			if bestWarn == nil {
				w := res
				bestWarn = &w
			}
		case OutcomeFail:
			failures = append(failures, res.Err)
		}
	}

	if bestWarn != nil {
		return *bestWarn
	}
	return Fail(combineFailures(c.name, failures))
}

// Sequential builds a short-circuiting composite: guardrails run in order
// and the first Fail stops the chain immediately, returning only that
// guardrail's error. A Warn does not stop the chain; it carries forward
// like Ok does in All, and the final Result is Warn if any guardrail along
// the way warned.
func Sequential(name string, guardrails ...Guardrail) Guardrail {
	return &sequentialComposite{name: name, guardrails: guardrails}
}

type sequentialComposite struct {
	name       string
	guardrails []Guardrail
}

func (c *sequentialComposite) Name() string { return c.name }

func (c *sequentialComposite) Check(ctx context.Context, text string) Result {
	current := text
	warned := false

	for _, g := range c.guardrails {
		res := g.Check(ctx, current)
		switch res.Outcome {
		case OutcomeFail:
			return res
		case OutcomeWarn:
			warned = true
			current = res.Text
		default:
			current = res.Text
		}
	}

	if warned {
		return Warn(current)
	}
	return Ok(current)
}

// combineFailures folds every accumulated guardrail error into a single
// non-recoverable Validation error, preserving the first failure as Cause
// so errors.Unwrap still reaches it.
func combineFailures(compositeName string, failures []*aierrors.Error) *aierrors.Error {
	msgs := make([]string, 0, len(failures))
	for _, f := range failures {
		msgs = append(msgs, f.Error())
	}
	var cause error
	if len(failures) > 0 {
		cause = failures[0]
	}
	return aierrors.Wrap(aierrors.KindValidation,
		"guardrail composite '"+compositeName+"' failed: "+strings.Join(msgs, "; "), cause)
}
