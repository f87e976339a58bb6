package aierrors_test

import (
	"errors"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/loomware/agentcore/pkg/aierrors"
)

func TestOkResult(t *testing.T) {
	r := aierrors.Ok(42)

	assert.True(t, r.IsOk())
	assert.False(t, r.IsErr())
	assert.Equal(t, 42, r.Value())
	assert.Nil(t, r.Error())
}

func TestErrResult(t *testing.T) {
	err := aierrors.New(aierrors.KindValidation, "bad input")
	r := aierrors.Err[int](err)

	assert.False(t, r.IsOk())
	assert.True(t, r.IsErr())
	assert.Equal(t, 0, r.Value())
	assert.Equal(t, err, r.Error())
}

func TestResultUnwrap(t *testing.T) {
	v, err := aierrors.Ok("hello").Unwrap()
	assert.Equal(t, "hello", v)
	assert.Nil(t, err)
}

func TestMapTransformsOkValue(t *testing.T) {
	r := aierrors.Ok(10)
	mapped := aierrors.Map(r, func(i int) string { return strconv.Itoa(i * 2) })

	assert.True(t, mapped.IsOk())
	assert.Equal(t, "20", mapped.Value())
}

func TestMapPassesThroughError(t *testing.T) {
	err := aierrors.New(aierrors.KindUnknown, "fail")
	r := aierrors.Err[int](err)
	mapped := aierrors.Map(r, func(i int) string { return "never" })

	assert.True(t, mapped.IsErr())
	assert.Equal(t, err, mapped.Error())
}

func TestOrElseReturnsFallbackOnError(t *testing.T) {
	r := aierrors.Err[int](aierrors.New(aierrors.KindUnknown, "fail"))
	assert.Equal(t, 99, r.OrElse(99))
}

func TestFromErrorWrapsPlainError(t *testing.T) {
	r := aierrors.FromError(0, errors.New("plain"))

	assert.True(t, r.IsErr())
	assert.Equal(t, aierrors.KindUnknown, r.Error().Kind)
}

func TestFromErrorPreservesAIError(t *testing.T) {
	aiErr := aierrors.New(aierrors.KindMCP, "session not found")
	r := aierrors.FromError(0, aiErr)

	assert.True(t, r.IsErr())
	assert.Equal(t, aierrors.KindMCP, r.Error().Kind)
}

func TestContextKindConstructors(t *testing.T) {
	budget := aierrors.NewTokenBudgetExceeded(5000, 4000)
	assert.Equal(t, aierrors.KindContext, budget.Kind)
	assert.False(t, budget.Recoverable())

	empty := aierrors.NewEmptyResult("pruned below minimum")
	assert.Equal(t, aierrors.KindContext, empty.Kind)

	compress := aierrors.NewCompressionFailed("recursive consolidation did not converge")
	assert.Equal(t, aierrors.KindContext, compress.Kind)
}

func TestMCPKindConstructors(t *testing.T) {
	assert.Equal(t, aierrors.KindMCP, aierrors.NewMCPInvalidProtocolVersion("2099-01-01", "2025-06-18").Kind)
	assert.Equal(t, aierrors.KindMCP, aierrors.NewMCPSessionNotFound("sess-1").Kind)

	transport := aierrors.NewMCPTransportError("connection reset", errors.New("eof"))
	assert.True(t, transport.Recoverable())
}

func TestStorageKindConstructors(t *testing.T) {
	mismatch := aierrors.NewDimensionMismatch(1536, 768)
	assert.Equal(t, aierrors.KindStorage, mismatch.Kind)
	assert.False(t, mismatch.Recoverable())

	transient := aierrors.NewStorageTransient("connection dropped", errors.New("eof"))
	assert.True(t, transient.Recoverable())
}

func TestUnknownFunctionAndToolTimeout(t *testing.T) {
	unknown := aierrors.NewUnknownFunction("search_docs")
	assert.Equal(t, "search_docs", unknown.Context["toolName"])

	timeout := aierrors.NewToolTimeout("search_docs", "call_1")
	assert.Equal(t, "call_1", timeout.Context["toolCallId"])
}
