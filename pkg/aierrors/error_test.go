package aierrors_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/loomware/agentcore/pkg/aierrors"
)

func TestErrorFormatsKindMessageAndContext(t *testing.T) {
	err := aierrors.New(aierrors.KindValidation, "bad field").
		WithContext("field", "name").
		WithContext("expected", "string")

	assert.Equal(t, "Validation: bad field [expected=string, field=name]", err.Error())
}

func TestErrorFormatsWithoutContext(t *testing.T) {
	err := aierrors.New(aierrors.KindCancelled, "run cancelled")
	assert.Equal(t, "Cancelled: run cancelled", err.Error())
}

func TestErrorFormatsCause(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := aierrors.Wrap(aierrors.KindNetwork, "request failed", cause)

	assert.Contains(t, err.Error(), "Network: request failed")
	assert.Contains(t, err.Error(), "caused by: dial tcp: connection refused")
}

func TestUnwrapReturnsCause(t *testing.T) {
	cause := errors.New("boom")
	err := aierrors.Wrap(aierrors.KindUnknown, "wrapped", cause)

	assert.Equal(t, cause, errors.Unwrap(err))
}

func TestKindOfExtractsKindThroughWrapping(t *testing.T) {
	err := aierrors.New(aierrors.KindRateLimit, "too many requests")
	wrapped := errors.Join(errors.New("context"), err)

	assert.Equal(t, aierrors.KindRateLimit, aierrors.KindOf(wrapped))
	assert.Equal(t, aierrors.KindUnknown, aierrors.KindOf(errors.New("plain")))
}

func TestDefaultRecoverabilityPerKind(t *testing.T) {
	assert.False(t, aierrors.New(aierrors.KindAuthentication, "x").Recoverable())
	assert.True(t, aierrors.New(aierrors.KindRateLimit, "x").Recoverable())
	assert.True(t, aierrors.New(aierrors.KindNetwork, "x").Recoverable())
	assert.False(t, aierrors.New(aierrors.KindValidation, "x").Recoverable())
}

func TestIsRecoverableOnNonAIError(t *testing.T) {
	assert.False(t, aierrors.IsRecoverable(errors.New("plain error")))
}

func TestServiceErrorRecoverabilityByStatus(t *testing.T) {
	tests := []struct {
		status      int
		recoverable bool
	}{
		{500, true},
		{502, true},
		{503, true},
		{408, true},
		{429, true},
		{400, false},
		{401, false},
		{404, false},
	}
	for _, tt := range tests {
		err := aierrors.NewService("openai", tt.status, "request failed", "")
		assert.Equal(t, tt.recoverable, err.Recoverable(), "status %d", tt.status)
	}
}

func TestRateLimitErrorCarriesRetryAfter(t *testing.T) {
	retryAfter := 30
	err := aierrors.NewRateLimit("anthropic", "rate limited", &retryAfter)

	assert.Equal(t, "30", err.Context["retryAfterSeconds"])
	assert.True(t, err.Recoverable())
}

func TestNetworkErrorBlockedIsNonRecoverable(t *testing.T) {
	err := aierrors.NewNetwork("blocked host", nil, true)
	assert.False(t, err.Recoverable())
}

func TestIsMatchesSameKind(t *testing.T) {
	a := aierrors.New(aierrors.KindRateLimit, "a")
	b := aierrors.New(aierrors.KindRateLimit, "b")
	c := aierrors.New(aierrors.KindService, "c")

	assert.True(t, errors.Is(a, b))
	assert.False(t, errors.Is(a, c))
}
