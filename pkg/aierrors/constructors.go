package aierrors

import "strconv"

// NewAuthentication builds a non-recoverable Authentication error for the
// given provider (bad credentials).
func NewAuthentication(provider, message string) *Error {
	return New(KindAuthentication, message).WithContext("provider", provider)
}

// NewRateLimit builds a recoverable RateLimit error, optionally carrying a
// server-reported retry-after hint in seconds.
func NewRateLimit(provider, message string, retryAfterSeconds *int) *Error {
	e := New(KindRateLimit, message).WithContext("provider", provider)
	if retryAfterSeconds != nil {
		e = e.WithContext("retryAfterSeconds", strconv.Itoa(*retryAfterSeconds))
	}
	return e
}

// NewService builds a Service error for an HTTP response, recoverable for
// 5xx/408/429 and non-recoverable for other 4xx per §7.
func NewService(provider string, httpStatus int, message, requestID string) *Error {
	e := New(KindService, message).
		WithContext("provider", provider).
		WithContext("httpStatus", strconv.Itoa(httpStatus))
	if requestID != "" {
		e = e.WithContext("requestId", requestID)
	}
	recoverable := httpStatus >= 500 || httpStatus == 408 || httpStatus == 429
	return e.WithRecoverable(recoverable)
}

// NewNetwork builds a Network error, recoverable unless isBlocked (an
// SSRF/blocklist hit, which is non-recoverable per §7).
func NewNetwork(message string, cause error, isBlocked bool) *Error {
	e := Wrap(KindNetwork, message, cause)
	return e.WithRecoverable(!isBlocked)
}

// NewValidation builds a non-recoverable Validation error for a malformed
// field.
func NewValidation(field, message string) *Error {
	e := New(KindValidation, message)
	if field != "" {
		e = e.WithContext("field", field)
	}
	return e
}

// NewConfiguration builds a non-recoverable Configuration error for a
// missing/invalid config key.
func NewConfiguration(key, message string) *Error {
	e := New(KindConfiguration, message)
	if key != "" {
		e = e.WithContext("key", key)
	}
	return e
}

// Context-kind sentinels (§4.3 failure modes): TokenBudgetExceeded,
// EmptyResult, CompressionFailed. pkg/ctxwindow's CompressToDigest returns
// no error, so nothing in this module raises CompressionFailed.
func NewTokenBudgetExceeded(totalTokens, budget int) *Error {
	return New(KindContext, "token budget exceeded").
		WithContext("totalTokens", strconv.Itoa(totalTokens)).
		WithContext("budget", strconv.Itoa(budget))
}

func NewEmptyResult(reason string) *Error {
	return New(KindContext, "pruning produced an empty result").WithContext("reason", reason)
}

func NewCompressionFailed(reason string) *Error {
	return New(KindContext, "semantic block compression failed").WithContext("reason", reason)
}

// NewToolExecution builds a non-recoverable ToolExecution error.
func NewToolExecution(toolName, toolCallID, message string, cause error) *Error {
	e := Wrap(KindToolExecution, message, cause).WithContext("toolName", toolName)
	if toolCallID != "" {
		e = e.WithContext("toolCallId", toolCallID)
	}
	return e
}

// NewUnknownFunction builds the ToolRegistry.execute "unknown tool" error.
func NewUnknownFunction(name string) *Error {
	return New(KindToolExecution, "unknown tool").WithContext("toolName", name)
}

// NewToolTimeout builds the per-tool timeout error named in §5.
func NewToolTimeout(toolName, toolCallID string) *Error {
	return New(KindToolExecution, "tool call timed out").
		WithContext("toolName", toolName).
		WithContext("toolCallId", toolCallID)
}

// MCP-kind constructors (§4.5 error mapping).
func NewMCPInvalidProtocolVersion(requested, negotiated string) *Error {
	return New(KindMCP, "invalid protocol version").
		WithContext("requested", requested).
		WithContext("negotiated", negotiated)
}

func NewMCPSessionNotFound(sessionID string) *Error {
	return New(KindMCP, "session not found").WithContext("sessionId", sessionID)
}

func NewMCPTransportError(message string, cause error) *Error {
	return Wrap(KindMCP, message, cause).WithRecoverable(true)
}

func NewMCPMethodNotFound(method string) *Error {
	return New(KindMCP, "method not found").WithContext("method", method)
}

func NewMCPInvalidParams(message string) *Error {
	return New(KindMCP, "invalid params: "+message)
}

func NewMCPServerError(message string) *Error {
	return New(KindMCP, message)
}

func NewMCPToolNotFound(name string) *Error {
	return New(KindMCP, "tool not found").WithContext("toolName", name)
}

// Storage-kind constructors (§4.6).
func NewDimensionMismatch(expected, got int) *Error {
	return New(KindStorage, "embedding dimension mismatch").
		WithContext("expected", strconv.Itoa(expected)).
		WithContext("got", strconv.Itoa(got))
}

func NewStorageTransient(message string, cause error) *Error {
	return Wrap(KindStorage, message, cause).WithRecoverable(true)
}

// NewCancelled builds the terminal, non-recoverable Cancelled error
// surfaced at a suspension point when the caller's context is done.
func NewCancelled(reason string) *Error {
	return New(KindCancelled, reason)
}

// NewUnknown wraps an unclassified cause.
func NewUnknown(message string, cause error) *Error {
	return Wrap(KindUnknown, message, cause)
}
