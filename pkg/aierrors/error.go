package aierrors

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Error is the single structured error type returned by every public
// agentcore API. It generalizes the teacher's sentinel-error-plus-concrete-
// struct pattern (pkg/provider/errors) into one Kind-tagged struct.
type Error struct {
	Kind        Kind
	Message     string
	Context     map[string]string
	Cause       error
	recoverable bool
}

// New builds an Error of the given kind with the kind's default
// recoverability. Use WithRecoverable to override it (e.g. a 4xx Service
// error).
func New(kind Kind, message string) *Error {
	return &Error{
		Kind:        kind,
		Message:     message,
		recoverable: defaultRecoverable[kind],
	}
}

// Wrap builds an Error of the given kind wrapping cause.
func Wrap(kind Kind, message string, cause error) *Error {
	e := New(kind, message)
	e.Cause = cause
	return e
}

// WithContext returns a copy of e with key=value added to its context map.
func (e *Error) WithContext(key, value string) *Error {
	cp := *e
	cp.Context = make(map[string]string, len(e.Context)+1)
	for k, v := range e.Context {
		cp.Context[k] = v
	}
	cp.Context[key] = value
	return &cp
}

// WithRecoverable returns a copy of e with an explicit recoverability
// marker, overriding the kind's default.
func (e *Error) WithRecoverable(recoverable bool) *Error {
	cp := *e
	cp.recoverable = recoverable
	return &cp
}

// Recoverable reports whether a caller may retry the operation that
// produced e.
func (e *Error) Recoverable() bool {
	return e.recoverable
}

// Error implements the error interface, formatting as
// "<Kind>: <message> [k1=v1, k2=v2]" per the taxonomy's user-visible
// contract. Context keys are sorted for deterministic output.
func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Kind))
	b.WriteString(": ")
	b.WriteString(e.Message)

	if len(e.Context) > 0 {
		keys := make([]string, 0, len(e.Context))
		for k := range e.Context {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		pairs := make([]string, 0, len(keys))
		for _, k := range keys {
			pairs = append(pairs, fmt.Sprintf("%s=%s", k, e.Context[k]))
		}
		b.WriteString(" [")
		b.WriteString(strings.Join(pairs, ", "))
		b.WriteString("]")
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteString(")")
	}

	return b.String()
}

// Unwrap returns the underlying cause, if any.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an *Error of the same Kind, supporting
// errors.Is(err, aierrors.New(KindRateLimit, "")).
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Kind == t.Kind
}

// KindOf extracts the Kind from err if it is (or wraps) an *Error,
// otherwise KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// IsRecoverable reports whether err is (or wraps) an *Error marked
// recoverable. Non-Error errors are treated as non-recoverable.
func IsRecoverable(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Recoverable()
	}
	return false
}
