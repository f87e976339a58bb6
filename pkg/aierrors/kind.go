// Package aierrors defines the error taxonomy used across agentcore: a
// single Kind-tagged Error struct carrying a recoverability marker and
// free-form context, plus the Result[T] generic every public API returns
// instead of relying on panics.
package aierrors

// Kind classifies an Error so callers can branch on failure category
// without string-matching messages.
type Kind string

const (
	KindAuthentication Kind = "Authentication"
	KindRateLimit      Kind = "RateLimit"
	KindService        Kind = "Service"
	KindNetwork        Kind = "Network"
	KindValidation     Kind = "Validation"
	KindConfiguration  Kind = "Configuration"
	KindContext        Kind = "Context"
	KindToolExecution  Kind = "ToolExecution"
	KindMCP            Kind = "MCP"
	KindStorage        Kind = "Storage"
	KindCancelled      Kind = "Cancelled"
	KindUnknown        Kind = "Unknown"
)

// defaultRecoverable gives each Kind its default recoverability per the
// taxonomy; WithRecoverable overrides this when a caller knows better (e.g. a 4xx
// Service error is non-recoverable while a 5xx one is).
var defaultRecoverable = map[Kind]bool{
	KindAuthentication: false,
	KindRateLimit:      true,
	KindService:        true,
	KindNetwork:        true,
	KindValidation:     false,
	KindConfiguration:  false,
	KindContext:        false,
	KindToolExecution:  false,
	KindMCP:            false,
	KindStorage:        false,
	KindCancelled:      false,
	KindUnknown:        false,
}
