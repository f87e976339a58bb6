// Package telemetry provides OpenTelemetry integration for agentcore. It
// tracks provider calls, agent steps, and tool executions with customizable
// spans, attributes, and metrics.
package telemetry

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Settings configures telemetry for agentcore operations. Telemetry is
// disabled by default and must be explicitly enabled.
type Settings struct {
	// IsEnabled controls whether tracing/metrics are active. Defaults to false.
	IsEnabled bool

	// RecordInputs controls whether request payloads are recorded on spans.
	RecordInputs bool

	// RecordOutputs controls whether response payloads are recorded on spans.
	RecordOutputs bool

	// FunctionID groups telemetry data by calling operation.
	FunctionID string

	// Metadata contains additional key-value pairs attached to every span.
	Metadata map[string]attribute.Value

	// Tracer is a custom tracer. If nil, the global tracer is used.
	Tracer trace.Tracer

	// Meter is a custom meter. If nil, the global meter is used.
	Meter metric.Meter
}

// DefaultSettings returns Settings with sensible defaults (disabled).
func DefaultSettings() *Settings {
	return &Settings{
		IsEnabled:     false,
		RecordInputs:  true,
		RecordOutputs: true,
		Metadata:      make(map[string]attribute.Value),
	}
}

// WithEnabled returns a copy of Settings with IsEnabled set.
func (s *Settings) WithEnabled(enabled bool) *Settings {
	cp := *s
	cp.IsEnabled = enabled
	return &cp
}

// WithFunctionID returns a copy of Settings with FunctionID set.
func (s *Settings) WithFunctionID(id string) *Settings {
	cp := *s
	cp.FunctionID = id
	return &cp
}

// WithMetadata returns a copy of Settings with metadata merged in.
func (s *Settings) WithMetadata(metadata map[string]attribute.Value) *Settings {
	cp := *s
	cp.Metadata = make(map[string]attribute.Value, len(s.Metadata)+len(metadata))
	for k, v := range s.Metadata {
		cp.Metadata[k] = v
	}
	for k, v := range metadata {
		cp.Metadata[k] = v
	}
	return &cp
}

// WithTracer returns a copy of Settings with Tracer set.
func (s *Settings) WithTracer(tracer trace.Tracer) *Settings {
	cp := *s
	cp.Tracer = tracer
	return &cp
}

// WithMeter returns a copy of Settings with Meter set.
func (s *Settings) WithMeter(meter metric.Meter) *Settings {
	cp := *s
	cp.Meter = meter
	return &cp
}
