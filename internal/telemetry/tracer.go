package telemetry

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

// InstrumentationName identifies agentcore's spans and metrics to a
// collector.
const InstrumentationName = "agentcore"

// GetTracer returns the tracer to use for the given settings: a no-op
// tracer when telemetry is disabled, the injected tracer if one was set, or
// the global tracer otherwise.
func GetTracer(settings *Settings) trace.Tracer {
	if settings == nil || !settings.IsEnabled {
		return tracenoop.NewTracerProvider().Tracer(InstrumentationName)
	}
	if settings.Tracer != nil {
		return settings.Tracer
	}
	return otel.Tracer(InstrumentationName)
}

// GetMeter returns the meter to use for the given settings, following the
// same enabled/injected/global resolution as GetTracer.
func GetMeter(settings *Settings) metric.Meter {
	if settings == nil || !settings.IsEnabled {
		return noop.NewMeterProvider().Meter(InstrumentationName)
	}
	if settings.Meter != nil {
		return settings.Meter
	}
	return otel.Meter(InstrumentationName)
}
