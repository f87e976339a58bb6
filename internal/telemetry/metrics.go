package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/metric"
)

// ProviderCallRecord captures the facts about one completed provider
// request that callers may want to export to a metrics sink.
type ProviderCallRecord struct {
	Provider   string
	ModelID    string
	LatencyMs  float64
	PromptTok  int
	OutputTok  int
	ErrorKind  string // empty when the call succeeded
	Recovered  bool   // true when a retry eventually succeeded
}

// MetricsRecorder is the adapter seam for provider-call metrics. Concrete
// sinks (Langfuse, a custom dashboard, ...) are out of scope for this
// module; callers inject an implementation, and OTelRecorder below is the
// one this module ships.
type MetricsRecorder interface {
	RecordProviderCall(ctx context.Context, rec ProviderCallRecord)
}

// NoopRecorder discards every record; it is the default when no recorder is
// injected.
type NoopRecorder struct{}

func (NoopRecorder) RecordProviderCall(context.Context, ProviderCallRecord) {}

// OTelRecorder publishes ProviderCallRecord facts as OpenTelemetry metric
// instruments, so the same data reaches both a structured MetricsRecorder
// and any OTel collector without duplicating instrumentation call sites.
type OTelRecorder struct {
	latency  metric.Float64Histogram
	promptT  metric.Int64Counter
	outputT  metric.Int64Counter
	errors   metric.Int64Counter
}

// NewOTelRecorder builds the instruments used to mirror provider-call
// metrics into the meter GetMeter resolves for settings: a no-op meter when
// telemetry is disabled or settings is nil, the injected meter if set, or
// the global meter otherwise.
func NewOTelRecorder(settings *Settings) (*OTelRecorder, error) {
	meter := GetMeter(settings)

	latency, err := meter.Float64Histogram(
		"agentcore.provider.call.latency",
		metric.WithDescription("Provider call latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}
	promptT, err := meter.Int64Counter(
		"agentcore.provider.tokens.prompt",
		metric.WithDescription("Prompt tokens consumed per provider call"),
	)
	if err != nil {
		return nil, err
	}
	outputT, err := meter.Int64Counter(
		"agentcore.provider.tokens.output",
		metric.WithDescription("Output tokens produced per provider call"),
	)
	if err != nil {
		return nil, err
	}
	errs, err := meter.Int64Counter(
		"agentcore.provider.call.errors",
		metric.WithDescription("Provider call errors by kind"),
	)
	if err != nil {
		return nil, err
	}

	return &OTelRecorder{latency: latency, promptT: promptT, outputT: outputT, errors: errs}, nil
}

func (r *OTelRecorder) RecordProviderCall(ctx context.Context, rec ProviderCallRecord) {
	attrs := BaseAttributes(rec.Provider, rec.ModelID, nil)
	opt := metric.WithAttributes(attrs...)

	r.latency.Record(ctx, rec.LatencyMs, opt)
	r.promptT.Add(ctx, int64(rec.PromptTok), opt)
	r.outputT.Add(ctx, int64(rec.OutputTok), opt)
	if rec.ErrorKind != "" {
		r.errors.Add(ctx, 1, opt)
	}
}
