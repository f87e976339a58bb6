package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// SpanOptions configures a telemetry span.
type SpanOptions struct {
	// Name is the operation name for the span.
	Name string

	// Attributes are key-value pairs attached to the span.
	Attributes []attribute.KeyValue

	// EndWhenDone controls whether the span ends automatically on success.
	EndWhenDone bool
}

// RecordSpan starts a span, runs fn, and records any returned error on the
// span before ending it. Providers use this around each network round trip;
// the agent loop uses it around each step.
func RecordSpan[T any](
	ctx context.Context,
	tracer trace.Tracer,
	opts SpanOptions,
	fn func(context.Context, trace.Span) (T, error),
) (T, error) {
	ctx, span := tracer.Start(ctx, opts.Name, trace.WithAttributes(opts.Attributes...))

	result, err := fn(ctx, span)
	if err != nil {
		RecordErrorOnSpan(span, err)
		span.End()
		var zero T
		return zero, err
	}

	if opts.EndWhenDone {
		span.End()
	}

	return result, nil
}

// RecordErrorOnSpan records err on span and marks the span status as error.
func RecordErrorOnSpan(span trace.Span, err error) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// BaseAttributes returns the common set of attributes every provider/agent
// span carries: provider, model, function id, and caller-supplied metadata.
// Sensitive request headers (api keys, bearer tokens) are never included.
func BaseAttributes(provider, modelID string, settings *Settings) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String("agentcore.provider", provider),
		attribute.String("agentcore.model.id", modelID),
	}

	if settings == nil {
		return attrs
	}
	if settings.FunctionID != "" {
		attrs = append(attrs, attribute.String("agentcore.function_id", settings.FunctionID))
	}
	for key, value := range settings.Metadata {
		attrs = append(attrs, attribute.KeyValue{
			Key:   attribute.Key("agentcore.metadata." + key),
			Value: value,
		})
	}
	return attrs
}
