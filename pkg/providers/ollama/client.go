// Package ollama implements the C5 provider client for a local Ollama
// server's OpenAI-compatible chat completions endpoint. Grounded on the
// teacher's pkg/providers/ollama/language_model.go (request building
// against /v1/chat/completions, OpenAI-dialect responses) and provider.go,
// generalized down to the spec's complete/streamComplete/contextWindow/
// reserveCompletion contract. Ollama has no API key by default and the
// endpoint never returns a null message content, so request/response
// conversion constrains content to a plain string rather than OpenAI's
// nullable pointer.
package ollama

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/loomware/agentcore/internal/config"
	"github.com/loomware/agentcore/internal/httpx"
	"github.com/loomware/agentcore/internal/retry"
	"github.com/loomware/agentcore/internal/telemetry"
	"github.com/loomware/agentcore/pkg/aierrors"
	"github.com/loomware/agentcore/pkg/convo"
	"github.com/loomware/agentcore/pkg/provider"
)

// ProviderName is this client's routing prefix.
const ProviderName = "ollama"

const defaultBaseURL = "http://localhost:11434"

// Client implements provider.Client for models served by a local Ollama
// instance.
type Client struct {
	http     *httpx.Client
	modelID  string
	settings *telemetry.Settings
	metrics  telemetry.MetricsRecorder
	retry    retry.Config
}

// Option configures a Client at construction time.
type Option func(*Client)

func WithTelemetrySettings(s *telemetry.Settings) Option {
	return func(c *Client) { c.settings = s }
}

func WithMetricsRecorder(m telemetry.MetricsRecorder) Option {
	return func(c *Client) { c.metrics = m }
}

func WithRetryConfig(cfg retry.Config) Option {
	return func(c *Client) { c.retry = cfg }
}

// NewClient builds an Ollama Client for modelID using cfg (BaseURL only;
// Ollama takes no API key).
func NewClient(modelID string, cfg config.ProviderConfig, opts ...Option) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	c := &Client{
		http:     httpx.NewClient(httpx.Config{BaseURL: baseURL + "/v1"}),
		modelID:  modelID,
		settings: telemetry.DefaultSettings(),
		metrics:  telemetry.NoopRecorder{},
		retry:    retry.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Provider() string       { return ProviderName }
func (c *Client) ModelID() string        { return c.modelID }
func (c *Client) ContextWindow() int     { return contextWindowFor(c.modelID) }
func (c *Client) ReserveCompletion() int { return 2048 }

// Complete sends conv+opts and returns the full Completion.
func (c *Client) Complete(ctx context.Context, conv convo.Conversation, opts convo.CompletionOptions) aierrors.Result[convo.Completion] {
	tracer := telemetry.GetTracer(c.settings)
	attrs := telemetry.BaseAttributes(ProviderName, c.modelID, c.settings)

	start := time.Now()
	result, err := telemetry.RecordSpan(ctx, tracer, telemetry.SpanOptions{
		Name:        "ollama.complete",
		Attributes:  attrs,
		EndWhenDone: true,
	}, func(ctx context.Context, _ trace.Span) (convo.Completion, error) {
		return c.doComplete(ctx, conv, opts)
	})

	c.record(ctx, start, result, err)
	return toResult(result, err)
}

// StreamComplete streams the response via SSE, invoking onChunk per delta.
func (c *Client) StreamComplete(ctx context.Context, conv convo.Conversation, opts convo.CompletionOptions, onChunk provider.OnChunk) aierrors.Result[convo.Completion] {
	tracer := telemetry.GetTracer(c.settings)
	attrs := telemetry.BaseAttributes(ProviderName, c.modelID, c.settings)

	start := time.Now()
	result, err := telemetry.RecordSpan(ctx, tracer, telemetry.SpanOptions{
		Name:        "ollama.stream_complete",
		Attributes:  attrs,
		EndWhenDone: true,
	}, func(ctx context.Context, _ trace.Span) (convo.Completion, error) {
		return c.doStream(ctx, conv, opts, onChunk)
	})

	c.record(ctx, start, result, err)
	return toResult(result, err)
}

func (c *Client) record(ctx context.Context, start time.Time, result convo.Completion, err error) {
	rec := telemetry.ProviderCallRecord{
		Provider:  ProviderName,
		ModelID:   c.modelID,
		LatencyMs: float64(time.Since(start).Milliseconds()),
	}
	if result.Usage != nil {
		rec.PromptTok = result.Usage.PromptTokens
		rec.OutputTok = result.Usage.CompletionTokens
	}
	if err != nil {
		var aerr *aierrors.Error
		if errors.As(err, &aerr) {
			rec.ErrorKind = string(aerr.Kind)
		} else {
			rec.ErrorKind = "Unknown"
		}
	}
	c.metrics.RecordProviderCall(ctx, rec)
}

func (c *Client) doComplete(ctx context.Context, conv convo.Conversation, opts convo.CompletionOptions) (convo.Completion, error) {
	body := buildRequestBody(c.modelID, conv, opts, false)

	var result convo.Completion
	retryErr := retry.Do(ctx, c.retry, func(ctx context.Context) error {
		resp, httpErr := c.http.Do(ctx, httpx.Request{Method: http.MethodPost, Path: "/chat/completions", Body: body})
		if httpErr != nil {
			return provider.MapNetworkError(httpErr.Error(), httpErr)
		}
		if resp.StatusCode >= 400 {
			return provider.MapHTTPError(ProviderName, resp.StatusCode, resp.Body, resp.Headers)
		}

		parsed, parseErr := parseCompletionResponse(resp.Body)
		if parseErr != nil {
			return provider.MapDecodeError("failed to decode Ollama response", parseErr)
		}
		result = parsed
		return nil
	})
	if retryErr != nil {
		return convo.Completion{}, retryErr
	}
	return result, nil
}

func (c *Client) doStream(ctx context.Context, conv convo.Conversation, opts convo.CompletionOptions, onChunk provider.OnChunk) (convo.Completion, error) {
	body := buildRequestBody(c.modelID, conv, opts, true)

	resp, err := c.http.DoStream(ctx, httpx.Request{Method: http.MethodPost, Path: "/chat/completions", Body: body})
	if err != nil {
		return convo.Completion{}, provider.MapNetworkError(err.Error(), err)
	}
	defer resp.Body.Close()

	var chunks []convo.StreamedChunk
	parser := httpx.NewSSEParser(resp.Body)
	for {
		event, nextErr := parser.Next()
		if nextErr != nil {
			if !errors.Is(nextErr, io.EOF) {
				return convo.Completion{}, provider.MapStreamError(ctx, "Ollama stream interrupted", nextErr)
			}
			break
		}
		if httpx.IsStreamDone(event) {
			break
		}
		chunk, ok, parseErr := parseStreamChunk(event.Data)
		if parseErr != nil {
			return convo.Completion{}, provider.MapDecodeError("failed to decode Ollama stream chunk", parseErr)
		}
		if !ok {
			continue
		}
		onChunk(chunk)
		chunks = append(chunks, chunk)
	}

	return convo.FoldChunks(chunks), nil
}

func toResult(c convo.Completion, err error) aierrors.Result[convo.Completion] {
	if err == nil {
		return aierrors.Ok(c)
	}
	var aerr *aierrors.Error
	if errors.As(err, &aerr) {
		return aierrors.Err[convo.Completion](aerr)
	}
	return aierrors.Err[convo.Completion](aierrors.NewUnknown(err.Error(), err))
}
