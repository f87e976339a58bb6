// Package openrouter implements the C5 provider client for OpenRouter's
// OpenAI-compatible chat completions endpoint. No pack repo carries an
// OpenRouter client, so this is grounded on pkg/providers/openai's request
// builder/response parser (the wire dialect is the same) generalized for
// OpenRouter's accepting arbitrary, often slash-prefixed, model strings
// and its distinct default base URL and bearer-token header.
package openrouter

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
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
const ProviderName = "openrouter"

const defaultBaseURL = "https://openrouter.ai/api/v1"

// Client implements provider.Client for models routed through OpenRouter.
// ModelID is passed through verbatim to the request body, including any
// vendor prefix ("anthropic/claude-sonnet-4-6") OpenRouter itself uses to
// pick an upstream.
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

// NewClient builds an OpenRouter Client for modelID using cfg (API key +
// optional base URL override).
func NewClient(modelID string, cfg config.ProviderConfig, opts ...Option) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	c := &Client{
		http: httpx.NewClient(httpx.Config{
			BaseURL: baseURL,
			Headers: map[string]string{
				"Authorization": "Bearer " + cfg.APIKey,
			},
		}),
		modelID:  modelID,
		settings: telemetry.DefaultSettings(),
		metrics:  telemetry.NoopRecorder{},
		retry:    retryPolicy(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func retryPolicy() retry.Config {
	cfg := retry.DefaultConfig()
	cfg.ShouldRetry = func(err error) bool { return aierrors.IsRecoverable(err) }
	cfg.RetryAfter = func(err error) time.Duration {
		var aerr *aierrors.Error
		if !errors.As(err, &aerr) {
			return 0
		}
		raw, ok := aerr.Context["retryAfterSeconds"]
		if !ok {
			return 0
		}
		seconds, convErr := strconv.Atoi(raw)
		if convErr != nil {
			return 0
		}
		return time.Duration(seconds) * time.Second
	}
	return cfg
}

func (c *Client) Provider() string       { return ProviderName }
func (c *Client) ModelID() string        { return c.modelID }
func (c *Client) ContextWindow() int     { return defaultContextWindow }
func (c *Client) ReserveCompletion() int { return 4096 }

// Complete sends conv+opts and returns the full Completion.
func (c *Client) Complete(ctx context.Context, conv convo.Conversation, opts convo.CompletionOptions) aierrors.Result[convo.Completion] {
	tracer := telemetry.GetTracer(c.settings)
	attrs := telemetry.BaseAttributes(ProviderName, c.modelID, c.settings)

	start := time.Now()
	result, err := telemetry.RecordSpan(ctx, tracer, telemetry.SpanOptions{
		Name:        "openrouter.complete",
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
		Name:        "openrouter.stream_complete",
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
			return provider.MapDecodeError("failed to decode OpenRouter response", parseErr)
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
				return convo.Completion{}, provider.MapStreamError(ctx, "OpenRouter stream interrupted", nextErr)
			}
			break
		}
		if httpx.IsStreamDone(event) {
			break
		}
		chunk, ok, parseErr := parseStreamChunk(event.Data)
		if parseErr != nil {
			return convo.Completion{}, provider.MapDecodeError("failed to decode OpenRouter stream chunk", parseErr)
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
