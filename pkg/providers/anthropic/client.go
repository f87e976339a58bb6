// Package anthropic implements the C5 provider client for Anthropic's
// Messages API. Grounded on the teacher's pkg/providers/anthropic/
// language_model.go (request building, streaming, content-block dialect)
// and provider.go (client construction), generalized from the teacher's
// full DoGenerate/DoStream surface (code execution, context editing, MCP
// containers) down to the spec's complete/streamComplete/contextWindow/
// reserveCompletion contract.
package anthropic

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
const ProviderName = "anthropic"

const (
	defaultBaseURL    = "https://api.anthropic.com/v1"
	anthropicVersion  = "2023-06-01"
	defaultMaxTokens  = 4096 // Anthropic requires max_tokens on every request
)

// Client implements provider.Client for Anthropic Claude models.
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

// NewClient builds an Anthropic Client for modelID using cfg (API key +
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
				"x-api-key":         cfg.APIKey,
				"anthropic-version": anthropicVersion,
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
func (c *Client) ContextWindow() int     { return contextWindowFor(c.modelID) }
func (c *Client) ReserveCompletion() int { return defaultMaxTokens }

// Complete sends conv+opts and returns the full Completion.
func (c *Client) Complete(ctx context.Context, conv convo.Conversation, opts convo.CompletionOptions) aierrors.Result[convo.Completion] {
	tracer := telemetry.GetTracer(c.settings)
	attrs := telemetry.BaseAttributes(ProviderName, c.modelID, c.settings)

	start := time.Now()
	result, err := telemetry.RecordSpan(ctx, tracer, telemetry.SpanOptions{
		Name:        "anthropic.complete",
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
		Name:        "anthropic.stream_complete",
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
		resp, httpErr := c.http.Do(ctx, httpx.Request{Method: http.MethodPost, Path: "/messages", Body: body})
		if httpErr != nil {
			return provider.MapNetworkError(httpErr.Error(), httpErr)
		}
		if resp.StatusCode >= 400 {
			return provider.MapHTTPError(ProviderName, resp.StatusCode, resp.Body, resp.Headers)
		}

		parsed, parseErr := parseCompletionResponse(resp.Body)
		if parseErr != nil {
			return provider.MapDecodeError("failed to decode Anthropic response", parseErr)
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

	resp, err := c.http.DoStream(ctx, httpx.Request{Method: http.MethodPost, Path: "/messages", Body: body})
	if err != nil {
		return convo.Completion{}, provider.MapNetworkError(err.Error(), err)
	}
	defer resp.Body.Close()

	dec := newStreamDecoder()
	parser := httpx.NewSSEParser(resp.Body)
	for {
		event, nextErr := parser.Next()
		if nextErr != nil {
			if !errors.Is(nextErr, io.EOF) {
				return convo.Completion{}, provider.MapStreamError(ctx, "Anthropic stream interrupted", nextErr)
			}
			break
		}
		chunk, ok, parseErr := dec.decode(event)
		if parseErr != nil {
			return convo.Completion{}, provider.MapDecodeError("failed to decode Anthropic stream event", parseErr)
		}
		if !ok {
			continue
		}
		onChunk(chunk)
		dec.chunks = append(dec.chunks, chunk)
	}

	return convo.FoldChunks(dec.chunks), nil
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
