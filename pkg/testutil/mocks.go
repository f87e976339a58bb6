// Package testutil provides mock implementations for testing code that
// depends on the C5 provider contract without a live HTTP backend.
package testutil

import (
	"context"
	"sync"

	"github.com/loomware/agentcore/pkg/aierrors"
	"github.com/loomware/agentcore/pkg/convo"
	"github.com/loomware/agentcore/pkg/provider"
)

// MockClient is a mock implementation of provider.Client for testing the
// agent loop, registry, and guardrail callers without a live provider.
type MockClient struct {
	ProviderName string
	ModelName    string
	Window       int
	Reserve      int

	CompleteFunc func(ctx context.Context, conv convo.Conversation, opts convo.CompletionOptions) aierrors.Result[convo.Completion]
	StreamFunc   func(ctx context.Context, conv convo.Conversation, opts convo.CompletionOptions, onChunk provider.OnChunk) aierrors.Result[convo.Completion]

	mu            sync.Mutex
	CompleteCalls []convo.Conversation
	StreamCalls   []convo.Conversation
}

func (m *MockClient) Provider() string {
	if m.ProviderName == "" {
		return "mock"
	}
	return m.ProviderName
}

func (m *MockClient) ModelID() string {
	if m.ModelName == "" {
		return "mock-model"
	}
	return m.ModelName
}

func (m *MockClient) ContextWindow() int {
	if m.Window == 0 {
		return 128_000
	}
	return m.Window
}

func (m *MockClient) ReserveCompletion() int {
	if m.Reserve == 0 {
		return 2048
	}
	return m.Reserve
}

// Complete records the conversation it was called with and either defers to
// CompleteFunc or returns a canned Ok completion.
func (m *MockClient) Complete(ctx context.Context, conv convo.Conversation, opts convo.CompletionOptions) aierrors.Result[convo.Completion] {
	m.mu.Lock()
	m.CompleteCalls = append(m.CompleteCalls, conv)
	m.mu.Unlock()

	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, conv, opts)
	}
	return aierrors.Ok(convo.Completion{
		Content:      "mock response",
		FinishReason: convo.FinishStop,
		Usage:        &convo.TokenUsage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15},
	})
}

// StreamComplete records the conversation it was called with and either
// defers to StreamFunc or replays two canned chunks through onChunk.
func (m *MockClient) StreamComplete(ctx context.Context, conv convo.Conversation, opts convo.CompletionOptions, onChunk provider.OnChunk) aierrors.Result[convo.Completion] {
	m.mu.Lock()
	m.StreamCalls = append(m.StreamCalls, conv)
	m.mu.Unlock()

	if m.StreamFunc != nil {
		return m.StreamFunc(ctx, conv, opts, onChunk)
	}
	chunks := []convo.StreamedChunk{
		{Content: "mock "},
		{Content: "response", FinishReason: convo.FinishStop, Usage: &convo.TokenUsage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15}},
	}
	for _, c := range chunks {
		onChunk(c)
	}
	return aierrors.Ok(convo.FoldChunks(chunks))
}
