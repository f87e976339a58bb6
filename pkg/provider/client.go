// Package provider defines the C5 provider-client contract every model
// backend implements, plus the model-string routing rules used to pick one.
// Grounded on the teacher's pkg/provider/language_model.go (LanguageModel
// interface shape), simplified from the teacher's generate/stream/embed/
// image/speech/transcription surface down to the spec's chat-completion
// contract: complete, streamComplete, contextWindow, reserveCompletion.
package provider

import (
	"context"

	"github.com/loomware/agentcore/pkg/aierrors"
	"github.com/loomware/agentcore/pkg/convo"
)

// OnChunk is invoked in-order, on the calling goroutine, for each chunk of a
// streamed completion.
type OnChunk func(convo.StreamedChunk)

// Client is the public contract every provider backend implements.
type Client interface {
	// Provider returns the provider's routing prefix (e.g. "openai").
	Provider() string

	// ModelID returns the concrete model this client targets.
	ModelID() string

	// ContextWindow returns the model's total context window in tokens.
	ContextWindow() int

	// ReserveCompletion returns the number of tokens reserved for the
	// model's response, subtracted from ContextWindow when budgeting.
	ReserveCompletion() int

	// Complete sends conv+opts and returns the full Completion.
	Complete(ctx context.Context, conv convo.Conversation, opts convo.CompletionOptions) aierrors.Result[convo.Completion]

	// StreamComplete streams the response, invoking onChunk for each delta
	// in order, and returns the final Completion once the stream ends. The
	// final Completion must equal FoldChunks of every chunk passed to
	// onChunk (§8 invariant 2).
	StreamComplete(ctx context.Context, conv convo.Conversation, opts convo.CompletionOptions, onChunk OnChunk) aierrors.Result[convo.Completion]
}
