package vectorstore

import (
	"context"

	"github.com/loomware/agentcore/pkg/aierrors"
)

// VectorStore is the C9 storage contract. Implementations provide a
// multiple-readers/single-writer concurrency contract (finer locking is
// allowed); writes are idempotent by id (upsert semantics). Close is
// idempotent and releases owned resources.
type VectorStore interface {
	Upsert(ctx context.Context, record VectorRecord) aierrors.Result[struct{}]
	UpsertBatch(ctx context.Context, records []VectorRecord) aierrors.Result[struct{}]
	Get(ctx context.Context, id string) aierrors.Result[VectorRecord]
	GetBatch(ctx context.Context, ids []string) aierrors.Result[[]VectorRecord]
	Delete(ctx context.Context, id string) aierrors.Result[struct{}]
	DeleteBatch(ctx context.Context, ids []string) aierrors.Result[struct{}]
	DeleteByPrefix(ctx context.Context, prefix string) aierrors.Result[int]
	DeleteByFilter(ctx context.Context, filter Filter) aierrors.Result[int]
	Clear(ctx context.Context) aierrors.Result[struct{}]
	List(ctx context.Context, opts ListOptions) aierrors.Result[[]VectorRecord]
	Count(ctx context.Context) aierrors.Result[int]
	Stats(ctx context.Context) aierrors.Result[Stats]
	Search(ctx context.Context, query []float32, topK int, filter Filter) aierrors.Result[[]ScoredRecord]
	Close() error
}
