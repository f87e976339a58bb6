package vectorstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreUpsertGetDelete(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := NewMemoryStore()

	rec := VectorRecord{ID: "doc-1", Embedding: []float32{1, 0, 0}, Content: "hello", Metadata: map[string]string{"k": "v"}}
	require.True(t, s.Upsert(ctx, rec).IsOk())

	got, aerr := s.Get(ctx, "doc-1").Unwrap()
	require.Nil(t, aerr)
	assert.Equal(t, "hello", got.Content)

	// Upsert is idempotent by id.
	rec.Content = "updated"
	require.True(t, s.Upsert(ctx, rec).IsOk())
	got, _ = s.Get(ctx, "doc-1").Unwrap()
	assert.Equal(t, "updated", got.Content)
	count, _ := s.Count(ctx).Unwrap()
	assert.Equal(t, 1, count)

	require.True(t, s.Delete(ctx, "doc-1").IsOk())
	_, aerr = s.Get(ctx, "doc-1").Unwrap()
	require.NotNil(t, aerr)
}

func TestMemoryStoreSearchOrdering(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := NewMemoryStore()

	require.True(t, s.Upsert(ctx, VectorRecord{ID: "a", Embedding: []float32{1, 0}}).IsOk())
	require.True(t, s.Upsert(ctx, VectorRecord{ID: "b", Embedding: []float32{0, 1}}).IsOk())
	require.True(t, s.Upsert(ctx, VectorRecord{ID: "c", Embedding: []float32{0.9, 0.1}}).IsOk())

	results, aerr := s.Search(ctx, []float32{1, 0}, 10, All()).Unwrap()
	require.Nil(t, aerr)
	require.Len(t, results, 3)
	assert.Equal(t, "a", results[0].Record.ID)
	assert.Equal(t, "c", results[1].Record.ID)
	assert.Equal(t, "b", results[2].Record.ID)
	for _, r := range results {
		assert.GreaterOrEqual(t, r.Score, 0.0)
		assert.LessOrEqual(t, r.Score, 1.0)
	}
}

func TestMemoryStoreSearchEmptyStore(t *testing.T) {
	t.Parallel()
	s := NewMemoryStore()
	results, aerr := s.Search(context.Background(), []float32{1, 0}, 5, All()).Unwrap()
	require.Nil(t, aerr)
	assert.Empty(t, results)
}

func TestMemoryStoreSearchDimensionMismatch(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := NewMemoryStore()
	require.True(t, s.Upsert(ctx, VectorRecord{ID: "a", Embedding: []float32{1, 0, 0}}).IsOk())

	_, aerr := s.Search(ctx, []float32{1, 0}, 5, All()).Unwrap()
	require.NotNil(t, aerr)
	assert.Equal(t, "Storage", string(aerr.Kind))
}

func TestMemoryStoreSearchWithFilter(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := NewMemoryStore()
	require.True(t, s.Upsert(ctx, VectorRecord{ID: "a", Embedding: []float32{1, 0}, Metadata: map[string]string{"coll": "x"}}).IsOk())
	require.True(t, s.Upsert(ctx, VectorRecord{ID: "b", Embedding: []float32{1, 0}, Metadata: map[string]string{"coll": "y"}}).IsOk())

	results, aerr := s.Search(ctx, []float32{1, 0}, 10, Equals("coll", "y")).Unwrap()
	require.Nil(t, aerr)
	require.Len(t, results, 1)
	assert.Equal(t, "b", results[0].Record.ID)
}

func TestMemoryStoreDeleteByPrefixAndFilter(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := NewMemoryStore()
	require.True(t, s.Upsert(ctx, VectorRecord{ID: "coll-1-doc-1", Metadata: map[string]string{"tag": "a"}}).IsOk())
	require.True(t, s.Upsert(ctx, VectorRecord{ID: "coll-1-doc-2", Metadata: map[string]string{"tag": "b"}}).IsOk())
	require.True(t, s.Upsert(ctx, VectorRecord{ID: "coll-2-doc-1", Metadata: map[string]string{"tag": "a"}}).IsOk())

	n, aerr := s.DeleteByPrefix(ctx, "coll-1-").Unwrap()
	require.Nil(t, aerr)
	assert.Equal(t, 2, n)
	count, _ := s.Count(ctx).Unwrap()
	assert.Equal(t, 1, count)

	n, aerr = s.DeleteByFilter(ctx, Equals("tag", "a")).Unwrap()
	require.Nil(t, aerr)
	assert.Equal(t, 1, n)
	count, _ = s.Count(ctx).Unwrap()
	assert.Equal(t, 0, count)
}

func TestMemoryStoreListPagination(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := NewMemoryStore()
	for _, id := range []string{"a", "b", "c", "d"} {
		require.True(t, s.Upsert(ctx, VectorRecord{ID: id}).IsOk())
	}
	page, aerr := s.List(ctx, ListOptions{Limit: 2, Offset: 1}).Unwrap()
	require.Nil(t, aerr)
	require.Len(t, page, 2)
	assert.Equal(t, "b", page[0].ID)
	assert.Equal(t, "c", page[1].ID)
}

func TestMemoryStoreClearAndClose(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := NewMemoryStore()
	require.True(t, s.Upsert(ctx, VectorRecord{ID: "a"}).IsOk())
	require.True(t, s.Clear(ctx).IsOk())
	count, _ := s.Count(ctx).Unwrap()
	assert.Equal(t, 0, count)
	assert.NoError(t, s.Close())
}
