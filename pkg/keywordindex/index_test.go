package keywordindex

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loomware/agentcore/pkg/vectorstore"
)

func TestIndexSearchRanksMoreRelevantHigher(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	idx := New()

	require.True(t, idx.Upsert(ctx, "scala-guide", "A complete guide to Scala functional programming patterns", map[string]string{"lang": "scala"}).IsOk())
	require.True(t, idx.Upsert(ctx, "go-guide", "A short note about Go concurrency", map[string]string{"lang": "go"}).IsOk())
	require.True(t, idx.Upsert(ctx, "unrelated", "Baking bread at home", nil).IsOk())

	hits, aerr := idx.Search(ctx, "Scala functional programming", 10, vectorstore.All()).Unwrap()
	require.Nil(t, aerr)
	require.NotEmpty(t, hits)
	assert.Equal(t, "scala-guide", hits[0].ID)
	for _, h := range hits {
		assert.Greater(t, h.Score, 0.0)
	}
}

func TestIndexSearchWithFilter(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	idx := New()
	require.True(t, idx.Upsert(ctx, "a", "golang tutorial", map[string]string{"coll": "x"}).IsOk())
	require.True(t, idx.Upsert(ctx, "b", "golang tutorial", map[string]string{"coll": "y"}).IsOk())

	hits, aerr := idx.Search(ctx, "golang", 10, vectorstore.Equals("coll", "y")).Unwrap()
	require.Nil(t, aerr)
	require.Len(t, hits, 1)
	assert.Equal(t, "b", hits[0].ID)
}

func TestIndexSearchHighlights(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	idx := New()
	require.True(t, idx.Upsert(ctx, "a", "Go is great, Go is fast", nil).IsOk())

	hits, aerr := idx.Search(ctx, "go", 10, vectorstore.All()).Unwrap()
	require.Nil(t, aerr)
	require.Len(t, hits, 1)
	assert.Len(t, hits[0].Highlights, 2)
}

func TestIndexDeleteRemovesFromPostings(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	idx := New()
	require.True(t, idx.Upsert(ctx, "a", "golang tutorial", nil).IsOk())
	require.True(t, idx.Delete(ctx, "a").IsOk())
	assert.Equal(t, 0, idx.Count())

	hits, aerr := idx.Search(ctx, "golang", 10, vectorstore.All()).Unwrap()
	require.Nil(t, aerr)
	assert.Empty(t, hits)
}

func TestIndexSearchEmptyQueryOrIndex(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	idx := New()
	hits, aerr := idx.Search(ctx, "anything", 10, vectorstore.All()).Unwrap()
	require.Nil(t, aerr)
	assert.Empty(t, hits)

	require.True(t, idx.Upsert(ctx, "a", "content", nil).IsOk())
	hits, aerr = idx.Search(ctx, "", 10, vectorstore.All()).Unwrap()
	require.Nil(t, aerr)
	assert.Empty(t, hits)
}
