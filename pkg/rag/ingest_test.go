package rag

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/loomware/agentcore/pkg/vectorstore"
)

func stubEmbed(ctx context.Context, text string) ([]float32, error) {
	return []float32{float32(len(text)), 1, 0}, nil
}

func buildIngestRegistry(t *testing.T) *Registry {
	t.Helper()
	r := NewRegistry()
	require.True(t, r.Put(Collection{ID: "docs", Path: "docs", IsLeaf: true}).IsOk())
	require.True(t, r.Put(Collection{ID: "parent", Path: "parent"}).IsOk())
	return r
}

func TestIngestRejectsNonLeafCollection(t *testing.T) {
	r := buildIngestRegistry(t)
	store := vectorstore.NewMemoryStore()
	ing := NewIngester(r, store, stubEmbed)

	res := ing.Ingest(context.Background(), "parent", "doc-1", []Chunk{{Index: 0, Content: "hello"}}, nil, nil)
	require.True(t, res.IsErr())
}

func TestIngestWritesChunkIDsAndMetadata(t *testing.T) {
	r := buildIngestRegistry(t)
	store := vectorstore.NewMemoryStore()
	ing := NewIngester(r, store, stubEmbed)

	n, aerr := ing.Ingest(context.Background(), "docs", "doc-1", []Chunk{
		{Index: 0, Content: "hello"},
		{Index: 1, Content: "world"},
	}, map[string]string{"title": "greeting"}, []PrincipalID{1, 2}).Unwrap()
	require.Nil(t, aerr)
	require.Equal(t, 2, n)

	rec, aerr := store.Get(context.Background(), "coll-docs-doc-1-chunk-0").Unwrap()
	require.Nil(t, aerr)
	require.Equal(t, "hello", rec.Content)
	require.Equal(t, "docs", rec.Metadata[MetaCollectionID])
	require.Equal(t, "doc-1", rec.Metadata[MetaDocumentID])
	require.Equal(t, "greeting", rec.Metadata["title"])
	require.Equal(t, ",1,2,", rec.Metadata[MetaReadableBy])
}

func TestDeleteDocumentScopesByCollectionAndDocumentID(t *testing.T) {
	r := buildIngestRegistry(t)
	store := vectorstore.NewMemoryStore()
	ing := NewIngester(r, store, stubEmbed)

	_, aerr := ing.Ingest(context.Background(), "docs", "doc-1", []Chunk{{Index: 0, Content: "a"}}, nil, nil).Unwrap()
	require.Nil(t, aerr)
	_, aerr = ing.Ingest(context.Background(), "docs", "doc-2", []Chunk{{Index: 0, Content: "b"}}, nil, nil).Unwrap()
	require.Nil(t, aerr)

	n, aerr := ing.DeleteDocument(context.Background(), "docs", "doc-1").Unwrap()
	require.Nil(t, aerr)
	require.Equal(t, 1, n)
	count, aerr := store.Count(context.Background()).Unwrap()
	require.Nil(t, aerr)
	require.Equal(t, 1, count)
}

func TestEncodeReadableByEmptyIsEmptyString(t *testing.T) {
	require.Equal(t, "", encodeReadableBy(nil))
	require.Equal(t, ",5,", encodeReadableBy([]PrincipalID{5}))
}
