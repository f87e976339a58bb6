package rag

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/loomware/agentcore/pkg/aierrors"
	"github.com/loomware/agentcore/pkg/vectorstore"
)

// Metadata keys this package writes onto every VectorRecord it ingests, so
// query-time filtering (collection scoping, per-document readable-by) can
// operate purely through vectorstore.Filter without a bespoke storage
// layer.
const (
	MetaCollectionID = "collection_id"
	MetaDocumentID   = "document_id"
	MetaReadableBy   = "readable_by"
	MetaChunkIndex   = "chunk_index"
)

// Chunk is one unit of a document to ingest: its text and a zero-based
// index within the document.
type Chunk struct {
	Index   int
	Content string
}

// Ingester drives ingest/delete against a VectorStore scoped by the
// collection hierarchy.
type Ingester struct {
	Collections *Registry
	Store       vectorstore.VectorStore
	Embed       func(ctx context.Context, text string) ([]float32, error)
}

// NewIngester builds an Ingester.
func NewIngester(collections *Registry, store vectorstore.VectorStore, embed func(ctx context.Context, text string) ([]float32, error)) *Ingester {
	return &Ingester{Collections: collections, Store: store, Embed: embed}
}

// chunkRecordID builds the collision-proof chunk id of spec §4.7:
// "coll-{cid}-{docId}-chunk-{idx}".
func chunkRecordID(collectionID, documentID string, idx int) string {
	return fmt.Sprintf("coll-%s-%s-chunk-%d", collectionID, documentID, idx)
}

// Ingest embeds and upserts chunks into path's collection, rejecting
// non-leaf collections. readableBy is written onto every chunk's metadata
// as an encoded principal list (empty means public).
func (ing *Ingester) Ingest(ctx context.Context, path CollectionPath, documentID string, chunks []Chunk, metadata map[string]string, readableBy []PrincipalID) aierrors.Result[int] {
	coll, ok := ing.Collections.Get(path)
	if !ok {
		return aierrors.Err[int](aierrors.NewValidation("path", "unknown collection").WithContext("path", string(path)))
	}
	if !coll.IsLeaf {
		return aierrors.Err[int](aierrors.NewValidation("path", "cannot ingest into a non-leaf collection").WithContext("path", string(path)))
	}

	readableByEncoded := encodeReadableBy(readableBy)
	records := make([]vectorstore.VectorRecord, 0, len(chunks))
	for _, chunk := range chunks {
		embedding, err := ing.Embed(ctx, chunk.Content)
		if err != nil {
			return aierrors.Err[int](aierrors.NewUnknown("embedding failed", err))
		}
		meta := cloneAndMerge(metadata, map[string]string{
			MetaCollectionID: coll.ID,
			MetaDocumentID:   documentID,
			MetaReadableBy:   readableByEncoded,
			MetaChunkIndex:   fmt.Sprintf("%d", chunk.Index),
		})
		records = append(records, vectorstore.VectorRecord{
			ID:        chunkRecordID(coll.ID, documentID, chunk.Index),
			Embedding: embedding,
			Content:   chunk.Content,
			Metadata:  meta,
		})
	}
	if res := ing.Store.UpsertBatch(ctx, records); res.IsErr() {
		return aierrors.Err[int](res.Error())
	}
	return aierrors.Ok(len(records))
}

// DeleteDocument removes every chunk of documentID within path's
// collection only — deletes never cross a collection boundary.
func (ing *Ingester) DeleteDocument(ctx context.Context, path CollectionPath, documentID string) aierrors.Result[int] {
	coll, ok := ing.Collections.Get(path)
	if !ok {
		return aierrors.Err[int](aierrors.NewValidation("path", "unknown collection").WithContext("path", string(path)))
	}
	filter := vectorstore.And(
		vectorstore.Equals(MetaCollectionID, coll.ID),
		vectorstore.Equals(MetaDocumentID, documentID),
	)
	return ing.Store.DeleteByFilter(ctx, filter)
}

func encodeReadableBy(ids []PrincipalID) string {
	if len(ids) == 0 {
		return ""
	}
	sorted := append([]PrincipalID(nil), ids...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	parts := make([]string, len(sorted))
	for i, id := range sorted {
		parts[i] = fmt.Sprintf("%d", id)
	}
	return "," + strings.Join(parts, ",") + ","
}

func cloneAndMerge(base, overlay map[string]string) map[string]string {
	out := make(map[string]string, len(base)+len(overlay))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range overlay {
		out[k] = v
	}
	return out
}
