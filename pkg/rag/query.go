package rag

import (
	"context"

	"github.com/loomware/agentcore/pkg/aierrors"
	"github.com/loomware/agentcore/pkg/hybrid"
	"github.com/loomware/agentcore/pkg/vectorstore"
)

// Query describes a permissioned RAG search request.
type Query struct {
	Auth           UserAuthorization
	Pattern        CollectionPattern
	QueryEmbedding []float32
	QueryText      string
	TopK           int
	Strategy       hybrid.Strategy
}

// Querier resolves a CollectionPattern against the registry, restricts
// search to the caller's accessible leaf collections, and executes a
// hybrid search per spec §4.7's three-step query flow.
type Querier struct {
	Collections *Registry
	Search      *hybrid.Searcher
}

// NewQuerier builds a Querier.
func NewQuerier(collections *Registry, search *hybrid.Searcher) *Querier {
	return &Querier{Collections: collections, Search: search}
}

// Run executes q: resolve the pattern to accessible leaf collections, then
// search constrained to collection_id ∈ accessible and (unless admin)
// readable_by = ∅ ∨ readable_by ∩ auth ≠ ∅.
func (qr *Querier) Run(ctx context.Context, q Query) aierrors.Result[[]hybrid.Match] {
	accessible := qr.Collections.Accessible(q.Pattern, q.Auth)
	if len(accessible) == 0 {
		return aierrors.Ok([]hybrid.Match{})
	}
	collectionIDs := make([]string, len(accessible))
	for i, c := range accessible {
		collectionIDs[i] = c.ID
	}

	filter := vectorstore.And(
		vectorstore.In(MetaCollectionID, collectionIDs),
		readableByFilter(q.Auth),
	)

	return qr.Search.Search(ctx, q.QueryEmbedding, q.QueryText, q.TopK, filter, q.Strategy)
}

// readableByFilter builds the per-document visibility constraint: public
// chunks (empty/absent readable_by) always pass; admins additionally pass
// everything; otherwise the caller must hold at least one of the encoded
// principal ids.
func readableByFilter(auth UserAuthorization) vectorstore.Filter {
	if auth.IsAdmin {
		return vectorstore.All()
	}
	public := vectorstore.Or(
		vectorstore.Not(vectorstore.HasKey(MetaReadableBy)),
		vectorstore.Equals(MetaReadableBy, ""),
	)
	ors := []vectorstore.Filter{public}
	for id := range auth.PrincipalIDs {
		ors = append(ors, vectorstore.Contains(MetaReadableBy, encodeReadableBy([]PrincipalID{id})))
	}
	return vectorstore.Or(ors...)
}
