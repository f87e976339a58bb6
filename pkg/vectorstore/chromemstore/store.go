// Package chromemstore adapts github.com/philippgille/chromem-go's
// embedded collection into the vectorstore.VectorStore contract — the
// "default in-process VectorStore" the domain stack names in SPEC_FULL.md
// §11. Grounded on simple-container-com-api's pkg/assistant/embeddings/
// embeddings.go, which is the only pack file that drives chromem-go
// end-to-end (NewDB, GetOrCreateCollection, AddDocument, Query, Count).
// Query-by-vector (rather than by text, which chromem-go's embeddingFunc
// path is built for) uses chromem-go's QueryEmbedding, since every
// VectorRecord here already carries a precomputed embedding and never
// needs chromem's own embedding step.
package chromemstore

import (
	"context"
	"fmt"
	"sync"

	chromem "github.com/philippgille/chromem-go"

	"github.com/loomware/agentcore/pkg/aierrors"
	"github.com/loomware/agentcore/pkg/vectorstore"
)

// noopEmbed satisfies chromem's GetOrCreateCollection embeddingFunc
// parameter. It is never actually invoked: every record this store adds
// carries a precomputed embedding, and every query goes through
// QueryEmbedding rather than Query(text).
func noopEmbed(context.Context, string) ([]float32, error) {
	return nil, fmt.Errorf("chromemstore: embedding function should not be invoked; all records/queries carry precomputed vectors")
}

// Store implements vectorstore.VectorStore over an in-process chromem-go
// collection, keeping a side index of VectorRecords for Get/List/Stats
// (chromem-go's own collection API does not expose pagination or the
// metadata-filter algebra this module's Filter supports; those operations
// are served out of the side index, and chromem is used purely as the ANN
// engine backing Search).
type Store struct {
	mu         sync.RWMutex
	db         *chromem.DB
	collection *chromem.Collection
	records    map[string]vectorstore.VectorRecord
	order      []string
}

// New creates a Store with a fresh in-memory chromem-go collection named
// name.
func New(name string) (*Store, error) {
	db := chromem.NewDB()
	collection, err := db.GetOrCreateCollection(name, nil, noopEmbed)
	if err != nil {
		return nil, err
	}
	return &Store{db: db, collection: collection, records: make(map[string]vectorstore.VectorRecord)}, nil
}

func (s *Store) Upsert(ctx context.Context, record vectorstore.VectorRecord) aierrors.Result[struct{}] {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.records[record.ID]; exists {
		_ = s.collection.Delete(ctx, nil, nil, record.ID)
	} else {
		s.order = append(s.order, record.ID)
	}
	err := s.collection.AddDocument(ctx, chromem.Document{
		ID:        record.ID,
		Content:   record.Content,
		Metadata:  record.Metadata,
		Embedding: record.Embedding,
	})
	if err != nil {
		return aierrors.Err[struct{}](aierrors.NewStorageTransient("chromem add document failed", err))
	}
	s.records[record.ID] = cloneRecord(record)
	return aierrors.Ok(struct{}{})
}

func (s *Store) UpsertBatch(ctx context.Context, records []vectorstore.VectorRecord) aierrors.Result[struct{}] {
	for _, r := range records {
		if res := s.Upsert(ctx, r); res.IsErr() {
			return res
		}
	}
	return aierrors.Ok(struct{}{})
}

func (s *Store) Get(_ context.Context, id string) aierrors.Result[vectorstore.VectorRecord] {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.records[id]
	if !ok {
		return aierrors.Err[vectorstore.VectorRecord](aierrors.New(aierrors.KindStorage, "record not found").WithContext("id", id))
	}
	return aierrors.Ok(cloneRecord(r))
}

func (s *Store) GetBatch(_ context.Context, ids []string) aierrors.Result[[]vectorstore.VectorRecord] {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]vectorstore.VectorRecord, 0, len(ids))
	for _, id := range ids {
		if r, ok := s.records[id]; ok {
			out = append(out, cloneRecord(r))
		}
	}
	return aierrors.Ok(out)
}

func (s *Store) Delete(ctx context.Context, id string) aierrors.Result[struct{}] {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeLocked(ctx, id)
	return aierrors.Ok(struct{}{})
}

func (s *Store) DeleteBatch(ctx context.Context, ids []string) aierrors.Result[struct{}] {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		s.removeLocked(ctx, id)
	}
	return aierrors.Ok(struct{}{})
}

func (s *Store) removeLocked(ctx context.Context, id string) {
	if _, ok := s.records[id]; !ok {
		return
	}
	_ = s.collection.Delete(ctx, nil, nil, id)
	delete(s.records, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

func (s *Store) DeleteByPrefix(ctx context.Context, prefix string) aierrors.Result[int] {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, id := range append([]string(nil), s.order...) {
		if hasPrefix(id, prefix) {
			s.removeLocked(ctx, id)
			n++
		}
	}
	return aierrors.Ok(n)
}

func (s *Store) DeleteByFilter(ctx context.Context, filter vectorstore.Filter) aierrors.Result[int] {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, id := range append([]string(nil), s.order...) {
		r, ok := s.records[id]
		if ok && filter.Matches(r.Metadata) {
			s.removeLocked(ctx, id)
			n++
		}
	}
	return aierrors.Ok(n)
}

func (s *Store) Clear(ctx context.Context) aierrors.Result[struct{}] {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range s.order {
		_ = s.collection.Delete(ctx, nil, nil, id)
	}
	s.records = make(map[string]vectorstore.VectorRecord)
	s.order = nil
	return aierrors.Ok(struct{}{})
}

func (s *Store) List(_ context.Context, opts vectorstore.ListOptions) aierrors.Result[[]vectorstore.VectorRecord] {
	s.mu.RLock()
	defer s.mu.RUnlock()
	filter := opts.Filter
	if filter.Kind == "" {
		filter = vectorstore.All()
	}
	matched := make([]vectorstore.VectorRecord, 0)
	for _, id := range s.order {
		r := s.records[id]
		if filter.Matches(r.Metadata) {
			matched = append(matched, cloneRecord(r))
		}
	}
	start := opts.Offset
	if start > len(matched) {
		start = len(matched)
	}
	end := len(matched)
	if opts.Limit > 0 && start+opts.Limit < end {
		end = start + opts.Limit
	}
	return aierrors.Ok(matched[start:end])
}

func (s *Store) Count(_ context.Context) aierrors.Result[int] {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return aierrors.Ok(len(s.records))
}

func (s *Store) Stats(_ context.Context) aierrors.Result[vectorstore.Stats] {
	s.mu.RLock()
	defer s.mu.RUnlock()
	dims := make(map[int]int)
	for _, r := range s.records {
		dims[len(r.Embedding)]++
	}
	return aierrors.Ok(vectorstore.Stats{Count: len(s.records), Dimensions: dims})
}

// Search delegates ANN search to chromem-go's QueryEmbedding, then applies
// this module's richer Filter algebra over the returned candidates'
// metadata (chromem's own `where` parameter supports only exact-match
// equality). It over-fetches to give the filter a realistic candidate
// pool to work with.
func (s *Store) Search(ctx context.Context, query []float32, topK int, filter vectorstore.Filter) aierrors.Result[[]vectorstore.ScoredRecord] {
	s.mu.RLock()
	n := len(s.records)
	s.mu.RUnlock()
	if n == 0 {
		return aierrors.Ok([]vectorstore.ScoredRecord{})
	}

	fetch := n
	if topK > 0 && topK*4 < n {
		fetch = topK * 4
	}

	results, err := s.collection.QueryEmbedding(ctx, query, fetch, nil, nil)
	if err != nil {
		if isDimensionMismatch(err) {
			return aierrors.Err[[]vectorstore.ScoredRecord](aierrors.NewDimensionMismatch(0, 0))
		}
		return aierrors.Err[[]vectorstore.ScoredRecord](aierrors.NewStorageTransient("chromem query failed", err))
	}

	if filter.Kind == "" {
		filter = vectorstore.All()
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]vectorstore.ScoredRecord, 0, len(results))
	for _, r := range results {
		rec, ok := s.records[r.ID]
		if !ok || !filter.Matches(rec.Metadata) {
			continue
		}
		score := float64(r.Similarity)
		if score < 0 {
			score = 0
		}
		if score > 1 {
			score = 1
		}
		out = append(out, vectorstore.ScoredRecord{Record: cloneRecord(rec), Score: score})
	}
	if topK > 0 && topK < len(out) {
		out = out[:topK]
	}
	return aierrors.Ok(out)
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = nil
	s.order = nil
	return nil
}

func isDimensionMismatch(err error) bool {
	return err != nil && containsIgnoreCase(err.Error(), "dimension")
}

func containsIgnoreCase(s, sub string) bool {
	ls, lsub := toLower(s), toLower(sub)
	return indexOf(ls, lsub) >= 0
}

func toLower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + 32
		}
	}
	return string(b)
}

func indexOf(s, sub string) int {
	n, m := len(s), len(sub)
	if m > n {
		return -1
	}
	for i := 0; i+m <= n; i++ {
		if s[i:i+m] == sub {
			return i
		}
	}
	return -1
}

func hasPrefix(s, prefix string) bool {
	return len(s) >= len(prefix) && s[:len(prefix)] == prefix
}

func cloneRecord(r vectorstore.VectorRecord) vectorstore.VectorRecord {
	out := r
	if r.Embedding != nil {
		out.Embedding = append([]float32(nil), r.Embedding...)
	}
	if r.Metadata != nil {
		out.Metadata = make(map[string]string, len(r.Metadata))
		for k, v := range r.Metadata {
			out.Metadata[k] = v
		}
	}
	return out
}
