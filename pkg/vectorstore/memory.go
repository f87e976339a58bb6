package vectorstore

import (
	"context"
	"sort"
	"strings"
	"sync"

	"gonum.org/v1/gonum/floats"

	"github.com/loomware/agentcore/pkg/aierrors"
)

// MemoryStore is an in-process VectorStore backed by a plain map, searched
// by brute-force cosine similarity via gonum/floats. It is the reference
// implementation exercising the full filter algebra and CRUD surface;
// chromemstore.Store and sqlstore.Store are alternate backends behind the
// same VectorStore interface. Grounded on the teacher's pkg/registry.go
// RWMutex-guarded map pattern, generalized from a single global map to a
// per-instance owned resource with Close.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]VectorRecord
	order   []string // insertion order, for stable tie-breaking in Search
	closed  bool
}

// NewMemoryStore constructs an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]VectorRecord)}
}

func (s *MemoryStore) Upsert(_ context.Context, record VectorRecord) aierrors.Result[struct{}] {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.records[record.ID]; !exists {
		s.order = append(s.order, record.ID)
	}
	s.records[record.ID] = cloneRecord(record)
	return aierrors.Ok(struct{}{})
}

func (s *MemoryStore) UpsertBatch(ctx context.Context, records []VectorRecord) aierrors.Result[struct{}] {
	for _, r := range records {
		if res := s.Upsert(ctx, r); res.IsErr() {
			return res
		}
	}
	return aierrors.Ok(struct{}{})
}

func (s *MemoryStore) Get(_ context.Context, id string) aierrors.Result[VectorRecord] {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.records[id]
	if !ok {
		return aierrors.Err[VectorRecord](aierrors.New(aierrors.KindStorage, "record not found").WithContext("id", id))
	}
	return aierrors.Ok(cloneRecord(r))
}

func (s *MemoryStore) GetBatch(_ context.Context, ids []string) aierrors.Result[[]VectorRecord] {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]VectorRecord, 0, len(ids))
	for _, id := range ids {
		if r, ok := s.records[id]; ok {
			out = append(out, cloneRecord(r))
		}
	}
	return aierrors.Ok(out)
}

func (s *MemoryStore) Delete(_ context.Context, id string) aierrors.Result[struct{}] {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeLocked(id)
	return aierrors.Ok(struct{}{})
}

func (s *MemoryStore) DeleteBatch(_ context.Context, ids []string) aierrors.Result[struct{}] {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		s.removeLocked(id)
	}
	return aierrors.Ok(struct{}{})
}

func (s *MemoryStore) DeleteByPrefix(_ context.Context, prefix string) aierrors.Result[int] {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, id := range append([]string(nil), s.order...) {
		if strings.HasPrefix(id, prefix) {
			s.removeLocked(id)
			n++
		}
	}
	return aierrors.Ok(n)
}

func (s *MemoryStore) DeleteByFilter(_ context.Context, filter Filter) aierrors.Result[int] {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, id := range append([]string(nil), s.order...) {
		r, ok := s.records[id]
		if ok && filter.Matches(r.Metadata) {
			s.removeLocked(id)
			n++
		}
	}
	return aierrors.Ok(n)
}

// removeLocked deletes id; caller must hold s.mu for writing.
func (s *MemoryStore) removeLocked(id string) {
	if _, ok := s.records[id]; !ok {
		return
	}
	delete(s.records, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

func (s *MemoryStore) Clear(_ context.Context) aierrors.Result[struct{}] {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = make(map[string]VectorRecord)
	s.order = nil
	return aierrors.Ok(struct{}{})
}

func (s *MemoryStore) List(_ context.Context, opts ListOptions) aierrors.Result[[]VectorRecord] {
	s.mu.RLock()
	defer s.mu.RUnlock()
	filter := opts.Filter
	if filter.Kind == "" {
		filter = All()
	}
	matched := make([]VectorRecord, 0)
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

func (s *MemoryStore) Count(_ context.Context) aierrors.Result[int] {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return aierrors.Ok(len(s.records))
}

func (s *MemoryStore) Stats(_ context.Context) aierrors.Result[Stats] {
	s.mu.RLock()
	defer s.mu.RUnlock()
	dims := make(map[int]int)
	for _, r := range s.records {
		dims[len(r.Embedding)]++
	}
	return aierrors.Ok(Stats{Count: len(s.records), Dimensions: dims})
}

// Search returns records ordered by descending cosine similarity mapped to
// [0,1] via (1+cos)/2. A dimension mismatch between query and a candidate
// record is a fatal DimensionMismatch error per spec §3; an empty store
// returns an empty sequence. Ties break by insertion order.
func (s *MemoryStore) Search(_ context.Context, query []float32, topK int, filter Filter) aierrors.Result[[]ScoredRecord] {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if filter.Kind == "" {
		filter = All()
	}
	if len(s.order) == 0 {
		return aierrors.Ok([]ScoredRecord{})
	}

	type candidate struct {
		rec  VectorRecord
		pos  int
		sim  float64
		ok   bool
	}
	candidates := make([]candidate, 0, len(s.order))
	for i, id := range s.order {
		r := s.records[id]
		if !filter.Matches(r.Metadata) {
			continue
		}
		if len(r.Embedding) != len(query) {
			return aierrors.Err[[]ScoredRecord](aierrors.NewDimensionMismatch(len(query), len(r.Embedding)))
		}
		sim := cosineSimilarity(query, r.Embedding)
		candidates = append(candidates, candidate{rec: r, pos: i, sim: sim, ok: true})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].sim != candidates[j].sim {
			return candidates[i].sim > candidates[j].sim
		}
		return candidates[i].pos < candidates[j].pos
	})

	if topK > 0 && topK < len(candidates) {
		candidates = candidates[:topK]
	}

	out := make([]ScoredRecord, len(candidates))
	for i, c := range candidates {
		out[i] = ScoredRecord{Record: cloneRecord(c.rec), Score: scoreFromCosine(c.sim)}
	}
	return aierrors.Ok(out)
}

func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.records = nil
	s.order = nil
	return nil
}

// cosineSimilarity returns cos(a,b) in [-1,1]; a zero-magnitude vector
// yields a similarity of 0 against anything.
func cosineSimilarity(a, b []float32) float64 {
	af := make([]float64, len(a))
	bf := make([]float64, len(b))
	for i := range a {
		af[i] = float64(a[i])
		bf[i] = float64(b[i])
	}
	dot := floats.Dot(af, bf)
	na := floats.Norm(af, 2)
	nb := floats.Norm(bf, 2)
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (na * nb)
}

// scoreFromCosine maps cosine similarity in [-1,1] to a score in [0,1].
func scoreFromCosine(cos float64) float64 {
	s := (cos + 1) / 2
	if s < 0 {
		return 0
	}
	if s > 1 {
		return 1
	}
	return s
}

func cloneRecord(r VectorRecord) VectorRecord {
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
