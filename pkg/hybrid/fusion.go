// Package hybrid implements the C9 hybrid searcher: fuse a vector-store
// search and a keyword-index search into one ranked list by reciprocal-rank
// or weighted-score fusion. No pack repo carries a hybrid search fuser;
// this package is new logic grounded on spec §4.6, using
// gonum.org/v1/gonum/floats (per taipm-go-deep-agent's dependency on gonum)
// for the min-max normalization WeightedScore needs.
package hybrid

import (
	"context"
	"sort"

	"gonum.org/v1/gonum/floats"

	"github.com/loomware/agentcore/pkg/aierrors"
	"github.com/loomware/agentcore/pkg/keywordindex"
	"github.com/loomware/agentcore/pkg/vectorstore"
)

// StrategyKind selects a fusion algorithm.
type StrategyKind string

const (
	VectorOnly   StrategyKind = "vector_only"
	KeywordOnly  StrategyKind = "keyword_only"
	RRF          StrategyKind = "rrf"
	WeightedScore StrategyKind = "weighted_score"
)

// Strategy configures fusion. RRFK is RRF's rank-offset constant (default
// 60 per spec). WeightVector/WeightKeyword are WeightedScore's wv,wk
// (wv,wk >= 0, wv+wk>0).
type Strategy struct {
	Kind          StrategyKind
	RRFK          int
	WeightVector  float64
	WeightKeyword float64
}

// NewRRF builds an RRF strategy with the given rank-offset constant (0
// defaults to the spec's k=60).
func NewRRF(k int) Strategy {
	if k <= 0 {
		k = 60
	}
	return Strategy{Kind: RRF, RRFK: k}
}

// NewWeightedScore builds a WeightedScore strategy.
func NewWeightedScore(wv, wk float64) Strategy {
	return Strategy{Kind: WeightedScore, WeightVector: wv, WeightKeyword: wk}
}

// Match is one fused hybrid-search result: a record id, its per-engine
// scores (nil when the engine didn't return it), the fused score, and any
// keyword highlight spans.
type Match struct {
	ID           string
	Record       vectorstore.VectorRecord
	VectorScore  *float64
	KeywordScore *float64
	Score        float64
	Highlights   []keywordindex.Span
}

// Searcher fuses a VectorStore and a KeywordIndex search. Tie-break on
// equal fused scores is by ascending record id — deterministic, but
// arbitrary relative to the source's implementation-defined order per
// spec §9's open question.
type Searcher struct {
	Vectors  vectorstore.VectorStore
	Keywords *keywordindex.Index
}

// New builds a hybrid Searcher over the given engines.
func New(vectors vectorstore.VectorStore, keywords *keywordindex.Index) *Searcher {
	return &Searcher{Vectors: vectors, Keywords: keywords}
}

// Search executes queryEmbedding/queryText against the configured engines
// per strategy, fuses results, and returns the topK highest-scoring
// Matches, deduplicated by record id.
func (s *Searcher) Search(ctx context.Context, queryEmbedding []float32, queryText string, topK int, filter vectorstore.Filter, strategy Strategy) aierrors.Result[[]Match] {
	switch strategy.Kind {
	case VectorOnly:
		return s.vectorOnly(ctx, queryEmbedding, topK, filter)
	case KeywordOnly:
		return s.keywordOnly(ctx, queryText, topK, filter)
	case RRF:
		return s.fuseRRF(ctx, queryEmbedding, queryText, topK, filter, strategy.RRFK)
	case WeightedScore:
		return s.fuseWeighted(ctx, queryEmbedding, queryText, topK, filter, strategy.WeightVector, strategy.WeightKeyword)
	default:
		return s.fuseRRF(ctx, queryEmbedding, queryText, topK, filter, 60)
	}
}

func (s *Searcher) vectorOnly(ctx context.Context, queryEmbedding []float32, topK int, filter vectorstore.Filter) aierrors.Result[[]Match] {
	vecResults, aerr := s.Vectors.Search(ctx, queryEmbedding, topK, filter).Unwrap()
	if aerr != nil {
		return aierrors.Err[[]Match](aerr)
	}
	out := make([]Match, len(vecResults))
	for i, r := range vecResults {
		score := r.Score
		out[i] = Match{ID: r.Record.ID, Record: r.Record, VectorScore: &score, Score: score}
	}
	return aierrors.Ok(out)
}

func (s *Searcher) keywordOnly(ctx context.Context, queryText string, topK int, filter vectorstore.Filter) aierrors.Result[[]Match] {
	if s.Keywords == nil {
		return aierrors.Ok([]Match{})
	}
	hits, aerr := s.Keywords.Search(ctx, queryText, topK, filter).Unwrap()
	if aerr != nil {
		return aierrors.Err[[]Match](aerr)
	}
	out := make([]Match, len(hits))
	for i, h := range hits {
		score := h.Score
		out[i] = Match{
			ID:           h.ID,
			Record:       vectorstore.VectorRecord{ID: h.ID, Content: h.Content, Metadata: h.Metadata},
			KeywordScore: &score,
			Score:        score,
			Highlights:   h.Highlights,
		}
	}
	return aierrors.Ok(out)
}

// candidatePool is how many results to pull from each engine before
// fusion: top-k*2 per spec §4.6's WeightedScore description, reused for
// RRF too so a doc ranked outside topK in one engine can still surface via
// the other.
func candidatePool(topK int) int {
	if topK <= 0 {
		return 0
	}
	return topK * 2
}

func (s *Searcher) fuseRRF(ctx context.Context, queryEmbedding []float32, queryText string, topK int, filter vectorstore.Filter, k int) aierrors.Result[[]Match] {
	if k <= 0 {
		k = 60
	}
	pool := candidatePool(topK)

	vecResults, aerr := s.Vectors.Search(ctx, queryEmbedding, pool, filter).Unwrap()
	if aerr != nil {
		return aierrors.Err[[]Match](aerr)
	}
	var kwHits []keywordindex.Hit
	if s.Keywords != nil {
		kwHits, aerr = s.Keywords.Search(ctx, queryText, pool, filter).Unwrap()
		if aerr != nil {
			return aierrors.Err[[]Match](aerr)
		}
	}

	merged := make(map[string]*Match)
	order := make([]string, 0)

	for rank, r := range vecResults {
		m, ok := merged[r.Record.ID]
		if !ok {
			m = &Match{ID: r.Record.ID, Record: r.Record}
			merged[r.Record.ID] = m
			order = append(order, r.Record.ID)
		}
		score := r.Score
		m.VectorScore = &score
		m.Score += 1.0 / (float64(k) + float64(rank+1))
	}
	for rank, h := range kwHits {
		m, ok := merged[h.ID]
		if !ok {
			m = &Match{ID: h.ID, Record: vectorstore.VectorRecord{ID: h.ID, Content: h.Content, Metadata: h.Metadata}}
			merged[h.ID] = m
			order = append(order, h.ID)
		}
		score := h.Score
		m.KeywordScore = &score
		m.Highlights = h.Highlights
		m.Score += 1.0 / (float64(k) + float64(rank+1))
	}

	return aierrors.Ok(finalize(merged, order, topK))
}

func (s *Searcher) fuseWeighted(ctx context.Context, queryEmbedding []float32, queryText string, topK int, filter vectorstore.Filter, wv, wk float64) aierrors.Result[[]Match] {
	pool := candidatePool(topK)

	vecResults, aerr := s.Vectors.Search(ctx, queryEmbedding, pool, filter).Unwrap()
	if aerr != nil {
		return aierrors.Err[[]Match](aerr)
	}
	var kwHits []keywordindex.Hit
	if s.Keywords != nil {
		kwHits, aerr = s.Keywords.Search(ctx, queryText, pool, filter).Unwrap()
		if aerr != nil {
			return aierrors.Err[[]Match](aerr)
		}
	}

	vecScores := make([]float64, len(vecResults))
	for i, r := range vecResults {
		vecScores[i] = r.Score
	}
	kwScores := make([]float64, len(kwHits))
	for i, h := range kwHits {
		kwScores[i] = h.Score
	}
	vecNorm := minMaxNormalize(vecScores)
	kwNorm := minMaxNormalize(kwScores)

	merged := make(map[string]*Match)
	order := make([]string, 0)

	for i, r := range vecResults {
		m, ok := merged[r.Record.ID]
		if !ok {
			m = &Match{ID: r.Record.ID, Record: r.Record}
			merged[r.Record.ID] = m
			order = append(order, r.Record.ID)
		}
		score := r.Score
		m.VectorScore = &score
		m.Score += wv * vecNorm[i]
	}
	for i, h := range kwHits {
		m, ok := merged[h.ID]
		if !ok {
			m = &Match{ID: h.ID, Record: vectorstore.VectorRecord{ID: h.ID, Content: h.Content, Metadata: h.Metadata}}
			merged[h.ID] = m
			order = append(order, h.ID)
		}
		score := h.Score
		m.KeywordScore = &score
		m.Highlights = h.Highlights
		m.Score += wk * kwNorm[i]
	}

	for _, m := range merged {
		if m.Score > 1 {
			m.Score = 1
		}
		if m.Score < 0 {
			m.Score = 0
		}
	}

	return aierrors.Ok(finalize(merged, order, topK))
}

// minMaxNormalize rescales vals to [0,1] within the candidate set; a
// constant (or empty/singleton) set normalizes to all-1s so a sole result
// isn't unfairly zeroed out.
func minMaxNormalize(vals []float64) []float64 {
	if len(vals) == 0 {
		return nil
	}
	lo := floats.Min(vals)
	hi := floats.Max(vals)
	out := make([]float64, len(vals))
	if hi == lo {
		for i := range out {
			out[i] = 1
		}
		return out
	}
	for i, v := range vals {
		out[i] = (v - lo) / (hi - lo)
	}
	return out
}

// finalize orders merged matches by descending score, ties broken by
// ascending record id, and truncates to topK.
func finalize(merged map[string]*Match, order []string, topK int) []Match {
	out := make([]Match, 0, len(merged))
	for _, id := range order {
		out = append(out, *merged[id])
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].ID < out[j].ID
	})
	if topK > 0 && topK < len(out) {
		out = out[:topK]
	}
	return out
}
