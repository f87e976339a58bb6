// Package keywordindex implements the C9 BM25-style keyword side of hybrid
// search: tokenize content, score documents against a query by a standard
// Okapi BM25 formula, and support the same metadata filter algebra as
// pkg/vectorstore. No pack repo or other_examples file carries a Go
// full-text search library (no bleve, no bluge anywhere in the pack), so
// this package is stdlib-only by necessity rather than preference — see
// DESIGN.md.
package keywordindex

import (
	"context"
	"math"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/loomware/agentcore/pkg/aierrors"
	"github.com/loomware/agentcore/pkg/vectorstore"
)

// Hit is one keyword-search result: a document id, its BM25 score, the
// matched token spans (highlights), and its metadata.
type Hit struct {
	ID         string
	Score      float64
	Content    string
	Metadata   map[string]string
	Highlights []Span
}

// Span is a half-open [Start,End) byte range into Content identifying a
// matched query token.
type Span struct {
	Start int
	End   int
}

// document is the index's internal per-document record.
type document struct {
	id       string
	content  string
	metadata map[string]string
	terms    []string
	termFreq map[string]int
	length   int
}

var tokenPattern = regexp.MustCompile(`[A-Za-z0-9_]+`)

func tokenize(s string) []string {
	return tokenPattern.FindAllString(strings.ToLower(s), -1)
}

// Index is a BM25-ish keyword index over a fixed document set with upsert
// semantics, guarded by a single RWMutex in the multiple-readers/single-
// writer contract spec §5 asks of shared stores.
type Index struct {
	mu        sync.RWMutex
	docs      map[string]*document
	order     []string
	totalLen  int
	postings  map[string]map[string]int // term -> docID -> freq
	k1        float64
	b         float64
}

// Option configures BM25 parameters; defaults are k1=1.2, b=0.75, the
// conventional Okapi BM25 constants.
type Option func(*Index)

func WithK1(k1 float64) Option { return func(i *Index) { i.k1 = k1 } }
func WithB(b float64) Option   { return func(i *Index) { i.b = b } }

// New constructs an empty keyword index.
func New(opts ...Option) *Index {
	idx := &Index{
		docs:     make(map[string]*document),
		postings: make(map[string]map[string]int),
		k1:       1.2,
		b:        0.75,
	}
	for _, opt := range opts {
		opt(idx)
	}
	return idx
}

// Upsert indexes (or re-indexes) a document's content and metadata.
func (idx *Index) Upsert(_ context.Context, id, content string, metadata map[string]string) aierrors.Result[struct{}] {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	idx.removeLocked(id)

	terms := tokenize(content)
	tf := make(map[string]int, len(terms))
	for _, term := range terms {
		tf[term]++
	}
	d := &document{id: id, content: content, metadata: cloneMeta(metadata), terms: terms, termFreq: tf, length: len(terms)}
	idx.docs[id] = d
	idx.order = append(idx.order, id)
	idx.totalLen += len(terms)
	for term, freq := range tf {
		bucket, ok := idx.postings[term]
		if !ok {
			bucket = make(map[string]int)
			idx.postings[term] = bucket
		}
		bucket[id] = freq
	}
	return aierrors.Ok(struct{}{})
}

// Delete removes a document from the index.
func (idx *Index) Delete(_ context.Context, id string) aierrors.Result[struct{}] {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.removeLocked(id)
	return aierrors.Ok(struct{}{})
}

// removeLocked removes id; caller holds idx.mu.
func (idx *Index) removeLocked(id string) {
	d, ok := idx.docs[id]
	if !ok {
		return
	}
	delete(idx.docs, id)
	idx.totalLen -= d.length
	for term := range d.termFreq {
		bucket := idx.postings[term]
		delete(bucket, id)
		if len(bucket) == 0 {
			delete(idx.postings, term)
		}
	}
	for i, existing := range idx.order {
		if existing == id {
			idx.order = append(idx.order[:i], idx.order[i+1:]...)
			break
		}
	}
}

// Count returns the number of indexed documents.
func (idx *Index) Count() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.docs)
}

// Search scores every document against query's tokens with BM25 and
// returns the topK highest-scoring hits matching filter, descending by
// score, ties broken by insertion order.
func (idx *Index) Search(_ context.Context, query string, topK int, filter vectorstore.Filter) aierrors.Result[[]Hit] {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	if filter.Kind == "" {
		filter = vectorstore.All()
	}
	queryTerms := uniqueTerms(tokenize(query))
	n := len(idx.docs)
	if n == 0 || len(queryTerms) == 0 {
		return aierrors.Ok([]Hit{})
	}
	avgLen := float64(idx.totalLen) / float64(n)

	type scored struct {
		id    string
		pos   int
		score float64
	}
	scores := make(map[string]float64)
	for _, term := range queryTerms {
		bucket := idx.postings[term]
		if len(bucket) == 0 {
			continue
		}
		idf := idfBM25(n, len(bucket))
		for docID, freq := range bucket {
			d := idx.docs[docID]
			denom := float64(freq) + idx.k1*(1-idx.b+idx.b*float64(d.length)/avgLen)
			scores[docID] += idf * (float64(freq) * (idx.k1 + 1) / denom)
		}
	}

	candidates := make([]scored, 0, len(scores))
	for i, id := range idx.order {
		score, hit := scores[id]
		if !hit || score <= 0 {
			continue
		}
		d := idx.docs[id]
		if !filter.Matches(d.metadata) {
			continue
		}
		candidates = append(candidates, scored{id: id, pos: i, score: score})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].pos < candidates[j].pos
	})
	if topK > 0 && topK < len(candidates) {
		candidates = candidates[:topK]
	}

	out := make([]Hit, len(candidates))
	for i, c := range candidates {
		d := idx.docs[c.id]
		out[i] = Hit{
			ID:         c.id,
			Score:      c.score,
			Content:    d.content,
			Metadata:   cloneMeta(d.metadata),
			Highlights: highlightSpans(d.content, queryTerms),
		}
	}
	return aierrors.Ok(out)
}

// idfBM25 computes the standard BM25 inverse-document-frequency term,
// floored at a small positive value so common terms never drive a
// document's score negative.
func idfBM25(n, df int) float64 {
	idf := math.Log(1 + (float64(n)-float64(df)+0.5)/(float64(df)+0.5))
	if idf < 0 {
		idf = 0.0001
	}
	return idf
}

// highlightSpans finds the byte ranges of every occurrence of any query
// term within content (case-insensitive, word-bounded by tokenize's
// pattern).
func highlightSpans(content string, queryTerms []string) []Span {
	if len(queryTerms) == 0 {
		return nil
	}
	want := make(map[string]bool, len(queryTerms))
	for _, t := range queryTerms {
		want[t] = true
	}
	var spans []Span
	for _, loc := range tokenPattern.FindAllStringIndex(content, -1) {
		tok := strings.ToLower(content[loc[0]:loc[1]])
		if want[tok] {
			spans = append(spans, Span{Start: loc[0], End: loc[1]})
		}
	}
	return spans
}

func uniqueTerms(terms []string) []string {
	seen := make(map[string]bool, len(terms))
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		if !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	return out
}

func cloneMeta(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
