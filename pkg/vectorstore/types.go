package vectorstore

// VectorRecord is the unit of storage: an id, its embedding, optional raw
// content, and a flat string metadata map. All records in a single store
// share embedding dimension d (enforced at query time, not at upsert, so a
// store may hold legacy rows of a stale dimension without failing until
// someone searches against them).
type VectorRecord struct {
	ID        string
	Embedding []float32
	Content   string
	Metadata  map[string]string
}

// ScoredRecord pairs a VectorRecord with a similarity score in [0,1].
type ScoredRecord struct {
	Record VectorRecord
	Score  float64
}

// Stats summarizes a store's contents.
type Stats struct {
	Count      int
	Dimensions map[int]int // observed embedding dimension -> record count
}

// ListOptions paginates List.
type ListOptions struct {
	Filter Filter
	Limit  int
	Offset int
}
