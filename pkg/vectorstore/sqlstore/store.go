// Package sqlstore implements the vectorstore.VectorStore contract over
// the relational persistence layout of spec §6 (table `vectors`), driven
// by database/sql with modernc.org/sqlite as the pure-Go driver. Grounded
// on haasonsaas-nexus's internal/memory/backend/sqlitevec/backend.go:
// encode/decode embeddings as a little-endian float32 BLOB, compute cosine
// similarity in Go (no vec0 extension dependency). List and Search read
// every row and apply the vectorstore.Filter in Go; no WHERE clause is
// built from the filter.
package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/loomware/agentcore/pkg/aierrors"
	"github.com/loomware/agentcore/pkg/vectorstore"
)

// Store implements vectorstore.VectorStore over a *sql.DB with the
// `vectors` table of spec §6: id TEXT PK, embedding BLOB, embedding_dim
// INT, content TEXT, metadata JSON, collection_id INT, readable_by INT[]
// (collection_id/readable_by are carried in metadata here rather than
// dedicated columns, since this store serves the generic VectorStore
// contract independent of pkg/rag's collection/principal model — pkg/rag
// writes them into a record's Metadata map before Upsert).
type Store struct {
	db *sql.DB
}

// Open opens (or creates) a sqlite database at path (":memory:" for an
// ephemeral store) and ensures the vectors table/indexes exist.
func Open(path string) (*Store, error) {
	if path == "" {
		path = ":memory:"
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: open: %w", err)
	}
	s := &Store{db: db}
	if err := s.init(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// New wraps an already-opened *sql.DB (used by tests with go-sqlmock,
// where Open's real driver dial isn't applicable).
func New(db *sql.DB) (*Store, error) {
	s := &Store{db: db}
	if err := s.init(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) init() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS vectors (
			id TEXT PRIMARY KEY,
			embedding BLOB,
			embedding_dim INTEGER,
			content TEXT,
			metadata TEXT
		)
	`)
	if err != nil {
		return fmt.Errorf("sqlstore: create table: %w", err)
	}
	_, err = s.db.Exec(`CREATE INDEX IF NOT EXISTS idx_vectors_dim ON vectors(embedding_dim)`)
	if err != nil {
		return fmt.Errorf("sqlstore: create index: %w", err)
	}
	return nil
}

func (s *Store) Upsert(ctx context.Context, record vectorstore.VectorRecord) aierrors.Result[struct{}] {
	metaJSON, err := json.Marshal(record.Metadata)
	if err != nil {
		return aierrors.Err[struct{}](aierrors.NewValidation("metadata", err.Error()))
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO vectors (id, embedding, embedding_dim, content, metadata)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET embedding=excluded.embedding, embedding_dim=excluded.embedding_dim,
			content=excluded.content, metadata=excluded.metadata
	`, record.ID, encodeEmbedding(record.Embedding), len(record.Embedding), record.Content, string(metaJSON))
	if err != nil {
		return aierrors.Err[struct{}](aierrors.NewStorageTransient("upsert failed", err))
	}
	return aierrors.Ok(struct{}{})
}

func (s *Store) UpsertBatch(ctx context.Context, records []vectorstore.VectorRecord) aierrors.Result[struct{}] {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return aierrors.Err[struct{}](aierrors.NewStorageTransient("begin tx failed", err))
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO vectors (id, embedding, embedding_dim, content, metadata)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET embedding=excluded.embedding, embedding_dim=excluded.embedding_dim,
			content=excluded.content, metadata=excluded.metadata
	`)
	if err != nil {
		return aierrors.Err[struct{}](aierrors.NewStorageTransient("prepare failed", err))
	}
	defer stmt.Close()

	for _, r := range records {
		metaJSON, err := json.Marshal(r.Metadata)
		if err != nil {
			return aierrors.Err[struct{}](aierrors.NewValidation("metadata", err.Error()))
		}
		if _, err := stmt.ExecContext(ctx, r.ID, encodeEmbedding(r.Embedding), len(r.Embedding), r.Content, string(metaJSON)); err != nil {
			return aierrors.Err[struct{}](aierrors.NewStorageTransient("batch upsert failed", err))
		}
	}
	if err := tx.Commit(); err != nil {
		return aierrors.Err[struct{}](aierrors.NewStorageTransient("commit failed", err))
	}
	return aierrors.Ok(struct{}{})
}

func (s *Store) Get(ctx context.Context, id string) aierrors.Result[vectorstore.VectorRecord] {
	row := s.db.QueryRowContext(ctx, `SELECT id, embedding, content, metadata FROM vectors WHERE id = ?`, id)
	rec, err := scanRecord(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return aierrors.Err[vectorstore.VectorRecord](aierrors.New(aierrors.KindStorage, "record not found").WithContext("id", id))
		}
		return aierrors.Err[vectorstore.VectorRecord](aierrors.NewStorageTransient("get failed", err))
	}
	return aierrors.Ok(rec)
}

func (s *Store) GetBatch(ctx context.Context, ids []string) aierrors.Result[[]vectorstore.VectorRecord] {
	out := make([]vectorstore.VectorRecord, 0, len(ids))
	for _, id := range ids {
		res := s.Get(ctx, id)
		if res.IsOk() {
			out = append(out, res.Value())
		}
	}
	return aierrors.Ok(out)
}

func (s *Store) Delete(ctx context.Context, id string) aierrors.Result[struct{}] {
	_, err := s.db.ExecContext(ctx, `DELETE FROM vectors WHERE id = ?`, id)
	if err != nil {
		return aierrors.Err[struct{}](aierrors.NewStorageTransient("delete failed", err))
	}
	return aierrors.Ok(struct{}{})
}

func (s *Store) DeleteBatch(ctx context.Context, ids []string) aierrors.Result[struct{}] {
	for _, id := range ids {
		if res := s.Delete(ctx, id); res.IsErr() {
			return res
		}
	}
	return aierrors.Ok(struct{}{})
}

func (s *Store) DeleteByPrefix(ctx context.Context, prefix string) aierrors.Result[int] {
	res, err := s.db.ExecContext(ctx, `DELETE FROM vectors WHERE id LIKE ?`, escapeLike(prefix)+"%")
	if err != nil {
		return aierrors.Err[int](aierrors.NewStorageTransient("delete by prefix failed", err))
	}
	n, _ := res.RowsAffected()
	return aierrors.Ok(int(n))
}

func (s *Store) DeleteByFilter(ctx context.Context, filter vectorstore.Filter) aierrors.Result[int] {
	all, aerr := s.List(ctx, vectorstore.ListOptions{Filter: filter}).Unwrap()
	if aerr != nil {
		return aierrors.Err[int](aerr)
	}
	ids := make([]string, len(all))
	for i, r := range all {
		ids[i] = r.ID
	}
	if res := s.DeleteBatch(ctx, ids); res.IsErr() {
		return aierrors.Err[int](res.Error())
	}
	return aierrors.Ok(len(ids))
}

func (s *Store) Clear(ctx context.Context) aierrors.Result[struct{}] {
	_, err := s.db.ExecContext(ctx, `DELETE FROM vectors`)
	if err != nil {
		return aierrors.Err[struct{}](aierrors.NewStorageTransient("clear failed", err))
	}
	return aierrors.Ok(struct{}{})
}

func (s *Store) List(ctx context.Context, opts vectorstore.ListOptions) aierrors.Result[[]vectorstore.VectorRecord] {
	rows, err := s.db.QueryContext(ctx, `SELECT id, embedding, content, metadata FROM vectors ORDER BY id`)
	if err != nil {
		return aierrors.Err[[]vectorstore.VectorRecord](aierrors.NewStorageTransient("list failed", err))
	}
	defer rows.Close()

	filter := opts.Filter
	if filter.Kind == "" {
		filter = vectorstore.All()
	}
	matched := make([]vectorstore.VectorRecord, 0)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return aierrors.Err[[]vectorstore.VectorRecord](aierrors.NewStorageTransient("scan failed", err))
		}
		if filter.Matches(rec.Metadata) {
			matched = append(matched, rec)
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

func (s *Store) Count(ctx context.Context) aierrors.Result[int] {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM vectors`).Scan(&n); err != nil {
		return aierrors.Err[int](aierrors.NewStorageTransient("count failed", err))
	}
	return aierrors.Ok(n)
}

func (s *Store) Stats(ctx context.Context) aierrors.Result[vectorstore.Stats] {
	rows, err := s.db.QueryContext(ctx, `SELECT embedding_dim, COUNT(*) FROM vectors GROUP BY embedding_dim`)
	if err != nil {
		return aierrors.Err[vectorstore.Stats](aierrors.NewStorageTransient("stats failed", err))
	}
	defer rows.Close()
	dims := make(map[int]int)
	total := 0
	for rows.Next() {
		var dim, count int
		if err := rows.Scan(&dim, &count); err != nil {
			return aierrors.Err[vectorstore.Stats](aierrors.NewStorageTransient("stats scan failed", err))
		}
		dims[dim] = count
		total += count
	}
	return aierrors.Ok(vectorstore.Stats{Count: total, Dimensions: dims})
}

// Search loads every row matching filter and ranks by cosine similarity in
// Go (no ANN index; the pure-Go sqlite driver carries no vec0 extension).
// Dimension mismatch between query and any candidate row is fatal.
func (s *Store) Search(ctx context.Context, query []float32, topK int, filter vectorstore.Filter) aierrors.Result[[]vectorstore.ScoredRecord] {
	all, aerr := s.List(ctx, vectorstore.ListOptions{Filter: filter}).Unwrap()
	if aerr != nil {
		return aierrors.Err[[]vectorstore.ScoredRecord](aerr)
	}
	if len(all) == 0 {
		return aierrors.Ok([]vectorstore.ScoredRecord{})
	}

	type candidate struct {
		rec vectorstore.VectorRecord
		pos int
		sim float64
	}
	candidates := make([]candidate, 0, len(all))
	for i, rec := range all {
		if len(rec.Embedding) != len(query) {
			return aierrors.Err[[]vectorstore.ScoredRecord](aierrors.NewDimensionMismatch(len(query), len(rec.Embedding)))
		}
		candidates = append(candidates, candidate{rec: rec, pos: i, sim: cosineSimilarity(query, rec.Embedding)})
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
	out := make([]vectorstore.ScoredRecord, len(candidates))
	for i, c := range candidates {
		out[i] = vectorstore.ScoredRecord{Record: c.rec, Score: scoreFromCosine(c.sim)}
	}
	return aierrors.Ok(out)
}

func (s *Store) Close() error {
	return s.db.Close()
}

func scanRecord(scanner interface{ Scan(...any) error }) (vectorstore.VectorRecord, error) {
	var id, content, metaJSON string
	var embeddingBlob []byte
	if err := scanner.Scan(&id, &embeddingBlob, &content, &metaJSON); err != nil {
		return vectorstore.VectorRecord{}, err
	}
	var metadata map[string]string
	if metaJSON != "" {
		_ = json.Unmarshal([]byte(metaJSON), &metadata)
	}
	return vectorstore.VectorRecord{
		ID:        id,
		Embedding: decodeEmbedding(embeddingBlob),
		Content:   content,
		Metadata:  metadata,
	}, nil
}

func encodeEmbedding(embedding []float32) []byte {
	if len(embedding) == 0 {
		return nil
	}
	data := make([]byte, len(embedding)*4)
	for i, f := range embedding {
		bits := math.Float32bits(f)
		data[i*4] = byte(bits)
		data[i*4+1] = byte(bits >> 8)
		data[i*4+2] = byte(bits >> 16)
		data[i*4+3] = byte(bits >> 24)
	}
	return data
}

func decodeEmbedding(data []byte) []float32 {
	if len(data) == 0 || len(data)%4 != 0 {
		return nil
	}
	embedding := make([]float32, len(data)/4)
	for i := range embedding {
		bits := uint32(data[i*4]) | uint32(data[i*4+1])<<8 | uint32(data[i*4+2])<<16 | uint32(data[i*4+3])<<24
		embedding[i] = math.Float32frombits(bits)
	}
	return embedding
}

func cosineSimilarity(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

func scoreFromCosine(cos float64) float64 {
	v := (cos + 1) / 2
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func escapeLike(s string) string {
	s = strings.ReplaceAll(s, "%", "\\%")
	s = strings.ReplaceAll(s, "_", "\\_")
	return s
}
