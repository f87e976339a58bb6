package rag

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// DocumentVersion is a SyncableSource's fingerprint for one document,
// enough to detect Added/Updated/Unchanged/Removed without re-reading its
// full content every sync pass.
type DocumentVersion struct {
	DocumentID  string
	ContentHash string
	Timestamp   time.Time
	ETag        string
}

// SourceDocument is a document as read fresh from a SyncableSource.
type SourceDocument struct {
	DocumentID string
	Path       CollectionPath
	Content    string
	Metadata   map[string]string
	ReadableBy []PrincipalID
}

// SyncableSource is an external corpus this package can diff against its
// last-known DocumentVersions and re-ingest incrementally. A filesystem
// watcher or a periodic cron poll both implement this the same way: list
// current versions cheaply, fetch full content only for what changed.
type SyncableSource interface {
	// ListVersions returns the current DocumentVersion of every document
	// the source knows about.
	ListVersions(ctx context.Context) ([]DocumentVersion, error)
	// Fetch retrieves the full content of one document.
	Fetch(ctx context.Context, documentID string) (SourceDocument, error)
}

// ChangeKind classifies one document's diff outcome between sync passes.
type ChangeKind string

const (
	ChangeAdded     ChangeKind = "added"
	ChangeUpdated   ChangeKind = "updated"
	ChangeUnchanged ChangeKind = "unchanged"
	ChangeRemoved   ChangeKind = "removed"
)

// Change is one document's diff result.
type Change struct {
	DocumentID string
	Kind       ChangeKind
	Version    DocumentVersion
}

// Diff compares the source's current versions against the last-known
// state and classifies every document. Unknown documents in current are
// Added; documents in known but absent from current are Removed; a
// content-hash mismatch is Updated, otherwise Unchanged.
func Diff(known, current []DocumentVersion) []Change {
	knownByID := make(map[string]DocumentVersion, len(known))
	for _, v := range known {
		knownByID[v.DocumentID] = v
	}
	seen := make(map[string]struct{}, len(current))

	var changes []Change
	for _, v := range current {
		seen[v.DocumentID] = struct{}{}
		prev, ok := knownByID[v.DocumentID]
		switch {
		case !ok:
			changes = append(changes, Change{DocumentID: v.DocumentID, Kind: ChangeAdded, Version: v})
		case prev.ContentHash != v.ContentHash:
			changes = append(changes, Change{DocumentID: v.DocumentID, Kind: ChangeUpdated, Version: v})
		default:
			changes = append(changes, Change{DocumentID: v.DocumentID, Kind: ChangeUnchanged, Version: v})
		}
	}
	for _, v := range known {
		if _, ok := seen[v.DocumentID]; !ok {
			changes = append(changes, Change{DocumentID: v.DocumentID, Kind: ChangeRemoved, Version: v})
		}
	}
	return changes
}

// ContentHash computes the DocumentVersion.ContentHash for raw document
// content — a plain sha256 hex digest, matching how a SyncableSource
// should fingerprint content it reads itself.
func ContentHash(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}

// Chunker splits a document's content into Chunks for Ingester.Ingest.
type Chunker func(content string) []Chunk

// Syncer drives one sync pass: diff a SyncableSource against known
// versions, then transactionally re-ingest each Added/Updated document
// (delete-then-ingest, scoped to its own collection and documentID).
// Removed documents are only counted in SyncResult.Removed; their chunks
// are not deleted from the store. Unchanged documents are left untouched.
type Syncer struct {
	Source  SyncableSource
	Ingest  *Ingester
	Chunker Chunker
}

// NewSyncer builds a Syncer.
func NewSyncer(source SyncableSource, ingest *Ingester, chunker Chunker) *Syncer {
	return &Syncer{Source: source, Ingest: ingest, Chunker: chunker}
}

// SyncResult tallies one Run's outcome.
type SyncResult struct {
	Added     int
	Updated   int
	Unchanged int
	Removed   int
	Errors    []error
}

// Run performs one sync pass against known, returning the new full version
// list (for the caller to persist as next pass's known) alongside the
// tally of what changed.
func (s *Syncer) Run(ctx context.Context, known []DocumentVersion) ([]DocumentVersion, SyncResult) {
	current, err := s.Source.ListVersions(ctx)
	if err != nil {
		return known, SyncResult{Errors: []error{err}}
	}

	var result SyncResult
	for _, change := range Diff(known, current) {
		switch change.Kind {
		case ChangeUnchanged:
			result.Unchanged++
		case ChangeRemoved:
			result.Removed++
		case ChangeAdded, ChangeUpdated:
			if err := s.reingest(ctx, change); err != nil {
				result.Errors = append(result.Errors, err)
				continue
			}
			if change.Kind == ChangeAdded {
				result.Added++
			} else {
				result.Updated++
			}
		}
	}
	return current, result
}

func (s *Syncer) reingest(ctx context.Context, change Change) error {
	doc, err := s.Source.Fetch(ctx, change.DocumentID)
	if err != nil {
		return err
	}
	if res := s.Ingest.DeleteDocument(ctx, doc.Path, doc.DocumentID); res.IsErr() {
		return res.Error()
	}
	chunks := s.Chunker(doc.Content)
	if res := s.Ingest.Ingest(ctx, doc.Path, doc.DocumentID, chunks, doc.Metadata, doc.ReadableBy); res.IsErr() {
		return res.Error()
	}
	return nil
}
