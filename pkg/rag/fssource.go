package rag

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/loomware/agentcore/internal/obslog"
)

// FileSource is a SyncableSource backed by a directory tree: every regular
// file under Root becomes one document, keyed by its path relative to
// Root, scoped into the single collection Collection. Watch starts an
// fsnotify watcher whose channel signals changes so a caller can trigger an
// immediate sync pass instead of waiting for the next cron tick.
type FileSource struct {
	Root       string
	Collection CollectionPath
	ReadableBy []PrincipalID
	Logger     obslog.Logger

	mu      sync.Mutex
	watcher *fsnotify.Watcher
	changed chan struct{}
}

// NewFileSource builds a FileSource rooted at root, scoping every
// discovered document into collection.
func NewFileSource(root string, collection CollectionPath, readableBy []PrincipalID, logger obslog.Logger) *FileSource {
	if logger == nil {
		logger = obslog.Noop{}
	}
	return &FileSource{Root: root, Collection: collection, ReadableBy: readableBy, Logger: logger}
}

// ListVersions walks Root and fingerprints every regular file by content
// hash and modification time.
func (fs *FileSource) ListVersions(ctx context.Context) ([]DocumentVersion, error) {
	var versions []DocumentVersion
	err := filepath.WalkDir(fs.Root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		content, readErr := os.ReadFile(path)
		if readErr != nil {
			return readErr
		}
		info, statErr := d.Info()
		if statErr != nil {
			return statErr
		}
		rel, relErr := filepath.Rel(fs.Root, path)
		if relErr != nil {
			return relErr
		}
		versions = append(versions, DocumentVersion{
			DocumentID:  rel,
			ContentHash: ContentHash(string(content)),
			Timestamp:   info.ModTime(),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return versions, nil
}

// Fetch reads documentID (a Root-relative path) back into a SourceDocument.
func (fs *FileSource) Fetch(ctx context.Context, documentID string) (SourceDocument, error) {
	full := filepath.Join(fs.Root, documentID)
	content, err := os.ReadFile(full)
	if err != nil {
		return SourceDocument{}, err
	}
	return SourceDocument{
		DocumentID: documentID,
		Path:       fs.Collection,
		Content:    string(content),
		Metadata:   map[string]string{"source_path": full},
		ReadableBy: fs.ReadableBy,
	}, nil
}

// Watch starts an fsnotify watcher over Root (non-recursively per
// directory discovered at call time) and returns a channel that receives a
// signal whenever a write, create, remove, or rename event fires — a
// caller wires this to trigger an out-of-band Syncer.Run instead of
// waiting for the next scheduled pass. Calling Watch twice is an error;
// call Close to stop watching.
func (fs *FileSource) Watch(ctx context.Context) (<-chan struct{}, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if fs.watcher != nil {
		return nil, fmt.Errorf("rag: FileSource already watching %s", fs.Root)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	err = filepath.WalkDir(fs.Root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return watcher.Add(path)
		}
		return nil
	})
	if err != nil {
		watcher.Close()
		return nil, err
	}

	fs.watcher = watcher
	fs.changed = make(chan struct{}, 1)

	go fs.watchLoop(ctx, watcher)
	return fs.changed, nil
}

func (fs *FileSource) watchLoop(ctx context.Context, watcher *fsnotify.Watcher) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			fs.Logger.Debug(ctx, "rag: fsnotify event %s", event)
			select {
			case fs.changed <- struct{}{}:
			default:
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			fs.Logger.Warn(ctx, "rag: fsnotify error: %v", err)
		}
	}
}

// Close stops the watcher started by Watch, if any.
func (fs *FileSource) Close() error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if fs.watcher == nil {
		return nil
	}
	err := fs.watcher.Close()
	fs.watcher = nil
	return err
}
