// Package watch keeps a collection in sync with a directory tree.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"semsearch/internal/domain"
	"semsearch/internal/logger"
)

// ChangeType is the kind of change observed for a file.
type ChangeType int

const (
	ChangeUpserted ChangeType = iota
	ChangeDeleted
)

func (t ChangeType) String() string {
	if t == ChangeDeleted {
		return "deleted"
	}
	return "upserted"
}

// Change is a single file change. Document.Content is empty for deletions.
type Change struct {
	Type     ChangeType
	Document domain.Document
}

// Target receives the changes.
type Target interface {
	Upsert(ctx context.Context, doc domain.Document) ([]domain.Chunk, error)
	Delete(ctx context.Context, doc domain.Document) error
}

// Watcher turns filesystem events under root into document changes.
type Watcher struct {
	root   string
	accept func(path string) bool
}

// New creates a watcher for root. Only files for which accept returns true
// produce changes; a nil accept takes every file.
func New(root string, accept func(path string) bool) *Watcher {
	if accept == nil {
		accept = func(string) bool { return true }
	}
	return &Watcher{root: root, accept: accept}
}

// Watch starts watching root and every directory below it. The returned
// channel is closed when ctx is cancelled or the watcher fails.
func (w *Watcher) Watch(ctx context.Context) (<-chan Change, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := w.addTree(fw, w.root); err != nil {
		_ = fw.Close()
		return nil, err
	}

	changes := make(chan Change)
	go func() {
		defer close(changes)
		defer fw.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-fw.Events:
				if !ok {
					return
				}
				if ev.Has(fsnotify.Create) && isDir(ev.Name) && !hidden(ev.Name) {
					if err := w.addTree(fw, ev.Name); err != nil {
						logger.Warn("watch %s: %v", ev.Name, err)
					}
					continue
				}
				change := w.handleEvent(ev)
				if change == nil {
					continue
				}
				select {
				case changes <- *change:
				case <-ctx.Done():
					return
				}
			case err, ok := <-fw.Errors:
				if !ok {
					return
				}
				logger.Warn("watcher error: %v", err)
			}
		}
	}()
	return changes, nil
}

func (w *Watcher) addTree(fw *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && hidden(path) {
			return filepath.SkipDir
		}
		if err := fw.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		return nil
	})
}

// handleEvent maps one fsnotify event to a change, or nil when the event is
// irrelevant (chmod, directories, hidden or unaccepted files).
func (w *Watcher) handleEvent(ev fsnotify.Event) *Change {
	if hidden(ev.Name) || !w.accept(ev.Name) {
		return nil
	}
	switch {
	case ev.Has(fsnotify.Remove), ev.Has(fsnotify.Rename):
		return &Change{Type: ChangeDeleted, Document: domain.Document{Filename: ev.Name}}
	case ev.Has(fsnotify.Create), ev.Has(fsnotify.Write):
		if isDir(ev.Name) {
			return nil
		}
		data, err := os.ReadFile(ev.Name)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return &Change{Type: ChangeDeleted, Document: domain.Document{Filename: ev.Name}}
			}
			logger.Warn("read %s: %v", ev.Name, err)
			return nil
		}
		// An emptied file has nothing left to search.
		if strings.TrimSpace(string(data)) == "" {
			return &Change{Type: ChangeDeleted, Document: domain.Document{Filename: ev.Name}}
		}
		return &Change{Type: ChangeUpserted, Document: domain.Document{Filename: ev.Name, Content: string(data)}}
	default:
		return nil
	}
}

// Seed upserts every accepted file already under root into target and
// returns how many were indexed. Hidden entries and whitespace-only files are
// skipped; a failing file is logged and does not stop the walk.
func (w *Watcher) Seed(ctx context.Context, target Target) (int, error) {
	indexed := 0
	err := filepath.WalkDir(w.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if path != w.root && hidden(path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !w.accept(path) {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			logger.Warn("read %s: %v", path, err)
			return nil
		}
		if strings.TrimSpace(string(data)) == "" {
			return nil
		}
		if _, err := target.Upsert(ctx, domain.Document{Filename: path, Content: string(data)}); err != nil {
			logger.Error("upserted %s: %v", path, err)
			return nil
		}
		indexed++
		return nil
	})
	if err != nil {
		return indexed, fmt.Errorf("seed %s: %w", w.root, err)
	}
	return indexed, nil
}

// Sync applies changes to target until the channel closes or ctx is done.
// Failures are logged and do not stop the loop.
func Sync(ctx context.Context, changes <-chan Change, target Target) {
	for {
		select {
		case <-ctx.Done():
			return
		case c, ok := <-changes:
			if !ok {
				return
			}
			var err error
			if c.Type == ChangeDeleted {
				err = target.Delete(ctx, c.Document)
			} else {
				_, err = target.Upsert(ctx, c.Document)
			}
			if err != nil {
				logger.Error("%s %s: %v", c.Type, c.Document.Filename, err)
				continue
			}
			logger.Info("%s %s", c.Type, c.Document.Filename)
		}
	}
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func hidden(path string) bool {
	return strings.HasPrefix(filepath.Base(path), ".")
}
