package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"semsearch/internal/chunker"
	"semsearch/internal/domain"
	"semsearch/internal/embedding/hashing"
	"semsearch/internal/service"
	"semsearch/internal/vectorstore/memory"
)

func markdownOnly(path string) bool { return filepath.Ext(path) == ".md" }

func TestHandleEvent(t *testing.T) {
	tests := []struct {
		name     string
		file     string
		content  string
		mkdir    bool
		op       fsnotify.Op
		want     bool
		wantType ChangeType
	}{
		{name: "create", file: "a.md", content: "# A", op: fsnotify.Create, want: true, wantType: ChangeUpserted},
		{name: "write", file: "a.md", content: "# A", op: fsnotify.Write, want: true, wantType: ChangeUpserted},
		{name: "remove", file: "gone.md", op: fsnotify.Remove, want: true, wantType: ChangeDeleted},
		{name: "rename", file: "moved.md", op: fsnotify.Rename, want: true, wantType: ChangeDeleted},
		{name: "emptied file", file: "a.md", content: "  \n", op: fsnotify.Write, want: true, wantType: ChangeDeleted},
		{name: "write to vanished file", file: "vanished.md", op: fsnotify.Write, want: true, wantType: ChangeDeleted},
		{name: "chmod", file: "a.md", content: "# A", op: fsnotify.Chmod},
		{name: "unaccepted extension", file: "a.json", content: "{}", op: fsnotify.Create},
		{name: "hidden file", file: ".a.md", content: "# A", op: fsnotify.Create},
		{name: "directory", file: "dir.md", mkdir: true, op: fsnotify.Create},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			path := filepath.Join(dir, tt.file)
			if tt.mkdir {
				require.NoError(t, os.Mkdir(path, 0o755))
			} else if tt.content != "" {
				require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o644))
			}

			change := New(dir, markdownOnly).handleEvent(fsnotify.Event{Name: path, Op: tt.op})
			if !tt.want {
				assert.Nil(t, change)
				return
			}
			require.NotNil(t, change)
			assert.Equal(t, tt.wantType, change.Type)
			assert.Equal(t, path, change.Document.Filename)
			if tt.wantType == ChangeUpserted {
				assert.Equal(t, tt.content, change.Document.Content)
			}
		})
	}
}

type recordingTarget struct {
	mu       sync.Mutex
	upserted []string
	deleted  []string
	failOn   string
}

func (r *recordingTarget) Upsert(_ context.Context, doc domain.Document) ([]domain.Chunk, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if doc.Filename == r.failOn {
		return nil, errors.New("boom")
	}
	r.upserted = append(r.upserted, doc.Filename)
	return nil, nil
}

func (r *recordingTarget) Delete(_ context.Context, doc domain.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deleted = append(r.deleted, doc.Filename)
	return nil
}

func TestSync(t *testing.T) {
	changes := make(chan Change, 4)
	changes <- Change{Type: ChangeUpserted, Document: domain.Document{Filename: "bad.md", Content: "x"}}
	changes <- Change{Type: ChangeUpserted, Document: domain.Document{Filename: "a.md", Content: "x"}}
	changes <- Change{Type: ChangeDeleted, Document: domain.Document{Filename: "b.md"}}
	close(changes)

	target := &recordingTarget{failOn: "bad.md"}
	Sync(context.Background(), changes, target)

	assert.Equal(t, []string{"a.md"}, target.upserted)
	assert.Equal(t, []string{"b.md"}, target.deleted)
}

func TestSeed_IndexesExistingFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "posts"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".drafts"), 0o755))
	existing := filepath.Join(dir, "posts", "qdrant.md")
	require.NoError(t, os.WriteFile(existing, []byte("# Qdrant\nQdrant stores embedding vectors.\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".drafts", "secret.md"), []byte("# Draft\nvectors"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.json"), []byte(`{"vectors":1}`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "empty.md"), []byte("\n\n"), 0o644))

	ctx := context.Background()
	store := memory.NewStorage()
	idx, err := service.NewIndexService("blogs", chunker.NewSectionChunker(), hashing.NewEmbedder(64), store, service.Options{})
	require.NoError(t, err)
	require.NoError(t, idx.Init(ctx))

	n, err := New(dir, service.Indexable).Seed(ctx, idx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	res, err := idx.Search(ctx, domain.SearchQuery{Text: "embedding vectors"})
	require.NoError(t, err)
	require.NotEmpty(t, res)
	for _, r := range res {
		assert.Equal(t, existing, r.Metadata[domain.MetaFilename])
	}
}

func TestSeed_FailingFileDoesNotStopWalk(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.md"), []byte("# A"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.md"), []byte("# B"), 0o644))

	target := &recordingTarget{failOn: filepath.Join(dir, "a.md")}
	n, err := New(dir, markdownOnly).Seed(context.Background(), target)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, []string{filepath.Join(dir, "b.md")}, target.upserted)
}

func TestWatch_ReportsNewFiles(t *testing.T) {
	dir := t.TempDir()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	changes, err := New(dir, markdownOnly).Watch(ctx)
	require.NoError(t, err)

	path := filepath.Join(dir, "note.md")
	require.NoError(t, os.WriteFile(path, []byte("# Note\nbody"), 0o644))

	for {
		select {
		case c, ok := <-changes:
			require.True(t, ok, "channel closed before the write was seen")
			if c.Type == ChangeUpserted && c.Document.Filename == path {
				assert.Equal(t, "# Note\nbody", c.Document.Content)
				cancel()
				for range changes {
				}
				return
			}
		case <-ctx.Done():
			t.Fatal("timed out waiting for change")
		}
	}
}

func TestWatch_MissingRoot(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "nope"), nil).Watch(context.Background())
	assert.Error(t, err)
}
