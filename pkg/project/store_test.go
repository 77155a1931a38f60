package project

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := OpenStore(filepath.Join(t.TempDir(), "project.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStoreUpsertGetList(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	a := Artifact{Path: "main.go", Content: "package main", Language: "go", CreatedBy: CreatedByUser}
	require.NoError(t, store.Upsert(ctx, DefaultProject, a))

	got, ok, err := store.Get(ctx, DefaultProject, "main.go")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "package main", got.Content)
	assert.Equal(t, "go", got.Language)

	// Upsert overwrites content, last write wins.
	a.Content = "package main // v2"
	require.NoError(t, store.Upsert(ctx, DefaultProject, a))
	got, _, err = store.Get(ctx, DefaultProject, "main.go")
	require.NoError(t, err)
	assert.Equal(t, "package main // v2", got.Content)

	list, err := store.List(ctx, DefaultProject)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestStoreGetMissing(t *testing.T) {
	store := newTestStore(t)
	_, ok, err := store.Get(context.Background(), DefaultProject, "nope.txt")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStoreDelete(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, DefaultProject, Artifact{Path: "x.txt", Content: "x"}))
	require.NoError(t, store.Delete(ctx, DefaultProject, "x.txt"))

	_, ok, err := store.Get(ctx, DefaultProject, "x.txt")
	require.NoError(t, err)
	assert.False(t, ok)

	// Deleting a missing path is not an error.
	assert.NoError(t, store.Delete(ctx, DefaultProject, "x.txt"))
}

func TestStoreProjectsAreIsolated(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, "p1", Artifact{Path: "a.txt", Content: "a"}))

	list, err := store.List(ctx, "p2")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestAddParsedSkipsExistingAndDuplicates(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	existing := Artifact{Path: "keep.txt", Content: "user content", CreatedBy: CreatedByUser}
	require.NoError(t, store.Upsert(ctx, DefaultProject, existing))

	added, err := store.AddParsed(ctx, DefaultProject, []Artifact{
		{Path: "keep.txt", Content: "model overwrite", CreatedBy: CreatedByAI},
		{Path: "new.txt", Content: "first", CreatedBy: CreatedByAI},
		{Path: "new.txt", Content: "dup", CreatedBy: CreatedByAI},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, added)

	kept, _, err := store.Get(ctx, DefaultProject, "keep.txt")
	require.NoError(t, err)
	assert.Equal(t, "user content", kept.Content, "parsed artifacts never clobber existing files")

	fresh, _, err := store.Get(ctx, DefaultProject, "new.txt")
	require.NoError(t, err)
	assert.Equal(t, "first", fresh.Content)
}

func TestImportWorkspace(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "src"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "src", "app.go"), []byte("package app\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.md"), []byte("# notes\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "secret.env"), []byte("KEY=1\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".gitignore"), []byte("*.env\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "blob.bin"), []byte{0x00, 0x01, 0x02}, 0o644))

	store := newTestStore(t)
	ctx := context.Background()

	n, err := ImportWorkspace(ctx, store, DefaultProject, dir, nil)
	require.NoError(t, err)

	list, err := store.List(ctx, DefaultProject)
	require.NoError(t, err)

	paths := make(map[string]bool)
	for _, a := range list {
		paths[a.Path] = true
	}
	assert.True(t, paths["src/app.go"])
	assert.True(t, paths["notes.md"])
	assert.False(t, paths["secret.env"], "gitignored files are skipped")
	assert.False(t, paths["blob.bin"], "binary files are skipped")
	assert.Equal(t, len(list), n)
}
