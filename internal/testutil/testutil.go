// Package testutil provides shared test helpers for building content trees.
package testutil

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/vaultprep/internal/storage"
)

// Tree creates a temporary content root populated with files (relative path
// → content) and returns a storage provider rooted at it.
func Tree(t *testing.T, files map[string]string) *storage.FS {
	t.Helper()
	root := t.TempDir()
	WriteFiles(t, root, files)
	store, err := storage.NewFS(root)
	if err != nil {
		t.Fatal(err)
	}
	return store
}

// WriteFiles writes files under root, creating parent directories.
func WriteFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

// Snapshot returns every regular file under root mapped to its content.
func Snapshot(t *testing.T, root string) map[string]string {
	t.Helper()
	out := make(map[string]string)
	err := filepath.WalkDir(root, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		rel, _ := filepath.Rel(root, p)
		out[filepath.ToSlash(rel)] = string(data)
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	return out
}

// Logger returns a logger that drops everything below error.
func Logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}
