// Package testutil provides shared test helpers for setting up folders and
// journals.
package testutil

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/starford/redate/internal/journal"
	"github.com/starford/redate/internal/storage"
)

// TestJournal creates a temporary SQLite journal that is automatically
// cleaned up.
func TestJournal(t *testing.T) *journal.DB {
	t.Helper()
	db, err := journal.Open(filepath.Join(t.TempDir(), "journal.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestFolder creates a temporary folder holding one file per name (content
// is the name itself) and a storage.FS rooted at it.
func TestFolder(t *testing.T, names ...string) (string, *storage.FS) {
	t.Helper()
	dir := t.TempDir()
	for _, n := range names {
		WriteFile(t, filepath.Join(dir, n), n)
	}
	store, err := storage.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	return store.Root(), store
}

// WriteFile writes content to path, failing the test on error.
func WriteFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

// Names returns the sorted names of the regular files directly in dir.
func Names(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	var out []string
	for _, e := range entries {
		if e.Type().IsRegular() {
			out = append(out, e.Name())
		}
	}
	sort.Strings(out)
	return out
}
