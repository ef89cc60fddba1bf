// Package testutil provides shared test helpers for setting up document
// stores and link targets.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/arnvid/mdlink/internal/docstore"
)

// TestDB creates a temporary SQLite document store that is automatically
// cleaned up.
func TestDB(t *testing.T) *docstore.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "mdlink-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := docstore.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestTarget writes a link-target file in a temp directory and returns
// its absolute path.
func TestTarget(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}
