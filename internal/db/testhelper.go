package db

import (
	"path/filepath"
	"testing"
)

// OpenTestStore opens a migrated Store in t.TempDir() and registers cleanup.
func OpenTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := Open(filepath.Join(t.TempDir(), "test.sqlite"))
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}
