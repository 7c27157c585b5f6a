// Package testutil provides shared test helpers for setting up object stores.
package testutil

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/MatrixedMind/MatrixedMind/internal/blob"
)

// TestStore creates a filesystem-backed object store rooted in a
// temporary directory that is automatically cleaned up.
func TestStore(t *testing.T) *blob.FS {
	t.Helper()
	store, err := blob.NewFS(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return store
}

// DiscardLogger returns a logger that drops all records.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// FixedClock returns a clock function frozen at the given UTC instant.
func FixedClock(year int, month time.Month, day, hour, min, sec int) func() time.Time {
	at := time.Date(year, month, day, hour, min, sec, 0, time.UTC)
	return func() time.Time { return at }
}
