package indexer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/MatrixedMind/MatrixedMind/internal/apperr"
	"github.com/MatrixedMind/MatrixedMind/internal/blob"
	"github.com/MatrixedMind/MatrixedMind/internal/notekey"
)

// Maintainer updates the ancestor chain of index documents after a
// note write. Each level is updated independently with its own
// fetch-or-create, mutate, conditional write-back; there is no
// multi-level transaction, which keeps the whole pass safe to rerun.
type Maintainer struct {
	blobs    blob.Store
	logger   *slog.Logger
	attempts int
}

// NewMaintainer creates a Maintainer.
func NewMaintainer(blobs blob.Store, logger *slog.Logger) *Maintainer {
	return &Maintainer{blobs: blobs, logger: logger, attempts: 4}
}

// Reindex walks the ancestor chain of key and ensures every level's
// index document lists its child: the next section segment, or the note
// title at the deepest level. Running it twice with the same key leaves
// every document byte-identical to the first run.
//
// Errors are collected per level and joined; callers on the write path
// log them rather than failing the request, since the note blob is
// already durable and a later write under the same prefix re-adds any
// missing entry.
func (m *Maintainer) Reindex(ctx context.Context, key notekey.Key) error {
	var errs []error
	for level, indexKey := range key.IndexKeys() {
		if err := m.upsertLevel(ctx, key, level, indexKey); err != nil {
			errs = append(errs, fmt.Errorf("level %d (%s): %w", level, indexKey, err))
		}
	}
	return errors.Join(errs...)
}

// upsertLevel performs the fetch-or-create + mutate + write-back cycle
// for one hierarchy level, retrying lost conditional writes with a
// fresh read each time.
func (m *Maintainer) upsertLevel(ctx context.Context, key notekey.Key, level int, indexKey string) error {
	for attempt := 0; attempt < m.attempts; attempt++ {
		obj, err := m.blobs.Get(ctx, indexKey)

		var doc *document
		var gen int64
		switch {
		case errors.Is(err, apperr.ErrNotFound):
			doc = newDocument(key.LevelName(level))
			gen = 0
		case err != nil:
			return err
		default:
			gen = obj.Generation
			doc, err = parseDocument(obj.Data)
			if err != nil {
				// Somebody left an unparsable document here; rebuild it.
				m.logger.Warn("rebuilding corrupt index document",
					slog.String("key", indexKey),
					slog.String("error", err.Error()))
				doc = newDocument(key.LevelName(level))
			}
		}

		var changed bool
		if level < len(key.Sections) {
			changed = doc.addSection(key.Sections[level])
		} else {
			changed = doc.addNote(key.Title)
		}
		if !changed && gen != 0 {
			return nil // entry already present, nothing to write
		}

		err = m.blobs.PutIf(ctx, indexKey, doc.render(), gen)
		if errors.Is(err, apperr.ErrConflict) {
			continue // another writer touched this level, re-read
		}
		return err
	}
	return apperr.ErrConflict
}
