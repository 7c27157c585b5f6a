// Package watcher reconciles externally edited notes when the service
// runs on the local filesystem backend. Notes dropped into the data
// directory by hand (or by a sync tool) get their ancestor index chain
// rebuilt, so listings converge without an API write.
package watcher

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/MatrixedMind/MatrixedMind/internal/blob"
	"github.com/MatrixedMind/MatrixedMind/internal/events"
	"github.com/MatrixedMind/MatrixedMind/internal/indexer"
	"github.com/MatrixedMind/MatrixedMind/internal/notekey"
)

// Watch starts an fsnotify watcher on the store root and reindexes
// note files as they appear or change, until ctx is cancelled.
// broker may be nil. New directories created at runtime are added to
// the watch list automatically.
func Watch(ctx context.Context, store *blob.FS, idx *indexer.Maintainer, logger *slog.Logger, broker *events.Broker) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	root := store.Root()
	if err := addDirsRecursive(w, root); err != nil {
		return err
	}

	logger.Info("watcher: started", slog.String("root", root))

	for {
		select {
		case <-ctx.Done():
			logger.Info("watcher: stopped")
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}

			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(ev.Name); statErr == nil && info.IsDir() {
					if addErr := addDirsRecursive(w, ev.Name); addErr != nil {
						logger.Warn("watcher: add new dir failed",
							slog.String("path", ev.Name),
							slog.String("error", addErr.Error()))
					}
					// Reindex any notes already inside the new directory.
					reindexDir(ctx, root, ev.Name, idx, logger, broker)
					continue
				}
			}

			if ev.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			handlePath(ctx, root, ev.Name, idx, logger, broker)

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// handlePath reindexes a single changed file if it is a note blob.
func handlePath(ctx context.Context, root, absPath string, idx *indexer.Maintainer, logger *slog.Logger, broker *events.Broker) {
	rel, err := filepath.Rel(root, absPath)
	if err != nil {
		return
	}
	storageKey := filepath.ToSlash(rel)
	if strings.HasPrefix(filepath.Base(storageKey), ".") {
		return // temp files from atomic writes
	}
	key, ok := notekey.FromStorage(storageKey)
	if !ok {
		return
	}
	if err := idx.Reindex(ctx, key); err != nil {
		logger.Warn("watcher: reindex failed",
			slog.String("key", storageKey),
			slog.String("error", err.Error()))
		return
	}
	logger.Debug("watcher: reindexed", slog.String("key", storageKey))
	if broker != nil {
		broker.Publish(events.NoteWritten{
			Path:    storageKey,
			Project: key.Project,
			Section: key.SectionPath(),
			Title:   key.Title,
		})
	}
}

// reindexDir handles notes that already exist in a freshly created
// directory (e.g. a directory moved into the root wholesale).
func reindexDir(ctx context.Context, root, dir string, idx *indexer.Maintainer, logger *slog.Logger, broker *events.Broker) {
	_ = filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		handlePath(ctx, root, p, idx, logger, broker)
		return nil
	})
}

// addDirsRecursive adds root and all its subdirectories to the watcher.
func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.Add(path)
		}
		return nil
	})
}
