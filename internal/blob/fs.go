package blob

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/MatrixedMind/MatrixedMind/internal/apperr"
)

// FS implements Store backed by a local directory. It exists for
// development and tests; keys map to file paths relative to root with
// "/" as the separator regardless of platform.
//
// Generations are tracked in process: a file that predates this process
// starts at generation 1 and every write bumps it. That is enough to
// give PutIf real compare-and-swap semantics within one process, which
// is the only place an FS store runs.
type FS struct {
	root string // absolute path to the data directory

	mu   sync.Mutex
	gens map[string]int64
}

// NewFS creates an FS store rooted at dir, which must already exist.
func NewFS(dir string) (*FS, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("blob: resolve root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("blob: stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("blob: root is not a directory: %s", abs)
	}
	return &FS{root: abs, gens: make(map[string]int64)}, nil
}

// Root returns the absolute data directory, for the external-edit watcher.
func (f *FS) Root() string {
	return f.root
}

// safePath resolves a key against the root and rejects any result that
// escapes it (directory traversal).
func (f *FS) safePath(key string) (string, error) {
	if key == "" {
		return "", fmt.Errorf("blob: empty key")
	}
	cleaned := filepath.Clean(filepath.FromSlash(key))
	if filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("blob: absolute keys not allowed: %s", key)
	}
	abs, err := filepath.Abs(filepath.Join(f.root, cleaned))
	if err != nil {
		return "", fmt.Errorf("blob: resolve key: %w", err)
	}
	if !strings.HasPrefix(abs, f.root+string(os.PathSeparator)) {
		return "", fmt.Errorf("blob: key escapes root: %s", key)
	}
	return abs, nil
}

// Get reads the blob at key.
func (f *FS) Get(_ context.Context, key string) (*Object, error) {
	abs, err := f.safePath(key)
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := os.ReadFile(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperr.ErrNotFound
		}
		return nil, fmt.Errorf("blob: read %s: %w", key, err)
	}
	return &Object{Data: data, Generation: f.genLocked(key)}, nil
}

// Put unconditionally writes data at key.
func (f *FS) Put(_ context.Context, key string, data []byte) error {
	abs, err := f.safePath(key)
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	next := f.genLocked(key) + 1
	if err := f.writeLocked(abs, data); err != nil {
		return err
	}
	f.gens[key] = next
	return nil
}

// PutIf writes data at key only when the tracked generation matches gen.
func (f *FS) PutIf(_ context.Context, key string, data []byte, gen int64) error {
	abs, err := f.safePath(key)
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	exists := false
	if _, statErr := os.Stat(abs); statErr == nil {
		exists = true
	}
	if gen == 0 {
		if exists {
			return apperr.ErrConflict
		}
	} else {
		if !exists || f.genLocked(key) != gen {
			return apperr.ErrConflict
		}
	}

	next := f.genLocked(key) + 1
	if err := f.writeLocked(abs, data); err != nil {
		return err
	}
	f.gens[key] = next
	return nil
}

// List walks the root and returns every key under prefix.
func (f *FS) List(_ context.Context, prefix string) ([]string, error) {
	var keys []string
	err := filepath.WalkDir(f.root, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if os.IsNotExist(walkErr) {
				return nil
			}
			return walkErr
		}
		if d.IsDir() {
			return nil
		}
		rel, relErr := filepath.Rel(f.root, p)
		if relErr != nil {
			return relErr
		}
		key := filepath.ToSlash(rel)
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("blob: list %s: %w", prefix, err)
	}
	return keys, nil
}

// genLocked returns the tracked generation of key, assigning 1 to files
// that predate this process. Callers hold f.mu.
func (f *FS) genLocked(key string) int64 {
	if g, ok := f.gens[key]; ok {
		return g
	}
	abs, err := f.safePath(key)
	if err != nil {
		return 0
	}
	if _, err := os.Stat(abs); err != nil {
		return 0
	}
	f.gens[key] = 1
	return 1
}

// writeLocked writes data atomically: tmp file, fsync, rename.
func (f *FS) writeLocked(abs string, data []byte) error {
	dir := filepath.Dir(abs)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("blob: mkdir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".blob-tmp-*")
	if err != nil {
		return fmt.Errorf("blob: create temp: %w", err)
	}
	tmpName := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("blob: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("blob: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("blob: close temp: %w", err)
	}
	if err := os.Rename(tmpName, abs); err != nil {
		return fmt.Errorf("blob: rename: %w", err)
	}
	success = true
	return nil
}
