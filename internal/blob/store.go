// Package blob defines the object-store boundary the service persists
// through. The store is a flat key/value blob space with no native
// directories; hierarchy lives entirely in the key strings.
package blob

import "context"

// Object is a blob together with the generation token observed when it
// was read. The generation feeds conditional writes.
type Object struct {
	Data       []byte
	Generation int64
}

// Store is the interface for object-store operations.
//
// Consistency contract: per-key read-after-write only. There are no
// multi-key transactions; callers that read-modify-write must use PutIf
// and retry on apperr.ErrConflict.
type Store interface {
	// Get returns the blob at key, or apperr.ErrNotFound.
	Get(ctx context.Context, key string) (*Object, error)
	// Put unconditionally writes data at key, creating or overwriting.
	Put(ctx context.Context, key string, data []byte) error
	// PutIf writes data at key only if the current generation matches
	// gen. gen == 0 means "create only": the write fails if the key
	// already exists. A failed precondition returns apperr.ErrConflict.
	PutIf(ctx context.Context, key string, data []byte, gen int64) error
	// List returns every key under prefix.
	List(ctx context.Context, prefix string) ([]string, error)
}
