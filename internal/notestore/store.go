// Package notestore applies the create-vs-append write policy for note
// documents on top of the object-store boundary.
package notestore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/MatrixedMind/MatrixedMind/internal/apperr"
	"github.com/MatrixedMind/MatrixedMind/internal/blob"
	"github.com/MatrixedMind/MatrixedMind/internal/notekey"
)

// Mode selects the write policy for a note.
type Mode string

// Write modes.
const (
	ModeAppend    Mode = "append"
	ModeOverwrite Mode = "overwrite"
)

// ParseMode validates a client-supplied mode string. Empty defaults to
// append.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "", string(ModeAppend):
		return ModeAppend, nil
	case string(ModeOverwrite):
		return ModeOverwrite, nil
	default:
		return "", apperr.Validationf("mode must be %q or %q: %q", ModeAppend, ModeOverwrite, s)
	}
}

// Document is a note blob together with its resolved storage key.
// Previous holds the content the write replaced or appended to, empty
// for a fresh document; response truncation uses it to keep context
// from both sides of an append.
type Document struct {
	Key      string `json:"path"`
	Content  string `json:"content"`
	Previous string `json:"-"`
}

// Store reads and writes note documents.
type Store struct {
	blobs    blob.Store
	now      func() time.Time
	attempts int
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the timestamp source, used in tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithRetryAttempts bounds how often an append retries a lost
// conditional write before surfacing apperr.ErrConflict.
func WithRetryAttempts(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.attempts = n
		}
	}
}

// New creates a note store on top of the given blob store.
func New(blobs blob.Store, opts ...Option) *Store {
	s := &Store{blobs: blobs, now: time.Now, attempts: 4}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Write persists a note according to mode. Overwrite replaces whatever
// is at the key with a fresh document. Append reads the current
// document, adds a timestamped body section, and writes it back under a
// generation precondition; an absent document is created instead. The
// returned Document carries the full stored content.
func (s *Store) Write(ctx context.Context, key notekey.Key, title, body string, mode Mode) (*Document, error) {
	storageKey := key.Storage()

	if mode == ModeOverwrite {
		content := s.freshDocument(title, body)
		if err := s.blobs.Put(ctx, storageKey, []byte(content)); err != nil {
			return nil, err
		}
		return &Document{Key: storageKey, Content: content}, nil
	}

	// Append: read-modify-write with compare-and-swap, bounded retries.
	for attempt := 0; attempt < s.attempts; attempt++ {
		obj, err := s.blobs.Get(ctx, storageKey)

		var content, previous string
		var gen int64
		switch {
		case errors.Is(err, apperr.ErrNotFound):
			content = s.freshDocument(title, body)
			gen = 0 // create-only
		case err != nil:
			return nil, err
		default:
			previous = string(obj.Data)
			content = s.appendSection(previous, body)
			gen = obj.Generation
		}

		err = s.blobs.PutIf(ctx, storageKey, []byte(content), gen)
		if errors.Is(err, apperr.ErrConflict) {
			continue // lost the race, re-read and retry
		}
		if err != nil {
			return nil, err
		}
		return &Document{Key: storageKey, Content: content, Previous: previous}, nil
	}
	return nil, fmt.Errorf("append %s: %w", storageKey, apperr.ErrConflict)
}

// Read fetches the note at key, or apperr.ErrNotFound.
func (s *Store) Read(ctx context.Context, key notekey.Key) (*Document, error) {
	storageKey := key.Storage()
	obj, err := s.blobs.Get(ctx, storageKey)
	if err != nil {
		return nil, err
	}
	return &Document{Key: storageKey, Content: string(obj.Data)}, nil
}

// timestampHeading renders the heading that starts each body section.
// The clock is the server's, not the client's, so the audit trail is
// immune to client clock skew.
func (s *Store) timestampHeading() string {
	return "\n## " + s.now().UTC().Format("2006-01-02 15:04:05") + " UTC\n"
}

func (s *Store) freshDocument(title, body string) string {
	return "# " + title + "\n" + s.timestampHeading() + strings.TrimSpace(body) + "\n"
}

func (s *Store) appendSection(existing, body string) string {
	return strings.TrimRight(existing, " \t\r\n") + s.timestampHeading() + strings.TrimSpace(body) + "\n"
}
