// Package noteservice coordinates path resolution, blob writes, and
// index maintenance for the API surface.
package noteservice

import (
	"context"
	"log/slog"

	"github.com/MatrixedMind/MatrixedMind/internal/events"
	"github.com/MatrixedMind/MatrixedMind/internal/indexer"
	"github.com/MatrixedMind/MatrixedMind/internal/notekey"
	"github.com/MatrixedMind/MatrixedMind/internal/notestore"
)

// WriteRequest carries the already-parsed fields of a note write.
type WriteRequest struct {
	Project string
	Section string
	Title   string
	Body    string
	Mode    string
}

// NoteResult is the outcome of a write or read: the canonical storage
// key and the (possibly truncated) document content.
type NoteResult struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

// Service is the core orchestrator behind the HTTP and MCP surfaces.
type Service struct {
	notes  *notestore.Store
	idx    *indexer.Maintainer
	reader *indexer.Reader
	broker *events.Broker // may be nil
	logger *slog.Logger
}

// New creates a Service. broker may be nil when no event stream is wanted.
func New(notes *notestore.Store, idx *indexer.Maintainer, reader *indexer.Reader, broker *events.Broker, logger *slog.Logger) *Service {
	return &Service{notes: notes, idx: idx, reader: reader, broker: broker, logger: logger}
}

// WriteNote validates and resolves the request, persists the note, then
// updates the ancestor index chain. The response is returned once the
// note blob write is acknowledged; an index failure is logged and
// swallowed because the index is a derived view that self-heals on the
// next write under the same prefix.
func (s *Service) WriteNote(ctx context.Context, req WriteRequest) (*NoteResult, error) {
	mode, err := notestore.ParseMode(req.Mode)
	if err != nil {
		return nil, err
	}
	key, err := notekey.Resolve(req.Project, req.Section, req.Title)
	if err != nil {
		return nil, err
	}

	doc, err := s.notes.Write(ctx, key, req.Title, req.Body, mode)
	if err != nil {
		return nil, err
	}

	if err := s.idx.Reindex(ctx, key); err != nil {
		s.logger.Warn("index update failed, listing may lag",
			slog.String("key", doc.Key),
			slog.String("error", err.Error()))
	}

	if s.broker != nil {
		s.broker.Publish(events.NoteWritten{
			Path:    doc.Key,
			Project: key.Project,
			Section: key.SectionPath(),
			Title:   key.Title,
		})
	}

	return &NoteResult{
		Path:    doc.Key,
		Content: notestore.Truncate(doc.Content, mode, doc.Previous),
	}, nil
}

// ReadNote resolves the triple and fetches the note.
func (s *Service) ReadNote(ctx context.Context, project, section, title string) (*NoteResult, error) {
	key, err := notekey.Resolve(project, section, title)
	if err != nil {
		return nil, err
	}
	doc, err := s.notes.Read(ctx, key)
	if err != nil {
		return nil, err
	}
	return &NoteResult{
		Path:    doc.Key,
		Content: notestore.Truncate(doc.Content, notestore.ModeOverwrite, ""),
	}, nil
}

// ListIndex returns the full project/section/note listing.
func (s *Service) ListIndex(ctx context.Context) ([]indexer.Project, error) {
	return s.reader.ListAll(ctx)
}
