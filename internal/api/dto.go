package api

import "github.com/MatrixedMind/MatrixedMind/internal/indexer"

// NoteRequest is the request body for creating or appending a note.
type NoteRequest struct {
	Project string `json:"project" example:"Personal Wiki" validate:"required"`
	Section string `json:"section" example:"Work/Q1 Planning"`
	Title   string `json:"title" example:"Budget" validate:"required"`
	Body    string `json:"body" example:"Quarterly numbers..." validate:"required"`
	Mode    string `json:"mode,omitempty" example:"append"`
}

// NoteResponse wraps a single note for both writes and reads.
type NoteResponse struct {
	Status  string `json:"status" example:"ok"`
	Path    string `json:"path" example:"notes/Personal_Wiki/Work/Q1_Planning/Budget.md"`
	Content string `json:"content"`
}

// IndexResponse wraps the full project listing.
type IndexResponse struct {
	Status   string            `json:"status" example:"ok"`
	Projects []indexer.Project `json:"projects"`
}
