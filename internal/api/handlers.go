package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/MatrixedMind/MatrixedMind/internal/apperr"
	"github.com/MatrixedMind/MatrixedMind/internal/noteservice"
)

// Handler holds API route handlers.
type Handler struct {
	svc *noteservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *noteservice.Service) *Handler {
	return &Handler{svc: svc}
}

// WriteNote handles POST /api/v1/notes.
//
//	@Summary		Create a note or append a timestamped section to it
//	@Tags			notes
//	@Accept			json
//	@Produce		json
//	@Param			body	body		NoteRequest	true	"Note to write"
//	@Success		200		{object}	NoteResponse
//	@Failure		400		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Security		ApiKeyAuth
//	@Router			/notes [post]
func (h *Handler) WriteNote(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 10<<20)
	var req NoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}

	res, err := h.svc.WriteNote(r.Context(), noteservice.WriteRequest{
		Project: req.Project,
		Section: req.Section,
		Title:   req.Title,
		Body:    req.Body,
		Mode:    req.Mode,
	})
	if err != nil {
		switch {
		case errors.Is(err, apperr.ErrValidation):
			writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		case errors.Is(err, apperr.ErrConflict):
			// Conditional-write retries exhausted; the client may retry
			// the whole request.
			writeJSON(w, http.StatusConflict, errorBody("write conflict, retry"))
		default:
			slog.Error("write note failed",
				slog.String("project", req.Project),
				slog.String("title", req.Title),
				slog.String("error", err.Error()))
			writeJSON(w, http.StatusBadGateway, errorBody("object store error"))
		}
		return
	}
	writeJSON(w, http.StatusOK, NoteResponse{Status: "ok", Path: res.Path, Content: res.Content})
}

// GetNote handles GET /api/v1/notes.
//
//	@Summary		Retrieve a note by project, section, and title
//	@Tags			notes
//	@Produce		json
//	@Param			project	query		string	true	"Project name"
//	@Param			section	query		string	false	"Section path, slash-nested"
//	@Param			title	query		string	true	"Note title"
//	@Success		200		{object}	NoteResponse
//	@Failure		404		{object}	errResponse
//	@Security		ApiKeyAuth
//	@Router			/notes [get]
func (h *Handler) GetNote(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	res, err := h.svc.ReadNote(r.Context(), q.Get("project"), q.Get("section"), q.Get("title"))
	if err != nil {
		switch {
		case errors.Is(err, apperr.ErrValidation):
			writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		case errors.Is(err, apperr.ErrNotFound):
			writeJSON(w, http.StatusNotFound, errorBody("note not found"))
		default:
			slog.Error("get note failed", slog.String("error", err.Error()))
			writeJSON(w, http.StatusBadGateway, errorBody("object store error"))
		}
		return
	}
	writeJSON(w, http.StatusOK, NoteResponse{Status: "ok", Path: res.Path, Content: res.Content})
}

// GetIndex handles GET /api/v1/index.
//
//	@Summary		List every project with its sections and note titles
//	@Tags			index
//	@Produce		json
//	@Success		200	{object}	IndexResponse
//	@Security		ApiKeyAuth
//	@Router			/index [get]
func (h *Handler) GetIndex(w http.ResponseWriter, r *http.Request) {
	projects, err := h.svc.ListIndex(r.Context())
	if err != nil {
		slog.Error("list index failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadGateway, errorBody("object store error"))
		return
	}
	writeJSON(w, http.StatusOK, IndexResponse{Status: "ok", Projects: projects})
}
