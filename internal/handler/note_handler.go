package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"notedeck/internal/auth"
	"notedeck/internal/errors"
	"notedeck/internal/service"
)

// NoteHandler handles the note CRUD endpoints.
type NoteHandler struct {
	noteService service.NoteService
}

// NewNoteHandler creates a new note handler.
func NewNoteHandler(noteService service.NoteService) *NoteHandler {
	return &NoteHandler{noteService: noteService}
}

// NoteRequest represents a note create/update payload.
type NoteRequest struct {
	Title   string `json:"title" validate:"required"`
	Content string `json:"content"`
}

// List returns the caller's notes, newest first.
func (h *NoteHandler) List(c echo.Context) error {
	p, ok := auth.CurrentPrincipal(c)
	if !ok {
		return echo.ErrUnauthorized
	}

	notes, err := h.noteService.ListOwn(c.Request().Context(), p)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, notes)
}

// Create stores a new sanitized note owned by the caller.
func (h *NoteHandler) Create(c echo.Context) error {
	p, ok := auth.CurrentPrincipal(c)
	if !ok {
		return echo.ErrUnauthorized
	}

	var req NoteRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	note, err := h.noteService.Create(c.Request().Context(), p, req.Title, req.Content)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusCreated, note)
}

// Get returns a single note.
func (h *NoteHandler) Get(c echo.Context) error {
	p, id, err := principalAndID(c)
	if err != nil {
		return err
	}

	note, err := h.noteService.Get(c.Request().Context(), p, id)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, note)
}

// Update replaces title and content of an owned note.
func (h *NoteHandler) Update(c echo.Context) error {
	p, id, err := principalAndID(c)
	if err != nil {
		return err
	}

	var req NoteRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	note, err := h.noteService.Update(c.Request().Context(), p, id, req.Title, req.Content)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, note)
}

// Delete removes an owned note.
func (h *NoteHandler) Delete(c echo.Context) error {
	p, id, err := principalAndID(c)
	if err != nil {
		return err
	}

	if err := h.noteService.Delete(c.Request().Context(), p, id); err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "note deleted"})
}

// RenderHTML returns the note content rendered from markdown to HTML.
func (h *NoteHandler) RenderHTML(c echo.Context) error {
	p, id, err := principalAndID(c)
	if err != nil {
		return err
	}

	rendered, err := h.noteService.RenderHTML(c.Request().Context(), p, id)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.HTML(http.StatusOK, rendered)
}

func principalAndID(c echo.Context) (auth.Principal, uuid.UUID, error) {
	p, ok := auth.CurrentPrincipal(c)
	if !ok {
		return auth.Principal{}, uuid.Nil, echo.ErrUnauthorized
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return auth.Principal{}, uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid note id")
	}
	return p, id, nil
}
