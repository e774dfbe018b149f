package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"notedeck/internal/errors"
	"notedeck/internal/service"
)

// AdminHandler handles the admin dashboard endpoints. Routes using it are
// mounted behind the RequireRole("admin") gate; handlers here do not
// repeat the role check.
type AdminHandler struct {
	noteService service.NoteService
	userService service.UserService
}

// NewAdminHandler creates a new admin handler.
func NewAdminHandler(noteService service.NoteService, userService service.UserService) *AdminHandler {
	return &AdminHandler{noteService: noteService, userService: userService}
}

// AddRoleRequest represents a role grant payload.
type AddRoleRequest struct {
	Role string `json:"role" validate:"required,min=1,max=50"`
}

// ListNotes returns every note joined with its owner's username.
func (h *AdminHandler) ListNotes(c echo.Context) error {
	notes, err := h.noteService.ListAll(c.Request().Context())
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, notes)
}

// UpdateNote edits any user's note, no ownership check.
func (h *AdminHandler) UpdateNote(c echo.Context) error {
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

// DeleteNote removes any user's note, no ownership check.
func (h *AdminHandler) DeleteNote(c echo.Context) error {
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

// ListUsers returns all accounts.
func (h *AdminHandler) ListUsers(c echo.Context) error {
	users, err := h.userService.List(c.Request().Context())
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, users)
}

// AddRole grants a role to a user. The store is updated immediately; the
// grantee picks it up with their next session.
func (h *AdminHandler) AddRole(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid user id")
	}

	var req AddRoleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, err := h.userService.AddRole(c.Request().Context(), id, req.Role)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, user)
}
