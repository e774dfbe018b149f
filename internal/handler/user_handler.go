package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"notedeck/internal/auth"
	"notedeck/internal/errors"
	"notedeck/internal/service"
)

// UserHandler handles the authenticated self-service endpoints.
type UserHandler struct {
	userService service.UserService
}

// NewUserHandler creates a new user handler.
func NewUserHandler(userService service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// Me returns the calling principal's account.
func (h *UserHandler) Me(c echo.Context) error {
	p, ok := auth.CurrentPrincipal(c)
	if !ok {
		return echo.ErrUnauthorized
	}

	user, err := h.userService.Get(c.Request().Context(), p.UserID)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, user)
}
