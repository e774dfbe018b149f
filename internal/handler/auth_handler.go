package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"notedeck/internal/auth"
	"notedeck/internal/errors"
	"notedeck/internal/service"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	authService service.AuthService
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// RegisterRequest represents a user registration request.
type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=4,max=25"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// LoginRequest represents a login request. Login accepts the username or
// the email address.
type LoginRequest struct {
	Login    string `json:"login" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// RegisterResponse represents a registration response.
type RegisterResponse struct {
	Message     string      `json:"message"`
	MailWarning bool        `json:"mail_warning,omitempty"`
	User        interface{} `json:"user"`
}

// LoginResponse represents a login response.
type LoginResponse struct {
	Token string      `json:"token"`
	User  interface{} `json:"user"`
}

// Register creates an unconfirmed account and triggers the confirmation
// mail. A failed delivery still registers the account; the response only
// carries a warning.
func (h *AuthHandler) Register(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, mailWarning, err := h.authService.Register(c.Request().Context(), req.Username, req.Email, req.Password)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	msg := "registration successful, confirmation mail sent"
	if mailWarning {
		msg = "registration successful, but the confirmation mail could not be sent"
	}
	return c.JSON(http.StatusCreated, RegisterResponse{
		Message:     msg,
		MailWarning: mailWarning,
		User:        user,
	})
}

// Login authenticates and returns a session token.
func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	token, user, err := h.authService.Login(c.Request().Context(), req.Login, req.Password)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	return c.JSON(http.StatusOK, LoginResponse{Token: token, User: user})
}

// Confirm validates the emailed token and marks the account confirmed.
// Malformed, tampered and expired tokens all produce the same message.
func (h *AuthHandler) Confirm(c echo.Context) error {
	result, err := h.authService.ConfirmEmail(c.Request().Context(), c.Param("token"))
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	msg := "email confirmed, you can now log in"
	if result == service.AlreadyConfirmed {
		msg = "email was already confirmed"
	}
	return c.JSON(http.StatusOK, map[string]string{"message": msg})
}

// Logout revokes the current session.
func (h *AuthHandler) Logout(c echo.Context) error {
	claims, ok := auth.CurrentClaims(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "no active session")
	}

	expiresAt := time.Now()
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}
	if err := h.authService.Logout(c.Request().Context(), claims.ID, expiresAt); err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "logged out"})
}
