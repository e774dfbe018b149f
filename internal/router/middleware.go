package router

import (
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"gorm.io/gorm"

	"notedeck/internal/auth"
	apperrors "notedeck/internal/errors"
	"notedeck/internal/repository"
)

// Session verifies the bearer token signature and expiry. It stops short of
// trusting the session; Principal does the denylist check.
func Session(secret string) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		SigningKey: []byte(secret),
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return new(auth.SessionClaims)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return echo.NewHTTPError(http.StatusUnauthorized, apperrors.ErrorResponse{
				Error: "missing or invalid session token",
				Code:  "UNAUTHORIZED",
			})
		},
	})
}

// Principal rejects revoked sessions, resolves the caller's account and
// binds the resulting identity to the request context. Must run after
// Session. Roles are read from the store on every request rather than
// trusted from the token, so a role granted to a live session takes
// effect on that session's next request.
func Principal(sessions auth.SessionStoreInterface, users repository.UserRepository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := c.Get("user").(*jwt.Token)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, apperrors.ErrorResponse{
					Error: "missing or invalid session token",
					Code:  "UNAUTHORIZED",
				})
			}
			claims, ok := token.Claims.(*auth.SessionClaims)
			if !ok || claims.ID == "" || claims.UserID == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, apperrors.ErrorResponse{
					Error: "missing or invalid session token",
					Code:  "UNAUTHORIZED",
				})
			}
			uid, err := uuid.Parse(claims.UserID)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, apperrors.ErrorResponse{
					Error: "missing or invalid session token",
					Code:  "UNAUTHORIZED",
				})
			}

			revoked, _ := sessions.IsRevoked(c.Request().Context(), claims.ID)
			if revoked {
				return echo.NewHTTPError(http.StatusUnauthorized, apperrors.ErrorResponse{
					Error: "session revoked",
					Code:  "UNAUTHORIZED",
				})
			}

			user, err := users.FindByID(c.Request().Context(), uid)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					// A session for a deleted account is worthless.
					return echo.NewHTTPError(http.StatusUnauthorized, apperrors.ErrorResponse{
						Error: "session revoked",
						Code:  "UNAUTHORIZED",
					})
				}
				return err
			}

			auth.StoreSession(c, claims, user.Roles)
			return next(c)
		}
	}
}

// RequireRole gates a route group on a role held by the current principal.
// Any deny, an anonymous caller included, is a 403: the gate answers
// "may you do this", not "who are you".
func RequireRole(role string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p, ok := auth.CurrentPrincipal(c)
			if !ok {
				return echo.NewHTTPError(http.StatusForbidden, apperrors.ErrorResponse{
					Error: "insufficient role",
					Code:  "FORBIDDEN",
				})
			}
			if !p.HasRole(role) {
				return echo.NewHTTPError(http.StatusForbidden, apperrors.ErrorResponse{
					Error: "insufficient role",
					Code:  "FORBIDDEN",
				})
			}
			return next(c)
		}
	}
}

// RateLimiter enforces a per-client request budget, keyed by remote IP.
// perMin is spread evenly across the minute with a burst of the full quota.
func RateLimiter(perMin int) echo.MiddlewareFunc {
	tooMany := func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusTooManyRequests, apperrors.ErrorResponse{
			Error: "too many requests",
			Code:  "RATE_LIMITED",
		})
	}

	store := middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(float64(perMin) / 60.0),
		Burst:     perMin,
		ExpiresIn: 3 * time.Minute,
	})

	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: store,
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return tooMany(c)
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			return tooMany(c)
		},
	})
}

// NewHTTPErrorHandler renders every error as a JSON ErrorResponse.
// Unexpected errors are logged and surface as an opaque 500.
func NewHTTPErrorHandler(log *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var he *echo.HTTPError
		if errors.As(err, &he) {
			switch msg := he.Message.(type) {
			case apperrors.ErrorResponse:
				_ = c.JSON(he.Code, msg)
			case string:
				_ = c.JSON(he.Code, apperrors.ErrorResponse{Error: msg, Code: codeForStatus(he.Code)})
			default:
				_ = c.JSON(he.Code, apperrors.ErrorResponse{Error: http.StatusText(he.Code), Code: codeForStatus(he.Code)})
			}
			return
		}

		log.Error("unhandled request error",
			zap.Error(err),
			zap.String("method", c.Request().Method),
			zap.String("path", c.Request().URL.Path),
		)
		_ = c.JSON(http.StatusInternalServerError, apperrors.ErrorResponse{
			Error: "internal server error",
			Code:  "INTERNAL_ERROR",
		})
	}
}

func codeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "BAD_REQUEST"
	case http.StatusUnauthorized:
		return "UNAUTHORIZED"
	case http.StatusForbidden:
		return "FORBIDDEN"
	case http.StatusNotFound:
		return "NOT_FOUND"
	case http.StatusConflict:
		return "CONFLICT"
	case http.StatusTooManyRequests:
		return "RATE_LIMITED"
	default:
		return "INTERNAL_ERROR"
	}
}
