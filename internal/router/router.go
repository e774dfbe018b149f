package router

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"notedeck/internal/auth"
	"notedeck/internal/config"
	"notedeck/internal/handler"
	"notedeck/internal/model"
	"notedeck/internal/repository"
)

// Register wires routes and middleware.
func Register(
	e *echo.Echo,
	cfg *config.Config,
	log *zap.Logger,
	sessions auth.SessionStoreInterface,
	users repository.UserRepository,
	authHandler *handler.AuthHandler,
	userHandler *handler.UserHandler,
	noteHandler *handler.NoteHandler,
	adminHandler *handler.AdminHandler,
) {
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(RateLimiter(cfg.RateLimitPerMin))

	e.Validator = &CustomValidator{validator: validator.New()}
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	api := e.Group("/api")

	// Public routes
	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)
	api.GET("/auth/confirm/:token", authHandler.Confirm)

	// Secured routes (require a live session)
	secured := api.Group("", Session(cfg.SecretKey), Principal(sessions, users))

	secured.POST("/auth/logout", authHandler.Logout)
	secured.GET("/me", userHandler.Me)

	// Note routes
	secured.GET("/notes", noteHandler.List)
	secured.POST("/notes", noteHandler.Create)
	secured.GET("/notes/:id", noteHandler.Get)
	secured.PUT("/notes/:id", noteHandler.Update)
	secured.DELETE("/notes/:id", noteHandler.Delete)
	secured.GET("/notes/:id/html", noteHandler.RenderHTML)

	// Admin routes
	admin := secured.Group("/admin", RequireRole(model.RoleAdmin))
	admin.GET("/notes", adminHandler.ListNotes)
	admin.PUT("/notes/:id", adminHandler.UpdateNote)
	admin.DELETE("/notes/:id", adminHandler.DeleteNote)
	admin.GET("/users", adminHandler.ListUsers)
	admin.POST("/users/:id/roles", adminHandler.AddRole)
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
