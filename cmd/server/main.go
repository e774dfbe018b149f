package main

import (
	"context"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"notedeck/internal/auth"
	"notedeck/internal/cache"
	"notedeck/internal/config"
	"notedeck/internal/db"
	"notedeck/internal/handler"
	"notedeck/internal/logger"
	"notedeck/internal/mail"
	"notedeck/internal/model"
	"notedeck/internal/repository"
	"notedeck/internal/router"
	"notedeck/internal/service"
)

func main() {
	cfg := config.Load()

	zlog, sync := logger.New(cfg.LogLevel, cfg.LogJSON)
	defer sync()

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("database init: %v", err)
	}

	if err := gormDB.AutoMigrate(&model.User{}, &model.Note{}); err != nil {
		log.Fatalf("auto-migrate: %v", err)
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)

	// Initialize repositories
	userRepo := repository.NewUserRepository(gormDB)
	noteRepo := repository.NewNoteRepository(gormDB)

	// Initialize auth components
	jwtService := auth.NewJWTService(cfg.SecretKey, cfg.SessionTTL)
	confirmSigner := auth.NewConfirmSigner(cfg.SecretKey)
	sessionStore := auth.NewSessionStore(cacheClient)

	var mailer mail.Sender
	if cfg.Mail.Host != "" {
		mailer = mail.NewSMTPSender(cfg.Mail)
	} else {
		zlog.Warn("no mail server configured, confirmation links go to the log")
		mailer = mail.NewLogSender(zlog)
	}

	// Initialize services
	authService := service.NewAuthService(
		userRepo,
		jwtService,
		confirmSigner,
		sessionStore,
		mailer,
		cfg.BaseURL,
		cfg.ConfirmMaxAge,
		zlog,
	)
	noteService := service.NewNoteService(noteRepo, cacheClient)
	userService := service.NewUserService(userRepo, zlog)

	// Seed the well-known accounts when configured. Both come up with
	// their email already confirmed.
	ctx := context.Background()
	if err := userService.Bootstrap(ctx, cfg.BootstrapAdmin, model.RoleAdmin); err != nil {
		zlog.Error("bootstrap admin account", zap.Error(err))
	}
	if err := userService.Bootstrap(ctx, cfg.BootstrapUser, model.RoleUser); err != nil {
		zlog.Error("bootstrap user account", zap.Error(err))
	}

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	noteHandler := handler.NewNoteHandler(noteService)
	adminHandler := handler.NewAdminHandler(noteService, userService)

	e := echo.New()
	e.HideBanner = true

	router.Register(
		e,
		cfg,
		zlog,
		sessionStore,
		userRepo,
		authHandler,
		userHandler,
		noteHandler,
		adminHandler,
	)

	addr := ":" + cfg.ServerPort
	zlog.Info("starting server", zap.String("addr", addr))
	if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server start: %v", err)
	}
}
