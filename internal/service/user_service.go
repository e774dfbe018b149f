package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"notedeck/internal/auth"
	"notedeck/internal/config"
	apperrors "notedeck/internal/errors"
	"notedeck/internal/model"
	"notedeck/internal/repository"
)

// UserService exposes the admin-facing account operations and the startup
// bootstrap.
type UserService interface {
	Get(ctx context.Context, id uuid.UUID) (*model.User, error)
	List(ctx context.Context) ([]model.User, error)
	AddRole(ctx context.Context, id uuid.UUID, role string) (*model.User, error)
	Bootstrap(ctx context.Context, account config.BootstrapAccount, role string) error
}

type userService struct {
	repo repository.UserRepository
	log  *zap.Logger
}

// NewUserService builds a UserService.
func NewUserService(repo repository.UserRepository, log *zap.Logger) UserService {
	return &userService{repo: repo, log: log}
}

func (s *userService) Get(ctx context.Context, id uuid.UUID) (*model.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return user, nil
}

func (s *userService) List(ctx context.Context) ([]model.User, error) {
	return s.repo.List(ctx)
}

// AddRole grows the user's role set. Roles never shrink; adding an
// already-held role is a no-op that still returns the current user.
func (s *userService) AddRole(ctx context.Context, id uuid.UUID, role string) (*model.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	if user.HasRole(role) {
		return user, nil
	}

	roles := user.Roles.Add(role)
	if err := s.repo.SetRoles(ctx, id, roles); err != nil {
		return nil, fmt.Errorf("set roles: %w", err)
	}
	user.Roles = roles
	return user, nil
}

// Bootstrap provisions a configured account at startup if it does not
// exist yet. Bootstrap accounts are created already confirmed so the
// operator can log in without a mail round trip. Existing accounts are
// left untouched.
func (s *userService) Bootstrap(ctx context.Context, account config.BootstrapAccount, role string) error {
	if !account.Enabled() {
		return nil
	}

	if _, err := s.repo.FindByUsername(ctx, account.Username); err == nil {
		return nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("check bootstrap account: %w", err)
	}

	hash, err := auth.HashPassword(account.Password)
	if err != nil {
		return fmt.Errorf("hash bootstrap password: %w", err)
	}

	user := &model.User{
		Username:       account.Username,
		Email:          account.Email,
		PasswordHash:   hash,
		EmailConfirmed: true,
		Roles:          model.RoleList{role},
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return fmt.Errorf("create bootstrap account: %w", err)
	}

	s.log.Info("bootstrap account created",
		zap.String("username", account.Username),
		zap.String("role", role),
	)
	return nil
}
