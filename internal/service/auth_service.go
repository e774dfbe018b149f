package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"notedeck/internal/auth"
	apperrors "notedeck/internal/errors"
	"notedeck/internal/mail"
	"notedeck/internal/model"
	"notedeck/internal/repository"
)

// ConfirmResult describes the outcome of a confirmation link.
type ConfirmResult int

const (
	// Confirmed means the flag transitioned false to true just now.
	Confirmed ConfirmResult = iota
	// AlreadyConfirmed means a valid token hit an account that was
	// confirmed earlier. Not an error; the flag never reverts.
	AlreadyConfirmed
)

// AuthService handles registration, email confirmation and sessions.
type AuthService interface {
	Register(ctx context.Context, username, email, password string) (user *model.User, mailWarning bool, err error)
	Login(ctx context.Context, login, password string) (token string, user *model.User, err error)
	ConfirmEmail(ctx context.Context, token string) (ConfirmResult, error)
	Logout(ctx context.Context, jti string, expiresAt time.Time) error
}

type authService struct {
	userRepo      repository.UserRepository
	jwtService    *auth.JWTService
	confirmSigner *auth.ConfirmSigner
	sessions      auth.SessionStoreInterface
	mailer        mail.Sender
	baseURL       string
	confirmMaxAge time.Duration
	log           *zap.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(
	userRepo repository.UserRepository,
	jwtService *auth.JWTService,
	confirmSigner *auth.ConfirmSigner,
	sessions auth.SessionStoreInterface,
	mailer mail.Sender,
	baseURL string,
	confirmMaxAge time.Duration,
	log *zap.Logger,
) AuthService {
	return &authService{
		userRepo:      userRepo,
		jwtService:    jwtService,
		confirmSigner: confirmSigner,
		sessions:      sessions,
		mailer:        mailer,
		baseURL:       baseURL,
		confirmMaxAge: confirmMaxAge,
		log:           log,
	}
}

// Register creates an unconfirmed account with role "user" and emails a
// confirmation link. A mail delivery failure does not roll the account
// back; it is logged and surfaced to the caller as a warning flag.
func (s *authService) Register(ctx context.Context, username, email, password string) (*model.User, bool, error) {
	if err := s.ensureUnused(ctx, username, email); err != nil {
		return nil, false, err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, false, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		Username:       username,
		Email:          email,
		PasswordHash:   hash,
		EmailConfirmed: false,
		Roles:          model.RoleList{model.RoleUser},
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		// The uniqueness pre-check races concurrent registrations; the
		// unique indexes are the authority.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, false, apperrors.ErrUserAlreadyExists
		}
		return nil, false, fmt.Errorf("create user: %w", err)
	}

	mailWarning := false
	if err := s.sendConfirmation(ctx, user); err != nil {
		mailWarning = true
		s.log.Warn("confirmation mail delivery failed",
			zap.String("email", user.Email),
			zap.Error(err),
		)
	}
	return user, mailWarning, nil
}

func (s *authService) ensureUnused(ctx context.Context, username, email string) error {
	if existing, err := s.userRepo.FindByUsername(ctx, username); err == nil && existing != nil {
		return apperrors.ErrUserAlreadyExists
	} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("check username: %w", err)
	}
	if existing, err := s.userRepo.FindByEmail(ctx, email); err == nil && existing != nil {
		return apperrors.ErrUserAlreadyExists
	} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("check email: %w", err)
	}
	return nil
}

func (s *authService) sendConfirmation(ctx context.Context, user *model.User) error {
	token, err := s.confirmSigner.Issue(user.Email)
	if err != nil {
		return fmt.Errorf("issue confirmation token: %w", err)
	}
	confirmURL := fmt.Sprintf("%s/api/auth/confirm/%s", s.baseURL, token)
	body := fmt.Sprintf(
		"<p>Hi %s,</p><p>Please confirm your email address by following "+
			"<a href=%q>this link</a>. The link expires in %d minutes.</p>",
		user.Username, confirmURL, int(s.confirmMaxAge.Minutes()),
	)
	return s.mailer.Send(ctx, user.Email, "Confirm your email", body)
}

// Login authenticates by username or email and returns a session token.
// Unknown user and wrong password yield the same error; a matching but
// unconfirmed account is refused with a distinct one.
func (s *authService) Login(ctx context.Context, login, password string) (string, *model.User, error) {
	user, err := s.userRepo.FindByUsername(ctx, login)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, fmt.Errorf("find user: %w", err)
		}
		user, err = s.userRepo.FindByEmail(ctx, login)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return "", nil, apperrors.ErrInvalidCredentials
			}
			return "", nil, fmt.Errorf("find user: %w", err)
		}
	}

	if !auth.CheckPassword(user.PasswordHash, password) {
		return "", nil, apperrors.ErrInvalidCredentials
	}
	if !user.EmailConfirmed {
		return "", nil, apperrors.ErrEmailNotConfirmed
	}

	token, _, err := s.jwtService.IssueSession(user.ID, user.Roles)
	if err != nil {
		return "", nil, fmt.Errorf("issue session: %w", err)
	}
	return token, user, nil
}

// ConfirmEmail validates a confirmation token and flips the flag once.
// Expired and tampered tokens are logged distinctly but collapse to the
// same caller-facing error.
func (s *authService) ConfirmEmail(ctx context.Context, token string) (ConfirmResult, error) {
	email, err := s.confirmSigner.Validate(token, s.confirmMaxAge)
	if err != nil {
		if errors.Is(err, auth.ErrTokenExpired) {
			s.log.Info("confirmation token expired")
		} else {
			s.log.Info("confirmation token rejected", zap.Error(err))
		}
		return 0, apperrors.ErrTokenInvalid
	}

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, apperrors.ErrNotFound
		}
		return 0, fmt.Errorf("find user: %w", err)
	}
	if user.EmailConfirmed {
		return AlreadyConfirmed, nil
	}

	if err := s.userRepo.SetEmailConfirmed(ctx, user.ID); err != nil {
		return 0, fmt.Errorf("confirm email: %w", err)
	}
	return Confirmed, nil
}

// Logout denylists the session until its natural expiry, after which the
// entry is pointless anyway.
func (s *authService) Logout(ctx context.Context, jti string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	return s.sessions.Revoke(ctx, jti, ttl)
}
