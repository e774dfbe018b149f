package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"notedeck/internal/auth"
	apperrors "notedeck/internal/errors"
	"notedeck/internal/model"
)

// MockUserRepository is a mock implementation of UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) List(ctx context.Context) ([]model.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.User), args.Error(1)
}

func (m *MockUserRepository) SetEmailConfirmed(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockUserRepository) SetRoles(ctx context.Context, id uuid.UUID, roles model.RoleList) error {
	args := m.Called(ctx, id, roles)
	return args.Error(0)
}

// MockSessionStore is a mock implementation of SessionStoreInterface.
type MockSessionStore struct {
	mock.Mock
}

func (m *MockSessionStore) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	args := m.Called(ctx, jti, ttl)
	return args.Error(0)
}

func (m *MockSessionStore) IsRevoked(ctx context.Context, jti string) (bool, error) {
	args := m.Called(ctx, jti)
	return args.Bool(0), args.Error(1)
}

// MockMailSender is a mock implementation of mail.Sender.
type MockMailSender struct {
	mock.Mock
}

func (m *MockMailSender) Send(ctx context.Context, to, subject, htmlBody string) error {
	args := m.Called(ctx, to, subject, htmlBody)
	return args.Error(0)
}

func newTestAuthService(repo *MockUserRepository, sessions *MockSessionStore, mailer *MockMailSender) AuthService {
	return NewAuthService(
		repo,
		auth.NewJWTService("test-secret", time.Hour),
		auth.NewConfirmSigner("test-secret"),
		sessions,
		mailer,
		"http://localhost:8080",
		time.Hour,
		zap.NewNop(),
	)
}

func TestAuthService_Register(t *testing.T) {
	tests := []struct {
		name            string
		username        string
		email           string
		setupMock       func(*MockUserRepository, *MockMailSender)
		wantErr         error
		wantMailWarning bool
	}{
		{
			name:     "successful registration",
			username: "newuser",
			email:    "new@example.com",
			setupMock: func(repo *MockUserRepository, mailer *MockMailSender) {
				repo.On("FindByUsername", mock.Anything, "newuser").Return(nil, gorm.ErrRecordNotFound)
				repo.On("FindByEmail", mock.Anything, "new@example.com").Return(nil, gorm.ErrRecordNotFound)
				repo.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)
				mailer.On("Send", mock.Anything, "new@example.com", "Confirm your email", mock.AnythingOfType("string")).Return(nil)
			},
		},
		{
			name:     "username taken",
			username: "taken",
			email:    "new@example.com",
			setupMock: func(repo *MockUserRepository, mailer *MockMailSender) {
				repo.On("FindByUsername", mock.Anything, "taken").Return(&model.User{Username: "taken"}, nil)
			},
			wantErr: apperrors.ErrUserAlreadyExists,
		},
		{
			name:     "email taken",
			username: "newuser",
			email:    "taken@example.com",
			setupMock: func(repo *MockUserRepository, mailer *MockMailSender) {
				repo.On("FindByUsername", mock.Anything, "newuser").Return(nil, gorm.ErrRecordNotFound)
				repo.On("FindByEmail", mock.Anything, "taken@example.com").Return(&model.User{Email: "taken@example.com"}, nil)
			},
			wantErr: apperrors.ErrUserAlreadyExists,
		},
		{
			name:     "losing a concurrent duplicate race reads as taken",
			username: "newuser",
			email:    "new@example.com",
			setupMock: func(repo *MockUserRepository, mailer *MockMailSender) {
				repo.On("FindByUsername", mock.Anything, "newuser").Return(nil, gorm.ErrRecordNotFound)
				repo.On("FindByEmail", mock.Anything, "new@example.com").Return(nil, gorm.ErrRecordNotFound)
				repo.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(gorm.ErrDuplicatedKey)
			},
			wantErr: apperrors.ErrUserAlreadyExists,
		},
		{
			name:     "mail failure does not fail registration",
			username: "newuser",
			email:    "new@example.com",
			setupMock: func(repo *MockUserRepository, mailer *MockMailSender) {
				repo.On("FindByUsername", mock.Anything, "newuser").Return(nil, gorm.ErrRecordNotFound)
				repo.On("FindByEmail", mock.Anything, "new@example.com").Return(nil, gorm.ErrRecordNotFound)
				repo.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)
				mailer.On("Send", mock.Anything, "new@example.com", mock.Anything, mock.Anything).Return(assert.AnError)
			},
			wantMailWarning: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockUserRepository)
			sessions := new(MockSessionStore)
			mailer := new(MockMailSender)
			tt.setupMock(repo, mailer)

			svc := newTestAuthService(repo, sessions, mailer)
			user, mailWarning, err := svc.Register(context.Background(), tt.username, tt.email, "password123")

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, user)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, user)
				assert.Equal(t, tt.username, user.Username)
				assert.Equal(t, tt.email, user.Email)
				assert.False(t, user.EmailConfirmed)
				assert.Equal(t, model.RoleList{model.RoleUser}, user.Roles)
				assert.NotEmpty(t, user.PasswordHash)
				assert.NotEqual(t, "password123", user.PasswordHash)
				assert.Equal(t, tt.wantMailWarning, mailWarning)
			}

			repo.AssertExpectations(t)
			mailer.AssertExpectations(t)
		})
	}
}

func TestAuthService_Login(t *testing.T) {
	hash, err := auth.HashPassword("password123")
	assert.NoError(t, err)

	confirmed := &model.User{
		ID:             uuid.New(),
		Username:       "alice",
		Email:          "alice@example.com",
		PasswordHash:   hash,
		EmailConfirmed: true,
		Roles:          model.RoleList{model.RoleUser},
	}
	unconfirmed := &model.User{
		ID:           uuid.New(),
		Username:     "bob",
		Email:        "bob@example.com",
		PasswordHash: hash,
		Roles:        model.RoleList{model.RoleUser},
	}

	tests := []struct {
		name      string
		login     string
		password  string
		setupMock func(*MockUserRepository)
		wantErr   error
	}{
		{
			name:     "login by username",
			login:    "alice",
			password: "password123",
			setupMock: func(repo *MockUserRepository) {
				repo.On("FindByUsername", mock.Anything, "alice").Return(confirmed, nil)
			},
		},
		{
			name:     "login by email",
			login:    "alice@example.com",
			password: "password123",
			setupMock: func(repo *MockUserRepository) {
				repo.On("FindByUsername", mock.Anything, "alice@example.com").Return(nil, gorm.ErrRecordNotFound)
				repo.On("FindByEmail", mock.Anything, "alice@example.com").Return(confirmed, nil)
			},
		},
		{
			name:     "unknown account",
			login:    "nobody",
			password: "password123",
			setupMock: func(repo *MockUserRepository) {
				repo.On("FindByUsername", mock.Anything, "nobody").Return(nil, gorm.ErrRecordNotFound)
				repo.On("FindByEmail", mock.Anything, "nobody").Return(nil, gorm.ErrRecordNotFound)
			},
			wantErr: apperrors.ErrInvalidCredentials,
		},
		{
			name:     "wrong password matches unknown account error",
			login:    "alice",
			password: "not-the-password",
			setupMock: func(repo *MockUserRepository) {
				repo.On("FindByUsername", mock.Anything, "alice").Return(confirmed, nil)
			},
			wantErr: apperrors.ErrInvalidCredentials,
		},
		{
			name:     "unconfirmed email refused distinctly",
			login:    "bob",
			password: "password123",
			setupMock: func(repo *MockUserRepository) {
				repo.On("FindByUsername", mock.Anything, "bob").Return(unconfirmed, nil)
			},
			wantErr: apperrors.ErrEmailNotConfirmed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockUserRepository)
			tt.setupMock(repo)

			svc := newTestAuthService(repo, new(MockSessionStore), new(MockMailSender))
			token, user, err := svc.Login(context.Background(), tt.login, tt.password)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, token)
				assert.Nil(t, user)
			} else {
				assert.NoError(t, err)
				assert.NotEmpty(t, token)
				assert.Equal(t, confirmed.Username, user.Username)
			}

			repo.AssertExpectations(t)
		})
	}
}

func TestAuthService_ConfirmEmail(t *testing.T) {
	signer := auth.NewConfirmSigner("test-secret")
	token, err := signer.Issue("alice@example.com")
	assert.NoError(t, err)

	userID := uuid.New()

	tests := []struct {
		name       string
		token      string
		setupMock  func(*MockUserRepository)
		wantResult ConfirmResult
		wantErr    error
	}{
		{
			name:  "first confirmation flips the flag",
			token: token,
			setupMock: func(repo *MockUserRepository) {
				repo.On("FindByEmail", mock.Anything, "alice@example.com").Return(&model.User{
					ID:    userID,
					Email: "alice@example.com",
				}, nil)
				repo.On("SetEmailConfirmed", mock.Anything, userID).Return(nil)
			},
			wantResult: Confirmed,
		},
		{
			name:  "repeat confirmation is a no-op",
			token: token,
			setupMock: func(repo *MockUserRepository) {
				repo.On("FindByEmail", mock.Anything, "alice@example.com").Return(&model.User{
					ID:             userID,
					Email:          "alice@example.com",
					EmailConfirmed: true,
				}, nil)
			},
			wantResult: AlreadyConfirmed,
		},
		{
			name:      "tampered token",
			token:     token + "x",
			setupMock: func(repo *MockUserRepository) {},
			wantErr:   apperrors.ErrTokenInvalid,
		},
		{
			name:  "token for a deleted account",
			token: token,
			setupMock: func(repo *MockUserRepository) {
				repo.On("FindByEmail", mock.Anything, "alice@example.com").Return(nil, gorm.ErrRecordNotFound)
			},
			wantErr: apperrors.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockUserRepository)
			tt.setupMock(repo)

			svc := newTestAuthService(repo, new(MockSessionStore), new(MockMailSender))
			result, err := svc.ConfirmEmail(context.Background(), tt.token)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.wantResult, result)
			}

			repo.AssertExpectations(t)
		})
	}
}

func TestAuthService_Logout(t *testing.T) {
	t.Run("live session is revoked for its remaining lifetime", func(t *testing.T) {
		sessions := new(MockSessionStore)
		sessions.On("Revoke", mock.Anything, "some-jti", mock.AnythingOfType("time.Duration")).Return(nil)

		svc := newTestAuthService(new(MockUserRepository), sessions, new(MockMailSender))
		err := svc.Logout(context.Background(), "some-jti", time.Now().Add(time.Hour))
		assert.NoError(t, err)
		sessions.AssertExpectations(t)
	})

	t.Run("expired session needs no denylist entry", func(t *testing.T) {
		sessions := new(MockSessionStore)

		svc := newTestAuthService(new(MockUserRepository), sessions, new(MockMailSender))
		err := svc.Logout(context.Background(), "some-jti", time.Now().Add(-time.Minute))
		assert.NoError(t, err)
		sessions.AssertNotCalled(t, "Revoke")
	})
}
