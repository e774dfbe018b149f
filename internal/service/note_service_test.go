package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"

	"notedeck/internal/auth"
	apperrors "notedeck/internal/errors"
	"notedeck/internal/model"
	"notedeck/internal/repository"
)

// MockNoteRepository is a mock implementation of NoteRepository.
type MockNoteRepository struct {
	mock.Mock
}

func (m *MockNoteRepository) Create(ctx context.Context, note *model.Note) error {
	args := m.Called(ctx, note)
	return args.Error(0)
}

func (m *MockNoteRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Note, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Note), args.Error(1)
}

func (m *MockNoteRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]model.Note, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Note), args.Error(1)
}

func (m *MockNoteRepository) ListAllWithOwners(ctx context.Context) ([]repository.NoteWithOwner, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]repository.NoteWithOwner), args.Error(1)
}

func (m *MockNoteRepository) UpdateContent(ctx context.Context, id uuid.UUID, title, content string) error {
	args := m.Called(ctx, id, title, content)
	return args.Error(0)
}

func (m *MockNoteRepository) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockNoteRepository) DeleteOwned(ctx context.Context, id, ownerID uuid.UUID) (int64, error) {
	args := m.Called(ctx, id, ownerID)
	return args.Get(0).(int64), args.Error(1)
}

func userPrincipal(id uuid.UUID) auth.Principal {
	return auth.Principal{UserID: id, Roles: model.RoleList{model.RoleUser}}
}

func adminPrincipal(id uuid.UUID) auth.Principal {
	return auth.Principal{UserID: id, Roles: model.RoleList{model.RoleUser, model.RoleAdmin}}
}

func TestNoteService_Create(t *testing.T) {
	owner := uuid.New()

	tests := []struct {
		name        string
		title       string
		content     string
		setupMock   func(*MockNoteRepository)
		wantErr     error
		wantTitle   string
		wantContent string
	}{
		{
			name:    "plain note",
			title:   "Shopping list",
			content: "milk and eggs",
			setupMock: func(repo *MockNoteRepository) {
				repo.On("Create", mock.Anything, mock.AnythingOfType("*model.Note")).Return(nil)
			},
			wantTitle:   "Shopping list",
			wantContent: "milk and eggs",
		},
		{
			name:    "hostile markup is cleaned before persisting",
			title:   "<b>Plans</b>",
			content: `<script>steal()</script><p>visible</p>`,
			setupMock: func(repo *MockNoteRepository) {
				repo.On("Create", mock.Anything, mock.AnythingOfType("*model.Note")).Return(nil)
			},
			wantTitle:   "<b>Plans</b>",
			wantContent: "<p>visible</p>",
		},
		{
			name:      "title that sanitizes to nothing",
			title:     "<script>x</script>",
			content:   "body",
			setupMock: func(repo *MockNoteRepository) {},
			wantErr:   apperrors.ErrEmptyTitle,
		},
		{
			name:      "empty title",
			title:     "",
			content:   "body",
			setupMock: func(repo *MockNoteRepository) {},
			wantErr:   apperrors.ErrEmptyTitle,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockNoteRepository)
			tt.setupMock(repo)

			svc := NewNoteService(repo, nil)
			note, err := svc.Create(context.Background(), userPrincipal(owner), tt.title, tt.content)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, note)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, owner, note.OwnerID)
				assert.Equal(t, tt.wantTitle, note.Title)
				assert.Equal(t, tt.wantContent, note.Content)
			}

			repo.AssertExpectations(t)
		})
	}
}

func TestNoteService_Get(t *testing.T) {
	owner := uuid.New()
	stranger := uuid.New()
	noteID := uuid.New()
	note := &model.Note{ID: noteID, OwnerID: owner, Title: "mine"}

	tests := []struct {
		name      string
		principal auth.Principal
		setupMock func(*MockNoteRepository)
		wantErr   error
	}{
		{
			name:      "owner reads own note",
			principal: userPrincipal(owner),
			setupMock: func(repo *MockNoteRepository) {
				repo.On("FindByID", mock.Anything, noteID).Return(note, nil)
			},
		},
		{
			name:      "stranger sees not found, not forbidden",
			principal: userPrincipal(stranger),
			setupMock: func(repo *MockNoteRepository) {
				repo.On("FindByID", mock.Anything, noteID).Return(note, nil)
			},
			wantErr: apperrors.ErrNotFound,
		},
		{
			name:      "admin reads anyone's note",
			principal: adminPrincipal(stranger),
			setupMock: func(repo *MockNoteRepository) {
				repo.On("FindByID", mock.Anything, noteID).Return(note, nil)
			},
		},
		{
			name:      "missing note",
			principal: userPrincipal(owner),
			setupMock: func(repo *MockNoteRepository) {
				repo.On("FindByID", mock.Anything, noteID).Return(nil, gorm.ErrRecordNotFound)
			},
			wantErr: apperrors.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockNoteRepository)
			tt.setupMock(repo)

			svc := NewNoteService(repo, nil)
			got, err := svc.Get(context.Background(), tt.principal, noteID)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, note.ID, got.ID)
			}

			repo.AssertExpectations(t)
		})
	}
}

func TestNoteService_Update(t *testing.T) {
	owner := uuid.New()
	noteID := uuid.New()
	stored := &model.Note{ID: noteID, OwnerID: owner, Title: "old", Content: "old body"}

	t.Run("owner update sanitizes and persists", func(t *testing.T) {
		repo := new(MockNoteRepository)
		repo.On("FindByID", mock.Anything, noteID).Return(stored, nil)
		repo.On("UpdateContent", mock.Anything, noteID, "new title", "<p>new body</p>").Return(nil)

		svc := NewNoteService(repo, nil)
		_, err := svc.Update(context.Background(), userPrincipal(owner), noteID,
			"new title", `<p onclick="x()">new body</p>`)
		assert.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("note deleted between write and re-read maps to not found", func(t *testing.T) {
		repo := new(MockNoteRepository)
		repo.On("FindByID", mock.Anything, noteID).Return(stored, nil).Once()
		repo.On("UpdateContent", mock.Anything, noteID, "t", "c").Return(nil)
		repo.On("FindByID", mock.Anything, noteID).Return(nil, gorm.ErrRecordNotFound).Once()

		svc := NewNoteService(repo, nil)
		_, err := svc.Update(context.Background(), userPrincipal(owner), noteID, "t", "c")
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
		repo.AssertExpectations(t)
	})

	t.Run("stranger cannot update", func(t *testing.T) {
		repo := new(MockNoteRepository)
		repo.On("FindByID", mock.Anything, noteID).Return(stored, nil)

		svc := NewNoteService(repo, nil)
		_, err := svc.Update(context.Background(), userPrincipal(uuid.New()), noteID, "t", "c")
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
		repo.AssertNotCalled(t, "UpdateContent")
	})

	t.Run("update with empty title refused", func(t *testing.T) {
		repo := new(MockNoteRepository)
		repo.On("FindByID", mock.Anything, noteID).Return(stored, nil)

		svc := NewNoteService(repo, nil)
		_, err := svc.Update(context.Background(), userPrincipal(owner), noteID, "", "c")
		assert.ErrorIs(t, err, apperrors.ErrEmptyTitle)
		repo.AssertNotCalled(t, "UpdateContent")
	})
}

func TestNoteService_Delete(t *testing.T) {
	owner := uuid.New()
	noteID := uuid.New()

	tests := []struct {
		name      string
		principal auth.Principal
		setupMock func(*MockNoteRepository)
		wantErr   error
	}{
		{
			name:      "owner delete goes through the ownership filter",
			principal: userPrincipal(owner),
			setupMock: func(repo *MockNoteRepository) {
				repo.On("DeleteOwned", mock.Anything, noteID, owner).Return(int64(1), nil)
			},
		},
		{
			name:      "owner delete of someone else's note reads as missing",
			principal: userPrincipal(owner),
			setupMock: func(repo *MockNoteRepository) {
				repo.On("DeleteOwned", mock.Anything, noteID, owner).Return(int64(0), nil)
			},
			wantErr: apperrors.ErrNotFound,
		},
		{
			name:      "admin deletes unscoped",
			principal: adminPrincipal(uuid.New()),
			setupMock: func(repo *MockNoteRepository) {
				repo.On("Delete", mock.Anything, noteID).Return(int64(1), nil)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockNoteRepository)
			tt.setupMock(repo)

			svc := NewNoteService(repo, nil)
			err := svc.Delete(context.Background(), tt.principal, noteID)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}

			repo.AssertExpectations(t)
		})
	}
}

func TestNoteService_RenderHTML(t *testing.T) {
	owner := uuid.New()
	noteID := uuid.New()
	repo := new(MockNoteRepository)
	repo.On("FindByID", mock.Anything, noteID).Return(&model.Note{
		ID:      noteID,
		OwnerID: owner,
		Content: "# Heading\n\nbody",
	}, nil)

	svc := NewNoteService(repo, nil)
	html, err := svc.RenderHTML(context.Background(), userPrincipal(owner), noteID)
	assert.NoError(t, err)
	assert.Equal(t, "<h1>Heading</h1>\n<p>body</p>\n", html)
}
