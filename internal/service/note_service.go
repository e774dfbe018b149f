package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"notedeck/internal/auth"
	"notedeck/internal/cache"
	apperrors "notedeck/internal/errors"
	"notedeck/internal/model"
	"notedeck/internal/repository"
	"notedeck/internal/sanitize"
)

const noteCacheTTL = 5 * time.Minute

// NoteService implements note CRUD with ownership and role checks. Title
// and content are sanitized before they ever reach the repository; a
// missing note and a note owned by someone else are indistinguishable to
// non-admin callers.
type NoteService interface {
	Create(ctx context.Context, p auth.Principal, title, content string) (*model.Note, error)
	Get(ctx context.Context, p auth.Principal, id uuid.UUID) (*model.Note, error)
	ListOwn(ctx context.Context, p auth.Principal) ([]model.Note, error)
	ListAll(ctx context.Context) ([]repository.NoteWithOwner, error)
	Update(ctx context.Context, p auth.Principal, id uuid.UUID, title, content string) (*model.Note, error)
	Delete(ctx context.Context, p auth.Principal, id uuid.UUID) error
	RenderHTML(ctx context.Context, p auth.Principal, id uuid.UUID) (string, error)
}

type noteService struct {
	repo  repository.NoteRepository
	cache *cache.Client
}

// NewNoteService builds a NoteService with repository and cache.
func NewNoteService(repo repository.NoteRepository, cache *cache.Client) NoteService {
	return &noteService{repo: repo, cache: cache}
}

func (s *noteService) cacheKey(id uuid.UUID) string {
	return fmt.Sprintf("note:%s", id)
}

func (s *noteService) Create(ctx context.Context, p auth.Principal, title, content string) (*model.Note, error) {
	cleanTitle := sanitize.Sanitize(title)
	if cleanTitle == "" {
		return nil, apperrors.ErrEmptyTitle
	}

	note := &model.Note{
		OwnerID: p.UserID,
		Title:   cleanTitle,
		Content: sanitize.Sanitize(content),
	}
	if err := s.repo.Create(ctx, note); err != nil {
		return nil, fmt.Errorf("create note: %w", err)
	}
	return note, nil
}

// Get returns the note when the principal owns it or is an admin.
func (s *noteService) Get(ctx context.Context, p auth.Principal, id uuid.UUID) (*model.Note, error) {
	note, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if note.OwnerID != p.UserID && !p.IsAdmin() {
		return nil, apperrors.ErrNotFound
	}
	return note, nil
}

func (s *noteService) find(ctx context.Context, id uuid.UUID) (*model.Note, error) {
	if data, _ := s.cache.Get(ctx, s.cacheKey(id)); data != nil {
		var cached model.Note
		if err := json.Unmarshal(data, &cached); err == nil {
			return &cached, nil
		}
	}

	note, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("find note: %w", err)
	}

	if payload, err := json.Marshal(note); err == nil {
		_ = s.cache.Set(ctx, s.cacheKey(id), payload, noteCacheTTL)
	}
	return note, nil
}

func (s *noteService) ListOwn(ctx context.Context, p auth.Principal) ([]model.Note, error) {
	return s.repo.ListByOwner(ctx, p.UserID)
}

func (s *noteService) ListAll(ctx context.Context) ([]repository.NoteWithOwner, error) {
	return s.repo.ListAllWithOwners(ctx)
}

func (s *noteService) Update(ctx context.Context, p auth.Principal, id uuid.UUID, title, content string) (*model.Note, error) {
	note, err := s.Get(ctx, p, id)
	if err != nil {
		return nil, err
	}

	cleanTitle := sanitize.Sanitize(title)
	if cleanTitle == "" {
		return nil, apperrors.ErrEmptyTitle
	}
	cleanContent := sanitize.Sanitize(content)

	if err := s.repo.UpdateContent(ctx, note.ID, cleanTitle, cleanContent); err != nil {
		return nil, fmt.Errorf("update note: %w", err)
	}
	_ = s.cache.Delete(ctx, s.cacheKey(id))

	// Re-read through find so a concurrent delete maps to not-found
	// instead of leaking a store error.
	return s.find(ctx, id)
}

// Delete removes the note. Owners delete through an ownership-filtered
// statement; admins delete unscoped. Zero rows affected reads as not
// found either way.
func (s *noteService) Delete(ctx context.Context, p auth.Principal, id uuid.UUID) error {
	var (
		rows int64
		err  error
	)
	if p.IsAdmin() {
		rows, err = s.repo.Delete(ctx, id)
	} else {
		rows, err = s.repo.DeleteOwned(ctx, id, p.UserID)
	}
	if err != nil {
		return fmt.Errorf("delete note: %w", err)
	}
	if rows == 0 {
		return apperrors.ErrNotFound
	}
	_ = s.cache.Delete(ctx, s.cacheKey(id))
	return nil
}

// RenderHTML converts the stored (already sanitized) markdown content to
// HTML.
func (s *noteService) RenderHTML(ctx context.Context, p auth.Principal, id uuid.UUID) (string, error) {
	note, err := s.Get(ctx, p, id)
	if err != nil {
		return "", err
	}
	return sanitize.RenderMarkdown(note.Content)
}
