package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"notedeck/internal/model"
)

// NoteWithOwner is the admin listing row: a note joined with its owner's
// username.
type NoteWithOwner struct {
	model.Note `gorm:"embedded"`
	Username   string `json:"username"`
}

// NoteRepository defines persistence operations for notes. All writes are
// single-document atomic; ownership-scoped deletes rely on the store's
// filter, not on a separate read.
type NoteRepository interface {
	Create(ctx context.Context, note *model.Note) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Note, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]model.Note, error)
	ListAllWithOwners(ctx context.Context) ([]NoteWithOwner, error)
	UpdateContent(ctx context.Context, id uuid.UUID, title, content string) error
	Delete(ctx context.Context, id uuid.UUID) (int64, error)
	DeleteOwned(ctx context.Context, id, ownerID uuid.UUID) (int64, error)
}

type noteRepository struct {
	db *gorm.DB
}

// NewNoteRepository builds a GORM-backed repository.
func NewNoteRepository(db *gorm.DB) NoteRepository {
	return &noteRepository{db: db}
}

func (r *noteRepository) Create(ctx context.Context, note *model.Note) error {
	return r.db.WithContext(ctx).Create(note).Error
}

func (r *noteRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Note, error) {
	var note model.Note
	if err := r.db.WithContext(ctx).First(&note, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &note, nil
}

func (r *noteRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]model.Note, error) {
	var notes []model.Note
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&notes).Error
	if err != nil {
		return nil, err
	}
	return notes, nil
}

func (r *noteRepository) ListAllWithOwners(ctx context.Context) ([]NoteWithOwner, error) {
	var rows []NoteWithOwner
	err := r.db.WithContext(ctx).
		Table("notes").
		Select("notes.*, users.username AS username").
		Joins("LEFT JOIN users ON users.id = notes.owner_id").
		Order("notes.created_at DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// UpdateContent writes new sanitized title/content and stamps updated_at.
// OwnerID is deliberately not part of the update set; ownership is
// immutable after creation.
func (r *noteRepository) UpdateContent(ctx context.Context, id uuid.UUID, title, content string) error {
	now := time.Now().UTC()
	return r.db.WithContext(ctx).
		Model(&model.Note{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"title":      title,
			"content":    content,
			"updated_at": &now,
		}).Error
}

func (r *noteRepository) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).Delete(&model.Note{}, "id = ?", id)
	return res.RowsAffected, res.Error
}

// DeleteOwned deletes only when both id and owner match, mirroring a
// single filtered deleteOne so the ownership check cannot race the delete.
func (r *noteRepository) DeleteOwned(ctx context.Context, id, ownerID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).Delete(&model.Note{}, "id = ? AND owner_id = ?", id, ownerID)
	return res.RowsAffected, res.Error
}
