package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Note is a short sanitized text owned by a user. OwnerID is immutable
// after creation; Title and Content are stored post-sanitization and are
// safe to render as markup directly. UpdatedAt stays nil until first edit.
type Note struct {
	ID        uuid.UUID  `json:"id" gorm:"type:char(36);primaryKey"`
	OwnerID   uuid.UUID  `json:"owner_id" gorm:"type:char(36);not null;index"`
	Title     string     `json:"title" gorm:"size:512;not null"`
	Content   string     `json:"content" gorm:"type:text"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty" gorm:"autoUpdateTime:false"`
}

// BeforeCreate sets UUID before creating the record.
func (n *Note) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}
