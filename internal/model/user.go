package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role name constants. Roles are free-form strings; these are the two the
// application assigns itself.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// RoleList is a set of role strings stored as a JSON array column.
type RoleList []string

// Value implements driver.Valuer.
func (r RoleList) Value() (driver.Value, error) {
	if r == nil {
		r = RoleList{}
	}
	return json.Marshal(r)
}

// Scan implements sql.Scanner.
func (r *RoleList) Scan(src interface{}) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, r)
	case string:
		return json.Unmarshal([]byte(v), r)
	case nil:
		*r = RoleList{}
		return nil
	default:
		return fmt.Errorf("scan roles: unsupported type %T", src)
	}
}

// Has reports whether the set contains the given role.
func (r RoleList) Has(role string) bool {
	for _, existing := range r {
		if existing == role {
			return true
		}
	}
	return false
}

// Add returns a new set containing role. The receiver is not mutated;
// callers persist the returned value through an explicit update.
func (r RoleList) Add(role string) RoleList {
	if r.Has(role) {
		return r
	}
	out := make(RoleList, 0, len(r)+1)
	out = append(out, r...)
	return append(out, role)
}

// User represents an account in the system. PasswordHash embeds the bcrypt
// algorithm tag and salt and is never serialized. EmailConfirmed moves
// false to true exactly once; Roles only ever grows.
type User struct {
	ID             uuid.UUID `json:"id" gorm:"type:char(36);primaryKey"`
	Username       string    `json:"username" gorm:"uniqueIndex;size:64;not null"`
	Email          string    `json:"email" gorm:"uniqueIndex;size:255;not null"`
	PasswordHash   string    `json:"-" gorm:"size:255;not null"` // Never expose in JSON
	EmailConfirmed bool      `json:"email_confirmed" gorm:"default:false"`
	Roles          RoleList  `json:"roles" gorm:"type:json"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// BeforeCreate sets UUID before creating the record.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// HasRole reports whether the user holds the given role.
func (u *User) HasRole(role string) bool {
	return u.Roles.Has(role)
}
