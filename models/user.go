package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User roles as stored in the role column and carried in session claims.
const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

// User represents an account resolved from the session provider by email
type User struct {
	ID    uuid.UUID `json:"id" db:"id" gorm:"type:uuid;primaryKey;not null"`
	Email string    `json:"email" db:"email" gorm:"type:text;not null;uniqueIndex"`
	Name  string    `json:"name" db:"name" gorm:"type:text;not null"`
	Role  string    `json:"role" db:"role" gorm:"type:text;not null;default:USER"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// IsAdmin reports whether the user holds the administrative role.
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// OwnerSummary is the public subset of a user embedded in project responses
type OwnerSummary struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// Summary returns the public subset of the user.
func (u User) Summary() OwnerSummary {
	return OwnerSummary{ID: u.ID, Name: u.Name}
}
