package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Project visibility values. PRIVATE restricts reads to the owner or an admin.
const (
	VisibilityPublic   = "PUBLIC"
	VisibilityUnlisted = "UNLISTED"
	VisibilityPrivate  = "PRIVATE"
)

// ValidVisibility reports whether v is one of the known visibility values.
func ValidVisibility(v string) bool {
	return v == VisibilityPublic || v == VisibilityUnlisted || v == VisibilityPrivate
}

// Project represents an AR project bundle with metadata
type Project struct {
	ID          uuid.UUID `json:"id" db:"id" gorm:"type:uuid;primaryKey;not null"`
	Title       string    `json:"title" db:"title" gorm:"type:text;not null"`
	Description string    `json:"description" db:"description" gorm:"type:text;not null"`
	Category    string    `json:"category" db:"category" gorm:"type:text;not null;index"`
	Visibility  string    `json:"visibility" db:"visibility" gorm:"type:text;not null;default:PUBLIC;index"`
	OwnerID     uuid.UUID `json:"owner_id" db:"owner_id" gorm:"type:uuid;not null;index"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`

	Owner     User         `json:"owner,omitempty" gorm:"foreignKey:OwnerID;references:ID"`
	Assets    []Asset      `json:"assets,omitempty" gorm:"foreignKey:ProjectID;references:ID;constraint:OnDelete:CASCADE"`
	Tags      []ProjectTag `json:"tags,omitempty" gorm:"foreignKey:ProjectID;references:ID;constraint:OnDelete:CASCADE"`
	Downloads []Download   `json:"downloads,omitempty" gorm:"foreignKey:ProjectID;references:ID;constraint:OnDelete:CASCADE"`
}

func (p *Project) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// VisibleTo reports whether the project can be read by the given user.
// A nil user is an anonymous caller.
func (p Project) VisibleTo(u *User) bool {
	if p.Visibility != VisibilityPrivate {
		return true
	}
	if u == nil {
		return false
	}
	return u.ID == p.OwnerID || u.IsAdmin()
}

// EditableBy reports whether the given user may modify or delete the project.
func (p Project) EditableBy(u *User) bool {
	if u == nil {
		return false
	}
	return u.ID == p.OwnerID || u.IsAdmin()
}

// TagNames collects the names of the project's tags.
func (p Project) TagNames() []string {
	names := make([]string, 0, len(p.Tags))
	for _, pt := range p.Tags {
		if pt.Tag != nil {
			names = append(names, pt.Tag.Name)
		}
	}
	return names
}
