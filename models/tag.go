package models

import (
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Tag is a reusable label matched by its unique slug. Tags are created on
// demand when a project first references them.
type Tag struct {
	ID   uuid.UUID `json:"id" db:"id" gorm:"type:uuid;primaryKey;not null"`
	Slug string    `json:"slug" db:"slug" gorm:"type:text;not null;uniqueIndex"`
	Name string    `json:"name" db:"name" gorm:"type:text;not null"`
}

func (t *Tag) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// ProjectTag is the join row associating a project with a tag
type ProjectTag struct {
	ID        uuid.UUID `json:"id" db:"id" gorm:"type:uuid;primaryKey;not null"`
	ProjectID uuid.UUID `json:"project_id" db:"project_id" gorm:"type:uuid;not null;uniqueIndex:idx_project_tag_unique;index"`
	TagID     uuid.UUID `json:"tag_id" db:"tag_id" gorm:"type:uuid;not null;uniqueIndex:idx_project_tag_unique"`

	Tag *Tag `json:"tag,omitempty" gorm:"foreignKey:TagID;references:ID"`
}

func (pt *ProjectTag) BeforeCreate(tx *gorm.DB) error {
	if pt.ID == uuid.Nil {
		pt.ID = uuid.New()
	}
	return nil
}

// Slugify normalizes a tag name into its slug: lowercase, spaces collapsed
// to hyphens, everything but letters, digits and hyphens dropped.
func Slugify(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	var b strings.Builder
	lastHyphen := true
	for _, r := range name {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
			lastHyphen = false
		case r == ' ' || r == '-' || r == '_':
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
