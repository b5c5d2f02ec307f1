package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Download is an append-only record of a project download. Rows are never
// mutated; popularity sorting counts them.
type Download struct {
	ID        uuid.UUID  `json:"id" db:"id" gorm:"type:uuid;primaryKey;not null"`
	ProjectID uuid.UUID  `json:"project_id" db:"project_id" gorm:"type:uuid;not null;index"`
	UserID    *uuid.UUID `json:"user_id,omitempty" db:"user_id" gorm:"type:uuid;index"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
}

func (d *Download) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}
