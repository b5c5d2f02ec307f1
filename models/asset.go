package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Asset kinds, one per upload route.
const (
	AssetKindModel  = "MODEL"
	AssetKindScript = "SCRIPT"
	AssetKindConfig = "CONFIG"
)

// Asset represents a single uploaded file belonging to a project. The blob
// itself lives in external object storage under FileKey.
type Asset struct {
	ID        uuid.UUID `json:"id" db:"id" gorm:"type:uuid;primaryKey;not null"`
	ProjectID uuid.UUID `json:"project_id" db:"project_id" gorm:"type:uuid;not null;index"`
	Kind      string    `json:"kind" db:"kind" gorm:"type:text;not null"`
	FileKey   string    `json:"file_key" db:"file_key" gorm:"type:text;not null;uniqueIndex"`
	FileName  string    `json:"file_name" db:"file_name" gorm:"type:text;not null"`
	Mime      string    `json:"mime" db:"mime" gorm:"type:text;not null"`
	SizeBytes int64     `json:"size_bytes" db:"size_bytes" gorm:"not null"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	Project Project `json:"-" gorm:"foreignKey:ProjectID;references:ID"`
}

func (a *Asset) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
