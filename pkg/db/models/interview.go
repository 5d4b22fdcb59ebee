package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/quanty/quanty-backend/pkg/enums"
)

// Interview is a recorded expert interview in the directory.
type Interview struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey"`
	Title       string         `gorm:"column:title;not null"`
	Expert      string         `gorm:"column:expert;not null"`
	Role        string         `gorm:"column:role;not null"`
	Company     string         `gorm:"column:company;not null"`
	Category    enums.Category `gorm:"column:category;type:text;not null;index"`
	Duration    string         `gorm:"column:duration;not null"`
	Description string         `gorm:"column:description;not null"`
	VideoURL    *string        `gorm:"column:video_url"`
	ImageURL    *string        `gorm:"column:image_url"`
	Likes       int            `gorm:"column:likes;not null;default:0"`
	CreatedBy   uuid.UUID      `gorm:"type:uuid;column:created_by;not null"`
	CreatedAt   time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}
