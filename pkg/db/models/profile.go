package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/quanty/quanty-backend/pkg/enums"
)

// Profile is the application-level record keyed by the user id.
type Profile struct {
	ID        uuid.UUID          `gorm:"type:uuid;primaryKey"`
	FullName  *string            `gorm:"column:full_name"`
	Role      *enums.ProfileRole `gorm:"column:role;type:text"`
	CreatedAt time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}
