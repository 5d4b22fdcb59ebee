package profiles

import (
	"time"

	"github.com/google/uuid"
	"github.com/quanty/quanty-backend/pkg/db/models"
	"github.com/quanty/quanty-backend/pkg/enums"
)

// ProfileDTO is the public profile row.
type ProfileDTO struct {
	ID        uuid.UUID          `json:"id"`
	FullName  *string            `json:"full_name"`
	Role      *enums.ProfileRole `json:"role"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
}

// UpdateProfileRequest is the PATCH /profiles/me payload.
type UpdateProfileRequest struct {
	FullName *string `json:"full_name" validate:"omitempty,max=120"`
}

// SetRoleRequest is the admin role assignment payload.
type SetRoleRequest struct {
	Role string `json:"role" validate:"required,profile_role"`
}

func FromModel(p *models.Profile) *ProfileDTO {
	if p == nil {
		return nil
	}
	return &ProfileDTO{
		ID:        p.ID,
		FullName:  p.FullName,
		Role:      p.Role,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}
