package profiles

import (
	"context"

	"github.com/google/uuid"
	"github.com/quanty/quanty-backend/internal/repo"
	"github.com/quanty/quanty-backend/pkg/db/models"
	"github.com/quanty/quanty-backend/pkg/enums"
	"gorm.io/gorm"
)

// Repository persists profile rows.
type Repository struct {
	repo.Base
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// WithTx returns a repository that joins tx.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{Base: r.Base.WithTx(tx)}
}

// Create inserts the profile for a freshly created user.
func (r *Repository) Create(ctx context.Context, userID uuid.UUID, fullName *string) (*models.Profile, error) {
	role := enums.ProfileRoleUser
	profile := &models.Profile{ID: userID, FullName: fullName, Role: &role}
	if err := r.DB(ctx).Create(profile).Error; err != nil {
		return nil, err
	}
	return profile, nil
}

// FindByID loads the profile keyed by the user id.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	var profile models.Profile
	if err := r.DB(ctx).First(&profile, "id = ?", id).Error; err != nil {
		return nil, repo.NotFound(err, "profile not found")
	}
	return &profile, nil
}

// UpdateFullName replaces the display name.
func (r *Repository) UpdateFullName(ctx context.Context, id uuid.UUID, fullName *string) error {
	return r.update(ctx, id, "full_name", fullName)
}

// SetRole replaces the profile role.
func (r *Repository) SetRole(ctx context.Context, id uuid.UUID, role enums.ProfileRole) error {
	return r.update(ctx, id, "role", role)
}

func (r *Repository) update(ctx context.Context, id uuid.UUID, column string, value any) error {
	res := r.DB(ctx).Model(&models.Profile{}).Where("id = ?", id).Update(column, value)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.NotFound(gorm.ErrRecordNotFound, "profile not found")
	}
	return nil
}
