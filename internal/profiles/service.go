package profiles

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/quanty/quanty-backend/pkg/config"
	"github.com/quanty/quanty-backend/pkg/db/models"
	"github.com/quanty/quanty-backend/pkg/enums"
	pkgerrors "github.com/quanty/quanty-backend/pkg/errors"
)

// Service defines the profile operations used by controllers and middleware.
type Service interface {
	Get(ctx context.Context, id uuid.UUID) (*ProfileDTO, error)
	UpdateMine(ctx context.Context, id uuid.UUID, req UpdateProfileRequest) (*ProfileDTO, error)
	SetRole(ctx context.Context, id uuid.UUID, role enums.ProfileRole) (*ProfileDTO, error)
	CanManageContent(ctx context.Context, id uuid.UUID, email string) (bool, error)
}

type profileRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Profile, error)
	UpdateFullName(ctx context.Context, id uuid.UUID, fullName *string) error
	SetRole(ctx context.Context, id uuid.UUID, role enums.ProfileRole) error
}

type service struct {
	repo  profileRepository
	admin config.AdminConfig
}

func NewService(repo profileRepository, admin config.AdminConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("profile repository is required")
	}
	return &service{repo: repo, admin: admin}, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*ProfileDTO, error) {
	profile, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, wrapRepoErr(err, "load profile")
	}
	return FromModel(profile), nil
}

func (s *service) UpdateMine(ctx context.Context, id uuid.UUID, req UpdateProfileRequest) (*ProfileDTO, error) {
	var fullName *string
	if req.FullName != nil {
		if trimmed := strings.TrimSpace(*req.FullName); trimmed != "" {
			fullName = &trimmed
		}
	}
	if err := s.repo.UpdateFullName(ctx, id, fullName); err != nil {
		return nil, wrapRepoErr(err, "update profile")
	}
	return s.Get(ctx, id)
}

func (s *service) SetRole(ctx context.Context, id uuid.UUID, role enums.ProfileRole) (*ProfileDTO, error) {
	if !role.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid role")
	}
	if err := s.repo.SetRole(ctx, id, role); err != nil {
		return nil, wrapRepoErr(err, "set role")
	}
	return s.Get(ctx, id)
}

// CanManageContent grants content management to the master admin email or to a
// profile whose role is admin.
func (s *service) CanManageContent(ctx context.Context, id uuid.UUID, email string) (bool, error) {
	if s.admin.IsMasterEmail(email) {
		return true, nil
	}
	profile, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
			return false, nil
		}
		return false, wrapRepoErr(err, "load profile")
	}
	return profile.Role != nil && *profile.Role == enums.ProfileRoleAdmin, nil
}

func wrapRepoErr(err error, msg string) error {
	if pkgerrors.As(err) != nil {
		return err
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, msg)
}
