package interviews

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/quanty/quanty-backend/pkg/db/models"
	"github.com/quanty/quanty-backend/pkg/enums"
	pkgerrors "github.com/quanty/quanty-backend/pkg/errors"
	"github.com/quanty/quanty-backend/pkg/pagination"
	"github.com/quanty/quanty-backend/pkg/types"
)

// Service exposes directory reads and admin-gated content management.
type Service interface {
	List(ctx context.Context, filter ListFilter) (pagination.Page[InterviewDTO], error)
	Get(ctx context.Context, id uuid.UUID) (*InterviewDTO, error)
	Create(ctx context.Context, actor uuid.UUID, req CreateInterviewRequest) (*InterviewDTO, error)
	Update(ctx context.Context, id uuid.UUID, req UpdateInterviewRequest) (*InterviewDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type interviewRepository interface {
	Create(ctx context.Context, interview *models.Interview) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Interview, error)
	List(ctx context.Context, filter ListFilter, cursor *pagination.Cursor) ([]models.Interview, error)
	Update(ctx context.Context, id uuid.UUID, changes map[string]any) (*models.Interview, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo interviewRepository
	now  func() time.Time
}

func NewService(repo interviewRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("interview repository is required")
	}
	return &service{repo: repo, now: time.Now}, nil
}

func (s *service) List(ctx context.Context, filter ListFilter) (pagination.Page[InterviewDTO], error) {
	if filter.Category != "" && !filter.Category.IsValid() {
		return pagination.Page[InterviewDTO]{}, pkgerrors.New(pkgerrors.CodeValidation, "unknown category").
			WithDetails(map[string]any{"category": filter.Category})
	}
	cursor, err := pagination.ParseCursor(filter.Page.Cursor)
	if err != nil {
		return pagination.Page[InterviewDTO]{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	rows, err := s.repo.List(ctx, filter, cursor)
	if err != nil {
		return pagination.Page[InterviewDTO]{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list interviews")
	}
	page := pagination.Trim(rows, filter.Page.Limit, cursorOf)

	out := pagination.Page[InterviewDTO]{Items: make([]InterviewDTO, 0, len(page.Items)), NextCursor: page.NextCursor}
	for i := range page.Items {
		out.Items = append(out.Items, FromModel(&page.Items[i]))
	}
	return out, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*InterviewDTO, error) {
	row, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, wrapRepoErr(err, "load interview")
	}
	dto := FromModel(row)
	return &dto, nil
}

func (s *service) Create(ctx context.Context, actor uuid.UUID, req CreateInterviewRequest) (*InterviewDTO, error) {
	category, err := enums.ParseCategory(req.Category)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid category")
	}
	now := s.now().UTC().Truncate(time.Microsecond)
	row := &models.Interview{
		ID:          uuid.New(),
		Title:       strings.TrimSpace(req.Title),
		Expert:      strings.TrimSpace(req.Expert),
		Role:        strings.TrimSpace(req.Role),
		Company:     strings.TrimSpace(req.Company),
		Category:    category,
		Duration:    strings.TrimSpace(req.Duration),
		Description: strings.TrimSpace(req.Description),
		VideoURL:    optionalURL(req.VideoURL),
		ImageURL:    optionalURL(req.ImageURL),
		CreatedBy:   actor,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(ctx, row); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create interview")
	}
	dto := FromModel(row)
	return &dto, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, req UpdateInterviewRequest) (*InterviewDTO, error) {
	changes, err := changesFrom(req)
	if err != nil {
		return nil, err
	}
	row, err := s.repo.Update(ctx, id, changes)
	if err != nil {
		return nil, wrapRepoErr(err, "update interview")
	}
	dto := FromModel(row)
	return &dto, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return wrapRepoErr(err, "delete interview")
	}
	return nil
}

func changesFrom(req UpdateInterviewRequest) (map[string]any, error) {
	changes := map[string]any{}
	text := map[string]*string{
		"title":       req.Title,
		"expert":      req.Expert,
		"role":        req.Role,
		"company":     req.Company,
		"duration":    req.Duration,
		"description": req.Description,
	}
	for column, value := range text {
		if value == nil {
			continue
		}
		trimmed := strings.TrimSpace(*value)
		if trimmed == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "validation failed").
				WithDetails(map[string]string{column: "must not be blank"})
		}
		changes[column] = trimmed
	}
	if req.Category != nil {
		category, err := enums.ParseCategory(*req.Category)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid category")
		}
		changes["category"] = category
	}
	for column, value := range map[string]types.Nullable[string]{"video_url": req.VideoURL, "image_url": req.ImageURL} {
		if !value.Valid {
			continue
		}
		if value.Value == nil || strings.TrimSpace(*value.Value) == "" {
			changes[column] = nil
			continue
		}
		if !validURL(*value.Value) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "validation failed").
				WithDetails(map[string]string{column: "must be a valid url"})
		}
		changes[column] = strings.TrimSpace(*value.Value)
	}
	return changes, nil
}

func optionalURL(raw *string) *string {
	if raw == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*raw)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func validURL(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func wrapRepoErr(err error, msg string) error {
	if pkgerrors.As(err) != nil {
		return err
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, msg)
}
