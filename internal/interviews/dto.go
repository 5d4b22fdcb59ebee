package interviews

import (
	"time"

	"github.com/google/uuid"
	"github.com/quanty/quanty-backend/pkg/db/models"
	"github.com/quanty/quanty-backend/pkg/enums"
	"github.com/quanty/quanty-backend/pkg/pagination"
	"github.com/quanty/quanty-backend/pkg/types"
)

// InterviewDTO is the public interview shape.
type InterviewDTO struct {
	ID          uuid.UUID      `json:"id"`
	Title       string         `json:"title"`
	Expert      string         `json:"expert"`
	Role        string         `json:"role"`
	Company     string         `json:"company"`
	Category    enums.Category `json:"category"`
	Duration    string         `json:"duration"`
	Description string         `json:"description"`
	VideoURL    *string        `json:"video_url,omitempty"`
	ImageURL    *string        `json:"image_url,omitempty"`
	Likes       int            `json:"likes"`
	CreatedBy   uuid.UUID      `json:"created_by"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// CreateInterviewRequest is the POST payload.
type CreateInterviewRequest struct {
	Title       string  `json:"title" validate:"required,max=200"`
	Expert      string  `json:"expert" validate:"required,max=120"`
	Role        string  `json:"role" validate:"required,max=120"`
	Company     string  `json:"company" validate:"required,max=120"`
	Category    string  `json:"category" validate:"required,category"`
	Duration    string  `json:"duration" validate:"required,max=32"`
	Description string  `json:"description" validate:"required,max=5000"`
	VideoURL    *string `json:"video_url,omitempty" validate:"omitempty,url"`
	ImageURL    *string `json:"image_url,omitempty" validate:"omitempty,url"`
}

// UpdateInterviewRequest is the PATCH payload; absent fields are left unchanged and
// the media urls may be cleared with an explicit null.
type UpdateInterviewRequest struct {
	Title       *string                `json:"title,omitempty" validate:"omitempty,min=1,max=200"`
	Expert      *string                `json:"expert,omitempty" validate:"omitempty,min=1,max=120"`
	Role        *string                `json:"role,omitempty" validate:"omitempty,min=1,max=120"`
	Company     *string                `json:"company,omitempty" validate:"omitempty,min=1,max=120"`
	Category    *string                `json:"category,omitempty" validate:"omitempty,category"`
	Duration    *string                `json:"duration,omitempty" validate:"omitempty,min=1,max=32"`
	Description *string                `json:"description,omitempty" validate:"omitempty,min=1,max=5000"`
	VideoURL    types.Nullable[string] `json:"video_url,omitzero"`
	ImageURL    types.Nullable[string] `json:"image_url,omitzero"`
}

// ListFilter narrows the directory listing.
type ListFilter struct {
	Category enums.Category
	Query    string
	Expert   string
	Page     pagination.Params
}

// CategoryStat aggregates interviews per category.
type CategoryStat struct {
	Category       enums.Category
	InterviewCount int
	ExpertCount    int
}

// ExpertRow is one expert derived from their interviews.
type ExpertRow struct {
	Name            string
	Role            string
	Company         string
	Categories      []enums.Category
	InterviewsCount int
	LatestAt        time.Time
}

func FromModel(m *models.Interview) InterviewDTO {
	return InterviewDTO{
		ID:          m.ID,
		Title:       m.Title,
		Expert:      m.Expert,
		Role:        m.Role,
		Company:     m.Company,
		Category:    m.Category,
		Duration:    m.Duration,
		Description: m.Description,
		VideoURL:    m.VideoURL,
		ImageURL:    m.ImageURL,
		Likes:       m.Likes,
		CreatedBy:   m.CreatedBy,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func cursorOf(m models.Interview) pagination.Cursor {
	return pagination.Cursor{CreatedAt: m.CreatedAt, ID: m.ID}
}
