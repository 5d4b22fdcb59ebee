package interviews

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/quanty/quanty-backend/internal/repo"
	"github.com/quanty/quanty-backend/pkg/db/models"
	"github.com/quanty/quanty-backend/pkg/enums"
	"github.com/quanty/quanty-backend/pkg/pagination"
	"gorm.io/gorm"
)

// Repository persists interviews and answers the aggregate queries behind the catalog.
type Repository struct {
	repo.Base
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

func (r *Repository) Create(ctx context.Context, interview *models.Interview) error {
	if interview.ID == uuid.Nil {
		interview.ID = uuid.New()
	}
	return r.DB(ctx).Create(interview).Error
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Interview, error) {
	var interview models.Interview
	if err := r.DB(ctx).First(&interview, "id = ?", id).Error; err != nil {
		return nil, repo.NotFound(err, "interview not found")
	}
	return &interview, nil
}

// List returns newest-first interviews after the cursor, fetching one extra row so
// the caller can detect a following page.
func (r *Repository) List(ctx context.Context, filter ListFilter, cursor *pagination.Cursor) ([]models.Interview, error) {
	q := r.DB(ctx).Model(&models.Interview{})
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}
	if expert := strings.TrimSpace(filter.Expert); expert != "" {
		q = q.Where("LOWER(expert) = ?", strings.ToLower(expert))
	}
	if term := strings.TrimSpace(filter.Query); term != "" {
		like := "%" + escapeLike(strings.ToLower(term)) + "%"
		q = q.Where(
			"LOWER(title) LIKE ? ESCAPE '\\' OR LOWER(expert) LIKE ? ESCAPE '\\' OR LOWER(company) LIKE ? ESCAPE '\\' OR LOWER(description) LIKE ? ESCAPE '\\'",
			like, like, like, like,
		)
	}
	if cursor != nil {
		q = q.Where("(created_at < ?) OR (created_at = ? AND id < ?)", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}

	var rows []models.Interview
	err := q.Order("created_at DESC").Order("id DESC").
		Limit(pagination.LimitWithBuffer(filter.Page.Limit)).
		Find(&rows).Error
	return rows, err
}

// Update applies the column changes and returns the refreshed row.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, changes map[string]any) (*models.Interview, error) {
	if len(changes) > 0 {
		res := r.DB(ctx).Model(&models.Interview{}).Where("id = ?", id).Updates(changes)
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected == 0 {
			return nil, repo.NotFound(gorm.ErrRecordNotFound, "interview not found")
		}
	}
	return r.FindByID(ctx, id)
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.DB(ctx).Delete(&models.Interview{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.NotFound(gorm.ErrRecordNotFound, "interview not found")
	}
	return nil
}

// CategoryStats counts interviews and distinct experts per category.
func (r *Repository) CategoryStats(ctx context.Context) ([]CategoryStat, error) {
	var rows []struct {
		Category       string
		InterviewCount int
		ExpertCount    int
	}
	err := r.DB(ctx).Model(&models.Interview{}).
		Select("category, COUNT(*) AS interview_count, COUNT(DISTINCT LOWER(expert)) AS expert_count").
		Group("category").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]CategoryStat, 0, len(rows))
	for _, row := range rows {
		out = append(out, CategoryStat{
			Category:       enums.Category(row.Category),
			InterviewCount: row.InterviewCount,
			ExpertCount:    row.ExpertCount,
		})
	}
	return out, nil
}

// Experts groups interviews by expert name. The role and company of the most
// recent interview describe the expert.
func (r *Repository) Experts(ctx context.Context, category enums.Category) ([]ExpertRow, error) {
	q := r.DB(ctx).Model(&models.Interview{}).
		Select("expert, role, company, category, created_at").
		Order("created_at DESC")
	if category != "" {
		q = q.Where("category = ?", category)
	}
	var rows []models.Interview
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}

	byName := map[string]*ExpertRow{}
	var order []string
	for _, row := range rows {
		key := strings.ToLower(strings.TrimSpace(row.Expert))
		expert, ok := byName[key]
		if !ok {
			expert = &ExpertRow{Name: row.Expert, Role: row.Role, Company: row.Company, LatestAt: row.CreatedAt}
			byName[key] = expert
			order = append(order, key)
		}
		expert.InterviewsCount++
		if !containsCategory(expert.Categories, row.Category) {
			expert.Categories = append(expert.Categories, row.Category)
		}
	}

	out := make([]ExpertRow, 0, len(order))
	for _, key := range order {
		expert := byName[key]
		sort.Slice(expert.Categories, func(i, j int) bool { return expert.Categories[i] < expert.Categories[j] })
		out = append(out, *expert)
	}
	return out, nil
}

func containsCategory(list []enums.Category, c enums.Category) bool {
	for _, existing := range list {
		if existing == c {
			return true
		}
	}
	return false
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
