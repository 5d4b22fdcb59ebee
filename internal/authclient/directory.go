package authclient

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/google/uuid"

	"github.com/quanty/quanty-backend/internal/catalog"
	"github.com/quanty/quanty-backend/internal/identity"
	"github.com/quanty/quanty-backend/internal/interviews"
	"github.com/quanty/quanty-backend/internal/profiles"
	"github.com/quanty/quanty-backend/internal/questions"
	pkgerrors "github.com/quanty/quanty-backend/pkg/errors"
	"github.com/quanty/quanty-backend/pkg/pagination"
)

var _ identity.ProfileFetcher = (*Client)(nil)

// ListParams narrows ListInterviews. Zero values are omitted.
type ListParams struct {
	Category string
	Query    string
	Expert   string
	Limit    int
	Cursor   string
}

func (p ListParams) values() url.Values {
	q := url.Values{}
	if p.Category != "" {
		q.Set("category", p.Category)
	}
	if p.Query != "" {
		q.Set("q", p.Query)
	}
	if p.Expert != "" {
		q.Set("expert", p.Expert)
	}
	if p.Limit > 0 {
		q.Set("limit", strconv.Itoa(p.Limit))
	}
	if p.Cursor != "" {
		q.Set("cursor", p.Cursor)
	}
	return q
}

func (c *Client) ListInterviews(ctx context.Context, params ListParams) (*pagination.Page[interviews.InterviewDTO], error) {
	var page pagination.Page[interviews.InterviewDTO]
	err := c.getCached(ctx, request{method: http.MethodGet, path: "/api/v1/interviews", query: params.values()}, &page)
	if err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *Client) GetInterview(ctx context.Context, id uuid.UUID) (*interviews.InterviewDTO, error) {
	var interview interviews.InterviewDTO
	if err := c.getCached(ctx, request{method: http.MethodGet, path: "/api/v1/interviews/" + id.String()}, &interview); err != nil {
		return nil, err
	}
	return &interview, nil
}

func (c *Client) CreateInterview(ctx context.Context, req interviews.CreateInterviewRequest) (*interviews.InterviewDTO, error) {
	token, err := c.accessToken(ctx)
	if err != nil {
		return nil, err
	}
	var interview interviews.InterviewDTO
	if err := c.do(ctx, request{method: http.MethodPost, path: "/api/v1/interviews", token: token, body: req}, &interview); err != nil {
		return nil, err
	}
	c.invalidate()
	return &interview, nil
}

func (c *Client) UpdateInterview(ctx context.Context, id uuid.UUID, req interviews.UpdateInterviewRequest) (*interviews.InterviewDTO, error) {
	token, err := c.accessToken(ctx)
	if err != nil {
		return nil, err
	}
	var interview interviews.InterviewDTO
	if err := c.do(ctx, request{method: http.MethodPatch, path: "/api/v1/interviews/" + id.String(), token: token, body: req}, &interview); err != nil {
		return nil, err
	}
	c.invalidate()
	return &interview, nil
}

func (c *Client) DeleteInterview(ctx context.Context, id uuid.UUID) error {
	token, err := c.accessToken(ctx)
	if err != nil {
		return err
	}
	if err := c.do(ctx, request{method: http.MethodDelete, path: "/api/v1/interviews/" + id.String(), token: token}, nil); err != nil {
		return err
	}
	c.invalidate()
	return nil
}

// Categories lists the catalog; difficulty "" or "all" means every level.
func (c *Client) Categories(ctx context.Context, difficulty string) ([]catalog.CategoryDTO, error) {
	q := url.Values{}
	if difficulty != "" {
		q.Set("difficulty", difficulty)
	}
	var categories []catalog.CategoryDTO
	if err := c.getCached(ctx, request{method: http.MethodGet, path: "/api/v1/categories", query: q}, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

func (c *Client) Experts(ctx context.Context, expertise string) ([]catalog.ExpertDTO, error) {
	q := url.Values{}
	if expertise != "" {
		q.Set("expertise", expertise)
	}
	var experts []catalog.ExpertDTO
	if err := c.getCached(ctx, request{method: http.MethodGet, path: "/api/v1/experts", query: q}, &experts); err != nil {
		return nil, err
	}
	return experts, nil
}

// Questions lists the practice bank filtered by category and difficulty.
func (c *Client) Questions(ctx context.Context, category, difficulty string) ([]questions.QuestionDTO, error) {
	q := url.Values{}
	if category != "" {
		q.Set("category", category)
	}
	if difficulty != "" {
		q.Set("difficulty", difficulty)
	}
	var list []questions.QuestionDTO
	if err := c.getCached(ctx, request{method: http.MethodGet, path: "/api/v1/questions", query: q}, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// SetRole assigns a profile role. Master admin only.
func (c *Client) SetRole(ctx context.Context, profileID uuid.UUID, role string) (*profiles.ProfileDTO, error) {
	token, err := c.accessToken(ctx)
	if err != nil {
		return nil, err
	}
	var profile profiles.ProfileDTO
	err = c.do(ctx, request{
		method: http.MethodPut,
		path:   "/api/admin/v1/profiles/" + profileID.String() + "/role",
		token:  token,
		body:   profiles.SetRoleRequest{Role: role},
	}, &profile)
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// UpdateMyProfile changes the caller's display name.
func (c *Client) UpdateMyProfile(ctx context.Context, fullName string) (*profiles.ProfileDTO, error) {
	token, err := c.accessToken(ctx)
	if err != nil {
		return nil, err
	}
	var profile profiles.ProfileDTO
	err = c.do(ctx, request{
		method: http.MethodPatch,
		path:   "/api/v1/profiles/me",
		token:  token,
		body:   profiles.UpdateProfileRequest{FullName: &fullName},
	}, &profile)
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// FetchProfile loads the profile for userID. A missing row yields nil.
func (c *Client) FetchProfile(ctx context.Context, userID string) (*identity.Profile, error) {
	stored, err := c.loadSession(ctx)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "sign in required")
	}

	var dto profiles.ProfileDTO
	err = c.do(ctx, request{method: http.MethodGet, path: "/api/v1/profiles/" + url.PathEscape(userID), token: stored.AccessToken}, &dto)
	if pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	profile := &identity.Profile{ID: dto.ID.String(), FullName: dto.FullName}
	if dto.Role != nil {
		profile.Role = dto.Role.String()
	}
	return profile, nil
}
