package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/quanty/quanty-backend/internal/auth"
	"github.com/quanty/quanty-backend/internal/catalog"
	"github.com/quanty/quanty-backend/internal/interviews"
	"github.com/quanty/quanty-backend/internal/profiles"
	"github.com/quanty/quanty-backend/internal/questions"
	"github.com/quanty/quanty-backend/internal/users"
	"github.com/quanty/quanty-backend/pkg/auth/session"
	"github.com/quanty/quanty-backend/pkg/config"
	"github.com/quanty/quanty-backend/pkg/db/dbtest"
	"github.com/quanty/quanty-backend/pkg/logger"
	"github.com/quanty/quanty-backend/pkg/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memorySessions struct {
	mu     sync.Mutex
	tokens map[string]string
	owners map[string]string
}

func newMemorySessions() *memorySessions {
	return &memorySessions{tokens: map[string]string{}, owners: map[string]string{}}
}

func (m *memorySessions) Generate(_ context.Context, userID, accessID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens[accessID] = "rt-" + accessID
	m.owners[accessID] = userID
	return "rt-" + accessID, nil
}

func (m *memorySessions) Rotate(ctx context.Context, userID, oldAccessID, provided string) (string, string, error) {
	m.mu.Lock()
	stored, ok := m.tokens[oldAccessID]
	if ok && stored == provided {
		delete(m.tokens, oldAccessID)
		delete(m.owners, oldAccessID)
	}
	m.mu.Unlock()
	if !ok || stored != provided {
		return "", "", session.ErrInvalidRefreshToken
	}
	next := session.NewAccessID()
	token, err := m.Generate(ctx, userID, next)
	return next, token, err
}

func (m *memorySessions) Revoke(_ context.Context, _ string, accessID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tokens, accessID)
	delete(m.owners, accessID)
	return nil
}

func (m *memorySessions) RevokeAll(_ context.Context, userID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for id, owner := range m.owners {
		if owner == userID {
			delete(m.tokens, id)
			delete(m.owners, id)
			n++
		}
	}
	return n, nil
}

func (m *memorySessions) HasSession(_ context.Context, accessID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.tokens[accessID]
	return ok, nil
}

type okPinger struct{}

func (okPinger) Ping(context.Context) error { return nil }

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	client := dbtest.New(t)
	cfg := &config.Config{
		App:   config.AppConfig{Env: "dev"},
		JWT:   config.JWTConfig{Secret: "secret", Issuer: "quanty", ExpirationMinutes: 60, RefreshTokenTTLMinutes: 120},
		Admin: config.AdminConfig{MasterEmail: "owner@quanty.dev"},
		CORS:  config.CORSConfig{AllowedOrigins: []string{"http://localhost:5173"}},
	}
	sessions := newMemorySessions()

	authSvc, err := auth.NewService(auth.ServiceParams{
		DB:             client,
		UserRepo:       users.NewRepository(client.DB()),
		SessionManager: sessions,
		JWTConfig:      cfg.JWT,
	})
	require.NoError(t, err)
	profileSvc, err := profiles.NewService(profiles.NewRepository(client.DB()), cfg.Admin)
	require.NoError(t, err)
	interviewRepo := interviews.NewRepository(client.DB())
	interviewSvc, err := interviews.NewService(interviewRepo)
	require.NoError(t, err)
	catalogSvc, err := catalog.NewService(interviewRepo)
	require.NoError(t, err)

	reg := prometheus.NewRegistry()
	return NewRouter(cfg, logger.Nop(), Dependencies{
		DBPinger:    okPinger{},
		RedisPinger: okPinger{},
		Sessions:    sessions,
		Registry:    reg,
		HTTPMetrics: metrics.NewHTTPMetrics(reg),
		AuthMetrics: metrics.NewAuthMetrics(reg),
		Auth:        authSvc,
		Profiles:    profileSvc,
		Interviews:  interviewSvc,
		Catalog:     catalogSvc,
		Questions:   questions.NewService(),
	})
}

func do(t *testing.T, h http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeData[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var env struct {
		Data T `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return env.Data
}

func TestHealthAndMetrics(t *testing.T) {
	h := newTestRouter(t)

	assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/health/live", "", nil).Code)
	assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/health/ready", "", nil).Code)
	assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/api/public/ping", "", nil).Code)

	rec := do(t, h, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "http_requests_total")
}

func TestDirectoryFlow(t *testing.T) {
	h := newTestRouter(t)

	rec := do(t, h, http.MethodPost, "/api/v1/auth/signup", "", map[string]any{"email": "owner@quanty.dev", "password": "owner-pass"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	owner := decodeData[auth.Session](t, rec)

	rec = do(t, h, http.MethodPost, "/api/v1/auth/signup", "", map[string]any{"email": "reader@quanty.dev", "password": "reader-pass", "full_name": "Reader"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	reader := decodeData[auth.Session](t, rec)

	interview := map[string]any{
		"title": "Market making", "expert": "Jane Smith", "role": "Quant", "company": "Citadel",
		"category": "quant", "duration": "45 min", "description": "Inventory risk",
	}

	// Anonymous and ordinary users cannot manage content.
	assert.Equal(t, http.StatusUnauthorized, do(t, h, http.MethodPost, "/api/v1/interviews", "", interview).Code)
	assert.Equal(t, http.StatusForbidden, do(t, h, http.MethodPost, "/api/v1/interviews", reader.AccessToken, interview).Code)

	rec = do(t, h, http.MethodPost, "/api/v1/interviews", owner.AccessToken, interview)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decodeData[interviews.InterviewDTO](t, rec)

	// Guests browse without a token.
	rec = do(t, h, http.MethodGet, "/api/v1/interviews?category=quant", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), created.ID.String())
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodGet, "/api/v1/interviews?category=biology", "", nil).Code)

	rec = do(t, h, http.MethodGet, "/api/v1/categories", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	categories := decodeData[[]catalog.CategoryDTO](t, rec)
	require.NotEmpty(t, categories)
	assert.Equal(t, 1, categories[0].InterviewCount)

	rec = do(t, h, http.MethodGet, "/api/v1/questions?difficulty=intermediate", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	bank := decodeData[[]questions.QuestionDTO](t, rec)
	assert.Len(t, bank, 2)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodGet, "/api/v1/questions?difficulty=expert", "", nil).Code)

	// Master admin promotes the reader, who may then edit.
	rec = do(t, h, http.MethodPut, "/api/admin/v1/profiles/"+reader.User.ID.String()+"/role", reader.AccessToken, map[string]any{"role": "admin"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = do(t, h, http.MethodPut, "/api/admin/v1/profiles/"+reader.User.ID.String()+"/role", owner.AccessToken, map[string]any{"role": "admin"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(t, h, http.MethodPatch, "/api/v1/interviews/"+created.ID.String(), reader.AccessToken, map[string]any{"title": "Market making 101", "video_url": nil})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Market making 101", decodeData[interviews.InterviewDTO](t, rec).Title)

	rec = do(t, h, http.MethodGet, "/api/v1/profiles/me", reader.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), `"role":"admin"`), rec.Body.String())

	assert.Equal(t, http.StatusNoContent, do(t, h, http.MethodDelete, "/api/v1/interviews/"+created.ID.String(), reader.AccessToken, nil).Code)
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/api/v1/interviews/"+created.ID.String(), "", nil).Code)
}

func TestGlobalLogoutRevokesEverySession(t *testing.T) {
	h := newTestRouter(t)

	rec := do(t, h, http.MethodPost, "/api/v1/auth/signup", "", map[string]any{"email": "a@b.com", "password": "secret-pass"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	first := decodeData[auth.Session](t, rec)

	rec = do(t, h, http.MethodPost, "/api/v1/auth/login", "", map[string]any{"email": "a@b.com", "password": "secret-pass"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	second := decodeData[auth.Session](t, rec)

	rec = do(t, h, http.MethodGet, "/api/v1/auth/session", first.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"email":"a@b.com"`)

	assert.Equal(t, http.StatusNoContent, do(t, h, http.MethodPost, "/api/v1/auth/logout?scope=global", first.AccessToken, nil).Code)
	assert.Equal(t, http.StatusUnauthorized, do(t, h, http.MethodGet, "/api/v1/auth/session", first.AccessToken, nil).Code)
	assert.Equal(t, http.StatusUnauthorized, do(t, h, http.MethodGet, "/api/v1/auth/session", second.AccessToken, nil).Code)

	rec = do(t, h, http.MethodPost, "/api/v1/auth/refresh", second.AccessToken, map[string]any{"refresh_token": second.RefreshToken})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRefreshRotates(t *testing.T) {
	h := newTestRouter(t)

	rec := do(t, h, http.MethodPost, "/api/v1/auth/signup", "", map[string]any{"email": "a@b.com", "password": "secret-pass"})
	require.Equal(t, http.StatusCreated, rec.Code)
	sess := decodeData[auth.Session](t, rec)

	rec = do(t, h, http.MethodPost, "/api/v1/auth/refresh", sess.AccessToken, map[string]any{"refresh_token": sess.RefreshToken})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	next := decodeData[auth.Session](t, rec)
	assert.NotEqual(t, sess.RefreshToken, next.RefreshToken)
	assert.Greater(t, next.ExpiresAt, time.Now().Unix())

	assert.Equal(t, http.StatusUnauthorized, do(t, h, http.MethodGet, "/api/v1/auth/session", sess.AccessToken, nil).Code)
	assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/api/v1/auth/session", next.AccessToken, nil).Code)
}
