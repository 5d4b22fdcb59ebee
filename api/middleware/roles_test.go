package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/quanty/quanty-backend/pkg/config"
)

type stubContentChecker struct {
	allowed map[uuid.UUID]bool
}

func (s stubContentChecker) CanManageContent(_ context.Context, id uuid.UUID, _ string) (bool, error) {
	return s.allowed[id], nil
}

func TestRequireMasterAdmin(t *testing.T) {
	mw := RequireMasterAdmin(config.AdminConfig{MasterEmail: "Owner@Quanty.dev"}, nil)(okHandler())

	cases := map[string]int{
		"owner@quanty.dev": http.StatusOK,
		"other@quanty.dev": http.StatusForbidden,
		"":                 http.StatusForbidden,
	}
	for email, want := range cases {
		req := httptest.NewRequest(http.MethodPut, "/", nil)
		req = req.WithContext(WithEmail(req.Context(), email))
		rec := httptest.NewRecorder()
		mw.ServeHTTP(rec, req)
		if rec.Code != want {
			t.Fatalf("%q: expected %d got %d", email, want, rec.Code)
		}
	}
}

func TestRequireContentAdmin(t *testing.T) {
	admin := uuid.New()
	mw := RequireContentAdmin(stubContentChecker{allowed: map[uuid.UUID]bool{admin: true}}, nil)(okHandler())

	run := func(userID string) int {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req = req.WithContext(WithUserID(req.Context(), userID))
		rec := httptest.NewRecorder()
		mw.ServeHTTP(rec, req)
		return rec.Code
	}

	if got := run(admin.String()); got != http.StatusOK {
		t.Fatalf("admin: expected 200 got %d", got)
	}
	if got := run(uuid.NewString()); got != http.StatusForbidden {
		t.Fatalf("user: expected 403 got %d", got)
	}
	if got := run(""); got != http.StatusUnauthorized {
		t.Fatalf("anonymous: expected 401 got %d", got)
	}
}
