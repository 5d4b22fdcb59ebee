package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/quanty/quanty-backend/api/responses"
	"github.com/quanty/quanty-backend/pkg/config"
	pkgerrors "github.com/quanty/quanty-backend/pkg/errors"
	"github.com/quanty/quanty-backend/pkg/logger"
)

type contentAdminChecker interface {
	CanManageContent(ctx context.Context, userID uuid.UUID, email string) (bool, error)
}

// RequireMasterAdmin admits only the configured master admin email. Must run after Auth.
func RequireMasterAdmin(admin config.AdminConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !admin.IsMasterEmail(EmailFromContext(r.Context())) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "master admin required"))
				return
			}
			if logg != nil {
				r = r.WithContext(logg.WithActorRole(r.Context(), "master_admin"))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireContentAdmin admits the master admin and profiles with the admin role.
// Must run after Auth.
func RequireContentAdmin(checker contentAdminChecker, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, err := uuid.Parse(UserIDFromContext(r.Context()))
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing user"))
				return
			}
			ok, err := checker.CanManageContent(r.Context(), userID, EmailFromContext(r.Context()))
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			if !ok {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "admin access required"))
				return
			}
			if logg != nil {
				r = r.WithContext(logg.WithActorRole(r.Context(), "content_admin"))
			}
			next.ServeHTTP(w, r)
		})
	}
}
