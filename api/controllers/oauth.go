package controllers

import (
	"encoding/base64"
	"net/http"
	"time"

	"github.com/quanty/quanty-backend/api/responses"
	"github.com/quanty/quanty-backend/internal/oauth"
	pkgerrors "github.com/quanty/quanty-backend/pkg/errors"
	"github.com/quanty/quanty-backend/pkg/logger"
	"github.com/quanty/quanty-backend/pkg/metrics"
)

const (
	stateCookieName    = "__oauth_state"
	verifierCookieName = "__oauth_pkce"
	returnCookieName   = "__oauth_return"
	oauthCookieTTL     = 5 * time.Minute
	oauthCookiePath    = "/api/v1/auth/google"
)

// GoogleStart redirects the browser to Google after stashing state, the PKCE
// verifier and the return URL in short-lived cookies.
func GoogleStart(svc *oauth.Service, secureCookies bool, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authz, err := svc.Begin(r.URL.Query().Get("redirect_to"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		setOAuthCookie(w, stateCookieName, authz.State, secureCookies)
		setOAuthCookie(w, verifierCookieName, authz.Verifier, secureCookies)
		setOAuthCookie(w, returnCookieName, base64.RawURLEncoding.EncodeToString([]byte(authz.ReturnTo)), secureCookies)
		http.Redirect(w, r, authz.URL, http.StatusFound)
	}
}

// GoogleCallback completes the code exchange and redirects back to the client
// with the session, or with error=<code>.
func GoogleCallback(svc *oauth.Service, m *metrics.AuthMetrics, secureCookies bool, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		returnTo := decodedCookieValue(r, returnCookieName)
		state := cookieValue(r, stateCookieName)
		verifier := cookieValue(r, verifierCookieName)
		for _, name := range []string{stateCookieName, verifierCookieName, returnCookieName} {
			clearOAuthCookie(w, name, secureCookies)
		}

		if returnTo == "" || svc.ValidateReturnURL(returnTo) != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "missing or invalid oauth return url"))
			return
		}

		fail := func(code pkgerrors.Code, reason string) {
			m.Record("google", metrics.OutcomeFailure)
			if logg != nil {
				logg.Warn(logg.WithField(r.Context(), "reason", reason), "oauth.google.failed")
			}
			http.Redirect(w, r, oauth.ErrorRedirect(returnTo, code), http.StatusFound)
		}

		query := r.URL.Query()
		if state == "" || query.Get("state") != state {
			fail(pkgerrors.CodeUnauthorized, "state mismatch")
			return
		}
		if providerErr := query.Get("error"); providerErr != "" {
			fail(pkgerrors.CodeUnauthorized, providerErr)
			return
		}

		session, err := svc.Complete(r.Context(), query.Get("code"), verifier)
		if err != nil {
			code := pkgerrors.CodeInternal
			if typed := pkgerrors.As(err); typed != nil {
				code = typed.Code()
			}
			fail(code, err.Error())
			return
		}
		m.Record("google", metrics.OutcomeSuccess)
		http.Redirect(w, r, oauth.SessionRedirect(returnTo, session), http.StatusFound)
	}
}

func setOAuthCookie(w http.ResponseWriter, name, value string, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     oauthCookiePath,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(oauthCookieTTL.Seconds()),
	})
}

func clearOAuthCookie(w http.ResponseWriter, name string, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     oauthCookiePath,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}

func cookieValue(r *http.Request, name string) string {
	cookie, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return cookie.Value
}

func decodedCookieValue(r *http.Request, name string) string {
	raw, err := base64.RawURLEncoding.DecodeString(cookieValue(r, name))
	if err != nil {
		return ""
	}
	return string(raw)
}
