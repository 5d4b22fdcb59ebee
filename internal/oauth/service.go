// Package oauth runs the authorization-code + PKCE sign-in flow for external
// identity providers and hands verified identities to the auth service.
package oauth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"

	"github.com/quanty/quanty-backend/internal/auth"
	pkgerrors "github.com/quanty/quanty-backend/pkg/errors"
)

const randomBytes = 32

// Provider is an OIDC identity provider.
type Provider interface {
	AuthCodeURL(state, codeChallenge string) string
	ExchangeCode(ctx context.Context, code, codeVerifier string) (*auth.Identity, error)
}

type identityLogin interface {
	LoginWithIdentity(ctx context.Context, identity auth.Identity) (*auth.Session, error)
}

// Authorization is the state a caller must keep between Begin and Complete.
type Authorization struct {
	URL      string
	State    string
	Verifier string
	ReturnTo string
}

type Service struct {
	provider     Provider
	login        identityLogin
	allowedHosts map[string]struct{}
}

func NewService(provider Provider, login identityLogin, allowedReturnHosts []string) (*Service, error) {
	if provider == nil {
		return nil, fmt.Errorf("oauth provider is required")
	}
	if login == nil {
		return nil, fmt.Errorf("auth service is required")
	}
	hosts := make(map[string]struct{}, len(allowedReturnHosts))
	for _, host := range allowedReturnHosts {
		if host = strings.ToLower(strings.TrimSpace(host)); host != "" {
			hosts[host] = struct{}{}
		}
	}
	return &Service{provider: provider, login: login, allowedHosts: hosts}, nil
}

// Begin validates returnTo and prepares a fresh state and PKCE pair.
func (s *Service) Begin(returnTo string) (*Authorization, error) {
	if err := s.ValidateReturnURL(returnTo); err != nil {
		return nil, err
	}
	state, err := randomToken()
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate state")
	}
	verifier, err := randomToken()
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate pkce verifier")
	}
	return &Authorization{
		URL:      s.provider.AuthCodeURL(state, Challenge(verifier)),
		State:    state,
		Verifier: verifier,
		ReturnTo: returnTo,
	}, nil
}

// Complete exchanges code and signs the resulting identity in.
func (s *Service) Complete(ctx context.Context, code, verifier string) (*auth.Session, error) {
	if strings.TrimSpace(code) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "missing authorization code")
	}
	if strings.TrimSpace(verifier) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing pkce verifier")
	}
	identity, err := s.provider.ExchangeCode(ctx, code, verifier)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "authentication failed")
	}
	return s.login.LoginWithIdentity(ctx, *identity)
}

// ValidateReturnURL accepts absolute http(s) URLs on a loopback host or an
// allow-listed host.
func (s *Service) ValidateReturnURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return pkgerrors.New(pkgerrors.CodeValidation, "redirect_to must be an absolute http(s) URL")
	}
	host := strings.ToLower(u.Hostname())
	if isLoopback(host) {
		return nil
	}
	if _, ok := s.allowedHosts[host]; ok {
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeValidation, "redirect_to host is not allowed")
}

// SessionRedirect appends the session to returnTo as query parameters.
func SessionRedirect(returnTo string, session *auth.Session) string {
	u, err := url.Parse(returnTo)
	if err != nil {
		return returnTo
	}
	q := u.Query()
	q.Set("access_token", session.AccessToken)
	q.Set("refresh_token", session.RefreshToken)
	q.Set("expires_at", strconv.FormatInt(session.ExpiresAt, 10))
	q.Set("user_id", session.User.ID.String())
	q.Set("email", session.User.Email)
	u.RawQuery = q.Encode()
	return u.String()
}

// ErrorRedirect appends error=<code> to returnTo.
func ErrorRedirect(returnTo string, code pkgerrors.Code) string {
	u, err := url.Parse(returnTo)
	if err != nil {
		return returnTo
	}
	q := u.Query()
	q.Set("error", string(code))
	u.RawQuery = q.Encode()
	return u.String()
}

// Challenge derives the S256 PKCE challenge for verifier.
func Challenge(verifier string) string {
	sum := sha256.Sum256([]byte(verifier))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

func randomToken() (string, error) {
	b := make([]byte, randomBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func isLoopback(host string) bool {
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
