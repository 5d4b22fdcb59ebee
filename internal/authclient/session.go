package authclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/multierr"

	"github.com/quanty/quanty-backend/internal/auth"
	"github.com/quanty/quanty-backend/internal/identity"
	pkgerrors "github.com/quanty/quanty-backend/pkg/errors"
)

const (
	tokenKeySuffix = "auth-token"
	refreshLeeway  = 30 * time.Second
)

type listener = identity.AuthListener

var _ identity.Provider = (*Client)(nil)

// TokenKey is the local store key holding the serialized session.
func (c *Client) TokenKey() string { return c.prefix + tokenKeySuffix }

func (c *Client) StorageKeyPrefix() string { return c.prefix }

// OnAuthStateChange registers fn. The stored session is delivered as
// INITIAL_SESSION on another goroutine so registration never blocks.
func (c *Client) OnAuthStateChange(fn identity.AuthListener) func() {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.listeners[id] = fn
	c.mu.Unlock()

	go func() {
		stored, err := c.loadSession(context.Background())
		if err != nil {
			c.logg.Error(context.Background(), "read stored session", err)
		}
		c.mu.Lock()
		_, active := c.listeners[id]
		c.mu.Unlock()
		if active {
			fn(identity.EventInitialSession, toIdentitySession(stored))
		}
	}()

	return func() {
		c.mu.Lock()
		delete(c.listeners, id)
		c.mu.Unlock()
	}
}

// GetSession returns the stored session, refreshing it first when the access
// token is about to expire. A rejected refresh drops the session.
func (c *Client) GetSession(ctx context.Context) (*identity.Session, error) {
	stored, err := c.loadSession(ctx)
	if err != nil || stored == nil {
		return nil, err
	}
	if c.now().Add(refreshLeeway).Before(time.Unix(stored.ExpiresAt, 0)) {
		return toIdentitySession(stored), nil
	}

	refreshed, err := c.refresh(ctx, stored)
	if err != nil {
		if pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized) || pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
			c.logg.Warn(c.logg.WithField(ctx, "error", err.Error()), "refresh rejected, dropping session")
			if rmErr := c.store.Remove(ctx, c.TokenKey()); rmErr != nil {
				return nil, rmErr
			}
			c.emit(identity.EventSignedOut, nil)
			return nil, nil
		}
		return nil, err
	}
	session := toIdentitySession(refreshed)
	c.emit(identity.EventTokenRefreshed, session)
	return session, nil
}

// SignOut revokes the session remotely with the given scope. The stored token
// is dropped and SIGNED_OUT emitted even when the API call fails.
func (c *Client) SignOut(ctx context.Context, scope identity.SignOutScope) error {
	stored, loadErr := c.loadSession(ctx)
	var remoteErr error
	if stored != nil {
		remoteErr = c.do(ctx, request{
			method: http.MethodPost,
			path:   "/api/v1/auth/logout",
			query:  url.Values{"scope": {string(scope)}},
			token:  stored.AccessToken,
		}, nil)
	}
	rmErr := c.store.Remove(ctx, c.TokenKey())
	c.invalidate()
	c.emit(identity.EventSignedOut, nil)
	return multierr.Combine(remoteErr, loadErr, rmErr)
}

// SignUp creates an email/password account and signs it in.
func (c *Client) SignUp(ctx context.Context, email, password, fullName string) (*identity.Session, error) {
	req := auth.SignupRequest{Email: email, Password: password}
	if fullName != "" {
		req.FullName = &fullName
	}
	var session auth.Session
	if err := c.do(ctx, request{method: http.MethodPost, path: "/api/v1/auth/signup", body: req}, &session); err != nil {
		return nil, err
	}
	return c.signedIn(ctx, &session)
}

func (c *Client) SignInWithPassword(ctx context.Context, email, password string) (*identity.Session, error) {
	var session auth.Session
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/api/v1/auth/login",
		body:   auth.LoginRequest{Email: email, Password: password},
	}, &session)
	if err != nil {
		return nil, err
	}
	return c.signedIn(ctx, &session)
}

func (c *Client) signedIn(ctx context.Context, session *auth.Session) (*identity.Session, error) {
	if err := c.saveSession(ctx, session); err != nil {
		return nil, err
	}
	c.invalidate()
	result := toIdentitySession(session)
	c.emit(identity.EventSignedIn, result)
	return result, nil
}

func (c *Client) refresh(ctx context.Context, stored *auth.Session) (*auth.Session, error) {
	var refreshed auth.Session
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/api/v1/auth/refresh",
		token:  stored.AccessToken,
		body:   auth.RefreshRequest{RefreshToken: stored.RefreshToken},
	}, &refreshed)
	if err != nil {
		return nil, err
	}
	if err := c.saveSession(ctx, &refreshed); err != nil {
		return nil, err
	}
	return &refreshed, nil
}

// accessToken returns a fresh access token or UNAUTHORIZED.
func (c *Client) accessToken(ctx context.Context) (string, error) {
	session, err := c.GetSession(ctx)
	if err != nil {
		return "", err
	}
	if session == nil {
		return "", pkgerrors.New(pkgerrors.CodeUnauthorized, "sign in required")
	}
	return session.AccessToken, nil
}

func (c *Client) loadSession(ctx context.Context) (*auth.Session, error) {
	raw, ok, err := c.store.Get(ctx, c.TokenKey())
	if err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}
	if !ok || raw == "" {
		return nil, nil
	}
	var session auth.Session
	if err := json.Unmarshal([]byte(raw), &session); err != nil {
		c.logg.Warn(c.logg.WithField(ctx, "error", err.Error()), "discarding unreadable session")
		_ = c.store.Remove(ctx, c.TokenKey())
		return nil, nil
	}
	return &session, nil
}

func (c *Client) saveSession(ctx context.Context, session *auth.Session) error {
	raw, err := json.Marshal(session)
	if err != nil {
		return err
	}
	if err := c.store.Set(ctx, c.TokenKey(), string(raw)); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}
	return nil
}

func (c *Client) emit(kind identity.EventKind, session *identity.Session) {
	c.mu.Lock()
	targets := make([]listener, 0, len(c.listeners))
	for _, fn := range c.listeners {
		targets = append(targets, fn)
	}
	c.mu.Unlock()
	for _, fn := range targets {
		fn(kind, session)
	}
}

func toIdentitySession(session *auth.Session) *identity.Session {
	if session == nil {
		return nil
	}
	return &identity.Session{
		AccessToken:  session.AccessToken,
		RefreshToken: session.RefreshToken,
		ExpiresAt:    time.Unix(session.ExpiresAt, 0),
		User: identity.User{
			ID:    session.User.ID.String(),
			Email: session.User.Email,
		},
	}
}
