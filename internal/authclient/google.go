package authclient

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/quanty/quanty-backend/internal/auth"
	"github.com/quanty/quanty-backend/internal/identity"
	pkgerrors "github.com/quanty/quanty-backend/pkg/errors"
)

const (
	loopbackCallbackPath = "/callback"
	googleSignInTimeout  = 5 * time.Minute
)

// OpenBrowserFunc presents the sign-in URL to the user.
type OpenBrowserFunc func(authURL string) error

type callbackResult struct {
	session *auth.Session
	err     error
}

// SignInWithGoogle runs the browser flow against a one-shot loopback listener.
// The API redirects back to it with the session or error=<code>.
func (c *Client) SignInWithGoogle(ctx context.Context, open OpenBrowserFunc) (*identity.Session, error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, fmt.Errorf("start loopback listener: %w", err)
	}
	returnTo := fmt.Sprintf("http://%s%s", ln.Addr().String(), loopbackCallbackPath)

	results := make(chan callbackResult, 1)
	mux := http.NewServeMux()
	mux.HandleFunc(loopbackCallbackPath, func(w http.ResponseWriter, r *http.Request) {
		res := parseCallback(r.URL.Query())
		select {
		case results <- res:
		default:
		}
		if res.err != nil {
			http.Error(w, "Sign-in failed. You can close this window.", http.StatusBadRequest)
			return
		}
		_, _ = w.Write([]byte("Signed in to Quanty. You can close this window."))
	})
	server := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			c.logg.Error(ctx, "loopback listener stopped", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	authURL := c.baseURL + "/api/v1/auth/google/start?" + url.Values{"redirect_to": {returnTo}}.Encode()
	if err := open(authURL); err != nil {
		return nil, err
	}

	waitCtx, cancel := context.WithTimeout(ctx, googleSignInTimeout)
	defer cancel()
	select {
	case res := <-results:
		if res.err != nil {
			return nil, res.err
		}
		return c.signedIn(ctx, res.session)
	case <-waitCtx.Done():
		return nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, waitCtx.Err(), "google sign-in was not completed")
	}
}

func parseCallback(q url.Values) callbackResult {
	if code := q.Get("error"); code != "" {
		return callbackResult{err: pkgerrors.New(pkgerrors.Code(code), "google sign-in failed")}
	}
	userID, err := uuid.Parse(q.Get("user_id"))
	if err != nil {
		return callbackResult{err: pkgerrors.Wrap(pkgerrors.CodeValidation, err, "callback missing user")}
	}
	expiresAt, err := strconv.ParseInt(q.Get("expires_at"), 10, 64)
	if err != nil {
		return callbackResult{err: pkgerrors.Wrap(pkgerrors.CodeValidation, err, "callback missing expiry")}
	}
	session := &auth.Session{
		AccessToken:  q.Get("access_token"),
		RefreshToken: q.Get("refresh_token"),
		TokenType:    "bearer",
		ExpiresAt:    expiresAt,
		User:         auth.SessionUser{ID: userID, Email: q.Get("email")},
	}
	if session.AccessToken == "" || session.RefreshToken == "" {
		return callbackResult{err: pkgerrors.New(pkgerrors.CodeValidation, "callback missing tokens")}
	}
	return callbackResult{session: session}
}
