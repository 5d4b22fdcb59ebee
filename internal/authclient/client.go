// Package authclient talks to the Quanty API on behalf of the CLI. It is the
// identity provider and profile source for the identity controller and the
// typed client for the interview directory.
package authclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	pkgerrors "github.com/quanty/quanty-backend/pkg/errors"
	"github.com/quanty/quanty-backend/pkg/logger"
	"github.com/quanty/quanty-backend/pkg/types"
)

const maxErrorBody = 64 << 10

// TokenStore persists the session between runs.
type TokenStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, keys ...string) error
}

// ResponseCache holds GET responses for the life of the process.
type ResponseCache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte)
	Clear()
}

type Options struct {
	BaseURL       string
	Timeout       time.Duration
	StoragePrefix string
	Store         TokenStore
	Cache         ResponseCache
	HTTPClient    *http.Client
	Logger        *logger.Logger
	Now           func() time.Time
}

type Client struct {
	baseURL string
	http    *http.Client
	prefix  string
	store   TokenStore
	cache   ResponseCache
	logg    *logger.Logger
	now     func() time.Time

	mu        sync.Mutex
	listeners map[int]listener
	nextID    int
}

func New(opts Options) (*Client, error) {
	base := strings.TrimRight(opts.BaseURL, "/")
	if _, err := url.ParseRequestURI(base); err != nil || base == "" {
		return nil, fmt.Errorf("invalid api base url %q", opts.BaseURL)
	}
	if opts.Store == nil {
		return nil, fmt.Errorf("token store is required")
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}
	logg := opts.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Client{
		baseURL:   base,
		http:      httpClient,
		prefix:    opts.StoragePrefix,
		store:     opts.Store,
		cache:     opts.Cache,
		logg:      logg,
		now:       now,
		listeners: map[int]listener{},
	}, nil
}

// BaseURL is the API root the client was built with.
func (c *Client) BaseURL() string { return c.baseURL }

type request struct {
	method string
	path   string
	query  url.Values
	token  string
	body   any
}

func (r request) target(base string) string {
	target := base + r.path
	if len(r.query) > 0 {
		target += "?" + r.query.Encode()
	}
	return target
}

// do sends req and decodes the data member of the success envelope into out.
// API failures come back as *pkgerrors.Error carrying the server's code.
func (c *Client) do(ctx context.Context, req request, out any) error {
	raw, err := c.send(ctx, req)
	if err != nil {
		return err
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	return decodeData(raw, out)
}

// getCached serves GETs from the response cache when one is configured.
func (c *Client) getCached(ctx context.Context, req request, out any) error {
	key := req.target("")
	if c.cache != nil {
		if raw, ok := c.cache.Get(key); ok {
			return decodeData(raw, out)
		}
	}
	raw, err := c.send(ctx, req)
	if err != nil {
		return err
	}
	if c.cache != nil {
		c.cache.Set(key, raw)
	}
	return decodeData(raw, out)
}

func (c *Client) invalidate() {
	if c.cache != nil {
		c.cache.Clear()
	}
}

const requestIDHeader = "X-Request-Id"

func (c *Client) send(ctx context.Context, req request) ([]byte, error) {
	var body io.Reader
	if req.body != nil {
		payload, err := json.Marshal(req.body)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode request")
		}
		body = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, req.target(c.baseURL), body)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build request")
	}
	reqID := uuid.NewString()
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set(requestIDHeader, reqID)
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if req.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+req.token)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "quanty api unreachable")
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		logCtx := c.logg.WithFields(ctx, map[string]any{"status": resp.StatusCode, "path": req.path})
		c.logg.Debug(c.logg.WithRequestID(logCtx, reqID), "api request failed")
		return nil, decodeError(resp)
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read response")
	}
	return raw, nil
}

func decodeData(raw []byte, out any) error {
	envelope := types.DataEnvelope[json.RawMessage]{}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode response envelope")
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode response data")
	}
	return nil
}

func decodeError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	var envelope types.ErrorEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil || envelope.Error.Code == "" {
		return pkgerrors.New(pkgerrors.CodeForStatus(resp.StatusCode), http.StatusText(resp.StatusCode))
	}
	apiErr := pkgerrors.New(pkgerrors.Code(envelope.Error.Code), envelope.Error.Message)
	if envelope.Error.Details != nil {
		apiErr = apiErr.WithDetails(envelope.Error.Details)
	}
	return apiErr
}
