package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/quanty/quanty-backend/pkg/logger"
)

func TestRequestIDEchoesSaneCallerID(t *testing.T) {
	mw := RequestID(nil)(okHandler())

	cases := map[string]bool{
		"cli-7f3a.2":            true,
		"":                      false,
		"has space":             false,
		"line\nbreak":           false,
		strings.Repeat("a", 65): false,
		strings.Repeat("b", 64): true,
	}
	for incoming, echoed := range cases {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if incoming != "" {
			req.Header.Set(requestIDHeader, incoming)
		}
		rec := httptest.NewRecorder()
		mw.ServeHTTP(rec, req)

		got := rec.Header().Get(requestIDHeader)
		if echoed && got != incoming {
			t.Fatalf("%q: expected echo, got %q", incoming, got)
		}
		if !echoed {
			if _, err := uuid.Parse(got); err != nil {
				t.Fatalf("%q: expected generated uuid, got %q", incoming, got)
			}
		}
	}
}

func TestRecovererLogsRouteAndRequestID(t *testing.T) {
	buf := &bytes.Buffer{}
	logg := logger.New(logger.Options{ServiceName: "test", Output: buf, Format: "json"})
	panicking := http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("bad payload") })
	h := RequestID(logg)(Recoverer(logg)(panicking))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/interviews", nil)
	req.Header.Set(requestIDHeader, "cli-req-1")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	for _, want := range []string{`"request_id":"cli-req-1"`, `"path":"/api/v1/interviews"`, `"method":"POST"`, `"panic":"bad payload"`} {
		if !strings.Contains(buf.String(), want) {
			t.Fatalf("expected %s in log entry %s", want, buf.String())
		}
	}
}

func TestRecovererRepanicsAbortHandler(t *testing.T) {
	h := Recoverer(nil)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic(http.ErrAbortHandler) }))
	defer func() {
		if rec := recover(); rec != http.ErrAbortHandler {
			t.Fatalf("expected ErrAbortHandler to propagate, got %v", rec)
		}
	}()
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
}
