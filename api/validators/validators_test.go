package validators

import (
	"net/http/httptest"
	"strings"
	"testing"

	pkgerrors "github.com/quanty/quanty-backend/pkg/errors"
)

type interviewInput struct {
	Title    string `json:"title" validate:"required,max=200"`
	Category string `json:"category" validate:"required,category"`
	VideoURL string `json:"video_url" validate:"omitempty,url"`
}

func TestDecodeJSONBodyValidates(t *testing.T) {
	req := httptest.NewRequest("POST", "/", strings.NewReader(`{"title":"","category":"biology","video_url":"nope"}`))
	var in interviewInput
	err := DecodeJSONBody(req, &in)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	details, ok := typed.Details().(map[string]string)
	if !ok {
		t.Fatalf("expected field details, got %T", typed.Details())
	}
	if details["title"] != "is required" || details["category"] == "" || details["video_url"] != "must be a valid url" {
		t.Fatalf("unexpected details %v", details)
	}
}

func TestDecodeJSONBodyRejectsUnknownFields(t *testing.T) {
	req := httptest.NewRequest("POST", "/", strings.NewReader(`{"title":"x","category":"ml","extra":1}`))
	var in interviewInput
	if err := DecodeJSONBody(req, &in); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for unknown field, got %v", err)
	}
}

func TestParseQueryIntAndString(t *testing.T) {
	req := httptest.NewRequest("GET", "/?limit=500&q=%20%20quant%20%20", nil)
	if _, err := ParseQueryInt(req, "limit", 20, 1, 100); err == nil {
		t.Fatalf("expected out of range error")
	}
	if v, err := ParseQueryInt(req, "missing", 20, 1, 100); err != nil || v != 20 {
		t.Fatalf("expected default, got %d %v", v, err)
	}
	if got := QueryString(req, "q", 3); got != "qua" {
		t.Fatalf("unexpected query string %q", got)
	}
}
