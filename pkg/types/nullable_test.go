package types

import (
	"encoding/json"
	"testing"
)

func TestNullableUnmarshal(t *testing.T) {
	type payload struct {
		VideoURL Nullable[string] `json:"video_url"`
	}

	var got payload
	if err := json.Unmarshal([]byte(`{"video_url": "https://youtu.be/x"}`), &got); err != nil {
		t.Fatalf("unmarshal value: %v", err)
	}
	if !got.VideoURL.Valid || got.VideoURL.Value == nil || *got.VideoURL.Value != "https://youtu.be/x" {
		t.Fatalf("expected set value, got %+v", got.VideoURL)
	}

	got = payload{}
	if err := json.Unmarshal([]byte(`{"video_url": null}`), &got); err != nil {
		t.Fatalf("unmarshal null: %v", err)
	}
	if !got.VideoURL.Valid || got.VideoURL.Value != nil {
		t.Fatalf("expected null to be valid but nil, got %+v", got.VideoURL)
	}

	got = payload{}
	if err := json.Unmarshal([]byte(`{}`), &got); err != nil {
		t.Fatalf("unmarshal missing: %v", err)
	}
	if got.VideoURL.Valid {
		t.Fatalf("expected invalid flag for missing field, got %+v", got.VideoURL)
	}
}

func TestNullableMarshalOmitZero(t *testing.T) {
	type payload struct {
		Title    Nullable[string] `json:"title,omitzero"`
		VideoURL Nullable[string] `json:"video_url,omitzero"`
		ImageURL Nullable[string] `json:"image_url,omitzero"`
	}
	raw, err := json.Marshal(payload{Title: Set("New"), VideoURL: Null[string]()})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(raw) != `{"title":"New","video_url":null}` {
		t.Fatalf("unexpected json %s", raw)
	}
}
