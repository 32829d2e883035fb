package utils

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestWriteError(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, "No file provided", http.StatusBadRequest)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("content type = %q", ct)
	}
	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["error"] != "No file provided" {
		t.Errorf("error = %q", body["error"])
	}
}

func TestDecodeJSON_RejectsUnknownFields(t *testing.T) {
	var v struct {
		Name string `json:"name"`
	}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"a","extra":1}`))
	if err := DecodeJSON(req, &v); err == nil {
		t.Error("expected error for unknown field")
	}
}

func TestUserIDContext(t *testing.T) {
	if _, ok := GetUserIDFromContext(context.Background()); ok {
		t.Error("empty context should not carry a user")
	}
	if _, ok := GetUserIDFromContext(WithUserID(context.Background(), "")); ok {
		t.Error("blank user id should not count")
	}
	got, ok := GetUserIDFromContext(WithUserID(context.Background(), "u1"))
	if !ok || got != "u1" {
		t.Errorf("got %q, %v", got, ok)
	}
}
