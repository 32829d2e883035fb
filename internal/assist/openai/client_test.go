package openai

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/EmpoweredVote/Ledger-Backend/internal/assist"
)

func TestTranscribe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/audio/transcriptions" || r.Header.Get("Authorization") != "Bearer key" {
			t.Errorf("unexpected request %s %s", r.URL.Path, r.Header.Get("Authorization"))
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			t.Errorf("form file: %v", err)
			return
		}
		audio, _ := io.ReadAll(file)
		if string(audio) != "RIFF" || header.Filename != "clip.webm" {
			t.Errorf("file = %q %q", audio, header.Filename)
		}
		if r.FormValue("model") != "whisper-1" || r.FormValue("language") != "en" || r.FormValue("prompt") != "hint" {
			t.Errorf("fields = %v", r.MultipartForm.Value)
		}
		w.Write([]byte(`{"text":"fifty for rent"}`))
	}))
	defer srv.Close()

	p := NewProvider(assist.Config{APIKey: "key", BaseURL: srv.URL})
	text, err := p.Transcribe(context.Background(), strings.NewReader("RIFF"), "clip.webm", "hint")
	if err != nil {
		t.Fatal(err)
	}
	if text != "fifty for rent" {
		t.Errorf("text = %q", text)
	}
}

func TestComplete_WithImage(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&got)
		w.Write([]byte(`{"choices":[{"message":{"content":"[\"Buy milk\"]"}}]}`))
	}))
	defer srv.Close()

	p := NewProvider(assist.Config{APIKey: "key", BaseURL: srv.URL})
	reply, err := p.Complete(context.Background(), assist.ChatRequest{
		Model:  assist.ModelVision,
		System: "sys",
		User:   "look",
		Image:  &assist.Image{MIMEType: "image/png", Data: []byte{1, 2, 3}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if reply != `["Buy milk"]` {
		t.Errorf("reply = %q", reply)
	}

	if got["model"] != "gpt-4o" {
		t.Errorf("model = %v", got["model"])
	}
	msgs := got["messages"].([]any)
	user := msgs[1].(map[string]any)["content"].([]any)
	img := user[1].(map[string]any)["image_url"].(map[string]any)["url"].(string)
	if img != "data:image/png;base64,AQID" {
		t.Errorf("image url = %q", img)
	}
}

func TestComplete_TextUsesExtractModel(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&got)
		w.Write([]byte(`{"choices":[{"message":{"content":"Call mom"}}]}`))
	}))
	defer srv.Close()

	p := NewProvider(assist.Config{APIKey: "key", BaseURL: srv.URL})
	if _, err := p.Complete(context.Background(), assist.ChatRequest{Model: assist.ModelExtract, System: "s", User: "u"}); err != nil {
		t.Fatal(err)
	}
	if got["model"] != "gpt-4o-mini" {
		t.Errorf("model = %v", got["model"])
	}
	if content := got["messages"].([]any)[1].(map[string]any)["content"]; content != "u" {
		t.Errorf("user content = %v", content)
	}
}

func TestAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"message":"Incorrect API key provided"}}`))
	}))
	defer srv.Close()

	_, err := NewClient("bad", srv.URL).Chat(context.Background(), "m", "s", "u", nil, "", 0, 0)
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusUnauthorized || apiErr.Message != "Incorrect API key provided" {
		t.Errorf("err = %v", err)
	}
}

func TestRegistered(t *testing.T) {
	p, err := assist.NewProvider(assist.Config{Provider: assist.ProviderOpenAI, APIKey: "key"})
	if err != nil {
		t.Fatal(err)
	}
	if p.Name() != "openai" {
		t.Errorf("name = %q", p.Name())
	}

	if _, err := assist.NewProvider(assist.Config{Provider: assist.ProviderOpenAI}); !errors.Is(err, assist.ErrMissingAPIKey) {
		t.Errorf("missing key err = %v", err)
	}
}
