package openai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/EmpoweredVote/Ledger-Backend/internal/logging"
)

// DefaultBaseURL is the hosted API root.
const DefaultBaseURL = "https://api.openai.com/v1"

var log = logging.For("openai")

// Client is an HTTP client for the speech and chat endpoints.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client; an empty baseURL means DefaultBaseURL.
func NewClient(apiKey, baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// APIError is a non-2xx answer.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("openai status %d: %s", e.Status, e.Message)
}

type transcriptionResponse struct {
	Text string `json:"text"`
}

// Transcribe sends audio to the transcription endpoint.
func (c *Client) Transcribe(ctx context.Context, model string, audio io.Reader, filename, prompt string) (string, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(fw, audio); err != nil {
		return "", fmt.Errorf("copy audio: %w", err)
	}
	fields := map[string]string{
		"model":           model,
		"response_format": "json",
		"language":        "en",
		"prompt":          prompt,
	}
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			return "", fmt.Errorf("write field %s: %w", k, err)
		}
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("close multipart: %w", err)
	}

	var out transcriptionResponse
	if err := c.post(ctx, "/audio/transcriptions", mw.FormDataContentType(), &body, &out); err != nil {
		return "", err
	}
	return out.Text, nil
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

type message struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []message `json:"messages"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	Temperature float64   `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Chat sends a system and user message, with an optional inline image, and
// returns the first choice's text.
func (c *Client) Chat(ctx context.Context, model, system, user string, image []byte, mimeType string, maxTokens int, temperature float64) (string, error) {
	var userContent any = user
	if image != nil {
		userContent = []contentPart{
			{Type: "text", Text: user},
			{Type: "image_url", ImageURL: &imageURL{
				URL: "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(image),
			}},
		}
	}

	req := chatRequest{
		Model: model,
		Messages: []message{
			{Role: "system", Content: system},
			{Role: "user", Content: userContent},
		},
		MaxTokens:   maxTokens,
		Temperature: temperature,
	}
	b, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("encode chat request: %w", err)
	}

	var out chatResponse
	if err := c.post(ctx, "/chat/completions", "application/json", bytes.NewReader(b), &out); err != nil {
		return "", err
	}
	if len(out.Choices) == 0 {
		return "", nil
	}
	return out.Choices[0].Message.Content, nil
}

func (c *Client) post(ctx context.Context, path, contentType string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", contentType)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.WithError(err).WithField("path", path).Error("request failed")
		return fmt.Errorf("openai request: %w", err)
	}
	defer resp.Body.Close()

	log.WithField("path", path).Debugf("response status=%d duration=%dms", resp.StatusCode, time.Since(start).Milliseconds())

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e struct {
			Error struct {
				Message string `json:"message"`
			} `json:"error"`
		}
		msg := http.StatusText(resp.StatusCode)
		if err := json.NewDecoder(resp.Body).Decode(&e); err == nil && e.Error.Message != "" {
			msg = e.Error.Message
		}
		return &APIError{Status: resp.StatusCode, Message: msg}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode openai: %w", err)
	}
	return nil
}
