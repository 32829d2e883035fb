package todoclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/EmpoweredVote/Ledger-Backend/internal/logging"
	"github.com/EmpoweredVote/Ledger-Backend/internal/normalize"
	"github.com/EmpoweredVote/Ledger-Backend/internal/todos"
)

var log = logging.For("todoclient")

// DefaultTimeout bounds every call to the todo API.
const DefaultTimeout = 15 * time.Second

// Backend is the remote side of a Board.
type Backend interface {
	List(ctx context.Context, today normalize.Date) ([]todos.Todo, error)
	Create(ctx context.Context, req CreateRequest) (todos.Todo, error)
	Update(ctx context.Context, id string, req UpdateRequest) (todos.Todo, error)
	MoveDate(ctx context.Context, id string, due *normalize.Date) (todos.Todo, error)
	Reorder(ctx context.Context, due *normalize.Date, ids []string) error
	Delete(ctx context.Context, id string) error
}

type CreateRequest struct {
	Task       string          `json:"task"`
	DueDate    *normalize.Date `json:"due_date"`
	ProjectTag string          `json:"project_tag,omitempty"`
}

type UpdateRequest struct {
	Task       *string `json:"task,omitempty"`
	Status     *bool   `json:"status,omitempty"`
	ProjectTag *string `json:"project_tag,omitempty"`
}

// APIError is a non-2xx answer from the API.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("todo api: status %d: %s", e.Status, e.Message)
}

// Client talks to the todo routes of the ledger API.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient creates a client for baseURL (for example
// "http://localhost:5050/todos") authenticating with token.
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
	}
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rdr)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("todo api request: %w", err)
	}
	defer resp.Body.Close()
	log.WithField("status", resp.StatusCode).Debugf("%s %s in %dms", method, path, time.Since(start).Milliseconds())

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e struct {
			Error string `json:"error"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&e); err != nil || e.Error == "" {
			e.Error = http.StatusText(resp.StatusCode)
		}
		return &APIError{Status: resp.StatusCode, Message: e.Error}
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) List(ctx context.Context, today normalize.Date) ([]todos.Todo, error) {
	q := url.Values{}
	if !today.IsZero() {
		q.Set("today", today.String())
	}
	var out []todos.Todo
	if err := c.do(ctx, http.MethodGet, "/?"+q.Encode(), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Create(ctx context.Context, req CreateRequest) (todos.Todo, error) {
	var out todos.Todo
	err := c.do(ctx, http.MethodPost, "/", req, &out)
	return out, err
}

func (c *Client) Update(ctx context.Context, id string, req UpdateRequest) (todos.Todo, error) {
	var out todos.Todo
	err := c.do(ctx, http.MethodPatch, "/"+url.PathEscape(id), req, &out)
	return out, err
}

func (c *Client) MoveDate(ctx context.Context, id string, due *normalize.Date) (todos.Todo, error) {
	var out todos.Todo
	body := struct {
		DueDate *normalize.Date `json:"due_date"`
	}{due}
	err := c.do(ctx, http.MethodPut, "/"+url.PathEscape(id)+"/date", body, &out)
	return out, err
}

func (c *Client) Reorder(ctx context.Context, due *normalize.Date, ids []string) error {
	body := struct {
		DueDate *normalize.Date `json:"due_date"`
		IDs     []string        `json:"ids"`
	}{due, ids}
	return c.do(ctx, http.MethodPut, "/reorder", body, nil)
}

func (c *Client) Delete(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/"+url.PathEscape(id), nil, nil)
}
