package statementimport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/EmpoweredVote/Ledger-Backend/internal/expenses"
	"github.com/EmpoweredVote/Ledger-Backend/internal/taxonomy"
	"github.com/EmpoweredVote/Ledger-Backend/internal/utils"
)

type staticVerifier struct{}

func (staticVerifier) Verify(string) (utils.SessionData, error) {
	return utils.SessionData{UserID: "u1", ExpiresAt: time.Now().Add(time.Hour)}, nil
}

type fakeCommitter struct {
	batch *ImportBatch
	rows  []expenses.Expense
	err   error
}

func (f *fakeCommitter) Commit(ctx context.Context, batch *ImportBatch, rows []expenses.Expense) error {
	if f.err != nil {
		return f.err
	}
	batch.ID = "batch-1"
	batch.Inserted = len(rows)
	f.batch, f.rows = batch, rows
	return nil
}

func (f *fakeCommitter) ListBatches(ctx context.Context, userID string) ([]ImportBatch, error) {
	if f.batch == nil {
		return nil, nil
	}
	return []ImportBatch{*f.batch}, nil
}

type fakeSubcategories []expenses.Subcategory

func (f fakeSubcategories) ListSubcategories(ctx context.Context, userID, category string) ([]expenses.Subcategory, error) {
	return f, nil
}

func newHandler(c *fakeCommitter, subs fakeSubcategories) http.Handler {
	h := &Handler{Committer: c, Subcategories: subs, Taxonomy: taxonomy.Default()}
	return SetupRoutes(h, staticVerifier{})
}

func upload(t *testing.T, srv http.Handler, field, content string) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if field != "" {
		fw, err := mw.CreateFormFile(field, "statement.csv")
		if err != nil {
			t.Fatal(err)
		}
		fw.Write([]byte(content))
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/preview", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer x")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func TestPreview(t *testing.T) {
	srv := newHandler(&fakeCommitter{}, fakeSubcategories{{Category: "Needs", Name: "Pets"}})

	rec := upload(t, srv, "file", tabStatement)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var res Result
	if err := json.NewDecoder(rec.Body).Decode(&res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if res.Processed != 2 || res.Skipped != 1 || len(res.Drafts) != 2 {
		t.Errorf("result = %+v", res)
	}
	if res.Drafts[0].Subcategory != "Pets" {
		t.Errorf("saved tag should be the default subcategory, got %q", res.Drafts[0].Subcategory)
	}
}

func TestPreview_Errors(t *testing.T) {
	srv := newHandler(&fakeCommitter{}, nil)

	if rec := upload(t, srv, "", ""); rec.Code != http.StatusBadRequest {
		t.Errorf("missing file: expected 400, got %d", rec.Code)
	}

	rec := upload(t, srv, "file", "hello\nworld\n")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("no header: expected 400, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "header") {
		t.Errorf("expected header error, got %s", rec.Body.String())
	}
}

func postJSON(srv http.Handler, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer x")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func TestCommit(t *testing.T) {
	c := &fakeCommitter{}
	srv := newHandler(c, nil)

	body := `{
		"file_name": "jan.csv", "processed": 2, "skipped": 1,
		"skips": [{"line": 6, "reason": "credit row"}],
		"drafts": [
			{"date": "2024-01-01", "description": "", "amount": "250.00", "source": "Bank A/C", "category": "Wants", "subcategory": "Dining Out"},
			{"date": "2024-01-03", "description": "Rent", "amount": 15000, "source": "", "category": "Needs", "subcategory": "Rent"}
		]
	}`
	rec := postJSON(srv, "/commit", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp commitResponse
	json.NewDecoder(rec.Body).Decode(&resp)
	if resp.BatchID != "batch-1" || resp.Inserted != 2 {
		t.Errorf("response = %+v", resp)
	}

	if len(c.rows) != 2 {
		t.Fatalf("rows = %d", len(c.rows))
	}
	if c.rows[0].UserID != "u1" || c.rows[0].Description != expenses.BlankDescription || c.rows[0].Category != "Wants" {
		t.Errorf("first row = %+v", c.rows[0])
	}
	if c.rows[1].Source != "Bank A/C" || c.rows[1].Date.String() != "2024-01-03" {
		t.Errorf("second row = %+v", c.rows[1])
	}
	if c.batch.FileName != "jan.csv" || len(c.batch.Notes) != 1 || c.batch.Notes[0] != "line 6: credit row" {
		t.Errorf("batch = %+v", c.batch)
	}
}

func TestCommit_Rejects(t *testing.T) {
	srv := newHandler(&fakeCommitter{}, nil)

	cases := map[string]string{
		"no drafts":        `{"drafts": []}`,
		"unknown category": `{"drafts": [{"date": "2024-01-01", "amount": 1, "category": "Gifts"}]}`,
		"zero amount":      `{"drafts": [{"date": "2024-01-01", "amount": 0, "category": "Needs"}]}`,
		"malformed":        `{"drafts": `,
	}
	for name, body := range cases {
		if rec := postJSON(srv, "/commit", body); rec.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", name, rec.Code)
		}
	}

	failing := newHandler(&fakeCommitter{err: errors.New("db down")}, nil)
	rec := postJSON(failing, "/commit", `{"drafts": [{"date": "2024-01-01", "amount": 1, "category": "Needs"}]}`)
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("store failure: expected 500, got %d", rec.Code)
	}
}

func TestListBatches(t *testing.T) {
	srv := newHandler(&fakeCommitter{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer x")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK || strings.TrimSpace(rec.Body.String()) != "[]" {
		t.Errorf("got %d %q", rec.Code, rec.Body.String())
	}
}
