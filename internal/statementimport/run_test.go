package statementimport

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/EmpoweredVote/Ledger-Backend/internal/taxonomy"
)

func TestRun_DryRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jan.csv")
	if err := os.WriteFile(path, []byte(tabStatement), 0o600); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	res, err := Run(context.Background(), Config{CSVPath: path, DryRun: true}, taxonomy.Default(), &out)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Processed != 2 {
		t.Errorf("processed = %d", res.Processed)
	}

	got := out.String()
	for _, want := range []string{"2024-01-01\t250.00\tUPI/Swiggy", "skipped line", "parsed 2 expenses, 1 rows skipped"} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
}

func TestRun_RefusesWithoutTarget(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jan.csv")
	os.WriteFile(path, []byte(tabStatement), 0o600)

	var out bytes.Buffer
	if _, err := Run(context.Background(), Config{CSVPath: path}, taxonomy.Default(), &out); err == nil {
		t.Error("expected refusal without user and database")
	}
}

func TestRun_MissingFile(t *testing.T) {
	var out bytes.Buffer
	_, err := Run(context.Background(), Config{CSVPath: filepath.Join(t.TempDir(), "nope.csv"), DryRun: true}, taxonomy.Default(), &out)
	if err == nil {
		t.Error("expected error for missing file")
	}
}
