package statementimport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/EmpoweredVote/Ledger-Backend/internal/db"
	"github.com/EmpoweredVote/Ledger-Backend/internal/expenses"
	"github.com/EmpoweredVote/Ledger-Backend/internal/taxonomy"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Committer persists reviewed drafts.
type Committer interface {
	Commit(ctx context.Context, batch *ImportBatch, rows []expenses.Expense) error
	ListBatches(ctx context.Context, userID string) ([]ImportBatch, error)
}

type GormCommitter struct {
	DB *gorm.DB
}

// Commit writes the audit row and every expense in one transaction.
func (c GormCommitter) Commit(ctx context.Context, batch *ImportBatch, rows []expenses.Expense) error {
	if batch.ID == "" {
		batch.ID = uuid.NewString()
	}
	batch.Inserted = len(rows)

	return c.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(batch).Error; err != nil {
			return fmt.Errorf("insert import batch: %w", err)
		}

		for i := range rows {
			if rows[i].ID == "" {
				rows[i].ID = uuid.NewString()
			}
			rows[i].ImportBatchID = &batch.ID
		}
		if len(rows) > 0 {
			if err := tx.CreateInBatches(&rows, 200).Error; err != nil {
				return fmt.Errorf("insert expenses: %w", err)
			}
		}
		return nil
	})
}

func (c GormCommitter) ListBatches(ctx context.Context, userID string) ([]ImportBatch, error) {
	var out []ImportBatch
	err := c.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("list import batches: %w", err)
	}
	return out, nil
}

// BuildExpenses validates reviewed drafts and turns them into rows for userID.
func BuildExpenses(cfg taxonomy.Config, userID string, drafts []Draft) ([]expenses.Expense, error) {
	out := make([]expenses.Expense, 0, len(drafts))
	for i, d := range drafts {
		in, err := expenses.Input{
			Amount:      d.Amount,
			Description: d.Description,
			Category:    d.Category,
			Subcategory: d.Subcategory,
			Date:        d.Date,
			Source:      d.Source,
		}.Normalize(cfg)
		if err != nil {
			return nil, fmt.Errorf("draft %d: %w", i+1, err)
		}
		if !in.Amount.IsPositive() {
			return nil, fmt.Errorf("draft %d: amount must be positive", i+1)
		}

		out = append(out, expenses.Expense{
			UserID:      userID,
			Amount:      in.Amount,
			Description: in.Description,
			Category:    in.Category,
			Subcategory: in.Subcategory,
			Date:        in.Date,
			Source:      in.Source,
		})
	}
	return out, nil
}

// Notes renders skip reasons for the audit row.
func Notes(skips []Skip) pq.StringArray {
	notes := make(pq.StringArray, 0, len(skips))
	for _, s := range skips {
		notes = append(notes, fmt.Sprintf("line %d: %s", s.Line, s.Reason))
	}
	return notes
}

// Config drives a command line import.
type Config struct {
	CSVPath     string
	DatabaseURL string
	UserID      string
	DryRun      bool
}

// Run parses a statement file and, unless DryRun is set, commits every
// draft for the user with default categories. A summary goes to out.
func Run(ctx context.Context, cfg Config, tax taxonomy.Config, out io.Writer) (Result, error) {
	raw, err := os.ReadFile(cfg.CSVPath)
	if err != nil {
		return Result{}, err
	}

	res, err := Parse(string(raw), DefaultOptions(tax, nil))
	if err != nil {
		return Result{}, err
	}

	for _, d := range res.Drafts {
		fmt.Fprintf(out, "%s\t%s\t%s\n", d.Date, d.Amount.StringFixed(2), d.Description)
	}
	for _, s := range res.Skips {
		fmt.Fprintf(out, "skipped line %d: %s\n", s.Line, s.Reason)
	}
	fmt.Fprintf(out, "parsed %d expenses, %d rows skipped\n", res.Processed, res.Skipped)

	if cfg.DryRun {
		return res, nil
	}
	if cfg.UserID == "" || cfg.DatabaseURL == "" {
		return res, errors.New("refusing to commit: user and database are required unless dry-run is set")
	}

	rows, err := BuildExpenses(tax, cfg.UserID, res.Drafts)
	if err != nil {
		return res, err
	}

	d, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		return res, err
	}

	batch := ImportBatch{
		UserID:    cfg.UserID,
		FileName:  filepath.Base(cfg.CSVPath),
		Processed: res.Processed,
		Skipped:   res.Skipped,
		Notes:     Notes(res.Skips),
	}
	if err := (GormCommitter{DB: d}).Commit(ctx, &batch, rows); err != nil {
		return res, err
	}
	fmt.Fprintf(out, "committed batch %s with %d expenses\n", batch.ID, batch.Inserted)
	return res, nil
}
