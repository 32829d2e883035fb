package expenses

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/EmpoweredVote/Ledger-Backend/internal/normalize"
	"github.com/shopspring/decimal"
)

// ExportDateLayout is dd-MMMM-yyyy, e.g. 05-January-2024.
const ExportDateLayout = "02-January-2006"

var exportHeader = []string{"date", "amount", "description", "category", "subcategory", "source"}

// WriteCSV writes rows oldest first. rows is not modified.
func WriteCSV(w io.Writer, rows []Expense) error {
	sorted := make([]Expense, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})

	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return err
	}
	for _, e := range sorted {
		rec := []string{
			e.Date.Format(ExportDateLayout),
			normalize.FormatAmount(e.Amount),
			e.Description,
			e.Category,
			e.Subcategory,
			e.Source,
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ExportedRow is what ReadCSV recovers from an export.
type ExportedRow struct {
	Date   normalize.Date
	Amount decimal.Decimal
}

// ReadCSV reads the date and amount columns back out of an export.
func ReadCSV(r io.Reader) ([]ExportedRow, error) {
	cr := csv.NewReader(r)
	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 || strings.ToLower(records[0][0]) != "date" {
		return nil, fmt.Errorf("export has no header row")
	}

	out := make([]ExportedRow, 0, len(records)-1)
	for i, rec := range records[1:] {
		if len(rec) < 2 {
			return nil, fmt.Errorf("row %d: expected date and amount", i+2)
		}
		t, err := time.Parse(ExportDateLayout, rec[0])
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		amt, ok := normalize.ParseAmount(rec[1])
		if !ok {
			return nil, fmt.Errorf("row %d: invalid amount %q", i+2, rec[1])
		}
		out = append(out, ExportedRow{Date: normalize.DateOf(t), Amount: amt})
	}
	return out, nil
}
