package seeds

import (
	"context"
	"fmt"

	"github.com/EmpoweredVote/Ledger-Backend/internal/expenses"
	"github.com/EmpoweredVote/Ledger-Backend/internal/normalize"
	"github.com/EmpoweredVote/Ledger-Backend/internal/taxonomy"
	"github.com/brianvoe/gofakeit/v6"
	"github.com/shopspring/decimal"
)

// Random adds n generated expenses spread over the current month of today.
// The same seed always produces the same rows.
func Random(ctx context.Context, w ExpenseWriter, tax taxonomy.Config, userID string, today normalize.Date, n int, seed int64) (int, error) {
	faker := gofakeit.New(seed)
	names := tax.CategoryNames()

	for i := 0; i < n; i++ {
		category := faker.RandomString(names)
		sub := "Other"
		if subs := tax.Subcategories(category); len(subs) > 0 {
			sub = faker.RandomString(subs)
		}
		e := expenses.Expense{
			UserID:      userID,
			Amount:      decimal.NewFromFloat(faker.Price(10, 5000)).Round(2),
			Description: faker.Company(),
			Category:    category,
			Subcategory: sub,
			Date:        today.AddDays(-faker.Number(0, today.Day-1)),
			Source:      faker.RandomString(tax.Sources),
		}
		if err := w.Create(ctx, &e); err != nil {
			return i, fmt.Errorf("seed random expense: %w", err)
		}
	}
	return n, nil
}
