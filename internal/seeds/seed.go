// Package seeds fills a development account with a month of sample data.
package seeds

import (
	"context"
	"errors"
	"fmt"

	"github.com/EmpoweredVote/Ledger-Backend/internal/balances"
	"github.com/EmpoweredVote/Ledger-Backend/internal/expenses"
	"github.com/EmpoweredVote/Ledger-Backend/internal/logging"
	"github.com/EmpoweredVote/Ledger-Backend/internal/normalize"
	"github.com/EmpoweredVote/Ledger-Backend/internal/taxonomy"
	"github.com/EmpoweredVote/Ledger-Backend/internal/todos"
	"github.com/shopspring/decimal"
)

var ErrAlreadySeeded = errors.New("user already has expenses")

type ExpenseWriter interface {
	List(ctx context.Context, userID string, f expenses.Filter) ([]expenses.Expense, error)
	Create(ctx context.Context, e *expenses.Expense) error
	CreateSubcategory(ctx context.Context, s *expenses.Subcategory) error
}

type BalanceWriter interface {
	Upsert(ctx context.Context, b *balances.MonthlyBalance) error
}

type TodoWriter interface {
	Create(ctx context.Context, list []todos.Todo) ([]todos.Todo, error)
}

type Stores struct {
	Expenses ExpenseWriter
	Balances BalanceWriter
	Todos    TodoWriter
}

// Counts reports what Demo inserted.
type Counts struct {
	Expenses      int
	Subcategories int
	Todos         int
}

type sampleExpense struct {
	daysAgo     int
	amount      string
	description string
	category    string
	subcategory string
}

var sampleExpenses = []sampleExpense{
	{0, "250.00", "Swiggy", "Needs", "Food"},
	{1, "1499.00", "Electricity", "Needs", "Bills"},
	{2, "18000.00", "Rent", "Needs", "Rent"},
	{3, "640.50", "BigBasket", "Needs", "Grocery"},
	{5, "899.00", "Movie night", "Wants", "Entertainment"},
	{8, "300.00", "Vet", "Needs", "Pets"},
	{12, "5000.00", "SIP", "Investment", "Stocks/Index"},
}

const (
	sampleTag     = "Pets"
	sampleBalance = "50000"
)

var log = logging.For("seeds")

// Demo inserts sample expenses, a custom tag, this month's balance and a
// few todos for userID. It refuses to touch an account that already has
// expenses.
func Demo(ctx context.Context, s Stores, tax taxonomy.Config, userID string, today normalize.Date) (Counts, error) {
	var n Counts

	existing, err := s.Expenses.List(ctx, userID, expenses.Filter{})
	if err != nil {
		return n, err
	}
	if len(existing) > 0 {
		return n, ErrAlreadySeeded
	}

	tagCategory := tax.DefaultCategory()
	if err := s.Expenses.CreateSubcategory(ctx, &expenses.Subcategory{UserID: userID, Category: tagCategory, Name: sampleTag}); err != nil {
		return n, fmt.Errorf("seed subcategory: %w", err)
	}
	n.Subcategories++

	for _, se := range sampleExpenses {
		category, sub := se.category, se.subcategory
		if !tax.HasCategory(category) {
			category = tax.DefaultCategory()
			sub = tax.DefaultSubcategory(category, nil)
		}
		e := expenses.Expense{
			UserID:      userID,
			Amount:      decimal.RequireFromString(se.amount),
			Description: se.description,
			Category:    category,
			Subcategory: sub,
			Date:        today.AddDays(-se.daysAgo),
			Source:      tax.DefaultSource,
		}
		if err := s.Expenses.Create(ctx, &e); err != nil {
			return n, fmt.Errorf("seed expense %q: %w", se.description, err)
		}
		n.Expenses++
	}

	err = s.Balances.Upsert(ctx, &balances.MonthlyBalance{
		UserID: userID,
		Month:  int(today.Month) - 1,
		Year:   today.Year,
		Amount: decimal.RequireFromString(sampleBalance),
	})
	if err != nil {
		return n, fmt.Errorf("seed balance: %w", err)
	}

	due, project := today, "Travel"
	list := []todos.Todo{
		{UserID: userID, Task: todos.ContextPrefix + "Month end, check the card bill", DueDate: &due},
		{UserID: userID, Task: "Pay credit card bill", DueDate: &due, SortOrder: 0},
		{UserID: userID, Task: "Review imported statement", DueDate: &due, SortOrder: 1},
		{UserID: userID, Task: "Plan weekend trip", ProjectTag: &project},
	}
	created, err := s.Todos.Create(ctx, list)
	if err != nil {
		return n, fmt.Errorf("seed todos: %w", err)
	}
	n.Todos = len(created)

	log.WithField("user_id", userID).Infof("seeded %d expenses, %d todos", n.Expenses, n.Todos)
	return n, nil
}
