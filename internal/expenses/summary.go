package expenses

import (
	"github.com/EmpoweredVote/Ledger-Backend/internal/normalize"
	"github.com/EmpoweredVote/Ledger-Backend/internal/taxonomy"
	"github.com/shopspring/decimal"
)

// maxDailyRows bounds the per-day series for very wide ranges.
const maxDailyRows = 366

type Summary struct {
	Start          normalize.Date                        `json:"start"`
	End            normalize.Date                        `json:"end"`
	Subcategories  map[string][]string                   `json:"subcategories"`
	Totals         map[string]map[string]decimal.Decimal `json:"totals"`
	CategoryTotals map[string]decimal.Decimal            `json:"category_totals"`
	Daily          []DayTotals                           `json:"daily"`
	TotalSpent     decimal.Decimal                       `json:"total_spent"`
}

type DayTotals struct {
	Date       normalize.Date             `json:"date"`
	Categories map[string]decimal.Decimal `json:"categories"`
}

// MergedSubcategories combines, per category, the static list, the user's
// saved tags and whatever strings already sit on their expenses.
func MergedSubcategories(cfg taxonomy.Config, stored []Subcategory, used map[string][]string) map[string][]string {
	saved := map[string][]string{}
	for _, s := range stored {
		saved[s.Category] = append(saved[s.Category], s.Name)
	}

	out := make(map[string][]string, len(cfg.Categories))
	for _, cat := range cfg.Categories {
		out[cat.Name] = taxonomy.Merge(cat.Subcategories, saved[cat.Name], used[cat.Name])
	}
	return out
}

// BuildSummary aggregates rows over [start, end]. Rows are expected to be
// filtered to that range already.
func BuildSummary(cfg taxonomy.Config, merged map[string][]string, rows []Expense, start, end normalize.Date) Summary {
	s := Summary{
		Start:          start,
		End:            end,
		Subcategories:  merged,
		Totals:         map[string]map[string]decimal.Decimal{},
		CategoryTotals: map[string]decimal.Decimal{},
		TotalSpent:     decimal.Zero,
	}

	for _, name := range cfg.CategoryNames() {
		s.CategoryTotals[name] = decimal.Zero
		subs := map[string]decimal.Decimal{}
		for _, sub := range merged[name] {
			subs[sub] = decimal.Zero
		}
		s.Totals[name] = subs
	}

	byDay := map[normalize.Date]map[string]decimal.Decimal{}
	for _, e := range rows {
		s.TotalSpent = s.TotalSpent.Add(e.Amount)
		s.CategoryTotals[e.Category] = s.CategoryTotals[e.Category].Add(e.Amount)

		if sub, ok := taxonomy.Match(merged[e.Category], e.Subcategory); ok {
			s.Totals[e.Category][sub] = s.Totals[e.Category][sub].Add(e.Amount)
		}

		day := byDay[e.Date]
		if day == nil {
			day = map[string]decimal.Decimal{}
			byDay[e.Date] = day
		}
		day[e.Category] = day[e.Category].Add(e.Amount)
	}

	if start.IsZero() || end.IsZero() || end.Before(start) {
		return s
	}
	for d, n := start, 0; !d.After(end) && n < maxDailyRows; d, n = d.AddDays(1), n+1 {
		row := DayTotals{Date: d, Categories: map[string]decimal.Decimal{}}
		for _, name := range cfg.CategoryNames() {
			row.Categories[name] = byDay[d][name]
		}
		s.Daily = append(s.Daily, row)
	}
	return s
}
