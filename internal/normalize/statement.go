package normalize

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Layouts bank exports use, day first.
var statementLayouts = []string{
	"02-01-2006",
	"02/01/2006",
	"2006-01-02",
	"2-1-2006",
	"2/1/2006",
}

// Anything else a spreadsheet might have produced.
var fallbackLayouts = []string{
	"02 Jan 2006",
	"2 Jan 2006",
	"02-Jan-2006",
	"2 January 2006",
	"02-January-2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"2006/01/02",
	time.RFC3339,
}

// ParseStatementDate reads a transaction date from a bank export cell. Any
// time-of-day part after the first space is dropped before the day-first
// layouts are tried.
func ParseStatementDate(s string) (Date, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, false
	}

	first := strings.Fields(s)[0]
	for _, layout := range statementLayouts {
		if t, err := time.Parse(layout, first); err == nil {
			return DateOf(t), true
		}
	}
	for _, layout := range fallbackLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return DateOf(t), true
		}
	}
	return Date{}, false
}

// ParseAmount reads a money cell like "1,879.75". Thousands separators and
// surrounding spaces are ignored.
func ParseAmount(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// FormatAmount renders money with two decimals.
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}
