package statementimport

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/EmpoweredVote/Ledger-Backend/internal/normalize"
	"github.com/EmpoweredVote/Ledger-Backend/internal/taxonomy"
	"github.com/shopspring/decimal"
)

var (
	ErrNoHeader       = errors.New("could not find header row in CSV: expected columns like Transaction Date, Value Date, Description, Amount and Dr / Cr")
	ErrMissingColumns = errors.New("required columns not found")
)

// Options are stamped onto every draft; the user overrides them during review.
type Options struct {
	Category    string
	Subcategory string
	Source      string
}

// DefaultOptions uses the first category, its first subcategory (saved tags
// before static ones) and the default source.
func DefaultOptions(cfg taxonomy.Config, stored []string) Options {
	category := cfg.DefaultCategory()
	return Options{
		Category:    category,
		Subcategory: cfg.DefaultSubcategory(category, stored),
		Source:      cfg.DefaultSource,
	}
}

// Draft is a parsed debit awaiting review.
type Draft struct {
	Date        normalize.Date  `json:"date"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Source      string          `json:"source"`
	Category    string          `json:"category"`
	Subcategory string          `json:"subcategory"`
}

// Skip records why a data line produced no draft.
type Skip struct {
	Line   int    `json:"line"`
	Reason string `json:"reason"`
}

type Result struct {
	Drafts    []Draft `json:"drafts"`
	Processed int     `json:"processed"`
	Skipped   int     `json:"skipped"`
	Skips     []Skip  `json:"skips"`
	Delimiter string  `json:"delimiter"`
}

var footerPrefixes = []string{"Closing balance", "You may call", "Write to us"}

type line struct {
	no   int
	text string
}

// Parse turns a bank statement export into draft expenses. Only debit rows
// are kept. A missing header or missing required columns fails the whole
// file; anything wrong with a single row only skips that row.
func Parse(text string, opts Options) (Result, error) {
	lines := splitLines(text)

	hi := findHeader(lines)
	if hi < 0 {
		return Result{}, ErrNoHeader
	}

	delim := detectDelimiter(lines[hi].text)
	headers := splitRow(lines[hi].text, delim)
	for i, h := range headers {
		headers[i] = strings.ToLower(strings.TrimSpace(h))
	}
	cols, err := locateColumns(headers)
	if err != nil {
		return Result{}, err
	}

	res := Result{Drafts: []Draft{}, Delimiter: string(delim)}
	for _, ln := range lines[hi+1:] {
		if isFooter(ln.text) {
			continue
		}

		d, reason := parseRow(ln.text, delim, cols, len(headers))
		if reason != "" {
			res.Skipped++
			res.Skips = append(res.Skips, Skip{Line: ln.no, Reason: reason})
			continue
		}

		d.Category = opts.Category
		d.Subcategory = opts.Subcategory
		d.Source = opts.Source
		res.Drafts = append(res.Drafts, d)
		res.Processed++
	}
	return res, nil
}

func splitLines(text string) []line {
	text = strings.TrimPrefix(text, "\ufeff")
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	var out []line
	for i, l := range strings.Split(text, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, line{no: i + 1, text: l})
		}
	}
	return out
}

func findHeader(lines []line) int {
	for i, ln := range lines {
		l := strings.ToLower(ln.text)
		if strings.Contains(l, "value date") ||
			strings.Contains(l, "transaction date") ||
			(strings.Contains(l, "date") && strings.Contains(l, "description") && strings.Contains(l, "amount")) {
			return i
		}
	}
	return -1
}

// detectDelimiter picks tab or comma from the header; tab wins ties.
func detectDelimiter(header string) rune {
	tabs := strings.Count(header, "\t")
	commas := strings.Count(header, ",")
	if tabs >= commas && tabs > 0 {
		return '\t'
	}
	if commas > 0 {
		return ','
	}
	return '\t'
}

func alternate(delim rune) rune {
	if delim == '\t' {
		return ','
	}
	return '\t'
}

func isFooter(l string) bool {
	for _, p := range footerPrefixes {
		if strings.HasPrefix(l, p) {
			return true
		}
	}
	return strings.Contains(strings.ToLower(l), "customer contact")
}

type columns struct {
	date, description, amount, drCr int
}

// required is how many fields a row needs to reach every column.
func (c columns) required() int {
	return max(c.date, c.description, c.amount, c.drCr) + 1
}

var drCrHeaderRe = regexp.MustCompile(`\b(dr|cr|drcr|crdr)\b`)

// locateColumns finds the first header matching each role. headers must
// already be lower case.
func locateColumns(headers []string) (columns, error) {
	c := columns{date: -1, description: -1, amount: -1, drCr: -1}
	for i, h := range headers {
		if c.date < 0 && (strings.Contains(h, "value date") || strings.Contains(h, "transaction date")) {
			c.date = i
		}
		if c.description < 0 && strings.Contains(h, "description") {
			c.description = i
		}
		if c.amount < 0 && strings.Contains(h, "amount") && !strings.Contains(h, "balance") {
			c.amount = i
		}
	}
	for i, h := range headers {
		if i == c.description {
			continue
		}
		if drCrHeaderRe.MatchString(h) || strings.Contains(h, "debit") || strings.Contains(h, "credit") {
			c.drCr = i
			break
		}
	}

	if c.date < 0 || c.description < 0 || c.amount < 0 || c.drCr < 0 {
		return c, fmt.Errorf("%w. Found: %s", ErrMissingColumns, strings.Join(headers, ", "))
	}
	return c, nil
}
