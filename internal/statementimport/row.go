package statementimport

import (
	"regexp"
	"strings"

	"github.com/EmpoweredVote/Ledger-Backend/internal/normalize"
)

var (
	datePrefixRe = regexp.MustCompile(`^\d{2}[-/]\d{2}[-/]\d{4}`)
	dashDateRe   = regexp.MustCompile(`^\d{2}-\d{2}-\d{4}`)
	integerRe    = regexp.MustCompile(`^\d+$`)
	centsRe      = regexp.MustCompile(`^\d+\.\d{2}$`)
	amountRe     = regexp.MustCompile(`^[\d,]+\.?\d{0,2}$`)
	numericRe    = regexp.MustCompile(`^[\d,]+\.?\d*$`)
	drCrMarkerRe = regexp.MustCompile(`(?i)^(DR|CR)$`)
)

// splitRow splits on delim outside double quotes. "" inside quotes is a
// literal quote. Fields are trimmed.
func splitRow(l string, delim rune) []string {
	var (
		fields  []string
		current strings.Builder
		quoted  bool
	)
	runes := []rune(l)
	for i := 0; i < len(runes); i++ {
		ch := runes[i]
		switch {
		case ch == '"':
			if quoted && i+1 < len(runes) && runes[i+1] == '"' {
				current.WriteRune('"')
				i++
			} else {
				quoted = !quoted
			}
		case ch == delim && !quoted:
			fields = append(fields, strings.TrimSpace(current.String()))
			current.Reset()
		default:
			current.WriteRune(ch)
		}
	}
	return append(fields, strings.TrimSpace(current.String()))
}

// unwrap strips one pair of surrounding quotes left after splitting.
func unwrap(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if (first == '"' && last == '"') || (first == '\'' && last == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}

func positiveAmount(s string) bool {
	d, ok := normalize.ParseAmount(s)
	return ok && d.IsPositive()
}

// parseRow returns a draft without category or source, or the reason the
// row was skipped.
func parseRow(text string, delim rune, c columns, headerWidth int) (Draft, string) {
	need := c.required()

	fields := splitRow(text, delim)
	if len(fields) < need {
		if alt := splitRow(text, alternate(delim)); len(alt) > len(fields) {
			fields = alt
		}
	}
	for i := range fields {
		fields[i] = unwrap(fields[i])
	}

	if len(fields) < need {
		if len(fields) < need-1 {
			return Draft{}, "insufficient columns"
		}
		for len(fields) < need {
			fields = append(fields, "")
		}
	}

	switch findMarker(fields, c.drCr) {
	case "DR":
	case "CR":
		return Draft{}, "credit row"
	default:
		return Draft{}, "no debit/credit marker"
	}

	// Extra fields, or a marker pushed one column right, mean an unquoted
	// comma split something, usually the amount.
	split := len(fields) > headerWidth || shiftedMarker(fields, c)

	dateStr := fields[c.date]
	if dateStr == "" {
		dateStr = findDate(fields)
	}

	amountStr := fields[c.amount]
	if split && amountStr != "" && c.amount+1 < len(fields) {
		if next := fields[c.amount+1]; integerRe.MatchString(amountStr) && centsRe.MatchString(next) {
			amountStr = amountStr + "," + next
		}
	}
	if !positiveAmount(amountStr) {
		if found := findAmount(fields, c.amount, split); found != "" {
			amountStr = found
		}
	}

	description := fields[c.description]
	if description == "" {
		description = findDescription(fields)
	}

	if dateStr == "" || amountStr == "" {
		return Draft{}, "missing date or amount"
	}

	date, ok := normalize.ParseStatementDate(dateStr)
	if !ok {
		return Draft{}, "unparseable date " + dateStr
	}

	amount, ok := normalize.ParseAmount(amountStr)
	if !ok || !amount.IsPositive() {
		return Draft{}, "invalid amount " + amountStr
	}

	description = strings.TrimSpace(description)
	if description == "" {
		description = "NULL"
	}

	return Draft{Date: date, Description: description, Amount: amount}, ""
}

// findMarker reads the debit/credit column, falling back to the first field
// anywhere in the row that is exactly DR or CR.
func findMarker(fields []string, idx int) string {
	if m := strings.ToUpper(strings.TrimSpace(fields[idx])); m == "DR" || m == "CR" {
		return m
	}
	for _, f := range fields {
		if m := strings.ToUpper(strings.TrimSpace(f)); m == "DR" || m == "CR" {
			return m
		}
	}
	return ""
}

// shiftedMarker reports a row whose DR/CR sits one field right of its
// column while the column itself holds something else.
func shiftedMarker(fields []string, c columns) bool {
	if c.drCr <= c.amount || c.drCr+1 >= len(fields) {
		return false
	}
	return !drCrMarkerRe.MatchString(fields[c.drCr]) && drCrMarkerRe.MatchString(fields[c.drCr+1])
}

// findDate looks for a dd-mm-yyyy or dd/mm/yyyy field among the first three.
func findDate(fields []string) string {
	for _, f := range fields[:min(3, len(fields))] {
		if datePrefixRe.MatchString(f) {
			return f
		}
	}
	return ""
}

// findAmount scans two fields left to three fields right of the amount
// column. The first plausible field wins.
func findAmount(fields []string, idx int, split bool) string {
	for j := max(0, idx-2); j <= min(len(fields)-1, idx+3); j++ {
		f := fields[j]
		if split && j+1 < len(fields) && integerRe.MatchString(f) && centsRe.MatchString(fields[j+1]) {
			return f + "," + fields[j+1]
		}
		if amountRe.MatchString(f) && positiveAmount(f) {
			return f
		}
	}
	return ""
}

// findDescription takes the first free-text field near the middle of the row.
func findDescription(fields []string) string {
	n := len(fields)
	for j := max(1, n/2-1); j < min(n-1, n/2+2); j++ {
		f := fields[j]
		if f != "" && !numericRe.MatchString(f) && !drCrMarkerRe.MatchString(f) && !dashDateRe.MatchString(f) {
			return f
		}
	}
	return ""
}
