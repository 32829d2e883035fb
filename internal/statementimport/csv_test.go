package statementimport

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/EmpoweredVote/Ledger-Backend/internal/taxonomy"
)

var testOpts = Options{Category: "Needs", Subcategory: "Rent", Source: "Bank A/C"}

const tabStatement = "\ufeffAccount Statement\r\n" +
	"Account No: 1234\r\n" +
	"\r\n" +
	"Transaction Date\tValue Date\tDescription\tAmount\tDr / Cr\tBalance\r\n" +
	"01-01-2024 10:00:00\t01-01-2024\tUPI/Swiggy\t250.00\tDR\t9,750.00\r\n" +
	"02-01-2024\t02-01-2024\tSalary\t50,000.00\tCR\t59,750.00\r\n" +
	"03-01-2024\t03-01-2024\tRent\t15,000.00\tDR\t44,750.00\r\n" +
	"Closing balance\t44,750.00\r\n" +
	"For customer contact details visit the branch\r\n"

func TestParse_TabStatement(t *testing.T) {
	res, err := Parse(tabStatement, testOpts)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if res.Delimiter != "\t" {
		t.Errorf("delimiter = %q", res.Delimiter)
	}
	if res.Processed != 2 || res.Skipped != 1 {
		t.Errorf("processed/skipped = %d/%d, want 2/1", res.Processed, res.Skipped)
	}
	if len(res.Drafts) != 2 {
		t.Fatalf("drafts = %d", len(res.Drafts))
	}

	first := res.Drafts[0]
	if first.Date.String() != "2024-01-01" || first.Description != "UPI/Swiggy" || first.Amount.String() != "250" {
		t.Errorf("first draft = %+v", first)
	}
	if first.Category != "Needs" || first.Subcategory != "Rent" || first.Source != "Bank A/C" {
		t.Errorf("defaults not applied: %+v", first)
	}
	if res.Drafts[1].Amount.String() != "15000" {
		t.Errorf("second amount = %s", res.Drafts[1].Amount)
	}

	if len(res.Skips) != 1 || res.Skips[0].Reason != "credit row" || res.Skips[0].Line != 6 {
		t.Errorf("skips = %+v", res.Skips)
	}
}

// Every DR row with a positive amount is kept and every CR row dropped.
func TestParse_DebitsOnly(t *testing.T) {
	var b strings.Builder
	b.WriteString("Value Date\tDescription\tAmount\tDr / Cr\n")

	var wantAmounts []string
	for i := 1; i <= 28; i++ {
		marker := "CR"
		if i%3 != 0 {
			marker = "DR"
		}
		amount := fmt.Sprintf("%d.%02d", i*37, i)
		fmt.Fprintf(&b, "%02d-02-2024\tRow %d\t%s\t%s\n", i, i, amount, marker)
		if marker == "DR" {
			wantAmounts = append(wantAmounts, amount)
		}
	}

	res, err := Parse(b.String(), testOpts)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(res.Drafts) != len(wantAmounts) {
		t.Fatalf("drafts = %d, want %d", len(res.Drafts), len(wantAmounts))
	}
	for i, d := range res.Drafts {
		if d.Amount.StringFixed(2) != wantAmounts[i] {
			t.Errorf("draft %d amount = %s, want %s", i, d.Amount.StringFixed(2), wantAmounts[i])
		}
		var n int
		if _, err := fmt.Sscanf(d.Description, "Row %d", &n); err != nil || n%3 == 0 {
			t.Errorf("credit row leaked: %+v", d)
		}
	}
	if res.Skipped != 28-len(wantAmounts) {
		t.Errorf("skipped = %d", res.Skipped)
	}
}

func TestParse_Idempotent(t *testing.T) {
	a, err := Parse(tabStatement, testOpts)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	b, err := Parse(tabStatement, testOpts)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Errorf("parsing twice differs:\n%+v\n%+v", a, b)
	}
}

func TestParse_SplitAmount(t *testing.T) {
	csv := "Value Date,Description,Amount,Dr / Cr\n" +
		"05-01-2024,Groceries,1,879.75,DR\n" +
		`06-01-2024,"Fuel, highway",500.00,DR` + "\n" +
		"07-01-2024,Refund,29,300.00,CR\n"

	res, err := Parse(csv, testOpts)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if res.Delimiter != "," {
		t.Errorf("delimiter = %q", res.Delimiter)
	}
	if len(res.Drafts) != 2 {
		t.Fatalf("drafts = %+v", res.Drafts)
	}
	if got := res.Drafts[0].Amount.StringFixed(2); got != "1879.75" {
		t.Errorf("split amount = %s, want 1879.75", got)
	}
	if res.Drafts[1].Description != "Fuel, highway" {
		t.Errorf("quoted description = %q", res.Drafts[1].Description)
	}

	// Same field count as the header: the DR one column late gives the split
	// away, while a row with its marker in place keeps a small amount.
	csv = "Transaction Date,Value Date,Description,Amount,Dr / Cr,Balance\n" +
		"01-01-2026,01-01-2026,UPI Payment,1,879.75,DR\n" +
		"02-01-2026,02-01-2026,Tea,1,DR,879.75\n"
	res, err = Parse(csv, testOpts)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(res.Drafts) != 2 {
		t.Fatalf("drafts = %+v", res.Drafts)
	}
	if got := res.Drafts[0].Amount.StringFixed(2); got != "1879.75" {
		t.Errorf("shifted split amount = %s, want 1879.75", got)
	}
	if got := res.Drafts[1].Amount.StringFixed(2); got != "1.00" {
		t.Errorf("unsplit amount = %s, want 1.00", got)
	}
}

func TestParse_Repairs(t *testing.T) {
	cases := []struct {
		name     string
		csv      string
		wantDate string
		wantDesc string
		wantAmt  string
	}{
		{
			name:     "alternate delimiter",
			csv:      "Value Date\tDescription\tAmount\tDr / Cr\n09-01-2024,Book,300.00,DR\n",
			wantDate: "2024-01-09", wantDesc: "Book", wantAmt: "300.00",
		},
		{
			name:     "padded short row",
			csv:      "Value Date\tDr / Cr\tAmount\tDescription\n07-01-2024\tDR\t120.00\n",
			wantDate: "2024-01-07", wantDesc: "NULL", wantAmt: "120.00",
		},
		{
			name:     "date from leading column",
			csv:      "Posted,Value Date,Description,Amount,Dr / Cr\n08-01-2024,,Snacks,40.00,DR\n",
			wantDate: "2024-01-08", wantDesc: "Snacks", wantAmt: "40.00",
		},
		{
			name:     "amount from neighbouring column",
			csv:      "Value Date\tDescription\tAmount\tDr / Cr\tRef\n10-01-2024\tTaxi\t-\tDR\t450.00\n",
			wantDate: "2024-01-10", wantDesc: "Taxi", wantAmt: "450.00",
		},
		{
			name:     "description from middle columns",
			csv:      "Value Date,Description,Cheque,Narration,Amount,Dr / Cr\n11-01-2024,,,Electricity,900.00,DR\n",
			wantDate: "2024-01-11", wantDesc: "Electricity", wantAmt: "900.00",
		},
		{
			name:     "single quoted fields",
			csv:      "Value Date,Description,Amount,Dr / Cr\n'12/01/2024','Milk',60.00,'dr'\n",
			wantDate: "2024-01-12", wantDesc: "Milk", wantAmt: "60.00",
		},
		{
			name:     "escaped quotes",
			csv:      "Value Date,Description,Amount,Dr / Cr\n13-01-2024,\"The \"\"Big\"\" Shop\",75.50,DR\n",
			wantDate: "2024-01-13", wantDesc: `The "Big" Shop`, wantAmt: "75.50",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res, err := Parse(tc.csv, testOpts)
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			if len(res.Drafts) != 1 {
				t.Fatalf("drafts = %+v, skips = %+v", res.Drafts, res.Skips)
			}
			d := res.Drafts[0]
			if d.Date.String() != tc.wantDate {
				t.Errorf("date = %s, want %s", d.Date, tc.wantDate)
			}
			if d.Description != tc.wantDesc {
				t.Errorf("description = %q, want %q", d.Description, tc.wantDesc)
			}
			if d.Amount.StringFixed(2) != tc.wantAmt {
				t.Errorf("amount = %s, want %s", d.Amount.StringFixed(2), tc.wantAmt)
			}
		})
	}
}

func TestParse_SkippedRows(t *testing.T) {
	csv := "Value Date\tDescription\tAmount\tDr / Cr\n" +
		"14-01-2024\tNo marker\t10.00\t?\n" +
		"not-a-date\tBad date\t10.00\tDR\n" +
		"15-01-2024\tZero\t0.00\tDR\n" +
		"16-01-2024\n" +
		"You may call us any time\n" +
		"Write to us at the address below\n"

	res, err := Parse(csv, testOpts)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(res.Drafts) != 0 {
		t.Errorf("drafts = %+v", res.Drafts)
	}
	if res.Skipped != 4 {
		t.Fatalf("skipped = %d, want 4 (%+v)", res.Skipped, res.Skips)
	}

	want := []string{"no debit/credit marker", "unparseable date not-a-date", "invalid amount 0.00", "insufficient columns"}
	for i, s := range res.Skips {
		if s.Reason != want[i] {
			t.Errorf("skip %d reason = %q, want %q", i, s.Reason, want[i])
		}
	}
}

func TestParse_FatalErrors(t *testing.T) {
	if _, err := Parse("just,some,numbers\n1,2,3\n", testOpts); !errors.Is(err, ErrNoHeader) {
		t.Errorf("expected ErrNoHeader, got %v", err)
	}
	if _, err := Parse("", testOpts); !errors.Is(err, ErrNoHeader) {
		t.Errorf("empty input: expected ErrNoHeader, got %v", err)
	}

	_, err := Parse("Date,Description,Amount\n01-01-2024,Tea,10\n", testOpts)
	if !errors.Is(err, ErrMissingColumns) {
		t.Fatalf("expected ErrMissingColumns, got %v", err)
	}
	if !strings.Contains(err.Error(), "date, description, amount") {
		t.Errorf("error should list found headers: %v", err)
	}
}

func TestDetectDelimiter(t *testing.T) {
	cases := map[string]rune{
		"a\tb\tc":      '\t',
		"a,b,c":        ',',
		"a\tb,c":       '\t',
		"a,b\tc,d":     ',',
		"single":       '\t',
		"a\t\"b,c,d\"": ',',
	}
	for in, want := range cases {
		if got := detectDelimiter(in); got != want {
			t.Errorf("detectDelimiter(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestLocateColumns_DrCrHeader(t *testing.T) {
	c, err := locateColumns([]string{"value date", "description", "amount", "dr / cr", "balance"})
	if err != nil {
		t.Fatalf("locateColumns: %v", err)
	}
	if c.drCr != 3 {
		t.Errorf("drCr = %d; description must not count as a cr column", c.drCr)
	}

	c, err = locateColumns([]string{"transaction date", "description", "debit/credit", "amount (inr)"})
	if err != nil {
		t.Fatalf("locateColumns: %v", err)
	}
	if c.drCr != 2 || c.amount != 3 {
		t.Errorf("columns = %+v", c)
	}

	for _, h := range []string{"drcr", "cr/dr", "crdr"} {
		c, err = locateColumns([]string{"value date", "description", "amount", h})
		if err != nil {
			t.Errorf("%q: %v", h, err)
			continue
		}
		if c.drCr != 3 {
			t.Errorf("%q: drCr = %d", h, c.drCr)
		}
	}
}

func TestParse_JoinedDrCrHeader(t *testing.T) {
	res, err := Parse("Value Date,Description,Amount,DrCr\n03-01-2024,Tea,40.00,DR\n", testOpts)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(res.Drafts) != 1 || res.Drafts[0].Amount.StringFixed(2) != "40.00" {
		t.Errorf("drafts = %+v", res.Drafts)
	}
}

func TestDefaultOptions(t *testing.T) {
	cfg := taxonomy.Default()

	opts := DefaultOptions(cfg, nil)
	if opts.Category != "Needs" || opts.Subcategory != "Rent" || opts.Source != "Bank A/C" {
		t.Errorf("opts = %+v", opts)
	}
	if opts := DefaultOptions(cfg, []string{"Pets"}); opts.Subcategory != "Pets" {
		t.Errorf("saved tag should win: %+v", opts)
	}
}
