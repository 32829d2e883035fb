package assist

import (
	"encoding/json"
	"regexp"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/EmpoweredVote/Ledger-Backend/internal/normalize"
	"github.com/EmpoweredVote/Ledger-Backend/internal/taxonomy"
	"github.com/shopspring/decimal"
)

// MaxTaskLength drops OCR lines that are too long to be a task.
const MaxTaskLength = 200

var (
	jsonArrayRe   = regexp.MustCompile(`(?s)\[.*\]`)
	jsonObjectRe  = regexp.MustCompile(`(?s)\{.*\}`)
	bulletRe      = regexp.MustCompile(`^[-•*□☐\s]+`)
	nonTaskRe     = regexp.MustCompile(`(?i)^(date|time|header|title|page)`)
	amountRe      = regexp.MustCompile(`(\d+(\.\d+)?)`)
	descriptionRe = regexp.MustCompile(`for (.*?) under`)
	categoryRe    = regexp.MustCompile(`under (.*?) category`)
	spokenDateRe  = regexp.MustCompile(`\bon (.*)`)
)

var spokenDateLayouts = []string{
	"January 2, 2006",
	"January 2 2006",
	"2 January 2006",
	"Jan 2, 2006",
	"2 Jan 2006",
	"2006-01-02",
}

// ParseTasks reads the task list out of a vision model reply: the first
// JSON array when there is one, otherwise one task per line with bullets
// stripped. Empty, overlong and header-like entries are dropped.
func ParseTasks(reply string) []string {
	var raw []string
	if m := jsonArrayRe.FindString(reply); m == "" || json.Unmarshal([]byte(m), &raw) != nil {
		raw = nil
		for _, line := range strings.Split(reply, "\n") {
			raw = append(raw, bulletRe.ReplaceAllString(strings.TrimSpace(line), ""))
		}
	}

	tasks := []string{}
	for _, t := range raw {
		t = strings.TrimSpace(t)
		if t == "" || utf8.RuneCountInString(t) >= MaxTaskLength || nonTaskRe.MatchString(t) {
			continue
		}
		tasks = append(tasks, t)
	}
	return tasks
}

// Extracted are the expense fields read from speech.
type Extracted struct {
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Subcategory string          `json:"subcategory"`
	Date        *normalize.Date `json:"date,omitempty"`
}

// ExtractExpense decodes the model's JSON object. When the reply is not
// usable the transcript is parsed with a fixed phrase pattern instead
// ("50 for rent under needs category on April 6, 2025"). Category and
// subcategory are mapped onto known names where possible.
func ExtractExpense(reply, transcript string, cfg taxonomy.Config, merged map[string][]string) (Extracted, bool) {
	var ex Extracted
	fromModel := false
	if m := jsonObjectRe.FindString(reply); m != "" {
		fromModel = json.Unmarshal([]byte(m), &ex) == nil
	}
	if !fromModel {
		ex = ExpenseFromTranscript(transcript)
	}

	if c, ok := cfg.CanonicalCategory(ex.Category); ok {
		ex.Category = c
		names := merged[c]
		if names == nil {
			names = cfg.Subcategories(c)
		}
		if s, ok := taxonomy.Match(names, ex.Subcategory); ok {
			ex.Subcategory = s
		}
	}
	ex.Description = strings.TrimSpace(ex.Description)
	return ex, fromModel
}

// ExpenseFromTranscript is the pattern fallback for ExtractExpense.
func ExpenseFromTranscript(text string) Extracted {
	var ex Extracted
	if m := amountRe.FindStringSubmatch(text); m != nil {
		ex.Amount, _ = decimal.NewFromString(m[1])
	}
	if m := descriptionRe.FindStringSubmatch(text); m != nil {
		ex.Description = m[1]
		ex.Subcategory = capitalize(m[1])
	}
	if m := categoryRe.FindStringSubmatch(text); m != nil {
		ex.Category = capitalize(m[1])
	}
	if m := spokenDateRe.FindStringSubmatch(text); m != nil {
		spoken := strings.TrimRight(strings.TrimSpace(m[1]), ".")
		for _, layout := range spokenDateLayouts {
			if t, err := time.Parse(layout, spoken); err == nil {
				d := normalize.DateOf(t)
				ex.Date = &d
				break
			}
		}
	}
	return ex
}

var commandPrefixes = []string{
	"remind me to",
	"i need to",
	"i want to",
	"create",
	"add",
	"new",
	"todo",
	"task",
}

// StripCommand removes spoken command words ("add", "remind me to", ...)
// from the front of a task and capitalises what is left.
func StripCommand(text string) string {
	t := strings.TrimSpace(text)
	for {
		lower := strings.ToLower(t)
		stripped := false
		for _, p := range commandPrefixes {
			if lower == p {
				return ""
			}
			if strings.HasPrefix(lower, p) && len(t) > len(p) {
				next, _ := utf8.DecodeRuneInString(t[len(p):])
				if !unicode.IsLetter(next) {
					t = strings.TrimLeft(t[len(p):], " ,:.-")
					stripped = true
					break
				}
			}
		}
		if !stripped {
			break
		}
	}
	return capitalizeFirst(strings.TrimRight(t, "."))
}

// capitalize upper-cases the first letter and lower-cases the rest.
func capitalize(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}
	r, n := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + strings.ToLower(s[n:])
}

func capitalizeFirst(s string) string {
	if s == "" {
		return s
	}
	r, n := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[n:]
}
