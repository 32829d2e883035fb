package taxonomy

import (
	"strings"

	"golang.org/x/text/cases"
)

// Key is the case-insensitive identity of a subcategory name. Casers keep
// state, so each call gets its own.
func Key(name string) string {
	return cases.Fold().String(strings.TrimSpace(name))
}

// Merge joins name lists in order, dropping blanks and case-insensitive
// duplicates. The first spelling seen wins.
func Merge(lists ...[]string) []string {
	seen := map[string]bool{}
	var out []string
	for _, list := range lists {
		for _, name := range list {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			k := Key(name)
			if seen[k] {
				continue
			}
			seen[k] = true
			out = append(out, name)
		}
	}
	return out
}

// Match finds name in list ignoring case and returns the list's spelling.
func Match(list []string, name string) (string, bool) {
	k := Key(name)
	if k == "" {
		return "", false
	}
	for _, candidate := range list {
		if Key(candidate) == k {
			return candidate, true
		}
	}
	return "", false
}
