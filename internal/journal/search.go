package journal

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Match is a search hit and its position in the searched snapshot.
type Match struct {
	Position int   `json:"position"`
	Entry    Entry `json:"entry"`
}

// Search returns rows where any field contains term, ignoring case. A blank
// term matches every row.
func (t Table) Search(term string) []Match {
	fold := cases.Fold()
	needle := fold.String(norm.NFC.String(strings.TrimSpace(term)))

	var matches []Match
	for i, entry := range t.Entries {
		if needle == "" || entryContains(fold, entry, needle) {
			matches = append(matches, Match{Position: i, Entry: entry})
		}
	}
	return matches
}

func entryContains(fold cases.Caser, entry Entry, needle string) bool {
	for _, field := range entry.fields() {
		if strings.Contains(fold.String(field), needle) {
			return true
		}
	}
	return false
}
