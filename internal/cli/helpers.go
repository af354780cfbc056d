package cli

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/faizmokh/jurnal/internal/journal"
)

const conflictHint = "hint: the journal changed since it was read; run the command again to work on the latest copy"

const cellWidth = 48

var headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
var cellStyle = lipgloss.NewStyle().Padding(0, 1)

func resolveDate(dateFlag string) (string, error) {
	if dateFlag == "" {
		return "", nil
	}

	parsed, err := time.ParseInLocation(journal.DateLayout, dateFlag, time.Local)
	if err != nil {
		return "", fmt.Errorf("parse date: %w", err)
	}
	return parsed.Format(journal.DateLayout), nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func oneLine(value string) string {
	value = strings.Join(strings.Fields(strings.ReplaceAll(value, "\n", " / ")), " ")
	runes := []rune(value)
	if len(runes) > cellWidth {
		return string(runes[:cellWidth-1]) + "…"
	}
	return value
}

func formatEntry(entry journal.Entry) string {
	builder := strings.Builder{}
	builder.Grow(32 + len(entry.Content) + len(entry.Note))

	builder.WriteString(shortID(entry.ID))
	builder.WriteString(" ")
	builder.WriteString(entry.Date)
	if entry.Equipment != "" {
		builder.WriteString(" [")
		builder.WriteString(entry.Equipment)
		builder.WriteString("]")
	}
	builder.WriteString(" ")
	builder.WriteString(entry.Author)
	builder.WriteString(": ")
	builder.WriteString(oneLine(entry.Content))
	if entry.Note != "" {
		builder.WriteString(" (")
		builder.WriteString(oneLine(entry.Note))
		builder.WriteString(")")
	}
	return builder.String()
}

// renderEntries draws matches as a table; positions are shown 1-based.
func renderEntries(matches []journal.Match) string {
	rows := make([][]string, 0, len(matches))
	for _, m := range matches {
		rows = append(rows, []string{
			strconv.Itoa(m.Position + 1),
			shortID(m.Entry.ID),
			m.Entry.Date,
			m.Entry.Equipment,
			m.Entry.Author,
			oneLine(m.Entry.Content),
			oneLine(m.Entry.Note),
		})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers("#", "ID", "DATE", "EQUIPMENT", "AUTHOR", "CONTENT", "NOTE").
		Rows(rows...)
	return t.String()
}

func allMatches(t journal.Table) []journal.Match {
	matches := make([]journal.Match, 0, t.Len())
	for i, entry := range t.Entries {
		matches = append(matches, journal.Match{Position: i, Entry: entry})
	}
	return matches
}

func writeJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// readSecret returns the first line of the command's stdin.
func readSecret(cmd *cobra.Command) (string, error) {
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
