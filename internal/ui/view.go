package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
)

var (
	accent = lipgloss.AdaptiveColor{Light: "#5A4FCF", Dark: "#9D8CFF"}

	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(accent)
	labelStyle  = lipgloss.NewStyle().Width(12).Foreground(lipgloss.Color("244"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	helpStyle   = lipgloss.NewStyle().Faint(true)
	detailStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Padding(0, 1)
)

func gridStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		Bold(true)
	styles.Selected = styles.Selected.
		Foreground(lipgloss.Color("230")).
		Background(accent).
		Bold(false)
	return styles
}

// View renders the frame.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("jurnal " + m.deps.Resource))
	if m.sess != nil {
		b.WriteString(statusStyle.Render("  signed in as " + m.sess.DisplayName))
	}
	b.WriteString("\n\n")

	switch m.mode {
	case modeLogin:
		b.WriteString(m.loginView())
	case modeAdd, modeEdit:
		b.WriteString(m.formView())
	default:
		b.WriteString(m.sheetView())
	}

	if m.errorLine != "" {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render("! " + m.errorLine))
		b.WriteByte('\n')
	} else if m.statusLine != "" {
		b.WriteString("\n")
		b.WriteString(statusStyle.Render(m.statusLine))
		b.WriteByte('\n')
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render(m.helpLine()))
	b.WriteByte('\n')
	return b.String()
}

func (m Model) loginView() string {
	var b strings.Builder
	name := "Name"
	if m.login.withPassword {
		name = "Username"
	}
	b.WriteString(labelStyle.Render(name))
	b.WriteString(m.login.username.View())
	b.WriteByte('\n')
	if m.login.withPassword {
		b.WriteString(labelStyle.Render("Password"))
		b.WriteString(m.login.password.View())
		b.WriteByte('\n')
	}
	return b.String()
}

func (m Model) formView() string {
	var b strings.Builder
	title := "New entry"
	if m.mode == modeEdit {
		title = "Edit entry " + shortID(m.form.original.ID)
	}
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n\n")

	for field := 0; field < fieldCount; field++ {
		b.WriteString(labelStyle.Render(fieldLabels[field]))
		if field == fieldContent {
			b.WriteByte('\n')
			b.WriteString(m.form.content.View())
		} else {
			b.WriteString(m.form.inputs[field].View())
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func (m Model) sheetView() string {
	var b strings.Builder

	if m.searchTerm != "" {
		b.WriteString(statusStyle.Render(fmt.Sprintf("filter: %q (esc to clear)", m.searchTerm)))
		b.WriteByte('\n')
	}

	if m.loading && len(m.visible) == 0 {
		b.WriteString("Loading...\n")
	} else if len(m.visible) == 0 {
		b.WriteString("(no entries)\n")
	} else {
		b.WriteString(m.grid.View())
		b.WriteByte('\n')
		if entry, ok := m.selected(); ok {
			b.WriteString(detailStyle.Render(detailText(entry.Content, entry.Note, entry.Attachment)))
			b.WriteByte('\n')
		}
	}

	switch m.mode {
	case modeConfirmDelete:
		if entry, ok := m.selected(); ok {
			b.WriteString("\n")
			b.WriteString(fmt.Sprintf("Delete %s %q? (y/n, Esc to cancel)", shortID(entry.ID), oneLine(entry.Content)))
			b.WriteByte('\n')
		}
	case modeSearch, modeExport:
		b.WriteString("\n")
		b.WriteString(m.prompt.View())
		b.WriteByte('\n')
	}
	return b.String()
}

func (m Model) helpLine() string {
	switch m.mode {
	case modeLogin:
		if m.login.withPassword {
			return "enter sign in  tab switch field  ctrl+n sign up  esc quit"
		}
		return "enter start  esc quit"
	case modeAdd, modeEdit:
		return "tab/shift+tab move  ctrl+s save  esc cancel"
	case modeSearch, modeExport:
		return "enter confirm  esc cancel"
	case modeConfirmDelete:
		return "y delete  n keep"
	default:
		return "j/k move  a add  e edit  d delete  / search  x export  r reload  L log out  q quit"
	}
}

func detailText(content, note, attachment string) string {
	parts := []string{content}
	if note != "" {
		parts = append(parts, "note: "+note)
	}
	if attachment != "" {
		parts = append(parts, "attachment: "+attachment)
	}
	return strings.Join(parts, "\n")
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func oneLine(value string) string {
	return strings.Join(strings.Fields(strings.ReplaceAll(value, "\n", " / ")), " ")
}
