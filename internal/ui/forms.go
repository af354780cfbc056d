package ui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/faizmokh/jurnal/internal/journal"
)

type loginForm struct {
	username     textinput.Model
	password     textinput.Model
	withPassword bool
	focus        int
}

func newLoginForm(defaultName string, withPassword bool) loginForm {
	username := textinput.New()
	username.Prompt = ""
	username.Placeholder = "name"
	username.CharLimit = 64
	username.SetValue(defaultName)
	username.Focus()

	password := textinput.New()
	password.Prompt = ""
	password.Placeholder = "password"
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'

	if withPassword {
		username.Placeholder = "username"
	}

	return loginForm{
		username:     username,
		password:     password,
		withPassword: withPassword,
	}
}

func (f *loginForm) toggleFocus() tea.Cmd {
	if !f.withPassword {
		return nil
	}
	if f.focus == 0 {
		f.focus = 1
		f.username.Blur()
		return f.password.Focus()
	}
	f.focus = 0
	f.password.Blur()
	return f.username.Focus()
}

func (f loginForm) values() (string, string) {
	return strings.TrimSpace(f.username.Value()), f.password.Value()
}

func (f loginForm) update(msg tea.Msg) (loginForm, tea.Cmd) {
	var cmd tea.Cmd
	if f.focus == 0 {
		f.username, cmd = f.username.Update(msg)
	} else {
		f.password, cmd = f.password.Update(msg)
	}
	return f, cmd
}

// Entry form fields in tab order.
const (
	fieldDate = iota
	fieldEquipment
	fieldContent
	fieldNote
	fieldAttachment
	fieldCount
)

var fieldLabels = [fieldCount]string{
	fieldDate:       "Date",
	fieldEquipment:  "Equipment",
	fieldContent:    "Content",
	fieldNote:       "Note",
	fieldAttachment: "Attachment",
}

// entryForm edits one entry. Content is multi-line and lives in a textarea;
// its slot in inputs is unused.
type entryForm struct {
	inputs   [fieldCount]textinput.Model
	content  textarea.Model
	focus    int
	original journal.Entry
	ready    bool
}

func newEntryForm(entry journal.Entry, width int) entryForm {
	var f entryForm
	values := [fieldCount]string{
		fieldDate:       entry.Date,
		fieldEquipment:  entry.Equipment,
		fieldNote:       entry.Note,
		fieldAttachment: entry.Attachment,
	}
	for i := range f.inputs {
		input := textinput.New()
		input.Prompt = ""
		input.SetValue(values[i])
		f.inputs[i] = input
	}
	f.inputs[fieldDate].Placeholder = journal.DateLayout
	f.inputs[fieldDate].CharLimit = len(journal.DateLayout)

	f.content = textarea.New()
	f.content.Placeholder = "What was done?"
	f.content.ShowLineNumbers = false
	f.content.SetHeight(4)
	f.content.SetValue(entry.Content)

	f.original = entry
	f.ready = true
	f.resize(width)
	return f
}

func (f *entryForm) resize(width int) {
	if !f.ready || width <= 0 {
		return
	}
	inner := max(20, width-16)
	f.content.SetWidth(inner)
	for i := range f.inputs {
		f.inputs[i].Width = inner
	}
}

func (f *entryForm) setFocus(field int) tea.Cmd {
	f.focus = field
	f.content.Blur()
	for i := range f.inputs {
		f.inputs[i].Blur()
	}
	if field == fieldContent {
		return f.content.Focus()
	}
	return f.inputs[field].Focus()
}

// entry returns the form values laid over the entry being edited.
func (f entryForm) entry() journal.Entry {
	e := f.original
	e.Date = strings.TrimSpace(f.inputs[fieldDate].Value())
	e.Equipment = strings.TrimSpace(f.inputs[fieldEquipment].Value())
	e.Content = f.content.Value()
	e.Note = f.inputs[fieldNote].Value()
	e.Attachment = strings.TrimSpace(f.inputs[fieldAttachment].Value())
	return e
}

func (f entryForm) update(msg tea.Msg) (entryForm, tea.Cmd) {
	if !f.ready {
		return f, nil
	}
	var cmd tea.Cmd
	if f.focus == fieldContent {
		f.content, cmd = f.content.Update(msg)
	} else {
		f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	}
	return f, cmd
}

func newPrompt(prompt, value string) textinput.Model {
	input := textinput.New()
	input.Prompt = prompt
	input.SetValue(value)
	input.CursorEnd()
	return input
}

func newGrid() table.Model {
	columns := []table.Column{
		{Title: "#", Width: 4},
		{Title: "ID", Width: 8},
		{Title: "Date", Width: 10},
		{Title: "Equipment", Width: 10},
		{Title: "Author", Width: 12},
		{Title: "Content", Width: 40},
		{Title: "Note", Width: 20},
	}
	grid := table.New(
		table.WithColumns(columns),
		table.WithHeight(12),
	)
	grid.SetStyles(gridStyles())
	return grid
}

func entryRow(match journal.Match) table.Row {
	e := match.Entry
	return table.Row{
		strconv.Itoa(match.Position + 1),
		shortID(e.ID),
		e.Date,
		e.Equipment,
		e.Author,
		oneLine(e.Content),
		oneLine(e.Note),
	}
}
