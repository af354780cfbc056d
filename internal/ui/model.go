package ui

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/faizmokh/jurnal/internal/accounts"
	"github.com/faizmokh/jurnal/internal/files"
	"github.com/faizmokh/jurnal/internal/journal"
	"github.com/faizmokh/jurnal/internal/logging"
	"github.com/faizmokh/jurnal/internal/session"
	"github.com/faizmokh/jurnal/internal/store"
)

// Deps are the collaborators the TUI drives.
type Deps struct {
	Reader *journal.Reader
	Writer *journal.Writer
	// Accounts is nil when logins are name-only.
	Accounts    *accounts.Store
	Manager     *files.Manager
	Resource    string
	Equipment   []string
	DefaultName string
	// WatchPath is the sheet file to watch for outside edits, if any.
	WatchPath string
	Logger    *log.Logger
}

// Model owns Bubble Tea state for the main TUI experience.
type Model struct {
	ctx    context.Context
	deps   Deps
	logger *log.Logger

	sess      *session.Session
	stopWatch context.CancelFunc
	changes   <-chan struct{}

	sheet   journal.Table
	visible []journal.Match
	grid    table.Model

	mode       mode
	login      loginForm
	form       entryForm
	prompt     textinput.Model
	searchTerm string
	pendingID  string
	width      int

	loading    bool
	statusLine string
	errorLine  string
}

type mode uint8

const (
	modeLogin mode = iota
	modeNormal
	modeAdd
	modeEdit
	modeConfirmDelete
	modeSearch
	modeExport
)

type loginResultMsg struct {
	sess *session.Session
	err  error
}

type tableLoadedMsg struct {
	table journal.Table
	err   error
}

type mutationResultMsg struct {
	verb  string
	table journal.Table
	entry journal.Entry
	err   error
}

type exportResultMsg struct {
	path string
	rows int
	err  error
}

type watchStartedMsg struct {
	changes <-chan struct{}
	err     error
}

type sheetChangedMsg struct {
	changes <-chan struct{}
}

// NewModel seeds a Bubble Tea model with required collaborators. The model
// starts on the login screen.
func NewModel(ctx context.Context, deps Deps) Model {
	return Model{
		ctx:        ctx,
		deps:       deps,
		logger:     logging.OrDiscard(deps.Logger),
		grid:       newGrid(),
		mode:       modeLogin,
		login:      newLoginForm(deps.DefaultName, deps.Accounts != nil),
		statusLine: "Sign in to open the journal.",
	}
}

// Init starts the login field's cursor.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update wires TUI state transitions from user input and async commands.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.grid.SetHeight(max(5, msg.Height-14))
		m.form.resize(msg.Width)
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	case loginResultMsg:
		return m.handleLoginResult(msg)
	case tableLoadedMsg:
		return m.handleTableLoaded(msg)
	case mutationResultMsg:
		return m.handleMutationResult(msg)
	case exportResultMsg:
		return m.handleExportResult(msg)
	case watchStartedMsg:
		return m.handleWatchStarted(msg)
	case sheetChangedMsg:
		return m.handleSheetChanged(msg)
	default:
		return m.updateInputs(msg)
	}
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		m.stopWatching()
		return m, tea.Quit
	}

	switch m.mode {
	case modeLogin:
		return m.handleLoginKey(msg)
	case modeAdd, modeEdit:
		return m.handleFormKey(msg)
	case modeConfirmDelete:
		return m.handleConfirmKey(msg)
	case modeSearch, modeExport:
		return m.handlePromptKey(msg)
	}

	switch msg.String() {
	case "q":
		m.stopWatching()
		return m, tea.Quit
	case "r":
		return m.reload("Refreshing...")
	case "a":
		return m.beginAdd()
	case "e", "enter":
		return m.beginEdit()
	case "d":
		return m.beginDelete()
	case "/":
		return m.beginSearch()
	case "esc":
		if m.searchTerm != "" {
			m.searchTerm = ""
			m.refreshGrid()
			m.statusLine = "Search cleared."
			m.errorLine = ""
		}
		return m, nil
	case "x":
		return m.beginExport()
	case "L":
		return m.logout()
	}

	var cmd tea.Cmd
	m.grid, cmd = m.grid.Update(msg)
	return m, cmd
}

func (m Model) handleLoginKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyTab, tea.KeyShiftTab, tea.KeyUp, tea.KeyDown:
		return m, m.login.toggleFocus()
	case tea.KeyEnter:
		if m.login.withPassword && m.login.focus == 0 {
			return m, m.login.toggleFocus()
		}
		return m.submitLogin(false)
	case tea.KeyCtrlN:
		if m.login.withPassword {
			return m.submitLogin(true)
		}
		return m, nil
	case tea.KeyEsc:
		m.stopWatching()
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.login, cmd = m.login.update(msg)
	return m, cmd
}

func (m Model) submitLogin(signup bool) (tea.Model, tea.Cmd) {
	username, password := m.login.values()
	if username == "" {
		m.errorLine = "Name cannot be empty."
		return m, nil
	}
	if m.login.withPassword && password == "" {
		m.errorLine = "Password cannot be empty."
		return m, nil
	}

	m.errorLine = ""
	if signup {
		m.statusLine = "Creating account..."
		return m, m.signupCmd(username, password)
	}
	m.statusLine = "Signing in..."
	return m, m.loginCmd(username, password)
}

func (m Model) handleLoginResult(msg loginResultMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.errorLine = fmt.Sprintf("Sign-in failed: %v", msg.err)
		m.statusLine = ""
		return m, nil
	}

	m.sess = msg.sess
	m.mode = modeNormal
	m.sheet = journal.Table{}
	m.searchTerm = ""
	m.refreshGrid()
	m.grid.Focus()
	m.loading = true
	m.errorLine = ""
	m.statusLine = fmt.Sprintf("Signed in as %s. Loading...", msg.sess.DisplayName)
	m.logger.Debug("session started", "session", msg.sess.ID, "actor", msg.sess.DisplayName)

	cmds := []tea.Cmd{m.loadTableCmd()}
	if m.deps.WatchPath != "" {
		watchCtx, cancel := context.WithCancel(m.ctx)
		m.stopWatch = cancel
		cmds = append(cmds, startWatchCmd(watchCtx, m.deps.Manager, m.deps.WatchPath))
	}
	return m, tea.Batch(cmds...)
}

func (m Model) logout() (tea.Model, tea.Cmd) {
	if m.sess != nil {
		m.logger.Debug("session ended", "session", m.sess.ID)
		m.sess.End()
	}
	m.stopWatching()
	m.sess = nil
	m.sheet = journal.Table{}
	m.searchTerm = ""
	m.refreshGrid()
	m.mode = modeLogin
	m.login = newLoginForm(m.deps.DefaultName, m.deps.Accounts != nil)
	m.loading = false
	m.errorLine = ""
	m.statusLine = "Logged out."
	return m, textinput.Blink
}

func (m *Model) stopWatching() {
	if m.stopWatch != nil {
		m.stopWatch()
		m.stopWatch = nil
	}
	m.changes = nil
}

func (m Model) beginAdd() (tea.Model, tea.Cmd) {
	m.mode = modeAdd
	m.form = newEntryForm(journal.Entry{Date: time.Now().Format(journal.DateLayout)}, m.width)
	m.statusLine = ""
	m.errorLine = ""
	return m, m.form.setFocus(fieldContent)
}

func (m Model) beginEdit() (tea.Model, tea.Cmd) {
	entry, ok := m.selected()
	if !ok {
		return m, nil
	}

	m.mode = modeEdit
	m.form = newEntryForm(entry, m.width)
	m.form.original = entry
	m.statusLine = ""
	m.errorLine = ""
	return m, m.form.setFocus(fieldContent)
}

func (m Model) handleFormKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		return m.cancelInput("Cancelled.")
	case tea.KeyCtrlS:
		return m.submitForm()
	case tea.KeyTab:
		return m, m.form.setFocus((m.form.focus + 1) % fieldCount)
	case tea.KeyShiftTab:
		return m, m.form.setFocus((m.form.focus + fieldCount - 1) % fieldCount)
	case tea.KeyEnter:
		if m.form.focus != fieldContent {
			return m, m.form.setFocus((m.form.focus + 1) % fieldCount)
		}
	}

	var cmd tea.Cmd
	m.form, cmd = m.form.update(msg)
	return m, cmd
}

func (m Model) submitForm() (tea.Model, tea.Cmd) {
	entry := m.form.entry()
	if strings.TrimSpace(entry.Content) == "" {
		m.errorLine = "Content cannot be empty."
		return m, nil
	}
	if entry.Date != "" {
		if _, err := time.Parse(journal.DateLayout, entry.Date); err != nil {
			m.errorLine = fmt.Sprintf("Invalid date %q (expected YYYY-MM-DD)", entry.Date)
			return m, nil
		}
	}

	switch m.mode {
	case modeAdd:
		cmd := m.appendCmd(entry)
		m.mode = modeNormal
		m.statusLine = "Saving entry..."
		m.errorLine = ""
		return m, cmd
	case modeEdit:
		patch := diffPatch(m.form.original, entry)
		if patch.Empty() {
			return m.cancelInput("Nothing changed.")
		}
		cmd := m.editCmd(m.form.original.ID, patch)
		m.mode = modeNormal
		m.statusLine = "Updating entry..."
		m.errorLine = ""
		return m, cmd
	default:
		return m, nil
	}
}

func (m Model) beginDelete() (tea.Model, tea.Cmd) {
	entry, ok := m.selected()
	if !ok {
		return m, nil
	}
	m.mode = modeConfirmDelete
	m.pendingID = entry.ID
	m.statusLine = ""
	m.errorLine = ""
	return m, nil
}

func (m Model) handleConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		id := m.pendingID
		m.pendingID = ""
		m.mode = modeNormal
		m.statusLine = "Deleting entry..."
		m.errorLine = ""
		return m, m.deleteCmd(id)
	case "n", "N", "esc":
		m.pendingID = ""
		return m.cancelInput("Delete cancelled.")
	}
	return m, nil
}

func (m Model) beginSearch() (tea.Model, tea.Cmd) {
	m.mode = modeSearch
	m.prompt = newPrompt("search: ", m.searchTerm)
	m.statusLine = ""
	m.errorLine = ""
	return m, m.prompt.Focus()
}

func (m Model) beginExport() (tea.Model, tea.Cmd) {
	suggested := m.deps.Manager.ExportName(m.deps.Resource, time.Now())
	m.mode = modeExport
	m.prompt = newPrompt("export to: ", filepath.Join(m.deps.Manager.ExportsDir(), suggested))
	m.statusLine = ""
	m.errorLine = ""
	return m, m.prompt.Focus()
}

func (m Model) handlePromptKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		return m.cancelInput("Cancelled.")
	case tea.KeyEnter:
		value := strings.TrimSpace(m.prompt.Value())
		if m.mode == modeSearch {
			m.mode = modeNormal
			m.searchTerm = value
			return m.reload(fmt.Sprintf("Searching for %q...", value))
		}
		if value == "" {
			m.errorLine = "Export path cannot be empty."
			return m, nil
		}
		m.mode = modeNormal
		m.statusLine = "Exporting..."
		m.errorLine = ""
		return m, m.exportCmd(value)
	}

	var cmd tea.Cmd
	m.prompt, cmd = m.prompt.Update(msg)
	return m, cmd
}

func (m Model) cancelInput(message string) (tea.Model, tea.Cmd) {
	m.mode = modeNormal
	m.form = entryForm{}
	m.prompt.Blur()
	if message != "" {
		m.statusLine = message
	}
	m.errorLine = ""
	return m, nil
}

func (m Model) updateInputs(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.mode {
	case modeLogin:
		m.login, cmd = m.login.update(msg)
	case modeAdd, modeEdit:
		m.form, cmd = m.form.update(msg)
	case modeSearch, modeExport:
		m.prompt, cmd = m.prompt.Update(msg)
	}
	return m, cmd
}

func (m Model) reload(status string) (tea.Model, tea.Cmd) {
	m.loading = true
	m.statusLine = status
	m.errorLine = ""
	return m, m.loadTableCmd()
}

func (m Model) handleTableLoaded(msg tableLoadedMsg) (tea.Model, tea.Cmd) {
	if m.sess == nil {
		return m, nil
	}
	m.loading = false
	if msg.err != nil {
		m.errorLine = fmt.Sprintf("Failed to load %s: %v", m.deps.Resource, msg.err)
		m.statusLine = ""
		return m, nil
	}

	m.sheet = msg.table
	m.refreshGrid()
	if m.searchTerm != "" {
		m.statusLine = fmt.Sprintf("%d match%s for %q.", len(m.visible), pluralES(len(m.visible)), m.searchTerm)
	} else if m.sheet.Len() == 0 {
		m.statusLine = "No entries yet. Press a to add one."
	} else {
		m.statusLine = fmt.Sprintf("Loaded %d entr%s.", m.sheet.Len(), plural(m.sheet.Len()))
	}
	return m, nil
}

func (m Model) handleMutationResult(msg mutationResultMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		if errors.Is(msg.err, store.ErrConflict) {
			m.errorLine = "The journal changed since it was loaded. Reloaded; please try again."
			m.statusLine = ""
			m.loading = true
			return m, m.loadTableCmd()
		}
		m.errorLine = fmt.Sprintf("%s failed: %v", msg.verb, msg.err)
		m.statusLine = ""
		return m, nil
	}

	m.sheet = msg.table
	if msg.verb != "Delete" {
		m.pendingID = msg.entry.ID
	}
	m.refreshGrid()
	m.errorLine = ""
	m.statusLine = fmt.Sprintf("%s entry %s.", pastTense(msg.verb), shortID(msg.entry.ID))
	return m, nil
}

func (m Model) handleExportResult(msg exportResultMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.errorLine = fmt.Sprintf("Export failed: %v", msg.err)
		m.statusLine = ""
		return m, nil
	}
	m.errorLine = ""
	m.statusLine = fmt.Sprintf("Exported %d entr%s to %s.", msg.rows, plural(msg.rows), msg.path)
	return m, nil
}

func (m Model) handleWatchStarted(msg watchStartedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.logger.Warn("watching sheet failed", "path", m.deps.WatchPath, "err", msg.err)
		return m, nil
	}
	if m.sess == nil {
		return m, nil
	}
	m.changes = msg.changes
	return m, waitForChange(msg.changes)
}

func (m Model) handleSheetChanged(msg sheetChangedMsg) (tea.Model, tea.Cmd) {
	if m.sess == nil || msg.changes != m.changes {
		return m, nil
	}
	next := waitForChange(msg.changes)
	if m.loading {
		return m, next
	}
	m.loading = true
	return m, tea.Batch(m.loadTableCmd(), next)
}

func (m Model) selected() (journal.Entry, bool) {
	i := m.grid.Cursor()
	if i < 0 || i >= len(m.visible) {
		return journal.Entry{}, false
	}
	return m.visible[i].Entry, true
}

// refreshGrid rebuilds the visible rows from the snapshot and the active
// search, keeping the cursor on pendingID when it is set.
func (m *Model) refreshGrid() {
	if m.searchTerm != "" {
		m.visible = m.sheet.Search(m.searchTerm)
	} else {
		m.visible = make([]journal.Match, 0, m.sheet.Len())
		for i, entry := range m.sheet.Entries {
			m.visible = append(m.visible, journal.Match{Position: i, Entry: entry})
		}
	}

	rows := make([]table.Row, 0, len(m.visible))
	for _, match := range m.visible {
		rows = append(rows, entryRow(match))
	}
	m.grid.SetRows(rows)

	cursor := m.grid.Cursor()
	if m.pendingID != "" {
		for i, match := range m.visible {
			if match.Entry.ID == m.pendingID {
				cursor = i
				break
			}
		}
		m.pendingID = ""
	}
	if cursor >= len(rows) {
		cursor = len(rows) - 1
	}
	if cursor < 0 {
		cursor = 0
	}
	m.grid.SetCursor(cursor)
}

func diffPatch(original, edited journal.Entry) journal.Patch {
	var patch journal.Patch
	set := func(target **string, before, after string) {
		if before != after {
			value := after
			*target = &value
		}
	}
	set(&patch.Date, original.Date, edited.Date)
	set(&patch.Equipment, original.Equipment, edited.Equipment)
	set(&patch.Author, original.Author, edited.Author)
	set(&patch.Content, original.Content, edited.Content)
	set(&patch.Note, original.Note, edited.Note)
	set(&patch.Attachment, original.Attachment, edited.Attachment)
	return patch
}

func pastTense(verb string) string {
	switch verb {
	case "Add":
		return "Added"
	case "Edit":
		return "Updated"
	case "Delete":
		return "Deleted"
	default:
		return verb
	}
}

func plural(count int) string {
	if count == 1 {
		return "y"
	}
	return "ies"
}

func pluralES(count int) string {
	if count == 1 {
		return ""
	}
	return "es"
}
