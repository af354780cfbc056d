package ui

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/faizmokh/jurnal/internal/files"
	"github.com/faizmokh/jurnal/internal/journal"
	"github.com/faizmokh/jurnal/internal/session"
	"github.com/faizmokh/jurnal/internal/store"
)

func newTestDeps(t *testing.T) Deps {
	t.Helper()
	mgr, err := files.NewManager(t.TempDir())
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	adapter := journal.NewAdapter(store.NewFileStore(mgr, nil), "data", journal.OrderInsertion, nil)
	return Deps{
		Reader:      journal.NewReader(adapter),
		Writer:      journal.NewWriter(adapter, nil, nil),
		Manager:     mgr,
		Resource:    "data",
		DefaultName: "minji",
	}
}

func seed(t *testing.T, deps Deps, contents ...string) {
	t.Helper()
	ctx := context.Background()
	sess, err := session.New("seed")
	if err != nil {
		t.Fatalf("session.New: %v", err)
	}
	snapshot, err := deps.Reader.Table(ctx)
	if err != nil {
		t.Fatalf("Table: %v", err)
	}
	for _, content := range contents {
		snapshot, _, err = deps.Writer.Append(ctx, sess, snapshot, journal.Entry{Content: content})
		if err != nil {
			t.Fatalf("Append: %v", err)
		}
	}
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	model, ok := next.(Model)
	if !ok {
		t.Fatalf("Update returned %T", next)
	}
	return model, cmd
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func signedIn(t *testing.T, deps Deps) Model {
	t.Helper()
	m := NewModel(context.Background(), deps)
	m, _ = update(t, m, m.loginCmd("minji", "")())
	m, _ = update(t, m, m.loadTableCmd()())
	return m
}

func TestLoginRequiresName(t *testing.T) {
	deps := newTestDeps(t)
	deps.DefaultName = ""
	m := NewModel(context.Background(), deps)

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if cmd != nil {
		t.Fatalf("expected no command for empty name")
	}
	if m.mode != modeLogin || m.errorLine != "Name cannot be empty." {
		t.Fatalf("mode = %v, errorLine = %q", m.mode, m.errorLine)
	}
}

func TestLoginLoadsSheet(t *testing.T) {
	deps := newTestDeps(t)
	seed(t, deps, "Replaced pump seal", "Calibrated sensor")

	m := signedIn(t, deps)
	if m.mode != modeNormal {
		t.Fatalf("mode = %v, want modeNormal", m.mode)
	}
	if m.sess == nil || m.sess.DisplayName != "minji" {
		t.Fatalf("unexpected session: %#v", m.sess)
	}
	if len(m.visible) != 2 {
		t.Fatalf("visible = %d, want 2", len(m.visible))
	}
	view := m.View()
	if !strings.Contains(view, "Replaced pump seal") || !strings.Contains(view, "signed in as minji") {
		t.Fatalf("unexpected view:\n%s", view)
	}
}

func TestAddFromForm(t *testing.T) {
	deps := newTestDeps(t)
	m := signedIn(t, deps)

	m, _ = update(t, m, keyRunes("a"))
	if m.mode != modeAdd {
		t.Fatalf("mode = %v, want modeAdd", m.mode)
	}
	m.form.content.SetValue("Fixed conveyor belt")

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})
	if cmd == nil {
		t.Fatalf("expected save command")
	}
	m, _ = update(t, m, cmd())

	if m.errorLine != "" {
		t.Fatalf("unexpected error: %s", m.errorLine)
	}
	if m.sheet.Len() != 1 || m.sheet.Entries[0].Author != "minji" {
		t.Fatalf("unexpected sheet: %#v", m.sheet.Entries)
	}

	stored, err := deps.Reader.Table(context.Background())
	if err != nil {
		t.Fatalf("Table: %v", err)
	}
	if stored.Len() != 1 || stored.Entries[0].Content != "Fixed conveyor belt" {
		t.Fatalf("store not updated: %#v", stored.Entries)
	}
	if stored.Entries[0].Date != time.Now().Format(journal.DateLayout) {
		t.Fatalf("date = %q, want today", stored.Entries[0].Date)
	}
}

func TestAddRejectsBadDate(t *testing.T) {
	m := signedIn(t, newTestDeps(t))

	m, _ = update(t, m, keyRunes("a"))
	m.form.content.SetValue("text")
	m.form.inputs[fieldDate].SetValue("03/04/25")

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})
	if cmd != nil {
		t.Fatalf("expected no command for invalid date")
	}
	if m.mode != modeAdd || !strings.Contains(m.errorLine, "Invalid date") {
		t.Fatalf("mode = %v, errorLine = %q", m.mode, m.errorLine)
	}
}

func TestEditAfterOutsideWriteReloads(t *testing.T) {
	deps := newTestDeps(t)
	seed(t, deps, "first")
	m := signedIn(t, deps)

	// Someone else writes after the TUI loaded.
	seed(t, deps, "second")

	m, _ = update(t, m, keyRunes("e"))
	if m.mode != modeEdit {
		t.Fatalf("mode = %v, want modeEdit", m.mode)
	}
	m.form.content.SetValue("first revised")
	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})
	msg := cmd()
	result, ok := msg.(mutationResultMsg)
	if !ok || !errors.Is(result.err, store.ErrConflict) {
		t.Fatalf("expected conflict, got %#v", msg)
	}

	m, cmd = update(t, m, msg)
	if !strings.Contains(m.errorLine, "changed since it was loaded") {
		t.Fatalf("errorLine = %q", m.errorLine)
	}
	m, _ = update(t, m, cmd())
	if len(m.visible) != 2 {
		t.Fatalf("visible after reload = %d, want 2", len(m.visible))
	}

	// The retry on the fresh snapshot succeeds.
	m, _ = update(t, m, keyRunes("e"))
	m.form.content.SetValue("first revised")
	m, cmd = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})
	m, _ = update(t, m, cmd())
	if m.errorLine != "" || m.sheet.Entries[0].Content != "first revised" {
		t.Fatalf("retry failed: %q %#v", m.errorLine, m.sheet.Entries)
	}
}

func TestEditWithoutChanges(t *testing.T) {
	deps := newTestDeps(t)
	seed(t, deps, "first")
	m := signedIn(t, deps)

	m, _ = update(t, m, keyRunes("e"))
	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})
	if cmd != nil {
		t.Fatalf("expected no command for unchanged entry")
	}
	if m.mode != modeNormal || m.statusLine != "Nothing changed." {
		t.Fatalf("mode = %v, statusLine = %q", m.mode, m.statusLine)
	}
}

func TestDeleteNeedsConfirmation(t *testing.T) {
	deps := newTestDeps(t)
	seed(t, deps, "first", "second")
	m := signedIn(t, deps)

	m, _ = update(t, m, keyRunes("d"))
	m, cmd := update(t, m, keyRunes("n"))
	if cmd != nil || m.mode != modeNormal {
		t.Fatalf("cancel should not delete")
	}

	m, _ = update(t, m, keyRunes("d"))
	m, cmd = update(t, m, keyRunes("y"))
	m, _ = update(t, m, cmd())

	if m.sheet.Len() != 1 || m.sheet.Entries[0].Content != "second" {
		t.Fatalf("unexpected sheet after delete: %#v", m.sheet.Entries)
	}
}

func TestSearchFiltersRows(t *testing.T) {
	deps := newTestDeps(t)
	seed(t, deps, "Replaced PUMP seal", "Painted rails", "pump vibration check")
	m := signedIn(t, deps)

	m, _ = update(t, m, keyRunes("/"))
	m.prompt.SetValue("pump")
	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m, _ = update(t, m, cmd())

	if len(m.visible) != 2 {
		t.Fatalf("visible = %d, want 2", len(m.visible))
	}
	if m.visible[1].Position != 2 {
		t.Fatalf("position = %d, want 2", m.visible[1].Position)
	}

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.searchTerm != "" || len(m.visible) != 3 {
		t.Fatalf("esc should clear the filter, visible = %d", len(m.visible))
	}
}

func TestExportWritesFile(t *testing.T) {
	deps := newTestDeps(t)
	seed(t, deps, "first")
	m := signedIn(t, deps)

	target := filepath.Join(t.TempDir(), "nested", "out.csv")
	m, _ = update(t, m, keyRunes("x"))
	if !strings.HasPrefix(m.prompt.Value(), deps.Manager.ExportsDir()) {
		t.Fatalf("default export path = %q", m.prompt.Value())
	}
	m.prompt.SetValue(target)
	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m, _ = update(t, m, cmd())

	if !strings.Contains(m.statusLine, "Exported 1 entry") {
		t.Fatalf("statusLine = %q", m.statusLine)
	}
	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF}) {
		t.Fatalf("export missing BOM")
	}
}

func TestLogoutEndsSession(t *testing.T) {
	m := signedIn(t, newTestDeps(t))
	sess := m.sess

	m, _ = update(t, m, keyRunes("L"))
	if m.mode != modeLogin || m.sess != nil {
		t.Fatalf("expected login screen after logout")
	}
	if err := sess.Check(); !errors.Is(err, session.ErrEnded) {
		t.Fatalf("Check() = %v, want ErrEnded", err)
	}

	// Late results from the old session are ignored.
	m, _ = update(t, m, tableLoadedMsg{table: journal.NewTable(journal.OrderInsertion)})
	if m.mode != modeLogin {
		t.Fatalf("late load changed mode to %v", m.mode)
	}
}

func TestSheetChangedFromStaleWatchIgnored(t *testing.T) {
	m := signedIn(t, newTestDeps(t))

	stale := make(chan struct{})
	_, cmd := update(t, m, sheetChangedMsg{changes: stale})
	if cmd != nil {
		t.Fatalf("expected stale watch signal to be ignored")
	}
}

func TestWatchReloadsOnOutsideWrite(t *testing.T) {
	deps := newTestDeps(t)
	path, err := deps.Manager.SheetPath("data")
	if err != nil {
		t.Fatalf("SheetPath: %v", err)
	}
	deps.WatchPath = path

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := signedIn(t, deps)
	m, wait := update(t, m, startWatchCmd(ctx, deps.Manager, path)())
	if wait == nil {
		t.Fatalf("expected a wait command once watching")
	}

	seed(t, deps, "written elsewhere")

	got := make(chan tea.Msg, 1)
	go func() { got <- wait() }()
	select {
	case msg := <-got:
		m, cmd := update(t, m, msg)
		if cmd == nil || !m.loading {
			t.Fatalf("expected reload after change")
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("timed out waiting for change notification")
	}
}
