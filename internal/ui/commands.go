package ui

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/faizmokh/jurnal/internal/accounts"
	"github.com/faizmokh/jurnal/internal/files"
	"github.com/faizmokh/jurnal/internal/journal"
	"github.com/faizmokh/jurnal/internal/session"
	"github.com/faizmokh/jurnal/internal/store"
)

func (m Model) loginCmd(username, password string) tea.Cmd {
	creds := m.deps.Accounts
	ctx := m.ctx
	return func() tea.Msg {
		if creds == nil {
			sess, err := session.New(username)
			return loginResultMsg{sess: sess, err: err}
		}
		cred, err := creds.Authenticate(ctx, username, password)
		if err != nil {
			return loginResultMsg{err: err}
		}
		sess, err := session.NewForAccount(cred.Username, "")
		return loginResultMsg{sess: sess, err: err}
	}
}

func (m Model) signupCmd(username, password string) tea.Cmd {
	creds := m.deps.Accounts
	ctx := m.ctx
	return func() tea.Msg {
		if creds == nil {
			return loginResultMsg{err: fmt.Errorf("accounts are disabled")}
		}
		cred, err := creds.SignUp(ctx, accounts.Credential{Username: username}, password)
		if err != nil {
			return loginResultMsg{err: err}
		}
		sess, err := session.NewForAccount(cred.Username, "")
		return loginResultMsg{sess: sess, err: err}
	}
}

func (m Model) loadTableCmd() tea.Cmd {
	reader := m.deps.Reader
	ctx := m.ctx
	return func() tea.Msg {
		t, err := reader.Table(ctx)
		return tableLoadedMsg{table: t, err: err}
	}
}

func (m Model) appendCmd(entry journal.Entry) tea.Cmd {
	writer := m.deps.Writer
	ctx := m.ctx
	sess := m.sess
	snapshot := m.sheet
	return func() tea.Msg {
		next, added, err := writer.Append(ctx, sess, snapshot, entry)
		return mutationResultMsg{verb: "Add", table: next, entry: added, err: err}
	}
}

func (m Model) editCmd(id string, patch journal.Patch) tea.Cmd {
	writer := m.deps.Writer
	ctx := m.ctx
	sess := m.sess
	snapshot := m.sheet
	return func() tea.Msg {
		next, updated, err := writer.Edit(ctx, sess, snapshot, journal.IDRef(id), patch)
		return mutationResultMsg{verb: "Edit", table: next, entry: updated, err: err}
	}
}

func (m Model) deleteCmd(id string) tea.Cmd {
	writer := m.deps.Writer
	ctx := m.ctx
	sess := m.sess
	snapshot := m.sheet
	return func() tea.Msg {
		next, removed, err := writer.Delete(ctx, sess, snapshot, journal.IDRef(id))
		return mutationResultMsg{verb: "Delete", table: next, entry: removed, err: err}
	}
}

func (m Model) exportCmd(path string) tea.Cmd {
	manager := m.deps.Manager
	snapshot := m.sheet
	return func() tea.Msg {
		expanded, err := files.ExpandHome(path)
		if err != nil {
			return exportResultMsg{err: err}
		}
		if err := manager.EnsureDir(expanded); err != nil {
			return exportResultMsg{err: err}
		}
		f, err := os.Create(expanded)
		if err != nil {
			return exportResultMsg{err: fmt.Errorf("create export: %w", err)}
		}
		if err := journal.Export(f, snapshot); err != nil {
			f.Close()
			return exportResultMsg{err: err}
		}
		if err := f.Close(); err != nil {
			return exportResultMsg{err: fmt.Errorf("close export: %w", err)}
		}
		return exportResultMsg{path: expanded, rows: snapshot.Len()}
	}
}

func startWatchCmd(ctx context.Context, manager *files.Manager, path string) tea.Cmd {
	return func() tea.Msg {
		if err := manager.EnsureDir(path); err != nil {
			return watchStartedMsg{err: err}
		}
		changes, err := store.Watch(ctx, path)
		return watchStartedMsg{changes: changes, err: err}
	}
}

// waitForChange blocks until the watched sheet changes. A closed channel
// yields no message.
func waitForChange(changes <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-changes; !ok {
			return nil
		}
		return sheetChangedMsg{changes: changes}
	}
}
