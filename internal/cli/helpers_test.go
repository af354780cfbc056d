package cli

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/faizmokh/jurnal/internal/config"
	"github.com/faizmokh/jurnal/internal/files"
	"github.com/faizmokh/jurnal/internal/journal"
)

func executeCommand(t *testing.T, cmd *cobra.Command, args ...string) string {
	t.Helper()
	out, err := executeCommandErr(cmd, args...)
	if err != nil {
		t.Fatalf("cmd.Execute(%q): %v\n%s", args, err, out)
	}
	return out
}

func executeCommandErr(cmd *cobra.Command, args ...string) (string, error) {
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func assertContains(t *testing.T, output, want string) {
	t.Helper()
	if !strings.Contains(output, want) {
		t.Fatalf("output %q missing substring %q", output, want)
	}
}

func assertNotContains(t *testing.T, output, want string) {
	t.Helper()
	if strings.Contains(output, want) {
		t.Fatalf("output %q unexpectedly contained substring %q", output, want)
	}
}

func newTempManager(t *testing.T) *files.Manager {
	t.Helper()
	base := t.TempDir()
	mgr, err := files.NewManager(base)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	return mgr
}

// newTestApp returns an App acting as "minji" over a fresh jurnal home.
func newTestApp(t *testing.T) *App {
	t.Helper()
	app := NewApp(newTempManager(t), io.Discard)
	app.as = "minji"
	t.Cleanup(func() { app.Close() })
	return app
}

func writeConfig(t *testing.T, app *App, cfg config.Config) {
	t.Helper()
	if err := config.Save(app.Manager().ConfigPath(), cfg); err != nil {
		t.Fatalf("config.Save: %v", err)
	}
}

func loadTable(t *testing.T, app *App) journal.Table {
	t.Helper()
	reader, err := app.Reader()
	if err != nil {
		t.Fatalf("Reader: %v", err)
	}
	table, err := reader.Table(context.Background())
	if err != nil {
		t.Fatalf("Table: %v", err)
	}
	return table
}
