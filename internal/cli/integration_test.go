package cli

import (
	"context"
	"testing"

	"github.com/faizmokh/jurnal/internal/version"
)

func TestCLIWorkflowEndToEnd(t *testing.T) {
	ctx := context.Background()
	app := newTestApp(t)

	run := func(args ...string) string {
		t.Helper()
		return executeCommand(t, NewRootCommand(ctx, app), args...)
	}

	// 1. Two people add entries.
	out := run("--as", "jisoo", "add", "--date", "2025-03-04", "--equipment", "press-2", "Replaced", "seal")
	assertContains(t, out, "Added #1")
	out = run("--as", "minji", "add", "--date", "2025-03-05", "--note", "ok", "Checked", "pressure")
	assertContains(t, out, "Added #2")

	// 2. List shows both.
	out = run("list")
	assertContains(t, out, "Replaced seal")
	assertContains(t, out, "Checked pressure")

	// 3. Edit the first, then delete it by position.
	out = run("--as", "minji", "edit", "1", "--note", "follow up", "Replaced", "seal", "and", "gasket")
	assertContains(t, out, "Replaced seal and gasket (follow up)")
	out = run("--as", "minji", "delete", "1")
	assertContains(t, out, "Deleted #1")

	// 4. The remaining row is the second entry, unchanged.
	table := loadTable(t, app)
	if table.Len() != 1 {
		t.Fatalf("expected 1 entry after delete, got %d", table.Len())
	}
	last := table.Entries[0]
	if last.Author != "minji" || last.Content != "Checked pressure" || last.Note != "ok" {
		t.Fatalf("unexpected remaining entry: %#v", last)
	}

	// 5. Search across authors.
	out = run("search", "MINJI")
	assertContains(t, out, "Checked pressure")
}

func TestVersionCommand(t *testing.T) {
	out := executeCommand(t, newVersionCommand())
	assertContains(t, out, "jurnal "+version.Info())
}
