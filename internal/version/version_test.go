package version

import (
	"strings"
	"testing"
)

func TestInfoUsesLinkerValues(t *testing.T) {
	oldVersion, oldCommit, oldDate := Version, Commit, Date
	t.Cleanup(func() { Version, Commit, Date = oldVersion, oldCommit, oldDate })

	Version, Commit, Date = "v1.2.0", "0123456789abcdef", "2025-03-04"
	got := Info()
	if got != "v1.2.0 (commit 0123456789ab, built 2025-03-04)" {
		t.Fatalf("Info() = %q", got)
	}
}

func TestInfoDevBuild(t *testing.T) {
	if got := Info(); !strings.Contains(got, "(commit ") {
		t.Fatalf("Info() = %q", got)
	}
}
