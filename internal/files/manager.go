package files

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	dirPermissions = 0o755

	sheetsDirName  = "sheets"
	sheetExt       = ".csv"
	configFileName = "config.yaml"
	accountsDBName = "accounts.db"
	sheetsDBName   = "jurnal.db"
	logFileName    = "jurnal.log"
	exportsDirName = "exports"
)

// ErrInvalidResource is returned for sheet names that would escape the sheets directory.
var ErrInvalidResource = errors.New("invalid resource name")

// Manager centralizes where jurnal keeps its files and how they are named.
type Manager struct {
	basePath string
}

// NewManager constructs a Manager rooted at the provided directory. If basePath
// is empty, it falls back to ~/.jurnal (or another location determined by
// ResolveBasePath).
func NewManager(basePath string) (*Manager, error) {
	var err error
	if basePath == "" {
		basePath, err = ResolveBasePath()
		if err != nil {
			return nil, err
		}
	}
	abs, err := filepath.Abs(basePath)
	if err != nil {
		return nil, err
	}

	return &Manager{basePath: abs}, nil
}

// BasePath returns the root directory storing all jurnal files.
func (m *Manager) BasePath() string {
	return m.basePath
}

// ConfigPath is where config.yaml is looked up.
func (m *Manager) ConfigPath() string {
	return filepath.Join(m.basePath, configFileName)
}

// AccountsPath is the default SQLite database for credentials.
func (m *Manager) AccountsPath() string {
	return filepath.Join(m.basePath, accountsDBName)
}

// SheetsDBPath is the default SQLite database for the sqlite record store.
func (m *Manager) SheetsDBPath() string {
	return filepath.Join(m.basePath, sheetsDBName)
}

// LogPath is where the TUI sends log output while it owns the terminal.
func (m *Manager) LogPath() string {
	return filepath.Join(m.basePath, logFileName)
}

// ExportsDir is the default destination for exports started from the TUI.
func (m *Manager) ExportsDir() string {
	return filepath.Join(m.basePath, exportsDirName)
}

// SheetPath resolves the CSV file backing a named resource. The file may not
// exist yet; callers decide whether that is an error.
func (m *Manager) SheetPath(resource string) (string, error) {
	if err := ValidateResource(resource); err != nil {
		return "", err
	}
	return filepath.Join(m.basePath, sheetsDirName, resource+sheetExt), nil
}

// EnsureDir guarantees the directory holding path exists.
func (m *Manager) EnsureDir(path string) error {
	if m == nil {
		return errors.New("files.Manager is nil")
	}
	if err := os.MkdirAll(filepath.Dir(path), dirPermissions); err != nil {
		return fmt.Errorf("create directories: %w", err)
	}
	return nil
}

// ExportName suggests a file name for an export taken at t.
func (m *Manager) ExportName(resource string, t time.Time) string {
	return fmt.Sprintf("%s-%04d%02d%02d.csv", resource, t.Year(), t.Month(), t.Day())
}

// ValidateResource rejects empty names and names containing path elements.
func ValidateResource(resource string) error {
	name := strings.TrimSpace(resource)
	if name == "" || name != resource {
		return fmt.Errorf("%w: %q", ErrInvalidResource, resource)
	}
	if strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return fmt.Errorf("%w: %q", ErrInvalidResource, resource)
	}
	return nil
}
