package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/faizmokh/jurnal/internal/accounts"
	"github.com/faizmokh/jurnal/internal/config"
	"github.com/faizmokh/jurnal/internal/files"
	"github.com/faizmokh/jurnal/internal/journal"
	"github.com/faizmokh/jurnal/internal/logging"
	"github.com/faizmokh/jurnal/internal/session"
	"github.com/faizmokh/jurnal/internal/store"
)

// PasswordEnv supplies the account password for non-interactive commands.
const PasswordEnv = "JURNAL_PASSWORD"

// App carries the wiring shared by every command. Dependencies are opened on
// first use so commands that never touch the store stay cheap.
type App struct {
	manager *files.Manager
	stderr  io.Writer

	configPath string
	as         string
	password   string
	verbose    bool

	ready    bool
	cfg      config.Config
	logger   *log.Logger
	store    store.Store
	adapter  *journal.Adapter
	accounts *accounts.Store
}

// NewApp binds an App to the jurnal home managed by manager. Log output goes
// to stderr.
func NewApp(manager *files.Manager, stderr io.Writer) *App {
	if stderr == nil {
		stderr = os.Stderr
	}
	return &App{manager: manager, stderr: stderr}
}

func (a *App) init() error {
	if a.ready {
		return nil
	}

	path := a.configPath
	if path == "" {
		path = a.manager.ConfigPath()
	} else {
		expanded, err := files.ExpandHome(path)
		if err != nil {
			return err
		}
		path = expanded
	}

	cfg, err := config.Load(path)
	if err != nil {
		return err
	}

	level := cfg.Log.Level
	if a.verbose {
		level = "debug"
	}
	logger, err := logging.New(a.stderr, level)
	if err != nil {
		return err
	}

	order, err := journal.ParseOrder(cfg.Store.Order)
	if err != nil {
		return err
	}

	s, err := store.Open(cfg.Store, a.manager, logger)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}

	a.cfg = cfg
	a.logger = logger
	a.store = s
	a.adapter = journal.NewAdapter(s, cfg.Store.Resource, order, logger)
	a.ready = true
	logger.Debug("store ready", "backend", cfg.Store.Backend, "resource", cfg.Store.Resource)
	return nil
}

// Config returns the loaded configuration.
func (a *App) Config() (config.Config, error) {
	if err := a.init(); err != nil {
		return config.Config{}, err
	}
	return a.cfg, nil
}

// Manager exposes the jurnal home.
func (a *App) Manager() *files.Manager {
	return a.manager
}

// Logger returns the process logger.
func (a *App) Logger() (*log.Logger, error) {
	if err := a.init(); err != nil {
		return nil, err
	}
	return a.logger, nil
}

// Adapter returns the record store adapter for the configured sheet.
func (a *App) Adapter() (*journal.Adapter, error) {
	if err := a.init(); err != nil {
		return nil, err
	}
	return a.adapter, nil
}

// Reader returns a journal reader over the configured sheet.
func (a *App) Reader() (*journal.Reader, error) {
	adapter, err := a.Adapter()
	if err != nil {
		return nil, err
	}
	return journal.NewReader(adapter), nil
}

// Writer returns a journal writer over the configured sheet.
func (a *App) Writer() (*journal.Writer, error) {
	adapter, err := a.Adapter()
	if err != nil {
		return nil, err
	}
	return journal.NewWriter(adapter, a.cfg.Equipment, a.logger), nil
}

// Accounts opens the credential store. It fails when accounts are disabled.
func (a *App) Accounts() (*accounts.Store, error) {
	if err := a.init(); err != nil {
		return nil, err
	}
	if !a.cfg.Accounts.Enabled {
		return nil, errors.New("accounts are disabled (set accounts.enabled in config.yaml)")
	}
	if a.accounts != nil {
		return a.accounts, nil
	}
	s, err := accounts.Open(a.cfg.Accounts, a.manager, a.logger)
	if err != nil {
		return nil, err
	}
	a.accounts = s
	return s, nil
}

// WatchPath returns the file to watch for external edits, or "" when the
// backend is not file based.
func (a *App) WatchPath() (string, error) {
	if err := a.init(); err != nil {
		return "", err
	}
	fs, ok := a.store.(*store.FileStore)
	if !ok {
		return "", nil
	}
	return fs.Path(a.cfg.Store.Resource)
}

// Session starts the session commands act under. With accounts enabled the
// --as username must authenticate; otherwise --as, the configured author or
// $USER becomes the display name.
func (a *App) Session(ctx context.Context) (*session.Session, error) {
	if err := a.init(); err != nil {
		return nil, err
	}

	if !a.cfg.Accounts.Enabled {
		return session.New(firstNonEmpty(a.as, a.cfg.Author, os.Getenv("USER")))
	}

	if strings.TrimSpace(a.as) == "" {
		return nil, errors.New("accounts are enabled: pass --as <username>")
	}
	creds, err := a.Accounts()
	if err != nil {
		return nil, err
	}
	cred, err := creds.Authenticate(ctx, a.as, firstNonEmpty(a.password, os.Getenv(PasswordEnv)))
	if err != nil {
		return nil, err
	}
	return session.NewForAccount(cred.Username, "")
}

// Close releases every opened dependency.
func (a *App) Close() error {
	var errs []error
	if a.accounts != nil {
		errs = append(errs, a.accounts.Close())
		a.accounts = nil
	}
	if a.store != nil {
		errs = append(errs, a.store.Close())
		a.store = nil
	}
	a.ready = false
	return errors.Join(errs...)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
