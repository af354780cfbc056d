package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/faizmokh/jurnal/internal/files"
	"github.com/faizmokh/jurnal/internal/store"
	"github.com/faizmokh/jurnal/internal/ui"
)

// NewRootCommand creates the top-level Cobra command to host subcommands and TUI launcher.
func NewRootCommand(ctx context.Context, app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jurnal",
		Short: "Keep the team work journal from your terminal.",
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := app.uiDeps()
			if err != nil {
				return err
			}
			// The TUI owns the terminal, so logs go to a file.
			logPath := app.manager.LogPath()
			if err := app.manager.EnsureDir(logPath); err != nil {
				return err
			}
			logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
			if err != nil {
				return fmt.Errorf("open log file: %w", err)
			}
			defer logFile.Close()
			deps.Logger.SetOutput(logFile)

			m := ui.NewModel(ctx, deps)
			if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
				return fmt.Errorf("run TUI: %w", err)
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&app.as, "as", "", "Display name, or account username when accounts are enabled")
	flags.StringVar(&app.password, "password", "", "Account password (default: $"+PasswordEnv+")")
	flags.StringVar(&app.configPath, "config", "", "Path to config.yaml (default: $JURNAL_HOME/config.yaml)")
	flags.BoolVarP(&app.verbose, "verbose", "v", false, "Log debug output to stderr")

	cmd.AddCommand(
		newListCommand(ctx, app),
		newAddCommand(ctx, app),
		newEditCommand(ctx, app),
		newDeleteCommand(ctx, app),
		newSearchCommand(ctx, app),
		newExportCommand(ctx, app),
		newSignupCommand(ctx, app),
		newLoginCommand(ctx, app),
		newVersionCommand(),
	)

	return cmd
}

func (a *App) uiDeps() (ui.Deps, error) {
	reader, err := a.Reader()
	if err != nil {
		return ui.Deps{}, err
	}
	writer, err := a.Writer()
	if err != nil {
		return ui.Deps{}, err
	}
	watchPath, err := a.WatchPath()
	if err != nil {
		return ui.Deps{}, err
	}

	deps := ui.Deps{
		Reader:      reader,
		Writer:      writer,
		Manager:     a.manager,
		Resource:    a.cfg.Store.Resource,
		Equipment:   a.cfg.Equipment,
		DefaultName: firstNonEmpty(a.as, a.cfg.Author, os.Getenv("USER")),
		WatchPath:   watchPath,
		Logger:      a.logger,
	}
	if a.cfg.Accounts.Enabled {
		creds, err := a.Accounts()
		if err != nil {
			return ui.Deps{}, err
		}
		deps.Accounts = creds
	}
	return deps, nil
}

// ExecuteCommand is a thin wrapper that executes the Cobra root command.
func ExecuteCommand(ctx context.Context) error {
	manager, err := files.NewManager("")
	if err != nil {
		return err
	}
	app := NewApp(manager, os.Stderr)
	defer app.Close()

	cmd := NewRootCommand(ctx, app)
	return cmd.Execute()
}

// Main is a helper used by cmd/jurnal/main.go to keep wiring contained in one package.
func Main(ctx context.Context) {
	if err := ExecuteCommand(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		if errors.Is(err, store.ErrConflict) {
			fmt.Fprintln(os.Stderr, conflictHint)
		}
		os.Exit(1)
	}
}
