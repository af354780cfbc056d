package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/faizmokh/jurnal/internal/journal"
)

func newExportCommand(ctx context.Context, app *App) *cobra.Command {
	var outputFlag string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the journal as a spreadsheet-friendly CSV.",
		Long:  "export prints the CSV to stdout, or writes it to --output. When --output is a directory the file is named after the sheet and today's date.",
		RunE: func(cmd *cobra.Command, args []string) error {
			reader, err := app.Reader()
			if err != nil {
				return err
			}
			t, err := reader.Table(ctx)
			if err != nil {
				return err
			}

			if outputFlag == "" || outputFlag == "-" {
				return journal.Export(cmd.OutOrStdout(), t)
			}

			target := outputFlag
			if info, err := os.Stat(target); err == nil && info.IsDir() {
				adapter, err := app.Adapter()
				if err != nil {
					return err
				}
				target = filepath.Join(target, app.Manager().ExportName(adapter.Resource(), time.Now()))
			}

			f, err := os.Create(target)
			if err != nil {
				return fmt.Errorf("create export: %w", err)
			}
			if err := journal.Export(f, t); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("close export: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d entries to %s\n", t.Len(), target)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputFlag, "output", "o", "", "File or directory to write (default: stdout)")

	return cmd
}
