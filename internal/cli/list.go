package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/faizmokh/jurnal/internal/journal"
)

func newListCommand(ctx context.Context, app *App) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show every journal entry.",
		RunE: func(cmd *cobra.Command, args []string) error {
			reader, err := app.Reader()
			if err != nil {
				return err
			}
			t, err := reader.Table(ctx)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if jsonOutput {
				entries := t.Entries
				if entries == nil {
					entries = []journal.Entry{}
				}
				return writeJSON(out, entries)
			}
			if t.Len() == 0 {
				fmt.Fprintln(out, "No entries yet.")
				return nil
			}
			fmt.Fprintln(out, renderEntries(allMatches(t)))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output entries as JSON")

	return cmd
}

func newSearchCommand(ctx context.Context, app *App) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "search <term ...>",
		Short: "Find entries containing a term in any field.",
		Long:  "search matches case-insensitively against every column of every row.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			term := strings.TrimSpace(strings.Join(args, " "))

			reader, err := app.Reader()
			if err != nil {
				return err
			}
			matches, err := reader.Search(ctx, term)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if jsonOutput {
				results := make([]journal.Match, 0, len(matches))
				for _, m := range matches {
					m.Position++
					results = append(results, m)
				}
				return writeJSON(out, results)
			}
			if len(matches) == 0 {
				fmt.Fprintf(out, "No matches for %q\n", term)
				return nil
			}
			fmt.Fprintf(out, "Results for %q\n", term)
			fmt.Fprintln(out, renderEntries(matches))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output matches as JSON (positions are 1-based)")

	return cmd
}
