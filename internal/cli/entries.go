package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/faizmokh/jurnal/internal/journal"
)

func newAddCommand(ctx context.Context, app *App) *cobra.Command {
	var (
		dateFlag      string
		equipmentFlag string
		noteFlag      string
		attachFlag    string
	)

	cmd := &cobra.Command{
		Use:   "add <content ...>",
		Short: "Append an entry to the journal.",
		Long:  "add records a new row authored by the current session. The date defaults to today.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			content := strings.TrimSpace(strings.Join(args, " "))
			if content == "" {
				return journal.ErrContentRequired
			}

			date, err := resolveDate(dateFlag)
			if err != nil {
				return err
			}

			sess, err := app.Session(ctx)
			if err != nil {
				return err
			}
			reader, err := app.Reader()
			if err != nil {
				return err
			}
			writer, err := app.Writer()
			if err != nil {
				return err
			}

			snapshot, err := reader.Table(ctx)
			if err != nil {
				return err
			}
			next, entry, err := writer.Append(ctx, sess, snapshot, journal.Entry{
				Date:       date,
				Equipment:  equipmentFlag,
				Content:    content,
				Note:       noteFlag,
				Attachment: attachFlag,
			})
			if err != nil {
				return err
			}

			position, err := next.Find(journal.IDRef(entry.ID))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added #%d %s\n", position+1, formatEntry(entry))
			return nil
		},
	}

	cmd.Flags().StringVar(&dateFlag, "date", "", "Entry date in YYYY-MM-DD (default: today)")
	cmd.Flags().StringVar(&equipmentFlag, "equipment", "", "Equipment label")
	cmd.Flags().StringVar(&noteFlag, "note", "", "Free-form note")
	cmd.Flags().StringVar(&attachFlag, "attach", "", "Attachment path or URL")

	return cmd
}

func newEditCommand(ctx context.Context, app *App) *cobra.Command {
	var (
		dateFlag      string
		equipmentFlag string
		authorFlag    string
		noteFlag      string
		attachFlag    string
	)

	cmd := &cobra.Command{
		Use:   "edit <ref> [content ...]",
		Short: "Modify an entry by position or id.",
		Long:  "edit overwrites only the fields that are given. <ref> is a 1-based position from list or an id prefix.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref, err := journal.ParseRef(args[0])
			if err != nil {
				return err
			}

			var patch journal.Patch
			if len(args) > 1 {
				content := strings.Join(args[1:], " ")
				patch.Content = &content
			}
			flags := cmd.Flags()
			if flags.Changed("date") {
				date, err := resolveDate(dateFlag)
				if err != nil {
					return err
				}
				patch.Date = &date
			}
			if flags.Changed("equipment") {
				patch.Equipment = &equipmentFlag
			}
			if flags.Changed("author") {
				patch.Author = &authorFlag
			}
			if flags.Changed("note") {
				patch.Note = &noteFlag
			}
			if flags.Changed("attach") {
				patch.Attachment = &attachFlag
			}

			sess, err := app.Session(ctx)
			if err != nil {
				return err
			}
			reader, err := app.Reader()
			if err != nil {
				return err
			}
			writer, err := app.Writer()
			if err != nil {
				return err
			}

			snapshot, err := reader.Table(ctx)
			if err != nil {
				return err
			}
			next, updated, err := writer.Edit(ctx, sess, snapshot, ref, patch)
			if err != nil {
				return err
			}

			position, err := next.Find(journal.IDRef(updated.ID))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated #%d %s\n", position+1, formatEntry(updated))
			return nil
		},
	}

	cmd.Flags().StringVar(&dateFlag, "date", "", "New date in YYYY-MM-DD")
	cmd.Flags().StringVar(&equipmentFlag, "equipment", "", "New equipment label")
	cmd.Flags().StringVar(&authorFlag, "author", "", "New author")
	cmd.Flags().StringVar(&noteFlag, "note", "", "New note")
	cmd.Flags().StringVar(&attachFlag, "attach", "", "New attachment path or URL")

	return cmd
}

func newDeleteCommand(ctx context.Context, app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <ref>",
		Short: "Remove an entry by position or id.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref, err := journal.ParseRef(args[0])
			if err != nil {
				return err
			}

			sess, err := app.Session(ctx)
			if err != nil {
				return err
			}
			reader, err := app.Reader()
			if err != nil {
				return err
			}
			writer, err := app.Writer()
			if err != nil {
				return err
			}

			snapshot, err := reader.Table(ctx)
			if err != nil {
				return err
			}
			position, err := snapshot.Find(ref)
			if err != nil {
				return err
			}
			_, removed, err := writer.Delete(ctx, sess, snapshot, journal.PositionRef(position))
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Deleted #%d %s\n", position+1, formatEntry(removed))
			return nil
		},
	}

	return cmd
}
