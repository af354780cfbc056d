package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/faizmokh/jurnal/internal/accounts"
	"github.com/faizmokh/jurnal/internal/session"
)

func newSignupCommand(ctx context.Context, app *App) *cobra.Command {
	var (
		emailFlag string
		phoneFlag string
	)

	cmd := &cobra.Command{
		Use:   "signup <username>",
		Short: "Create an account.",
		Long:  "signup stores a new credential. The password comes from --password, $" + PasswordEnv + " or the first line of stdin.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			creds, err := app.Accounts()
			if err != nil {
				return err
			}
			password, err := app.resolvePassword(cmd)
			if err != nil {
				return err
			}

			cred, err := creds.SignUp(ctx, accounts.Credential{
				Username: args[0],
				Email:    emailFlag,
				Phone:    phoneFlag,
			}, password)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Signed up %s\n", cred.Username)
			return nil
		},
	}

	cmd.Flags().StringVar(&emailFlag, "email", "", "Contact email")
	cmd.Flags().StringVar(&phoneFlag, "phone", "", "Contact phone number")

	return cmd
}

func newLoginCommand(ctx context.Context, app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login <username>",
		Short: "Check account credentials.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			creds, err := app.Accounts()
			if err != nil {
				return err
			}
			password, err := app.resolvePassword(cmd)
			if err != nil {
				return err
			}

			cred, err := creds.Authenticate(ctx, args[0], password)
			if err != nil {
				return err
			}
			sess, err := session.NewForAccount(cred.Username, "")
			if err != nil {
				return err
			}
			defer sess.End()

			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s (session %s)\n", sess.DisplayName, shortID(sess.ID))
			return nil
		},
	}

	return cmd
}

func (a *App) resolvePassword(cmd *cobra.Command) (string, error) {
	if password := firstNonEmpty(a.password, os.Getenv(PasswordEnv)); password != "" {
		return password, nil
	}
	return readSecret(cmd)
}
