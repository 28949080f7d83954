package cli

import (
	"errors"

	"psyplanner/internal/authflow"

	"github.com/spf13/cobra"
)

func newLoginCmd(app *App) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and persist the session",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer e.Close()

			f := authflow.New(e.Sessions)
			f.Email = email
			f.Password = password
			if err := f.Submit(cmd.Context()); err != nil {
				return writeErr(cmd, errors.New(f.Err()))
			}
			return writeOut(cmd, app, map[string]any{"data": e.Sessions.Current()})
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&password, "password", "", "Account password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newRegisterCmd(app *App) *cobra.Command {
	var email, password, passwordConfirm, firstName, lastName string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and sign in",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer e.Close()

			f := authflow.New(e.Sessions)
			f.ToggleMode()
			f.Email = email
			f.Password = password
			f.PasswordConfirm = passwordConfirm
			if passwordConfirm == "" {
				// --password-confirm is for parity with the interactive form;
				// scripts usually pass the password once.
				f.PasswordConfirm = password
			}
			f.FirstName = firstName
			f.LastName = lastName
			if err := f.Submit(cmd.Context()); err != nil {
				return writeErr(cmd, errors.New(f.Err()))
			}
			return writeOut(cmd, app, map[string]any{"data": e.Sessions.Current()})
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&password, "password", "", "Account password (min 6 chars)")
	cmd.Flags().StringVar(&passwordConfirm, "password-confirm", "", "Repeat the password (defaults to --password)")
	cmd.Flags().StringVar(&firstName, "first-name", "", "First name")
	cmd.Flags().StringVar(&lastName, "last-name", "", "Last name")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newLogoutCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Sign out and drop the persisted session",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer e.Close()

			if err := e.Sessions.SignOut(cmd.Context()); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"signedOut": true}})
		},
	}
	return cmd
}

func newWhoamiCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the current session",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer e.Close()

			sess, err := e.requireSession()
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": sess})
		},
	}
	return cmd
}
