package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"psyplanner/internal/backend"
	"psyplanner/internal/backend/sqlite"
	"psyplanner/internal/format"
	"psyplanner/internal/model"
	"psyplanner/internal/session"
	"psyplanner/internal/tui"

	"github.com/spf13/cobra"
)

type App struct {
	Dir        string
	PrettyJSON bool
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "psyplanner",
		Short:        "PsyPlanner practice manager CLI + TUI",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Start the interactive TUI
  psyplanner

  # Scriptable commands
  psyplanner register --email a@b.com --password secret1 --first-name Anna
  psyplanner clients add --name "Ivan Petrov"
  psyplanner payments add --client <client-id> --amount 150.50 --date 2024-01-10
  psyplanner sessions list
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => interactive TUI.
			if cmd.HasSubCommands() && len(args) == 0 {
				return runTUI(app)
			}
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().StringVar(&app.Dir, "dir", envOr("PSYPLANNER_DIR", ""), "Path to the data dir (default: user config dir)")
	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print JSON output")

	cmd.AddCommand(newLoginCmd(app))
	cmd.AddCommand(newRegisterCmd(app))
	cmd.AddCommand(newLogoutCmd(app))
	cmd.AddCommand(newWhoamiCmd(app))
	cmd.AddCommand(newClientsCmd(app))
	cmd.AddCommand(newSessionsCmd(app))
	cmd.AddCommand(newPaymentsCmd(app))
	cmd.AddCommand(newNotesCmd(app))

	return cmd
}

func runTUI(app *App) error {
	e, err := openEnv(app)
	if err != nil {
		return err
	}
	defer e.Close()
	return tui.Run(e.Store, e.Sessions)
}

// env bundles the opened backend with a restored session store. Every command
// goes through it so session restoration behaves the same in CLI and TUI.
type env struct {
	Store    *sqlite.Store
	Sessions *session.Store
}

func openEnv(app *App) (*env, error) {
	dir, err := dataDir(app)
	if err != nil {
		return nil, err
	}
	st, err := sqlite.Open(dir)
	if err != nil {
		return nil, err
	}
	sessions := session.NewStore(st)
	if err := sessions.Restore(context.Background()); err != nil {
		// A broken persisted session should not block the app; the user can
		// sign in again.
		slog.Warn("session restore failed", "error", err)
	}
	return &env{Store: st, Sessions: sessions}, nil
}

func (e *env) Close() { _ = e.Store.Close() }

// requireSession resolves the acting identity, or fails with a hint.
func (e *env) requireSession() (*model.Session, error) {
	if sess := e.Sessions.Current(); sess != nil {
		return sess, nil
	}
	return nil, fmt.Errorf("%w; run `psyplanner login` first", backend.ErrNotSignedIn)
}

func dataDir(app *App) (string, error) {
	if app.Dir != "" {
		return app.Dir, nil
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "psyplanner"), nil
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	return format.WriteJSON(cmd.OutOrStdout(), v, app.PrettyJSON)
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}
