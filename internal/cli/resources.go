package cli

import (
	"psyplanner/internal/draft"
	"psyplanner/internal/refdata"

	"github.com/spf13/cobra"
)

// runDraftAdd is the shared body of every `add` subcommand: one controller,
// flag values as field edits, one gated submit.
func runDraftAdd(cmd *cobra.Command, app *App, kind draft.Kind, fields map[string]string) error {
	e, err := openEnv(app)
	if err != nil {
		return writeErr(cmd, err)
	}
	defer e.Close()

	ctrl := draft.New(kind, e.Sessions, e.Store)
	for name, value := range fields {
		if value != "" {
			ctrl.SetField(name, value)
		}
	}
	if err := ctrl.Submit(cmd.Context()); err != nil {
		return writeErr(cmd, err)
	}
	return writeOut(cmd, app, map[string]any{"data": map[string]any{"created": true}})
}

func newClientsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clients",
		Short: "Client commands",
	}

	var name, phone, email, comment string
	add := &cobra.Command{
		Use:   "add",
		Short: "Add a client",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDraftAdd(cmd, app, draft.KindClient, map[string]string{
				"full_name": name,
				"phone":     phone,
				"email":     email,
				"comment":   comment,
			})
		},
	}
	add.Flags().StringVar(&name, "name", "", "Client full name")
	add.Flags().StringVar(&phone, "phone", "", "Phone number")
	add.Flags().StringVar(&email, "email", "", "Email address")
	add.Flags().StringVar(&comment, "comment", "", "Free-form comment")
	_ = add.MarkFlagRequired("name")

	list := &cobra.Command{
		Use:   "list",
		Short: "List your clients",
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
			clients, err := refdata.ClientDetails(cmd.Context(), e.Store, sess.UserID)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": clients})
		},
	}

	cmd.AddCommand(add)
	cmd.AddCommand(list)
	return cmd
}

func newSessionsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "Session commands",
	}

	var client, date, timeOfDay, duration, sessionType, comment string
	add := &cobra.Command{
		Use:   "add",
		Short: "Add a session",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDraftAdd(cmd, app, draft.KindSession, map[string]string{
				"client_id":    client,
				"session_date": date,
				"session_time": timeOfDay,
				"duration":     duration,
				"session_type": sessionType,
				"comment":      comment,
			})
		},
	}
	add.Flags().StringVar(&client, "client", "", "Client id")
	add.Flags().StringVar(&date, "date", "", "Session date (YYYY-MM-DD)")
	add.Flags().StringVar(&timeOfDay, "time", "", "Session time (HH:MM)")
	add.Flags().StringVar(&duration, "duration", "", "Duration in minutes (default 60)")
	add.Flags().StringVar(&sessionType, "type", "", "Session type (default \"Active session\")")
	add.Flags().StringVar(&comment, "comment", "", "Free-form comment")
	_ = add.MarkFlagRequired("client")
	_ = add.MarkFlagRequired("date")
	_ = add.MarkFlagRequired("time")

	list := &cobra.Command{
		Use:   "list",
		Short: "List your sessions",
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
			records, err := refdata.Sessions(cmd.Context(), e.Store, sess.UserID)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": records})
		},
	}

	cmd.AddCommand(add)
	cmd.AddCommand(list)
	return cmd
}

func newPaymentsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "payments",
		Short: "Payment commands",
	}

	var client, amount, currency, date, comment string
	add := &cobra.Command{
		Use:   "add",
		Short: "Add a payment",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDraftAdd(cmd, app, draft.KindPayment, map[string]string{
				"client_id":    client,
				"amount":       amount,
				"currency":     currency,
				"payment_date": date,
				"comment":      comment,
			})
		},
	}
	add.Flags().StringVar(&client, "client", "", "Client id")
	add.Flags().StringVar(&amount, "amount", "", "Amount (non-negative, two decimals)")
	add.Flags().StringVar(&currency, "currency", "", "Currency code (default RUB)")
	add.Flags().StringVar(&date, "date", "", "Payment date (YYYY-MM-DD)")
	add.Flags().StringVar(&comment, "comment", "", "Free-form comment")
	_ = add.MarkFlagRequired("client")
	_ = add.MarkFlagRequired("amount")
	_ = add.MarkFlagRequired("date")

	list := &cobra.Command{
		Use:   "list",
		Short: "List your payments",
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
			payments, err := refdata.Payments(cmd.Context(), e.Store, sess.UserID)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": payments})
		},
	}

	cmd.AddCommand(add)
	cmd.AddCommand(list)
	return cmd
}

func newNotesCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "notes",
		Short: "Note commands",
	}

	var client, content string
	add := &cobra.Command{
		Use:   "add",
		Short: "Add a note",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDraftAdd(cmd, app, draft.KindNote, map[string]string{
				"client_id": client,
				"content":   content,
			})
		},
	}
	add.Flags().StringVar(&client, "client", "", "Client id")
	add.Flags().StringVar(&content, "content", "", "Note content (markdown)")
	_ = add.MarkFlagRequired("client")
	_ = add.MarkFlagRequired("content")

	list := &cobra.Command{
		Use:   "list",
		Short: "List your notes",
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
			notes, err := refdata.Notes(cmd.Context(), e.Store, sess.UserID)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": notes})
		},
	}

	cmd.AddCommand(add)
	cmd.AddCommand(list)
	return cmd
}
