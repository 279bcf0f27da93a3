package cli

import (
	"planify/internal/format"
	"planify/internal/model"
	"planify/internal/query"

	"github.com/spf13/cobra"
)

func newNotificationsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "notifications",
		Aliases: []string{"inbox"},
		Short:   "Your notifications",
	}
	cmd.AddCommand(newNotificationsListCmd(app))
	cmd.AddCommand(newNotificationsReadCmd(app))
	cmd.AddCommand(newNotificationsReadAllCmd(app))
	cmd.AddCommand(newNotificationsDeleteCmd(app))
	cmd.AddCommand(newNotificationsCheckDeadlinesCmd(app))
	return cmd
}

func newNotificationsListCmd(app *App) *cobra.Command {
	var unread bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List your notifications, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, closeFn, err := loadSession(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer closeFn()
			u, err := requireUser(sess)
			if err != nil {
				return writeErr(cmd, err)
			}
			var ns []model.Notification
			if unread {
				ns = query.UnreadNotificationsFor(sess.State(), u.ID)
			} else {
				ns = query.NotificationsFor(sess.State(), u.ID)
			}
			return writeOut(cmd, app, format.Envelope{
				Data:  ns,
				Table: notificationTable(ns, sess.Now()),
				Hints: []string{"planify notifications read-all"},
			})
		},
	}
	cmd.Flags().BoolVar(&unread, "unread", false, "Only unread notifications")
	return cmd
}

func newNotificationsReadCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "read <notification-id>",
		Short: "Mark a notification as read",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, closeFn, err := loadSession(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer closeFn()
			if _, ok := sess.State().FindNotification(args[0]); !ok {
				return writeErr(cmd, errNotFound("notification", args[0]))
			}
			p, err := sess.MarkNotificationRead(cmd.Context(), args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, format.Envelope{Data: map[string]any{"id": args[0], "changed": p.Changed}})
		},
	}
	return cmd
}

func newNotificationsReadAllCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "read-all",
		Short: "Mark all your notifications as read",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, closeFn, err := loadSession(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer closeFn()
			u, err := requireUser(sess)
			if err != nil {
				return writeErr(cmd, err)
			}
			before := len(query.UnreadNotificationsFor(sess.State(), u.ID))
			if _, err := sess.MarkAllNotificationsRead(cmd.Context()); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, format.Envelope{Data: map[string]any{"marked": before}})
		},
	}
	return cmd
}

func newNotificationsDeleteCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <notification-id>",
		Short: "Delete a notification",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, closeFn, err := loadSession(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer closeFn()
			if _, ok := sess.State().FindNotification(args[0]); !ok {
				return writeErr(cmd, errNotFound("notification", args[0]))
			}
			if _, err := sess.DeleteNotification(cmd.Context(), args[0]); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, format.Envelope{Data: map[string]any{"deleted": args[0]}})
		},
	}
	return cmd
}

func newNotificationsCheckDeadlinesCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check-deadlines",
		Short: "Send reminders for open tasks due within 48h (at most once per task and user)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, closeFn, err := loadSession(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer closeFn()
			p, err := sess.CheckDeadlines(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, format.Envelope{Data: map[string]any{"sent": len(p.Effects.Notify)}})
		},
	}
	return cmd
}
