package cli

import (
	"strings"

	"planify/internal/format"

	"github.com/spf13/cobra"
)

func newCommentsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "comments",
		Short: "Comment commands (admins only for add/update/delete)",
	}
	cmd.AddCommand(newCommentsAddCmd(app))
	cmd.AddCommand(newCommentsListCmd(app))
	cmd.AddCommand(newCommentsUpdateCmd(app))
	cmd.AddCommand(newCommentsDeleteCmd(app))
	return cmd
}

func newCommentsAddCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <task-id> <text>",
		Short: "Add a comment to a task",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, closeFn, err := loadSession(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer closeFn()
			if _, err := requireUser(sess); err != nil {
				return writeErr(cmd, err)
			}
			t, err := requireTask(sess, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			p, err := sess.AddComment(cmd.Context(), t.ID, strings.Join(args[1:], " "))
			if err != nil {
				return writeErr(cmd, err)
			}
			c := p.Task.Comments[len(p.Task.Comments)-1]
			return writeOut(cmd, app, format.Envelope{
				Data:  c,
				Hints: []string{"planify comments list " + t.ID},
			})
		},
	}
	return cmd
}

func newCommentsListCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list <task-id>",
		Short: "List a task's comments, oldest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, closeFn, err := loadSession(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer closeFn()
			t, err := requireTask(sess, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			st := sess.State()
			tb := &format.Table{Headers: []string{"ID", "AUTHOR", "WHEN", "COMMENT"}}
			for _, c := range t.Comments {
				tb.Add(c.ID, userLabel(st, c.UserID), format.Ago(c.CreatedAt, sess.Now()), format.Truncate(c.Content, 60))
			}
			return writeOut(cmd, app, format.Envelope{Data: t.Comments, Table: tb})
		},
	}
	return cmd
}

func newCommentsUpdateCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update <task-id> <comment-id> <text>",
		Short: "Replace a comment's text",
		Args:  cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, closeFn, err := loadSession(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer closeFn()
			if _, err := requireUser(sess); err != nil {
				return writeErr(cmd, err)
			}
			t, err := requireTask(sess, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			p, err := sess.UpdateComment(cmd.Context(), t.ID, args[1], strings.Join(args[2:], " "))
			if err != nil {
				return writeErr(cmd, err)
			}
			after := t
			if p.Task != nil {
				after = *p.Task
			}
			for _, c := range after.Comments {
				if c.ID == args[1] {
					return writeOut(cmd, app, format.Envelope{Data: c})
				}
			}
			return writeErr(cmd, errNotFound("comment", args[1]))
		},
	}
	return cmd
}

func newCommentsDeleteCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <task-id> <comment-id>",
		Short: "Delete a comment",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, closeFn, err := loadSession(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer closeFn()
			if _, err := requireUser(sess); err != nil {
				return writeErr(cmd, err)
			}
			t, err := requireTask(sess, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			p, err := sess.DeleteComment(cmd.Context(), t.ID, args[1])
			if err != nil {
				return writeErr(cmd, err)
			}
			if !p.Changed {
				return writeErr(cmd, errNotFound("comment", args[1]))
			}
			return writeOut(cmd, app, format.Envelope{Data: map[string]any{"taskId": t.ID, "deleted": args[1]}})
		},
	}
	return cmd
}
