package cli

import (
	"planify/internal/format"
	"planify/internal/query"

	"github.com/spf13/cobra"
)

func newUsersCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "User commands",
	}
	cmd.AddCommand(newUsersListCmd(app))
	cmd.AddCommand(newUsersAddCmd(app))
	cmd.AddCommand(newUsersUpdateCmd(app))
	cmd.AddCommand(newUsersDeleteCmd(app))
	return cmd
}

func newUsersListCmd(app *App) *cobra.Command {
	var boardID string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List users (--board to list one board's members)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, closeFn, err := loadSession(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer closeFn()
			st := sess.State()
			users := st.Users
			if boardID != "" {
				b, err := requireBoard(sess, boardID)
				if err != nil {
					return writeErr(cmd, err)
				}
				users = query.BoardMembers(st, b.ID)
			}
			users = publicUsers(users)
			return writeOut(cmd, app, format.Envelope{Data: users, Table: userTable(users)})
		},
	}
	cmd.Flags().StringVar(&boardID, "board", "", "Only members of this board")
	return cmd
}

func newUsersAddCmd(app *App) *cobra.Command {
	var f userFlags

	cmd := &cobra.Command{
		Use:   "add <username>",
		Short: "Invite a user to the current board",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, closeFn, err := loadSession(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer closeFn()
			if _, err := requireUser(sess); err != nil {
				return writeErr(cmd, err)
			}
			f.username = args[0]
			in, err := f.input()
			if err != nil {
				return writeErr(cmd, err)
			}
			p, err := sess.AddUser(cmd.Context(), in)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, format.Envelope{
				Data:  publicUser(*p.User),
				Hints: []string{"planify users list", "planify undo"},
			})
		},
	}
	f.bind(cmd, true)
	_ = cmd.Flags().MarkHidden("username")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	_ = cmd.MarkFlagRequired("first-name")
	_ = cmd.MarkFlagRequired("last-name")
	return cmd
}

func newUsersUpdateCmd(app *App) *cobra.Command {
	var f userFlags

	cmd := &cobra.Command{
		Use:   "update <user-id>",
		Short: "Update a user's profile or role",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, closeFn, err := loadSession(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer closeFn()
			if _, err := requireUser(sess); err != nil {
				return writeErr(cmd, err)
			}
			target, ok := sess.State().FindUser(args[0])
			if !ok {
				return writeErr(cmd, errNotFound("user", args[0]))
			}
			u, err := f.update(cmd)
			if err != nil {
				return writeErr(cmd, err)
			}
			p, err := sess.UpdateUser(cmd.Context(), target.ID, u)
			if err != nil {
				return writeErr(cmd, err)
			}
			if p.User != nil {
				target = *p.User
			}
			return writeOut(cmd, app, format.Envelope{Data: map[string]any{"user": publicUser(target), "changed": p.Changed}})
		},
	}
	f.bind(cmd, true)
	return cmd
}

func newUsersDeleteCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <user-id>",
		Short: "Delete a user (not yourself)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, closeFn, err := loadSession(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer closeFn()
			if _, err := requireUser(sess); err != nil {
				return writeErr(cmd, err)
			}
			target, ok := sess.State().FindUser(args[0])
			if !ok {
				return writeErr(cmd, errNotFound("user", args[0]))
			}
			if _, err := sess.DeleteUser(cmd.Context(), target.ID); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, format.Envelope{
				Data:  map[string]any{"deleted": target.ID},
				Hints: []string{"planify undo"},
			})
		},
	}
	return cmd
}
