package cli

import (
	"strings"

	"planify/internal/format"
	"planify/internal/model"
	"planify/internal/mutate"
	"planify/internal/query"

	"github.com/spf13/cobra"
)

func newBoardsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "boards",
		Short: "Board commands",
	}
	cmd.AddCommand(newBoardsListCmd(app))
	cmd.AddCommand(newBoardsCreateCmd(app))
	cmd.AddCommand(newBoardsUpdateCmd(app))
	cmd.AddCommand(newBoardsDeleteCmd(app))
	cmd.AddCommand(newBoardsUseCmd(app))
	cmd.AddCommand(newBoardsJoinCmd(app))
	cmd.AddCommand(newBoardsLinkCmd(app))
	cmd.AddCommand(newBoardsMembersCmd(app))
	cmd.AddCommand(newBoardsAddMemberCmd(app))
	return cmd
}

func newBoardsListCmd(app *App) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List your boards (--all for every board)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, closeFn, err := loadSession(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer closeFn()
			st := sess.State()
			boards := st.Boards
			if !all {
				u, err := requireUser(sess)
				if err != nil {
					return writeErr(cmd, err)
				}
				boards = query.BoardsForUser(st, u.ID)
			}
			return writeOut(cmd, app, format.Envelope{
				Data:  boards,
				Table: boardTable(boards, st.CurrentBoardID),
				Hints: []string{"planify boards use <board-id>", "planify boards link"},
			})
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "Include boards you are not a member of")
	return cmd
}

func newBoardsCreateCmd(app *App) *cobra.Command {
	var description string

	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a board (you become its only member)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, closeFn, err := loadSession(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer closeFn()
			p, err := sess.AddBoard(cmd.Context(), strings.Join(args, " "), description)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, format.Envelope{
				Data: map[string]any{"board": *p.Board, "link": sess.GenerateBoardLink(p.Board.ID)},
				Hints: []string{
					"planify boards use " + p.Board.ID,
					"planify boards add-member <username> --board " + p.Board.ID,
				},
			})
		},
	}
	cmd.Flags().StringVar(&description, "description", "", "Description")
	return cmd
}

func newBoardsUpdateCmd(app *App) *cobra.Command {
	var name, description string

	cmd := &cobra.Command{
		Use:   "update <board-id>",
		Short: "Rename or re-describe a board",
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
			b, err := requireBoard(sess, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			var u mutate.BoardUpdate
			if cmd.Flags().Changed("name") {
				u.Name = &name
			}
			if cmd.Flags().Changed("description") {
				u.Description = &description
			}
			p, err := sess.UpdateBoard(cmd.Context(), b.ID, u)
			if err != nil {
				return writeErr(cmd, err)
			}
			if p.Board != nil {
				b = *p.Board
			}
			return writeOut(cmd, app, format.Envelope{Data: map[string]any{"board": b, "changed": p.Changed}})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Name")
	cmd.Flags().StringVar(&description, "description", "", "Description")
	return cmd
}

func newBoardsDeleteCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <board-id>",
		Short: "Delete a board (admins, or its creator; never the last board)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, closeFn, err := loadSession(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer closeFn()
			b, err := requireBoard(sess, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			if _, err := sess.DeleteBoard(cmd.Context(), b.ID); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, format.Envelope{
				Data:  map[string]any{"deleted": b.ID, "currentBoardId": sess.State().CurrentBoardID},
				Hints: []string{"planify undo"},
			})
		},
	}
	return cmd
}

func newBoardsUseCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "use <board-id>",
		Short: "Select the current board",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, closeFn, err := loadSession(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer closeFn()
			b, err := requireBoard(sess, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			if _, err := sess.SetCurrentBoard(cmd.Context(), b.ID); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, format.Envelope{Data: b, Hints: []string{"planify tasks list"}})
		},
	}
	return cmd
}

func newBoardsJoinCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "join <code-or-share-link>",
		Short: "Join a board by its code or share link",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code, ok := parseCodeOrLink(args[0])
			if !ok {
				return writeErr(cmd, mutate.ErrBoardCodeNotFound)
			}
			sess, closeFn, err := loadSession(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer closeFn()
			p, err := sess.JoinBoardByCode(cmd.Context(), code)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, format.Envelope{
				Data:  map[string]any{"board": *p.Board, "joined": p.Changed},
				Hints: []string{"planify tasks list"},
			})
		},
	}
	return cmd
}

func newBoardsLinkCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "link [board-id]",
		Short: "Print a board's share link (default: current board)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, closeFn, err := loadSession(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer closeFn()
			id := ""
			if len(args) == 1 {
				id = args[0]
			}
			b, err := requireCurrentBoard(sess, id)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, format.Envelope{Data: map[string]any{
				"boardId": b.ID,
				"code":    b.Code,
				"link":    sess.GenerateBoardLink(b.ID),
			}})
		},
	}
	return cmd
}

func newBoardsMembersCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "members [board-id]",
		Short: "List a board's members (default: current board)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, closeFn, err := loadSession(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer closeFn()
			id := ""
			if len(args) == 1 {
				id = args[0]
			}
			b, err := requireCurrentBoard(sess, id)
			if err != nil {
				return writeErr(cmd, err)
			}
			members := publicUsers(query.BoardMembers(sess.State(), b.ID))
			return writeOut(cmd, app, format.Envelope{Data: members, Table: userTable(members)})
		},
	}
	return cmd
}

func newBoardsAddMemberCmd(app *App) *cobra.Command {
	var role string
	var boardID string

	cmd := &cobra.Command{
		Use:   "add-member <username>",
		Short: "Add an existing user to the current board",
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
			var r model.Role
			if strings.TrimSpace(role) != "" {
				if r, err = parseRole(role); err != nil {
					return writeErr(cmd, err)
				}
			}
			if strings.TrimSpace(boardID) != "" {
				b, err := requireBoard(sess, boardID)
				if err != nil {
					return writeErr(cmd, err)
				}
				if _, err := sess.SetCurrentBoard(cmd.Context(), b.ID); err != nil {
					return writeErr(cmd, err)
				}
			}
			if _, err := requireCurrentBoard(sess, ""); err != nil {
				return writeErr(cmd, err)
			}
			p, err := sess.AddBoardMember(cmd.Context(), args[0], r)
			if err != nil {
				return writeErr(cmd, err)
			}
			b, _ := sess.CurrentBoard()
			return writeOut(cmd, app, format.Envelope{Data: map[string]any{
				"user":  publicUser(*p.User),
				"board": b,
			}})
		},
	}
	cmd.Flags().StringVar(&role, "role", "", "Role on joining (admin|user; default: keep)")
	cmd.Flags().StringVar(&boardID, "board", "", "Board id (selects it first)")
	return cmd
}
