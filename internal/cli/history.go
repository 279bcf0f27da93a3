package cli

import (
	"strconv"

	"planify/internal/format"
	"planify/internal/model"

	"github.com/spf13/cobra"
)

func newUndoCmd(app *App) *cobra.Command {
	return newHistoryStepCmd(app, "undo", "Revert the last undoable change")
}

func newRedoCmd(app *App) *cobra.Command {
	return newHistoryStepCmd(app, "redo", "Re-apply the last undone change")
}

func newHistoryStepCmd(app *App, use, short string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, closeFn, err := loadSession(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer closeFn()
			step := sess.Undo
			if use == "redo" {
				step = sess.Redo
			}
			ok, err := step(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			entries, idx := sess.History()
			return writeOut(cmd, app, format.Envelope{Data: map[string]any{
				"applied": ok,
				"index":   idx,
				"total":   len(entries),
				"canUndo": sess.CanUndo(),
				"canRedo": sess.CanRedo(),
			}})
		},
	}
	return cmd
}

func newHistoryCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show the undo log (the cursor marks the last applied entry)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, closeFn, err := loadSession(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer closeFn()
			entries, idx := sess.History()
			tb := &format.Table{Headers: []string{"#", "", "TYPE", "TARGET", "WHEN"}}
			for i, e := range entries {
				cur := ""
				if i == idx {
					cur = ">"
				}
				tb.Add(strconv.Itoa(i), cur, string(e.Type), historyTarget(e), format.Ago(e.At, sess.Now()))
			}
			return writeOut(cmd, app, format.Envelope{
				Data:  map[string]any{"entries": entries, "index": idx},
				Table: tb,
				Hints: []string{"planify undo", "planify redo"},
			})
		},
	}
	return cmd
}

func historyTarget(e model.HistoryAction) string {
	p := e.Payload
	if e.Inverse != nil && p.Task == nil && p.User == nil && p.Board == nil {
		p = *e.Inverse
	}
	switch {
	case p.Task != nil:
		return p.Task.ID + " " + format.Truncate(p.Task.Title, 32)
	case p.User != nil:
		return p.User.ID + " " + p.User.Username
	case p.Board != nil:
		return p.Board.ID + " " + format.Truncate(p.Board.Name, 32)
	}
	return p.ID
}
