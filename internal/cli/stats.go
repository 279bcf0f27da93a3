package cli

import (
	"strconv"
	"time"

	"planify/internal/format"
	"planify/internal/query"

	"github.com/spf13/cobra"
)

func newStatsCmd(app *App) *cobra.Command {
	var boardID string

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Board analytics: totals, monthly breakdown and per-user counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, closeFn, err := loadSession(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer closeFn()
			b, err := requireCurrentBoard(sess, boardID)
			if err != nil {
				return writeErr(cmd, err)
			}
			st, now := sess.State(), sess.Now()
			sum := query.Summary(st, b.ID, now)
			monthly := query.MonthlyStats(st, b.ID, now)
			perUser := query.UserStatsForBoard(st, b.ID)
			for i := range perUser {
				perUser[i].User = publicUser(perUser[i].User)
			}

			tb := &format.Table{Headers: []string{"MONTH", "TOTAL", "CREATED", "IN PROGRESS", "COMPLETED"}}
			for _, m := range monthly {
				tb.Add(m.Month, strconv.Itoa(m.TotalTasks), strconv.Itoa(m.CreatedTasks), strconv.Itoa(m.InProgressTasks), strconv.Itoa(m.CompletedTasks))
			}
			return writeOut(cmd, app, format.Envelope{
				Data: map[string]any{
					"board":   b.ID,
					"summary": sum,
					"monthly": monthly,
					"users":   perUser,
				},
				Table: tb,
			})
		},
	}
	cmd.Flags().StringVar(&boardID, "board", "", "Board id (default: current board)")
	return cmd
}

func newCalendarCmd(app *App) *cobra.Command {
	var boardID string
	var day string

	cmd := &cobra.Command{
		Use:   "calendar",
		Short: "Tasks due on a day (default: today)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, closeFn, err := loadSession(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer closeFn()
			b, err := requireCurrentBoard(sess, boardID)
			if err != nil {
				return writeErr(cmd, err)
			}
			now := sess.Now()
			d := now
			if day != "" {
				d, err = time.ParseInLocation("2006-01-02", day, now.Location())
				if err != nil {
					return writeErr(cmd, err)
				}
			}
			st := sess.State()
			tasks := query.TasksForDay(st, b.ID, d)
			return writeOut(cmd, app, format.Envelope{
				Data:  map[string]any{"day": d.Format("2006-01-02"), "tasks": tasks},
				Table: taskTable(st, tasks, now),
			})
		},
	}
	cmd.Flags().StringVar(&boardID, "board", "", "Board id (default: current board)")
	cmd.Flags().StringVar(&day, "day", "", "Day (YYYY-MM-DD)")
	return cmd
}

func newBoardCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "board",
		Short: "Open the Kanban board TUI",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd, app)
		},
	}
	return cmd
}
