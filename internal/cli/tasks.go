package cli

import (
	"fmt"
	"strings"

	"planify/internal/format"
	"planify/internal/model"
	"planify/internal/mutate"
	"planify/internal/query"

	"github.com/spf13/cobra"
)

func newTasksCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "Task commands",
	}
	cmd.AddCommand(newTasksCreateCmd(app))
	cmd.AddCommand(newTasksListCmd(app))
	cmd.AddCommand(newTasksShowCmd(app))
	cmd.AddCommand(newTasksUpdateCmd(app))
	cmd.AddCommand(newTasksMoveCmd(app))
	cmd.AddCommand(newTasksPinCmd(app))
	cmd.AddCommand(newTasksDeleteCmd(app))
	cmd.AddCommand(newTasksDeadlinesCmd(app))
	cmd.AddCommand(newAttachmentsCmd(app))
	return cmd
}

// deadlineFlags collects --due/--at into a DateTime. Both are required together.
type deadlineFlags struct {
	date  string
	clock string
	clear bool
}

func (f *deadlineFlags) bind(cmd *cobra.Command, withClear bool) {
	cmd.Flags().StringVar(&f.date, "due", "", "Deadline date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.clock, "at", "", "Deadline time (HH:MM)")
	if withClear {
		cmd.Flags().BoolVar(&f.clear, "clear-deadline", false, "Remove the deadline")
	}
}

func (f *deadlineFlags) value() *model.DateTime {
	if strings.TrimSpace(f.date) == "" && strings.TrimSpace(f.clock) == "" {
		return nil
	}
	dt := model.DateTime{Date: f.date}
	if strings.TrimSpace(f.clock) != "" {
		c := f.clock
		dt.Time = &c
	}
	return &dt
}

func newTasksCreateCmd(app *App) *cobra.Command {
	var description string
	var status string
	var priority string
	var assignees string
	var boardID string
	var pinned bool
	var files []string
	var dl deadlineFlags

	cmd := &cobra.Command{
		Use:   "create <title>",
		Short: "Create a task on the current board",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, closeFn, err := loadSession(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer closeFn()
			if _, err := requireUser(sess); err != nil {
				return writeErr(cmd, err)
			}

			in := mutate.TaskInput{
				BoardID:     boardID,
				Title:       strings.Join(args, " "),
				Description: description,
				Deadline:    dl.value(),
				IsPinned:    pinned,
			}
			if status != "" {
				if in.Status, err = parseStatus(status); err != nil {
					return writeErr(cmd, err)
				}
			}
			if priority != "" {
				if in.Priority, err = parsePriority(priority); err != nil {
					return writeErr(cmd, err)
				}
			}
			if cmd.Flags().Changed("assignees") {
				in.AssigneeIDs = resolveUsers(sess.State(), splitIDs(assignees))
			}
			for _, f := range files {
				a, err := captureAttachment(f)
				if err != nil {
					return writeErr(cmd, err)
				}
				in.Attachments = append(in.Attachments, a)
			}

			p, err := sess.CreateTask(cmd.Context(), in)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, format.Envelope{
				Data: *p.Task,
				Hints: []string{
					"planify tasks show " + p.Task.ID,
					"planify tasks move " + p.Task.ID + " in-progress",
				},
			})
		},
	}

	cmd.Flags().StringVar(&description, "description", "", "Description")
	cmd.Flags().StringVar(&status, "status", "", "Initial column (created|in-progress|completed)")
	cmd.Flags().StringVar(&priority, "priority", "", "Priority (low|medium|high)")
	cmd.Flags().StringVar(&assignees, "assignees", "", "Comma-separated user ids or usernames (default: you)")
	cmd.Flags().StringVar(&boardID, "board", "", "Board id (default: current board)")
	cmd.Flags().BoolVar(&pinned, "pin", false, "Pin the task")
	cmd.Flags().StringArrayVar(&files, "attach", nil, "Attach a file (repeatable)")
	dl.bind(cmd, false)
	return cmd
}

func newTasksListCmd(app *App) *cobra.Command {
	var boardID string
	var status string
	var assignee string
	var search string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks on the current board (pinned first, then priority, then newest)",
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
			st := sess.State()

			tasks := query.TasksForBoard(st, b.ID)
			if strings.TrimSpace(search) != "" {
				tasks = query.SearchTasks(st, b.ID, search)
			}
			if status != "" {
				s, err := parseStatus(status)
				if err != nil {
					return writeErr(cmd, err)
				}
				tasks = filterTasks(tasks, func(t model.Task) bool { return t.Status == s })
			}
			if strings.TrimSpace(assignee) != "" {
				ids := resolveUsers(st, []string{assignee})
				tasks = filterTasks(tasks, func(t model.Task) bool { return len(ids) == 1 && t.HasAssignee(ids[0]) })
			}

			return writeOut(cmd, app, format.Envelope{
				Data:  tasks,
				Table: taskTable(st, tasks, sess.Now()),
				Hints: []string{"planify tasks show <task-id>", "planify board"},
			})
		},
	}
	cmd.Flags().StringVar(&boardID, "board", "", "Board id (default: current board)")
	cmd.Flags().StringVar(&status, "status", "", "Only this column")
	cmd.Flags().StringVar(&assignee, "assignee", "", "Only tasks assigned to this user id or username")
	cmd.Flags().StringVar(&search, "search", "", "Fuzzy match title and description (results ranked by match)")
	return cmd
}

func filterTasks(ts []model.Task, keep func(model.Task) bool) []model.Task {
	out := make([]model.Task, 0, len(ts))
	for _, t := range ts {
		if keep(t) {
			out = append(out, t)
		}
	}
	return out
}

func newTasksShowCmd(app *App) *cobra.Command {
	var render bool
	var width int

	cmd := &cobra.Command{
		Use:   "show <task-id>",
		Short: "Show a task with its assignees and comments",
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
			if render {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), format.RenderMarkdown(format.TaskMarkdown(st, t, sess.Now()), width))
				return err
			}
			// Attachment payloads are large; `attachments save` fetches them.
			atts := make([]model.Attachment, 0, len(t.Attachments))
			for _, a := range t.Attachments {
				a.URL = ""
				atts = append(atts, a)
			}
			t.Attachments = atts
			data := map[string]any{
				"task":      t,
				"assignees": publicUsers(query.Assignees(st, t)),
				"overdue":   query.IsOverdue(t, sess.Now()),
				"dueSoon":   query.IsDueSoon(t, sess.Now()),
			}
			return writeOut(cmd, app, format.Envelope{
				Data: data,
				Hints: []string{
					"planify tasks update " + t.ID + " --title ...",
					"planify comments add " + t.ID + " <text>",
				},
			})
		},
	}
	cmd.Flags().BoolVar(&render, "render", false, "Render the task as formatted text instead of JSON")
	cmd.Flags().IntVar(&width, "width", 80, "Wrap width for --render")
	return cmd
}

func newTasksUpdateCmd(app *App) *cobra.Command {
	var title, description, status, priority, assignees string
	var pinned bool
	var dl deadlineFlags

	cmd := &cobra.Command{
		Use:   "update <task-id>",
		Short: "Update task fields (only flags you pass are changed)",
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
			t, err := requireTask(sess, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}

			var u mutate.TaskUpdate
			if cmd.Flags().Changed("title") {
				u.Title = &title
			}
			if cmd.Flags().Changed("description") {
				u.Description = &description
			}
			if cmd.Flags().Changed("status") {
				s, err := parseStatus(status)
				if err != nil {
					return writeErr(cmd, err)
				}
				u.Status = &s
			}
			if cmd.Flags().Changed("priority") {
				p, err := parsePriority(priority)
				if err != nil {
					return writeErr(cmd, err)
				}
				u.Priority = &p
			}
			if cmd.Flags().Changed("assignees") {
				ids := resolveUsers(sess.State(), splitIDs(assignees))
				u.AssigneeIDs = &ids
			}
			if cmd.Flags().Changed("pin") {
				u.IsPinned = &pinned
			}
			u.Deadline = dl.value()
			u.ClearDeadline = dl.clear

			p, err := sess.UpdateTask(cmd.Context(), t.ID, u)
			if err != nil {
				return writeErr(cmd, err)
			}
			out := t
			if p.Task != nil {
				out = *p.Task
			}
			return writeOut(cmd, app, format.Envelope{
				Data:  map[string]any{"task": out, "changed": p.Changed},
				Hints: []string{"planify undo"},
			})
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "Title")
	cmd.Flags().StringVar(&description, "description", "", "Description")
	cmd.Flags().StringVar(&status, "status", "", "Column (created|in-progress|completed)")
	cmd.Flags().StringVar(&priority, "priority", "", "Priority (low|medium|high)")
	cmd.Flags().StringVar(&assignees, "assignees", "", "Comma-separated user ids or usernames (replaces the list)")
	cmd.Flags().BoolVar(&pinned, "pin", false, "Pinned state")
	dl.bind(cmd, true)
	return cmd
}

func newTasksMoveCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "move <task-id> <created|in-progress|completed>",
		Short: "Move a task to another column",
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
			s, err := parseStatus(args[1])
			if err != nil {
				return writeErr(cmd, err)
			}
			p, err := sess.MoveTask(cmd.Context(), t.ID, s)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, format.Envelope{Data: map[string]any{
				"id":       t.ID,
				"status":   s,
				"changed":  p.Changed,
				"notified": len(p.Effects.Notify),
			}})
		},
	}
	return cmd
}

func newTasksPinCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pin <task-id>",
		Short: "Toggle a task's pinned state",
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
			t, err := requireTask(sess, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			p, err := sess.TogglePin(cmd.Context(), t.ID)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, format.Envelope{Data: map[string]any{"id": t.ID, "isPinned": p.Task.IsPinned}})
		},
	}
	return cmd
}

func newTasksDeleteCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <task-id>",
		Short: "Delete a task (undo restores it)",
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
			t, err := requireTask(sess, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			if _, err := sess.DeleteTask(cmd.Context(), t.ID); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, format.Envelope{
				Data:  map[string]any{"deleted": t.ID},
				Hints: []string{"planify undo"},
			})
		},
	}
	return cmd
}

func newTasksDeadlinesCmd(app *App) *cobra.Command {
	var boardID string
	var check bool

	cmd := &cobra.Command{
		Use:   "deadlines",
		Short: "List tasks with deadlines, soonest first",
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
			notified := 0
			if check {
				p, err := sess.CheckDeadlines(cmd.Context())
				if err != nil {
					return writeErr(cmd, err)
				}
				notified = len(p.Effects.Notify)
			}
			st := sess.State()
			tasks := query.TasksWithDeadlines(st, b.ID)
			return writeOut(cmd, app, format.Envelope{
				Data:  map[string]any{"tasks": tasks, "notified": notified},
				Table: taskTable(st, tasks, sess.Now()),
			})
		},
	}
	cmd.Flags().StringVar(&boardID, "board", "", "Board id (default: current board)")
	cmd.Flags().BoolVar(&check, "check", false, "Also send reminders for open tasks due within 48h")
	return cmd
}
