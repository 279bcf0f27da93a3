package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	xansi "github.com/charmbracelet/x/ansi"

	"planify/internal/format"
	"planify/internal/model"
	"planify/internal/query"
	"planify/internal/state"
	"planify/internal/store"
)

type view string

const (
	viewBoard     view = "board"
	viewCalendar  view = "calendar"
	viewUsers     view = "users"
	viewAnalytics view = "analytics"
	viewProfile   view = "profile"
	viewManual    view = "manual"
)

// allViews follows store.Views so tab order and the persisted last view agree.
func allViews() []view {
	out := make([]view, 0, len(store.Views))
	for _, v := range store.Views {
		out = append(out, view(v))
	}
	return out
}

func cycleView(cur view, delta int) view {
	vs := allViews()
	for i, v := range vs {
		if v == cur {
			return vs[(i+delta+len(vs))%len(vs)]
		}
	}
	return viewBoard
}

func viewTitle(v view) string {
	switch v {
	case viewBoard:
		return "Board"
	case viewCalendar:
		return "Calendar"
	case viewUsers:
		return "Users"
	case viewAnalytics:
		return "Analytics"
	case viewProfile:
		return "Profile"
	case viewManual:
		return "Manual"
	}
	return string(v)
}

func sectionTitle(s string) string {
	return lipgloss.NewStyle().Bold(true).Foreground(colorAccent).Render(s)
}

func plainTable(headers []string, rows [][]string, width int) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(styleMuted()).
		Headers(headers...).
		Rows(rows...)
	if width > 0 {
		t = t.Width(width)
	}
	return t.String()
}

// renderCalendar lists the board's dated tasks grouped by day, starting at today.
func renderCalendar(st state.State, boardID string, now time.Time, width int) string {
	tasks := query.TasksWithDeadlines(st, boardID)
	if len(tasks) == 0 {
		return styleMuted().Render("No tasks with deadlines.")
	}
	loc := now.Location()
	var b strings.Builder
	lastDay := ""
	for _, t := range tasks {
		d := t.Deadline.In(loc)
		day := d.Format("Mon Jan 2, 2006")
		if day != lastDay {
			if lastDay != "" {
				b.WriteString("\n")
			}
			b.WriteString(sectionTitle(day))
			b.WriteString("\n")
			lastDay = day
		}
		line := fmt.Sprintf("  %s %s  %s", d.Format("15:04"), glyphBullet(), t.Title)
		tag := string(t.Status)
		switch {
		case query.IsOverdue(t, now):
			tag = lipgloss.NewStyle().Foreground(colorOverdue).Render("overdue")
		case query.IsDueSoon(t, now):
			tag = lipgloss.NewStyle().Foreground(colorDueSoon).Render("due soon")
		}
		b.WriteString(xansi.Truncate(line+"  "+styleMuted().Render("["+tag+"]"), width, "…"))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderAnalytics(st state.State, boardID string, now time.Time, width int) string {
	s := query.Summary(st, boardID, now)
	var b strings.Builder
	b.WriteString(sectionTitle("Summary"))
	b.WriteString("\n")
	b.WriteString(plainTable(
		[]string{"Total", "Created", "In progress", "Completed", "Overdue", "Last 7 days", "Done"},
		[][]string{{
			strconv.Itoa(s.Total), strconv.Itoa(s.Created), strconv.Itoa(s.InProgress),
			strconv.Itoa(s.Completed), strconv.Itoa(s.Overdue), strconv.Itoa(s.Recent),
			strconv.Itoa(s.CompletionRate) + "%",
		}}, 0))
	b.WriteString("\n\n")

	b.WriteString(sectionTitle("Monthly"))
	b.WriteString("\n")
	rows := [][]string{}
	for _, m := range query.MonthlyStats(st, boardID, now) {
		rows = append(rows, []string{
			fmt.Sprintf("%s %d", m.Month, m.Year),
			strconv.Itoa(m.TotalTasks), strconv.Itoa(m.CreatedTasks),
			strconv.Itoa(m.InProgressTasks), strconv.Itoa(m.CompletedTasks),
		})
	}
	b.WriteString(plainTable([]string{"Month", "Total", "Created", "In progress", "Completed"}, rows, 0))
	b.WriteString("\n\n")

	b.WriteString(sectionTitle("By member"))
	b.WriteString("\n")
	rows = rows[:0]
	for _, u := range query.UserStatsForBoard(st, boardID) {
		rows = append(rows, []string{
			u.User.Username,
			strconv.Itoa(u.Total), strconv.Itoa(u.Created),
			strconv.Itoa(u.InProgress), strconv.Itoa(u.Completed),
		})
	}
	b.WriteString(plainTable([]string{"Member", "Total", "Created", "In progress", "Completed"}, rows, 0))
	return b.String()
}

func renderUsers(st state.State, boardID string, width int) string {
	members := query.BoardMembers(st, boardID)
	if len(members) == 0 {
		return styleMuted().Render("No members on this board.")
	}
	rows := make([][]string, 0, len(members))
	for _, u := range members {
		rows = append(rows, []string{u.Username, u.FullName(), u.Email, string(u.Role)})
	}
	return plainTable([]string{"Username", "Name", "Email", "Role"}, rows, width)
}

func renderProfile(st state.State, u model.User, now time.Time) string {
	label := styleMuted()
	var b strings.Builder
	b.WriteString(sectionTitle(u.FullName()))
	b.WriteString("\n\n")
	row := func(k, v string) {
		b.WriteString(label.Render(fmt.Sprintf("%-10s", k)))
		b.WriteString(" ")
		b.WriteString(v)
		b.WriteString("\n")
	}
	row("username", u.Username)
	row("email", u.Email)
	row("role", string(u.Role))
	row("joined", format.Ago(u.CreatedAt, now))
	names := []string{}
	for _, bd := range query.BoardsForUser(st, u.ID) {
		names = append(names, bd.Name)
	}
	row("boards", strings.Join(names, ", "))
	return b.String()
}

const manualMarkdown = `# Planify

## Board
- **←/→** pick a column, **↑/↓** pick a card
- **H / L** move the selected card to the previous or next column
- **p** pin or unpin, **x** delete
- **enter** open the task, **esc** close it

## Workspace
- **b** switch to your next board
- **tab / shift+tab** switch views
- **n** open the inbox, **r** mark all as read
- **u** undo, **ctrl+r** redo
- **ctrl+o** sign out, **q** quit

Deadlines within 48 hours produce a reminder in the inbox.
`

func renderManual(width int) string {
	return strings.TrimRight(format.RenderMarkdown(manualMarkdown, width), "\n")
}

func renderInbox(items []model.Notification, now time.Time, width int) string {
	if len(items) == 0 {
		return styleMuted().Render("No notifications.")
	}
	var b strings.Builder
	for i, n := range items {
		if i > 0 {
			b.WriteString("\n")
		}
		mark := " "
		if !n.IsRead {
			mark = lipgloss.NewStyle().Foreground(colorAccent).Render(glyphUnread())
		}
		head := fmt.Sprintf("%s %s  %s", mark, lipgloss.NewStyle().Bold(!n.IsRead).Render(n.Title), styleMuted().Render(format.Ago(n.CreatedAt, now)))
		b.WriteString(xansi.Truncate(head, width, "…"))
		b.WriteString("\n  ")
		b.WriteString(xansi.Truncate(n.Message, max(1, width-2), "…"))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
