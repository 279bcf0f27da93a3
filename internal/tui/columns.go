package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"

	"planify/internal/model"
	"planify/internal/query"
	"planify/internal/state"
)

// Board columns are the three task statuses, in display order.

type boardSelection struct {
	Col  int
	Card int
	// TaskID keeps focus on the same task across re-sorts and status moves.
	TaskID string
}

type boardCard struct {
	Task      model.Task
	Assignees []string
}

type boardCol struct {
	status model.TaskStatus
	label  string
	cards  []boardCard
}

type boardColumns struct {
	cols []boardCol
}

func statusLabel(s model.TaskStatus) string {
	switch s {
	case model.StatusCreated:
		return "CREATED"
	case model.StatusInProgress:
		return "IN PROGRESS"
	case model.StatusCompleted:
		return "COMPLETED"
	}
	return strings.ToUpper(string(s))
}

func buildBoardColumns(st state.State, boardID string) boardColumns {
	byStatus := query.TasksByStatus(st, boardID)
	cols := make([]boardCol, 0, len(model.Statuses))
	for _, s := range model.Statuses {
		c := boardCol{status: s, label: statusLabel(s)}
		for _, t := range byStatus[s] {
			names := make([]string, 0, len(t.AssigneeIDs))
			for _, u := range query.Assignees(st, t) {
				names = append(names, u.Username)
			}
			c.cards = append(c.cards, boardCard{Task: t, Assignees: names})
		}
		cols = append(cols, c)
	}
	return boardColumns{cols: cols}
}

func (b boardColumns) indexOfTask(id string) (int, int, bool) {
	if id == "" {
		return 0, 0, false
	}
	for ci := range b.cols {
		for ii := range b.cols[ci].cards {
			if b.cols[ci].cards[ii].Task.ID == id {
				return ci, ii, true
			}
		}
	}
	return 0, 0, false
}

func (b boardColumns) clamp(sel boardSelection) boardSelection {
	if len(b.cols) == 0 {
		return boardSelection{Card: -1}
	}
	if ci, ii, ok := b.indexOfTask(sel.TaskID); ok {
		sel.Col, sel.Card = ci, ii
	} else {
		sel.TaskID = ""
	}
	sel.Col = max(0, min(sel.Col, len(b.cols)-1))

	n := len(b.cols[sel.Col].cards)
	if n == 0 {
		sel.Card = -1
		return sel
	}
	sel.Card = max(0, min(sel.Card, n-1))
	sel.TaskID = b.cols[sel.Col].cards[sel.Card].Task.ID
	return sel
}

func (b boardColumns) selected(sel boardSelection) (boardCard, bool) {
	sel = b.clamp(sel)
	if sel.Card < 0 {
		return boardCard{}, false
	}
	return b.cols[sel.Col].cards[sel.Card], true
}

// moveCol shifts the selection to a neighbouring column, keeping the row where possible.
func (b boardColumns) moveCol(sel boardSelection, delta int) boardSelection {
	sel = b.clamp(sel)
	sel.Col = max(0, min(sel.Col+delta, len(b.cols)-1))
	sel.TaskID = ""
	return b.clamp(sel)
}

func (b boardColumns) moveCard(sel boardSelection, delta int) boardSelection {
	sel = b.clamp(sel)
	if sel.Card < 0 {
		return sel
	}
	sel.Card += delta
	sel.TaskID = ""
	return b.clamp(sel)
}

// neighbourStatus returns the status delta columns away from s, or false at the edges.
func neighbourStatus(s model.TaskStatus, delta int) (model.TaskStatus, bool) {
	for i, x := range model.Statuses {
		if x == s {
			j := i + delta
			if j < 0 || j >= len(model.Statuses) {
				return "", false
			}
			return model.Statuses[j], true
		}
	}
	return "", false
}

const cardHeight = 5 // border (2) + title + meta + assignees

func renderBoardColumns(board boardColumns, sel boardSelection, now time.Time, width, height int) string {
	n := len(board.cols)
	if n == 0 || width <= 0 || height <= 0 {
		return ""
	}
	sel = board.clamp(sel)

	gap := 1
	colW := (width - gap*(n-1)) / n
	if colW < 16 {
		colW = 16
	}

	headerStyle := lipgloss.NewStyle().Bold(true).Width(colW).Padding(0, 1).
		Foreground(colorSurfaceFg).Background(colorControlBg)
	headerSelectedStyle := headerStyle.Foreground(colorSelectedFg).Background(colorSelectedBg)
	cardStyle := lipgloss.NewStyle().Width(colW-2).Padding(0, 1).
		Border(lipgloss.RoundedBorder()).BorderForeground(colorCardBorder)
	cardSelectedStyle := cardStyle.BorderForeground(colorSelectedBorder).Bold(true)
	innerW := colW - 4
	if innerW < 1 {
		innerW = 1
	}
	muted := styleMuted()

	visible := (height - 2) / cardHeight
	if visible < 1 {
		visible = 1
	}

	rendered := make([]string, 0, n)
	for ci, col := range board.cols {
		hs := headerStyle
		if ci == sel.Col {
			hs = headerSelectedStyle
		}
		lines := []string{hs.Render(fmt.Sprintf("%s (%d)", col.label, len(col.cards)))}

		start := 0
		if ci == sel.Col && sel.Card >= visible {
			start = sel.Card - visible + 1
		}
		end := min(len(col.cards), start+visible)
		if start > 0 {
			lines = append(lines, muted.Render(fmt.Sprintf(" ↑ %d more", start)))
		}
		for i := start; i < end; i++ {
			st := cardStyle
			if ci == sel.Col && i == sel.Card {
				st = cardSelectedStyle
			}
			lines = append(lines, st.Render(renderCardBody(col.cards[i], now, innerW)))
		}
		if rest := len(col.cards) - end; rest > 0 {
			lines = append(lines, muted.Render(fmt.Sprintf(" ↓ %d more", rest)))
		}
		if len(col.cards) == 0 {
			lines = append(lines, muted.Render(" (empty)"))
		}
		rendered = append(rendered, lipgloss.NewStyle().Width(colW).Render(strings.Join(lines, "\n")))
	}

	parts := make([]string, 0, 2*n-1)
	for i, r := range rendered {
		if i > 0 {
			parts = append(parts, strings.Repeat(" ", gap))
		}
		parts = append(parts, r)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func renderCardBody(c boardCard, now time.Time, w int) string {
	t := c.Task
	title := t.Title
	if t.IsPinned {
		title = glyphPin() + " " + title
	}
	title = xansi.Truncate(title, w, "…")

	meta := priorityStyle(t.Priority).Render(strings.ToUpper(string(t.Priority)))
	switch {
	case query.IsOverdue(t, now):
		meta += " " + lipgloss.NewStyle().Foreground(colorOverdue).Render(glyphClock()+" overdue")
	case query.IsDueSoon(t, now):
		meta += " " + lipgloss.NewStyle().Foreground(colorDueSoon).Render(glyphClock()+" "+t.Deadline.In(now.Location()).Format("Jan 2 15:04"))
	case t.Deadline != nil:
		meta += " " + styleMuted().Render(t.Deadline.In(now.Location()).Format("Jan 2"))
	}
	if n := len(t.Comments); n > 0 {
		meta += styleMuted().Render(fmt.Sprintf(" %d✎", n))
	}
	meta = xansi.Truncate(meta, w, "…")

	who := lipgloss.NewStyle().Foreground(colorCardMetaFg).Render(strings.Join(c.Assignees, ", "))
	who = xansi.Truncate(who, w, "…")
	return title + "\n" + meta + "\n" + who
}
