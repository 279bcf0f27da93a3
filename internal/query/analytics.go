package query

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/sahilm/fuzzy"

	"planify/internal/model"
	"planify/internal/state"
)

// DueSoonWindow is how close a deadline has to be for a card to show as due soon.
const DueSoonWindow = 48 * time.Hour

type BoardSummary struct {
	Total          int `json:"total"`
	Created        int `json:"created"`
	InProgress     int `json:"inProgress"`
	Completed      int `json:"completed"`
	Overdue        int `json:"overdue"`
	Recent         int `json:"recent"`
	CompletionRate int `json:"completionRate"`
}

// Summary computes the headline numbers of a board at now.
// Overdue counts open tasks past their deadline; Recent counts tasks created in the last 7 days.
func Summary(st state.State, boardID string, now time.Time) BoardSummary {
	var s BoardSummary
	weekAgo := now.AddDate(0, 0, -7)
	for _, t := range st.Tasks {
		if t.BoardID != boardID {
			continue
		}
		s.Total++
		switch t.Status {
		case model.StatusCreated:
			s.Created++
		case model.StatusInProgress:
			s.InProgress++
		case model.StatusCompleted:
			s.Completed++
		}
		if IsOverdue(t, now) {
			s.Overdue++
		}
		if t.CreatedAt.After(weekAgo) {
			s.Recent++
		}
	}
	if s.Total > 0 {
		s.CompletionRate = int(math.Round(float64(s.Completed) / float64(s.Total) * 100))
	}
	return s
}

func IsOverdue(t model.Task, now time.Time) bool {
	return t.Deadline != nil && t.Deadline.Before(now) && t.Status != model.StatusCompleted
}

// IsDueSoon reports an open task whose deadline is still ahead but within DueSoonWindow.
func IsDueSoon(t model.Task, now time.Time) bool {
	if t.Deadline == nil || t.Status == model.StatusCompleted {
		return false
	}
	return !t.Deadline.Before(now) && t.Deadline.Sub(now) <= DueSoonWindow
}

// MonthlyStats buckets the board's tasks by creation month, from the board's creation
// month through now's month. Months are computed in now's location.
func MonthlyStats(st state.State, boardID string, now time.Time) []model.MonthlyStats {
	b, ok := st.FindBoard(boardID)
	if !ok {
		return []model.MonthlyStats{}
	}
	loc := now.Location()
	start := monthStart(b.CreatedAt.In(loc))
	end := monthStart(now)
	out := make([]model.MonthlyStats, 0)
	for m := start; !m.After(end); m = m.AddDate(0, 1, 0) {
		next := m.AddDate(0, 1, 0)
		ms := model.MonthlyStats{Month: m.Format("Jan 2006"), Year: m.Year()}
		for _, t := range st.Tasks {
			if t.BoardID != boardID {
				continue
			}
			c := t.CreatedAt.In(loc)
			if c.Before(m) || !c.Before(next) {
				continue
			}
			ms.TotalTasks++
			switch t.Status {
			case model.StatusCompleted:
				ms.CompletedTasks++
			case model.StatusInProgress:
				ms.InProgressTasks++
			case model.StatusCreated:
				ms.CreatedTasks++
			}
		}
		out = append(out, ms)
	}
	return out
}

func monthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// TasksForDay returns the board's tasks whose deadline falls on day's calendar date
// in day's location, in board order.
func TasksForDay(st state.State, boardID string, day time.Time) []model.Task {
	y, m, d := day.Date()
	out := make([]model.Task, 0)
	for _, t := range TasksForBoard(st, boardID) {
		if t.Deadline == nil {
			continue
		}
		ty, tm, td := t.Deadline.In(day.Location()).Date()
		if ty == y && tm == m && td == d {
			out = append(out, t)
		}
	}
	return out
}

// TasksWithDeadlines returns the board's tasks that have a deadline, soonest first.
func TasksWithDeadlines(st state.State, boardID string) []model.Task {
	out := make([]model.Task, 0)
	for _, t := range TasksForBoard(st, boardID) {
		if t.Deadline != nil {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Deadline.Before(*out[j].Deadline) })
	return out
}

type taskSource []model.Task

func (s taskSource) String(i int) string { return s[i].Title + " " + s[i].Description }
func (s taskSource) Len() int            { return len(s) }

// SearchTasks fuzzy-matches pattern against the title and description of the board's tasks.
// Results are ordered by match score, best first. An empty pattern returns every task.
func SearchTasks(st state.State, boardID, pattern string) []model.Task {
	tasks := TasksForBoard(st, boardID)
	pattern = strings.TrimSpace(pattern)
	if pattern == "" {
		return tasks
	}
	matches := fuzzy.FindFrom(pattern, taskSource(tasks))
	out := make([]model.Task, 0, len(matches))
	for _, m := range matches {
		out = append(out, tasks[m.Index])
	}
	return out
}
