// Package query derives read-only views from a state snapshot.
// Every function recomputes from scratch; nothing is cached.
package query

import (
	"sort"

	"planify/internal/model"
	"planify/internal/state"
)

// TasksForBoard returns the tasks of boardID ordered for display:
// pinned first, then by priority (high to low), then newest first.
// Assignee ids that no longer name a user are dropped from the returned copies.
func TasksForBoard(st state.State, boardID string) []model.Task {
	out := make([]model.Task, 0)
	for _, t := range st.Tasks {
		if t.BoardID == boardID {
			out = append(out, liveAssignees(st, t))
		}
	}
	SortTasks(out)
	return out
}

// SortTasks sorts in place with the board ordering.
func SortTasks(ts []model.Task) {
	sort.SliceStable(ts, func(i, j int) bool {
		a, b := ts[i], ts[j]
		if a.IsPinned != b.IsPinned {
			return a.IsPinned
		}
		if ra, rb := a.Priority.Rank(), b.Priority.Rank(); ra != rb {
			return ra > rb
		}
		return a.CreatedAt.After(b.CreatedAt)
	})
}

// TasksByStatus groups the board's sorted tasks into columns.
func TasksByStatus(st state.State, boardID string) map[model.TaskStatus][]model.Task {
	cols := make(map[model.TaskStatus][]model.Task, len(model.Statuses))
	for _, s := range model.Statuses {
		cols[s] = []model.Task{}
	}
	for _, t := range TasksForBoard(st, boardID) {
		cols[t.Status] = append(cols[t.Status], t)
	}
	return cols
}

func liveAssignees(st state.State, t model.Task) model.Task {
	ids := make([]string, 0, len(t.AssigneeIDs))
	for _, id := range t.AssigneeIDs {
		if _, ok := st.FindUser(id); ok {
			ids = append(ids, id)
		}
	}
	t.AssigneeIDs = ids
	return t
}

// Assignees resolves a task's assignee ids, skipping dangling ones.
func Assignees(st state.State, t model.Task) []model.User {
	out := make([]model.User, 0, len(t.AssigneeIDs))
	for _, id := range t.AssigneeIDs {
		if u, ok := st.FindUser(id); ok {
			out = append(out, u)
		}
	}
	return out
}

// BoardMembers returns the users whose BoardIDs contain boardID.
func BoardMembers(st state.State, boardID string) []model.User {
	out := make([]model.User, 0)
	for _, u := range st.Users {
		for _, id := range u.BoardIDs {
			if id == boardID {
				out = append(out, u)
				break
			}
		}
	}
	return out
}

// BoardsForUser returns the existing boards listed in the user's BoardIDs, in that order.
func BoardsForUser(st state.State, userID string) []model.Board {
	out := make([]model.Board, 0)
	u, ok := st.FindUser(userID)
	if !ok {
		return out
	}
	for _, id := range u.BoardIDs {
		if b, ok := st.FindBoard(id); ok {
			out = append(out, b)
		}
	}
	return out
}

type UserStats struct {
	User       model.User `json:"user"`
	Total      int        `json:"total"`
	Created    int        `json:"created"`
	InProgress int        `json:"inProgress"`
	Completed  int        `json:"completed"`
}

// UserStatsForBoard counts, for each board member, the board's tasks assigned to them by status.
func UserStatsForBoard(st state.State, boardID string) []UserStats {
	members := BoardMembers(st, boardID)
	out := make([]UserStats, 0, len(members))
	for _, u := range members {
		s := UserStats{User: u}
		for _, t := range st.Tasks {
			if t.BoardID != boardID || !t.HasAssignee(u.ID) {
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
		}
		out = append(out, s)
	}
	return out
}

// NotificationsFor returns the user's notifications, newest first.
func NotificationsFor(st state.State, userID string) []model.Notification {
	out := make([]model.Notification, 0)
	for _, n := range st.Notifications {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func UnreadNotificationsFor(st state.State, userID string) []model.Notification {
	out := make([]model.Notification, 0)
	for _, n := range st.Notifications {
		if n.UserID == userID && !n.IsRead {
			out = append(out, n)
		}
	}
	return out
}
