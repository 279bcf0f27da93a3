package state

import "planify/internal/model"

// Apply returns the state that results from a. It never mutates s, never fails,
// and returns s unchanged for unknown or nil actions.
//
// Apply does not cascade: deleting a board leaves stale ids in users' BoardIDs.
// Keeping references symmetric is the job of the mutate package.
func Apply(s State, a Action) State {
	switch a := a.(type) {
	case Login:
		s.CurrentUserID = a.UserID
		s.IsAuthenticated = true
	case Logout:
		s.CurrentUserID = ""
		s.IsAuthenticated = false
	case SetUsers:
		s.Users = append([]model.User{}, a.Users...)
	case SetTasks:
		s.Tasks = append([]model.Task{}, a.Tasks...)
	case SetBoards:
		s.Boards = append([]model.Board{}, a.Boards...)
	case SetNotifications:
		s.Notifications = append([]model.Notification{}, a.Notifications...)
	case SetCurrentBoard:
		s.CurrentBoardID = a.BoardID
	case SetSavedCredentials:
		if a.Credentials == nil {
			s.SavedCredentials = nil
		} else {
			c := *a.Credentials
			s.SavedCredentials = &c
		}

	case AddTask:
		s.Tasks = appendCopy(s.Tasks, cloneTask(a.Task))
	case UpdateTask:
		s.Tasks = mapCopy(s.Tasks, func(t model.Task) (model.Task, bool) {
			if t.ID != a.ID {
				return t, false
			}
			t = a.Patch.ApplyTo(t)
			t.UpdatedAt = a.At
			return t, true
		})
	case DeleteTask:
		s.Tasks = filterCopy(s.Tasks, func(t model.Task) bool { return t.ID != a.ID })

	case AddUser:
		s.Users = appendCopy(s.Users, cloneUser(a.User))
	case UpdateUser:
		s.Users = mapCopy(s.Users, func(u model.User) (model.User, bool) {
			if u.ID != a.ID {
				return u, false
			}
			return a.Patch.ApplyTo(u), true
		})
	case DeleteUser:
		s.Users = filterCopy(s.Users, func(u model.User) bool { return u.ID != a.ID })

	case AddBoard:
		s.Boards = appendCopy(s.Boards, cloneBoard(a.Board))
	case UpdateBoard:
		s.Boards = mapCopy(s.Boards, func(b model.Board) (model.Board, bool) {
			if b.ID != a.ID {
				return b, false
			}
			b = a.Patch.ApplyTo(b)
			b.UpdatedAt = a.At
			return b, true
		})
	case DeleteBoard:
		s.Boards = filterCopy(s.Boards, func(b model.Board) bool { return b.ID != a.ID })

	case AddNotification:
		s.Notifications = appendCopy(s.Notifications, a.Notification)
	case UpdateNotification:
		s.Notifications = mapCopy(s.Notifications, func(n model.Notification) (model.Notification, bool) {
			if n.ID != a.ID {
				return n, false
			}
			n.IsRead = a.IsRead
			return n, true
		})
	case DeleteNotification:
		s.Notifications = filterCopy(s.Notifications, func(n model.Notification) bool { return n.ID != a.ID })

	case RestoreState:
		return a.State.Clone()
	}
	return s
}

// ApplyAll folds Apply over actions.
func ApplyAll(s State, actions ...Action) State {
	for _, a := range actions {
		s = Apply(s, a)
	}
	return s
}

func appendCopy[T any](xs []T, x T) []T {
	out := make([]T, 0, len(xs)+1)
	out = append(out, xs...)
	return append(out, x)
}

// mapCopy returns xs itself when fn reports no change, so untouched collections keep their identity.
func mapCopy[T any](xs []T, fn func(T) (T, bool)) []T {
	var out []T
	for i, x := range xs {
		y, changed := fn(x)
		if !changed {
			if out != nil {
				out[i] = x
			}
			continue
		}
		if out == nil {
			out = make([]T, len(xs))
			copy(out, xs[:i])
		}
		out[i] = y
	}
	if out == nil {
		return xs
	}
	return out
}

func filterCopy[T any](xs []T, keep func(T) bool) []T {
	out := make([]T, 0, len(xs))
	for _, x := range xs {
		if keep(x) {
			out = append(out, x)
		}
	}
	return out
}
