package mutate

import (
	"planify/internal/model"
	"planify/internal/state"
)

// Undo returns the reducer actions that revert entry against the current state.
//
// Re-inserted users and boards get their membership links back on both sides.
// Undoing a transition into completed also purges the task_completed notifications
// of that task. No other notification is touched.
func Undo(st state.State, env Env, entry model.HistoryAction) []state.Action {
	switch entry.Type {
	case model.HistoryAddTask:
		return []state.Action{state.DeleteTask{ID: entry.Payload.ID}}

	case model.HistoryDeleteTask:
		if entry.Inverse == nil || entry.Inverse.Task == nil {
			return nil
		}
		return []state.Action{state.AddTask{Task: *entry.Inverse.Task}}

	case model.HistoryUpdateTask:
		if entry.Inverse == nil || entry.Inverse.Task == nil {
			return nil
		}
		before := *entry.Inverse.Task
		out := []state.Action{state.UpdateTask{ID: before.ID, Patch: state.PatchFromTask(before), At: before.UpdatedAt}}
		after := entry.Payload.Task
		if after != nil && after.Status == model.StatusCompleted && before.Status != model.StatusCompleted {
			for _, id := range completionNotifications(st, before.ID) {
				out = append(out, state.DeleteNotification{ID: id})
			}
		}
		return out

	case model.HistoryAddUser:
		out := []state.Action{state.DeleteUser{ID: entry.Payload.ID}}
		return append(out, unlinkUserFromBoards(st, entry.Payload.ID, env.Now)...)

	case model.HistoryDeleteUser:
		if entry.Inverse == nil || entry.Inverse.User == nil {
			return nil
		}
		u := *entry.Inverse.User
		if _, exists := st.FindUser(u.ID); exists {
			return nil
		}
		out := []state.Action{state.AddUser{User: u}}
		return append(out, linkUserToBoards(st, u, env.Now)...)

	case model.HistoryAddBoard:
		id := entry.Payload.ID
		out := []state.Action{state.DeleteBoard{ID: id}}
		out = append(out, unlinkBoardFromUsers(st, id)...)
		if st.CurrentBoardID == id {
			out = append(out, state.SetCurrentBoard{BoardID: fallbackBoard(st, id)})
		}
		return out

	case model.HistoryDeleteBoard:
		if entry.Inverse == nil || entry.Inverse.Board == nil {
			return nil
		}
		b := *entry.Inverse.Board
		if _, exists := st.FindBoard(b.ID); exists {
			return nil
		}
		out := []state.Action{state.AddBoard{Board: b}}
		out = append(out, linkBoardToUsers(st, b)...)
		if entry.Inverse.CurrentBoardID == b.ID {
			out = append(out, state.SetCurrentBoard{BoardID: b.ID})
		}
		return out
	}
	return nil
}

// Redo returns the reducer actions that re-apply entry's forward form.
// Cascades are replayed with the entry's own timestamp.
func Redo(st state.State, entry model.HistoryAction) []state.Action {
	at := entry.At
	switch entry.Type {
	case model.HistoryAddTask:
		if entry.Payload.Task == nil {
			return nil
		}
		if _, exists := st.FindTask(entry.Payload.Task.ID); exists {
			return nil
		}
		return []state.Action{state.AddTask{Task: *entry.Payload.Task}}

	case model.HistoryDeleteTask:
		return []state.Action{state.DeleteTask{ID: entry.Payload.ID}}

	case model.HistoryUpdateTask:
		if entry.Payload.Task == nil {
			return nil
		}
		after := *entry.Payload.Task
		return []state.Action{state.UpdateTask{ID: after.ID, Patch: state.PatchFromTask(after), At: after.UpdatedAt}}

	case model.HistoryAddUser:
		if entry.Payload.User == nil {
			return nil
		}
		u := *entry.Payload.User
		if _, exists := st.FindUser(u.ID); exists {
			return nil
		}
		out := []state.Action{state.AddUser{User: u}}
		return append(out, linkUserToBoards(st, u, at)...)

	case model.HistoryDeleteUser:
		out := []state.Action{state.DeleteUser{ID: entry.Payload.ID}}
		return append(out, unlinkUserFromBoards(st, entry.Payload.ID, at)...)

	case model.HistoryAddBoard:
		if entry.Payload.Board == nil {
			return nil
		}
		b := *entry.Payload.Board
		if _, exists := st.FindBoard(b.ID); exists {
			return nil
		}
		out := []state.Action{state.AddBoard{Board: b}}
		return append(out, linkBoardToUsers(st, b)...)

	case model.HistoryDeleteBoard:
		id := entry.Payload.ID
		out := []state.Action{state.DeleteBoard{ID: id}}
		out = append(out, unlinkBoardFromUsers(st, id)...)
		if st.CurrentBoardID == id {
			out = append(out, state.SetCurrentBoard{BoardID: fallbackBoard(st, id)})
		}
		return out
	}
	return nil
}
