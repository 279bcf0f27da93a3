package session

import (
	"context"

	"planify/internal/model"
	"planify/internal/mutate"
	"planify/internal/state"
)

// Tasks

func (s *Session) CreateTask(ctx context.Context, in mutate.TaskInput) (mutate.Plan, error) {
	p, err := mutate.CreateTask(s.st, s.env(), s.actorID(), in)
	return s.run(ctx, "createTask", p, err)
}

func (s *Session) UpdateTask(ctx context.Context, taskID string, u mutate.TaskUpdate) (mutate.Plan, error) {
	p, err := mutate.UpdateTask(s.st, s.env(), s.actorID(), taskID, u)
	return s.run(ctx, "updateTask", p, err)
}

// MoveTask changes the task's column.
func (s *Session) MoveTask(ctx context.Context, taskID string, status model.TaskStatus) (mutate.Plan, error) {
	p, err := mutate.MoveTask(s.st, s.env(), s.actorID(), taskID, status)
	return s.run(ctx, "moveTask", p, err)
}

func (s *Session) DeleteTask(ctx context.Context, taskID string) (mutate.Plan, error) {
	return s.run(ctx, "deleteTask", mutate.DeleteTask(s.st, s.env(), taskID), nil)
}

func (s *Session) TogglePin(ctx context.Context, taskID string) (mutate.Plan, error) {
	return s.run(ctx, "toggleTaskPin", mutate.TogglePin(s.st, s.env(), s.actorID(), taskID), nil)
}

func (s *Session) AddAttachment(ctx context.Context, taskID string, a model.Attachment) (mutate.Plan, error) {
	p, err := mutate.AddAttachment(s.st, s.env(), s.actorID(), taskID, a)
	return s.run(ctx, "addAttachment", p, err)
}

func (s *Session) RemoveAttachment(ctx context.Context, taskID, attachmentID string) (mutate.Plan, error) {
	return s.run(ctx, "removeAttachment", mutate.RemoveAttachment(s.st, s.env(), s.actorID(), taskID, attachmentID), nil)
}

func (s *Session) AddVoiceMessage(ctx context.Context, taskID, url string, size int64, duration float64) (mutate.Plan, error) {
	p, err := mutate.AddVoiceMessage(s.st, s.env(), s.actorID(), taskID, url, size, duration)
	return s.run(ctx, "addVoiceMessage", p, err)
}

// Comments (admin only)

func (s *Session) AddComment(ctx context.Context, taskID, content string) (mutate.Plan, error) {
	p, err := mutate.AddComment(s.st, s.env(), s.actorID(), taskID, content)
	return s.run(ctx, "addComment", p, err)
}

func (s *Session) UpdateComment(ctx context.Context, taskID, commentID, content string) (mutate.Plan, error) {
	p, err := mutate.UpdateComment(s.st, s.env(), s.actorID(), taskID, commentID, content)
	return s.run(ctx, "updateComment", p, err)
}

func (s *Session) DeleteComment(ctx context.Context, taskID, commentID string) (mutate.Plan, error) {
	p, err := mutate.DeleteComment(s.st, s.env(), s.actorID(), taskID, commentID)
	return s.run(ctx, "deleteComment", p, err)
}

// Users

func (s *Session) AddUser(ctx context.Context, in mutate.UserInput) (mutate.Plan, error) {
	p, err := mutate.AddUser(s.st, s.env(), s.actorID(), in)
	return s.run(ctx, "addUser", p, err)
}

func (s *Session) UpdateUser(ctx context.Context, userID string, u mutate.UserUpdate) (mutate.Plan, error) {
	p, err := mutate.UpdateUser(s.st, s.env(), s.actorID(), userID, u)
	return s.run(ctx, "updateUser", p, err)
}

// UpdateCurrentUser edits the logged-in user's own profile. The role is never changed here.
func (s *Session) UpdateCurrentUser(ctx context.Context, u mutate.UserUpdate) (mutate.Plan, error) {
	id := s.actorID()
	if id == "" {
		return mutate.Plan{}, mutate.ErrNotAuthenticated
	}
	if u.Role != nil {
		return mutate.Plan{}, mutate.ForbiddenError{ActorID: id, Action: "change own role"}
	}
	return s.UpdateUser(ctx, id, u)
}

func (s *Session) DeleteUser(ctx context.Context, userID string) (mutate.Plan, error) {
	p, err := mutate.DeleteUser(s.st, s.env(), s.actorID(), userID)
	return s.run(ctx, "deleteUser", p, err)
}

// AddBoardMember adds an existing user to the current board.
func (s *Session) AddBoardMember(ctx context.Context, username string, role model.Role) (mutate.Plan, error) {
	p, err := mutate.AddBoardMember(s.st, s.env(), s.actorID(), s.st.CurrentBoardID, username, role)
	return s.run(ctx, "addBoardMember", p, err)
}

// Boards

func (s *Session) AddBoard(ctx context.Context, name, description string) (mutate.Plan, error) {
	p, err := mutate.AddBoard(s.st, s.env(), s.actorID(), name, description)
	return s.run(ctx, "addBoard", p, err)
}

func (s *Session) UpdateBoard(ctx context.Context, boardID string, u mutate.BoardUpdate) (mutate.Plan, error) {
	p, err := mutate.UpdateBoard(s.st, s.env(), s.actorID(), boardID, u)
	return s.run(ctx, "updateBoard", p, err)
}

func (s *Session) DeleteBoard(ctx context.Context, boardID string) (mutate.Plan, error) {
	p, err := mutate.DeleteBoard(s.st, s.env(), s.actorID(), boardID)
	return s.run(ctx, "deleteBoard", p, err)
}

func (s *Session) SetCurrentBoard(ctx context.Context, boardID string) (mutate.Plan, error) {
	return s.run(ctx, "setCurrentBoard", mutate.SetCurrentBoard(s.st, boardID), nil)
}

// Auth

func (s *Session) Login(ctx context.Context, usernameOrEmail, password, boardCode string) (mutate.Plan, error) {
	p, err := mutate.Login(s.st, s.env(), usernameOrEmail, password, boardCode)
	return s.run(ctx, "login", p, err)
}

func (s *Session) Register(ctx context.Context, in mutate.RegisterInput) (mutate.Plan, error) {
	p, err := mutate.Register(s.st, s.env(), in)
	return s.run(ctx, "register", p, err)
}

// Logout signs out. Saved credentials are kept for auto-fill.
func (s *Session) Logout(ctx context.Context) error {
	_, err := s.run(ctx, "logout", mutate.Logout(s.st), nil)
	return err
}

func (s *Session) ClearSavedCredentials(ctx context.Context) error {
	_, err := s.run(ctx, "clearSavedCredentials", mutate.ClearSavedCredentials(s.st), nil)
	return err
}

func (s *Session) JoinBoardByCode(ctx context.Context, code string) (mutate.Plan, error) {
	p, err := mutate.JoinBoardByCode(s.st, s.env(), code)
	return s.run(ctx, "joinBoardByCode", p, err)
}

// Notifications

func (s *Session) AddNotification(ctx context.Context, in mutate.NotificationInput) (mutate.Plan, error) {
	p, err := mutate.AddNotification(s.st, s.env(), in)
	return s.run(ctx, "addNotification", p, err)
}

func (s *Session) MarkNotificationRead(ctx context.Context, id string) (mutate.Plan, error) {
	return s.run(ctx, "markNotificationAsRead", mutate.MarkNotificationRead(s.st, id), nil)
}

// MarkAllNotificationsRead marks the current user's unread notifications as read.
func (s *Session) MarkAllNotificationsRead(ctx context.Context) (mutate.Plan, error) {
	id := s.actorID()
	if id == "" {
		return mutate.Plan{}, mutate.ErrNotAuthenticated
	}
	return s.run(ctx, "markAllNotificationsAsRead", mutate.MarkAllNotificationsRead(s.st, id), nil)
}

func (s *Session) DeleteNotification(ctx context.Context, id string) (mutate.Plan, error) {
	return s.run(ctx, "deleteNotification", mutate.DeleteNotification(s.st, id), nil)
}

// CheckDeadlines emits task_deadline reminders for tasks due soon.
func (s *Session) CheckDeadlines(ctx context.Context) (mutate.Plan, error) {
	return s.run(ctx, "checkDeadlines", mutate.CheckDeadlines(s.st, s.env()), nil)
}

// History

func (s *Session) CanUndo() bool { return s.hist.CanUndo() }

func (s *Session) CanRedo() bool { return s.hist.CanRedo() }

// History returns a copy of the log entries and the cursor.
func (s *Session) History() ([]model.HistoryAction, int) {
	return append([]model.HistoryAction{}, s.hist.Entries...), s.hist.Index
}

// Undo reverts the entry under the cursor. It reports false when there is nothing to undo.
func (s *Session) Undo(ctx context.Context) (bool, error) {
	env := s.env()
	var undone model.HistoryAction
	ok := s.hist.Undo(func(e model.HistoryAction) {
		undone = e
		s.st = state.ApplyAll(s.st, mutate.Undo(s.st, env, e)...)
	})
	if !ok {
		return false, nil
	}
	s.logger.Debug("undo", "type", undone.Type, "index", s.hist.Index)
	return true, s.persist(ctx)
}

// Redo re-applies the entry after the cursor. It reports false when there is nothing to redo.
func (s *Session) Redo(ctx context.Context) (bool, error) {
	var redone model.HistoryAction
	ok := s.hist.Redo(func(e model.HistoryAction) {
		redone = e
		s.st = state.ApplyAll(s.st, mutate.Redo(s.st, e)...)
	})
	if !ok {
		return false, nil
	}
	s.logger.Debug("redo", "type", redone.Type, "index", s.hist.Index)
	return true, s.persist(ctx)
}
