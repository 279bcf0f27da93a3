package state

import (
	"time"

	"planify/internal/model"
)

// Action is the closed set of state transitions understood by Apply.
// Variants are sealed by the unexported marker method.
type Action interface {
	Type() string
	isAction()
}

type SetUsers struct{ Users []model.User }
type SetTasks struct{ Tasks []model.Task }
type SetBoards struct{ Boards []model.Board }
type SetNotifications struct{ Notifications []model.Notification }
type SetCurrentBoard struct{ BoardID string }
type SetSavedCredentials struct{ Credentials *model.Credentials }

type AddTask struct{ Task model.Task }

// UpdateTask merges Patch into the task and sets UpdatedAt to At.
type UpdateTask struct {
	ID    string
	Patch TaskPatch
	At    time.Time
}
type DeleteTask struct{ ID string }

type AddUser struct{ User model.User }
type UpdateUser struct {
	ID    string
	Patch UserPatch
}
type DeleteUser struct{ ID string }

type AddBoard struct{ Board model.Board }
type UpdateBoard struct {
	ID    string
	Patch BoardPatch
	At    time.Time
}
type DeleteBoard struct{ ID string }

type AddNotification struct{ Notification model.Notification }
type UpdateNotification struct {
	ID     string
	IsRead bool
}
type DeleteNotification struct{ ID string }

type Login struct{ UserID string }
type Logout struct{}
type RestoreState struct{ State State }

func (SetUsers) Type() string            { return "SET_USERS" }
func (SetTasks) Type() string            { return "SET_TASKS" }
func (SetBoards) Type() string           { return "SET_BOARDS" }
func (SetNotifications) Type() string    { return "SET_NOTIFICATIONS" }
func (SetCurrentBoard) Type() string     { return "SET_CURRENT_BOARD" }
func (SetSavedCredentials) Type() string { return "SET_SAVED_CREDENTIALS" }
func (AddTask) Type() string             { return "ADD_TASK" }
func (UpdateTask) Type() string          { return "UPDATE_TASK" }
func (DeleteTask) Type() string          { return "DELETE_TASK" }
func (AddUser) Type() string             { return "ADD_USER" }
func (UpdateUser) Type() string          { return "UPDATE_USER" }
func (DeleteUser) Type() string          { return "DELETE_USER" }
func (AddBoard) Type() string            { return "ADD_BOARD" }
func (UpdateBoard) Type() string         { return "UPDATE_BOARD" }
func (DeleteBoard) Type() string         { return "DELETE_BOARD" }
func (AddNotification) Type() string     { return "ADD_NOTIFICATION" }
func (UpdateNotification) Type() string  { return "UPDATE_NOTIFICATION" }
func (DeleteNotification) Type() string  { return "DELETE_NOTIFICATION" }
func (Login) Type() string               { return "LOGIN" }
func (Logout) Type() string              { return "LOGOUT" }
func (RestoreState) Type() string        { return "RESTORE_STATE" }

func (SetUsers) isAction()            {}
func (SetTasks) isAction()            {}
func (SetBoards) isAction()           {}
func (SetNotifications) isAction()    {}
func (SetCurrentBoard) isAction()     {}
func (SetSavedCredentials) isAction() {}
func (AddTask) isAction()             {}
func (UpdateTask) isAction()          {}
func (DeleteTask) isAction()          {}
func (AddUser) isAction()             {}
func (UpdateUser) isAction()          {}
func (DeleteUser) isAction()          {}
func (AddBoard) isAction()            {}
func (UpdateBoard) isAction()         {}
func (DeleteBoard) isAction()         {}
func (AddNotification) isAction()     {}
func (UpdateNotification) isAction()  {}
func (DeleteNotification) isAction()  {}
func (Login) isAction()               {}
func (Logout) isAction()              {}
func (RestoreState) isAction()        {}
