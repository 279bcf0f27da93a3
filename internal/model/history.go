package model

import "time"

// HistoryType names the undo-able operations recorded in the action log.
type HistoryType string

const (
	HistoryAddTask     HistoryType = "ADD_TASK"
	HistoryUpdateTask  HistoryType = "UPDATE_TASK"
	HistoryDeleteTask  HistoryType = "DELETE_TASK"
	HistoryAddUser     HistoryType = "ADD_USER"
	HistoryDeleteUser  HistoryType = "DELETE_USER"
	HistoryAddBoard    HistoryType = "ADD_BOARD"
	HistoryDeleteBoard HistoryType = "DELETE_BOARD"
)

// HistoryPayload carries entity snapshots. Which fields are set depends on the HistoryType:
//   - ADD_*: payload holds the inserted entity
//   - DELETE_*: payload holds the id, inverse holds the deleted entity
//   - UPDATE_TASK: payload holds the task after the update, inverse holds it before
type HistoryPayload struct {
	ID    string `json:"id,omitempty"`
	Task  *Task  `json:"task,omitempty"`
	User  *User  `json:"user,omitempty"`
	Board *Board `json:"board,omitempty"`

	// CurrentBoardID is the selection before a DELETE_BOARD, restored on undo.
	CurrentBoardID string `json:"currentBoardId,omitempty"`
}

// HistoryAction is one invertible entry of the action log.
// At is the time of the forward operation; redo replays cascades with it.
type HistoryAction struct {
	Type    HistoryType     `json:"type"`
	Payload HistoryPayload  `json:"payload"`
	Inverse *HistoryPayload `json:"inverse,omitempty"`
	At      time.Time       `json:"at"`
}
