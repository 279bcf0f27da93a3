package perm

import (
	"planify/internal/model"
	"planify/internal/state"
)

// CanManageComments reports whether actor may add, edit or delete task comments.
// Comment CRUD is admin-only.
func CanManageComments(actor *model.User) bool {
	return actor != nil && actor.IsAdmin()
}

// CanManageUsers reports whether actor may invite, edit or delete other accounts
// and add existing users to boards.
func CanManageUsers(actor *model.User) bool {
	return actor != nil && actor.IsAdmin()
}

// CanChangeRole reports whether actor may set the role of userID.
// Nobody changes their own role, admins included.
func CanChangeRole(actor *model.User, userID string) bool {
	return CanManageUsers(actor) && actor.ID != userID
}

// CanEditBoard reports whether actor may rename or re-describe a board.
func CanEditBoard(actor *model.User) bool {
	return actor != nil && actor.IsAdmin()
}

// CanDeleteBoard enforces the board deletion rules:
//   - admins can delete any board
//   - the creator can delete their own board while more than one board exists
func CanDeleteBoard(st state.State, actor *model.User, b model.Board) bool {
	if actor == nil {
		return false
	}
	if actor.IsAdmin() {
		return true
	}
	return b.CreatedBy == actor.ID && len(st.Boards) > 1
}

// CanDeleteUser forbids deleting your own account.
func CanDeleteUser(actor *model.User, userID string) bool {
	if actor == nil {
		return false
	}
	return actor.ID != userID
}
