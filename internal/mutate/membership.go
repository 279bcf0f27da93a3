package mutate

import (
	"time"

	"planify/internal/model"
	"planify/internal/state"
)

// Membership is stored twice: Board.MemberIDs and User.BoardIDs.
// These helpers emit the reducer actions that keep both sides in step.

// linkUserToBoards adds u to the members of every existing board listed in u.BoardIDs.
func linkUserToBoards(st state.State, u model.User, at time.Time) []state.Action {
	var out []state.Action
	for _, bid := range u.BoardIDs {
		b, ok := st.FindBoard(bid)
		if !ok || b.HasMember(u.ID) {
			continue
		}
		members := withID(b.MemberIDs, u.ID)
		out = append(out, state.UpdateBoard{ID: b.ID, Patch: state.BoardPatch{MemberIDs: &members}, At: at})
	}
	return out
}

// unlinkUserFromBoards removes userID from every board that lists it.
func unlinkUserFromBoards(st state.State, userID string, at time.Time) []state.Action {
	var out []state.Action
	for _, b := range st.Boards {
		if !b.HasMember(userID) {
			continue
		}
		members := withoutID(b.MemberIDs, userID)
		out = append(out, state.UpdateBoard{ID: b.ID, Patch: state.BoardPatch{MemberIDs: &members}, At: at})
	}
	return out
}

// linkBoardToUsers adds b.ID to the BoardIDs of every existing member of b.
func linkBoardToUsers(st state.State, b model.Board) []state.Action {
	var out []state.Action
	for _, uid := range b.MemberIDs {
		u, ok := st.FindUser(uid)
		if !ok || containsID(u.BoardIDs, b.ID) {
			continue
		}
		ids := withID(u.BoardIDs, b.ID)
		out = append(out, state.UpdateUser{ID: u.ID, Patch: state.UserPatch{BoardIDs: &ids}})
	}
	return out
}

// unlinkBoardFromUsers strips boardID from every user's BoardIDs.
func unlinkBoardFromUsers(st state.State, boardID string) []state.Action {
	var out []state.Action
	for _, u := range st.Users {
		if !containsID(u.BoardIDs, boardID) {
			continue
		}
		ids := withoutID(u.BoardIDs, boardID)
		out = append(out, state.UpdateUser{ID: u.ID, Patch: state.UserPatch{BoardIDs: &ids}})
	}
	return out
}

// fallbackBoard is the board selected after boardID disappears: the first remaining one, or none.
func fallbackBoard(st state.State, boardID string) string {
	for _, b := range st.Boards {
		if b.ID != boardID {
			return b.ID
		}
	}
	return ""
}
