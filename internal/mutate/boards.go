package mutate

import (
	"strings"

	"planify/internal/model"
	"planify/internal/perm"
	"planify/internal/state"
)

// AddBoard creates a board owned by actorID, who becomes its only member.
func AddBoard(st state.State, env Env, actorID, name, description string) (Plan, error) {
	creator, err := actor(st, actorID)
	if err != nil {
		return Plan{}, err
	}
	name = strings.ToUpper(strings.TrimSpace(name))
	if name == "" {
		return Plan{}, ValidationError{Field: "name", Reason: "must not be empty"}
	}
	b := model.Board{
		ID:          env.id(st, "board"),
		Name:        name,
		Description: strings.ToUpper(strings.TrimSpace(description)),
		Code:        env.code(st),
		CreatedBy:   creator.ID,
		MemberIDs:   []string{creator.ID},
		CreatedAt:   env.Now,
		UpdatedAt:   env.Now,
	}
	actions := []state.Action{state.AddBoard{Board: b}}
	actions = append(actions, linkBoardToUsers(st, b)...)
	snap := b
	return Plan{
		Changed: true,
		Actions: actions,
		History: &model.HistoryAction{
			Type:    model.HistoryAddBoard,
			Payload: model.HistoryPayload{ID: b.ID, Board: &snap},
			At:      env.Now,
		},
		Board: &b,
	}, nil
}

type BoardUpdate struct {
	Name        *string
	Description *string
}

// UpdateBoard renames or re-describes a board. Values are upper-cased. Not undo-able.
func UpdateBoard(st state.State, env Env, actorID, boardID string, u BoardUpdate) (Plan, error) {
	before, ok := st.FindBoard(strings.TrimSpace(boardID))
	if !ok {
		return Plan{}, nil
	}
	a, err := actor(st, actorID)
	if err != nil {
		return Plan{}, err
	}
	if !perm.CanEditBoard(&a) {
		return Plan{}, ForbiddenError{ActorID: actorID, Action: "edit board"}
	}
	var p state.BoardPatch
	if u.Name != nil {
		v := strings.ToUpper(strings.TrimSpace(*u.Name))
		if v == "" {
			return Plan{}, ValidationError{Field: "name", Reason: "must not be empty"}
		}
		p.Name = &v
	}
	if u.Description != nil {
		v := strings.ToUpper(strings.TrimSpace(*u.Description))
		p.Description = &v
	}
	if p.Name == nil && p.Description == nil {
		return Plan{}, nil
	}
	after := p.ApplyTo(before)
	after.UpdatedAt = env.Now
	return Plan{
		Changed: true,
		Actions: []state.Action{state.UpdateBoard{ID: before.ID, Patch: p, At: env.Now}},
		Board:   &after,
	}, nil
}

// DeleteBoard removes a board, strips it from every user and moves the selection
// off it when it was the current board. Its tasks are left in place.
func DeleteBoard(st state.State, env Env, actorID, boardID string) (Plan, error) {
	b, ok := st.FindBoard(strings.TrimSpace(boardID))
	if !ok {
		return Plan{}, nil
	}
	a, err := actor(st, actorID)
	if err != nil {
		return Plan{}, err
	}
	if !perm.CanDeleteBoard(st, &a, b) {
		return Plan{}, ForbiddenError{ActorID: actorID, Action: "delete board"}
	}
	actions := []state.Action{state.DeleteBoard{ID: b.ID}}
	actions = append(actions, unlinkBoardFromUsers(st, b.ID)...)
	inverse := &model.HistoryPayload{ID: b.ID}
	if st.CurrentBoardID == b.ID {
		actions = append(actions, state.SetCurrentBoard{BoardID: fallbackBoard(st, b.ID)})
		inverse.CurrentBoardID = b.ID
	}
	snap := b
	inverse.Board = &snap
	return Plan{
		Changed: true,
		Actions: actions,
		History: &model.HistoryAction{
			Type:    model.HistoryDeleteBoard,
			Payload: model.HistoryPayload{ID: b.ID},
			Inverse: inverse,
			At:      env.Now,
		},
		Board: &b,
	}, nil
}

// SetCurrentBoard selects boardID. Unknown boards are a no-op.
func SetCurrentBoard(st state.State, boardID string) Plan {
	b, ok := st.FindBoard(strings.TrimSpace(boardID))
	if !ok || st.CurrentBoardID == b.ID {
		return Plan{}
	}
	return Plan{Changed: true, Actions: []state.Action{state.SetCurrentBoard{BoardID: b.ID}}, Board: &b}
}
