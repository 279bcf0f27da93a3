// Package mutate implements the Mutation API as pure planners.
//
// A planner validates its input against a state snapshot and returns a Plan: the
// reducer actions to dispatch, the notification effects they trigger, and the
// action-log entry to record. Planners never touch storage and never read the clock;
// time and id generation come from Env.
package mutate

import (
	"time"

	"planify/internal/model"
	"planify/internal/state"
)

// Env supplies the nondeterministic inputs of a planner.
type Env struct {
	Now      time.Time
	Location *time.Location

	// NewID and NewCode default to the state's random generators when nil.
	NewID   func(prefix string) string
	NewCode func() string
}

func (e Env) id(st state.State, prefix string) string {
	if e.NewID != nil {
		return e.NewID(prefix)
	}
	return st.NextID(prefix)
}

func (e Env) code(st state.State) string {
	if e.NewCode != nil {
		return e.NewCode()
	}
	return st.NewBoardCode()
}

func (e Env) loc() *time.Location {
	if e.Location != nil {
		return e.Location
	}
	return time.Local
}

// Effects are the notification side effects of a mutation.
type Effects struct {
	Notify []model.Notification
	// Purge lists notification ids to delete.
	Purge []string
}

func (e Effects) IsEmpty() bool { return len(e.Notify) == 0 && len(e.Purge) == 0 }

// Actions turns effects into reducer actions: purges first, then new notifications.
func (e Effects) Actions() []state.Action {
	out := make([]state.Action, 0, len(e.Notify)+len(e.Purge))
	for _, id := range e.Purge {
		out = append(out, state.DeleteNotification{ID: id})
	}
	for _, n := range e.Notify {
		out = append(out, state.AddNotification{Notification: n})
	}
	return out
}

// Plan is the outcome of a planner. A zero Plan means nothing to do.
type Plan struct {
	Changed bool
	Actions []state.Action
	Effects Effects
	History *model.HistoryAction

	Task  *model.Task
	User  *model.User
	Board *model.Board
}

// All returns the reducer actions followed by the effect actions.
func (p Plan) All() []state.Action {
	out := append([]state.Action{}, p.Actions...)
	return append(out, p.Effects.Actions()...)
}

// Result applies p to st.
func (p Plan) Result(st state.State) state.State {
	return state.ApplyAll(st, p.All()...)
}

func actor(st state.State, actorID string) (model.User, error) {
	if actorID == "" {
		return model.User{}, ErrNotAuthenticated
	}
	u, ok := st.FindUser(actorID)
	if !ok {
		return model.User{}, ErrNotAuthenticated
	}
	return u, nil
}

func containsID(ids []string, id string) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}

func withoutID(ids []string, id string) []string {
	out := make([]string, 0, len(ids))
	for _, x := range ids {
		if x != id {
			out = append(out, x)
		}
	}
	return out
}

func withID(ids []string, id string) []string {
	out := append([]string{}, ids...)
	if containsID(out, id) {
		return out
	}
	return append(out, id)
}
