package cli

import (
	"fmt"
	"strings"

	"planify/internal/model"
	"planify/internal/mutate"
	"planify/internal/session"
)

func errNotFound(kind, id string) error {
	return mutate.NotFoundError{Kind: kind, ID: id}
}

func requireUser(sess *session.Session) (model.User, error) {
	u, ok := sess.CurrentUser()
	if !ok {
		return model.User{}, fmt.Errorf("%w; run `planify login <username> --password ...`", mutate.ErrNotAuthenticated)
	}
	return u, nil
}

func requireTask(sess *session.Session, id string) (model.Task, error) {
	t, ok := sess.State().FindTask(strings.TrimSpace(id))
	if !ok {
		return model.Task{}, errNotFound("task", id)
	}
	return t, nil
}

func requireBoard(sess *session.Session, id string) (model.Board, error) {
	b, ok := sess.State().FindBoard(strings.TrimSpace(id))
	if !ok {
		return model.Board{}, errNotFound("board", id)
	}
	return b, nil
}

// requireCurrentBoard returns the selected board, or the board given by --board.
func requireCurrentBoard(sess *session.Session, flagBoard string) (model.Board, error) {
	if id := strings.TrimSpace(flagBoard); id != "" {
		return requireBoard(sess, id)
	}
	b, ok := sess.CurrentBoard()
	if !ok {
		return model.Board{}, fmt.Errorf("no current board; run `planify boards use <board-id>`")
	}
	return b, nil
}

func parseStatus(s string) (model.TaskStatus, error) {
	v := model.TaskStatus(strings.ToLower(strings.TrimSpace(s)))
	switch v {
	case "todo", "new":
		return model.StatusCreated, nil
	case "doing", "in_progress", "inprogress":
		return model.StatusInProgress, nil
	case "done":
		return model.StatusCompleted, nil
	}
	for _, x := range model.Statuses {
		if x == v {
			return v, nil
		}
	}
	return "", mutate.ValidationError{Field: "status", Reason: fmt.Sprintf("unknown status %q (expected created|in-progress|completed)", s)}
}

func parsePriority(s string) (model.Priority, error) {
	v := model.Priority(strings.ToLower(strings.TrimSpace(s)))
	switch v {
	case model.PriorityLow, model.PriorityMedium, model.PriorityHigh:
		return v, nil
	}
	return "", mutate.ValidationError{Field: "priority", Reason: fmt.Sprintf("unknown priority %q (expected low|medium|high)", s)}
}

func parseRole(s string) (model.Role, error) {
	v := model.Role(strings.ToLower(strings.TrimSpace(s)))
	switch v {
	case model.RoleAdmin, model.RoleUser:
		return v, nil
	}
	return "", mutate.ValidationError{Field: "role", Reason: fmt.Sprintf("unknown role %q (expected admin|user)", s)}
}

// splitIDs parses a comma-separated id list, dropping blanks.
func splitIDs(s string) []string {
	out := make([]string, 0)
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
