package mutate

import (
	"strings"

	"planify/internal/model"
	"planify/internal/perm"
	"planify/internal/state"
)

func commentActor(st state.State, actorID, action string) (model.User, error) {
	u, err := actor(st, actorID)
	if err != nil {
		return model.User{}, err
	}
	if !perm.CanManageComments(&u) {
		return model.User{}, ForbiddenError{ActorID: actorID, Action: action}
	}
	return u, nil
}

// AddComment appends an admin comment to a task through the task update path.
func AddComment(st state.State, env Env, actorID, taskID, content string) (Plan, error) {
	u, err := commentActor(st, actorID, "add comment")
	if err != nil {
		return Plan{}, err
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return Plan{}, ValidationError{Field: "content", Reason: "must not be empty"}
	}
	t, ok := st.FindTask(strings.TrimSpace(taskID))
	if !ok {
		return Plan{}, nil
	}
	c := model.Comment{
		ID:        env.id(st, "cmt"),
		UserID:    u.ID,
		Content:   content,
		CreatedAt: env.Now,
	}
	list := append(append([]model.Comment{}, t.Comments...), c)
	return planTaskPatch(st, env, actorID, t, state.TaskPatch{Comments: &list}), nil
}

func UpdateComment(st state.State, env Env, actorID, taskID, commentID, content string) (Plan, error) {
	if _, err := commentActor(st, actorID, "edit comment"); err != nil {
		return Plan{}, err
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return Plan{}, ValidationError{Field: "content", Reason: "must not be empty"}
	}
	t, ok := st.FindTask(strings.TrimSpace(taskID))
	if !ok {
		return Plan{}, nil
	}
	found := false
	list := make([]model.Comment, len(t.Comments))
	for i, c := range t.Comments {
		if c.ID == commentID {
			found = true
			if c.Content == content {
				return Plan{}, nil
			}
			c.Content = content
		}
		list[i] = c
	}
	if !found {
		return Plan{}, nil
	}
	return planTaskPatch(st, env, actorID, t, state.TaskPatch{Comments: &list}), nil
}

func DeleteComment(st state.State, env Env, actorID, taskID, commentID string) (Plan, error) {
	if _, err := commentActor(st, actorID, "delete comment"); err != nil {
		return Plan{}, err
	}
	t, ok := st.FindTask(strings.TrimSpace(taskID))
	if !ok {
		return Plan{}, nil
	}
	list := make([]model.Comment, 0, len(t.Comments))
	for _, c := range t.Comments {
		if c.ID != commentID {
			list = append(list, c)
		}
	}
	if len(list) == len(t.Comments) {
		return Plan{}, nil
	}
	return planTaskPatch(st, env, actorID, t, state.TaskPatch{Comments: &list}), nil
}
