package mutate

import (
	"fmt"
	"strings"
	"time"

	"planify/internal/model"
	"planify/internal/state"
)

// DeadlineWindow is how far ahead CheckDeadlines looks for due tasks.
const DeadlineWindow = 48 * time.Hour

func newNotification(st state.State, env Env, userID string, typ model.NotificationType, title, message, relatedID string) model.Notification {
	return model.Notification{
		ID:        env.id(st, "ntf"),
		UserID:    userID,
		Type:      typ,
		Title:     title,
		Message:   message,
		CreatedAt: env.Now,
		RelatedID: relatedID,
	}
}

func taskAssigned(st state.State, env Env, userID string, t model.Task) model.Notification {
	return newNotification(st, env, userID, model.NotificationTaskAssigned,
		"Task assigned", fmt.Sprintf("You were assigned to task %q", t.Title), t.ID)
}

func taskCompleted(st state.State, env Env, userID string, t model.Task) model.Notification {
	return newNotification(st, env, userID, model.NotificationTaskCompleted,
		"Task completed", fmt.Sprintf("Task %q was completed", t.Title), t.ID)
}

func boardAdded(st state.State, env Env, userID string, b model.Board) model.Notification {
	msg := "You were added to a board by an administrator"
	if b.Name != "" {
		msg = fmt.Sprintf("You were added to board %q", b.Name)
	}
	return newNotification(st, env, userID, model.NotificationBoardAdded, "Added to board", msg, b.ID)
}

func adminAssigned(st state.State, env Env, userID string) model.Notification {
	return newNotification(st, env, userID, model.NotificationAdminAssigned,
		"Administrator role", "You were given the administrator role", "")
}

// completionNotifications returns the ids of task_completed notifications about taskID.
func completionNotifications(st state.State, taskID string) []string {
	var ids []string
	for _, n := range st.Notifications {
		if n.Type == model.NotificationTaskCompleted && n.RelatedID == taskID {
			ids = append(ids, n.ID)
		}
	}
	return ids
}

type NotificationInput struct {
	UserID    string
	Type      model.NotificationType
	Title     string
	Message   string
	RelatedID string
}

func validNotificationType(t model.NotificationType) bool {
	switch t {
	case model.NotificationBoardAdded, model.NotificationAdminAssigned, model.NotificationTaskAssigned,
		model.NotificationTaskDeadline, model.NotificationTaskCompleted:
		return true
	}
	return false
}

// AddNotification appends a notification for in.UserID. It is not undo-able.
func AddNotification(st state.State, env Env, in NotificationInput) (Plan, error) {
	in.UserID = strings.TrimSpace(in.UserID)
	if in.UserID == "" {
		return Plan{}, ValidationError{Field: "userId", Reason: "required"}
	}
	if !validNotificationType(in.Type) {
		return Plan{}, ValidationError{Field: "type", Reason: fmt.Sprintf("unknown notification type %q", in.Type)}
	}
	if strings.TrimSpace(in.Title) == "" {
		return Plan{}, ValidationError{Field: "title", Reason: "required"}
	}
	n := newNotification(st, env, in.UserID, in.Type, strings.TrimSpace(in.Title), in.Message, strings.TrimSpace(in.RelatedID))
	return Plan{Changed: true, Effects: Effects{Notify: []model.Notification{n}}}, nil
}

func MarkNotificationRead(st state.State, id string) Plan {
	n, ok := st.FindNotification(strings.TrimSpace(id))
	if !ok || n.IsRead {
		return Plan{}
	}
	return Plan{Changed: true, Actions: []state.Action{state.UpdateNotification{ID: n.ID, IsRead: true}}}
}

// MarkAllNotificationsRead marks every unread notification of userID as read.
func MarkAllNotificationsRead(st state.State, userID string) Plan {
	var actions []state.Action
	for _, n := range st.Notifications {
		if n.UserID == userID && !n.IsRead {
			actions = append(actions, state.UpdateNotification{ID: n.ID, IsRead: true})
		}
	}
	if len(actions) == 0 {
		return Plan{}
	}
	return Plan{Changed: true, Actions: actions}
}

func DeleteNotification(st state.State, id string) Plan {
	n, ok := st.FindNotification(strings.TrimSpace(id))
	if !ok {
		return Plan{}
	}
	return Plan{Changed: true, Effects: Effects{Purge: []string{n.ID}}}
}

// CheckDeadlines emits a task_deadline notification to each assignee of every open task
// due within DeadlineWindow. A user is notified at most once per task.
func CheckDeadlines(st state.State, env Env) Plan {
	seen := map[string]bool{}
	for _, n := range st.Notifications {
		if n.Type == model.NotificationTaskDeadline {
			seen[n.UserID+"\x00"+n.RelatedID] = true
		}
	}
	var out []model.Notification
	horizon := env.Now.Add(DeadlineWindow)
	for _, t := range st.Tasks {
		if t.Deadline == nil || t.Status == model.StatusCompleted {
			continue
		}
		if t.Deadline.Before(env.Now) || t.Deadline.After(horizon) {
			continue
		}
		for _, uid := range t.AssigneeIDs {
			if _, ok := st.FindUser(uid); !ok {
				continue
			}
			key := uid + "\x00" + t.ID
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, newNotification(st, env, uid, model.NotificationTaskDeadline,
				"Deadline approaching",
				fmt.Sprintf("Task %q is due %s", t.Title, t.Deadline.In(env.loc()).Format("2006-01-02 15:04")),
				t.ID))
		}
	}
	if len(out) == 0 {
		return Plan{}
	}
	return Plan{Changed: true, Effects: Effects{Notify: out}}
}
