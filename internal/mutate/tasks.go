package mutate

import (
	"fmt"
	"strings"
	"time"

	"planify/internal/model"
	"planify/internal/state"
)

// MaxAttachmentSize is the per-file ceiling for attachments and voice messages.
const MaxAttachmentSize = 5 * 1024 * 1024

// ParseDeadline combines a date and a wall-clock time into an instant in loc.
// A deadline needs both parts: date-only and time-only values are rejected.
func ParseDeadline(dt model.DateTime, loc *time.Location) (time.Time, error) {
	date := strings.TrimSpace(dt.Date)
	hm := ""
	if dt.Time != nil {
		hm = strings.TrimSpace(*dt.Time)
	}
	switch {
	case date == "" && hm == "":
		return time.Time{}, ValidationError{Field: "deadline", Reason: "empty"}
	case date == "":
		return time.Time{}, ValidationError{Field: "deadline", Reason: "time given without a date"}
	case hm == "":
		return time.Time{}, ValidationError{Field: "deadline", Reason: "date given without a time"}
	}
	if loc == nil {
		loc = time.Local
	}
	ts, err := time.ParseInLocation("2006-01-02 15:04", date+" "+hm, loc)
	if err != nil {
		return time.Time{}, ValidationError{Field: "deadline", Reason: fmt.Sprintf("expected YYYY-MM-DD and HH:MM, got %q %q", date, hm)}
	}
	return ts, nil
}

func validateDeadline(env Env, dt model.DateTime) (time.Time, error) {
	ts, err := ParseDeadline(dt, env.loc())
	if err != nil {
		return time.Time{}, err
	}
	if !ts.After(env.Now) {
		return time.Time{}, ValidationError{Field: "deadline", Reason: "must be in the future"}
	}
	return ts, nil
}

func validStatus(s model.TaskStatus) bool {
	for _, x := range model.Statuses {
		if x == s {
			return true
		}
	}
	return false
}

func validPriority(p model.Priority) bool {
	return p.Rank() > 0
}

func validateAttachment(a model.Attachment) error {
	if a.Size > MaxAttachmentSize {
		return ValidationError{Field: "attachment", Reason: fmt.Sprintf("%s exceeds the 5MB limit", a.Name)}
	}
	return nil
}

// normalizeAssignees trims, de-duplicates and checks that every id names a user.
func normalizeAssignees(st state.State, ids []string) ([]string, error) {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || containsID(out, id) {
			continue
		}
		if _, ok := st.FindUser(id); !ok {
			return nil, ValidationError{Field: "assigneeIds", Reason: "unknown user " + id}
		}
		out = append(out, id)
	}
	return out, nil
}

type TaskInput struct {
	BoardID     string
	Title       string
	Description string
	Status      model.TaskStatus
	Priority    model.Priority
	AssigneeIDs []string
	Deadline    *model.DateTime
	IsPinned    bool
	Attachments []model.Attachment
}

// CreateTask plans the insertion of a new task on in.BoardID (or the current board).
// Assignees default to the creator; every other assignee gets a task_assigned notification.
func CreateTask(st state.State, env Env, actorID string, in TaskInput) (Plan, error) {
	creator, err := actor(st, actorID)
	if err != nil {
		return Plan{}, err
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return Plan{}, ValidationError{Field: "title", Reason: "must not be empty"}
	}
	if in.Status == "" {
		in.Status = model.StatusCreated
	}
	if !validStatus(in.Status) {
		return Plan{}, ValidationError{Field: "status", Reason: fmt.Sprintf("unknown status %q", in.Status)}
	}
	if in.Priority == "" {
		in.Priority = model.PriorityMedium
	}
	if !validPriority(in.Priority) {
		return Plan{}, ValidationError{Field: "priority", Reason: fmt.Sprintf("unknown priority %q", in.Priority)}
	}
	boardID := strings.TrimSpace(in.BoardID)
	if boardID == "" {
		boardID = st.CurrentBoardID
	}
	if _, ok := st.FindBoard(boardID); !ok {
		return Plan{}, ValidationError{Field: "boardId", Reason: "no such board " + boardID}
	}
	var deadline *time.Time
	if in.Deadline != nil {
		ts, err := validateDeadline(env, *in.Deadline)
		if err != nil {
			return Plan{}, err
		}
		deadline = &ts
	}
	assignees, err := normalizeAssignees(st, in.AssigneeIDs)
	if err != nil {
		return Plan{}, err
	}
	if len(assignees) == 0 {
		assignees = []string{creator.ID}
	}
	attachments := make([]model.Attachment, 0, len(in.Attachments))
	for _, a := range in.Attachments {
		if err := validateAttachment(a); err != nil {
			return Plan{}, err
		}
		if a.ID == "" {
			a.ID = env.id(st, "att")
		}
		attachments = append(attachments, a)
	}

	t := model.Task{
		ID:            env.id(st, "task"),
		Title:         title,
		Description:   in.Description,
		Status:        in.Status,
		Priority:      in.Priority,
		AssigneeIDs:   assignees,
		CreatorID:     creator.ID,
		BoardID:       boardID,
		Deadline:      deadline,
		IsPinned:      in.IsPinned,
		Attachments:   attachments,
		Comments:      []model.Comment{},
		VoiceMessages: []model.VoiceMessage{},
		CreatedAt:     env.Now,
		UpdatedAt:     env.Now,
	}

	var fx Effects
	for _, uid := range t.AssigneeIDs {
		if uid != creator.ID {
			fx.Notify = append(fx.Notify, taskAssigned(st, env, uid, t))
		}
	}
	snap := t
	return Plan{
		Changed: true,
		Actions: []state.Action{state.AddTask{Task: t}},
		Effects: fx,
		History: &model.HistoryAction{
			Type:    model.HistoryAddTask,
			Payload: model.HistoryPayload{ID: t.ID, Task: &snap},
			At:      env.Now,
		},
		Task: &t,
	}, nil
}

// TaskUpdate is a partial edit of a task's user-editable fields.
type TaskUpdate struct {
	Title         *string
	Description   *string
	Status        *model.TaskStatus
	Priority      *model.Priority
	AssigneeIDs   *[]string
	Deadline      *model.DateTime
	ClearDeadline bool
	IsPinned      *bool
}

// UpdateTask validates u and plans a field merge on taskID. A missing task is a no-op.
func UpdateTask(st state.State, env Env, actorID, taskID string, u TaskUpdate) (Plan, error) {
	before, ok := st.FindTask(strings.TrimSpace(taskID))
	if !ok {
		return Plan{}, nil
	}
	var p state.TaskPatch
	if u.Title != nil {
		title := strings.TrimSpace(*u.Title)
		if title == "" {
			return Plan{}, ValidationError{Field: "title", Reason: "must not be empty"}
		}
		p.Title = &title
	}
	p.Description = u.Description
	if u.Status != nil {
		if !validStatus(*u.Status) {
			return Plan{}, ValidationError{Field: "status", Reason: fmt.Sprintf("unknown status %q", *u.Status)}
		}
		p.Status = u.Status
	}
	if u.Priority != nil {
		if !validPriority(*u.Priority) {
			return Plan{}, ValidationError{Field: "priority", Reason: fmt.Sprintf("unknown priority %q", *u.Priority)}
		}
		p.Priority = u.Priority
	}
	if u.AssigneeIDs != nil {
		ids, err := normalizeAssignees(st, *u.AssigneeIDs)
		if err != nil {
			return Plan{}, err
		}
		p.AssigneeIDs = &ids
	}
	if u.ClearDeadline {
		p.ClearDeadline = true
	} else if u.Deadline != nil {
		ts, err := validateDeadline(env, *u.Deadline)
		if err != nil {
			return Plan{}, err
		}
		p.Deadline = &ts
	}
	p.IsPinned = u.IsPinned
	return planTaskPatch(st, env, actorID, before, p), nil
}

// MoveTask is the column change of a drag-and-drop gesture.
func MoveTask(st state.State, env Env, actorID, taskID string, status model.TaskStatus) (Plan, error) {
	return UpdateTask(st, env, actorID, taskID, TaskUpdate{Status: &status})
}

func TogglePin(st state.State, env Env, actorID, taskID string) Plan {
	t, ok := st.FindTask(strings.TrimSpace(taskID))
	if !ok {
		return Plan{}
	}
	pinned := !t.IsPinned
	return planTaskPatch(st, env, actorID, t, state.TaskPatch{IsPinned: &pinned})
}

// planTaskPatch is the shared tail of every task edit: dispatch the patch, derive
// notification effects from the status and assignee transitions, record UPDATE_TASK.
func planTaskPatch(st state.State, env Env, actorID string, before model.Task, p state.TaskPatch) Plan {
	if p.IsEmpty() {
		return Plan{}
	}
	after := p.ApplyTo(before)
	after.UpdatedAt = env.Now

	var fx Effects
	wasDone := before.Status == model.StatusCompleted
	isDone := after.Status == model.StatusCompleted
	if isDone && !wasDone {
		for _, uid := range after.AssigneeIDs {
			if _, ok := st.FindUser(uid); ok {
				fx.Notify = append(fx.Notify, taskCompleted(st, env, uid, after))
			}
		}
	}
	if wasDone && !isDone {
		fx.Purge = completionNotifications(st, before.ID)
	}
	for _, uid := range after.AssigneeIDs {
		if uid != actorID && !before.HasAssignee(uid) {
			fx.Notify = append(fx.Notify, taskAssigned(st, env, uid, after))
		}
	}

	prev, next := before, after
	return Plan{
		Changed: true,
		Actions: []state.Action{state.UpdateTask{ID: before.ID, Patch: p, At: env.Now}},
		Effects: fx,
		History: &model.HistoryAction{
			Type:    model.HistoryUpdateTask,
			Payload: model.HistoryPayload{ID: before.ID, Task: &next},
			Inverse: &model.HistoryPayload{ID: before.ID, Task: &prev},
			At:      env.Now,
		},
		Task: &after,
	}
}

// DeleteTask removes a task. A missing task is a no-op.
func DeleteTask(st state.State, env Env, taskID string) Plan {
	t, ok := st.FindTask(strings.TrimSpace(taskID))
	if !ok {
		return Plan{}
	}
	snap := t
	return Plan{
		Changed: true,
		Actions: []state.Action{state.DeleteTask{ID: t.ID}},
		History: &model.HistoryAction{
			Type:    model.HistoryDeleteTask,
			Payload: model.HistoryPayload{ID: t.ID},
			Inverse: &model.HistoryPayload{ID: t.ID, Task: &snap},
			At:      env.Now,
		},
		Task: &t,
	}
}

// AddAttachment appends a captured file to a task. Files over MaxAttachmentSize are rejected.
func AddAttachment(st state.State, env Env, actorID, taskID string, a model.Attachment) (Plan, error) {
	if err := validateAttachment(a); err != nil {
		return Plan{}, err
	}
	t, ok := st.FindTask(strings.TrimSpace(taskID))
	if !ok {
		return Plan{}, nil
	}
	if a.ID == "" {
		a.ID = env.id(st, "att")
	}
	list := append(append([]model.Attachment{}, t.Attachments...), a)
	return planTaskPatch(st, env, actorID, t, state.TaskPatch{Attachments: &list}), nil
}

func RemoveAttachment(st state.State, env Env, actorID, taskID, attachmentID string) Plan {
	t, ok := st.FindTask(strings.TrimSpace(taskID))
	if !ok {
		return Plan{}
	}
	list := make([]model.Attachment, 0, len(t.Attachments))
	for _, a := range t.Attachments {
		if a.ID != attachmentID {
			list = append(list, a)
		}
	}
	if len(list) == len(t.Attachments) {
		return Plan{}
	}
	return planTaskPatch(st, env, actorID, t, state.TaskPatch{Attachments: &list})
}

// AddVoiceMessage appends a recording by actorID. size is the encoded byte size of the recording.
func AddVoiceMessage(st state.State, env Env, actorID, taskID, url string, size int64, duration float64) (Plan, error) {
	if _, err := actor(st, actorID); err != nil {
		return Plan{}, err
	}
	if size > MaxAttachmentSize {
		return Plan{}, ValidationError{Field: "voiceMessage", Reason: "recording exceeds the 5MB limit"}
	}
	if duration < 0 {
		return Plan{}, ValidationError{Field: "duration", Reason: "must not be negative"}
	}
	t, ok := st.FindTask(strings.TrimSpace(taskID))
	if !ok {
		return Plan{}, nil
	}
	v := model.VoiceMessage{
		ID:        env.id(st, "voice"),
		UserID:    actorID,
		URL:       url,
		Duration:  duration,
		CreatedAt: env.Now,
	}
	list := append(append([]model.VoiceMessage{}, t.VoiceMessages...), v)
	return planTaskPatch(st, env, actorID, t, state.TaskPatch{VoiceMessages: &list}), nil
}
