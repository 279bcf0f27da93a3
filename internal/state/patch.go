package state

import (
	"time"

	"planify/internal/model"
)

// TaskPatch is a partial task update. Nil fields are left untouched.
// ClearDeadline removes the deadline and wins over Deadline.
type TaskPatch struct {
	Title         *string               `json:"title,omitempty"`
	Description   *string               `json:"description,omitempty"`
	Status        *model.TaskStatus     `json:"status,omitempty"`
	Priority      *model.Priority       `json:"priority,omitempty"`
	AssigneeIDs   *[]string             `json:"assigneeIds,omitempty"`
	Deadline      *time.Time            `json:"deadline,omitempty"`
	ClearDeadline bool                  `json:"clearDeadline,omitempty"`
	IsPinned      *bool                 `json:"isPinned,omitempty"`
	Attachments   *[]model.Attachment   `json:"attachments,omitempty"`
	Comments      *[]model.Comment      `json:"comments,omitempty"`
	VoiceMessages *[]model.VoiceMessage `json:"voiceMessages,omitempty"`
}

func (p TaskPatch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.Status == nil && p.Priority == nil &&
		p.AssigneeIDs == nil && p.Deadline == nil && !p.ClearDeadline && p.IsPinned == nil &&
		p.Attachments == nil && p.Comments == nil && p.VoiceMessages == nil
}

// ApplyTo returns t with the patch merged in. Slices are copied.
func (p TaskPatch) ApplyTo(t model.Task) model.Task {
	t = cloneTask(t)
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.AssigneeIDs != nil {
		t.AssigneeIDs = cloneStrings(*p.AssigneeIDs)
	}
	if p.ClearDeadline {
		t.Deadline = nil
	} else if p.Deadline != nil {
		d := *p.Deadline
		t.Deadline = &d
	}
	if p.IsPinned != nil {
		t.IsPinned = *p.IsPinned
	}
	if p.Attachments != nil {
		t.Attachments = append([]model.Attachment{}, (*p.Attachments)...)
	}
	if p.Comments != nil {
		t.Comments = append([]model.Comment{}, (*p.Comments)...)
	}
	if p.VoiceMessages != nil {
		t.VoiceMessages = append([]model.VoiceMessage{}, (*p.VoiceMessages)...)
	}
	return t
}

// PatchFromTask builds a patch that overwrites every mutable field with t's values.
// Undo and redo use it to put a snapshot back in place.
func PatchFromTask(t model.Task) TaskPatch {
	t = cloneTask(t)
	p := TaskPatch{
		Title:         &t.Title,
		Description:   &t.Description,
		Status:        &t.Status,
		Priority:      &t.Priority,
		AssigneeIDs:   &t.AssigneeIDs,
		IsPinned:      &t.IsPinned,
		Attachments:   &t.Attachments,
		Comments:      &t.Comments,
		VoiceMessages: &t.VoiceMessages,
	}
	if t.Deadline == nil {
		p.ClearDeadline = true
	} else {
		p.Deadline = t.Deadline
	}
	return p
}

type UserPatch struct {
	Username   *string     `json:"username,omitempty"`
	Email      *string     `json:"email,omitempty"`
	FirstName  *string     `json:"firstName,omitempty"`
	LastName   *string     `json:"lastName,omitempty"`
	Patronymic *string     `json:"patronymic,omitempty"`
	Password   *string     `json:"password,omitempty"`
	Role       *model.Role `json:"role,omitempty"`
	Avatar     *string     `json:"avatar,omitempty"`
	BoardIDs   *[]string   `json:"boardIds,omitempty"`
}

func (p UserPatch) ApplyTo(u model.User) model.User {
	u = cloneUser(u)
	if p.Username != nil {
		u.Username = *p.Username
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.FirstName != nil {
		u.FirstName = *p.FirstName
	}
	if p.LastName != nil {
		u.LastName = *p.LastName
	}
	if p.Patronymic != nil {
		u.Patronymic = *p.Patronymic
	}
	if p.Password != nil {
		u.Password = *p.Password
	}
	if p.Role != nil {
		u.Role = *p.Role
	}
	if p.Avatar != nil {
		u.Avatar = *p.Avatar
	}
	if p.BoardIDs != nil {
		u.BoardIDs = cloneStrings(*p.BoardIDs)
	}
	return u
}

type BoardPatch struct {
	Name        *string   `json:"name,omitempty"`
	Description *string   `json:"description,omitempty"`
	MemberIDs   *[]string `json:"memberIds,omitempty"`
}

func (p BoardPatch) ApplyTo(b model.Board) model.Board {
	b = cloneBoard(b)
	if p.Name != nil {
		b.Name = *p.Name
	}
	if p.Description != nil {
		b.Description = *p.Description
	}
	if p.MemberIDs != nil {
		b.MemberIDs = cloneStrings(*p.MemberIDs)
	}
	return b
}
