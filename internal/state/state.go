package state

import (
	"strings"

	"planify/internal/model"
)

// State is the canonical in-memory entity store.
//
// Values are treated as immutable: Apply never mutates the slices of its input,
// so a State captured before a dispatch stays valid afterwards.
type State struct {
	Users         []model.User         `json:"users"`
	Tasks         []model.Task         `json:"tasks"`
	Boards        []model.Board        `json:"boards"`
	Notifications []model.Notification `json:"notifications"`

	CurrentUserID    string             `json:"currentUserId,omitempty"`
	CurrentBoardID   string             `json:"currentBoardId,omitempty"`
	IsAuthenticated  bool               `json:"isAuthenticated"`
	SavedCredentials *model.Credentials `json:"savedCredentials,omitempty"`
}

func Empty() State {
	return State{
		Users:         []model.User{},
		Tasks:         []model.Task{},
		Boards:        []model.Board{},
		Notifications: []model.Notification{},
	}
}

func (s State) FindUser(id string) (model.User, bool) {
	for _, u := range s.Users {
		if u.ID == id {
			return u, true
		}
	}
	return model.User{}, false
}

// FindUserByLogin matches username or email, case-insensitively.
func (s State) FindUserByLogin(usernameOrEmail string) (model.User, bool) {
	key := strings.TrimSpace(usernameOrEmail)
	if key == "" {
		return model.User{}, false
	}
	for _, u := range s.Users {
		if strings.EqualFold(u.Username, key) || strings.EqualFold(u.Email, key) {
			return u, true
		}
	}
	return model.User{}, false
}

func (s State) FindTask(id string) (model.Task, bool) {
	for _, t := range s.Tasks {
		if t.ID == id {
			return t, true
		}
	}
	return model.Task{}, false
}

func (s State) FindBoard(id string) (model.Board, bool) {
	for _, b := range s.Boards {
		if b.ID == id {
			return b, true
		}
	}
	return model.Board{}, false
}

func (s State) FindBoardByCode(code string) (model.Board, bool) {
	code = strings.TrimSpace(code)
	if code == "" {
		return model.Board{}, false
	}
	for _, b := range s.Boards {
		if b.Code == code {
			return b, true
		}
	}
	return model.Board{}, false
}

func (s State) FindNotification(id string) (model.Notification, bool) {
	for _, n := range s.Notifications {
		if n.ID == id {
			return n, true
		}
	}
	return model.Notification{}, false
}

// CurrentUser resolves the authenticated user. A dangling CurrentUserID is reported as not found.
func (s State) CurrentUser() (model.User, bool) {
	if !s.IsAuthenticated || s.CurrentUserID == "" {
		return model.User{}, false
	}
	return s.FindUser(s.CurrentUserID)
}

// Clone returns a deep copy, safe to mutate independently.
func (s State) Clone() State {
	out := s
	out.Users = make([]model.User, len(s.Users))
	for i, u := range s.Users {
		out.Users[i] = cloneUser(u)
	}
	out.Tasks = make([]model.Task, len(s.Tasks))
	for i, t := range s.Tasks {
		out.Tasks[i] = cloneTask(t)
	}
	out.Boards = make([]model.Board, len(s.Boards))
	for i, b := range s.Boards {
		out.Boards[i] = cloneBoard(b)
	}
	out.Notifications = append([]model.Notification{}, s.Notifications...)
	if s.SavedCredentials != nil {
		c := *s.SavedCredentials
		out.SavedCredentials = &c
	}
	return out
}

func cloneUser(u model.User) model.User {
	u.BoardIDs = cloneStrings(u.BoardIDs)
	return u
}

func cloneBoard(b model.Board) model.Board {
	b.MemberIDs = cloneStrings(b.MemberIDs)
	return b
}

func cloneTask(t model.Task) model.Task {
	t.AssigneeIDs = cloneStrings(t.AssigneeIDs)
	if t.Deadline != nil {
		d := *t.Deadline
		t.Deadline = &d
	}
	t.Attachments = append([]model.Attachment{}, t.Attachments...)
	t.Comments = append([]model.Comment{}, t.Comments...)
	t.VoiceMessages = append([]model.VoiceMessage{}, t.VoiceMessages...)
	return t
}

func cloneStrings(xs []string) []string {
	if xs == nil {
		return []string{}
	}
	return append([]string{}, xs...)
}
