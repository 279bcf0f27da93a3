package cli

import (
	"strconv"
	"strings"
	"time"

	"planify/internal/format"
	"planify/internal/model"
	"planify/internal/mutate"
	"planify/internal/session"
	"planify/internal/state"
	"planify/internal/store"

	"github.com/spf13/cobra"
)

// publicUser is a user as printed by the CLI: never with the password.
func publicUser(u model.User) model.User {
	u.Password = ""
	return u
}

func publicUsers(us []model.User) []model.User {
	out := make([]model.User, 0, len(us))
	for _, u := range us {
		out = append(out, publicUser(u))
	}
	return out
}

// parseCodeOrLink accepts either a bare join code or a share link carrying ?board=<code>.
func parseCodeOrLink(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	if strings.Contains(s, "?") || strings.Contains(s, "://") {
		return session.ParseShareLink(s)
	}
	return s, true
}

func userLabel(st state.State, id string) string {
	if u, ok := st.FindUser(id); ok {
		return u.Username
	}
	return id
}

func assigneeLabels(st state.State, t model.Task) string {
	names := make([]string, 0, len(t.AssigneeIDs))
	for _, id := range t.AssigneeIDs {
		if u, ok := st.FindUser(id); ok {
			names = append(names, u.Username)
		}
	}
	return strings.Join(names, ",")
}

func deadlineLabel(t model.Task, now time.Time) string {
	if t.Deadline == nil {
		return ""
	}
	return format.Stamp(*t.Deadline, now.Location()) + " (" + format.Ago(*t.Deadline, now) + ")"
}

func taskTable(st state.State, ts []model.Task, now time.Time) *format.Table {
	tb := &format.Table{Headers: []string{"ID", "STATUS", "PRIORITY", "PIN", "TITLE", "ASSIGNEES", "DEADLINE"}}
	for _, t := range ts {
		pin := ""
		if t.IsPinned {
			pin = "*"
		}
		tb.Add(t.ID, string(t.Status), string(t.Priority), pin, format.Truncate(t.Title, 40), assigneeLabels(st, t), deadlineLabel(t, now))
	}
	return tb
}

func boardTable(bs []model.Board, currentID string) *format.Table {
	tb := &format.Table{Headers: []string{"", "ID", "NAME", "CODE", "MEMBERS"}}
	for _, b := range bs {
		cur := ""
		if b.ID == currentID {
			cur = "*"
		}
		tb.Add(cur, b.ID, format.Truncate(b.Name, 32), b.Code, strconv.Itoa(len(b.MemberIDs)))
	}
	return tb
}

func userTable(us []model.User) *format.Table {
	tb := &format.Table{Headers: []string{"ID", "USERNAME", "NAME", "EMAIL", "ROLE", "BOARDS"}}
	for _, u := range us {
		tb.Add(u.ID, u.Username, u.FullName(), u.Email, string(u.Role), strconv.Itoa(len(u.BoardIDs)))
	}
	return tb
}

func notificationTable(ns []model.Notification, now time.Time) *format.Table {
	tb := &format.Table{Headers: []string{"ID", "", "TYPE", "TITLE", "MESSAGE", "WHEN"}}
	for _, n := range ns {
		unread := ""
		if !n.IsRead {
			unread = "•"
		}
		tb.Add(n.ID, unread, string(n.Type), n.Title, format.Truncate(n.Message, 48), format.Ago(n.CreatedAt, now))
	}
	return tb
}

// userFlags binds the profile fields shared by `users add`, `users update` and `profile`.
type userFlags struct {
	username   string
	email      string
	password   string
	firstName  string
	lastName   string
	patronymic string
	role       string
	avatar     string
}

func (f *userFlags) bind(cmd *cobra.Command, withRole bool) {
	cmd.Flags().StringVar(&f.username, "username", "", "Username")
	cmd.Flags().StringVar(&f.email, "email", "", "Email")
	cmd.Flags().StringVar(&f.password, "password", "", "Password (8+ chars, letters and digits)")
	cmd.Flags().StringVar(&f.firstName, "first-name", "", "First name")
	cmd.Flags().StringVar(&f.lastName, "last-name", "", "Last name")
	cmd.Flags().StringVar(&f.patronymic, "patronymic", "", "Patronymic")
	cmd.Flags().StringVar(&f.avatar, "avatar", "", "Avatar: an image file path or data URI")
	if withRole {
		cmd.Flags().StringVar(&f.role, "role", "", "Role (admin|user)")
	}
}

func (f *userFlags) input() (mutate.UserInput, error) {
	in := mutate.UserInput{
		Username:   f.username,
		Email:      f.email,
		Password:   f.password,
		FirstName:  f.firstName,
		LastName:   f.lastName,
		Patronymic: f.patronymic,
	}
	if strings.TrimSpace(f.role) != "" {
		r, err := parseRole(f.role)
		if err != nil {
			return mutate.UserInput{}, err
		}
		in.Role = r
	}
	av, err := avatarURI(f.avatar)
	if err != nil {
		return mutate.UserInput{}, err
	}
	in.Avatar = av
	return in, nil
}

// update builds a partial update from the flags the user actually passed.
func (f *userFlags) update(cmd *cobra.Command) (mutate.UserUpdate, error) {
	var u mutate.UserUpdate
	set := func(name string, v string) *string {
		if !cmd.Flags().Changed(name) {
			return nil
		}
		s := v
		return &s
	}
	u.Username = set("username", f.username)
	u.Email = set("email", f.email)
	u.Password = set("password", f.password)
	u.FirstName = set("first-name", f.firstName)
	u.LastName = set("last-name", f.lastName)
	u.Patronymic = set("patronymic", f.patronymic)
	if cmd.Flags().Lookup("role") != nil && cmd.Flags().Changed("role") {
		r, err := parseRole(f.role)
		if err != nil {
			return mutate.UserUpdate{}, err
		}
		u.Role = &r
	}
	if cmd.Flags().Changed("avatar") {
		av, err := avatarURI(f.avatar)
		if err != nil {
			return mutate.UserUpdate{}, err
		}
		u.Avatar = &av
	}
	return u, nil
}

func formatSeconds(s float64) string {
	return time.Duration(s * float64(time.Second)).Round(time.Second).String()
}

// resolveUsers maps usernames to ids. Unknown values pass through so the planner reports them.
func resolveUsers(st state.State, refs []string) []string {
	out := make([]string, 0, len(refs))
	for _, r := range refs {
		if _, ok := st.FindUser(r); ok {
			out = append(out, r)
			continue
		}
		found := false
		for _, u := range st.Users {
			if strings.EqualFold(u.Username, r) {
				out = append(out, u.ID)
				found = true
				break
			}
		}
		if !found {
			out = append(out, r)
		}
	}
	return out
}

func captureAttachment(path string) (model.Attachment, error) {
	return store.CaptureFile(path)
}
