package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"planify/internal/model"
)

// loginForm collects a username (or email), password and optional board code.
type loginForm struct {
	inputs []textinput.Model
	focus  int
}

const (
	loginUser = iota
	loginPassword
	loginCode
)

func newLoginForm(saved *model.Credentials) loginForm {
	mk := func(placeholder string) textinput.Model {
		in := textinput.New()
		in.Placeholder = placeholder
		in.Prompt = ""
		in.CharLimit = 128
		in.Width = 32
		return in
	}
	f := loginForm{inputs: []textinput.Model{
		mk("username or email"),
		mk("password"),
		mk("board code (optional)"),
	}}
	f.inputs[loginPassword].EchoMode = textinput.EchoPassword
	f.inputs[loginPassword].EchoCharacter = '•'
	if saved != nil {
		f.inputs[loginUser].SetValue(saved.Username)
		f.inputs[loginPassword].SetValue(saved.Password)
	}
	f.inputs[loginUser].Focus()
	return f
}

func (f loginForm) values() (user, password, code string) {
	return strings.TrimSpace(f.inputs[loginUser].Value()),
		f.inputs[loginPassword].Value(),
		strings.TrimSpace(f.inputs[loginCode].Value())
}

func (f *loginForm) setFocus(i int) {
	n := len(f.inputs)
	f.focus = (i%n + n) % n
	for j := range f.inputs {
		if j == f.focus {
			f.inputs[j].Focus()
		} else {
			f.inputs[j].Blur()
		}
	}
}

// update forwards msg to the focused field. Tab and arrow keys move between fields.
func (f loginForm) update(msg tea.Msg) (loginForm, tea.Cmd) {
	if km, ok := msg.(tea.KeyMsg); ok {
		switch km.String() {
		case "tab", "down":
			f.setFocus(f.focus + 1)
			return f, nil
		case "shift+tab", "up":
			f.setFocus(f.focus - 1)
			return f, nil
		}
	}
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return f, cmd
}

func (f loginForm) view(errMsg string) string {
	labels := []string{"Username", "Password", "Board code"}
	label := styleMuted().Width(12)
	var b strings.Builder
	b.WriteString(sectionTitle("Sign in to Planify"))
	b.WriteString("\n\n")
	for i, in := range f.inputs {
		l := label
		if i == f.focus {
			l = l.Foreground(colorAccent)
		}
		b.WriteString(l.Render(labels[i]))
		b.WriteString(in.View())
		b.WriteString("\n")
	}
	b.WriteString("\n")
	if errMsg != "" {
		b.WriteString(lipgloss.NewStyle().Foreground(colorOverdue).Render(errMsg))
		b.WriteString("\n")
	}
	b.WriteString(styleMuted().Render("enter sign in · tab next field · ctrl+c quit"))
	box := lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorCardBorder).Padding(1, 2)
	return box.Render(b.String())
}
