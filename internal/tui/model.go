package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"planify/internal/format"
	"planify/internal/model"
	"planify/internal/mutate"
	"planify/internal/query"
	"planify/internal/session"
)

// deadlineCheckInterval is how often the running app looks for tasks coming due.
const deadlineCheckInterval = time.Minute

type deadlineTickMsg struct{}

type flashDoneMsg struct{ seq int }

type appModel struct {
	ctx  context.Context
	sess *session.Session

	keys keyMap
	help help.Model

	width  int
	height int

	view view
	sel  boardSelection

	// detailTaskID is set while the task detail pane is open.
	detailTaskID string
	detail       viewport.Model

	inbox    bool
	inboxIdx int

	// login is non-nil while nobody is signed in.
	login    *loginForm
	loginErr string

	flash    string
	flashErr bool
	flashSeq int
}

func newAppModel(ctx context.Context, sess *session.Session) appModel {
	m := appModel{
		ctx:  ctx,
		sess: sess,
		keys: newKeyMap(),
		help: help.New(),
		view: viewBoard,
		sel:  boardSelection{Card: -1},
	}
	if v, err := sess.LastView(ctx); err == nil {
		m.view = view(v)
	}
	if _, ok := sess.CurrentUser(); !ok {
		f := newLoginForm(sess.SavedCredentials())
		m.login = &f
	}
	return m
}

func (m appModel) Init() tea.Cmd {
	return func() tea.Msg { return deadlineTickMsg{} }
}

func nextDeadlineTick() tea.Cmd {
	return tea.Tick(deadlineCheckInterval, func(time.Time) tea.Msg { return deadlineTickMsg{} })
}

func (m *appModel) setFlash(msg string, isErr bool) tea.Cmd {
	m.flash = msg
	m.flashErr = isErr
	m.flashSeq++
	seq := m.flashSeq
	return tea.Tick(3*time.Second, func(time.Time) tea.Msg { return flashDoneMsg{seq: seq} })
}

func (m *appModel) flashError(err error) tea.Cmd {
	if err == nil {
		return nil
	}
	return m.setFlash(errorText(err), true)
}

func (m appModel) columns() boardColumns {
	return buildBoardColumns(m.sess.State(), m.sess.State().CurrentBoardID)
}

func (m appModel) bodyHeight() int {
	// header, blank line, flash, help
	return max(1, m.height-4)
}

func (m *appModel) layoutDetail() {
	m.detail.Width = max(1, m.width)
	m.detail.Height = m.bodyHeight()
}

func (m *appModel) openDetail(taskID string) {
	t, ok := m.sess.State().FindTask(taskID)
	if !ok {
		m.detailTaskID = ""
		return
	}
	m.detailTaskID = taskID
	m.detail = viewport.New(max(1, m.width), m.bodyHeight())
	m.detail.SetContent(format.RenderMarkdown(format.TaskMarkdown(m.sess.State(), t, m.sess.Now()), max(20, m.width-2)))
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		if m.detailTaskID != "" {
			m.openDetail(m.detailTaskID)
		}
		return m, nil

	case deadlineTickMsg:
		var cmd tea.Cmd
		if _, ok := m.sess.CurrentUser(); ok {
			p, err := m.sess.CheckDeadlines(m.ctx)
			if err != nil {
				cmd = m.flashError(err)
			} else if n := len(p.Effects.Notify); n > 0 {
				cmd = m.setFlash(fmt.Sprintf("%d deadline reminder(s) in your inbox", n), false)
			}
		}
		return m, tea.Batch(cmd, nextDeadlineTick())

	case flashDoneMsg:
		if msg.seq == m.flashSeq {
			m.flash = ""
			m.flashErr = false
		}
		return m, nil

	case tea.KeyMsg:
		if m.login != nil {
			return m.updateLogin(msg)
		}
		return m.updateKey(msg)
	}

	if m.login != nil {
		f, cmd := m.login.update(msg)
		m.login = &f
		return m, cmd
	}
	return m, nil
}

func (m appModel) updateLogin(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		return m, tea.Quit
	case "enter":
		user, password, code := m.login.values()
		if _, err := m.sess.Login(m.ctx, user, password, code); err != nil {
			m.loginErr = errorText(err)
			return m, nil
		}
		m.login = nil
		m.loginErr = ""
		m.sel = boardSelection{Card: -1}
		u, _ := m.sess.CurrentUser()
		return m, tea.Batch(m.setFlash("Signed in as "+u.Username, false), func() tea.Msg { return deadlineTickMsg{} })
	}
	f, cmd := m.login.update(msg)
	m.login = &f
	return m, cmd
}

func (m appModel) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, m.keys.Undo):
		ok, err := m.sess.Undo(m.ctx)
		if err != nil {
			return m, m.flashError(err)
		}
		if !ok {
			return m, m.setFlash("Nothing to undo", false)
		}
		return m, m.setFlash("Undone", false)
	case key.Matches(msg, m.keys.Redo):
		ok, err := m.sess.Redo(m.ctx)
		if err != nil {
			return m, m.flashError(err)
		}
		if !ok {
			return m, m.setFlash("Nothing to redo", false)
		}
		return m, m.setFlash("Redone", false)
	case key.Matches(msg, m.keys.Logout):
		if err := m.sess.Logout(m.ctx); err != nil {
			return m, m.flashError(err)
		}
		f := newLoginForm(m.sess.SavedCredentials())
		m.login = &f
		m.detailTaskID = ""
		m.inbox = false
		return m, nil
	}

	if m.inbox {
		return m.updateInbox(msg)
	}
	if m.detailTaskID != "" {
		if key.Matches(msg, m.keys.Back) {
			m.detailTaskID = ""
			return m, nil
		}
		var cmd tea.Cmd
		m.detail, cmd = m.detail.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Inbox):
		m.inbox = true
		m.inboxIdx = 0
		return m, nil
	case key.Matches(msg, m.keys.NextView):
		return m, m.switchView(cycleView(m.view, 1))
	case key.Matches(msg, m.keys.PrevView):
		return m, m.switchView(cycleView(m.view, -1))
	case key.Matches(msg, m.keys.NextBoard):
		return m, m.nextBoard()
	}

	if m.view != viewBoard {
		return m, nil
	}
	return m.updateBoard(msg)
}

func (m *appModel) switchView(v view) tea.Cmd {
	m.view = v
	if err := m.sess.SetLastView(m.ctx, string(v)); err != nil {
		return m.flashError(err)
	}
	return nil
}

func (m *appModel) nextBoard() tea.Cmd {
	u, ok := m.sess.CurrentUser()
	if !ok {
		return nil
	}
	boards := query.BoardsForUser(m.sess.State(), u.ID)
	if len(boards) == 0 {
		return m.setFlash("You are not a member of any board", true)
	}
	next := boards[0]
	cur := m.sess.State().CurrentBoardID
	for i, b := range boards {
		if b.ID == cur {
			next = boards[(i+1)%len(boards)]
			break
		}
	}
	if next.ID == cur {
		return nil
	}
	if _, err := m.sess.SetCurrentBoard(m.ctx, next.ID); err != nil {
		return m.flashError(err)
	}
	m.sel = boardSelection{Card: -1}
	return m.setFlash("Board: "+next.Name, false)
}

func (m appModel) updateBoard(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	cols := m.columns()
	switch {
	case key.Matches(msg, m.keys.Left):
		m.sel = cols.moveCol(m.sel, -1)
	case key.Matches(msg, m.keys.Right):
		m.sel = cols.moveCol(m.sel, 1)
	case key.Matches(msg, m.keys.Up):
		m.sel = cols.moveCard(m.sel, -1)
	case key.Matches(msg, m.keys.Down):
		m.sel = cols.moveCard(m.sel, 1)
	case key.Matches(msg, m.keys.MoveLeft), key.Matches(msg, m.keys.MoveRight):
		c, ok := cols.selected(m.sel)
		if !ok {
			return m, nil
		}
		delta := 1
		if key.Matches(msg, m.keys.MoveLeft) {
			delta = -1
		}
		to, ok := neighbourStatus(c.Task.Status, delta)
		if !ok {
			return m, nil
		}
		if _, err := m.sess.MoveTask(m.ctx, c.Task.ID, to); err != nil {
			return m, m.flashError(err)
		}
		m.sel.TaskID = c.Task.ID
		m.sel = m.columns().clamp(m.sel)
	case key.Matches(msg, m.keys.Pin):
		c, ok := cols.selected(m.sel)
		if !ok {
			return m, nil
		}
		if _, err := m.sess.TogglePin(m.ctx, c.Task.ID); err != nil {
			return m, m.flashError(err)
		}
		m.sel.TaskID = c.Task.ID
		m.sel = m.columns().clamp(m.sel)
	case key.Matches(msg, m.keys.Delete):
		c, ok := cols.selected(m.sel)
		if !ok {
			return m, nil
		}
		if _, err := m.sess.DeleteTask(m.ctx, c.Task.ID); err != nil {
			return m, m.flashError(err)
		}
		m.sel.TaskID = ""
		m.sel = m.columns().clamp(m.sel)
		return m, m.setFlash("Deleted "+c.Task.Title+" (u to undo)", false)
	case key.Matches(msg, m.keys.Open):
		if c, ok := cols.selected(m.sel); ok {
			m.openDetail(c.Task.ID)
		}
	}
	return m, nil
}

func (m appModel) inboxItems() []model.Notification {
	u, ok := m.sess.CurrentUser()
	if !ok {
		return nil
	}
	return query.NotificationsFor(m.sess.State(), u.ID)
}

func (m appModel) updateInbox(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	items := m.inboxItems()
	switch {
	case key.Matches(msg, m.keys.Back), key.Matches(msg, m.keys.Inbox):
		m.inbox = false
	case key.Matches(msg, m.keys.Up):
		m.inboxIdx = max(0, m.inboxIdx-1)
	case key.Matches(msg, m.keys.Down):
		m.inboxIdx = max(0, min(m.inboxIdx+1, len(items)-1))
	case key.Matches(msg, m.keys.ReadAll):
		if _, err := m.sess.MarkAllNotificationsRead(m.ctx); err != nil {
			return m, m.flashError(err)
		}
	case key.Matches(msg, m.keys.Open):
		if m.inboxIdx < len(items) {
			if _, err := m.sess.MarkNotificationRead(m.ctx, items[m.inboxIdx].ID); err != nil {
				return m, m.flashError(err)
			}
		}
	case key.Matches(msg, m.keys.Delete):
		if m.inboxIdx < len(items) {
			if _, err := m.sess.DeleteNotification(m.ctx, items[m.inboxIdx].ID); err != nil {
				return m, m.flashError(err)
			}
			m.inboxIdx = max(0, min(m.inboxIdx, len(items)-2))
		}
	}
	return m, nil
}

func (m appModel) View() string {
	if m.login != nil {
		form := m.login.view(m.loginErr)
		if m.width > 0 && m.height > 0 {
			return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, form)
		}
		return form
	}

	width := m.width
	if width <= 0 {
		width = 100
	}
	var body string
	switch {
	case m.inbox:
		body = sectionTitle("Notifications") + "\n\n" + renderInbox(m.inboxItems(), m.sess.Now(), width)
	case m.detailTaskID != "":
		body = m.detail.View()
	default:
		body = m.renderView(width)
	}

	flash := ""
	if m.flash != "" {
		st := lipgloss.NewStyle().Foreground(colorAccent)
		if m.flashErr {
			st = lipgloss.NewStyle().Foreground(colorSurfaceFg).Background(colorFlashErrorBg).Padding(0, 1)
		}
		flash = st.Render(m.flash)
	}
	return strings.Join([]string{m.header(width), body, flash, m.help.View(m.keys)}, "\n")
}

func (m appModel) renderView(width int) string {
	st := m.sess.State()
	boardID := st.CurrentBoardID
	if _, ok := st.FindBoard(boardID); !ok && m.view != viewProfile && m.view != viewManual {
		return styleMuted().Render("No board selected. Join one with `planify boards join <code>`.")
	}
	now := m.sess.Now()
	switch m.view {
	case viewCalendar:
		return renderCalendar(st, boardID, now, width)
	case viewUsers:
		return renderUsers(st, boardID, width)
	case viewAnalytics:
		return renderAnalytics(st, boardID, now, width)
	case viewProfile:
		u, _ := m.sess.CurrentUser()
		return renderProfile(st, u, now)
	case viewManual:
		return renderManual(width)
	}
	return renderBoardColumns(m.columns(), m.sel, now, width, m.bodyHeight())
}

func (m appModel) header(width int) string {
	title := lipgloss.NewStyle().Bold(true).Foreground(colorAccent).Render("Planify")
	board := "no board"
	if b, ok := m.sess.CurrentBoard(); ok {
		board = b.Name
	}
	tabs := make([]string, 0, len(allViews()))
	for _, v := range allViews() {
		if v == m.view {
			tabs = append(tabs, lipgloss.NewStyle().Bold(true).Underline(true).Render(viewTitle(v)))
		} else {
			tabs = append(tabs, styleMuted().Render(viewTitle(v)))
		}
	}
	user := ""
	if u, ok := m.sess.CurrentUser(); ok {
		user = u.Username
		if n := len(query.UnreadNotificationsFor(m.sess.State(), u.ID)); n > 0 {
			user += lipgloss.NewStyle().Foreground(colorAccent).Render(fmt.Sprintf(" %s%d", glyphUnread(), n))
		}
	}
	left := title + " " + glyphArrow() + " " + board + "   " + strings.Join(tabs, " ")
	gap := width - lipgloss.Width(left) - lipgloss.Width(user)
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + user
}

// errorText phrases mutation errors for the status line.
func errorText(err error) string {
	var fe mutate.ForbiddenError
	if errors.As(err, &fe) {
		return "Not allowed: " + fe.Action
	}
	if errors.Is(err, mutate.ErrNotAuthenticated) {
		return "Sign in first"
	}
	return err.Error()
}
