package tui

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	xansi "github.com/charmbracelet/x/ansi"

	"planify/internal/model"
	"planify/internal/mutate"
	"planify/internal/session"
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(t *testing.T, m appModel, msgs ...tea.Msg) appModel {
	t.Helper()
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		mm, ok := next.(appModel)
		if !ok {
			t.Fatalf("expected appModel, got %T", next)
		}
		m = mm
	}
	return m
}

func signedIn(t *testing.T) (appModel, *session.Session, *testClock) {
	t.Helper()
	sess, clock := openDemo(t)
	m := newAppModel(context.Background(), sess)
	if m.login == nil {
		t.Fatalf("expected login form for a fresh workspace")
	}
	m.login.inputs[loginUser].SetValue(session.DemoAdminUsername)
	m.login.inputs[loginPassword].SetValue(session.DemoPassword)
	m = press(t, m, tea.WindowSizeMsg{Width: 120, Height: 30}, tea.KeyMsg{Type: tea.KeyEnter})
	if m.login != nil {
		t.Fatalf("expected login to succeed, err=%q", m.loginErr)
	}
	return m, sess, clock
}

func TestLoginForm_RejectsBadPassword(t *testing.T) {
	sess, _ := openDemo(t)
	m := newAppModel(context.Background(), sess)
	m.login.inputs[loginUser].SetValue(session.DemoAdminUsername)
	m.login.inputs[loginPassword].SetValue("wrong-password")
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.login == nil || m.loginErr == "" {
		t.Fatalf("expected login error to be shown")
	}
	if !strings.Contains(m.View(), m.loginErr) {
		t.Fatalf("expected error in login view")
	}
}

func TestLoginForm_PrefillsSavedCredentials(t *testing.T) {
	m, sess, _ := signedIn(t)
	m = press(t, m, tea.KeyMsg{Type: tea.KeyCtrlO})
	if m.login == nil {
		t.Fatalf("expected logout to show the login form")
	}
	if _, ok := sess.CurrentUser(); ok {
		t.Fatalf("expected session to be signed out")
	}
	user, password, _ := m.login.values()
	if user != session.DemoAdminUsername || password != session.DemoPassword {
		t.Fatalf("expected saved credentials to be prefilled, got %q/%q", user, password)
	}
}

func TestBoard_MoveCardRightThenUndo(t *testing.T) {
	m, sess, _ := signedIn(t)

	// Initial selection lands on the only created task.
	m = press(t, m, runes("L"))
	task, _ := sess.State().FindTask("task-2")
	if task.Status != model.StatusInProgress {
		t.Fatalf("expected task-2 to move to in-progress, got %q", task.Status)
	}
	if m.sel.TaskID != "task-2" || m.sel.Col != 1 {
		t.Fatalf("expected selection to follow the moved card, got %+v", m.sel)
	}

	m = press(t, m, runes("u"))
	task, _ = sess.State().FindTask("task-2")
	if task.Status != model.StatusCreated {
		t.Fatalf("expected undo to restore created, got %q", task.Status)
	}
	if m.flash != "Undone" {
		t.Fatalf("expected undo flash, got %q", m.flash)
	}

	m = press(t, m, tea.KeyMsg{Type: tea.KeyCtrlR})
	task, _ = sess.State().FindTask("task-2")
	if task.Status != model.StatusInProgress {
		t.Fatalf("expected redo to move the task again, got %q", task.Status)
	}
}

func TestBoard_PinAndDelete(t *testing.T) {
	m, sess, _ := signedIn(t)

	m = press(t, m, runes("p"))
	task, _ := sess.State().FindTask("task-2")
	if !task.IsPinned {
		t.Fatalf("expected task-2 to be pinned")
	}

	m = press(t, m, runes("x"))
	if _, ok := sess.State().FindTask("task-2"); ok {
		t.Fatalf("expected task-2 to be deleted")
	}
	if m.sel.Card != -1 {
		t.Fatalf("expected empty column selection after delete, got %+v", m.sel)
	}
}

func TestBoard_OpenDetailAndBack(t *testing.T) {
	m, _, _ := signedIn(t)
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.detailTaskID != "task-2" {
		t.Fatalf("expected task-2 detail to open, got %q", m.detailTaskID)
	}
	if !strings.Contains(xansi.Strip(m.View()), "AUTHENTICATION") {
		t.Fatalf("expected task title in the detail view")
	}
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.detailTaskID != "" {
		t.Fatalf("expected esc to close the detail")
	}
}

func TestTabSwitchesAndPersistsView(t *testing.T) {
	m, sess, _ := signedIn(t)
	m = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if m.view != viewCalendar {
		t.Fatalf("expected calendar after tab, got %q", m.view)
	}
	v, err := sess.LastView(context.Background())
	if err != nil || v != string(viewCalendar) {
		t.Fatalf("expected last view calendar, got %q err=%v", v, err)
	}
	if !strings.Contains(xansi.Strip(m.View()), "USER INTERFACE DESIGN") {
		t.Fatalf("expected the dated demo task in the calendar")
	}

	m = press(t, m, tea.KeyMsg{Type: tea.KeyShiftTab}, tea.KeyMsg{Type: tea.KeyShiftTab})
	if m.view != viewManual {
		t.Fatalf("expected shift+tab to wrap to manual, got %q", m.view)
	}

	reopened := newAppModel(context.Background(), sess)
	if reopened.view != viewManual {
		t.Fatalf("expected a new model to reopen on manual, got %q", reopened.view)
	}
}

func TestDeadlineTickNotifiesAssignees(t *testing.T) {
	m, sess, clock := signedIn(t)
	clock.now = clock.now.Add(6 * 24 * time.Hour)

	m = press(t, m, deadlineTickMsg{})
	var found bool
	for _, n := range sess.State().Notifications {
		if n.Type == model.NotificationTaskDeadline && n.UserID == "user-2" && n.RelatedID == "task-1" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a deadline reminder for user-2, got %+v", sess.State().Notifications)
	}
	if m.flash == "" {
		t.Fatalf("expected a flash about the reminder")
	}

	before := len(sess.State().Notifications)
	_ = press(t, m, deadlineTickMsg{})
	if got := len(sess.State().Notifications); got != before {
		t.Fatalf("expected no duplicate reminders, got %d want %d", got, before)
	}
}

func TestInbox_ReadAll(t *testing.T) {
	m, sess, _ := signedIn(t)
	u, _ := sess.CurrentUser()
	_, err := sess.AddNotification(context.Background(), mutate.NotificationInput{
		UserID:  u.ID,
		Type:    model.NotificationBoardAdded,
		Title:   "Hello",
		Message: "You were added to MAIN BOARD",
	})
	if err != nil {
		t.Fatalf("add notification: %v", err)
	}

	m = press(t, m, runes("n"))
	if !m.inbox {
		t.Fatalf("expected inbox to open")
	}
	if !strings.Contains(xansi.Strip(m.View()), "Hello") {
		t.Fatalf("expected notification title in the inbox")
	}
	m = press(t, m, runes("r"))
	for _, n := range sess.State().Notifications {
		if n.UserID == u.ID && !n.IsRead {
			t.Fatalf("expected all notifications read, got %+v", n)
		}
	}
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.inbox {
		t.Fatalf("expected esc to close the inbox")
	}
}

func TestCycleView(t *testing.T) {
	if got := cycleView(viewManual, 1); got != viewBoard {
		t.Fatalf("expected wrap to board, got %q", got)
	}
	if got := cycleView(viewBoard, -1); got != viewManual {
		t.Fatalf("expected wrap to manual, got %q", got)
	}
	if got := cycleView(view("bogus"), 1); got != viewBoard {
		t.Fatalf("expected unknown view to reset to board, got %q", got)
	}
}
