package session

import (
	"context"
	"fmt"
	"testing"
	"time"

	"planify/internal/model"
	"planify/internal/mutate"
	"planify/internal/query"
	"planify/internal/state"
	"planify/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testClock struct{ now time.Time }

func (c *testClock) Now() time.Time { return c.now }

func (c *testClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func testOptions(clock *testClock) Options {
	n := 0
	codes := 0
	return Options{
		Now:      clock.Now,
		Location: time.UTC,
		Origin:   "https://planify.test",
		NewID: func(prefix string) string {
			n++
			return fmt.Sprintf("%s-t%d", prefix, n)
		},
		NewCode: func() string {
			codes++
			return fmt.Sprintf("CODE%04d", codes)
		},
	}
}

func openTest(t *testing.T) (*Session, *store.Memory, *testClock) {
	t.Helper()
	clock := &testClock{now: time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)}
	m := store.NewMemory()
	s, err := Open(context.Background(), m, testOptions(clock))
	require.NoError(t, err)
	return s, m, clock
}

func loginAdmin(t *testing.T, s *Session) {
	t.Helper()
	_, err := s.Login(context.Background(), DemoAdminUsername, DemoPassword, "")
	require.NoError(t, err)
}

func strPtr(s string) *string { return &s }

func TestOpenSeedsDemoWorkspace(t *testing.T) {
	s, m, _ := openTest(t)
	st := s.State()

	assert.Len(t, st.Users, 2)
	assert.Len(t, st.Boards, 1)
	assert.Len(t, st.Tasks, 2)
	assert.Equal(t, demoBoardID, st.CurrentBoardID)
	assert.False(t, st.IsAuthenticated)
	assert.False(t, s.CanUndo())

	raw, ok, err := m.Get(context.Background(), store.KeyUsers)
	require.NoError(t, err)
	require.True(t, ok, "seeded users should be written through")
	assert.Contains(t, raw, DemoAdminUsername)
}

func TestOpenRestoresPersistedSession(t *testing.T) {
	ctx := context.Background()
	s, m, clock := openTest(t)
	loginAdmin(t, s)
	_, err := s.CreateTask(ctx, mutate.TaskInput{Title: "Persisted"})
	require.NoError(t, err)

	again, err := Open(ctx, m, testOptions(clock))
	require.NoError(t, err)

	u, ok := again.CurrentUser()
	require.True(t, ok)
	assert.Equal(t, demoAdminID, u.ID)
	assert.Len(t, again.State().Tasks, 3)
	assert.True(t, again.CanUndo())
	require.NotNil(t, again.SavedCredentials())
	assert.Equal(t, DemoAdminUsername, again.SavedCredentials().Username)
}

func TestOpenDropsUnknownCurrentUser(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory()
	clock := &testClock{now: time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)}
	s, err := Open(ctx, m, testOptions(clock))
	require.NoError(t, err)
	require.NoError(t, store.Put(ctx, m, store.KeyCurrentUser, "user-gone"))

	again, err := Open(ctx, m, testOptions(clock))
	require.NoError(t, err)
	assert.False(t, again.State().IsAuthenticated)
	assert.Len(t, again.State().Users, len(s.State().Users))
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	s, _, _ := openTest(t)
	before := s.State()

	_, err := s.Login(context.Background(), DemoAdminUsername, "wrongpass1", "")
	require.ErrorIs(t, err, mutate.ErrInvalidCredentials)
	assert.Equal(t, before, s.State())
}

func TestLoginByEmailIsCaseInsensitive(t *testing.T) {
	s, _, _ := openTest(t)
	_, err := s.Login(context.Background(), "ADMIN@planify.com", DemoPassword, "")
	require.NoError(t, err)
	u, ok := s.CurrentUser()
	require.True(t, ok)
	assert.Equal(t, demoAdminID, u.ID)
}

func TestLogoutKeepsSavedCredentials(t *testing.T) {
	ctx := context.Background()
	s, _, _ := openTest(t)
	loginAdmin(t, s)

	require.NoError(t, s.Logout(ctx))
	assert.False(t, s.State().IsAuthenticated)
	require.NotNil(t, s.SavedCredentials())

	require.NoError(t, s.ClearSavedCredentials(ctx))
	assert.Nil(t, s.SavedCredentials())
}

func TestMutationsRequireAuthentication(t *testing.T) {
	s, _, _ := openTest(t)
	_, err := s.CreateTask(context.Background(), mutate.TaskInput{Title: "x"})
	require.ErrorIs(t, err, mutate.ErrNotAuthenticated)
}

func TestUndoRedoRestoresEveryIntermediateState(t *testing.T) {
	ctx := context.Background()
	s, _, clock := openTest(t)
	loginAdmin(t, s)

	states := []state.State{s.State()}

	p, err := s.CreateTask(ctx, mutate.TaskInput{Title: "Write docs", AssigneeIDs: []string{demoAdminID}})
	require.NoError(t, err)
	taskID := p.Task.ID
	states = append(states, s.State())

	clock.Advance(time.Minute)
	_, err = s.MoveTask(ctx, taskID, model.StatusCompleted)
	require.NoError(t, err)
	states = append(states, s.State())

	clock.Advance(time.Minute)
	_, err = s.UpdateTask(ctx, taskID, mutate.TaskUpdate{Title: strPtr("Write better docs")})
	require.NoError(t, err)
	states = append(states, s.State())

	clock.Advance(time.Minute)
	_, err = s.AddBoard(ctx, "side project", "")
	require.NoError(t, err)
	states = append(states, s.State())

	entries, idx := s.History()
	require.Len(t, entries, 4)
	require.Equal(t, 3, idx)

	for i := len(states) - 2; i >= 0; i-- {
		ok, err := s.Undo(ctx)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, states[i], s.State(), "after undo back to step %d", i)
	}
	ok, err := s.Undo(ctx)
	require.NoError(t, err)
	assert.False(t, ok, "undo past the start is a no-op")

	// Redo replays entities only; notifications are not re-sent.
	for i := 1; i < len(states); i++ {
		ok, err := s.Redo(ctx)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, states[i].Tasks, s.State().Tasks, "tasks after redo to step %d", i)
		assert.Equal(t, states[i].Boards, s.State().Boards, "boards after redo to step %d", i)
		assert.Equal(t, states[i].Users, s.State().Users, "users after redo to step %d", i)
	}
	ok, err = s.Redo(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestNewActionTruncatesRedoTail(t *testing.T) {
	ctx := context.Background()
	s, _, _ := openTest(t)
	loginAdmin(t, s)

	_, err := s.CreateTask(ctx, mutate.TaskInput{Title: "one"})
	require.NoError(t, err)
	_, err = s.CreateTask(ctx, mutate.TaskInput{Title: "two"})
	require.NoError(t, err)

	ok, err := s.Undo(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	require.True(t, s.CanRedo())

	_, err = s.CreateTask(ctx, mutate.TaskInput{Title: "three"})
	require.NoError(t, err)
	assert.False(t, s.CanRedo())
	entries, idx := s.History()
	assert.Len(t, entries, 2)
	assert.Equal(t, 1, idx)
}

func TestUndoDeleteTaskRestoresSnapshot(t *testing.T) {
	ctx := context.Background()
	s, _, _ := openTest(t)
	loginAdmin(t, s)

	task, ok := s.State().FindTask("task-1")
	require.True(t, ok)
	_, err := s.DeleteTask(ctx, "task-1")
	require.NoError(t, err)
	_, ok = s.State().FindTask("task-1")
	require.False(t, ok)

	undone, err := s.Undo(ctx)
	require.NoError(t, err)
	require.True(t, undone)
	got, ok := s.State().FindTask("task-1")
	require.True(t, ok)
	assert.Equal(t, task, got)
}

func TestCompletingTaskNotifiesAssigneesAndUndoPurges(t *testing.T) {
	ctx := context.Background()
	s, _, clock := openTest(t)
	loginAdmin(t, s)

	clock.Advance(time.Hour)
	_, err := s.MoveTask(ctx, "task-1", model.StatusCompleted)
	require.NoError(t, err)

	ns := query.NotificationsFor(s.State(), demoUserID)
	require.Len(t, ns, 1)
	assert.Equal(t, model.NotificationTaskCompleted, ns[0].Type)
	assert.Equal(t, "task-1", ns[0].RelatedID)

	_, err = s.Undo(ctx)
	require.NoError(t, err)
	assert.Empty(t, query.NotificationsFor(s.State(), demoUserID))
	task, _ := s.State().FindTask("task-1")
	assert.Equal(t, model.StatusInProgress, task.Status)
}

func TestCreateTaskNotifiesOtherAssignees(t *testing.T) {
	ctx := context.Background()
	s, _, _ := openTest(t)
	loginAdmin(t, s)

	_, err := s.CreateTask(ctx, mutate.TaskInput{Title: "pair", AssigneeIDs: []string{demoAdminID, demoUserID}})
	require.NoError(t, err)

	assert.Empty(t, query.NotificationsFor(s.State(), demoAdminID))
	ns := query.NotificationsFor(s.State(), demoUserID)
	require.Len(t, ns, 1)
	assert.Equal(t, model.NotificationTaskAssigned, ns[0].Type)
}

func TestCommentsAreAdminOnly(t *testing.T) {
	ctx := context.Background()
	s, _, _ := openTest(t)
	_, err := s.Login(ctx, DemoUserUsername, DemoPassword, "")
	require.NoError(t, err)

	_, err = s.AddComment(ctx, "task-1", "hello")
	var fe mutate.ForbiddenError
	require.ErrorAs(t, err, &fe)

	require.NoError(t, s.Logout(ctx))
	loginAdmin(t, s)
	p, err := s.AddComment(ctx, "task-1", "hello")
	require.NoError(t, err)
	require.NotNil(t, p.Task)
	require.Len(t, p.Task.Comments, 1)

	_, err = s.UpdateComment(ctx, "task-1", p.Task.Comments[0].ID, "edited")
	require.NoError(t, err)
	task, _ := s.State().FindTask("task-1")
	assert.Equal(t, "edited", task.Comments[0].Content)
}

func TestRegisterWithoutCodeCreatesPersonalBoard(t *testing.T) {
	ctx := context.Background()
	s, _, _ := openTest(t)

	p, err := s.Register(ctx, mutate.RegisterInput{
		Username:  "newcomer1",
		Email:     "newcomer@example.com",
		Password:  "secret123",
		FirstName: "ada",
		LastName:  "lovelace",
	})
	require.NoError(t, err)

	u, ok := s.CurrentUser()
	require.True(t, ok)
	assert.Equal(t, p.User.ID, u.ID)
	assert.Equal(t, model.RoleAdmin, u.Role)
	assert.Equal(t, "ADA", u.FirstName)

	b, ok := s.CurrentBoard()
	require.True(t, ok)
	assert.Equal(t, "BOARD ADA LOVELACE", b.Name)
	assert.Equal(t, []string{u.ID}, b.MemberIDs)
	assert.Equal(t, []string{b.ID}, u.BoardIDs)
}

func TestRegisterWithCodeJoinsBoardAsUser(t *testing.T) {
	ctx := context.Background()
	s, _, _ := openTest(t)

	_, err := s.Register(ctx, mutate.RegisterInput{
		Username:  "joiner123",
		Email:     "joiner@example.com",
		Password:  "secret123",
		FirstName: "grace",
		LastName:  "hopper",
		BoardCode: DemoBoardCode,
	})
	require.NoError(t, err)

	u, _ := s.CurrentUser()
	assert.Equal(t, model.RoleUser, u.Role)
	b, _ := s.State().FindBoard(demoBoardID)
	assert.True(t, b.HasMember(u.ID))
	assert.Equal(t, demoBoardID, s.State().CurrentBoardID)
	assert.Len(t, s.State().Boards, 1)
}

func TestRegisterRejectsTakenEmail(t *testing.T) {
	s, _, _ := openTest(t)
	_, err := s.Register(context.Background(), mutate.RegisterInput{
		Username:  "someone12",
		Email:     "ADMIN@planify.com",
		Password:  "secret123",
		FirstName: "some",
		LastName:  "one",
	})
	var ce mutate.ConflictError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "email", ce.Field)
}

func TestRegisterRejectsTakenUsername(t *testing.T) {
	s, _, _ := openTest(t)
	users := len(s.State().Users)
	_, err := s.Register(context.Background(), mutate.RegisterInput{
		Username:  DemoUserUsername,
		Email:     "fresh@example.com",
		Password:  "secret123",
		FirstName: "some",
		LastName:  "one",
	})
	var ce mutate.ConflictError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "username", ce.Field)
	assert.Len(t, s.State().Users, users)
	_, ok := s.CurrentUser()
	assert.False(t, ok)
}

func TestRegularUserCannotManageUsers(t *testing.T) {
	ctx := context.Background()
	s, _, _ := openTest(t)
	_, err := s.Login(ctx, DemoUserUsername, DemoPassword, "")
	require.NoError(t, err)

	role := model.RoleAdmin
	_, err = s.UpdateUser(ctx, demoUserID, mutate.UserUpdate{Role: &role})
	var fe mutate.ForbiddenError
	require.ErrorAs(t, err, &fe)
	_, err = s.UpdateCurrentUser(ctx, mutate.UserUpdate{Role: &role})
	require.ErrorAs(t, err, &fe)
	_, err = s.DeleteUser(ctx, demoAdminID)
	require.ErrorAs(t, err, &fe)

	first := "ivan"
	p, err := s.UpdateCurrentUser(ctx, mutate.UserUpdate{FirstName: &first})
	require.NoError(t, err)
	assert.Equal(t, "IVAN", p.User.FirstName)

	u, _ := s.CurrentUser()
	assert.Equal(t, model.RoleUser, u.Role)
	_, ok := s.State().FindUser(demoAdminID)
	assert.True(t, ok)
}

func TestJoinBoardByShareLink(t *testing.T) {
	ctx := context.Background()
	s, _, _ := openTest(t)
	loginAdmin(t, s)

	p, err := s.AddBoard(ctx, "team", "")
	require.NoError(t, err)
	link := s.GenerateBoardLink(p.Board.ID)
	assert.Equal(t, "https://planify.test?board="+p.Board.Code, link)

	require.NoError(t, s.Logout(ctx))
	_, err = s.Login(ctx, DemoUserUsername, DemoPassword, "")
	require.NoError(t, err)

	code, ok := ParseShareLink(link)
	require.True(t, ok)
	_, err = s.JoinBoardByCode(ctx, code)
	require.NoError(t, err)

	u, _ := s.CurrentUser()
	assert.Contains(t, u.BoardIDs, p.Board.ID)
	b, _ := s.State().FindBoard(p.Board.ID)
	assert.True(t, b.HasMember(u.ID))
	assert.Equal(t, p.Board.ID, s.State().CurrentBoardID)

	ns := query.NotificationsFor(s.State(), u.ID)
	require.NotEmpty(t, ns)
	assert.Equal(t, model.NotificationBoardAdded, ns[0].Type)

	_, err = s.JoinBoardByCode(ctx, "NOPE0000")
	require.ErrorIs(t, err, mutate.ErrBoardCodeNotFound)
}

func TestParseShareLink(t *testing.T) {
	tests := []struct {
		in   string
		code string
		ok   bool
	}{
		{"http://localhost:5173?board=DEMO2024", "DEMO2024", true},
		{"https://x.test/app/?board=AB12CD34&x=1", "AB12CD34", true},
		{"https://x.test/", "", false},
		{"DEMO2024", "", false},
	}
	for _, tt := range tests {
		code, ok := ParseShareLink(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.code, code, tt.in)
	}
}

func TestDeleteUserUndoRestoresMembership(t *testing.T) {
	ctx := context.Background()
	s, _, _ := openTest(t)
	loginAdmin(t, s)
	before := s.State()

	_, err := s.DeleteUser(ctx, demoUserID)
	require.NoError(t, err)
	b, _ := s.State().FindBoard(demoBoardID)
	assert.False(t, b.HasMember(demoUserID))

	_, err = s.DeleteUser(ctx, demoAdminID)
	var fe mutate.ForbiddenError
	require.ErrorAs(t, err, &fe, "self-deletion is refused")

	ok, err := s.Undo(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, before.Users, s.State().Users)
	assert.Equal(t, before.Boards, s.State().Boards)
}

func TestDeleteBoardFallsBackAndUndoRestoresSelection(t *testing.T) {
	ctx := context.Background()
	s, _, _ := openTest(t)
	loginAdmin(t, s)

	p, err := s.AddBoard(ctx, "second", "")
	require.NoError(t, err)
	_, err = s.SetCurrentBoard(ctx, p.Board.ID)
	require.NoError(t, err)

	_, err = s.DeleteBoard(ctx, p.Board.ID)
	require.NoError(t, err)
	assert.Equal(t, demoBoardID, s.State().CurrentBoardID)

	_, err = s.Undo(ctx)
	require.NoError(t, err)
	assert.Equal(t, p.Board.ID, s.State().CurrentBoardID)
	u, _ := s.CurrentUser()
	assert.Contains(t, u.BoardIDs, p.Board.ID)
}

func TestCheckDeadlinesIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s, _, clock := openTest(t)
	loginAdmin(t, s)

	// task-1 is due seven days after seeding.
	clock.Advance(6 * 24 * time.Hour)
	_, err := s.CheckDeadlines(ctx)
	require.NoError(t, err)
	_, err = s.CheckDeadlines(ctx)
	require.NoError(t, err)

	var reminders int
	for _, n := range s.State().Notifications {
		if n.Type == model.NotificationTaskDeadline {
			reminders++
			assert.Equal(t, demoUserID, n.UserID)
		}
	}
	assert.Equal(t, 1, reminders)
}

func TestMarkAllNotificationsRead(t *testing.T) {
	ctx := context.Background()
	s, _, _ := openTest(t)
	loginAdmin(t, s)
	_, err := s.CreateTask(ctx, mutate.TaskInput{Title: "a", AssigneeIDs: []string{demoUserID}})
	require.NoError(t, err)
	_, err = s.CreateTask(ctx, mutate.TaskInput{Title: "b", AssigneeIDs: []string{demoUserID}})
	require.NoError(t, err)

	require.NoError(t, s.Logout(ctx))
	_, err = s.Login(ctx, DemoUserUsername, DemoPassword, "")
	require.NoError(t, err)
	require.Len(t, query.UnreadNotificationsFor(s.State(), demoUserID), 2)

	_, err = s.MarkAllNotificationsRead(ctx)
	require.NoError(t, err)
	assert.Empty(t, query.UnreadNotificationsFor(s.State(), demoUserID))
	assert.Len(t, query.NotificationsFor(s.State(), demoUserID), 2)
}

func TestLastViewRoundTrip(t *testing.T) {
	ctx := context.Background()
	s, _, _ := openTest(t)

	v, err := s.LastView(ctx)
	require.NoError(t, err)
	assert.Equal(t, store.DefaultView, v)

	require.NoError(t, s.SetLastView(ctx, "calendar"))
	v, err = s.LastView(ctx)
	require.NoError(t, err)
	assert.Equal(t, "calendar", v)

	assert.Error(t, s.SetLastView(ctx, "nowhere"))
}
