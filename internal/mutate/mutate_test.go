package mutate

import (
	"fmt"
	"testing"
	"time"

	"planify/internal/model"
	"planify/internal/state"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)

func testEnv() Env {
	n := 0
	return Env{
		Now:      testNow,
		Location: time.UTC,
		NewID: func(prefix string) string {
			n++
			return fmt.Sprintf("%s-%d", prefix, n)
		},
		NewCode: func() string { return "NEWCODE1" },
	}
}

func testState() state.State {
	s := state.Empty()
	s.Users = []model.User{
		{ID: "admin", Username: "admin123", Email: "admin@example.com", Password: "password123", Role: model.RoleAdmin, BoardIDs: []string{"b1"}},
		{ID: "bob", Username: "bobby123", Email: "bob@example.com", Password: "password123", Role: model.RoleUser, BoardIDs: []string{"b1"}},
		{ID: "carol", Username: "carol123", Email: "carol@example.com", Password: "password123", Role: model.RoleUser, BoardIDs: []string{}},
	}
	s.Boards = []model.Board{{ID: "b1", Name: "MAIN", Code: "MAIN0001", CreatedBy: "admin", MemberIDs: []string{"admin", "bob"}, CreatedAt: testNow, UpdatedAt: testNow}}
	s.Tasks = []model.Task{{
		ID: "t1", Title: "FIRST", Status: model.StatusCreated, Priority: model.PriorityMedium,
		AssigneeIDs: []string{"bob"}, CreatorID: "admin", BoardID: "b1",
		Attachments: []model.Attachment{}, Comments: []model.Comment{}, VoiceMessages: []model.VoiceMessage{},
		CreatedAt: testNow, UpdatedAt: testNow,
	}}
	s.CurrentBoardID = "b1"
	return state.Apply(s, state.Login{UserID: "admin"})
}

func hm(s string) *string { return &s }

func TestCreateTaskDefaults(t *testing.T) {
	st := testState()
	p, err := CreateTask(st, testEnv(), "admin", TaskInput{Title: "  Write tests  "})
	require.NoError(t, err)
	require.True(t, p.Changed)
	require.NotNil(t, p.Task)

	task := *p.Task
	assert.Equal(t, "Write tests", task.Title)
	assert.Equal(t, model.StatusCreated, task.Status)
	assert.Equal(t, model.PriorityMedium, task.Priority)
	assert.Equal(t, []string{"admin"}, task.AssigneeIDs)
	assert.Equal(t, "b1", task.BoardID)
	assert.Equal(t, testNow, task.CreatedAt)
	assert.Empty(t, p.Effects.Notify, "creator is not notified about their own task")

	require.NotNil(t, p.History)
	assert.Equal(t, model.HistoryAddTask, p.History.Type)
	assert.Equal(t, task.ID, p.History.Payload.ID)
}

func TestCreateTaskValidation(t *testing.T) {
	st := testState()
	past := model.DateTime{Date: "2020-01-01", Time: hm("10:00")}
	dateOnly := model.DateTime{Date: "2030-01-01"}

	tests := []struct {
		name  string
		in    TaskInput
		field string
	}{
		{"empty title", TaskInput{Title: "  "}, "title"},
		{"bad status", TaskInput{Title: "x", Status: "done"}, "status"},
		{"bad priority", TaskInput{Title: "x", Priority: "urgent"}, "priority"},
		{"unknown board", TaskInput{Title: "x", BoardID: "nope"}, "boardId"},
		{"past deadline", TaskInput{Title: "x", Deadline: &past}, "deadline"},
		{"date without time", TaskInput{Title: "x", Deadline: &dateOnly}, "deadline"},
		{"oversized attachment", TaskInput{Title: "x", Attachments: []model.Attachment{{Name: "big", Size: MaxAttachmentSize + 1}}}, "attachment"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CreateTask(st, testEnv(), "admin", tt.in)
			var ve ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Contains(t, ve.Field, tt.field)
		})
	}
}

func TestCreateTaskRequiresActor(t *testing.T) {
	_, err := CreateTask(testState(), testEnv(), "", TaskInput{Title: "x"})
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestParseDeadline(t *testing.T) {
	ts, err := ParseDeadline(model.DateTime{Date: "2025-06-30", Time: hm("18:45")}, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 6, 30, 18, 45, 0, 0, time.UTC), ts)

	_, err = ParseDeadline(model.DateTime{Time: hm("18:45")}, time.UTC)
	assert.Error(t, err)
	_, err = ParseDeadline(model.DateTime{Date: "30/06/2025", Time: hm("18:45")}, time.UTC)
	assert.Error(t, err)
}

func TestUpdateTaskCompletionNotifiesAllAssignees(t *testing.T) {
	st := testState()
	ids := []string{"bob", "admin"}
	st = state.Apply(st, state.UpdateTask{ID: "t1", Patch: state.TaskPatch{AssigneeIDs: &ids}, At: testNow})

	p, err := MoveTask(st, testEnv(), "admin", "t1", model.StatusCompleted)
	require.NoError(t, err)

	var users []string
	for _, n := range p.Effects.Notify {
		assert.Equal(t, model.NotificationTaskCompleted, n.Type)
		users = append(users, n.UserID)
	}
	assert.ElementsMatch(t, []string{"bob", "admin"}, users)

	require.NotNil(t, p.History)
	assert.Equal(t, model.StatusCreated, p.History.Inverse.Task.Status)
	assert.Equal(t, model.StatusCompleted, p.History.Payload.Task.Status)
}

func TestReopeningTaskPurgesCompletionNotifications(t *testing.T) {
	st := testState()
	p, err := MoveTask(st, testEnv(), "admin", "t1", model.StatusCompleted)
	require.NoError(t, err)
	st = p.Result(st)
	require.Len(t, st.Notifications, 1)

	p, err = MoveTask(st, testEnv(), "admin", "t1", model.StatusInProgress)
	require.NoError(t, err)
	assert.Equal(t, []string{st.Notifications[0].ID}, p.Effects.Purge)
	assert.Empty(t, p.Result(st).Notifications)
}

func TestUpdateTaskNotifiesOnlyNewAssignees(t *testing.T) {
	st := testState()
	ids := []string{"bob", "carol", "admin"}
	p, err := UpdateTask(st, testEnv(), "admin", "t1", TaskUpdate{AssigneeIDs: &ids})
	require.NoError(t, err)
	require.Len(t, p.Effects.Notify, 1)
	assert.Equal(t, "carol", p.Effects.Notify[0].UserID)
	assert.Equal(t, model.NotificationTaskAssigned, p.Effects.Notify[0].Type)
}

func TestUpdateTaskRejectsUnknownAssignee(t *testing.T) {
	ids := []string{"ghost"}
	_, err := UpdateTask(testState(), testEnv(), "admin", "t1", TaskUpdate{AssigneeIDs: &ids})
	var ve ValidationError
	assert.ErrorAs(t, err, &ve)
}

func TestUpdateMissingTaskIsNoop(t *testing.T) {
	title := "x"
	p, err := UpdateTask(testState(), testEnv(), "admin", "missing", TaskUpdate{Title: &title})
	require.NoError(t, err)
	assert.False(t, p.Changed)
	assert.False(t, DeleteTask(testState(), testEnv(), "missing").Changed)
}

func TestTogglePinFlips(t *testing.T) {
	st := testState()
	p := TogglePin(st, testEnv(), "admin", "t1")
	st = p.Result(st)
	task, _ := st.FindTask("t1")
	assert.True(t, task.IsPinned)

	st = TogglePin(st, testEnv(), "admin", "t1").Result(st)
	task, _ = st.FindTask("t1")
	assert.False(t, task.IsPinned)
}

func TestAttachmentsAndVoiceMessages(t *testing.T) {
	st := testState()
	p, err := AddAttachment(st, testEnv(), "admin", "t1", model.Attachment{Name: "a.txt", Size: 3, Type: "text/plain", URL: "data:text/plain;base64,YWJj"})
	require.NoError(t, err)
	st = p.Result(st)
	task, _ := st.FindTask("t1")
	require.Len(t, task.Attachments, 1)
	attID := task.Attachments[0].ID
	assert.NotEmpty(t, attID)

	st = RemoveAttachment(st, testEnv(), "admin", "t1", attID).Result(st)
	task, _ = st.FindTask("t1")
	assert.Empty(t, task.Attachments)

	_, err = AddVoiceMessage(st, testEnv(), "admin", "t1", "data:audio/webm;base64,AA==", MaxAttachmentSize+1, 3)
	assert.Error(t, err)
	p, err = AddVoiceMessage(st, testEnv(), "admin", "t1", "data:audio/webm;base64,AA==", 10, 3.5)
	require.NoError(t, err)
	task = *p.Task
	require.Len(t, task.VoiceMessages, 1)
	assert.Equal(t, "admin", task.VoiceMessages[0].UserID)
}

func TestCommentLifecycle(t *testing.T) {
	st := testState()

	_, err := AddComment(st, testEnv(), "bob", "t1", "hi")
	var fe ForbiddenError
	require.ErrorAs(t, err, &fe)

	_, err = AddComment(st, testEnv(), "admin", "t1", "   ")
	var ve ValidationError
	require.ErrorAs(t, err, &ve)

	p, err := AddComment(st, testEnv(), "admin", "t1", "looks good")
	require.NoError(t, err)
	st = p.Result(st)
	task, _ := st.FindTask("t1")
	require.Len(t, task.Comments, 1)
	c := task.Comments[0]
	assert.Equal(t, "admin", c.UserID)

	p, err = UpdateComment(st, testEnv(), "admin", "t1", c.ID, "looks great")
	require.NoError(t, err)
	st = p.Result(st)
	task, _ = st.FindTask("t1")
	assert.Equal(t, "looks great", task.Comments[0].Content)

	p, err = DeleteComment(st, testEnv(), "admin", "t1", c.ID)
	require.NoError(t, err)
	st = p.Result(st)
	task, _ = st.FindTask("t1")
	assert.Empty(t, task.Comments)
}

func TestAddUserJoinsCurrentBoard(t *testing.T) {
	st := testState()
	p, err := AddUser(st, testEnv(), "admin", UserInput{
		Username: "newuser12", Email: "new@example.com", Password: "secret123",
		FirstName: "dana", LastName: "scully", Role: model.RoleAdmin,
	})
	require.NoError(t, err)
	st = p.Result(st)

	u := *p.User
	assert.Equal(t, "DANA", u.FirstName)
	assert.Equal(t, []string{"b1"}, u.BoardIDs)
	b, _ := st.FindBoard("b1")
	assert.True(t, b.HasMember(u.ID))

	var types []model.NotificationType
	for _, n := range p.Effects.Notify {
		types = append(types, n.Type)
	}
	assert.Equal(t, []model.NotificationType{model.NotificationBoardAdded, model.NotificationAdminAssigned}, types)
}

func TestUserValidation(t *testing.T) {
	base := UserInput{Username: "validuser1", Email: "valid@example.com", Password: "secret123", FirstName: "ann", LastName: "lee"}
	tests := []struct {
		name   string
		mutate func(*UserInput)
		field  string
	}{
		{"short username", func(u *UserInput) { u.Username = "short" }, "username"},
		{"symbol in username", func(u *UserInput) { u.Username = "user_name1" }, "username"},
		{"digits-only password", func(u *UserInput) { u.Password = "12345678" }, "password"},
		{"bad email", func(u *UserInput) { u.Email = "not-an-email" }, "email"},
		{"one-letter name", func(u *UserInput) { u.FirstName = "a" }, "firstName"},
		{"digit in name", func(u *UserInput) { u.LastName = "l33" }, "lastName"},
		{"bad role", func(u *UserInput) { u.Role = "owner" }, "role"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := base
			tt.mutate(&in)
			_, err := AddUser(testState(), testEnv(), "admin", in)
			var ve ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.field, ve.Field)
		})
	}
}

func TestUniquenessIsCaseInsensitive(t *testing.T) {
	_, err := AddUser(testState(), testEnv(), "admin", UserInput{
		Username: "ADMIN123", Email: "other@example.com", Password: "secret123", FirstName: "ann", LastName: "lee",
	})
	var ce ConflictError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "username", ce.Field)
}

func TestUpdateUserPromotionNotifies(t *testing.T) {
	role := model.RoleAdmin
	p, err := UpdateUser(testState(), testEnv(), "admin", "bob", UserUpdate{Role: &role})
	require.NoError(t, err)
	require.Len(t, p.Effects.Notify, 1)
	assert.Equal(t, model.NotificationAdminAssigned, p.Effects.Notify[0].Type)
	assert.Nil(t, p.History, "profile edits are not undo-able")
}

func TestAddBoardMember(t *testing.T) {
	st := testState()
	p, err := AddBoardMember(st, testEnv(), "admin", "b1", "CAROL123", "")
	require.NoError(t, err)
	st = p.Result(st)
	b, _ := st.FindBoard("b1")
	u, _ := st.FindUser("carol")
	assert.True(t, b.HasMember("carol"))
	assert.Contains(t, u.BoardIDs, "b1")

	_, err = AddBoardMember(st, testEnv(), "admin", "b1", "carol123", "")
	var ce ConflictError
	assert.ErrorAs(t, err, &ce)

	_, err = AddBoardMember(st, testEnv(), "admin", "b1", "nobody12", "")
	var nf NotFoundError
	assert.ErrorAs(t, err, &nf)
}

func TestUserAndBoardManagementIsAdminOnly(t *testing.T) {
	st := testState()
	admin := model.RoleAdmin
	name := "hijacked"

	_, err := AddUser(st, testEnv(), "bob", UserInput{
		Username: "newuser12", Email: "new@example.com", Password: "secret123", FirstName: "ann", LastName: "lee",
	})
	var fe ForbiddenError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "bob", fe.ActorID)

	_, err = UpdateUser(st, testEnv(), "bob", "carol", UserUpdate{FirstName: &name})
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "edit user", fe.Action)

	_, err = UpdateUser(st, testEnv(), "bob", "bob", UserUpdate{Role: &admin})
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "change role", fe.Action)

	_, err = DeleteUser(st, testEnv(), "bob", "admin")
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "delete user", fe.Action)

	_, err = UpdateBoard(st, testEnv(), "bob", "b1", BoardUpdate{Name: &name})
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "edit board", fe.Action)

	_, err = AddBoardMember(st, testEnv(), "bob", "b1", "carol123", "")
	require.ErrorAs(t, err, &fe)

	_, err = UpdateBoard(st, testEnv(), "", "b1", BoardUpdate{Name: &name})
	assert.ErrorIs(t, err, ErrNotAuthenticated)

	u, _ := st.FindUser("bob")
	assert.Equal(t, model.RoleUser, u.Role)
	b, _ := st.FindBoard("b1")
	assert.NotEqual(t, "HIJACKED", b.Name)
}

func TestUpdateUserOwnProfile(t *testing.T) {
	st := testState()
	first := "robert"
	p, err := UpdateUser(st, testEnv(), "bob", "bob", UserUpdate{FirstName: &first})
	require.NoError(t, err)
	assert.Equal(t, "ROBERT", p.User.FirstName)

	same := model.RoleUser
	_, err = UpdateUser(st, testEnv(), "bob", "bob", UserUpdate{Role: &same})
	require.NoError(t, err, "restating the current role is not a change")

	demote := model.RoleUser
	_, err = UpdateUser(st, testEnv(), "admin", "admin", UserUpdate{Role: &demote})
	var fe ForbiddenError
	require.ErrorAs(t, err, &fe, "admins cannot change their own role either")
}

func TestUpdateBoardByAdmin(t *testing.T) {
	st := testState()
	name := " roadmap "
	p, err := UpdateBoard(st, testEnv(), "admin", "b1", BoardUpdate{Name: &name})
	require.NoError(t, err)
	st = p.Result(st)
	b, _ := st.FindBoard("b1")
	assert.Equal(t, "ROADMAP", b.Name)
}

func TestDeleteLastBoardClearsSelection(t *testing.T) {
	st := testState()
	p, err := DeleteBoard(st, testEnv(), "admin", "b1")
	require.NoError(t, err)
	st = p.Result(st)
	assert.Empty(t, st.Boards)
	assert.Equal(t, "", st.CurrentBoardID)
}

func TestAddAndDeleteBoardKeepMembershipSymmetric(t *testing.T) {
	st := testState()
	p, err := AddBoard(st, testEnv(), "admin", "roadmap", "q3 plans")
	require.NoError(t, err)
	st = p.Result(st)
	b := *p.Board
	assert.Equal(t, "ROADMAP", b.Name)
	assert.Equal(t, "Q3 PLANS", b.Description)
	assert.Equal(t, "NEWCODE1", b.Code)
	admin, _ := st.FindUser("admin")
	assert.Contains(t, admin.BoardIDs, b.ID)

	st = state.Apply(st, state.SetCurrentBoard{BoardID: b.ID})
	p, err = DeleteBoard(st, testEnv(), "admin", b.ID)
	require.NoError(t, err)
	st = p.Result(st)
	admin, _ = st.FindUser("admin")
	assert.NotContains(t, admin.BoardIDs, b.ID)
	assert.Equal(t, "b1", st.CurrentBoardID)
	assert.Equal(t, b.ID, p.History.Inverse.CurrentBoardID)
}

func TestDeleteBoardPermissions(t *testing.T) {
	st := testState()
	_, err := DeleteBoard(st, testEnv(), "bob", "b1")
	var fe ForbiddenError
	assert.ErrorAs(t, err, &fe)
}

func TestDeleteBoardKeepsTasks(t *testing.T) {
	st := testState()
	p, err := DeleteBoard(st, testEnv(), "admin", "b1")
	require.NoError(t, err)
	st = p.Result(st)
	assert.Len(t, st.Tasks, 1)
	assert.Empty(t, st.CurrentBoardID)
}

func TestLoginWithJoinCode(t *testing.T) {
	st := state.Apply(testState(), state.Logout{})
	p, err := Login(st, testEnv(), "carol@example.com", "password123", "MAIN0001")
	require.NoError(t, err)
	st = p.Result(st)

	u, ok := st.CurrentUser()
	require.True(t, ok)
	assert.Equal(t, "carol", u.ID)
	assert.Equal(t, "b1", st.CurrentBoardID)
	assert.Contains(t, u.BoardIDs, "b1")
	require.NotNil(t, st.SavedCredentials)
	assert.Equal(t, "carol123", st.SavedCredentials.Username)
}

func TestLoginWithBadCodeFallsBackToFirstBoard(t *testing.T) {
	st := state.Apply(testState(), state.Logout{})
	st = state.Apply(st, state.SetCurrentBoard{BoardID: ""})
	p, err := Login(st, testEnv(), "bobby123", "password123", "WRONG")
	require.NoError(t, err)
	st = p.Result(st)
	assert.Equal(t, "b1", st.CurrentBoardID)
}

func TestJoinBoardByCodeAlreadyMember(t *testing.T) {
	p, err := JoinBoardByCode(testState(), testEnv(), "MAIN0001")
	require.NoError(t, err)
	assert.False(t, p.Changed)
}

func TestNotificationOps(t *testing.T) {
	st := testState()
	_, err := AddNotification(st, testEnv(), NotificationInput{UserID: "bob", Type: "bogus", Title: "x"})
	assert.Error(t, err)

	p, err := AddNotification(st, testEnv(), NotificationInput{UserID: "bob", Type: model.NotificationTaskAssigned, Title: "hello"})
	require.NoError(t, err)
	st = p.Result(st)
	id := st.Notifications[0].ID

	st = MarkNotificationRead(st, id).Result(st)
	assert.True(t, st.Notifications[0].IsRead)
	assert.False(t, MarkNotificationRead(st, id).Changed)

	st = DeleteNotification(st, id).Result(st)
	assert.Empty(t, st.Notifications)
}

func TestCheckDeadlinesWindow(t *testing.T) {
	st := testState()
	soon := testNow.Add(24 * time.Hour)
	late := testNow.Add(72 * time.Hour)
	past := testNow.Add(-time.Hour)
	mk := func(id string, due time.Time, status model.TaskStatus, assignees ...string) model.Task {
		return model.Task{ID: id, Title: id, Status: status, AssigneeIDs: assignees, BoardID: "b1", Deadline: &due}
	}
	st = state.ApplyAll(st,
		state.AddTask{Task: mk("soon", soon, model.StatusCreated, "bob", "ghost")},
		state.AddTask{Task: mk("late", late, model.StatusCreated, "bob")},
		state.AddTask{Task: mk("past", past, model.StatusCreated, "bob")},
		state.AddTask{Task: mk("done", soon, model.StatusCompleted, "bob")},
	)

	p := CheckDeadlines(st, testEnv())
	require.Len(t, p.Effects.Notify, 1)
	assert.Equal(t, "soon", p.Effects.Notify[0].RelatedID)
	assert.Equal(t, "bob", p.Effects.Notify[0].UserID)

	st = p.Result(st)
	assert.False(t, CheckDeadlines(st, testEnv()).Changed)
}
