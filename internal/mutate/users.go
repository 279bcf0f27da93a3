package mutate

import (
	"fmt"
	"strings"

	"planify/internal/model"
	"planify/internal/perm"
	"planify/internal/state"
)

type UserInput struct {
	Username   string
	Email      string
	Password   string
	FirstName  string
	LastName   string
	Patronymic string
	Role       model.Role
	Avatar     string
}

func (in *UserInput) normalize() error {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Patronymic = strings.TrimSpace(in.Patronymic)
	if err := validateUsername(in.Username); err != nil {
		return err
	}
	if err := validateEmail(in.Email); err != nil {
		return err
	}
	if err := validatePassword(in.Password); err != nil {
		return err
	}
	if err := validateName("firstName", in.FirstName); err != nil {
		return err
	}
	if err := validateName("lastName", in.LastName); err != nil {
		return err
	}
	if in.Patronymic != "" {
		if err := validateName("patronymic", in.Patronymic); err != nil {
			return err
		}
	}
	in.FirstName = strings.ToUpper(in.FirstName)
	in.LastName = strings.ToUpper(in.LastName)
	in.Patronymic = strings.ToUpper(in.Patronymic)
	return nil
}

// AddUser plans an admin invite: the new user joins the current board and is notified.
func AddUser(st state.State, env Env, actorID string, in UserInput) (Plan, error) {
	a, err := actor(st, actorID)
	if err != nil {
		return Plan{}, err
	}
	if !perm.CanManageUsers(&a) {
		return Plan{}, ForbiddenError{ActorID: actorID, Action: "add user"}
	}
	if err := in.normalize(); err != nil {
		return Plan{}, err
	}
	if in.Role == "" {
		in.Role = model.RoleUser
	}
	if !validRole(in.Role) {
		return Plan{}, ValidationError{Field: "role", Reason: fmt.Sprintf("unknown role %q", in.Role)}
	}
	if err := checkUnique(st, in.Username, in.Email, ""); err != nil {
		return Plan{}, err
	}

	u := model.User{
		ID:         env.id(st, "user"),
		Username:   in.Username,
		Email:      in.Email,
		FirstName:  in.FirstName,
		LastName:   in.LastName,
		Patronymic: in.Patronymic,
		Password:   in.Password,
		Role:       in.Role,
		Avatar:     in.Avatar,
		CreatedAt:  env.Now,
		BoardIDs:   []string{},
	}
	board, hasBoard := st.FindBoard(st.CurrentBoardID)
	if hasBoard {
		u.BoardIDs = []string{board.ID}
	}

	actions := []state.Action{state.AddUser{User: u}}
	actions = append(actions, linkUserToBoards(st, u, env.Now)...)

	var fx Effects
	if hasBoard {
		fx.Notify = append(fx.Notify, boardAdded(st, env, u.ID, board))
	}
	if u.IsAdmin() {
		fx.Notify = append(fx.Notify, adminAssigned(st, env, u.ID))
	}
	snap := u
	return Plan{
		Changed: true,
		Actions: actions,
		Effects: fx,
		History: &model.HistoryAction{
			Type:    model.HistoryAddUser,
			Payload: model.HistoryPayload{ID: u.ID, User: &snap},
			At:      env.Now,
		},
		User: &u,
	}, nil
}

// UserUpdate is a partial profile edit. Board membership is changed through boards, not here.
type UserUpdate struct {
	Username   *string
	Email      *string
	FirstName  *string
	LastName   *string
	Patronymic *string
	Password   *string
	Role       *model.Role
	Avatar     *string
}

// UpdateUser merges u into the user. Name fields are upper-cased. Not undo-able.
// Admins may edit anyone; everybody else only their own profile. Nobody changes their own role.
func UpdateUser(st state.State, env Env, actorID, userID string, u UserUpdate) (Plan, error) {
	before, ok := st.FindUser(strings.TrimSpace(userID))
	if !ok {
		return Plan{}, nil
	}
	a, err := actor(st, actorID)
	if err != nil {
		return Plan{}, err
	}
	if a.ID != before.ID && !perm.CanManageUsers(&a) {
		return Plan{}, ForbiddenError{ActorID: actorID, Action: "edit user"}
	}
	if u.Role != nil && *u.Role != before.Role && !perm.CanChangeRole(&a, before.ID) {
		return Plan{}, ForbiddenError{ActorID: actorID, Action: "change role"}
	}
	var p state.UserPatch
	if u.Username != nil {
		v := strings.TrimSpace(*u.Username)
		if err := validateUsername(v); err != nil {
			return Plan{}, err
		}
		p.Username = &v
	}
	if u.Email != nil {
		v := strings.TrimSpace(*u.Email)
		if err := validateEmail(v); err != nil {
			return Plan{}, err
		}
		p.Email = &v
	}
	if u.Password != nil {
		if err := validatePassword(*u.Password); err != nil {
			return Plan{}, err
		}
		p.Password = u.Password
	}
	for _, f := range []struct {
		name string
		in   *string
		out  **string
	}{
		{"firstName", u.FirstName, &p.FirstName},
		{"lastName", u.LastName, &p.LastName},
		{"patronymic", u.Patronymic, &p.Patronymic},
	} {
		if f.in == nil {
			continue
		}
		v := strings.TrimSpace(*f.in)
		if v != "" || f.name != "patronymic" {
			if err := validateName(f.name, v); err != nil {
				return Plan{}, err
			}
		}
		v = strings.ToUpper(v)
		*f.out = &v
	}
	if u.Role != nil {
		if !validRole(*u.Role) {
			return Plan{}, ValidationError{Field: "role", Reason: fmt.Sprintf("unknown role %q", *u.Role)}
		}
		p.Role = u.Role
	}
	p.Avatar = u.Avatar

	var username, email string
	if p.Username != nil {
		username = *p.Username
	}
	if p.Email != nil {
		email = *p.Email
	}
	if err := checkUnique(st, username, email, before.ID); err != nil {
		return Plan{}, err
	}

	after := p.ApplyTo(before)
	var fx Effects
	if after.IsAdmin() && !before.IsAdmin() {
		fx.Notify = append(fx.Notify, adminAssigned(st, env, before.ID))
	}
	return Plan{
		Changed: true,
		Actions: []state.Action{state.UpdateUser{ID: before.ID, Patch: p}},
		Effects: fx,
		User:    &after,
	}, nil
}

// DeleteUser removes a user and drops it from every board's members.
// Tasks assigned to the user keep the dangling id.
func DeleteUser(st state.State, env Env, actorID, userID string) (Plan, error) {
	target, ok := st.FindUser(strings.TrimSpace(userID))
	if !ok {
		return Plan{}, nil
	}
	a, err := actor(st, actorID)
	if err != nil {
		return Plan{}, err
	}
	if !perm.CanManageUsers(&a) {
		return Plan{}, ForbiddenError{ActorID: actorID, Action: "delete user"}
	}
	if !perm.CanDeleteUser(&a, target.ID) {
		return Plan{}, ForbiddenError{ActorID: actorID, Action: "delete own account"}
	}
	actions := []state.Action{state.DeleteUser{ID: target.ID}}
	actions = append(actions, unlinkUserFromBoards(st, target.ID, env.Now)...)
	snap := target
	return Plan{
		Changed: true,
		Actions: actions,
		History: &model.HistoryAction{
			Type:    model.HistoryDeleteUser,
			Payload: model.HistoryPayload{ID: target.ID},
			Inverse: &model.HistoryPayload{ID: target.ID, User: &snap},
			At:      env.Now,
		},
		User: &target,
	}, nil
}

// AddBoardMember adds an existing user, found by username, to a board with the given role.
func AddBoardMember(st state.State, env Env, actorID, boardID, username string, role model.Role) (Plan, error) {
	b, ok := st.FindBoard(strings.TrimSpace(boardID))
	if !ok {
		return Plan{}, nil
	}
	a, err := actor(st, actorID)
	if err != nil {
		return Plan{}, err
	}
	if !perm.CanManageUsers(&a) {
		return Plan{}, ForbiddenError{ActorID: actorID, Action: "add board member"}
	}
	var u model.User
	found := false
	for _, x := range st.Users {
		if strings.EqualFold(x.Username, strings.TrimSpace(username)) {
			u, found = x, true
			break
		}
	}
	if !found {
		return Plan{}, NotFoundError{Kind: "user", ID: username}
	}
	if containsID(u.BoardIDs, b.ID) {
		return Plan{}, ConflictError{Field: "member", Value: u.Username}
	}
	if role == "" {
		role = u.Role
	}
	if !validRole(role) {
		return Plan{}, ValidationError{Field: "role", Reason: fmt.Sprintf("unknown role %q", role)}
	}

	ids := withID(u.BoardIDs, b.ID)
	members := withID(b.MemberIDs, u.ID)
	actions := []state.Action{
		state.UpdateUser{ID: u.ID, Patch: state.UserPatch{BoardIDs: &ids, Role: &role}},
		state.UpdateBoard{ID: b.ID, Patch: state.BoardPatch{MemberIDs: &members}, At: env.Now},
	}
	fx := Effects{Notify: []model.Notification{boardAdded(st, env, u.ID, b)}}
	if role == model.RoleAdmin && !u.IsAdmin() {
		fx.Notify = append(fx.Notify, adminAssigned(st, env, u.ID))
	}
	after := u
	after.BoardIDs = ids
	after.Role = role
	return Plan{Changed: true, Actions: actions, Effects: fx, User: &after}, nil
}
