package mutate

import (
	"strings"

	"planify/internal/model"
	"planify/internal/state"
)

// Login authenticates by username or email plus password, remembers the credentials and
// selects a board: the one behind joinCode when it resolves, otherwise the user's first board.
func Login(st state.State, env Env, usernameOrEmail, password, joinCode string) (Plan, error) {
	u, ok := st.FindUserByLogin(usernameOrEmail)
	if !ok || u.Password != password {
		return Plan{}, ErrInvalidCredentials
	}
	creds := model.Credentials{Username: u.Username, Password: password}
	p := Plan{
		Changed: true,
		Actions: []state.Action{
			state.Login{UserID: u.ID},
			state.SetSavedCredentials{Credentials: &creds},
		},
		User: &u,
	}
	if code := strings.TrimSpace(joinCode); code != "" {
		mid := p.Result(st)
		if jp, err := JoinBoardByCode(mid, env, code); err == nil {
			p.Actions = append(p.Actions, jp.Actions...)
			p.Effects = jp.Effects
			p.Board = jp.Board
			if jp.User != nil {
				p.User = jp.User
			}
			return p, nil
		}
	}
	if len(u.BoardIDs) > 0 {
		p.Actions = append(p.Actions, state.SetCurrentBoard{BoardID: u.BoardIDs[0]})
	}
	return p, nil
}

func Logout(st state.State) Plan {
	if !st.IsAuthenticated {
		return Plan{}
	}
	return Plan{Changed: true, Actions: []state.Action{state.Logout{}}}
}

func ClearSavedCredentials(st state.State) Plan {
	if st.SavedCredentials == nil {
		return Plan{}
	}
	return Plan{Changed: true, Actions: []state.Action{state.SetSavedCredentials{Credentials: nil}}}
}

type RegisterInput struct {
	Username   string
	Email      string
	Password   string
	FirstName  string
	LastName   string
	Patronymic string
	BoardCode  string
}

// Register creates an account and signs it in. With a valid board code the user joins that
// board as a regular user; otherwise they become an admin of a new personal board.
func Register(st state.State, env Env, in RegisterInput) (Plan, error) {
	ui := UserInput{
		Username:   in.Username,
		Email:      in.Email,
		Password:   in.Password,
		FirstName:  in.FirstName,
		LastName:   in.LastName,
		Patronymic: in.Patronymic,
	}
	if err := ui.normalize(); err != nil {
		return Plan{}, err
	}
	if err := checkUnique(st, ui.Username, ui.Email, ""); err != nil {
		return Plan{}, err
	}

	u := model.User{
		ID:         env.id(st, "user"),
		Username:   ui.Username,
		Email:      ui.Email,
		FirstName:  ui.FirstName,
		LastName:   ui.LastName,
		Patronymic: ui.Patronymic,
		Password:   ui.Password,
		Role:       model.RoleAdmin,
		CreatedAt:  env.Now,
	}

	var actions []state.Action
	var board model.Board
	if b, ok := st.FindBoardByCode(in.BoardCode); ok {
		board = b
		u.Role = model.RoleUser
		members := withID(b.MemberIDs, u.ID)
		actions = append(actions, state.UpdateBoard{ID: b.ID, Patch: state.BoardPatch{MemberIDs: &members}, At: env.Now})
		board.MemberIDs = members
	} else {
		who := u.FirstName + " " + u.LastName
		board = model.Board{
			ID:          env.id(st, "board"),
			Name:        "BOARD " + who,
			Description: "PERSONAL BOARD FOR " + who,
			Code:        env.code(st),
			CreatedBy:   u.ID,
			MemberIDs:   []string{u.ID},
			CreatedAt:   env.Now,
			UpdatedAt:   env.Now,
		}
		actions = append(actions, state.AddBoard{Board: board})
	}
	u.BoardIDs = []string{board.ID}

	creds := model.Credentials{Username: u.Username, Password: u.Password}
	actions = append(actions,
		state.AddUser{User: u},
		state.Login{UserID: u.ID},
		state.SetSavedCredentials{Credentials: &creds},
		state.SetCurrentBoard{BoardID: board.ID},
	)
	return Plan{Changed: true, Actions: actions, User: &u, Board: &board}, nil
}

// JoinBoardByCode adds the current user to the board with the given join code and selects it.
// Joining demotes the user to the regular role.
func JoinBoardByCode(st state.State, env Env, code string) (Plan, error) {
	u, ok := st.CurrentUser()
	if !ok {
		return Plan{}, ErrNotAuthenticated
	}
	b, ok := st.FindBoardByCode(code)
	if !ok {
		return Plan{}, ErrBoardCodeNotFound
	}
	p := Plan{Changed: true, Board: &b, User: &u}
	if !containsID(u.BoardIDs, b.ID) {
		ids := withID(u.BoardIDs, b.ID)
		role := model.RoleUser
		p.Actions = append(p.Actions, state.UpdateUser{ID: u.ID, Patch: state.UserPatch{BoardIDs: &ids, Role: &role}})
		if !b.HasMember(u.ID) {
			members := withID(b.MemberIDs, u.ID)
			p.Actions = append(p.Actions, state.UpdateBoard{ID: b.ID, Patch: state.BoardPatch{MemberIDs: &members}, At: env.Now})
		}
		p.Effects.Notify = append(p.Effects.Notify, boardAdded(st, env, u.ID, b))
		after := u
		after.BoardIDs = ids
		after.Role = role
		p.User = &after
	}
	if st.CurrentBoardID != b.ID {
		p.Actions = append(p.Actions, state.SetCurrentBoard{BoardID: b.ID})
	}
	if len(p.Actions) == 0 {
		p.Changed = false
	}
	return p, nil
}
