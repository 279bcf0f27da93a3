package perm

import (
	"testing"

	"planify/internal/model"
	"planify/internal/state"
)

func TestCanManageComments(t *testing.T) {
	admin := &model.User{ID: "u1", Role: model.RoleAdmin}
	user := &model.User{ID: "u2", Role: model.RoleUser}

	if !CanManageComments(admin) {
		t.Fatalf("expected admin to manage comments")
	}
	if CanManageComments(user) {
		t.Fatalf("expected regular user to be refused")
	}
	if CanManageComments(nil) {
		t.Fatalf("expected nil actor to be refused")
	}
}

func TestCanDeleteBoard(t *testing.T) {
	admin := &model.User{ID: "u1", Role: model.RoleAdmin}
	owner := &model.User{ID: "u2", Role: model.RoleUser}
	other := &model.User{ID: "u3", Role: model.RoleUser}

	mine := model.Board{ID: "b1", CreatedBy: "u2"}
	theirs := model.Board{ID: "b2", CreatedBy: "u1"}

	one := state.State{Boards: []model.Board{mine}}
	two := state.State{Boards: []model.Board{mine, theirs}}

	tests := []struct {
		name  string
		st    state.State
		actor *model.User
		board model.Board
		want  bool
	}{
		{"admin any board", one, admin, mine, true},
		{"owner with spare board", two, owner, mine, true},
		{"owner of last board", one, owner, mine, false},
		{"non-owner", two, other, mine, false},
		{"owner of someone else's board", two, owner, theirs, false},
		{"nil actor", two, nil, mine, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanDeleteBoard(tt.st, tt.actor, tt.board); got != tt.want {
				t.Fatalf("CanDeleteBoard=%v, want %v", got, tt.want)
			}
		})
	}
}

func TestCanDeleteUser_RefusesSelf(t *testing.T) {
	a := &model.User{ID: "u1", Role: model.RoleAdmin}
	if CanDeleteUser(a, "u1") {
		t.Fatalf("expected self-deletion to be refused")
	}
	if !CanDeleteUser(a, "u2") {
		t.Fatalf("expected deleting another user to be allowed")
	}
	if CanDeleteUser(nil, "u2") {
		t.Fatalf("expected nil actor to be refused")
	}
}

func TestCanManageUsersAndBoards(t *testing.T) {
	admin := &model.User{ID: "u1", Role: model.RoleAdmin}
	user := &model.User{ID: "u2", Role: model.RoleUser}

	if !CanManageUsers(admin) || !CanEditBoard(admin) {
		t.Fatalf("expected admin to manage users and edit boards")
	}
	if CanManageUsers(user) || CanEditBoard(user) {
		t.Fatalf("expected regular user to be refused")
	}
	if CanManageUsers(nil) || CanEditBoard(nil) {
		t.Fatalf("expected nil actor to be refused")
	}
}

func TestCanChangeRole(t *testing.T) {
	admin := &model.User{ID: "u1", Role: model.RoleAdmin}
	user := &model.User{ID: "u2", Role: model.RoleUser}

	if !CanChangeRole(admin, "u2") {
		t.Fatalf("expected admin to change another user's role")
	}
	if CanChangeRole(admin, "u1") {
		t.Fatalf("expected admin to be refused their own role")
	}
	if CanChangeRole(user, "u2") {
		t.Fatalf("expected regular user to be refused their own role")
	}
	if CanChangeRole(nil, "u2") {
		t.Fatalf("expected nil actor to be refused")
	}
}
