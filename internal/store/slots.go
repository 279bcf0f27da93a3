package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"planify/internal/model"
)

// Slot keys. One key per collection or scalar of the session state.
const (
	KeyUsers            = "planify-users"
	KeyTasks            = "planify-tasks"
	KeyBoards           = "planify-boards"
	KeyNotifications    = "planify-notifications"
	KeyCurrentUser      = "planify-current-user"
	KeyCurrentBoard     = "planify-current-board"
	KeySavedCredentials = "planify-saved-credentials"
	KeyLastView         = "planify-last-view"
	KeyActionHistory    = "planify-action-history"
	KeyHistoryIndex     = "planify-history-index"
)

// SlotKeys lists every slot in a stable order.
var SlotKeys = []string{
	KeyUsers,
	KeyTasks,
	KeyBoards,
	KeyNotifications,
	KeyCurrentUser,
	KeyCurrentBoard,
	KeySavedCredentials,
	KeyLastView,
	KeyActionHistory,
	KeyHistoryIndex,
}

func IsSlotKey(k string) bool {
	for _, x := range SlotKeys {
		if x == k {
			return true
		}
	}
	return false
}

// DecodeError reports a slot whose stored value is not valid JSON for its type.
type DecodeError struct {
	Key string
	Err error
}

func (e DecodeError) Error() string { return fmt.Sprintf("decode %s: %v", e.Key, e.Err) }

func (e DecodeError) Unwrap() error { return e.Err }

// Get decodes the JSON value stored at key. A missing key yields def.
// A value that does not decode also yields def, together with the decode error.
func Get[T any](ctx context.Context, m Medium, key string, def T) (T, error) {
	raw, ok, err := m.Get(ctx, key)
	if err != nil {
		return def, err
	}
	if !ok || strings.TrimSpace(raw) == "" {
		return def, nil
	}
	var v T
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return def, DecodeError{Key: key, Err: err}
	}
	return v, nil
}

func Put[T any](ctx context.Context, m Medium, key string, v T) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return m.Set(ctx, key, string(b))
}

// Snapshot is the persisted form of a session.
// Empty CurrentUserID / CurrentBoardID and a nil SavedCredentials are stored as absent keys.
type Snapshot struct {
	Users            []model.User
	Tasks            []model.Task
	Boards           []model.Board
	Notifications    []model.Notification
	CurrentUserID    string
	CurrentBoardID   string
	SavedCredentials *model.Credentials
	History          []model.HistoryAction
	HistoryIndex     int
}

// Load reads every state slot. Slots that fail to decode fall back to their defaults;
// their errors are returned alongside the snapshot so callers can report them.
func Load(ctx context.Context, m Medium) (Snapshot, []error, error) {
	var (
		snap Snapshot
		bad  []error
	)
	keep := func(err error) error {
		if err == nil {
			return nil
		}
		var de DecodeError
		if errors.As(err, &de) {
			bad = append(bad, err)
			return nil
		}
		return err
	}
	var err error
	if snap.Users, err = Get(ctx, m, KeyUsers, []model.User{}); keep(err) != nil {
		return Snapshot{}, nil, err
	}
	if snap.Tasks, err = Get(ctx, m, KeyTasks, []model.Task{}); keep(err) != nil {
		return Snapshot{}, nil, err
	}
	if snap.Boards, err = Get(ctx, m, KeyBoards, []model.Board{}); keep(err) != nil {
		return Snapshot{}, nil, err
	}
	if snap.Notifications, err = Get(ctx, m, KeyNotifications, []model.Notification{}); keep(err) != nil {
		return Snapshot{}, nil, err
	}
	if snap.CurrentUserID, err = Get(ctx, m, KeyCurrentUser, ""); keep(err) != nil {
		return Snapshot{}, nil, err
	}
	if snap.CurrentBoardID, err = Get(ctx, m, KeyCurrentBoard, ""); keep(err) != nil {
		return Snapshot{}, nil, err
	}
	if snap.SavedCredentials, err = Get[*model.Credentials](ctx, m, KeySavedCredentials, nil); keep(err) != nil {
		return Snapshot{}, nil, err
	}
	if snap.History, err = Get(ctx, m, KeyActionHistory, []model.HistoryAction{}); keep(err) != nil {
		return Snapshot{}, nil, err
	}
	if snap.HistoryIndex, err = Get(ctx, m, KeyHistoryIndex, -1); keep(err) != nil {
		return Snapshot{}, nil, err
	}
	normalize(&snap)
	return snap, bad, nil
}

// normalize replaces nil slices so that loaded entities compare equal to fresh ones.
func normalize(snap *Snapshot) {
	if snap.Users == nil {
		snap.Users = []model.User{}
	}
	if snap.Tasks == nil {
		snap.Tasks = []model.Task{}
	}
	if snap.Boards == nil {
		snap.Boards = []model.Board{}
	}
	if snap.Notifications == nil {
		snap.Notifications = []model.Notification{}
	}
	if snap.History == nil {
		snap.History = []model.HistoryAction{}
	}
	for i := range snap.Users {
		if snap.Users[i].BoardIDs == nil {
			snap.Users[i].BoardIDs = []string{}
		}
	}
	for i := range snap.Boards {
		if snap.Boards[i].MemberIDs == nil {
			snap.Boards[i].MemberIDs = []string{}
		}
	}
	for i := range snap.Tasks {
		t := &snap.Tasks[i]
		if t.AssigneeIDs == nil {
			t.AssigneeIDs = []string{}
		}
		if t.Attachments == nil {
			t.Attachments = []model.Attachment{}
		}
		if t.Comments == nil {
			t.Comments = []model.Comment{}
		}
		if t.VoiceMessages == nil {
			t.VoiceMessages = []model.VoiceMessage{}
		}
	}
}

// Save writes every state slot in one batch.
func Save(ctx context.Context, m Medium, snap Snapshot) error {
	sets := map[string]*string{}
	put := func(key string, v any) error {
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("encode %s: %w", key, err)
		}
		s := string(b)
		sets[key] = &s
		return nil
	}
	for _, kv := range []struct {
		key string
		v   any
	}{
		{KeyUsers, nonNil(snap.Users)},
		{KeyTasks, nonNil(snap.Tasks)},
		{KeyBoards, nonNil(snap.Boards)},
		{KeyNotifications, nonNil(snap.Notifications)},
		{KeyActionHistory, nonNil(snap.History)},
		{KeyHistoryIndex, snap.HistoryIndex},
	} {
		if err := put(kv.key, kv.v); err != nil {
			return err
		}
	}
	optional := func(key, v string) error {
		if v == "" {
			sets[key] = nil
			return nil
		}
		return put(key, v)
	}
	if err := optional(KeyCurrentUser, snap.CurrentUserID); err != nil {
		return err
	}
	if err := optional(KeyCurrentBoard, snap.CurrentBoardID); err != nil {
		return err
	}
	if snap.SavedCredentials == nil {
		sets[KeySavedCredentials] = nil
	} else if err := put(KeySavedCredentials, snap.SavedCredentials); err != nil {
		return err
	}
	return applyAll(ctx, m, sets)
}

func nonNil[T any](xs []T) []T {
	if xs == nil {
		return []T{}
	}
	return xs
}
