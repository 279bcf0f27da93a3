// Package session owns one logical client session: the entity store, the action log
// and the persistent medium behind them.
//
// Every Mutation API call runs to completion synchronously: plan, dispatch, record,
// write through. A Session is not safe for concurrent use.
package session

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"planify/internal/history"
	"planify/internal/model"
	"planify/internal/mutate"
	"planify/internal/state"
	"planify/internal/store"
)

type Options struct {
	// Now defaults to time.Now.
	Now func() time.Time
	// Location interprets deadline dates and times. Defaults to time.Local.
	Location *time.Location
	// Logger defaults to a discard logger.
	Logger *slog.Logger
	// Origin is the base of share links. Defaults to store.DefaultOrigin.
	Origin string

	NewID   func(prefix string) string
	NewCode func() string
}

type Session struct {
	medium store.Medium
	st     state.State
	hist   *history.Log
	logger *slog.Logger
	opts   Options
}

// Open bootstraps a session from m. An empty medium (no users) is seeded with the
// demo workspace. A stored current user that still resolves is signed back in.
func Open(ctx context.Context, m store.Medium, opts Options) (*Session, error) {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	s := &Session{medium: m, logger: opts.Logger, opts: opts}

	snap, bad, err := store.Load(ctx, m)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	for _, e := range bad {
		s.logger.Warn("ignoring unreadable slot", "err", e)
	}

	st := state.Empty()
	seeded := false
	if len(snap.Users) == 0 {
		now := s.now()
		snap.Users = demoUsers(now)
		snap.Boards = demoBoards(now)
		snap.Tasks = demoTasks(now)
		if snap.CurrentBoardID == "" {
			snap.CurrentBoardID = demoBoardID
		}
		seeded = true
		s.logger.Info("seeded demo workspace", "users", len(snap.Users), "boards", len(snap.Boards), "tasks", len(snap.Tasks))
	}
	st = state.ApplyAll(st,
		state.SetUsers{Users: snap.Users},
		state.SetBoards{Boards: snap.Boards},
		state.SetTasks{Tasks: snap.Tasks},
		state.SetNotifications{Notifications: snap.Notifications},
	)
	if snap.CurrentBoardID != "" {
		st = state.Apply(st, state.SetCurrentBoard{BoardID: snap.CurrentBoardID})
	}
	if snap.CurrentUserID != "" {
		if _, ok := st.FindUser(snap.CurrentUserID); ok {
			st = state.Apply(st, state.Login{UserID: snap.CurrentUserID})
		} else {
			s.logger.Warn("stored current user no longer exists", "user", snap.CurrentUserID)
		}
	}
	if snap.SavedCredentials != nil {
		st = state.Apply(st, state.SetSavedCredentials{Credentials: snap.SavedCredentials})
	}
	s.st = st
	s.hist = history.Restore(snap.History, snap.HistoryIndex)

	if seeded {
		if err := s.persist(ctx); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *Session) now() time.Time { return s.opts.Now() }

func (s *Session) env() mutate.Env {
	return mutate.Env{
		Now:      s.now(),
		Location: s.opts.Location,
		NewID:    s.opts.NewID,
		NewCode:  s.opts.NewCode,
	}
}

// State returns the current snapshot. It is never mutated by later calls.
func (s *Session) State() state.State { return s.st }

func (s *Session) Medium() store.Medium { return s.medium }

func (s *Session) Now() time.Time { return s.now() }

func (s *Session) CurrentUser() (model.User, bool) { return s.st.CurrentUser() }

func (s *Session) CurrentBoard() (model.Board, bool) { return s.st.FindBoard(s.st.CurrentBoardID) }

func (s *Session) SavedCredentials() *model.Credentials { return s.st.SavedCredentials }

func (s *Session) actorID() string {
	if u, ok := s.st.CurrentUser(); ok {
		return u.ID
	}
	return ""
}

func (s *Session) snapshot() store.Snapshot {
	cur := ""
	if s.st.IsAuthenticated {
		cur = s.st.CurrentUserID
	}
	return store.Snapshot{
		Users:            s.st.Users,
		Tasks:            s.st.Tasks,
		Boards:           s.st.Boards,
		Notifications:    s.st.Notifications,
		CurrentUserID:    cur,
		CurrentBoardID:   s.st.CurrentBoardID,
		SavedCredentials: s.st.SavedCredentials,
		History:          s.hist.Entries,
		HistoryIndex:     s.hist.Index,
	}
}

func (s *Session) persist(ctx context.Context) error {
	if err := store.Save(ctx, s.medium, s.snapshot()); err != nil {
		s.logger.Warn("write-through failed", "err", err)
		return fmt.Errorf("persist session: %w", err)
	}
	return nil
}

// dispatch applies a plan: reducer actions, then effects, then the log entry, then write-through.
func (s *Session) dispatch(ctx context.Context, op string, p mutate.Plan) error {
	if !p.Changed {
		s.logger.Debug("no-op", "op", op)
		return nil
	}
	s.st = p.Result(s.st)
	if p.History != nil {
		s.hist.Record(*p.History)
	}
	s.logger.Debug("dispatched", "op", op,
		"actions", len(p.Actions),
		"notify", len(p.Effects.Notify),
		"purge", len(p.Effects.Purge),
		"logged", p.History != nil)
	return s.persist(ctx)
}

func (s *Session) run(ctx context.Context, op string, p mutate.Plan, err error) (mutate.Plan, error) {
	if err != nil {
		s.logger.Debug("rejected", "op", op, "err", err)
		return mutate.Plan{}, err
	}
	if err := s.dispatch(ctx, op, p); err != nil {
		return p, err
	}
	return p, nil
}
