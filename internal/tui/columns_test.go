package tui

import (
	"context"
	"strings"
	"testing"
	"time"

	"planify/internal/model"
	"planify/internal/session"
	"planify/internal/store"
)

var testNow = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

type testClock struct{ now time.Time }

func (c *testClock) Now() time.Time { return c.now }

func openDemo(t *testing.T) (*session.Session, *testClock) {
	t.Helper()
	clock := &testClock{now: testNow}
	sess, err := session.Open(context.Background(), store.NewMemory(), session.Options{
		Now:      clock.Now,
		Location: time.UTC,
	})
	if err != nil {
		t.Fatalf("open session: %v", err)
	}
	return sess, clock
}

func TestBuildBoardColumns_DemoWorkspace(t *testing.T) {
	sess, _ := openDemo(t)
	st := sess.State()
	board := buildBoardColumns(st, st.CurrentBoardID)

	if got := len(board.cols); got != len(model.Statuses) {
		t.Fatalf("expected %d columns, got %d", len(model.Statuses), got)
	}
	if got := len(board.cols[0].cards); got != 1 || board.cols[0].cards[0].Task.ID != "task-2" {
		t.Fatalf("expected created column to hold task-2, got %+v", board.cols[0].cards)
	}
	if got := len(board.cols[1].cards); got != 1 || board.cols[1].cards[0].Task.ID != "task-1" {
		t.Fatalf("expected in-progress column to hold task-1, got %+v", board.cols[1].cards)
	}
	if got := board.cols[1].cards[0].Assignees; len(got) != 1 || got[0] != session.DemoUserUsername {
		t.Fatalf("expected assignee %q, got %v", session.DemoUserUsername, got)
	}
	if len(board.cols[2].cards) != 0 {
		t.Fatalf("expected completed column to be empty")
	}
}

func TestBoardSelection_ClampFollowsTaskID(t *testing.T) {
	sess, _ := openDemo(t)
	st := sess.State()
	board := buildBoardColumns(st, st.CurrentBoardID)

	sel := board.clamp(boardSelection{TaskID: "task-1"})
	if sel.Col != 1 || sel.Card != 0 {
		t.Fatalf("expected task-1 at (1,0), got (%d,%d)", sel.Col, sel.Card)
	}

	sel = board.moveCol(sel, 1)
	if sel.Col != 2 || sel.Card != -1 || sel.TaskID != "" {
		t.Fatalf("expected empty completed column selection, got %+v", sel)
	}
	sel = board.moveCol(sel, 5)
	if sel.Col != 2 {
		t.Fatalf("expected column to clamp at the right edge, got %d", sel.Col)
	}

	sel = board.moveCol(boardSelection{Col: 0, Card: 0}, -1)
	if sel.Col != 0 || sel.TaskID != "task-2" {
		t.Fatalf("expected column to clamp at the left edge on task-2, got %+v", sel)
	}
	sel = board.moveCard(sel, 3)
	if sel.Card != 0 {
		t.Fatalf("expected card index to clamp, got %d", sel.Card)
	}

	sel = board.clamp(boardSelection{Col: 1, Card: 0, TaskID: "gone"})
	if sel.TaskID != "task-1" {
		t.Fatalf("expected a stale task id to fall back to the position, got %+v", sel)
	}
}

func TestNeighbourStatus(t *testing.T) {
	if s, ok := neighbourStatus(model.StatusCreated, 1); !ok || s != model.StatusInProgress {
		t.Fatalf("expected created -> in-progress, got %q %v", s, ok)
	}
	if _, ok := neighbourStatus(model.StatusCreated, -1); ok {
		t.Fatalf("expected no column left of created")
	}
	if _, ok := neighbourStatus(model.StatusCompleted, 1); ok {
		t.Fatalf("expected no column right of completed")
	}
}

func TestRenderBoardColumns_HeadersAndCards(t *testing.T) {
	sess, _ := openDemo(t)
	st := sess.State()
	board := buildBoardColumns(st, st.CurrentBoardID)

	out := renderBoardColumns(board, boardSelection{}, testNow, 120, 20)
	for _, want := range []string{"CREATED (1)", "IN PROGRESS (1)", "COMPLETED (0)", "AUTHENTICATION", "USER INTERFACE DESIGN", "(empty)"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in board output, got=%q", want, out)
		}
	}
	if got := renderBoardColumns(board, boardSelection{}, testNow, 0, 20); got != "" {
		t.Fatalf("expected empty output for zero width, got=%q", got)
	}
}

func TestRenderBoardColumns_ScrollsToSelection(t *testing.T) {
	sess, _ := openDemo(t)
	board := buildBoardColumns(sess.State(), sess.State().CurrentBoardID)
	for i := 0; i < 4; i++ {
		board.cols[0].cards = append(board.cols[0].cards, boardCard{Task: model.Task{ID: string(rune('a' + i)), Title: "extra", Priority: model.PriorityLow}})
	}
	out := renderBoardColumns(board, boardSelection{Col: 0, Card: 4, TaskID: "d"}, testNow, 120, 12) // room for two cards
	if !strings.Contains(out, "↑ 3 more") {
		t.Fatalf("expected hidden cards above the selection, got=%q", out)
	}
}
