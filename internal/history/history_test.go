package history

import (
	"fmt"
	"testing"

	"planify/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entry(id string) model.HistoryAction {
	return model.HistoryAction{Type: model.HistoryAddTask, Payload: model.HistoryPayload{ID: id}}
}

func TestRecordUndoRedo(t *testing.T) {
	l := New()
	assert.False(t, l.CanUndo())
	assert.False(t, l.CanRedo())

	l.Record(entry("a"))
	l.Record(entry("b"))
	require.Equal(t, 1, l.Index)

	var got []string
	apply := func(e model.HistoryAction) { got = append(got, e.Payload.ID) }

	assert.True(t, l.Undo(apply))
	assert.True(t, l.Undo(apply))
	assert.False(t, l.Undo(apply), "exhausted")
	assert.Equal(t, []string{"b", "a"}, got)
	assert.Equal(t, -1, l.Index)

	got = nil
	assert.True(t, l.Redo(apply))
	assert.True(t, l.Redo(apply))
	assert.False(t, l.Redo(apply))
	assert.Equal(t, []string{"a", "b"}, got)
}

func TestRecordTruncatesRedoTail(t *testing.T) {
	l := New()
	l.Record(entry("a"))
	l.Record(entry("b"))
	l.Record(entry("c"))
	l.Undo(func(model.HistoryAction) {})
	l.Undo(func(model.HistoryAction) {})

	l.Record(entry("d"))
	require.Len(t, l.Entries, 2)
	assert.Equal(t, "a", l.Entries[0].Payload.ID)
	assert.Equal(t, "d", l.Entries[1].Payload.ID)
	assert.Equal(t, 1, l.Index)
	assert.False(t, l.CanRedo())
}

func TestRecordCapsLength(t *testing.T) {
	l := New()
	for i := 0; i < MaxEntries+7; i++ {
		l.Record(entry(fmt.Sprint(i)))
	}
	require.Len(t, l.Entries, MaxEntries)
	assert.Equal(t, MaxEntries-1, l.Index)
	assert.Equal(t, "7", l.Entries[0].Payload.ID)
	e, ok := l.Peek()
	require.True(t, ok)
	assert.Equal(t, fmt.Sprint(MaxEntries+6), e.Payload.ID)
}

func TestRestoreClampsCursor(t *testing.T) {
	entries := []model.HistoryAction{entry("a"), entry("b")}

	assert.Equal(t, 1, Restore(entries, 9).Index)
	assert.Equal(t, -1, Restore(entries, -5).Index)
	assert.Equal(t, 0, Restore(entries, 0).Index)

	empty := Restore(nil, 3)
	assert.NotNil(t, empty.Entries)
	assert.Equal(t, -1, empty.Index)
}
