// Package history is the linear undo/redo log.
//
// Entries [0, Index] have been applied; entries after Index can be redone.
// Recording a new entry discards the redo tail. The log keeps at most MaxEntries.
package history

import "planify/internal/model"

const MaxEntries = 50

type Log struct {
	Entries []model.HistoryAction `json:"entries"`
	Index   int                   `json:"index"`
}

func New() *Log {
	return &Log{Entries: []model.HistoryAction{}, Index: -1}
}

// Restore rebuilds a log from persisted slots, clamping an out-of-range cursor.
func Restore(entries []model.HistoryAction, index int) *Log {
	if entries == nil {
		entries = []model.HistoryAction{}
	}
	if len(entries) > MaxEntries {
		drop := len(entries) - MaxEntries
		entries = entries[drop:]
		index -= drop
	}
	if index >= len(entries) {
		index = len(entries) - 1
	}
	if index < -1 {
		index = -1
	}
	return &Log{Entries: entries, Index: index}
}

func (l *Log) CanUndo() bool { return l.Index >= 0 }

func (l *Log) CanRedo() bool { return l.Index < len(l.Entries)-1 }

func (l *Log) Len() int { return len(l.Entries) }

// Record appends entry after the cursor, truncating any redo tail.
// When the log overflows, the oldest entry is dropped and the cursor stays on the newest entry.
func (l *Log) Record(entry model.HistoryAction) {
	next := make([]model.HistoryAction, 0, l.Index+2)
	next = append(next, l.Entries[:l.Index+1]...)
	next = append(next, entry)
	if len(next) > MaxEntries {
		next = next[1:]
	} else {
		l.Index++
	}
	l.Entries = next
}

// Undo hands the entry under the cursor to apply and moves the cursor back.
// It reports false and does nothing when there is nothing to undo.
func (l *Log) Undo(apply func(model.HistoryAction)) bool {
	if !l.CanUndo() {
		return false
	}
	apply(l.Entries[l.Index])
	l.Index--
	return true
}

// Redo hands the entry after the cursor to apply and moves the cursor forward.
func (l *Log) Redo(apply func(model.HistoryAction)) bool {
	if !l.CanRedo() {
		return false
	}
	apply(l.Entries[l.Index+1])
	l.Index++
	return true
}

// Peek returns the entry that Undo would apply.
func (l *Log) Peek() (model.HistoryAction, bool) {
	if !l.CanUndo() {
		return model.HistoryAction{}, false
	}
	return l.Entries[l.Index], true
}
