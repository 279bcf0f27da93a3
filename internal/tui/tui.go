// Package tui is the interactive board: columns per status, task details, the inbox
// and the secondary views, all driven through a session.Session.
package tui

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"

	"planify/internal/session"
)

// Run blocks until the user quits or ctx is cancelled.
func Run(ctx context.Context, sess *session.Session) error {
	applyColorProfilePreference()
	applyThemePreference()
	applyGlyphPreference()

	m := newAppModel(ctx, sess)
	_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
