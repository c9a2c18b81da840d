package tui

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mrsinham/dicomview/internal/viewer"
)

// Run starts the viewer on the terminal and blocks until the user quits or
// ctx is cancelled.
func Run(ctx context.Context, session *viewer.Session, opts Options) error {
	m := New(ctx, session, opts)
	p := tea.NewProgram(m,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)

	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("running viewer: %w", err)
	}
	return nil
}
