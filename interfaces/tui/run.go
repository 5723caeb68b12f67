package tui

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

// Run shows the browser until the user quits or ctx is canceled.
func Run(ctx context.Context, cmds CommandDispatcher, qs QueryAsker, logger *zap.Logger) error {
	model := New(ctx, cmds, qs, logger)
	program := tea.NewProgram(model, tea.WithContext(ctx), tea.WithAltScreen())
	if _, err := program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("terminal ui: %w", err)
	}
	return nil
}
