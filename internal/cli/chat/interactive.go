package chat

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/streamchat-io/streamchat/internal/chat"
	"github.com/streamchat-io/streamchat/internal/cli/chat/ui"
)

// runInteractive starts the interactive Bubbletea session.
func runInteractive(session *chat.Session) error {
	model, err := ui.NewModel(session)
	if err != nil {
		return fmt.Errorf("failed to create UI model: %w", err)
	}

	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("interactive session failed: %w", err)
	}
	return nil
}
