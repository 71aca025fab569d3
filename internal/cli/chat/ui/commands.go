package ui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/streamchat-io/streamchat/internal/chat"
)

// askCmd runs the exchange in a goroutine and reports its final result.
// Live snapshots flow through ch and are picked up by waitForUpdateCmd.
// The context comes from the model so quitting the session cancels the
// exchange instead of orphaning it.
func askCmd(ctx context.Context, asker Asker, question string, ch chan chat.Update) tea.Cmd {
	return func() tea.Msg {
		_, err := asker.AskWithChannel(ctx, question, ch)
		return exchangeDoneMsg{err: err}
	}
}

// waitForUpdateCmd delivers the next published snapshot. Update
// re-issues it after each snapshotMsg so the whole stream is rendered.
func waitForUpdateCmd(ch <-chan chat.Update) tea.Cmd {
	return func() tea.Msg {
		u, ok := <-ch
		if !ok {
			return updatesClosedMsg{}
		}
		return snapshotMsg{update: u}
	}
}
