package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/streamchat-io/streamchat/internal/chat"
)

var (
	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9")).
			Bold(true)

	searchStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("11"))

	urlStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("14"))

	hintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
)

const helpText = `  /help   - Toggle this help
  /clear  - Clear the screen
  /exit   - Exit the session
  Enter submits a question; submissions are ignored while an answer is streaming.`

// View renders the UI (Bubbletea interface).
func (m Model) View() string {
	if m.quitting {
		return "Goodbye!\n"
	}

	var b strings.Builder

	b.WriteString(promptStyle.Render("streamchat"))
	b.WriteString("\n")
	b.WriteString(strings.Repeat("─", m.width))
	b.WriteString("\n\n")

	b.WriteString(m.renderConversation())

	if m.currentState == stateError && m.lastError != nil {
		b.WriteString(errorStyle.Render(fmt.Sprintf("\n✗ %v\n", m.lastError)))
	}

	if m.showHelp {
		b.WriteString("\n")
		b.WriteString(hintStyle.Render(helpText))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.input.View())

	if m.currentState == stateIdle {
		b.WriteString(hintStyle.Render("\n[/help for commands, /exit to quit]"))
	}

	return b.String()
}

// renderConversation renders the message list, newest last.
func (m Model) renderConversation() string {
	var b strings.Builder

	// Render the last few turns to fit on screen.
	maxMessages := 10
	startIdx := len(m.messages) - maxMessages
	if startIdx < 0 {
		startIdx = 0
	}

	for _, msg := range m.messages[startIdx:] {
		if msg.IsUser {
			b.WriteString(promptStyle.Render("> "))
			b.WriteString(msg.Content)
			b.WriteString("\n\n")
			continue
		}
		b.WriteString(m.renderAssistant(msg))
	}

	return b.String()
}

// renderAssistant renders one assistant turn: the search activity line
// driven by the current stage, then the (partial) answer.
func (m Model) renderAssistant(msg chat.Message) string {
	var b strings.Builder

	if line := m.renderSearch(msg.SearchInfo); line != "" {
		b.WriteString(line)
		b.WriteString("\n")
	}

	switch {
	case msg.IsLoading && msg.Content == "":
		b.WriteString(fmt.Sprintf("%s Thinking...\n", m.spinner.View()))
	case msg.Content != "":
		rendered, err := m.renderer.Render(msg.Content)
		if err != nil {
			b.WriteString(msg.Content) // Fallback to plain text
		} else {
			b.WriteString(rendered)
		}
	}
	b.WriteString("\n")

	return b.String()
}

// renderSearch renders the search sub-task, phase per the last stage.
func (m Model) renderSearch(si *chat.SearchInfo) string {
	if !si.Started() {
		return ""
	}

	var b strings.Builder
	switch si.Current() {
	case chat.StageSearching:
		b.WriteString(searchStyle.Render(fmt.Sprintf("⚙ Searching the web: %s", si.Query)))
	case chat.StageReading:
		b.WriteString(searchStyle.Render(fmt.Sprintf("⚙ Reading %d sources", len(si.URLs))))
		for _, u := range si.URLs {
			b.WriteString("\n  ")
			b.WriteString(urlStyle.Render(u))
		}
	case chat.StageWriting:
		b.WriteString(searchStyle.Render("⚙ Searched: " + si.Query))
		for _, u := range si.URLs {
			b.WriteString("\n  ")
			b.WriteString(urlStyle.Render(u))
		}
	case chat.StageError:
		b.WriteString(errorStyle.Render("⚙ Search failed: " + si.Err))
	}
	return b.String()
}
