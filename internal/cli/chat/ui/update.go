package ui

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/streamchat-io/streamchat/internal/chat"
)

// Update handles messages and updates the model (Bubbletea interface).
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case spinner.TickMsg:
		if m.currentState == stateStreaming {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil

	case snapshotMsg:
		// The store already holds the published state; re-snapshot and
		// keep listening for the next one.
		m.messages = m.asker.Conversation().Messages()
		return m, waitForUpdateCmd(m.updates)

	case updatesClosedMsg:
		m.messages = m.asker.Conversation().Messages()
		return m, nil

	case exchangeDoneMsg:
		m.messages = m.asker.Conversation().Messages()
		m.updates = nil
		if m.cancelAsk != nil {
			m.cancelAsk()
			m.cancelAsk = nil
		}
		if msg.err != nil && !errors.Is(msg.err, chat.ErrExchangeInFlight) {
			// Setup failures already surfaced in the message content;
			// keep the error line for anything else.
			m.lastError = msg.err
		}
		m.currentState = stateIdle
		m.input.Reset()
		m.input.Focus()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// handleKeyMsg handles keyboard input.
func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "ctrl+d":
		if m.cancelAsk != nil {
			m.cancelAsk()
			m.cancelAsk = nil
		}
		m.quitting = true
		return m, tea.Quit

	case "enter":
		if m.currentState == stateStreaming {
			// One exchange at a time; submissions while busy are ignored.
			return m, nil
		}

		question := strings.TrimSpace(m.input.Value())
		if question == "" {
			return m, nil
		}

		if strings.HasPrefix(question, "/") {
			return m.handleInlineCommand(question)
		}

		m.currentState = stateStreaming
		m.lastError = nil
		m.updates = make(chan chat.Update, 64)
		m.input.Reset()

		ctx, cancel := context.WithCancel(context.Background())
		m.cancelAsk = cancel

		return m, tea.Batch(
			askCmd(ctx, m.asker, question, m.updates),
			waitForUpdateCmd(m.updates),
			m.spinner.Tick,
		)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// handleInlineCommand processes inline commands like /help and /quit.
func (m Model) handleInlineCommand(cmd string) (tea.Model, tea.Cmd) {
	switch strings.ToLower(strings.TrimSpace(cmd)) {
	case "/help":
		m.showHelp = !m.showHelp
		m.lastError = nil
		m.input.Reset()
		m.currentState = stateIdle
		return m, nil

	case "/clear":
		m.input.Reset()
		return m, tea.ClearScreen

	case "/exit", "/quit":
		if m.cancelAsk != nil {
			m.cancelAsk()
			m.cancelAsk = nil
		}
		m.quitting = true
		return m, tea.Quit

	default:
		m.lastError = errInlineCommand(cmd)
		m.currentState = stateError
		m.input.Reset()
		return m, nil
	}
}

type errInlineCommand string

func (e errInlineCommand) Error() string {
	return "unknown command: " + string(e) + " (try /help)"
}
