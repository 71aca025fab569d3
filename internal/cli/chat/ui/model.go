package ui

import (
	"context"
	"os"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/streamchat-io/streamchat/internal/chat"
)

// state represents the current state of the interactive session.
type state int

const (
	stateIdle state = iota
	stateStreaming
	stateError
)

// Asker runs one exchange against the backend, publishing live
// snapshots to the channel.
type Asker interface {
	AskWithChannel(ctx context.Context, query string, ch chan<- chat.Update) (chat.Message, error)
	Conversation() *chat.Conversation
}

// Model is the Bubbletea model for the interactive session.
type Model struct {
	asker Asker

	// UI state
	currentState state
	input        textinput.Model
	spinner      spinner.Model

	// Conversation snapshot, refreshed on every published update. The
	// store is the source of truth; the model only renders it.
	messages []chat.Message

	// Channel carrying snapshots for the in-flight exchange.
	updates chan chat.Update

	// cancelAsk aborts the in-flight exchange; nil while idle.
	cancelAsk context.CancelFunc

	// Error state
	lastError error

	// Rendering
	renderer *glamour.TermRenderer
	width    int
	height   int

	quitting bool
	showHelp bool
}

// NewModel creates a new interactive model.
func NewModel(asker Asker) (Model, error) {
	ti := textinput.New()
	ti.Placeholder = "Ask a question..."
	ti.Focus()
	ti.CharLimit = 500
	ti.Width = 80

	s := spinner.New()
	s.Spinner = spinner.Dot

	rendererOpts := []glamour.TermRendererOption{glamour.WithWordWrap(80)}
	if os.Getenv("NO_COLOR") != "" {
		rendererOpts = append(rendererOpts, glamour.WithStylePath("notty"))
	} else {
		rendererOpts = append(rendererOpts, glamour.WithAutoStyle())
	}

	renderer, err := glamour.NewTermRenderer(rendererOpts...)
	if err != nil {
		return Model{}, err
	}

	return Model{
		asker:        asker,
		currentState: stateIdle,
		input:        ti,
		spinner:      s,
		messages:     asker.Conversation().Messages(),
		renderer:     renderer,
		width:        80,
		height:       24,
	}, nil
}

// Init initializes the model (Bubbletea interface).
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		m.spinner.Tick,
	)
}
