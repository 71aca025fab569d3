// Package chat provides the CLI command for talking to the backend.
package chat

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/streamchat-io/streamchat/internal/chat"
	"github.com/streamchat-io/streamchat/internal/config"
	"github.com/streamchat-io/streamchat/internal/logging"
	"github.com/streamchat-io/streamchat/internal/sse"
)

// NewChatCmd creates the chat command. With a question argument it runs
// one exchange and prints the answer as it streams; without arguments
// it starts the interactive session.
func NewChatCmd() *cobra.Command {
	var (
		baseURL  string
		logLevel string
		plain    bool
	)

	cmd := &cobra.Command{
		Use:   "chat [question]",
		Short: "Ask the assistant, streaming the answer live",
		Long: `Open a conversation with the backend. Each question is answered over
a live event stream; web-search activity (query, sources being read)
is shown as it happens.

Examples:
  streamchat chat
  streamchat chat "who won the last world cup?"
  streamchat chat --plain "summarize today's HN front page" > answer.md`,
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := newSession(baseURL, logLevel)
			if err != nil {
				return err
			}

			if len(args) > 0 {
				question := strings.Join(args, " ")
				return runOneShot(cmd.Context(), session, question, plain)
			}
			return runInteractive(session)
		},
	}

	cmd.Flags().StringVar(&baseURL, "base-url", "", "Backend base URL (overrides config)")
	cmd.Flags().StringVar(&logLevel, "log-level", "", "Log level: trace, debug, info, warn, error")
	cmd.Flags().BoolVar(&plain, "plain", false, "Print the raw answer without progress output")

	return cmd
}

// newSession loads configuration and wires the session over the SSE
// transport.
func newSession(baseURL, logLevel string) (*chat.Session, error) {
	cfg, err := config.NewLoader().Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}

	logger := logging.New(logging.Config{
		Level:  cfg.Log.Level,
		Pretty: cfg.Log.Pretty,
		Output: os.Stderr,
	})

	client := sse.NewClient(logger)
	connect := func(ctx context.Context, target string) (chat.EventSource, error) {
		return client.Connect(ctx, target)
	}

	return chat.NewSession(
		cfg.BaseURL,
		connect,
		chat.NewConversation(),
		chat.NewCheckpoints(),
		logger,
	), nil
}

// runOneShot runs a single exchange, writing answer fragments to stdout
// as they arrive and, unless plain is set, search progress to stderr.
func runOneShot(ctx context.Context, session *chat.Session, question string, plain bool) error {
	updates := make(chan chat.Update, 64)
	done := make(chan error, 1)

	go func() {
		_, err := session.AskWithChannel(ctx, question, updates)
		done <- err
	}()

	var printed int
	var lastStage chat.Stage
	for u := range updates {
		m := u.Message
		if !plain {
			lastStage = reportSearch(m, lastStage)
		}
		if len(m.Content) > printed {
			fmt.Print(m.Content[printed:])
			printed = len(m.Content)
		}
	}
	fmt.Println()

	return <-done
}

// reportSearch prints a line per search stage transition.
func reportSearch(m chat.Message, last chat.Stage) chat.Stage {
	cur := m.SearchInfo.Current()
	if cur == "" || cur == last {
		return last
	}
	switch cur {
	case chat.StageSearching:
		fmt.Fprintf(os.Stderr, "• searching the web: %s\n", m.SearchInfo.Query)
	case chat.StageReading:
		fmt.Fprintf(os.Stderr, "• reading %d sources\n", len(m.SearchInfo.URLs))
		for _, u := range m.SearchInfo.URLs {
			fmt.Fprintf(os.Stderr, "  - %s\n", u)
		}
	case chat.StageWriting:
		fmt.Fprintln(os.Stderr, "• writing answer")
	case chat.StageError:
		fmt.Fprintf(os.Stderr, "• search failed: %s\n", m.SearchInfo.Err)
	}
	return cur
}
