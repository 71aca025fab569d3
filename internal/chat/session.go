package chat

import (
	"context"
	"fmt"
	"net/url"

	"github.com/rs/zerolog"
)

// Fixed user-visible fallback strings. A transport failure mid-exchange
// and a failure to open the stream at all read differently on purpose.
const (
	streamFailureText = "Sorry, something went wrong while answering. Please try again."
	setupFailureText  = "Sorry, the assistant could not be reached. Please try again."
)

// EventSource is the transport primitive the session consumes: raw
// frame payloads in delivery order on Events, at most one transport
// error on Errors, and an idempotent Close.
type EventSource interface {
	Events() <-chan []byte
	Errors() <-chan error
	Close()
}

// ConnectFunc opens a unidirectional text event stream for a request
// target.
type ConnectFunc func(ctx context.Context, target string) (EventSource, error)

// Update is one published snapshot of the in-flight assistant message.
type Update struct {
	Message Message
}

// Session owns one conversation's exchanges against the backend. Only
// one exchange runs at a time; the conversation store enforces that.
type Session struct {
	baseURL     string
	connect     ConnectFunc
	conv        *Conversation
	checkpoints *Checkpoints
	logger      zerolog.Logger
}

// NewSession creates a session for the backend at baseURL.
func NewSession(baseURL string, connect ConnectFunc, conv *Conversation,
	checkpoints *Checkpoints, logger zerolog.Logger) *Session {
	return &Session{
		baseURL:     baseURL,
		connect:     connect,
		conv:        conv,
		checkpoints: checkpoints,
		logger:      logger.With().Str("component", "session").Logger(),
	}
}

// Conversation returns the backing store.
func (s *Session) Conversation() *Conversation {
	return s.conv
}

// requestTarget builds <base>/chat_stream/<escaped query>, suffixed
// with the checkpoint token when one exists so the backend treats the
// exchange as a continuation.
func (s *Session) requestTarget(query string) string {
	target := s.baseURL + "/chat_stream/" + url.PathEscape(query)
	if token, ok := s.checkpoints.Get(); ok {
		target += "?checkpoint_id=" + url.QueryEscape(token)
	}
	return target
}

// AskWithChannel runs one exchange to completion. Every applied state
// is published to the conversation store and, when ch is non-nil, sent
// as an Update for live rendering. The returned message is the final
// assistant message; the error is non-nil only for setup failures and
// busy rejections, since in-stream failures resolve into message
// content per the fallback rules.
func (s *Session) AskWithChannel(ctx context.Context, query string, ch chan<- Update) (Message, error) {
	if ch != nil {
		defer close(ch)
	}

	assistant, err := s.conv.BeginExchange(query)
	if err != nil {
		return Message{}, err
	}

	src, err := s.connect(ctx, s.requestTarget(query))
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to open stream")
		final := s.finalize(ctx, assistant.ID, failedState(NewExchangeState(), setupFailureText), ch)
		return final, fmt.Errorf("open stream: %w", err)
	}
	defer src.Close()

	state := NewExchangeState()
	events := src.Events()

	apply := func(payload []byte) bool {
		ev, err := DecodeEvent(payload)
		if err != nil {
			// One malformed frame must not abort a healthy exchange;
			// drop it and keep reading.
			s.logger.Warn().Err(err).Str("payload", string(payload)).Msg("dropping undecodable frame")
			return false
		}

		prev := state
		state = Reduce(state, ev)
		if state.Checkpoint != prev.Checkpoint {
			s.checkpoints.Set(state.Checkpoint)
		}
		s.publish(ctx, assistant.ID, state, ch)
		return state.Done
	}

	for {
		// Prefer already-delivered frames over a racing transport
		// error: the server hangs up right after `end`, and that EOF
		// must not beat the terminal event it follows.
		select {
		case payload, ok := <-events:
			if !ok {
				events = nil
				break
			}
			if apply(payload) {
				src.Close()
				s.conv.EndExchange(assistant.ID)
				return s.message(assistant.ID), nil
			}
			continue
		default:
		}

		select {
		case <-ctx.Done():
			// Treated like a transport failure: keep partial content,
			// substitute the fallback only if nothing arrived yet.
			return s.fail(ctx, assistant.ID, state, ctx.Err(), ch), nil

		case payload, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			if apply(payload) {
				src.Close()
				s.conv.EndExchange(assistant.ID)
				return s.message(assistant.ID), nil
			}

		case err := <-src.Errors():
			return s.fail(ctx, assistant.ID, state, err, ch), nil
		}
	}
}

// fail applies the transport-failure rules: before any content the
// message becomes the fixed failure string; after content the error is
// swallowed and the partial answer stands as final.
func (s *Session) fail(ctx context.Context, id int, state ExchangeState, cause error, ch chan<- Update) Message {
	if state.Content == "" {
		s.logger.Error().Err(cause).Msg("stream failed before any content")
		return s.finalize(ctx, id, failedState(state, streamFailureText), ch)
	}
	s.logger.Warn().Err(cause).Msg("stream failed after partial content; keeping partial answer")
	return s.finalize(ctx, id, doneState(state), ch)
}

// finalize publishes a terminal state and closes out the exchange.
func (s *Session) finalize(ctx context.Context, id int, state ExchangeState, ch chan<- Update) Message {
	s.publish(ctx, id, state, ch)
	s.conv.EndExchange(id)
	return s.message(id)
}

// publish applies the state to the store and offers a snapshot to the
// update channel. The store is always written; the channel send gives
// up on cancellation so an abandoned consumer cannot wedge the
// exchange goroutine.
func (s *Session) publish(ctx context.Context, id int, state ExchangeState, ch chan<- Update) {
	s.conv.Apply(id, state)
	if ch == nil {
		return
	}
	select {
	case ch <- Update{Message: s.message(id)}:
	case <-ctx.Done():
	}
}

func (s *Session) message(id int) Message {
	for _, m := range s.conv.Messages() {
		if m.ID == id {
			return m
		}
	}
	return Message{}
}

func failedState(state ExchangeState, text string) ExchangeState {
	state.Content = text
	state.Loading = false
	state.Done = true
	return state
}

func doneState(state ExchangeState) ExchangeState {
	state.Loading = false
	state.Done = true
	return state
}
