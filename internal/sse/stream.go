// Package sse implements the client side of a unidirectional
// text/event-stream connection: one GET request whose response body is
// parsed into frames and delivered, in order, over channels.
package sse

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// Stream is one open event-stream connection. Frame payloads arrive on
// Events in delivery order; a single transport error (including
// premature EOF) arrives on Errors. Close is safe to call any number of
// times.
type Stream struct {
	body   io.ReadCloser
	events chan []byte
	errs   chan error

	closeOnce sync.Once
	done      chan struct{}

	logger zerolog.Logger
}

// Client opens streams against a backend with a shared http.Client.
type Client struct {
	http   *http.Client
	logger zerolog.Logger
}

// NewClient creates an SSE client. The zero timeout on the underlying
// http.Client is deliberate: an event stream stays open for the whole
// exchange.
func NewClient(logger zerolog.Logger) *Client {
	return &Client{
		http:   &http.Client{},
		logger: logger.With().Str("component", "sse").Logger(),
	}
}

// Connect opens the stream for target. A non-2xx response is a setup
// failure; the returned Stream is live and already reading otherwise.
func (c *Client) Connect(ctx context.Context, target string) (*Stream, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("build stream request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("open stream: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("open stream: unexpected status %s", resp.Status)
	}

	s := &Stream{
		body:   resp.Body,
		events: make(chan []byte, 16),
		errs:   make(chan error, 1),
		done:   make(chan struct{}),
		logger: c.logger,
	}
	go s.read()
	return s, nil
}

// Events returns the frame payload channel. It is closed when the
// stream ends for any reason.
func (s *Stream) Events() <-chan []byte {
	return s.events
}

// Errors returns the transport error channel. Normal shutdown via
// Close delivers nothing; a connection dropped by the server delivers
// exactly one error.
func (s *Stream) Errors() <-chan error {
	return s.errs
}

// Close tears down the connection. Idempotent: later calls are no-ops.
func (s *Stream) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
		_ = s.body.Close()
	})
}

// read parses the response body into frames. Per the event-stream
// format, successive "data:" lines accumulate into one payload that is
// dispatched at the next blank line; comment and id/event lines are
// ignored because the backend only uses data frames.
func (s *Stream) read() {
	defer close(s.events)

	scanner := bufio.NewScanner(s.body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var data []string
	for scanner.Scan() {
		line := scanner.Text()

		if line == "" {
			if len(data) > 0 {
				payload := []byte(strings.Join(data, "\n"))
				data = data[:0]
				select {
				case s.events <- payload:
				case <-s.done:
					return
				}
			}
			continue
		}

		if rest, ok := strings.CutPrefix(line, "data:"); ok {
			data = append(data, strings.TrimPrefix(rest, " "))
		}
	}

	err := scanner.Err()
	if err == nil {
		// EOF without Close: the server hung up. The session decides
		// whether that is fatal based on how far the exchange got.
		err = io.ErrUnexpectedEOF
	}
	select {
	case s.errs <- err:
	case <-s.done:
		// Closed locally; the error is expected teardown noise.
		s.logger.Debug().Err(err).Msg("stream reader exited after close")
	}
}
