package chat

import (
	"encoding/json"
	"errors"
	"fmt"
)

// EventKind is the type discriminator carried by each stream frame.
type EventKind string

const (
	EventCheckpoint    EventKind = "checkpoint"
	EventContent       EventKind = "content"
	EventSearchStart   EventKind = "search_start"
	EventSearchResults EventKind = "search_results"
	EventSearchError   EventKind = "search_error"
	EventEnd           EventKind = "end"
)

// ErrMissingField marks a recognized event kind whose required field is
// absent. The frame is dropped; the exchange continues.
var ErrMissingField = errors.New("event missing required field")

// Event is one decoded stream event. Only the fields relevant to Kind
// are populated.
type Event struct {
	Kind       EventKind
	Checkpoint string
	Content    string
	Query      string
	URLs       []string
	Err        string
}

// wireEvent mirrors the JSON frames emitted by the backend. Pointer
// fields distinguish "absent" from "empty", which matters because an
// empty content fragment is still a valid fragment.
type wireEvent struct {
	Type         string          `json:"type"`
	CheckpointID *string         `json:"checkpoint_id"`
	Content      *string         `json:"content"`
	Query        *string         `json:"query"`
	URLs         json.RawMessage `json:"urls"`
	Error        *string         `json:"error"`
}

// DecodeEvent parses one raw frame payload into an Event. Unknown kinds
// decode successfully and reduce to no-ops. A recognized kind missing
// its required field is a decode failure and must not reach the reducer.
func DecodeEvent(data []byte) (Event, error) {
	var w wireEvent
	if err := json.Unmarshal(data, &w); err != nil {
		return Event{}, fmt.Errorf("malformed event payload: %w", err)
	}

	ev := Event{Kind: EventKind(w.Type)}
	switch ev.Kind {
	case EventCheckpoint:
		if w.CheckpointID == nil {
			return Event{}, fmt.Errorf("%w: checkpoint_id", ErrMissingField)
		}
		ev.Checkpoint = *w.CheckpointID
	case EventContent:
		if w.Content == nil {
			return Event{}, fmt.Errorf("%w: content", ErrMissingField)
		}
		ev.Content = *w.Content
	case EventSearchStart:
		if w.Query == nil {
			return Event{}, fmt.Errorf("%w: query", ErrMissingField)
		}
		ev.Query = *w.Query
	case EventSearchResults:
		// A JSON null decodes into a non-empty RawMessage; it counts as
		// field-absent just like a missing key.
		if len(w.URLs) == 0 || string(w.URLs) == "null" {
			return Event{}, fmt.Errorf("%w: urls", ErrMissingField)
		}
		urls, err := decodeURLs(w.URLs)
		if err != nil {
			return Event{}, err
		}
		ev.URLs = urls
	case EventSearchError:
		if w.Error == nil {
			return Event{}, fmt.Errorf("%w: error", ErrMissingField)
		}
		ev.Err = *w.Error
	case EventEnd:
		// No fields.
	}
	return ev, nil
}

// decodeURLs normalizes the urls field at the decode boundary. The
// backend sends either a JSON array of strings or a string that itself
// contains a serialized array; the reducer only ever sees []string.
func decodeURLs(raw json.RawMessage) ([]string, error) {
	var urls []string
	if err := json.Unmarshal(raw, &urls); err == nil {
		return urls, nil
	}

	var nested string
	if err := json.Unmarshal(raw, &nested); err != nil {
		return nil, fmt.Errorf("malformed urls field: %w", err)
	}
	if err := json.Unmarshal([]byte(nested), &urls); err != nil {
		return nil, fmt.Errorf("malformed serialized urls list: %w", err)
	}
	return urls, nil
}
