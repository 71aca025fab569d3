// Package chat implements the streaming exchange state machine: the
// conversation model, the event reducer that folds backend events into
// exchange state, the checkpoint holder, and the session that owns one
// question/answer exchange end-to-end.
package chat

// Stage labels one phase of a search sub-task. Stages accumulate
// append-only per exchange; the last element is the phase currently
// shown to the user.
type Stage string

const (
	StageSearching Stage = "searching"
	StageReading   Stage = "reading"
	StageWriting   Stage = "writing"
	StageError     Stage = "error"
)

// SearchInfo tracks the search sub-task attached to one exchange.
// Assistant messages are created with a zero-value SearchInfo so the
// presentation layer always has something to render; a search only
// counts as started once Stages is non-empty.
type SearchInfo struct {
	Stages []Stage
	Query  string
	URLs   []string
	Err    string
}

// Started reports whether a search_start event has been applied.
func (s *SearchInfo) Started() bool {
	return s != nil && len(s.Stages) > 0
}

// Current returns the last appended stage, or "" when no search started.
func (s *SearchInfo) Current() Stage {
	if !s.Started() {
		return ""
	}
	return s.Stages[len(s.Stages)-1]
}

// clone returns a copy whose slices do not alias the receiver. Reducer
// output is published to readers on another side of a channel, so every
// mutation goes through a fresh copy.
func (s *SearchInfo) clone() *SearchInfo {
	if s == nil {
		return nil
	}
	c := &SearchInfo{
		Stages: make([]Stage, len(s.Stages)),
		Query:  s.Query,
		Err:    s.Err,
	}
	copy(c.Stages, s.Stages)
	if s.URLs != nil {
		c.URLs = make([]string, len(s.URLs))
		copy(c.URLs, s.URLs)
	}
	return c
}

// Message is one turn in the conversation. Content only ever grows by
// appending fragments; once its exchange terminates the message is no
// longer mutated.
type Message struct {
	ID         int
	Content    string
	IsUser     bool
	IsLoading  bool
	SearchInfo *SearchInfo
}
