package chat

// ExchangeState is the full state of one in-flight exchange. Reduce
// never mutates its input; callers publish each returned value as a
// whole-message snapshot, so readers cannot observe a torn update.
type ExchangeState struct {
	Content string
	Loading bool
	Search  *SearchInfo

	// Checkpoint carries the most recent resumption token observed on
	// this stream. The session forwards changes to the checkpoint store.
	Checkpoint string

	// Done is set by the end event and tells the session to close the
	// connection and finalize the message.
	Done bool
}

// NewExchangeState returns the state of a freshly opened exchange: no
// content yet, loading, and a zero-value SearchInfo as presentation
// scaffolding.
func NewExchangeState() ExchangeState {
	return ExchangeState{
		Loading: true,
		Search:  &SearchInfo{Stages: []Stage{}, URLs: []string{}},
	}
}

// Reduce maps (current exchange state, one decoded event) to the next
// exchange state. Unrecognized kinds are no-ops so newer backends can
// add event types without breaking older clients.
func Reduce(s ExchangeState, ev Event) ExchangeState {
	switch ev.Kind {
	case EventCheckpoint:
		s.Checkpoint = ev.Checkpoint

	case EventContent:
		s.Content += ev.Content
		s.Loading = false

	case EventSearchStart:
		// A restarted search would violate the append-only stage
		// sequence; only the first search_start takes effect.
		if !s.Search.Started() {
			s.Search = &SearchInfo{
				Stages: []Stage{StageSearching},
				Query:  ev.Query,
				URLs:   []string{},
			}
		}

	case EventSearchResults:
		next := s.Search.withStage(StageReading)
		if next != s.Search {
			next.URLs = append([]string(nil), ev.URLs...)
			s.Search = next
		}

	case EventSearchError:
		next := s.Search.withStage(StageError)
		if next != s.Search {
			next.Err = ev.Err
			s.Search = next
		}

	case EventEnd:
		if s.Search.Started() {
			s.Search = s.Search.withStage(StageWriting)
		}
		s.Loading = false
		s.Done = true
	}
	return s
}

// Apply writes an exchange state into a message value.
func (s ExchangeState) Apply(m Message) Message {
	m.Content = s.Content
	m.IsLoading = s.Loading
	m.SearchInfo = s.Search
	return m
}
