package chat

// The search stage machine: none -> searching -> reading -> {error | writing}.
// Stages are only ever appended; an illegal transition leaves the
// sequence untouched. An error stage is informational and does not block
// the final writing append when the exchange ends.

// allowsStage reports whether the lifecycle permits appending next given
// the stages recorded so far.
func (s *SearchInfo) allowsStage(next Stage) bool {
	switch next {
	case StageSearching:
		return !s.Started()
	case StageReading:
		return s.Current() == StageSearching
	case StageError:
		return s.Started()
	case StageWriting:
		// Reached from searching or reading, never from none. A prior
		// error does not prevent it.
		return s.Started()
	default:
		return false
	}
}

// withStage returns a clone with next appended when the transition is
// legal, or the receiver unchanged otherwise.
func (s *SearchInfo) withStage(next Stage) *SearchInfo {
	if !s.allowsStage(next) {
		return s
	}
	c := s.clone()
	if c == nil {
		c = &SearchInfo{}
	}
	c.Stages = append(c.Stages, next)
	return c
}
