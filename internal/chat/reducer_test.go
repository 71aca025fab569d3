package chat

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func reduceAll(t *testing.T, payloads ...string) ExchangeState {
	t.Helper()
	state := NewExchangeState()
	for _, p := range payloads {
		ev, err := DecodeEvent([]byte(p))
		require.NoError(t, err)
		state = Reduce(state, ev)
	}
	return state
}

func TestReduce_ContentFragmentsConcatenateInOrder(t *testing.T) {
	state := reduceAll(t,
		`{"type":"content","content":"Hi"}`,
		`{"type":"content","content":" there"}`,
		`{"type":"content","content":"!"}`,
	)
	assert.Equal(t, "Hi there!", state.Content)
	assert.False(t, state.Loading)
}

func TestReduce_ContentConcatenationSurvivesInterleaving(t *testing.T) {
	// Search events between fragments must not disturb the ordered
	// concatenation of content.
	state := NewExchangeState()
	interleaved := []string{
		`{"type":"content","content":"a"}`,
		`{"type":"search_start","query":"q"}`,
		`{"type":"content","content":"b"}`,
		`{"type":"search_results","urls":["http://a"]}`,
		`{"type":"content","content":"c"}`,
		`{"type":"search_error","error":"boom"}`,
		`{"type":"content","content":"d"}`,
	}
	for _, p := range interleaved {
		ev, err := DecodeEvent([]byte(p))
		require.NoError(t, err)
		state = Reduce(state, ev)
	}
	assert.Equal(t, "abcd", state.Content)
}

func TestReduce_FirstContentClearsLoading(t *testing.T) {
	state := NewExchangeState()
	assert.True(t, state.Loading)

	state = Reduce(state, Event{Kind: EventContent, Content: "x"})
	assert.False(t, state.Loading)
}

func TestReduce_ScenarioA_NoSearchMeansNoWritingStage(t *testing.T) {
	// The assistant message starts with empty-scaffold SearchInfo; a
	// search only "occurred" once search_start was applied, so end must
	// not append writing here.
	state := NewExchangeState()
	require.NotNil(t, state.Search)
	require.Empty(t, state.Search.Stages)
	require.Equal(t, "", state.Search.Query)
	require.Empty(t, state.Search.URLs)

	state = reduceAllFrom(t, state,
		`{"type":"content","content":"Hi"}`,
		`{"type":"content","content":" there"}`,
		`{"type":"end"}`,
	)

	assert.Equal(t, "Hi there", state.Content)
	assert.False(t, state.Loading)
	assert.True(t, state.Done)
	assert.Empty(t, state.Search.Stages)
}

func TestReduce_ScenarioC_FullSearchLifecycle(t *testing.T) {
	state := reduceAll(t,
		`{"type":"search_start","query":"weather"}`,
		`{"type":"search_results","urls":"[\"http://a\",\"http://b\"]"}`,
		`{"type":"end"}`,
	)

	assert.Equal(t, []Stage{StageSearching, StageReading, StageWriting}, state.Search.Stages)
	assert.Equal(t, "weather", state.Search.Query)
	assert.Equal(t, []string{"http://a", "http://b"}, state.Search.URLs)
	assert.True(t, state.Done)
}

func TestReduce_SearchErrorIsInformationalNotFatal(t *testing.T) {
	state := reduceAll(t,
		`{"type":"search_start","query":"weather"}`,
		`{"type":"search_error","error":"rate limited"}`,
		`{"type":"content","content":"Best effort answer"}`,
		`{"type":"end"}`,
	)

	assert.Equal(t, []Stage{StageSearching, StageError, StageWriting}, state.Search.Stages)
	assert.Equal(t, "rate limited", state.Search.Err)
	assert.Empty(t, state.Search.URLs)
	assert.Equal(t, "Best effort answer", state.Content)
	assert.True(t, state.Done)
}

func TestReduce_SearchResultsPreserveQuery(t *testing.T) {
	state := reduceAll(t,
		`{"type":"search_start","query":"weather"}`,
		`{"type":"search_results","urls":["http://a"]}`,
	)
	assert.Equal(t, "weather", state.Search.Query)
}

func TestReduce_SecondSearchStartIgnored(t *testing.T) {
	state := reduceAll(t,
		`{"type":"search_start","query":"first"}`,
		`{"type":"search_start","query":"second"}`,
	)
	assert.Equal(t, "first", state.Search.Query)
	assert.Equal(t, []Stage{StageSearching}, state.Search.Stages)
}

func TestReduce_SearchResultsWithoutStartIgnored(t *testing.T) {
	state := reduceAll(t,
		`{"type":"search_results","urls":["http://a"]}`,
	)
	assert.Empty(t, state.Search.Stages)
	assert.Empty(t, state.Search.URLs)
}

func TestReduce_CheckpointTouchesOnlyTheToken(t *testing.T) {
	before := reduceAll(t, `{"type":"content","content":"partial"}`)
	after := Reduce(before, Event{Kind: EventCheckpoint, Checkpoint: "abc123"})

	assert.Equal(t, "abc123", after.Checkpoint)
	assert.Equal(t, before.Content, after.Content)
	assert.Equal(t, before.Loading, after.Loading)
	assert.Equal(t, before.Search, after.Search)
}

func TestReduce_UnknownKindIsNoOp(t *testing.T) {
	before := reduceAll(t, `{"type":"content","content":"x"}`)
	after := Reduce(before, Event{Kind: "usage"})
	assert.Equal(t, before, after)
}

func TestReduce_StagesAreAppendOnlyAcrossObservations(t *testing.T) {
	// Every observed stage sequence must be a prefix of every later one.
	payloads := []string{
		`{"type":"search_start","query":"q"}`,
		`{"type":"content","content":"a"}`,
		`{"type":"search_results","urls":["http://a"]}`,
		`{"type":"search_error","error":"late failure"}`,
		`{"type":"content","content":"b"}`,
		`{"type":"end"}`,
	}

	state := NewExchangeState()
	prev := []Stage{}
	for i, p := range payloads {
		ev, err := DecodeEvent([]byte(p))
		require.NoError(t, err)
		state = Reduce(state, ev)

		cur := state.Search.Stages
		require.GreaterOrEqual(t, len(cur), len(prev), fmt.Sprintf("step %d shrank stages", i))
		assert.Equal(t, prev, cur[:len(prev)], "earlier stages must be a prefix of later ones")
		prev = append([]Stage(nil), cur...)
	}
}

func reduceAllFrom(t *testing.T, state ExchangeState, payloads ...string) ExchangeState {
	t.Helper()
	for _, p := range payloads {
		ev, err := DecodeEvent([]byte(p))
		require.NoError(t, err)
		state = Reduce(state, ev)
	}
	return state
}
