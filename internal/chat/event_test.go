package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeEvent_Checkpoint(t *testing.T) {
	ev, err := DecodeEvent([]byte(`{"type":"checkpoint","checkpoint_id":"abc123"}`))
	require.NoError(t, err)
	assert.Equal(t, EventCheckpoint, ev.Kind)
	assert.Equal(t, "abc123", ev.Checkpoint)
}

func TestDecodeEvent_Content(t *testing.T) {
	ev, err := DecodeEvent([]byte(`{"type":"content","content":"Hi"}`))
	require.NoError(t, err)
	assert.Equal(t, EventContent, ev.Kind)
	assert.Equal(t, "Hi", ev.Content)
}

func TestDecodeEvent_EmptyContentFragmentIsValid(t *testing.T) {
	ev, err := DecodeEvent([]byte(`{"type":"content","content":""}`))
	require.NoError(t, err)
	assert.Equal(t, "", ev.Content)
}

func TestDecodeEvent_SearchStart(t *testing.T) {
	ev, err := DecodeEvent([]byte(`{"type":"search_start","query":"weather"}`))
	require.NoError(t, err)
	assert.Equal(t, EventSearchStart, ev.Kind)
	assert.Equal(t, "weather", ev.Query)
}

func TestDecodeEvent_SearchResults_List(t *testing.T) {
	ev, err := DecodeEvent([]byte(`{"type":"search_results","urls":["http://a","http://b"]}`))
	require.NoError(t, err)
	assert.Equal(t, []string{"http://a", "http://b"}, ev.URLs)
}

func TestDecodeEvent_SearchResults_SerializedString(t *testing.T) {
	// The backend sometimes sends the list pre-serialized inside a
	// string; both shapes normalize to the same []string.
	ev, err := DecodeEvent([]byte(`{"type":"search_results","urls":"[\"http://a\",\"http://b\"]"}`))
	require.NoError(t, err)
	assert.Equal(t, []string{"http://a", "http://b"}, ev.URLs)
}

func TestDecodeEvent_SearchResults_MalformedNestedList(t *testing.T) {
	_, err := DecodeEvent([]byte(`{"type":"search_results","urls":"not a list"}`))
	assert.Error(t, err)
}

func TestDecodeEvent_SearchResults_NullURLsIsMissingField(t *testing.T) {
	// null is field-absent, not an empty result set; the frame must be
	// dropped rather than appending a reading stage with no URLs.
	_, err := DecodeEvent([]byte(`{"type":"search_results","urls":null}`))
	assert.ErrorIs(t, err, ErrMissingField)
}

func TestDecodeEvent_SearchError(t *testing.T) {
	ev, err := DecodeEvent([]byte(`{"type":"search_error","error":"rate limited"}`))
	require.NoError(t, err)
	assert.Equal(t, EventSearchError, ev.Kind)
	assert.Equal(t, "rate limited", ev.Err)
}

func TestDecodeEvent_End(t *testing.T) {
	ev, err := DecodeEvent([]byte(`{"type":"end"}`))
	require.NoError(t, err)
	assert.Equal(t, EventEnd, ev.Kind)
}

func TestDecodeEvent_UnknownKindDecodes(t *testing.T) {
	// Forward compatibility: unknown kinds decode cleanly and reduce to
	// no-ops rather than failing the frame.
	ev, err := DecodeEvent([]byte(`{"type":"usage","tokens":42}`))
	require.NoError(t, err)
	assert.Equal(t, EventKind("usage"), ev.Kind)
}

func TestDecodeEvent_MissingRequiredField(t *testing.T) {
	cases := []struct {
		name    string
		payload string
	}{
		{"checkpoint", `{"type":"checkpoint"}`},
		{"content", `{"type":"content"}`},
		{"search_start", `{"type":"search_start"}`},
		{"search_results", `{"type":"search_results"}`},
		{"search_error", `{"type":"search_error"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := DecodeEvent([]byte(tc.payload))
			assert.ErrorIs(t, err, ErrMissingField)
		})
	}
}

func TestDecodeEvent_MalformedJSON(t *testing.T) {
	_, err := DecodeEvent([]byte(`{"type":"content",`))
	assert.Error(t, err)
}
