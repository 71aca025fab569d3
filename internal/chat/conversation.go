package chat

import (
	"errors"
	"sync"
)

// ErrExchangeInFlight is returned by BeginExchange while a prior
// exchange has not reached a terminal state. New submissions are
// ignored-while-busy rather than queued or cancelled.
var ErrExchangeInFlight = errors.New("an exchange is already in flight")

// Conversation is the ordered, append-only message store. Messages are
// replaced wholesale on update (copy-on-write), so snapshots handed to
// the presentation layer never tear. No message is ever deleted.
type Conversation struct {
	mu       sync.RWMutex
	messages []Message
	inFlight int // id of the in-flight assistant message, 0 when idle
}

// NewConversation returns an empty conversation.
func NewConversation() *Conversation {
	return &Conversation{}
}

// Messages returns a snapshot of the conversation. The presentation
// layer must treat it as read-only; SearchInfo values are never mutated
// after publication.
func (c *Conversation) Messages() []Message {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// Len returns the number of messages.
func (c *Conversation) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.messages)
}

// nextID is max existing id + 1, or 1 for an empty conversation. Ids
// are strictly increasing for the lifetime of the conversation and
// never reused. Caller holds c.mu.
func (c *Conversation) nextID() int {
	if len(c.messages) == 0 {
		return 1
	}
	return c.messages[len(c.messages)-1].ID + 1
}

// BeginExchange appends the user's message and a provisional assistant
// placeholder, marking the exchange in flight. It fails with
// ErrExchangeInFlight when a prior exchange is still open.
func (c *Conversation) BeginExchange(query string) (Message, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.inFlight != 0 {
		return Message{}, ErrExchangeInFlight
	}

	user := Message{ID: c.nextID(), Content: query, IsUser: true}
	c.messages = append(c.messages, user)

	assistant := NewExchangeState().Apply(Message{ID: c.nextID()})
	c.messages = append(c.messages, assistant)
	c.inFlight = assistant.ID

	return assistant, nil
}

// Apply publishes an exchange state to the assistant message with the
// given id. The whole message value is replaced under the lock, which
// is the read-modify-write the single-writer model requires.
func (c *Conversation) Apply(id int, state ExchangeState) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.messages {
		if c.messages[i].ID == id {
			c.messages[i] = state.Apply(c.messages[i])
			return
		}
	}
}

// EndExchange marks the exchange for id terminal. The message becomes
// immutable from the store's point of view.
func (c *Conversation) EndExchange(id int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.inFlight == id {
		c.inFlight = 0
	}
}
