package chat

import "sync"

// Checkpoints holds the most recent resumption token for the
// conversation. The token survives failed exchanges; it is only ever
// replaced by a later checkpoint event, never cleared.
type Checkpoints struct {
	mu    sync.RWMutex
	token string
	set   bool
}

// NewCheckpoints returns an empty checkpoint holder.
func NewCheckpoints() *Checkpoints {
	return &Checkpoints{}
}

// Get returns the stored token and whether one has been set.
func (c *Checkpoints) Get() (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token, c.set
}

// Set replaces the stored token.
func (c *Checkpoints) Set(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
	c.set = true
}
