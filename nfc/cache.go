package nfc

import (
	"sync"
	"time"
)

// ResultCache provides thread-safe tracking of the last result per tag and the
// most recent scan overall.
type ResultCache struct {
	byTag    map[string]Result // map[tag id hex]Result
	last     Result
	lastTime time.Time
	mu       sync.RWMutex
}

// NewResultCache creates and initializes a new ResultCache instance.
func NewResultCache() *ResultCache {
	return &ResultCache{
		byTag: make(map[string]Result),
	}
}

// Last returns the most recent result and when it was recorded. ok is false
// when nothing has been scanned since the cache was created or cleared.
func (c *ResultCache) Last() (result Result, at time.Time, ok bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.last, c.lastTime, !c.lastTime.IsZero()
}

// Record stores r as the latest result and reports whether it differs from
// the previous result for the same tag.
func (c *ResultCache) Record(r Result, now time.Time) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.last = r
	c.lastTime = now

	prev, exists := c.byTag[r.TagID]
	c.byTag[r.TagID] = r
	if !exists {
		return true
	}
	prevCard, _ := prev.CardID()
	card, _ := r.CardID()
	return prev.HasNDEF() != r.HasNDEF() || prevCard != card
}

// Len returns the number of distinct tags seen.
func (c *ResultCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.byTag)
}

// Clear removes all entries from the cache and resets the last scan.
func (c *ResultCache) Clear() {
	c.mu.Lock()
	c.byTag = make(map[string]Result)
	c.last = Result{}
	c.lastTime = time.Time{}
	c.mu.Unlock()
}
