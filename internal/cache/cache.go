// Package cache keeps recently fetched backend data in process so reopening
// the conversation drawer or returning to a conversation does not refetch.
// Entries expire on a short TTL and are invalidated on local writes.
package cache

import (
	"encoding/json"
	"time"

	"github.com/dgraph-io/ristretto/v2"

	"evachat/internal/api"
)

const (
	// maxCostBytes bounds the total size of cached values.
	maxCostBytes = 4 << 20

	conversationsTTL = 30 * time.Second
	historyTTL       = 60 * time.Second

	conversationsKey = "conversations"
	historyPrefix    = "history:"
)

// Cache is a TTL cache over the chat read paths. Safe for concurrent use.
type Cache struct {
	c *ristretto.Cache[string, []byte]
}

// New creates the cache.
func New() (*Cache, error) {
	c, err := ristretto.NewCache(&ristretto.Config[string, []byte]{
		NumCounters: maxCostBytes / 100 * 10, // ~10x expected items
		MaxCost:     maxCostBytes,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	return &Cache{c: c}, nil
}

// Close releases the cache.
func (c *Cache) Close() {
	c.c.Close()
}

// Wait blocks until buffered writes are visible. Tests only.
func (c *Cache) Wait() {
	c.c.Wait()
}

func (c *Cache) get(key string, out any) bool {
	data, found := c.c.Get(key)
	if !found {
		return false
	}
	return json.Unmarshal(data, out) == nil
}

func (c *Cache) set(key string, value any, ttl time.Duration) {
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	c.c.SetWithTTL(key, data, int64(len(data)), ttl)
}

// Conversations returns the cached conversation list, if fresh.
func (c *Cache) Conversations() ([]api.Conversation, bool) {
	var convs []api.Conversation
	ok := c.get(conversationsKey, &convs)
	return convs, ok
}

// SetConversations caches the conversation list.
func (c *Cache) SetConversations(convs []api.Conversation) {
	c.set(conversationsKey, convs, conversationsTTL)
}

// InvalidateConversations drops the cached list. Called after a create or
// delete so the drawer refetches.
func (c *Cache) InvalidateConversations() {
	c.c.Del(conversationsKey)
}

// History returns a cached history page, if fresh.
func (c *Cache) History(conversationID string) ([]api.HistoryMessage, bool) {
	var msgs []api.HistoryMessage
	ok := c.get(historyPrefix+conversationID, &msgs)
	return msgs, ok
}

// SetHistory caches a history page.
func (c *Cache) SetHistory(conversationID string, msgs []api.HistoryMessage) {
	c.set(historyPrefix+conversationID, msgs, historyTTL)
}

// InvalidateHistory drops a conversation's cached page. Called after a send
// lands in that conversation.
func (c *Cache) InvalidateHistory(conversationID string) {
	c.c.Del(historyPrefix + conversationID)
}
