package memory

import (
	"time"

	"ai-assistant-be/pkg/store"

	"github.com/patrickmn/go-cache"
)

// ConversationRepository is the session-keyed conversation store. It replaces
// a single global slot with an explicit key -> turn-log mapping, so two
// sessions never share state. The cache itself is goroutine safe; ordering
// between two racing appends to the SAME session is not defined.
type ConversationRepository struct {
	cache *cache.Cache
}

func NewConversationRepository() *ConversationRepository {
	// Conversations idle for 12 hours are dropped, sweeping every 30 minutes.
	c := cache.New(12*time.Hour, 30*time.Minute)
	return &ConversationRepository{
		cache: c,
	}
}

func (r *ConversationRepository) Save(conv *store.Conversation) {
	r.cache.Set(conv.Key, conv, cache.DefaultExpiration)
}

func (r *ConversationRepository) Get(key string) (*store.Conversation, bool) {
	if x, found := r.cache.Get(key); found {
		return x.(*store.Conversation), true
	}
	return nil, false
}

// Delete clears a session's log entirely. The next message under the same
// key lazily creates a fresh conversation.
func (r *ConversationRepository) Delete(key string) {
	r.cache.Delete(key)
}
