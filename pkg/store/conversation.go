package store

import (
	"time"

	"github.com/google/uuid"
)

// Turn is one message of a conversation as the routing core sees it.
type Turn struct {
	Role      string    `json:"role"` // "user" | "assistant"
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// Conversation is the in-memory turn log for one chat session.
// Ordering is append-only; a reset discards the whole log, never a prefix.
type Conversation struct {
	Key       string    `json:"key"`        // client-facing session key
	SessionId uuid.UUID `json:"session_id"` // persisted chat_sessions row
	Turns     []Turn    `json:"turns"`
}

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"

	// DefaultSessionKey backs the original single-session API: requests
	// that carry no session id all share this conversation.
	DefaultSessionKey = "default"
)

// Append records a turn at the end of the log.
func (c *Conversation) Append(role, content string, at time.Time) {
	c.Turns = append(c.Turns, Turn{Role: role, Content: content, CreatedAt: at})
}
