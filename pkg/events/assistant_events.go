package events

import "time"

const (
	TypeChatCompleted    = "CHAT_COMPLETED"
	TypeToolInvoked      = "TOOL_INVOKED"
	TypeDocumentIngested = "DOCUMENT_INGESTED"
)

// NewChatCompleted records one finished assistant turn.
func NewChatCompleted(sessionKey, query string, toolsUsed []string) BaseEvent {
	return BaseEvent{
		Type: TypeChatCompleted,
		Data: map[string]interface{}{
			"session_key": sessionKey,
			"query":       query,
			"tools_used":  toolsUsed,
		},
		OccurredAt: time.Now(),
	}
}

// NewToolInvoked records a single tool dispatch inside a turn.
func NewToolInvoked(sessionKey, toolName string) BaseEvent {
	return BaseEvent{
		Type: TypeToolInvoked,
		Data: map[string]interface{}{
			"session_key": sessionKey,
			"tool":        toolName,
		},
		OccurredAt: time.Now(),
	}
}

// NewDocumentIngested records a source landing in the vector store.
func NewDocumentIngested(sourceFile string, chunkCount int) BaseEvent {
	return BaseEvent{
		Type: TypeDocumentIngested,
		Data: map[string]interface{}{
			"source_file": sourceFile,
			"chunk_count": chunkCount,
		},
		OccurredAt: time.Now(),
	}
}
