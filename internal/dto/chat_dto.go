package dto

import "encoding/json"

type ChatRequest struct {
	Query     string `json:"query" validate:"required"`
	SessionId string `json:"session_id"` // optional; empty means the shared default session
}

// ChatResponse mirrors the flat contract the frontend already consumes.
// ContextChunks and DBResults are raw JSON arrays, empty unless the
// corresponding tool ran and produced structured output.
type ChatResponse struct {
	Query         string          `json:"query"`
	Result        string          `json:"result"`
	ToolsUsed     []string        `json:"tools_used"`
	ContextChunks json.RawMessage `json:"context_chunks"`
	DBResults     json.RawMessage `json:"db_results"`
}

type NewChatRequest struct {
	SessionId string `json:"session_id"`
}

type NewChatResponse struct {
	Message   string `json:"message"`
	Status    string `json:"status"`
	SessionId string `json:"session_id"`
}

type HistoryMessage struct {
	Type    string `json:"type"` // "human" or "ai"
	Content string `json:"content"`
}

type HistoryResponse struct {
	MessageCount int              `json:"message_count"`
	Messages     []HistoryMessage `json:"messages"`
}
