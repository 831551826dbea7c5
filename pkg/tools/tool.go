package tools

import (
	"context"
	"encoding/json"

	"ai-assistant-be/pkg/llm"
)

// Kind is the closed set of tool kinds the assistant can dispatch to.
// Routing switches on this tag exhaustively instead of raw tool-name strings.
type Kind int

const (
	KindSearchDocuments Kind = iota
	KindQueryDatabase
)

const (
	NameSearchDocuments = "search_documents"
	NameQueryDatabase   = "query_database"
)

func (k Kind) Name() string {
	switch k {
	case KindSearchDocuments:
		return NameSearchDocuments
	case KindQueryDatabase:
		return NameQueryDatabase
	}
	return "unknown"
}

// KindFromName maps a declared tool-call name back onto the closed variant.
func KindFromName(name string) (Kind, bool) {
	switch name {
	case NameSearchDocuments:
		return KindSearchDocuments, true
	case NameQueryDatabase:
		return KindQueryDatabase, true
	}
	return 0, false
}

// Runner is a single request/response capability. Collaborator failures are
// folded into the returned JSON as {"error": ...} objects rather than
// surfaced as Go errors; the synthesis step treats them as ordinary context.
type Runner interface {
	Run(ctx context.Context, arg string) json.RawMessage
}

// Schemas declares both tools to the model.
func Schemas() []llm.Tool {
	return []llm.Tool{
		{
			Name:        NameSearchDocuments,
			Description: "Search the vector database for relevant documents based on a user query. Returns the top most relevant document chunks with their sources.",
			Parameters: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"query": map[string]interface{}{
						"type":        "string",
						"description": "The user's search query.",
					},
				},
				"required": []string{"query"},
			},
		},
		{
			Name:        NameQueryDatabase,
			Description: "Query the PostgreSQL database to answer questions about users, their balances, and account status.",
			Parameters: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"natural_language_query": map[string]interface{}{
						"type":        "string",
						"description": "The user's question in plain English.",
					},
				},
				"required": []string{"natural_language_query"},
			},
		},
	}
}

// errorJSON builds the canonical tool-level error payload.
func errorJSON(message string) json.RawMessage {
	b, _ := json.Marshal(map[string]string{"error": message})
	return b
}
