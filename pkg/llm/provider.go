package llm

import (
	"context"
	"encoding/json"
)

// Message represents a chat message in a provider-agnostic format
type Message struct {
	Role    string // "user", "assistant", "system"
	Content string
}

// Tool declares a callable capability to the model in a provider-agnostic
// format. Parameters is a JSON-schema object.
type Tool struct {
	Name        string
	Description string
	Parameters  map[string]interface{}
}

// ToolCall is the model's structured intent to invoke a declared tool.
type ToolCall struct {
	Name      string
	Arguments map[string]string
}

// StringArg returns the named argument or "" when absent.
func (tc ToolCall) StringArg(key string) string {
	return tc.Arguments[key]
}

// ToolResponse is what a tool-aware chat call yields: either plain text or
// one or more tool calls. Providers must leave Content empty only when the
// model actually declared tool calls.
type ToolResponse struct {
	Content   string
	ToolCalls []ToolCall
}

// Option allows for optional parameters like Temperature, MaxTokens, etc.
type Option func(*Options)

type Options struct {
	Temperature float64
	MaxTokens   int
	Model       string // Override default model
}

func WithTemperature(temp float64) Option {
	return func(o *Options) {
		o.Temperature = temp
	}
}

func WithMaxTokens(n int) Option {
	return func(o *Options) {
		o.MaxTokens = n
	}
}

func WithModel(model string) Option {
	return func(o *Options) {
		o.Model = model
	}
}

// Provider defines the contract for any LLM backend
type Provider interface {
	// Chat sends a chat history to the model and returns the response text
	Chat(ctx context.Context, history []Message, options ...Option) (string, error)

	// ChatWithTools additionally declares tools the model may elect to call
	ChatWithTools(ctx context.Context, history []Message, tools []Tool, options ...Option) (*ToolResponse, error)

	// Generate sends a single prompt to the model (convenience method)
	Generate(ctx context.Context, prompt string, options ...Option) (string, error)
}

// DecodeArguments converts a raw JSON arguments payload into the flat
// string map used by ToolCall. OpenAI delivers arguments as a JSON-encoded
// string rather than an object, so that layer is unwrapped first. Non-string
// values are re-encoded as JSON so nothing is silently dropped.
func DecodeArguments(raw json.RawMessage) map[string]string {
	if len(raw) == 0 {
		return map[string]string{}
	}
	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		raw = json.RawMessage(asString)
	}
	var generic map[string]interface{}
	if err := json.Unmarshal(raw, &generic); err != nil {
		return map[string]string{}
	}
	args := make(map[string]string, len(generic))
	for k, v := range generic {
		if s, ok := v.(string); ok {
			args[k] = s
			continue
		}
		if b, err := json.Marshal(v); err == nil {
			args[k] = string(b)
		}
	}
	return args
}
