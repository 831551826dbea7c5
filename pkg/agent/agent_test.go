package agent

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"testing"

	"ai-assistant-be/pkg/llm"
	"ai-assistant-be/pkg/tools"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	toolResponse *scriptedToolResponse
	generated    string

	chatWithToolsCalls int
	lastMessages       []llm.Message
	lastPrompt         string
}

type scriptedToolResponse struct {
	content   string
	toolCalls []llm.ToolCall
}

func (f *fakeProvider) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	return f.generated, nil
}

func (f *fakeProvider) ChatWithTools(ctx context.Context, history []llm.Message, declared []llm.Tool, options ...llm.Option) (*llm.ToolResponse, error) {
	f.chatWithToolsCalls++
	f.lastMessages = history
	return &llm.ToolResponse{
		Content:   f.toolResponse.content,
		ToolCalls: f.toolResponse.toolCalls,
	}, nil
}

func (f *fakeProvider) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	f.lastPrompt = prompt
	return f.generated, nil
}

type fakeRunner struct {
	payload json.RawMessage
	lastArg string
	calls   int
}

func (f *fakeRunner) Run(ctx context.Context, arg string) json.RawMessage {
	f.calls++
	f.lastArg = arg
	return f.payload
}

func discardLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func TestHandleDirectAnswerWithoutToolCalls(t *testing.T) {
	provider := &fakeProvider{
		toolResponse: &scriptedToolResponse{content: "Paris is the capital of France."},
	}
	search := &fakeRunner{}
	db := &fakeRunner{}
	a := New(provider, search, db, discardLogger())

	result, err := a.Handle(context.Background(), "What is the capital of France?", nil)

	require.NoError(t, err)
	assert.Equal(t, "Paris is the capital of France.", result.Answer)
	assert.Empty(t, result.ToolsUsed)
	assert.Nil(t, result.ToolResult)
	assert.Zero(t, search.calls)
	assert.Zero(t, db.calls)
}

func TestHandlePrependsSystemPromptAndHistory(t *testing.T) {
	provider := &fakeProvider{
		toolResponse: &scriptedToolResponse{content: "hello again"},
	}
	a := New(provider, &fakeRunner{}, &fakeRunner{}, discardLogger())

	history := []llm.Message{
		{Role: "user", Content: "hi"},
		{Role: "assistant", Content: "hello"},
	}
	_, err := a.Handle(context.Background(), "are you still there?", history)

	require.NoError(t, err)
	require.Len(t, provider.lastMessages, 4)
	assert.Equal(t, "system", provider.lastMessages[0].Role)
	assert.Equal(t, "hi", provider.lastMessages[1].Content)
	assert.Equal(t, "are you still there?", provider.lastMessages[3].Content)
}

func TestHandleExecutesOnlyFirstToolCall(t *testing.T) {
	provider := &fakeProvider{
		toolResponse: &scriptedToolResponse{
			toolCalls: []llm.ToolCall{
				{Name: tools.NameSearchDocuments, Arguments: map[string]string{"query": "solar panels"}},
				{Name: tools.NameQueryDatabase, Arguments: map[string]string{"natural_language_query": "list users"}},
			},
		},
		generated: "Solar panels convert sunlight into electricity.",
	}
	search := &fakeRunner{payload: json.RawMessage(`[{"chunk_id":1,"content":"solar","source":"energy.txt"}]`)}
	db := &fakeRunner{}
	a := New(provider, search, db, discardLogger())

	result, err := a.Handle(context.Background(), "How do solar panels work?", nil)

	require.NoError(t, err)
	assert.Equal(t, []string{tools.NameSearchDocuments, tools.NameQueryDatabase}, result.ToolsUsed)
	assert.Equal(t, 1, search.calls)
	assert.Equal(t, "solar panels", search.lastArg)
	assert.Zero(t, db.calls, "second declared call must not execute")
	assert.Equal(t, "Solar panels convert sunlight into electricity.", result.Answer)
	assert.JSONEq(t, string(search.payload), string(result.ToolResult))
}

func TestHandleRoutesDatabaseTool(t *testing.T) {
	provider := &fakeProvider{
		toolResponse: &scriptedToolResponse{
			toolCalls: []llm.ToolCall{
				{Name: tools.NameQueryDatabase, Arguments: map[string]string{"natural_language_query": "who has the highest balance?"}},
			},
		},
		generated: "Alice holds the highest balance.",
	}
	db := &fakeRunner{payload: json.RawMessage(`[{"name":"Alice","balance":"950.00"}]`)}
	a := New(provider, &fakeRunner{}, db, discardLogger())

	result, err := a.Handle(context.Background(), "who has the highest balance?", nil)

	require.NoError(t, err)
	assert.Equal(t, 1, db.calls)
	assert.Equal(t, "who has the highest balance?", db.lastArg)
	assert.Equal(t, "Alice holds the highest balance.", result.Answer)
}

func TestHandleThreadsToolErrorPayloadIntoSynthesis(t *testing.T) {
	errPayload := json.RawMessage(`{"error":"No relevant documents found."}`)
	provider := &fakeProvider{
		toolResponse: &scriptedToolResponse{
			toolCalls: []llm.ToolCall{
				{Name: tools.NameSearchDocuments, Arguments: map[string]string{"query": "quantum gardening"}},
			},
		},
		generated: "I could not find any relevant documents.",
	}
	search := &fakeRunner{payload: errPayload}
	a := New(provider, search, &fakeRunner{}, discardLogger())

	result, err := a.Handle(context.Background(), "quantum gardening?", nil)

	require.NoError(t, err)
	assert.Contains(t, provider.lastPrompt, `"No relevant documents found."`,
		"error payload must reach the synthesis prompt verbatim")
	assert.JSONEq(t, string(errPayload), string(result.ToolResult))
	assert.Equal(t, "I could not find any relevant documents.", result.Answer)
}

func TestHandleRejectsUnknownTool(t *testing.T) {
	provider := &fakeProvider{
		toolResponse: &scriptedToolResponse{
			toolCalls: []llm.ToolCall{{Name: "delete_everything"}},
		},
	}
	a := New(provider, &fakeRunner{}, &fakeRunner{}, discardLogger())

	_, err := a.Handle(context.Background(), "do something weird", nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown tool")
}
