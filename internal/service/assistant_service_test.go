package service

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"testing"
	"time"

	"ai-assistant-be/internal/dto"
	"ai-assistant-be/internal/entity"
	"ai-assistant-be/internal/repository/contract"
	"ai-assistant-be/internal/repository/memory"
	"ai-assistant-be/internal/repository/specification"
	"ai-assistant-be/internal/repository/unitofwork"
	"ai-assistant-be/pkg/agent"
	"ai-assistant-be/pkg/llm"
	"ai-assistant-be/pkg/store"
	"ai-assistant-be/pkg/tools"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type noopLogger struct{}

func (noopLogger) Debug(module, message string, details map[string]interface{}) {}
func (noopLogger) Info(module, message string, details map[string]interface{})  {}
func (noopLogger) Warn(module, message string, details map[string]interface{})  {}
func (noopLogger) Error(module, message string, details map[string]interface{}) {}
func (noopLogger) Sync() error                                                  { return nil }

// In-memory unit of work for exercising the persistence path.

type fakeSessionRepo struct {
	sessions []*entity.ChatSession
}

func (r *fakeSessionRepo) Create(ctx context.Context, s *entity.ChatSession) error {
	r.sessions = append(r.sessions, s)
	return nil
}
func (r *fakeSessionRepo) Update(ctx context.Context, s *entity.ChatSession) error { return nil }
func (r *fakeSessionRepo) Delete(ctx context.Context, id uuid.UUID) error          { return nil }
func (r *fakeSessionRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ChatSession, error) {
	for _, sp := range specs {
		if byKey, ok := sp.(specification.BySessionKey); ok {
			for _, s := range r.sessions {
				if s.SessionKey == byKey.SessionKey {
					return s, nil
				}
			}
			return nil, nil
		}
	}
	if len(r.sessions) == 0 {
		return nil, nil
	}
	return r.sessions[len(r.sessions)-1], nil
}
func (r *fakeSessionRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatSession, error) {
	return r.sessions, nil
}
func (r *fakeSessionRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	return int64(len(r.sessions)), nil
}

type fakeMessageRepo struct {
	messages []*entity.ChatMessage
	deleted  []uuid.UUID
}

func (r *fakeMessageRepo) Create(ctx context.Context, m *entity.ChatMessage) error {
	r.messages = append(r.messages, m)
	return nil
}
func (r *fakeMessageRepo) DeleteByChatSessionId(ctx context.Context, sessionId uuid.UUID) error {
	r.deleted = append(r.deleted, sessionId)
	kept := r.messages[:0]
	for _, m := range r.messages {
		if m.ChatSessionId != sessionId {
			kept = append(kept, m)
		}
	}
	r.messages = kept
	return nil
}
func (r *fakeMessageRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatMessage, error) {
	for _, sp := range specs {
		if bySession, ok := sp.(specification.ByChatSessionID); ok {
			var matched []*entity.ChatMessage
			for _, m := range r.messages {
				if m.ChatSessionId == bySession.ChatSessionID {
					matched = append(matched, m)
				}
			}
			return matched, nil
		}
	}
	return r.messages, nil
}
func (r *fakeMessageRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	return int64(len(r.messages)), nil
}

type fakeUow struct {
	sessions *fakeSessionRepo
	messages *fakeMessageRepo
	chunks   contract.DocumentChunkRepository
	commits  int
}

func (u *fakeUow) Begin(ctx context.Context) error { return nil }
func (u *fakeUow) Commit() error {
	u.commits++
	return nil
}
func (u *fakeUow) Rollback() error { return nil }
func (u *fakeUow) ChatSessionRepository() contract.ChatSessionRepository {
	return u.sessions
}
func (u *fakeUow) ChatMessageRepository() contract.ChatMessageRepository {
	return u.messages
}
func (u *fakeUow) DocumentChunkRepository() contract.DocumentChunkRepository { return u.chunks }

type fakeUowFactory struct {
	uow *fakeUow
}

func (f *fakeUowFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork { return f.uow }

// Scripted model: declares one search tool call, then answers from it.

type scriptedProvider struct {
	answer string
}

func (p *scriptedProvider) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	return p.answer, nil
}
func (p *scriptedProvider) ChatWithTools(ctx context.Context, history []llm.Message, declared []llm.Tool, options ...llm.Option) (*llm.ToolResponse, error) {
	return &llm.ToolResponse{
		ToolCalls: []llm.ToolCall{
			{Name: tools.NameSearchDocuments, Arguments: map[string]string{"query": "solar"}},
		},
	}, nil
}
func (p *scriptedProvider) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return p.answer, nil
}

type staticRunner struct {
	payload json.RawMessage
}

func (r staticRunner) Run(ctx context.Context, arg string) json.RawMessage { return r.payload }

func TestChatFullTurnPersistsAndAnswers(t *testing.T) {
	conversations := memory.NewConversationRepository()
	uow := &fakeUow{sessions: &fakeSessionRepo{}, messages: &fakeMessageRepo{}}
	provider := &scriptedProvider{answer: "Panels need cleaning twice a year."}
	chunks := json.RawMessage(`[{"chunk_id":1,"content":"clean panels","source":"solar.txt"}]`)

	agentCore := agent.New(provider, staticRunner{payload: chunks}, staticRunner{}, log.New(io.Discard, "", 0))
	svc := &assistantService{
		agent:           agentCore,
		conversations:   conversations,
		uowFactory:      &fakeUowFactory{uow: uow},
		sysLogger:       noopLogger{},
		maxHistoryTurns: 20,
	}

	res, err := svc.Chat(context.Background(), &dto.ChatRequest{Query: "How often should panels be cleaned?"})
	require.NoError(t, err)

	assert.Equal(t, "Panels need cleaning twice a year.", res.Result)
	assert.Equal(t, []string{tools.NameSearchDocuments}, res.ToolsUsed)
	assert.JSONEq(t, string(chunks), string(res.ContextChunks))
	assert.JSONEq(t, "[]", string(res.DBResults))

	// Memory store carries both turns for the default session.
	conv, found := conversations.Get(store.DefaultSessionKey)
	require.True(t, found)
	require.Len(t, conv.Turns, 2)

	// Durable log got the session plus user and assistant messages.
	assert.Equal(t, 1, uow.commits)
	require.Len(t, uow.sessions.sessions, 1)
	require.Len(t, uow.messages.messages, 2)
	assert.Equal(t, []string{tools.NameSearchDocuments}, uow.messages.messages[1].ToolsUsed)
}

func newBareService(conversations *memory.ConversationRepository) *assistantService {
	return &assistantService{
		conversations:   conversations,
		uowFactory:      &fakeUowFactory{uow: &fakeUow{sessions: &fakeSessionRepo{}, messages: &fakeMessageRepo{}}},
		sysLogger:       noopLogger{},
		maxHistoryTurns: 20,
	}
}

func TestAttachToolOutputRoutesByTool(t *testing.T) {
	s := newBareService(nil)

	chunks := json.RawMessage(`[{"chunk_id":1,"content":"c","source":"s.txt"}]`)
	res := &dto.ChatResponse{}
	s.attachToolOutput(res, &agent.Result{ToolsUsed: []string{tools.NameSearchDocuments}, ToolResult: chunks})
	assert.JSONEq(t, string(chunks), string(res.ContextChunks))
	assert.Nil(t, res.DBResults)

	rows := json.RawMessage(`[{"name":"Alice"}]`)
	res = &dto.ChatResponse{}
	s.attachToolOutput(res, &agent.Result{ToolsUsed: []string{tools.NameQueryDatabase}, ToolResult: rows})
	assert.JSONEq(t, string(rows), string(res.DBResults))
	assert.Nil(t, res.ContextChunks)
}

func TestAttachToolOutputIgnoresNonArrayPayloads(t *testing.T) {
	s := newBareService(nil)

	res := &dto.ChatResponse{}
	s.attachToolOutput(res, &agent.Result{
		ToolsUsed:  []string{tools.NameSearchDocuments},
		ToolResult: json.RawMessage(`{"error":"No relevant documents found."}`),
	})

	assert.Nil(t, res.ContextChunks)
	assert.Nil(t, res.DBResults)
}

func TestAttachToolOutputDirectAnswer(t *testing.T) {
	s := newBareService(nil)

	res := &dto.ChatResponse{}
	s.attachToolOutput(res, &agent.Result{ToolsUsed: []string{}})

	assert.Nil(t, res.ContextChunks)
	assert.Nil(t, res.DBResults)
}

func TestHistoryMessagesKeepsOnlyRecentTurns(t *testing.T) {
	s := newBareService(nil)
	s.maxHistoryTurns = 4

	conv := &store.Conversation{Key: "k", SessionId: uuid.New()}
	for i := 0; i < 10; i++ {
		conv.Append(store.RoleUser, "old", time.Now())
	}
	conv.Append(store.RoleAssistant, "newest", time.Now())

	messages := s.historyMessages(conv)

	require.Len(t, messages, 4)
	assert.Equal(t, "newest", messages[3].Content)
}

func TestGetHistoryMapsRolesToWireTypes(t *testing.T) {
	conversations := memory.NewConversationRepository()
	conv := &store.Conversation{Key: store.DefaultSessionKey, SessionId: uuid.New()}
	conv.Append(store.RoleUser, "hi", time.Now())
	conv.Append(store.RoleAssistant, "hello", time.Now())
	conversations.Save(conv)

	s := newBareService(conversations)

	res, err := s.GetHistory(context.Background(), "")
	require.NoError(t, err)

	assert.Equal(t, 2, res.MessageCount)
	assert.Equal(t, "human", res.Messages[0].Type)
	assert.Equal(t, "ai", res.Messages[1].Type)
}

func TestGetHistoryEmptySession(t *testing.T) {
	s := newBareService(memory.NewConversationRepository())

	res, err := s.GetHistory(context.Background(), "nobody")
	require.NoError(t, err)

	assert.Equal(t, 0, res.MessageCount)
	assert.NotNil(t, res.Messages, "messages must serialize as [] rather than null")
}

func TestGetHistoryReplaysDurableLogWhenMemoryCold(t *testing.T) {
	sessionId := uuid.New()
	uow := &fakeUow{
		sessions: &fakeSessionRepo{sessions: []*entity.ChatSession{
			{Id: sessionId, SessionKey: "alpha"},
		}},
		messages: &fakeMessageRepo{messages: []*entity.ChatMessage{
			{Id: uuid.New(), Chat: "hi", Role: store.RoleUser, ChatSessionId: sessionId},
			{Id: uuid.New(), Chat: "hello", Role: store.RoleAssistant, ChatSessionId: sessionId},
			{Id: uuid.New(), Chat: "other session", Role: store.RoleUser, ChatSessionId: uuid.New()},
		}},
	}

	s := newBareService(memory.NewConversationRepository())
	s.uowFactory = &fakeUowFactory{uow: uow}

	res, err := s.GetHistory(context.Background(), "alpha")
	require.NoError(t, err)

	require.Equal(t, 2, res.MessageCount)
	assert.Equal(t, "human", res.Messages[0].Type)
	assert.Equal(t, "hi", res.Messages[0].Content)
	assert.Equal(t, "ai", res.Messages[1].Type)
}

func TestResetSessionClearsDurableLog(t *testing.T) {
	sessionId := uuid.New()
	uow := &fakeUow{
		sessions: &fakeSessionRepo{sessions: []*entity.ChatSession{
			{Id: sessionId, SessionKey: "alpha"},
		}},
		messages: &fakeMessageRepo{messages: []*entity.ChatMessage{
			{Id: uuid.New(), Chat: "hi", Role: store.RoleUser, ChatSessionId: sessionId},
		}},
	}

	s := newBareService(memory.NewConversationRepository())
	s.uowFactory = &fakeUowFactory{uow: uow}

	_, err := s.ResetSession(context.Background(), "alpha")
	require.NoError(t, err)

	require.Len(t, uow.messages.deleted, 1)
	assert.Equal(t, sessionId, uow.messages.deleted[0])

	// A later history read must not resurrect the cleared turns.
	res, err := s.GetHistory(context.Background(), "alpha")
	require.NoError(t, err)
	assert.Equal(t, 0, res.MessageCount)
}

func TestResetSessionDropsOnlyTargetKey(t *testing.T) {
	conversations := memory.NewConversationRepository()
	a := &store.Conversation{Key: "a", SessionId: uuid.New()}
	a.Append(store.RoleUser, "hi", time.Now())
	conversations.Save(a)
	b := &store.Conversation{Key: "b", SessionId: uuid.New()}
	b.Append(store.RoleUser, "yo", time.Now())
	conversations.Save(b)

	s := newBareService(conversations)

	res, err := s.ResetSession(context.Background(), "a")
	require.NoError(t, err)
	assert.Equal(t, "success", res.Status)

	_, found := conversations.Get("a")
	assert.False(t, found)
	_, found = conversations.Get("b")
	assert.True(t, found)
}
