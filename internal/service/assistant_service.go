package service

import (
	"bytes"
	"context"
	"encoding/json"
	"time"

	"ai-assistant-be/internal/constant"
	"ai-assistant-be/internal/dto"
	"ai-assistant-be/internal/entity"
	"ai-assistant-be/internal/pkg/logger"
	"ai-assistant-be/internal/repository/memory"
	"ai-assistant-be/internal/repository/specification"
	"ai-assistant-be/internal/repository/unitofwork"
	"ai-assistant-be/pkg/agent"
	"ai-assistant-be/pkg/events"
	"ai-assistant-be/pkg/llm"
	pktNats "ai-assistant-be/pkg/nats"
	"ai-assistant-be/pkg/store"
	"ai-assistant-be/pkg/tools"

	"github.com/google/uuid"
)

type IAssistantService interface {
	Chat(ctx context.Context, req *dto.ChatRequest) (*dto.ChatResponse, error)
	ResetSession(ctx context.Context, sessionKey string) (*dto.NewChatResponse, error)
	GetHistory(ctx context.Context, sessionKey string) (*dto.HistoryResponse, error)
}

type assistantService struct {
	agent           *agent.Agent
	conversations   *memory.ConversationRepository
	uowFactory      unitofwork.RepositoryFactory
	eventPublisher  *pktNats.Publisher
	sysLogger       logger.ILogger
	maxHistoryTurns int
}

func NewAssistantService(
	agentCore *agent.Agent,
	conversations *memory.ConversationRepository,
	uowFactory unitofwork.RepositoryFactory,
	eventPublisher *pktNats.Publisher,
	sysLogger logger.ILogger,
) IAssistantService {
	return &assistantService{
		agent:           agentCore,
		conversations:   conversations,
		uowFactory:      uowFactory,
		eventPublisher:  eventPublisher,
		sysLogger:       sysLogger,
		maxHistoryTurns: 20,
	}
}

func sessionKeyOrDefault(key string) string {
	if key == "" {
		return store.DefaultSessionKey
	}
	return key
}

func (s *assistantService) Chat(ctx context.Context, req *dto.ChatRequest) (*dto.ChatResponse, error) {
	key := sessionKeyOrDefault(req.SessionId)

	conv, found := s.conversations.Get(key)
	if !found {
		conv = &store.Conversation{Key: key, SessionId: uuid.New()}
	}

	result, err := s.agent.Handle(ctx, req.Query, s.historyMessages(conv))
	if err != nil {
		s.sysLogger.Error("ASSISTANT", "Agent turn failed", map[string]interface{}{
			"session_key": key,
			"error":       err.Error(),
		})
		return nil, err
	}

	now := time.Now()
	conv.Append(store.RoleUser, req.Query, now)
	conv.Append(store.RoleAssistant, result.Answer, now)
	s.conversations.Save(conv)

	// The durable chat log is auxiliary: a write failure must not lose the
	// answer we already have.
	if err := s.persistTurn(ctx, conv, req.Query, result); err != nil {
		s.sysLogger.Warn("ASSISTANT", "Failed to persist chat turn", map[string]interface{}{
			"session_key": key,
			"error":       err.Error(),
		})
	}

	s.publishEvents(ctx, key, req.Query, result)

	res := &dto.ChatResponse{
		Query:         req.Query,
		Result:        result.Answer,
		ToolsUsed:     result.ToolsUsed,
		ContextChunks: json.RawMessage("[]"),
		DBResults:     json.RawMessage("[]"),
	}
	s.attachToolOutput(res, result)
	return res, nil
}

// historyMessages converts the stored turn log into the model's message
// format, keeping only the most recent turns.
func (s *assistantService) historyMessages(conv *store.Conversation) []llm.Message {
	turns := conv.Turns
	if len(turns) > s.maxHistoryTurns {
		turns = turns[len(turns)-s.maxHistoryTurns:]
	}

	messages := make([]llm.Message, 0, len(turns))
	for _, turn := range turns {
		messages = append(messages, llm.Message{Role: turn.Role, Content: turn.Content})
	}
	return messages
}

// attachToolOutput surfaces structured tool output next to the answer:
// document chunks for the search tool, rows for the database tool. Error
// objects and empty-result notices are not arrays and stay internal.
func (s *assistantService) attachToolOutput(res *dto.ChatResponse, result *agent.Result) {
	if len(result.ToolsUsed) == 0 || len(result.ToolResult) == 0 {
		return
	}
	if !bytes.HasPrefix(bytes.TrimSpace(result.ToolResult), []byte("[")) {
		return
	}
	if !json.Valid(result.ToolResult) {
		return
	}

	switch result.ToolsUsed[0] {
	case tools.NameSearchDocuments:
		res.ContextChunks = result.ToolResult
	case tools.NameQueryDatabase:
		res.DBResults = result.ToolResult
	}
}

func (s *assistantService) persistTurn(ctx context.Context, conv *store.Conversation, query string, result *agent.Result) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	session, err := uow.ChatSessionRepository().FindOne(ctx, specification.BySessionKey{SessionKey: conv.Key})
	if err != nil {
		return err
	}
	if session == nil {
		session = &entity.ChatSession{
			Id:         conv.SessionId,
			SessionKey: conv.Key,
			Title:      truncateTitle(query),
			CreatedAt:  time.Now(),
		}
		if err := uow.ChatSessionRepository().Create(ctx, session); err != nil {
			return err
		}
	}

	userMsg := &entity.ChatMessage{
		Id:            uuid.New(),
		Chat:          query,
		Role:          store.RoleUser,
		ChatSessionId: session.Id,
		CreatedAt:     time.Now(),
	}
	if err := uow.ChatMessageRepository().Create(ctx, userMsg); err != nil {
		return err
	}

	assistantMsg := &entity.ChatMessage{
		Id:            uuid.New(),
		Chat:          result.Answer,
		Role:          store.RoleAssistant,
		ChatSessionId: session.Id,
		ToolsUsed:     result.ToolsUsed,
		CreatedAt:     time.Now(),
	}
	if err := uow.ChatMessageRepository().Create(ctx, assistantMsg); err != nil {
		return err
	}

	return uow.Commit()
}

func (s *assistantService) publishEvents(ctx context.Context, key, query string, result *agent.Result) {
	if s.eventPublisher == nil {
		return
	}

	if len(result.ToolsUsed) > 0 {
		evt := events.NewToolInvoked(key, result.ToolsUsed[0])
		if err := s.eventPublisher.Publish(ctx, evt); err != nil {
			s.sysLogger.Warn("ASSISTANT", "Failed to publish TOOL_INVOKED event", map[string]interface{}{"error": err.Error()})
		}
	}

	evt := events.NewChatCompleted(key, query, result.ToolsUsed)
	if err := s.eventPublisher.Publish(ctx, evt); err != nil {
		s.sysLogger.Warn("ASSISTANT", "Failed to publish CHAT_COMPLETED event", map[string]interface{}{"error": err.Error()})
	}
}

func (s *assistantService) ResetSession(ctx context.Context, sessionKey string) (*dto.NewChatResponse, error) {
	key := sessionKeyOrDefault(sessionKey)
	s.conversations.Delete(key)

	// The durable log backs GetHistory when memory is cold, so a reset has
	// to clear it too or the old turns come back.
	if err := s.clearDurableLog(ctx, key); err != nil {
		s.sysLogger.Warn("ASSISTANT", "Failed to clear durable chat log", map[string]interface{}{
			"session_key": key,
			"error":       err.Error(),
		})
	}

	s.sysLogger.Info("ASSISTANT", "Chat session reset", map[string]interface{}{"session_key": key})

	return &dto.NewChatResponse{
		Message:   "New chat session started",
		Status:    "success",
		SessionId: key,
	}, nil
}

func (s *assistantService) GetHistory(ctx context.Context, sessionKey string) (*dto.HistoryResponse, error) {
	key := sessionKeyOrDefault(sessionKey)

	conv, found := s.conversations.Get(key)
	if !found {
		return s.historyFromLog(ctx, key)
	}

	messages := make([]dto.HistoryMessage, 0, len(conv.Turns))
	for _, turn := range conv.Turns {
		messages = append(messages, dto.HistoryMessage{Type: historyType(turn.Role), Content: turn.Content})
	}

	return &dto.HistoryResponse{
		MessageCount: len(messages),
		Messages:     messages,
	}, nil
}

// historyFromLog replays the durable chat log for a session whose in-memory
// window has expired (or the process restarted).
func (s *assistantService) historyFromLog(ctx context.Context, key string) (*dto.HistoryResponse, error) {
	empty := &dto.HistoryResponse{MessageCount: 0, Messages: []dto.HistoryMessage{}}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	session, err := uow.ChatSessionRepository().FindOne(ctx, specification.BySessionKey{SessionKey: key})
	if err != nil {
		s.sysLogger.Warn("ASSISTANT", "Failed to load chat session from log", map[string]interface{}{
			"session_key": key,
			"error":       err.Error(),
		})
		return empty, nil
	}
	if session == nil {
		return empty, nil
	}

	records, err := uow.ChatMessageRepository().FindAll(ctx,
		specification.ByChatSessionID{ChatSessionID: session.Id},
		specification.OrderBy{Field: "created_at"},
	)
	if err != nil {
		s.sysLogger.Warn("ASSISTANT", "Failed to load chat messages from log", map[string]interface{}{
			"session_key": key,
			"error":       err.Error(),
		})
		return empty, nil
	}

	messages := make([]dto.HistoryMessage, 0, len(records))
	for _, record := range records {
		messages = append(messages, dto.HistoryMessage{Type: historyType(record.Role), Content: record.Chat})
	}

	return &dto.HistoryResponse{
		MessageCount: len(messages),
		Messages:     messages,
	}, nil
}

func (s *assistantService) clearDurableLog(ctx context.Context, key string) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	session, err := uow.ChatSessionRepository().FindOne(ctx, specification.BySessionKey{SessionKey: key})
	if err != nil || session == nil {
		return err
	}
	return uow.ChatMessageRepository().DeleteByChatSessionId(ctx, session.Id)
}

func historyType(role string) string {
	if role == store.RoleAssistant {
		return constant.HistoryTypeAI
	}
	return constant.HistoryTypeHuman
}

func truncateTitle(query string) string {
	const maxTitle = 80
	if len(query) <= maxTitle {
		return query
	}
	return query[:maxTitle]
}
