package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"ai-assistant-be/internal/dto"
	"ai-assistant-be/internal/pkg/serverutils"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAssistantService struct {
	chatRes    *dto.ChatResponse
	chatErr    error
	lastReq    *dto.ChatRequest
	historyRes *dto.HistoryResponse
	resetKey   string
}

func (f *fakeAssistantService) Chat(ctx context.Context, req *dto.ChatRequest) (*dto.ChatResponse, error) {
	f.lastReq = req
	return f.chatRes, f.chatErr
}

func (f *fakeAssistantService) ResetSession(ctx context.Context, sessionKey string) (*dto.NewChatResponse, error) {
	f.resetKey = sessionKey
	return &dto.NewChatResponse{Message: "New chat session started", Status: "success"}, nil
}

func (f *fakeAssistantService) GetHistory(ctx context.Context, sessionKey string) (*dto.HistoryResponse, error) {
	return f.historyRes, nil
}

func newTestApp(svc *fakeAssistantService) *fiber.App {
	app := fiber.New()
	app.Use(serverutils.ErrorHandlerMiddleware())
	NewChatController(svc).RegisterRoutes(app.Group("/api"))
	return app
}

func postJSON(t *testing.T, app *fiber.App, url string, body interface{}) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(http.MethodPost, url, reader)
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	defer resp.Body.Close()
	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestChatReturnsFlatResponse(t *testing.T) {
	svc := &fakeAssistantService{
		chatRes: &dto.ChatResponse{
			Query:         "How do solar panels work?",
			Result:        "They convert sunlight into electricity.",
			ToolsUsed:     []string{"search_documents"},
			ContextChunks: json.RawMessage(`[{"chunk_id":1,"content":"solar","source":"energy.txt"}]`),
			DBResults:     json.RawMessage(`[]`),
		},
	}
	app := newTestApp(svc)

	resp := postJSON(t, app, "/api/chat", map[string]string{"query": "How do solar panels work?"})

	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "How do solar panels work?", body["query"])
	assert.Equal(t, "They convert sunlight into electricity.", body["result"])
	assert.Equal(t, []interface{}{"search_documents"}, body["tools_used"])
	require.IsType(t, []interface{}{}, body["context_chunks"])
	assert.Equal(t, []interface{}{}, body["db_results"], "unused tool output must be an empty array")
}

func TestChatWithoutServiceIsUnavailable(t *testing.T) {
	app := fiber.New()
	app.Use(serverutils.ErrorHandlerMiddleware())
	NewChatController(nil).RegisterRoutes(app.Group("/api"))

	resp := postJSON(t, app, "/api/chat", map[string]string{"query": "hi"})

	require.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Contains(t, body, "detail")
}

func TestChatHeaderSessionIdIsUsed(t *testing.T) {
	svc := &fakeAssistantService{chatRes: &dto.ChatResponse{ToolsUsed: []string{}}}
	app := newTestApp(svc)

	b, _ := json.Marshal(map[string]string{"query": "hi"})
	req := httptest.NewRequest(http.MethodPost, "/api/chat", bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Session-Id", "header-session")
	_, err := app.Test(req)
	require.NoError(t, err)

	require.NotNil(t, svc.lastReq)
	assert.Equal(t, "header-session", svc.lastReq.SessionId)
}

func TestChatMissingQueryIsBadRequest(t *testing.T) {
	app := newTestApp(&fakeAssistantService{})

	resp := postJSON(t, app, "/api/chat", map[string]string{})

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestChatServiceErrorBecomesDetailPayload(t *testing.T) {
	svc := &fakeAssistantService{chatErr: assert.AnError}
	app := newTestApp(svc)

	resp := postJSON(t, app, "/api/chat", map[string]string{"query": "boom"})

	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Contains(t, body, "detail")
}

func TestChatForwardsSessionId(t *testing.T) {
	svc := &fakeAssistantService{chatRes: &dto.ChatResponse{ToolsUsed: []string{}}}
	app := newTestApp(svc)

	resp := postJSON(t, app, "/api/chat", map[string]string{"query": "hi", "session_id": "team-42"})

	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotNil(t, svc.lastReq)
	assert.Equal(t, "team-42", svc.lastReq.SessionId)
}

func TestNewChatWithoutBodyResetsDefaultSession(t *testing.T) {
	svc := &fakeAssistantService{}
	app := newTestApp(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/chat/new", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "New chat session started", body["message"])
	assert.Equal(t, "success", body["status"])
	assert.Empty(t, svc.resetKey)
}

func TestHistoryReturnsTypedMessages(t *testing.T) {
	svc := &fakeAssistantService{
		historyRes: &dto.HistoryResponse{
			MessageCount: 2,
			Messages: []dto.HistoryMessage{
				{Type: "human", Content: "hi"},
				{Type: "ai", Content: "hello"},
			},
		},
	}
	app := newTestApp(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/chat/history", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, float64(2), body["message_count"])
	messages := body["messages"].([]interface{})
	first := messages[0].(map[string]interface{})
	assert.Equal(t, "human", first["type"])
}
