package controller

import (
	"ai-assistant-be/internal/dto"
	"ai-assistant-be/internal/pkg/serverutils"
	"ai-assistant-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IChatController interface {
	RegisterRoutes(r fiber.Router)
	Chat(ctx *fiber.Ctx) error
	NewChat(ctx *fiber.Ctx) error
	History(ctx *fiber.Ctx) error
}

type chatController struct {
	assistantService service.IAssistantService
}

func NewChatController(assistantService service.IAssistantService) IChatController {
	return &chatController{
		assistantService: assistantService,
	}
}

func (c *chatController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/chat")
	h.Post("", c.Chat)
	h.Post("/new", c.NewChat)
	h.Get("/history", c.History)
}

// Chat answers one user query, keeping the flat response shape of the
// original API rather than the generic envelope.
func (c *chatController) Chat(ctx *fiber.Ctx) error {
	if c.assistantService == nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "Assistant service not initialized")
	}

	var req dto.ChatRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid request body"))
	}
	if req.SessionId == "" {
		req.SessionId = ctx.Get("X-Session-Id")
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, err.Error()))
	}

	res, err := c.assistantService.Chat(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(res)
}

func (c *chatController) NewChat(ctx *fiber.Ctx) error {
	if c.assistantService == nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "Assistant service not initialized")
	}

	var req dto.NewChatRequest
	// Body is optional; an empty body targets the default session.
	_ = ctx.BodyParser(&req)
	if req.SessionId == "" {
		req.SessionId = ctx.Get("X-Session-Id")
	}

	res, err := c.assistantService.ResetSession(ctx.Context(), req.SessionId)
	if err != nil {
		return err
	}

	return ctx.JSON(res)
}

func (c *chatController) History(ctx *fiber.Ctx) error {
	if c.assistantService == nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "Assistant service not initialized")
	}

	sessionKey := ctx.Query("session_id")
	if sessionKey == "" {
		sessionKey = ctx.Get("X-Session-Id")
	}

	res, err := c.assistantService.GetHistory(ctx.Context(), sessionKey)
	if err != nil {
		return err
	}

	return ctx.JSON(res)
}
