package controller

import (
	"bufio"
	"context"
	"encoding/json"

	"admissions-rag-be/internal/dto"
	"admissions-rag-be/internal/pkg/serverutils"
	"admissions-rag-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"
)

type IChatController interface {
	RegisterRoutes(r fiber.Router)
}

type chatController struct {
	chatService service.IChatService
}

func NewChatController(chatService service.IChatService) IChatController {
	return &chatController{chatService: chatService}
}

func (c *chatController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/chat/v1")
	h.Post("message", c.Message)

	// Operational endpoints require auth
	h.Get("status/sessions", serverutils.JwtMiddleware, c.SessionStatus)
	h.Get("status/contexts", serverutils.JwtMiddleware, c.ContextStatus)
	h.Delete("session/:userKey", serverutils.JwtMiddleware, c.ClearSession)
}

// Message streams the answer as NDJSON, one delta object per line, closed by
// a final line with done=true.
func (c *chatController) Message(ctx *fiber.Ctx) error {
	var req dto.ChatRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	ctx.Set(fiber.HeaderContentType, "application/x-ndjson")
	ctx.Set(fiber.HeaderCacheControl, "no-cache")

	ctx.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		enc := json.NewEncoder(w)

		completion := c.chatService.Stream(context.Background(), &req, func(d dto.ChatDelta) error {
			if err := enc.Encode(d); err != nil {
				return err
			}
			return w.Flush()
		})

		_ = enc.Encode(dto.ChatDelta{
			ConversationId: completion.ConversationId,
			Done:           true,
		})
		_ = w.Flush()
	}))

	return nil
}

func (c *chatController) SessionStatus(ctx *fiber.Ctx) error {
	res := c.chatService.SessionStatus()
	return ctx.JSON(serverutils.SuccessResponse("Success show session status", res))
}

func (c *chatController) ContextStatus(ctx *fiber.Ctx) error {
	res := c.chatService.ContextStatus()
	return ctx.JSON(serverutils.SuccessResponse("Success show context status", res))
}

func (c *chatController) ClearSession(ctx *fiber.Ctx) error {
	userKey := ctx.Params("userKey")
	if userKey == "" {
		return fiber.NewError(fiber.StatusBadRequest, "userKey is required")
	}

	res := c.chatService.ClearSession(ctx.Context(), userKey)
	return ctx.JSON(serverutils.SuccessResponse("Success clear session", res))
}
