package controller

import (
	"marketing-assistant-be/internal/pkg/serverutils"
	"marketing-assistant-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ISessionController interface {
	RegisterRoutes(r fiber.Router)
	GetTurns(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
}

type sessionController struct {
	conversationService service.IConversationService
	historyLimit        int
	jwtSecret           string
}

func NewSessionController(conversationService service.IConversationService, historyLimit int, jwtSecret string) ISessionController {
	return &sessionController{
		conversationService: conversationService,
		historyLimit:        historyLimit,
		jwtSecret:           jwtSecret,
	}
}

func (c *sessionController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/sessions")
	h.Get(":id/turns", c.GetTurns)
	h.Delete(":id", serverutils.JwtMiddleware(c.jwtSecret), c.Delete)
}

func (c *sessionController) GetTurns(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(fiber.StatusBadRequest, "Invalid session id"))
	}

	limit := ctx.QueryInt("limit", c.historyLimit)

	res, err := c.conversationService.GetTurns(ctx.UserContext(), id, limit)
	if err != nil {
		return err
	}
	if res == nil {
		return ctx.Status(fiber.StatusNotFound).JSON(serverutils.ErrorResponse(fiber.StatusNotFound, "Session not found"))
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get session turns", res))
}

func (c *sessionController) Delete(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(fiber.StatusBadRequest, "Invalid session id"))
	}

	deleted, err := c.conversationService.DeleteSession(ctx.UserContext(), id)
	if err != nil {
		return err
	}
	if !deleted {
		return ctx.Status(fiber.StatusNotFound).JSON(serverutils.ErrorResponse(fiber.StatusNotFound, "Session not found"))
	}

	return ctx.JSON(serverutils.SuccessResponse("Success delete session", nil))
}
