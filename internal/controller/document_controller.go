package controller

import (
	"marketing-assistant-be/internal/dto"
	"marketing-assistant-be/internal/pkg/serverutils"
	"marketing-assistant-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IDocumentController interface {
	RegisterRoutes(r fiber.Router)
	Create(ctx *fiber.Ctx) error
	Search(ctx *fiber.Ctx) error
}

type documentController struct {
	documentService service.IDocumentService
	jwtSecret       string
}

func NewDocumentController(documentService service.IDocumentService, jwtSecret string) IDocumentController {
	return &documentController{
		documentService: documentService,
		jwtSecret:       jwtSecret,
	}
}

func (c *documentController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/documents")
	h.Use(serverutils.JwtMiddleware(c.jwtSecret))
	h.Post("", c.Create)
	h.Post("search", c.Search)
}

func (c *documentController) Create(ctx *fiber.Ctx) error {
	var req dto.CreateDocumentRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(fiber.StatusBadRequest, err.Error()))
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.documentService.Create(ctx.UserContext(), &req)
	if err != nil {
		return err
	}

	if res.Queued {
		return ctx.Status(fiber.StatusAccepted).JSON(serverutils.SuccessResponse("Document queued for ingestion", res))
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Success store document", res))
}

func (c *documentController) Search(ctx *fiber.Ctx) error {
	var req dto.SearchDocumentsRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(fiber.StatusBadRequest, err.Error()))
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.documentService.Search(ctx.UserContext(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success search documents", res))
}
