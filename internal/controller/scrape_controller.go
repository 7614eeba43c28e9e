package controller

import (
	"errors"

	"marketing-assistant-be/internal/dto"
	"marketing-assistant-be/internal/pkg/serverutils"
	"marketing-assistant-be/internal/service"
	"marketing-assistant-be/pkg/scraper"

	"github.com/gofiber/fiber/v2"
)

type IScrapeController interface {
	RegisterRoutes(r fiber.Router)
	Scrape(ctx *fiber.Ctx) error
}

type scrapeController struct {
	scrapeService service.IScrapeService
}

func NewScrapeController(scrapeService service.IScrapeService) IScrapeController {
	return &scrapeController{
		scrapeService: scrapeService,
	}
}

func (c *scrapeController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/webhook")
	h.Post("/scrape", c.Scrape)
}

func (c *scrapeController) Scrape(ctx *fiber.Ctx) error {
	var req dto.ScrapeRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(fiber.StatusBadRequest, err.Error()))
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.scrapeService.Scrape(ctx.UserContext(), &req)
	if err != nil {
		if errors.Is(err, service.ErrNothingScraped) || errors.Is(err, scraper.ErrScraperDisabled) {
			return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
		}
		return err
	}

	return ctx.JSON(res)
}
