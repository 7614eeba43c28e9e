package controller

import (
	"context"
	"time"

	"marketing-assistant-be/internal/pkg/serverutils"

	"github.com/gofiber/fiber/v2"
)

// HealthCheck probes one dependency. A nil error means healthy.
type HealthCheck func(ctx context.Context) error

type IHealthController interface {
	RegisterRoutes(r fiber.Router)
	Health(ctx *fiber.Ctx) error
}

type healthController struct {
	checks map[string]HealthCheck
}

func NewHealthController(checks map[string]HealthCheck) IHealthController {
	return &healthController{checks: checks}
}

func (c *healthController) RegisterRoutes(r fiber.Router) {
	r.Get("/healthz", c.Health)
}

func (c *healthController) Health(ctx *fiber.Ctx) error {
	checkCtx, cancel := context.WithTimeout(ctx.UserContext(), 3*time.Second)
	defer cancel()

	status := fiber.StatusOK
	results := make(map[string]string, len(c.checks))
	for name, check := range c.checks {
		if err := check(checkCtx); err != nil {
			results[name] = err.Error()
			status = fiber.StatusServiceUnavailable
			continue
		}
		results[name] = "ok"
	}

	if status != fiber.StatusOK {
		res := serverutils.ErrorResponse(status, "Unhealthy")
		res.Data = results
		return ctx.Status(status).JSON(res)
	}
	return ctx.JSON(serverutils.SuccessResponse("OK", results))
}
