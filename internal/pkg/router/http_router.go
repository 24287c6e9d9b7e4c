package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/CourseForgeHQ/CourseForge/app/controllers"
)

// HttpRouter wires the webhook and operational endpoints.
type HttpRouter struct {
	webhooks *controllers.WebhookController
}

func NewHttpRouter(webhooks *controllers.WebhookController) *HttpRouter {
	return &HttpRouter{webhooks: webhooks}
}

func (h *HttpRouter) InstallRouter(app *fiber.App) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "ok",
		})
	})

	webhooks := app.Group("/webhooks")
	webhooks.Post("/stripe", h.webhooks.HandleStripeWebhook)
}
