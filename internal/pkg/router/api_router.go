package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	apiv1 "github.com/CourseForgeHQ/CourseForge/internal/api/v1"
	"github.com/CourseForgeHQ/CourseForge/internal/pkg/middleware"
)

// ApiRouter wires the key-protected ops API.
type ApiRouter struct {
	server *apiv1.APIServer
	apiKey string
}

func NewApiRouter(server *apiv1.APIServer, apiKey string) *ApiRouter {
	return &ApiRouter{server: server, apiKey: apiKey}
}

func (h *ApiRouter) InstallRouter(app *fiber.App) {
	api := app.Group("/api", limiter.New(), middleware.APIKeyAuthMiddleware(h.apiKey))

	v1 := api.Group("/v1")
	apiv1.RegisterHandlers(v1, h.server)
}
