package apiv1

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/CourseForgeHQ/CourseForge/app/repository"
)

const (
	defaultEventLimit = 50
	maxEventLimit     = 200
)

// APIServer serves the ops API used by support tooling: recent webhook
// deliveries and per-customer purchase and email history.
type APIServer struct {
	repos *repository.Repositories
	log   *zap.Logger
}

// NewAPIServer creates a new API server instance
func NewAPIServer(repos *repository.Repositories, log *zap.Logger) *APIServer {
	return &APIServer{repos: repos, log: log}
}

// RegisterHandlers attaches the v1 routes to the given router group.
func RegisterHandlers(router fiber.Router, s *APIServer) {
	router.Get("/ping", s.GetPing)
	router.Get("/webhook-events", s.ListWebhookEvents)
	router.Get("/users/:id", s.GetUser)
	router.Get("/users/:id/purchases", s.ListUserPurchases)
	router.Get("/users/:id/emails", s.ListUserEmails)
}

// GetPing handles the ping endpoint
func (s *APIServer) GetPing(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"ping": "pong"})
}

// ListWebhookEvents returns the most recently received provider events.
func (s *APIServer) ListWebhookEvents(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", defaultEventLimit)
	if limit < 1 || limit > maxEventLimit {
		limit = defaultEventLimit
	}

	events, err := s.repos.WebhookEvent.ListRecent(limit)
	if err != nil {
		s.log.Error("webhook event listing failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "internal_server_error",
		})
	}
	return c.JSON(fiber.Map{"events": events})
}

// GetUser returns a single user by id.
func (s *APIServer) GetUser(c *fiber.Ctx) error {
	id, err := parseUserID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "invalid user id"})
	}

	user, err := s.repos.User.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found"})
		}
		s.log.Error("user lookup failed", zap.Uint("user_id", id), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error"})
	}
	return c.JSON(user)
}

// ListUserPurchases returns the purchase ledger for a user.
func (s *APIServer) ListUserPurchases(c *fiber.Ctx) error {
	id, err := parseUserID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "invalid user id"})
	}

	records, err := s.repos.Purchase.ListByUserID(id)
	if err != nil {
		s.log.Error("purchase listing failed", zap.Uint("user_id", id), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error"})
	}
	return c.JSON(fiber.Map{"purchases": records})
}

// ListUserEmails returns the email send history for a user.
func (s *APIServer) ListUserEmails(c *fiber.Ctx) error {
	id, err := parseUserID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "invalid user id"})
	}

	entries, err := s.repos.EmailLog.ListByUserID(id)
	if err != nil {
		s.log.Error("email log listing failed", zap.Uint("user_id", id), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error"})
	}
	return c.JSON(fiber.Map{"emails": entries})
}

func parseUserID(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, errors.New("invalid user id")
	}
	return uint(id), nil
}
