package controllers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/stripe/stripe-go/v79/webhook"
	"go.uber.org/zap"

	"github.com/CourseForgeHQ/CourseForge/app/models"
	"github.com/CourseForgeHQ/CourseForge/app/repository"
	"github.com/CourseForgeHQ/CourseForge/internal/pkg/payments"
)

// WebhookController terminates provider webhooks: verify the signature,
// persist an audit row and hand the event to the dispatch registry.
type WebhookController struct {
	registry      *payments.Registry
	events        repository.WebhookEventRepository
	signingSecret string
	log           *zap.Logger
}

func NewWebhookController(
	registry *payments.Registry,
	events repository.WebhookEventRepository,
	signingSecret string,
	log *zap.Logger,
) *WebhookController {
	return &WebhookController{
		registry:      registry,
		events:        events,
		signingSecret: signingSecret,
		log:           log,
	}
}

// HandleStripeWebhook is the POST /webhooks/stripe endpoint.
//
// Response codes drive the provider's retry behaviour: only a handler error
// returns 500 so Stripe redelivers. Events nobody claims are acknowledged
// with 200, and bad signatures get 400 without retry.
func (wc *WebhookController) HandleStripeWebhook(c *fiber.Ctx) error {
	payload := c.Body()
	signature := c.Get("Stripe-Signature")

	stripeEvent, err := webhook.ConstructEventWithOptions(payload, signature, wc.signingSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		wc.log.Warn("webhook signature verification failed", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid signature",
		})
	}

	event := payments.FromStripeEvent(&stripeEvent)

	// Audit trail only. Dedup stays inside the handlers, so a failed audit
	// write must not block dispatch.
	audit := wc.recordAudit(event, payload)

	handled, err := wc.registry.Dispatch(c.UserContext(), event)

	if audit != nil {
		processingError := ""
		if err != nil {
			processingError = err.Error()
		}
		if markErr := wc.events.MarkProcessed(audit.ID, processingError); markErr != nil {
			wc.log.Error("webhook audit update failed",
				zap.String("event_id", event.ID),
				zap.Error(markErr),
			)
		}
	}

	if err != nil {
		wc.log.Error("webhook processing failed",
			zap.String("event_id", event.ID),
			zap.String("event_type", event.Type),
			zap.Error(err),
		)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "event processing failed",
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"received": true,
		"handled":  handled,
	})
}

func (wc *WebhookController) recordAudit(event *payments.Event, payload []byte) *models.WebhookEvent {
	created, stored, err := wc.events.CreateIfNotExists(&models.WebhookEvent{
		Provider:        payments.ProviderStripe,
		ProviderEventID: event.ID,
		EventType:       event.Type,
		PayloadJSON:     string(payload),
	})
	if err != nil {
		wc.log.Error("webhook audit write failed",
			zap.String("event_id", event.ID),
			zap.Error(err),
		)
		return nil
	}
	if !created {
		wc.log.Info("duplicate webhook delivery",
			zap.String("event_id", event.ID),
			zap.String("event_type", event.Type),
		)
	}
	return stored
}
