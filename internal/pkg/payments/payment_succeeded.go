package payments

import (
	"context"

	"github.com/CourseForgeHQ/CourseForge/internal/pkg/logger"
	"go.uber.org/zap"
)

// PaymentSucceededHandler observes payment_intent.succeeded events. It logs
// payment details and deliberately mutates nothing: the provider may deliver
// this event and checkout.session.completed in either order, so all
// fulfillment happens on checkout completion.
type PaymentSucceededHandler struct {
	BaseHandler
}

// NewPaymentSucceededHandler creates the log-only payment observer.
func NewPaymentSucceededHandler(log *zap.Logger) *PaymentSucceededHandler {
	return &PaymentSucceededHandler{
		BaseHandler: NewBaseHandler("PaymentSucceeded", "payment_intent.succeeded", log),
	}
}

func (h *PaymentSucceededHandler) Handle(ctx context.Context, event *Event) error {
	intent, err := event.PaymentIntent()
	if err != nil {
		return err
	}

	h.Logger().Info("payment intent succeeded",
		zap.String("payment_intent_id", intent.ID),
		zap.Int64("amount", intent.Amount),
		zap.String("currency", string(intent.Currency)),
		zap.String("receipt_email", logger.RedactEmail(intent.ReceiptEmail)),
		zap.String("event_id", event.ID),
	)
	return nil
}
