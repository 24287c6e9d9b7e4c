package payments

import (
	"context"

	"github.com/CourseForgeHQ/CourseForge/app/models"
	"github.com/CourseForgeHQ/CourseForge/internal/pkg/mail"
	"go.uber.org/zap"
)

// TextbookPurchaseHandler fulfills the textbook product: tracks lifetime
// spend, bumps basic buyers to premium, records the purchase and sends a
// confirmation email.
type TextbookPurchaseHandler struct {
	BaseHandler
	purchaseFlow
}

// NewTextbookPurchaseHandler wires the textbook checkout handler.
func NewTextbookPurchaseHandler(
	users UserStore,
	purchases PurchaseStore,
	emailLogs EmailLogStore,
	mailer mail.Mailer,
	log *zap.Logger,
) *TextbookPurchaseHandler {
	return &TextbookPurchaseHandler{
		BaseHandler: NewBaseHandler("TextbookPurchase", "checkout.session.completed", log),
		purchaseFlow: purchaseFlow{
			users:     users,
			purchases: purchases,
			emailLogs: emailLogs,
			mailer:    mailer,
		},
	}
}

// CanHandle claims only checkout sessions for the textbook product.
func (h *TextbookPurchaseHandler) CanHandle(event *Event) bool {
	return event.ProductSlug() == models.ProductTextbook
}

func (h *TextbookPurchaseHandler) Handle(ctx context.Context, event *Event) error {
	result, err := h.fulfill(ctx, h.Logger(), event, models.ProductTextbook,
		func(user *models.User, record *models.PurchaseRecord) {
			user.LifetimeSpendCents += record.AmountCents
			// Tier stays monotone: textbook buyers on basic move up to
			// premium, existing premium/vip users keep their tier.
			if user.IsUpgrade(models.TierPremium) {
				user.Tier = models.TierPremium
			}
		})
	if err != nil {
		return err
	}
	if result.alreadyRecorded {
		return nil
	}

	h.sendReceipt(ctx, h.Logger(), result.user, textbookEmail(result.user))
	return nil
}
