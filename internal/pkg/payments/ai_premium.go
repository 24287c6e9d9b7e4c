package payments

import (
	"context"

	"github.com/CourseForgeHQ/CourseForge/app/models"
	"github.com/CourseForgeHQ/CourseForge/internal/pkg/mail"
	"go.uber.org/zap"
)

// Credits granted per AI premium purchase.
const aiPremiumCredits = 30

// AIPremiumPurchaseHandler fulfills the ai_premium product: grants AI
// credits, records the purchase and sends a confirmation email.
type AIPremiumPurchaseHandler struct {
	BaseHandler
	purchaseFlow
}

// NewAIPremiumPurchaseHandler wires the ai_premium checkout handler.
func NewAIPremiumPurchaseHandler(
	users UserStore,
	purchases PurchaseStore,
	emailLogs EmailLogStore,
	mailer mail.Mailer,
	log *zap.Logger,
) *AIPremiumPurchaseHandler {
	return &AIPremiumPurchaseHandler{
		BaseHandler: NewBaseHandler("AIPremiumPurchase", "checkout.session.completed", log),
		purchaseFlow: purchaseFlow{
			users:     users,
			purchases: purchases,
			emailLogs: emailLogs,
			mailer:    mailer,
		},
	}
}

// CanHandle claims only checkout sessions for the ai_premium product.
func (h *AIPremiumPurchaseHandler) CanHandle(event *Event) bool {
	return event.ProductSlug() == models.ProductAIPremium
}

func (h *AIPremiumPurchaseHandler) Handle(ctx context.Context, event *Event) error {
	result, err := h.fulfill(ctx, h.Logger(), event, models.ProductAIPremium,
		func(user *models.User, record *models.PurchaseRecord) {
			user.AICredits += aiPremiumCredits
			record.CreditsGranted = aiPremiumCredits
		})
	if err != nil {
		return err
	}
	if result.alreadyRecorded {
		return nil
	}

	h.sendReceipt(ctx, h.Logger(), result.user, aiPremiumEmail(result.user))
	return nil
}
