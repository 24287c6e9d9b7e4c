package payments

import (
	"context"

	"github.com/CourseForgeHQ/CourseForge/app/models"
	"github.com/CourseForgeHQ/CourseForge/internal/pkg/mail"
	"go.uber.org/zap"
)

// ToolkitPurchaseHandler fulfills the architecture-mastery-toolkit product:
// an idempotent ledger row plus a purchase counter increment.
type ToolkitPurchaseHandler struct {
	BaseHandler
	purchaseFlow
}

// NewToolkitPurchaseHandler wires the toolkit checkout handler.
func NewToolkitPurchaseHandler(
	users UserStore,
	purchases PurchaseStore,
	emailLogs EmailLogStore,
	mailer mail.Mailer,
	log *zap.Logger,
) *ToolkitPurchaseHandler {
	return &ToolkitPurchaseHandler{
		BaseHandler: NewBaseHandler("ToolkitPurchase", "checkout.session.completed", log),
		purchaseFlow: purchaseFlow{
			users:     users,
			purchases: purchases,
			emailLogs: emailLogs,
			mailer:    mailer,
		},
	}
}

// CanHandle claims only checkout sessions for the toolkit product.
func (h *ToolkitPurchaseHandler) CanHandle(event *Event) bool {
	return event.ProductSlug() == models.ProductToolkit
}

func (h *ToolkitPurchaseHandler) Handle(ctx context.Context, event *Event) error {
	result, err := h.fulfill(ctx, h.Logger(), event, models.ProductToolkit,
		func(user *models.User, record *models.PurchaseRecord) {
			user.ToolkitPurchases++
		})
	if err != nil {
		return err
	}
	if result.alreadyRecorded {
		return nil
	}

	h.sendReceipt(ctx, h.Logger(), result.user, toolkitEmail(result.user))
	return nil
}
