package payments

import (
	"context"

	"github.com/CourseForgeHQ/CourseForge/app/models"
	"github.com/stripe/stripe-go/v79"
)

// UserStore is the slice of the user repository the handlers need.
type UserStore interface {
	GetByEmail(email string) (*models.User, error)
	GetOrCreateByEmail(user *models.User) (*models.User, bool, error)
	Update(user *models.User) error
}

// LeadStore is the slice of the lead repository the handlers need.
type LeadStore interface {
	GetByEmail(email string) (*models.Lead, error)
	Update(lead *models.Lead) error
}

// PurchaseStore is the append-only purchase ledger as seen by handlers.
type PurchaseStore interface {
	Create(record *models.PurchaseRecord) error
	ExistsByIdempotencyKey(userID uint, productID, key string) (bool, error)
}

// EmailLogStore records email send attempts.
type EmailLogStore interface {
	Create(entry *models.EmailLog) error
}

// CheckoutClient is the payment-provider surface the checkout handler needs:
// session retrieval and line items with product metadata expanded.
type CheckoutClient interface {
	RetrieveSession(ctx context.Context, sessionID string) (*stripe.CheckoutSession, error)
	ListLineItems(ctx context.Context, sessionID string) ([]*stripe.LineItem, error)
}
