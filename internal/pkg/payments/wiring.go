package payments

import (
	"github.com/CourseForgeHQ/CourseForge/internal/pkg/alerts"
	"github.com/CourseForgeHQ/CourseForge/internal/pkg/mail"
	"go.uber.org/zap"
)

// Deps bundles everything the production handler set needs. All fields are
// interfaces so tests can substitute fakes.
type Deps struct {
	Users     UserStore
	Leads     LeadStore
	Purchases PurchaseStore
	EmailLogs EmailLogStore
	Checkout  CheckoutClient
	Mailer    mail.Mailer
	Alerter   alerts.Alerter
	// ResetBase is the public URL prefix for password-reset links.
	ResetBase string
	Logger    *zap.Logger
}

// NewDefaultRegistry builds a registry pre-populated with the known handler
// set. Order matters: the product-slug handlers register first so their
// guards are evaluated before the generic checkout fallback.
func NewDefaultRegistry(deps Deps) *Registry {
	registry := NewRegistry(deps.Logger)
	registry.RegisterAll([]Handler{
		NewPaymentSucceededHandler(deps.Logger),
		NewAIPremiumPurchaseHandler(deps.Users, deps.Purchases, deps.EmailLogs, deps.Mailer, deps.Logger),
		NewTextbookPurchaseHandler(deps.Users, deps.Purchases, deps.EmailLogs, deps.Mailer, deps.Logger),
		NewToolkitPurchaseHandler(deps.Users, deps.Purchases, deps.EmailLogs, deps.Mailer, deps.Logger),
		NewCheckoutCompletedHandler(deps.Users, deps.Leads, deps.EmailLogs, deps.Checkout, deps.Mailer, deps.Alerter, deps.ResetBase, deps.Logger),
	})
	return registry
}
