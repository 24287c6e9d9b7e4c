package payments

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/CourseForgeHQ/CourseForge/app/models"
	"github.com/CourseForgeHQ/CourseForge/internal/pkg/alerts"
	"github.com/CourseForgeHQ/CourseForge/internal/pkg/logger"
	"github.com/CourseForgeHQ/CourseForge/internal/pkg/mail"
	"github.com/stripe/stripe-go/v79"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ErrMissingCustomerEmail means a checkout session arrived without a customer
// email. Email is the correlation key between the payment and local state, so
// the delivery cannot be processed.
var ErrMissingCustomerEmail = errors.New("payments: checkout session has no customer email")

// Bonus points granted per purchased coaching session. A dedicated
// session-credit ledger does not exist yet; this generic grant stands in
// until it does.
const bonusPointsPerSession = 100

// CheckoutCompletedHandler is the generic fulfillment path for
// checkout.session.completed: resolve the purchased tier from product
// metadata, upgrade or lazily create the user, convert the matching lead and
// send a confirmation email. Product-slug specific purchases are claimed by
// guarded handlers before this one runs.
type CheckoutCompletedHandler struct {
	BaseHandler
	users     UserStore
	leads     LeadStore
	emailLogs EmailLogStore
	checkout  CheckoutClient
	mailer    mail.Mailer
	alerter   alerts.Alerter
	resetBase string
}

// NewCheckoutCompletedHandler wires the generic checkout fulfillment handler.
// resetBase is the public URL prefix for password-reset links included in
// welcome emails for lazily created accounts.
func NewCheckoutCompletedHandler(
	users UserStore,
	leads LeadStore,
	emailLogs EmailLogStore,
	checkout CheckoutClient,
	mailer mail.Mailer,
	alerter alerts.Alerter,
	resetBase string,
	log *zap.Logger,
) *CheckoutCompletedHandler {
	return &CheckoutCompletedHandler{
		BaseHandler: NewBaseHandler("CheckoutCompleted", "checkout.session.completed", log),
		users:       users,
		leads:       leads,
		emailLogs:   emailLogs,
		checkout:    checkout,
		mailer:      mailer,
		alerter:     alerter,
		resetBase:   resetBase,
	}
}

func (h *CheckoutCompletedHandler) Handle(ctx context.Context, event *Event) error {
	err := h.fulfill(ctx, event)
	if err != nil {
		// Fulfillment failures need human eyes in addition to the provider's
		// retry loop: money changed hands and local state may be behind.
		h.alerter.AlertCriticalError(ctx, err, "Checkout fulfillment failed", map[string]string{
			"event_id":   event.ID,
			"event_type": event.Type,
		})
	}
	return err
}

func (h *CheckoutCompletedHandler) fulfill(ctx context.Context, event *Event) error {
	session, err := event.CheckoutSession()
	if err != nil {
		return err
	}

	email := customerEmail(session)
	if email == "" {
		return fmt.Errorf("%w: session %s", ErrMissingCustomerEmail, session.ID)
	}

	items, err := h.checkout.ListLineItems(ctx, session.ID)
	if err != nil {
		return err
	}

	resolution := ResolveTier(MergeProductMetadata(session, items))
	if resolution.Source == TierSourceUnrecognized {
		h.Logger().Warn("unrecognized product metadata, defaulting to basic tier",
			zap.String("session_id", session.ID),
			zap.String("event_id", event.ID),
		)
	}

	lead, err := h.findLead(email)
	if err != nil {
		return err
	}

	user, created, err := h.upsertUser(email, session, resolution)
	if err != nil {
		return err
	}

	if lead != nil && lead.MarkConverted() {
		if err := h.leads.Update(lead); err != nil {
			return fmt.Errorf("convert lead %d: %w", lead.ID, err)
		}
	}

	if resolution.SessionsToCredit > 0 {
		user.BonusPoints += resolution.SessionsToCredit * bonusPointsPerSession
		if err := h.users.Update(user); err != nil {
			return fmt.Errorf("credit sessions for user %d: %w", user.ID, err)
		}
	}

	h.Logger().Info("checkout payment fulfilled",
		zap.String("session_id", session.ID),
		zap.String("event_id", event.ID),
		zap.String("customer_email", logger.RedactEmail(email)),
		zap.Uint("user_id", user.ID),
		zap.Bool("user_created", created),
		zap.String("tier", user.Tier),
		zap.Int("sessions_credited", resolution.SessionsToCredit),
		zap.Int64("amount_total", session.AmountTotal),
	)

	// Fulfillment is authoritative at this point; an email outage must not
	// push the whole delivery back into the provider's retry loop.
	h.sendConfirmation(ctx, user, created)

	return nil
}

func (h *CheckoutCompletedHandler) findLead(email string) (*models.Lead, error) {
	lead, err := h.leads.GetByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("look up lead by email: %w", err)
	}
	return lead, nil
}

// upsertUser takes the upgrade path for existing users and lazily creates an
// account otherwise. Tier moves are monotone: an existing user's tier only
// changes when the purchased tier strictly outranks it.
func (h *CheckoutCompletedHandler) upsertUser(email string, session *stripe.CheckoutSession, res TierResolution) (*models.User, bool, error) {
	candidate, err := h.newCustomerUser(email, session, res)
	if err != nil {
		return nil, false, err
	}

	user, created, err := h.users.GetOrCreateByEmail(candidate)
	if err != nil {
		return nil, false, fmt.Errorf("get or create user by email: %w", err)
	}
	if created {
		return user, true, nil
	}

	changed := false
	if user.IsUpgrade(res.Tier) {
		h.Logger().Info("upgrading user tier",
			zap.Uint("user_id", user.ID),
			zap.String("from", user.Tier),
			zap.String("to", res.Tier),
		)
		user.Tier = res.Tier
		changed = true
	}
	if user.PaymentStatus != res.PaymentStatus {
		user.PaymentStatus = res.PaymentStatus
		changed = true
	}
	if changed {
		if err := h.users.Update(user); err != nil {
			return nil, false, fmt.Errorf("update user %d: %w", user.ID, err)
		}
	}
	return user, false, nil
}

// newCustomerUser builds the account created on first purchase: throwaway
// random password, auto-verified email (completing payment proves control of
// the address) and a reset token so the welcome email can link to a
// password-set page.
func (h *CheckoutCompletedHandler) newCustomerUser(email string, session *stripe.CheckoutSession, res TierResolution) (*models.User, error) {
	fullName := ""
	if session.CustomerDetails != nil {
		fullName = session.CustomerDetails.Name
	}

	password, err := randomPassword()
	if err != nil {
		return nil, err
	}

	user, err := models.CreateUser(fullName, email, password)
	if err != nil {
		return nil, fmt.Errorf("build user for %s: %w", logger.RedactEmail(email), err)
	}
	user.EmailVerified = true
	user.Tier = res.Tier
	user.PaymentStatus = res.PaymentStatus
	if err := user.GenerateResetToken(); err != nil {
		return nil, err
	}
	return user, nil
}

func (h *CheckoutCompletedHandler) sendConfirmation(ctx context.Context, user *models.User, created bool) {
	emailType := models.EmailTypePurchaseConfirmation
	var msg mail.Message
	if created {
		emailType = models.EmailTypeWelcome
		msg = welcomeEmail(user, h.resetBase)
	} else {
		msg = tierConfirmationEmail(user)
	}

	entry := &models.EmailLog{
		UserID:         &user.ID,
		EmailType:      emailType,
		RecipientEmail: user.Email,
		Status:         models.EmailStatusSent,
	}

	messageID, err := h.mailer.Send(ctx, msg)
	if err != nil {
		h.Logger().Error("confirmation email failed",
			zap.Uint("user_id", user.ID),
			zap.String("email_type", emailType),
			zap.Error(err),
		)
		entry.Status = models.EmailStatusFailed
		entry.ErrorMessage = err.Error()
	}
	entry.ProviderMessageID = messageID

	if err := h.emailLogs.Create(entry); err != nil {
		h.Logger().Error("email log write failed", zap.Uint("user_id", user.ID), zap.Error(err))
	}
}

func customerEmail(session *stripe.CheckoutSession) string {
	if session.CustomerDetails != nil && session.CustomerDetails.Email != "" {
		return models.NormalizeEmail(session.CustomerDetails.Email)
	}
	return models.NormalizeEmail(session.CustomerEmail)
}

func randomPassword() (string, error) {
	b := make([]byte, 24)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
