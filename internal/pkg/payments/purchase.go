package payments

import (
	"context"
	"fmt"

	"github.com/CourseForgeHQ/CourseForge/app/models"
	"github.com/CourseForgeHQ/CourseForge/internal/pkg/logger"
	"github.com/CourseForgeHQ/CourseForge/internal/pkg/mail"
	"github.com/stripe/stripe-go/v79"
	"go.uber.org/zap"
)

// purchaseFlow is the idempotent skeleton shared by the product-slug
// handlers: resolve or create the user, short-circuit on an existing ledger
// row for the same payment, otherwise record the purchase and apply the
// product-specific state change.
type purchaseFlow struct {
	users     UserStore
	purchases PurchaseStore
	emailLogs EmailLogStore
	mailer    mail.Mailer
}

// purchaseResult reports what fulfill did for one delivery.
type purchaseResult struct {
	user            *models.User
	record          *models.PurchaseRecord
	alreadyRecorded bool
}

// fulfill runs the shared skeleton. apply mutates the user and stamps
// credits on the record; it runs exactly once per idempotency key.
func (f *purchaseFlow) fulfill(
	ctx context.Context,
	log *zap.Logger,
	event *Event,
	productID string,
	apply func(user *models.User, record *models.PurchaseRecord),
) (*purchaseResult, error) {
	session, err := event.CheckoutSession()
	if err != nil {
		return nil, err
	}

	email := customerEmail(session)
	if email == "" {
		return nil, fmt.Errorf("%w: session %s", ErrMissingCustomerEmail, session.ID)
	}

	user, created, err := f.resolveUser(email, session)
	if err != nil {
		return nil, err
	}

	key := idempotencyKey(session)
	exists, err := f.purchases.ExistsByIdempotencyKey(user.ID, productID, key)
	if err != nil {
		return nil, fmt.Errorf("check purchase ledger: %w", err)
	}
	if exists {
		log.Info("Purchase already recorded (idempotent)",
			zap.Uint("user_id", user.ID),
			zap.String("product_id", productID),
			zap.String("idempotency_key", key),
			zap.String("event_id", event.ID),
		)
		return &purchaseResult{user: user, alreadyRecorded: true}, nil
	}

	record := &models.PurchaseRecord{
		UserID:         user.ID,
		ProductID:      productID,
		IdempotencyKey: key,
		AmountCents:    session.AmountTotal,
		Currency:       string(session.Currency),
		Status:         models.PurchaseStatusCompleted,
	}
	apply(user, record)

	if err := f.purchases.Create(record); err != nil {
		return nil, fmt.Errorf("record purchase: %w", err)
	}
	if err := f.users.Update(user); err != nil {
		return nil, fmt.Errorf("apply purchase to user %d: %w", user.ID, err)
	}

	log.Info("purchase recorded",
		zap.Uint("user_id", user.ID),
		zap.Bool("user_created", created),
		zap.String("product_id", productID),
		zap.String("idempotency_key", key),
		zap.Int64("amount_cents", record.AmountCents),
		zap.Int("credits_granted", record.CreditsGranted),
	)

	return &purchaseResult{user: user, record: record}, nil
}

// resolveUser finds the buyer by email or lazily creates a paid account the
// same way the generic checkout handler does.
func (f *purchaseFlow) resolveUser(email string, session *stripe.CheckoutSession) (*models.User, bool, error) {
	fullName := ""
	if session.CustomerDetails != nil {
		fullName = session.CustomerDetails.Name
	}

	password, err := randomPassword()
	if err != nil {
		return nil, false, err
	}

	candidate, err := models.CreateUser(fullName, email, password)
	if err != nil {
		return nil, false, fmt.Errorf("build user for %s: %w", logger.RedactEmail(email), err)
	}
	candidate.EmailVerified = true
	candidate.PaymentStatus = models.PaymentStatusPaid
	if err := candidate.GenerateResetToken(); err != nil {
		return nil, false, err
	}

	user, created, err := f.users.GetOrCreateByEmail(candidate)
	if err != nil {
		return nil, false, fmt.Errorf("get or create user by email: %w", err)
	}
	return user, created, nil
}

// sendReceipt delivers the product confirmation email best-effort and writes
// the audit row either way. Failures are logged, never propagated: the
// purchase is already committed.
func (f *purchaseFlow) sendReceipt(ctx context.Context, log *zap.Logger, user *models.User, msg mail.Message) {
	entry := &models.EmailLog{
		UserID:         &user.ID,
		EmailType:      models.EmailTypePurchaseConfirmation,
		RecipientEmail: user.Email,
		Status:         models.EmailStatusSent,
	}

	messageID, err := f.mailer.Send(ctx, msg)
	if err != nil {
		log.Error("purchase confirmation email failed",
			zap.Uint("user_id", user.ID),
			zap.Error(err),
		)
		entry.Status = models.EmailStatusFailed
		entry.ErrorMessage = err.Error()
	}
	entry.ProviderMessageID = messageID

	if err := f.emailLogs.Create(entry); err != nil {
		log.Error("email log write failed", zap.Uint("user_id", user.ID), zap.Error(err))
	}
}

// idempotencyKey picks the payment intent id when present, falling back to
// the session id. Both are stable across provider redeliveries.
func idempotencyKey(session *stripe.CheckoutSession) string {
	if session.PaymentIntent != nil && session.PaymentIntent.ID != "" {
		return session.PaymentIntent.ID
	}
	return session.ID
}
