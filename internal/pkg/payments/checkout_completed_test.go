package payments

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v79"
	"go.uber.org/zap"

	"github.com/CourseForgeHQ/CourseForge/app/models"
)

type checkoutFixture struct {
	users    *fakeUserStore
	leads    *fakeLeadStore
	emails   *fakeEmailLogStore
	checkout *fakeCheckoutClient
	mailer   *fakeMailer
	alerter  *fakeAlerter
	handler  *CheckoutCompletedHandler
}

func newCheckoutFixture(users *fakeUserStore, leads *fakeLeadStore, checkout *fakeCheckoutClient) *checkoutFixture {
	f := &checkoutFixture{
		users:    users,
		leads:    leads,
		emails:   &fakeEmailLogStore{},
		checkout: checkout,
		mailer:   &fakeMailer{},
		alerter:  &fakeAlerter{},
	}
	f.handler = NewCheckoutCompletedHandler(
		f.users, f.leads, f.emails, f.checkout, f.mailer, f.alerter,
		"https://courseforge.test", zap.NewNop(),
	)
	return f
}

func TestCheckoutCreatesUserAndConvertsLead(t *testing.T) {
	lead := &models.Lead{ID: 7, Email: "jane@example.com", Status: models.LeadStatusContacted}
	f := newCheckoutFixture(
		newFakeUserStore(),
		newFakeLeadStore(lead),
		&fakeCheckoutClient{items: []*stripe.LineItem{lineItemWithMetadata(map[string]string{
			"course_type":      "basic_course",
			"includes_lvl_ups": "true",
			"total_lvl_ups":    "3",
		})}},
	)

	event := checkoutEvent(t, "evt_1", sessionPayload("cs_1", "jane@example.com", nil))

	err := Execute(context.Background(), f.handler, event)
	require.NoError(t, err)

	user, err := f.users.GetByEmail("jane@example.com")
	require.NoError(t, err)
	assert.Equal(t, models.TierBasic, user.Tier)
	assert.Equal(t, models.PaymentStatusPaid, user.PaymentStatus)
	assert.True(t, user.EmailVerified, "paying proves control of the address")
	assert.NotEmpty(t, user.ResetToken, "welcome email needs a password-set link")
	assert.Equal(t, 300, user.BonusPoints)

	assert.Equal(t, models.LeadStatusConverted, lead.Status)
	require.NotNil(t, lead.ConvertedAt)

	require.Len(t, f.mailer.sent, 1)
	assert.Contains(t, f.mailer.sent[0].Subject, "Welcome")
	require.Len(t, f.emails.entries, 1)
	assert.Equal(t, models.EmailTypeWelcome, f.emails.entries[0].EmailType)
	assert.Empty(t, f.alerter.titles)
}

func TestCheckoutUpgradesExistingUserToVIP(t *testing.T) {
	existing := &models.User{
		ID:            3,
		Email:         "jane@example.com",
		Tier:          models.TierPremium,
		PaymentStatus: models.PaymentStatusPaid,
	}
	f := newCheckoutFixture(
		newFakeUserStore(existing),
		newFakeLeadStore(),
		&fakeCheckoutClient{items: []*stripe.LineItem{lineItemWithMetadata(map[string]string{
			"tier":          "premium_vip",
			"total_lvl_ups": "8",
		})}},
	)

	event := checkoutEvent(t, "evt_2", sessionPayload("cs_2", "jane@example.com", nil))

	err := Execute(context.Background(), f.handler, event)
	require.NoError(t, err)

	assert.Equal(t, models.TierVIP, existing.Tier)
	assert.Equal(t, 800, existing.BonusPoints)

	require.Len(t, f.mailer.sent, 1)
	require.Len(t, f.emails.entries, 1)
	assert.Equal(t, models.EmailTypePurchaseConfirmation, f.emails.entries[0].EmailType)
}

func TestCheckoutNeverDowngradesTier(t *testing.T) {
	existing := &models.User{
		ID:            3,
		Email:         "jane@example.com",
		Tier:          models.TierVIP,
		PaymentStatus: models.PaymentStatusPaid,
	}
	f := newCheckoutFixture(
		newFakeUserStore(existing),
		newFakeLeadStore(),
		&fakeCheckoutClient{items: []*stripe.LineItem{lineItemWithMetadata(map[string]string{"tier": "premium"})}},
	)

	event := checkoutEvent(t, "evt_3", sessionPayload("cs_3", "jane@example.com", nil))

	err := Execute(context.Background(), f.handler, event)
	require.NoError(t, err)

	assert.Equal(t, models.TierVIP, existing.Tier, "replayed lower-tier purchases keep the higher tier")
}

func TestCheckoutMissingEmailFailsAndAlerts(t *testing.T) {
	f := newCheckoutFixture(newFakeUserStore(), newFakeLeadStore(), &fakeCheckoutClient{})

	payload := sessionPayload("cs_4", "", nil)
	delete(payload, "customer_details")
	event := checkoutEvent(t, "evt_4", payload)

	err := Execute(context.Background(), f.handler, event)

	assert.ErrorIs(t, err, ErrMissingCustomerEmail)
	require.Len(t, f.alerter.titles, 1)
	assert.Empty(t, f.mailer.sent)
}

func TestCheckoutEmailFailureDoesNotFailFulfillment(t *testing.T) {
	f := newCheckoutFixture(
		newFakeUserStore(),
		newFakeLeadStore(),
		&fakeCheckoutClient{items: []*stripe.LineItem{lineItemWithMetadata(map[string]string{"tier": "premium"})}},
	)
	f.mailer.err = assert.AnError

	event := checkoutEvent(t, "evt_5", sessionPayload("cs_5", "jane@example.com", nil))

	err := Execute(context.Background(), f.handler, event)
	require.NoError(t, err, "email outage must not push the event back to the provider")

	require.Len(t, f.emails.entries, 1)
	assert.Equal(t, models.EmailStatusFailed, f.emails.entries[0].Status)
	assert.NotEmpty(t, f.emails.entries[0].ErrorMessage)
}
