package payments

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/CourseForgeHQ/CourseForge/app/models"
)

type purchaseFixture struct {
	users     *fakeUserStore
	purchases *fakePurchaseStore
	emails    *fakeEmailLogStore
	mailer    *fakeMailer
}

func newPurchaseFixture(users *fakeUserStore) *purchaseFixture {
	return &purchaseFixture{
		users:     users,
		purchases: &fakePurchaseStore{},
		emails:    &fakeEmailLogStore{},
		mailer:    &fakeMailer{},
	}
}

func productEvent(t *testing.T, eventID, sessionID, slug string) *Event {
	t.Helper()
	return checkoutEvent(t, eventID, sessionPayload(sessionID, "jane@example.com", map[string]string{
		"product_slug": slug,
	}))
}

func TestProductGuardsClaimOnlyTheirSlug(t *testing.T) {
	f := newPurchaseFixture(newFakeUserStore())
	aiPremium := NewAIPremiumPurchaseHandler(f.users, f.purchases, f.emails, f.mailer, zap.NewNop())
	textbook := NewTextbookPurchaseHandler(f.users, f.purchases, f.emails, f.mailer, zap.NewNop())
	toolkit := NewToolkitPurchaseHandler(f.users, f.purchases, f.emails, f.mailer, zap.NewNop())

	event := productEvent(t, "evt_1", "cs_1", models.ProductAIPremium)
	assert.True(t, aiPremium.CanHandle(event))
	assert.False(t, textbook.CanHandle(event))
	assert.False(t, toolkit.CanHandle(event))

	noSlug := checkoutEvent(t, "evt_2", sessionPayload("cs_2", "jane@example.com", nil))
	assert.False(t, aiPremium.CanHandle(noSlug))

	garbage := &Event{ID: "evt_3", Type: "checkout.session.completed", Payload: json.RawMessage("{broken")}
	assert.False(t, aiPremium.CanHandle(garbage), "unparseable payloads are not claimed")
}

func TestAIPremiumGrantsCredits(t *testing.T) {
	existing := &models.User{ID: 5, Email: "jane@example.com", AICredits: 10}
	f := newPurchaseFixture(newFakeUserStore(existing))
	h := NewAIPremiumPurchaseHandler(f.users, f.purchases, f.emails, f.mailer, zap.NewNop())

	err := Execute(context.Background(), h, productEvent(t, "evt_1", "cs_1", models.ProductAIPremium))
	require.NoError(t, err)

	assert.Equal(t, 40, existing.AICredits)
	require.Len(t, f.purchases.records, 1)
	record := f.purchases.records[0]
	assert.Equal(t, models.ProductAIPremium, record.ProductID)
	assert.Equal(t, "pi_cs_1", record.IdempotencyKey, "payment intent id wins over session id")
	assert.Equal(t, 30, record.CreditsGranted)
	assert.Equal(t, int64(4900), record.AmountCents)
	require.Len(t, f.mailer.sent, 1)
	require.Len(t, f.emails.entries, 1)
}

func TestAIPremiumReplayIsIdempotent(t *testing.T) {
	existing := &models.User{ID: 5, Email: "jane@example.com"}
	f := newPurchaseFixture(newFakeUserStore(existing))
	h := NewAIPremiumPurchaseHandler(f.users, f.purchases, f.emails, f.mailer, zap.NewNop())

	require.NoError(t, Execute(context.Background(), h, productEvent(t, "evt_1", "cs_1", models.ProductAIPremium)))
	require.NoError(t, Execute(context.Background(), h, productEvent(t, "evt_1_redelivery", "cs_1", models.ProductAIPremium)))

	assert.Equal(t, 30, existing.AICredits, "replay must not double-grant")
	assert.Len(t, f.purchases.records, 1)
	assert.Len(t, f.mailer.sent, 1, "replay must not resend the receipt")
}

func TestAIPremiumCreatesAccountForUnknownBuyer(t *testing.T) {
	f := newPurchaseFixture(newFakeUserStore())
	h := NewAIPremiumPurchaseHandler(f.users, f.purchases, f.emails, f.mailer, zap.NewNop())

	err := Execute(context.Background(), h, productEvent(t, "evt_1", "cs_1", models.ProductAIPremium))
	require.NoError(t, err)

	user, err := f.users.GetByEmail("jane@example.com")
	require.NoError(t, err)
	assert.Equal(t, 30, user.AICredits)
	assert.Equal(t, models.PaymentStatusPaid, user.PaymentStatus)
	assert.True(t, user.EmailVerified)
}

func TestTextbookBumpsBasicToPremium(t *testing.T) {
	existing := &models.User{ID: 5, Email: "jane@example.com", Tier: models.TierBasic}
	f := newPurchaseFixture(newFakeUserStore(existing))
	h := NewTextbookPurchaseHandler(f.users, f.purchases, f.emails, f.mailer, zap.NewNop())

	err := Execute(context.Background(), h, productEvent(t, "evt_1", "cs_1", models.ProductTextbook))
	require.NoError(t, err)

	assert.Equal(t, models.TierPremium, existing.Tier)
	assert.Equal(t, int64(4900), existing.LifetimeSpendCents)
}

func TestTextbookKeepsVIPTier(t *testing.T) {
	existing := &models.User{ID: 5, Email: "jane@example.com", Tier: models.TierVIP}
	f := newPurchaseFixture(newFakeUserStore(existing))
	h := NewTextbookPurchaseHandler(f.users, f.purchases, f.emails, f.mailer, zap.NewNop())

	err := Execute(context.Background(), h, productEvent(t, "evt_1", "cs_1", models.ProductTextbook))
	require.NoError(t, err)

	assert.Equal(t, models.TierVIP, existing.Tier)
	assert.Equal(t, int64(4900), existing.LifetimeSpendCents, "spend still accrues for higher tiers")
}

func TestToolkitCountsRepeatPurchases(t *testing.T) {
	existing := &models.User{ID: 5, Email: "jane@example.com", ToolkitPurchases: 1}
	f := newPurchaseFixture(newFakeUserStore(existing))
	h := NewToolkitPurchaseHandler(f.users, f.purchases, f.emails, f.mailer, zap.NewNop())

	// Second toolkit purchase through a different checkout session.
	err := Execute(context.Background(), h, productEvent(t, "evt_1", "cs_9", models.ProductToolkit))
	require.NoError(t, err)

	assert.Equal(t, 2, existing.ToolkitPurchases)
	require.Len(t, f.purchases.records, 1)
	assert.Equal(t, models.ProductToolkit, f.purchases.records[0].ProductID)
}

func TestDefaultRegistryRoutesBySlug(t *testing.T) {
	users := newFakeUserStore()
	f := newPurchaseFixture(users)
	registry := NewDefaultRegistry(Deps{
		Users:     users,
		Leads:     newFakeLeadStore(),
		Purchases: f.purchases,
		EmailLogs: f.emails,
		Checkout:  &fakeCheckoutClient{},
		Mailer:    f.mailer,
		Alerter:   &fakeAlerter{},
		ResetBase: "https://courseforge.test",
		Logger:    zap.NewNop(),
	})

	assert.Equal(t, 5, registry.Count())

	handled, err := registry.Dispatch(context.Background(), productEvent(t, "evt_1", "cs_1", models.ProductToolkit))
	require.NoError(t, err)
	assert.True(t, handled)
	require.Len(t, f.purchases.records, 1)
	assert.Equal(t, models.ProductToolkit, f.purchases.records[0].ProductID, "slug handler wins over the generic fallback")

	handled, err = registry.Dispatch(context.Background(), &Event{ID: "evt_2", Type: "customer.subscription.deleted"})
	require.NoError(t, err)
	assert.False(t, handled)
}
