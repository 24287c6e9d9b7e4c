package payments

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stripe/stripe-go/v79"
	"gorm.io/gorm"

	"github.com/CourseForgeHQ/CourseForge/app/models"
	"github.com/CourseForgeHQ/CourseForge/internal/pkg/mail"
)

type fakeUserStore struct {
	byEmail map[string]*models.User
	nextID  uint
	updates int
}

func newFakeUserStore(users ...*models.User) *fakeUserStore {
	s := &fakeUserStore{byEmail: make(map[string]*models.User), nextID: 1}
	for _, u := range users {
		if u.ID == 0 {
			u.ID = s.nextID
		}
		if u.ID >= s.nextID {
			s.nextID = u.ID + 1
		}
		s.byEmail[u.Email] = u
	}
	return s
}

func (s *fakeUserStore) GetByEmail(email string) (*models.User, error) {
	if u, ok := s.byEmail[email]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *fakeUserStore) GetOrCreateByEmail(user *models.User) (*models.User, bool, error) {
	if existing, ok := s.byEmail[user.Email]; ok {
		return existing, false, nil
	}
	user.ID = s.nextID
	s.nextID++
	s.byEmail[user.Email] = user
	return user, true, nil
}

func (s *fakeUserStore) Update(user *models.User) error {
	s.updates++
	s.byEmail[user.Email] = user
	return nil
}

type fakeLeadStore struct {
	byEmail map[string]*models.Lead
	updated []*models.Lead
}

func newFakeLeadStore(leads ...*models.Lead) *fakeLeadStore {
	s := &fakeLeadStore{byEmail: make(map[string]*models.Lead)}
	for _, l := range leads {
		s.byEmail[l.Email] = l
	}
	return s
}

func (s *fakeLeadStore) GetByEmail(email string) (*models.Lead, error) {
	if l, ok := s.byEmail[email]; ok {
		return l, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *fakeLeadStore) Update(lead *models.Lead) error {
	s.updated = append(s.updated, lead)
	return nil
}

type fakePurchaseStore struct {
	records []*models.PurchaseRecord
	err     error
}

func purchaseKey(userID uint, productID, key string) string {
	return fmt.Sprintf("%d|%s|%s", userID, productID, key)
}

func (s *fakePurchaseStore) Create(record *models.PurchaseRecord) error {
	if s.err != nil {
		return s.err
	}
	s.records = append(s.records, record)
	return nil
}

func (s *fakePurchaseStore) ExistsByIdempotencyKey(userID uint, productID, key string) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	want := purchaseKey(userID, productID, key)
	for _, r := range s.records {
		if purchaseKey(r.UserID, r.ProductID, r.IdempotencyKey) == want {
			return true, nil
		}
	}
	return false, nil
}

type fakeEmailLogStore struct {
	entries []*models.EmailLog
}

func (s *fakeEmailLogStore) Create(entry *models.EmailLog) error {
	s.entries = append(s.entries, entry)
	return nil
}

type fakeMailer struct {
	sent []mail.Message
	err  error
}

func (m *fakeMailer) Send(ctx context.Context, msg mail.Message) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.sent = append(m.sent, msg)
	return fmt.Sprintf("msg-%d", len(m.sent)), nil
}

type fakeAlerter struct {
	titles []string
}

func (a *fakeAlerter) AlertCriticalError(ctx context.Context, err error, title string, fields map[string]string) {
	a.titles = append(a.titles, title)
}

type fakeCheckoutClient struct {
	items []*stripe.LineItem
	err   error
}

func (c *fakeCheckoutClient) RetrieveSession(ctx context.Context, sessionID string) (*stripe.CheckoutSession, error) {
	return nil, c.err
}

func (c *fakeCheckoutClient) ListLineItems(ctx context.Context, sessionID string) ([]*stripe.LineItem, error) {
	if c.err != nil {
		return nil, c.err
	}
	return c.items, nil
}

// lineItemWithMetadata builds a line item whose expanded product carries the
// given catalog metadata.
func lineItemWithMetadata(md map[string]string) *stripe.LineItem {
	return &stripe.LineItem{
		Price: &stripe.Price{
			Product: &stripe.Product{Metadata: md},
		},
	}
}

// checkoutEvent builds a checkout.session.completed event around a session
// payload assembled from primitives, mirroring what the provider delivers.
func checkoutEvent(t *testing.T, eventID string, session map[string]any) *Event {
	t.Helper()
	payload, err := json.Marshal(session)
	if err != nil {
		t.Fatalf("marshal session payload: %v", err)
	}
	return &Event{
		ID:      eventID,
		Type:    "checkout.session.completed",
		Payload: payload,
	}
}

func sessionPayload(sessionID, email string, metadata map[string]string) map[string]any {
	return map[string]any{
		"id":           sessionID,
		"amount_total": 4900,
		"currency":     "usd",
		"customer_details": map[string]any{
			"email": email,
			"name":  "Jane Doe",
		},
		"payment_intent": map[string]any{"id": "pi_" + sessionID},
		"metadata":       metadata,
	}
}
