package payments

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/stripe/stripe-go/v79"
)

// Provider name recorded on audit rows.
const ProviderStripe = "stripe"

// Event is a single webhook delivery after signature verification. It is
// immutable once received: identity is the provider-assigned id, used for
// audit logging, and the payload is the raw event object.
type Event struct {
	ID         string
	Type       string
	Payload    json.RawMessage
	ReceivedAt time.Time
}

// FromStripeEvent converts a verified stripe event into the dispatch shape.
func FromStripeEvent(ev *stripe.Event) *Event {
	return &Event{
		ID:         ev.ID,
		Type:       string(ev.Type),
		Payload:    json.RawMessage(ev.Data.Raw),
		ReceivedAt: time.Unix(ev.Created, 0),
	}
}

// CheckoutSession decodes the payload as a checkout session object.
func (e *Event) CheckoutSession() (*stripe.CheckoutSession, error) {
	var session stripe.CheckoutSession
	if err := json.Unmarshal(e.Payload, &session); err != nil {
		return nil, fmt.Errorf("parse checkout session from event %s: %w", e.ID, err)
	}
	return &session, nil
}

// PaymentIntent decodes the payload as a payment intent object.
func (e *Event) PaymentIntent() (*stripe.PaymentIntent, error) {
	var intent stripe.PaymentIntent
	if err := json.Unmarshal(e.Payload, &intent); err != nil {
		return nil, fmt.Errorf("parse payment intent from event %s: %w", e.ID, err)
	}
	return &intent, nil
}

// ProductSlug extracts metadata.product_slug from a checkout session payload.
// Returns "" when the payload does not parse or carries no slug; guards treat
// that as "not mine".
func (e *Event) ProductSlug() string {
	session, err := e.CheckoutSession()
	if err != nil {
		return ""
	}
	return session.Metadata["product_slug"]
}
