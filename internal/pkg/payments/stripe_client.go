package payments

import (
	"context"
	"fmt"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/checkout/session"
)

// StripeCheckoutClient implements CheckoutClient over the Stripe API.
type StripeCheckoutClient struct {
	sessions *session.Client
}

// NewStripeCheckoutClient builds a checkout client with its own API key so
// it does not depend on the stripe-go package-level singleton.
func NewStripeCheckoutClient(apiKey string) *StripeCheckoutClient {
	return &StripeCheckoutClient{
		sessions: &session.Client{
			B:   stripe.GetBackend(stripe.APIBackend),
			Key: apiKey,
		},
	}
}

// RetrieveSession fetches a checkout session by id.
func (c *StripeCheckoutClient) RetrieveSession(ctx context.Context, sessionID string) (*stripe.CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx

	s, err := c.sessions.Get(sessionID, params)
	if err != nil {
		return nil, fmt.Errorf("retrieve checkout session %s: %w", sessionID, err)
	}
	return s, nil
}

// ListLineItems fetches the session's line items with the product expanded so
// handlers can read the catalog metadata convention.
func (c *StripeCheckoutClient) ListLineItems(ctx context.Context, sessionID string) ([]*stripe.LineItem, error) {
	params := &stripe.CheckoutSessionListLineItemsParams{
		Session: stripe.String(sessionID),
	}
	params.Context = ctx
	params.AddExpand("data.price.product")

	var items []*stripe.LineItem
	iter := c.sessions.ListLineItems(params)
	for iter.Next() {
		items = append(items, iter.LineItem())
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("list line items for session %s: %w", sessionID, err)
	}
	return items, nil
}
