package payment

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"
)

// StripeGateway implements Gateway on top of the Stripe API.
type StripeGateway struct {
	api           *client.API
	webhookSecret string
}

// NewStripeGateway creates a gateway bound to the given Stripe secret key.
func NewStripeGateway(secretKey, webhookSecret string) *StripeGateway {
	api := &client.API{}
	api.Init(secretKey, nil)
	return &StripeGateway{
		api:           api,
		webhookSecret: webhookSecret,
	}
}

// CreateIntent creates and immediately confirms a payment intent.
func (g *StripeGateway) CreateIntent(ctx context.Context, params CreateIntentParams) (*Intent, error) {
	piParams := &stripe.PaymentIntentParams{
		Amount:        stripe.Int64(params.Amount),
		Currency:      stripe.String(params.Currency),
		PaymentMethod: stripe.String(params.PaymentMethodID),
		Confirm:       stripe.Bool(true),
	}
	piParams.Context = ctx
	for k, v := range params.Metadata {
		piParams.AddMetadata(k, v)
	}

	pi, err := g.api.PaymentIntents.New(piParams)
	if err != nil {
		return nil, fmt.Errorf("failed to create payment intent: %w", err)
	}

	intent := &Intent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		Status:       IntentStatusFailed,
	}
	if pi.Status == stripe.PaymentIntentStatusSucceeded {
		intent.Status = IntentStatusSucceeded
	} else if pi.LastPaymentError != nil {
		intent.FailureMessage = pi.LastPaymentError.Msg
	}
	return intent, nil
}

// AttachOrderID records the order's identity on the intent's metadata.
func (g *StripeGateway) AttachOrderID(ctx context.Context, intentID, orderID string) error {
	piParams := &stripe.PaymentIntentParams{}
	piParams.Context = ctx
	piParams.AddMetadata("order_id", orderID)
	if _, err := g.api.PaymentIntents.Update(intentID, piParams); err != nil {
		return fmt.Errorf("failed to update payment intent %s metadata: %w", intentID, err)
	}
	return nil
}

// ParseWebhook verifies the Stripe signature header and normalizes the event.
func (g *StripeGateway) ParseWebhook(payload []byte, signature string) (*Event, error) {
	event, err := webhook.ConstructEvent(payload, signature, g.webhookSecret)
	if err != nil {
		return nil, fmt.Errorf("webhook signature verification failed: %w", err)
	}

	eventType := EventType(event.Type)
	switch eventType {
	case EventPaymentSucceeded, EventPaymentFailed:
	default:
		// Events the shop does not react to come back typed but with no
		// intent ID; callers treat them as acknowledged no-ops.
		return &Event{Type: eventType}, nil
	}

	var pi stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
		return nil, fmt.Errorf("failed to decode payment intent from webhook: %w", err)
	}
	return &Event{Type: eventType, IntentID: pi.ID}, nil
}
