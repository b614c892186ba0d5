// Package payment abstracts the external card-payment provider so that the
// order workflow can run against a real gateway in production and a fake in
// tests, and so that a deployment without payment credentials simply has no
// gateway (cash-on-delivery keeps working).
package payment

import "context"

// IntentStatus is the provider-reported state of a payment attempt.
type IntentStatus string

const (
	IntentStatusSucceeded IntentStatus = "succeeded"
	IntentStatusFailed    IntentStatus = "failed"
)

// Intent is the provider's handle for a single payment attempt.
type Intent struct {
	ID           string
	ClientSecret string
	Status       IntentStatus
	// FailureMessage carries the provider's reason when Status is not
	// succeeded.
	FailureMessage string
}

// CreateIntentParams describes one payment attempt. Amount is in minor
// units (cents).
type CreateIntentParams struct {
	Amount          int64
	Currency        string
	PaymentMethodID string
	Metadata        map[string]string
}

// Event is a normalized webhook notification about an intent.
type Event struct {
	Type     EventType
	IntentID string
}

// EventType enumerates the webhook events the shop reacts to.
type EventType string

const (
	EventPaymentSucceeded EventType = "payment_intent.succeeded"
	EventPaymentFailed    EventType = "payment_intent.payment_failed"
)

// Gateway is the contract between the order workflow and the payment
// provider.
type Gateway interface {
	// CreateIntent creates and immediately confirms a payment intent.
	CreateIntent(ctx context.Context, params CreateIntentParams) (*Intent, error)
	// AttachOrderID records the order's identity on the intent's metadata
	// for later webhook correlation.
	AttachOrderID(ctx context.Context, intentID, orderID string) error
	// ParseWebhook verifies the provider's signature and normalizes the
	// event payload.
	ParseWebhook(payload []byte, signature string) (*Event, error)
}
