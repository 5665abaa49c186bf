package billing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	stripe "github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"

	"github.com/rolohq/rolo/internal/users"
)

// ErrSignatureInvalid means the webhook payload failed signature verification.
// Always fatal to that single request; the provider's own retry policy governs
// redelivery.
var ErrSignatureInvalid = errors.New("invalid webhook signature")

// SubscriptionWriter is the slice of the users service the webhook needs.
type SubscriptionWriter interface {
	ActivateSubscription(ctx context.Context, userID, customerID, subscriptionID string) error
	SetStatusBySubscription(ctx context.Context, subscriptionID, status string) error
}

// Webhook verifies and applies Stripe events to user subscription state.
type Webhook struct {
	writer SubscriptionWriter
	secret string
	logger *slog.Logger
}

// NewWebhook creates a webhook processor with the shared signing secret.
func NewWebhook(log *slog.Logger, writer SubscriptionWriter, secret string) *Webhook {
	if log == nil {
		log = slog.Default()
	}
	return &Webhook{
		writer: writer,
		secret: secret,
		logger: log.With(slog.String("service", "webhook")),
	}
}

// Handle verifies the payload signature and applies the event. An invalid
// signature changes no state.
func (w *Webhook) Handle(ctx context.Context, payload []byte, signature string) error {
	event, err := webhook.ConstructEvent(payload, signature, w.secret)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSignatureInvalid, err)
	}
	return w.Apply(ctx, event)
}

// Apply maps a verified event to user record updates. Field assignment is
// naturally idempotent, so duplicate delivery leaves state identical to a
// single delivery. Unrecognized event kinds are acknowledged unchanged.
func (w *Webhook) Apply(ctx context.Context, event stripe.Event) error {
	switch string(event.Type) {
	case "checkout.session.completed":
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			return fmt.Errorf("decode checkout session: %w", err)
		}
		userID := sess.Metadata["userId"]
		if userID == "" {
			w.logger.Warn("checkout completed without userId metadata", slog.String("session", sess.ID))
			return nil
		}
		var customerID, subscriptionID string
		if sess.Customer != nil {
			customerID = sess.Customer.ID
		}
		if sess.Subscription != nil {
			subscriptionID = sess.Subscription.ID
		}
		w.logger.Info("checkout completed",
			slog.String("user_id", userID), slog.String("subscription_id", subscriptionID))
		return w.writer.ActivateSubscription(ctx, userID, customerID, subscriptionID)

	case "customer.subscription.updated":
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return fmt.Errorf("decode subscription: %w", err)
		}
		w.logger.Info("subscription updated",
			slog.String("subscription_id", sub.ID), slog.String("status", string(sub.Status)))
		return w.writer.SetStatusBySubscription(ctx, sub.ID, string(sub.Status))

	case "customer.subscription.deleted":
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return fmt.Errorf("decode subscription: %w", err)
		}
		w.logger.Info("subscription canceled", slog.String("subscription_id", sub.ID))
		return w.writer.SetStatusBySubscription(ctx, sub.ID, users.StatusCanceled)

	default:
		w.logger.Debug("unhandled event type", slog.String("type", string(event.Type)))
		return nil
	}
}
