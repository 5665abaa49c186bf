package billing

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	stripe "github.com/stripe/stripe-go/v82"

	"github.com/rolohq/rolo/internal/users"
)

// fakeWriter records subscription mutations like the users service would
// apply them, including the matched-no-user no-op behavior.
type fakeWriter struct {
	statusBySub map[string]string
	activated   map[string][2]string // userID -> {customerID, subscriptionID}
	subToUser   map[string]string
}

func newFakeWriter() *fakeWriter {
	return &fakeWriter{
		statusBySub: map[string]string{},
		activated:   map[string][2]string{},
		subToUser:   map[string]string{},
	}
}

func (f *fakeWriter) ActivateSubscription(_ context.Context, userID, customerID, subscriptionID string) error {
	f.activated[userID] = [2]string{customerID, subscriptionID}
	f.subToUser[subscriptionID] = userID
	f.statusBySub[subscriptionID] = users.StatusActive
	return nil
}

func (f *fakeWriter) SetStatusBySubscription(_ context.Context, subscriptionID, status string) error {
	if _, ok := f.subToUser[subscriptionID]; !ok {
		// No matching user: no effect, no error.
		return nil
	}
	f.statusBySub[subscriptionID] = status
	return nil
}

func event(t *testing.T, kind string, payload any) stripe.Event {
	t.Helper()
	raw, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	return stripe.Event{
		Type: stripe.EventType(kind),
		Data: &stripe.EventData{Raw: raw},
	}
}

func TestApplyCheckoutCompleted(t *testing.T) {
	writer := newFakeWriter()
	w := NewWebhook(nil, writer, "whsec_test")

	ev := event(t, "checkout.session.completed", map[string]any{
		"id":           "cs_123",
		"metadata":     map[string]string{"userId": "user-1"},
		"customer":     map[string]any{"id": "cus_123"},
		"subscription": map[string]any{"id": "sub_123"},
	})
	if err := w.Apply(context.Background(), ev); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	got, ok := writer.activated["user-1"]
	if !ok {
		t.Fatal("checkout completed did not activate the user")
	}
	if got != [2]string{"cus_123", "sub_123"} {
		t.Errorf("activated with %v, want customer and subscription ids", got)
	}
	if writer.statusBySub["sub_123"] != users.StatusActive {
		t.Errorf("status = %q, want active", writer.statusBySub["sub_123"])
	}
}

func TestApplyCheckoutWithoutUserMetadata(t *testing.T) {
	writer := newFakeWriter()
	w := NewWebhook(nil, writer, "whsec_test")

	ev := event(t, "checkout.session.completed", map[string]any{"id": "cs_123"})
	if err := w.Apply(context.Background(), ev); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if len(writer.activated) != 0 {
		t.Error("activation without userId metadata")
	}
}

func TestApplySubscriptionUpdated(t *testing.T) {
	writer := newFakeWriter()
	_ = writer.ActivateSubscription(context.Background(), "user-1", "cus_123", "sub_123")
	w := NewWebhook(nil, writer, "whsec_test")

	ev := event(t, "customer.subscription.updated", map[string]any{
		"id":     "sub_123",
		"status": "past_due",
	})
	if err := w.Apply(context.Background(), ev); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if writer.statusBySub["sub_123"] != "past_due" {
		t.Errorf("status = %q, want past_due", writer.statusBySub["sub_123"])
	}
}

func TestApplySubscriptionDeleted(t *testing.T) {
	writer := newFakeWriter()
	_ = writer.ActivateSubscription(context.Background(), "user-1", "cus_123", "sub_123")
	w := NewWebhook(nil, writer, "whsec_test")

	ev := event(t, "customer.subscription.deleted", map[string]any{"id": "sub_123"})
	if err := w.Apply(context.Background(), ev); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if writer.statusBySub["sub_123"] != users.StatusCanceled {
		t.Errorf("status = %q, want canceled", writer.statusBySub["sub_123"])
	}
}

func TestApplyDeletedForUnknownSubscription(t *testing.T) {
	writer := newFakeWriter()
	w := NewWebhook(nil, writer, "whsec_test")

	ev := event(t, "customer.subscription.deleted", map[string]any{"id": "sub_123"})
	if err := w.Apply(context.Background(), ev); err != nil {
		t.Fatalf("Apply should not error when no user matches: %v", err)
	}
	if len(writer.statusBySub) != 0 {
		t.Errorf("state changed for unknown subscription: %v", writer.statusBySub)
	}
}

func TestApplyIsIdempotent(t *testing.T) {
	writer := newFakeWriter()
	_ = writer.ActivateSubscription(context.Background(), "user-1", "cus_123", "sub_123")
	w := NewWebhook(nil, writer, "whsec_test")

	ev := event(t, "customer.subscription.deleted", map[string]any{"id": "sub_123"})
	for i := 0; i < 2; i++ {
		if err := w.Apply(context.Background(), ev); err != nil {
			t.Fatalf("Apply #%d: %v", i+1, err)
		}
	}
	if writer.statusBySub["sub_123"] != users.StatusCanceled {
		t.Errorf("status = %q after duplicate delivery", writer.statusBySub["sub_123"])
	}
}

func TestApplyIgnoresOtherEventKinds(t *testing.T) {
	writer := newFakeWriter()
	w := NewWebhook(nil, writer, "whsec_test")

	ev := event(t, "invoice.payment_failed", map[string]any{"id": "in_123"})
	if err := w.Apply(context.Background(), ev); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if len(writer.activated) != 0 || len(writer.statusBySub) != 0 {
		t.Error("unrecognized event changed state")
	}
}

func TestHandleRejectsBadSignature(t *testing.T) {
	writer := newFakeWriter()
	w := NewWebhook(nil, writer, "whsec_test")

	err := w.Handle(context.Background(), []byte(`{"type":"checkout.session.completed"}`), "t=1,v1=garbage")
	if !errors.Is(err, ErrSignatureInvalid) {
		t.Fatalf("Handle error = %v, want ErrSignatureInvalid", err)
	}
	if len(writer.activated) != 0 || len(writer.statusBySub) != 0 {
		t.Error("state changed on invalid signature")
	}
}
