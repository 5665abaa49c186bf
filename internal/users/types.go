package users

import "time"

// Subscription status values. Anything other than StatusActive keeps the
// contact book behind the paywall.
const (
	StatusActive   = "active"
	StatusCanceled = "canceled"
	StatusNone     = "none"
)

// User is an account record. Subscription fields are written only by the
// payment webhook path.
type User struct {
	ID                   string    `json:"id"`
	Email                string    `json:"email"`
	Name                 string    `json:"name"`
	SubscriptionStatus   string    `json:"subscriptionStatus"`
	StripeCustomerID     string    `json:"stripeCustomerId,omitempty"`
	StripeSubscriptionID string    `json:"stripeSubscriptionId,omitempty"`
	CreatedAt            time.Time `json:"createdAt,omitzero"`
}

// SignupRequest is the input for creating an account.
type SignupRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}
