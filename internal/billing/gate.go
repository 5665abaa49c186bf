// Package billing integrates the Stripe payment provider: hosted checkout
// session creation, the signed webhook that drives subscription state, and the
// routing gate in front of the contact book.
package billing

import "github.com/rolohq/rolo/internal/users"

// Entry points the gate routes between.
const (
	ContactsRoute = "/contacts"
	PricingRoute  = "/pricing"
)

// Route decides the post-login entry point from the subscription status most
// recently recorded for the user: the contact book when active, plan selection
// for anything else (including absent). Decided once at login; contact
// operations do not re-check it.
func Route(subscriptionStatus string) string {
	if subscriptionStatus == users.StatusActive {
		return ContactsRoute
	}
	return PricingRoute
}
