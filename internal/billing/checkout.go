package billing

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	stripe "github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"

	"github.com/rolohq/rolo/internal/config"
)

// CheckoutSession is the result of creating a hosted checkout: the provider
// session id and the URL to redirect the browser to.
type CheckoutSession struct {
	SessionID string `json:"sessionId"`
	URL       string `json:"url"`
}

// Checkout creates subscription checkout sessions against Stripe.
type Checkout struct {
	api    *client.API
	cfg    config.StripeConfig
	logger *slog.Logger
}

// NewCheckout creates a checkout client from Stripe configuration.
func NewCheckout(log *slog.Logger, cfg config.StripeConfig) *Checkout {
	if log == nil {
		log = slog.Default()
	}
	api := &client.API{}
	api.Init(cfg.SecretKey, nil)
	return &Checkout{
		api:    api,
		cfg:    cfg,
		logger: log.With(slog.String("service", "billing")),
	}
}

// Create starts a subscription checkout for the given user, tagging the
// session with the user id so the completion webhook can resolve it later.
func (c *Checkout) Create(userID, email string) (CheckoutSession, error) {
	if strings.TrimSpace(c.cfg.SecretKey) == "" {
		return CheckoutSession{}, errors.New("stripe secret key not configured")
	}
	if strings.TrimSpace(c.cfg.PriceID) == "" {
		return CheckoutSession{}, errors.New("stripe price id not configured")
	}
	if strings.TrimSpace(userID) == "" {
		return CheckoutSession{}, errors.New("user id is required")
	}

	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(c.cfg.PriceID),
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(c.cfg.AppURL + ContactsRoute + "?success=true"),
		CancelURL:  stripe.String(c.cfg.AppURL + PricingRoute + "?canceled=true"),
	}
	if strings.TrimSpace(email) != "" {
		params.CustomerEmail = stripe.String(email)
	}
	params.AddMetadata("userId", userID)

	sess, err := c.api.CheckoutSessions.New(params)
	if err != nil {
		return CheckoutSession{}, fmt.Errorf("create checkout session: %w", err)
	}
	return CheckoutSession{SessionID: sess.ID, URL: sess.URL}, nil
}
