package handlers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/rolohq/rolo/internal/billing"
)

// BillingHandler serves checkout session creation and the Stripe webhook.
type BillingHandler struct {
	checkout *billing.Checkout
	webhook  *billing.Webhook
	logger   *slog.Logger
}

// CheckoutRequest is the body for POST /billing/checkout-session.
type CheckoutRequest struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
}

// NewBillingHandler creates a billing handler.
func NewBillingHandler(log *slog.Logger, checkout *billing.Checkout, webhook *billing.Webhook) *BillingHandler {
	return &BillingHandler{
		checkout: checkout,
		webhook:  webhook,
		logger:   log.With(slog.String("handler", "billing")),
	}
}

// Register mounts the billing routes. The webhook path is excluded from JWT
// auth; its authenticity comes from the payload signature instead.
func (h *BillingHandler) Register(e *echo.Echo) {
	e.POST("/billing/checkout-session", h.CreateCheckoutSession)
	e.POST("/webhooks/stripe", h.Webhook)
}

// CreateCheckoutSession starts a hosted checkout and returns its redirect URL.
func (h *BillingHandler) CreateCheckoutSession(c echo.Context) error {
	if h.checkout == nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "billing not configured")
	}
	var req CheckoutRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if strings.TrimSpace(req.UserID) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "userId is required")
	}
	sess, err := h.checkout.Create(req.UserID, req.Email)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, sess)
}

// Webhook verifies the signed payload and applies the event.
func (h *BillingHandler) Webhook(c echo.Context) error {
	if h.webhook == nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "webhook not configured")
	}
	payload, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "read payload failed")
	}
	signature := c.Request().Header.Get("Stripe-Signature")
	if err := h.webhook.Handle(c.Request().Context(), payload, signature); err != nil {
		if errors.Is(err, billing.ErrSignatureInvalid) {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid signature")
		}
		h.logger.Error("webhook handler failed", slog.Any("error", err))
		return echo.NewHTTPError(http.StatusInternalServerError, "webhook handler failed")
	}
	return c.JSON(http.StatusOK, map[string]bool{"received": true})
}
