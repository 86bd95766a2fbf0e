package server

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/barkai-yeshivah/payment-api/internal/log"
	"github.com/barkai-yeshivah/payment-api/internal/stripe"
	"github.com/barkai-yeshivah/payment-api/internal/stripe/checkout"
)

const (
	productNameFormat  = "Pledge Payment - Account %s"
	productDescription = "Pledge payment for Barkai Yeshivah"
	metadataSource     = "pledge_mail_merge"

	successURL = "https://www.barkaiyeshivah.org/userdonations/donation-payment-success"
	cancelURL  = "https://www.barkaiyeshivah.org/userdonations/donation-payment-cancelled"
)

var oneHundred = decimal.NewFromInt(100)

// SessionCreator is the slice of the provider client the handlers use.
type SessionCreator interface {
	CreateSession(ctx context.Context, params *checkout.SessionParams, runOpts ...stripe.RunOption) (*checkout.Session, error)
	GetSession(ctx context.Context, sessionID string, runOpts ...stripe.RunOption) (*checkout.Session, error)
}

var _ SessionCreator = (*stripe.CheckoutService)(nil)

// Handler holds the per-process collaborators. It keeps no per-request state.
type Handler struct {
	checkout SessionCreator
	logger   log.Logger
	now      func() time.Time
}

func NewHandler(checkoutClient SessionCreator, logger log.Logger) *Handler {
	if logger == nil {
		logger = log.NopLogger{}
	}
	return &Handler{
		checkout: checkoutClient,
		logger:   logger,
		now:      time.Now,
	}
}

// Health reports liveness regardless of provider state.
func (h *Handler) Health(c *fiber.Ctx) error {
	return c.JSON(HealthResponse{Status: "Payment API is running"})
}

// CreateCheckout validates the request and creates a provider checkout session.
func (h *Handler) CreateCheckout(c *fiber.Ctx) error {
	var req CheckoutRequest
	if err := c.BodyParser(&req); err != nil {
		h.logger.Warnf("create-checkout: cannot parse body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "Invalid request body"})
	}

	h.logger.Infof("creating checkout session: account_id=%s full_name=%q email=%q", req.AccountID, req.FullName, req.Email)

	if req.AccountID == "" || req.Amount == nil {
		h.logger.Warnf("create-checkout: missing accountId or amount")
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "Missing accountId or amount"})
	}

	amount := *req.Amount
	amountCents := amount.Mul(oneHundred).Round(0).IntPart()
	if amountCents < stripe.MinimumChargeAmount {
		h.logger.Warnf("create-checkout: amount %s below minimum, account_id=%s", amount, req.AccountID)
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "Minimum payment is $0.50"})
	}

	params := h.sessionParams(req, amount, amountCents)
	session, err := h.checkout.CreateSession(c.Context(), params)
	if err != nil {
		h.logger.Errorf("create-checkout: session creation failed, account_id=%s: %v", req.AccountID, err)
		if stripe.IsValidationError(err) {
			return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: providerErrorMessage(err)})
	}

	h.logger.Infof("checkout session created: session_id=%s account_id=%s", session.ID, req.AccountID)

	return c.JSON(CheckoutResponse{
		Success:     true,
		CheckoutURL: session.URL,
		SessionID:   session.ID,
		Amount:      amount,
	})
}

// GetCheckoutSession returns the provider's current view of a session.
func (h *Handler) GetCheckoutSession(c *fiber.Ctx) error {
	sessionID := c.Params("id")
	if sessionID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "Missing session id"})
	}

	session, err := h.checkout.GetSession(c.Context(), sessionID)
	if err != nil {
		h.logger.Errorf("checkout-session: lookup failed, session_id=%s: %v", sessionID, err)
		if stripe.IsValidationError(err) {
			return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: providerErrorMessage(err)})
	}

	return c.JSON(SessionStatusResponse{Success: true, Session: session})
}

func (h *Handler) sessionParams(req CheckoutRequest, amount decimal.Decimal, amountCents int64) *checkout.SessionParams {
	return &checkout.SessionParams{
		PaymentMethodTypes: []string{"card"},
		Mode:               "payment",
		ClientReferenceID:  req.AccountID,
		CustomerCreation:   "always",
		LineItems: []checkout.LineItem{
			{
				Quantity: 1,
				PriceData: checkout.PriceData{
					Currency:   "usd",
					UnitAmount: amountCents,
					ProductData: checkout.ProductData{
						Name:        fmt.Sprintf(productNameFormat, req.AccountID),
						Description: productDescription,
					},
				},
			},
		},
		Metadata: map[string]string{
			"account_id":   req.AccountID,
			"donor_name":   req.FullName,
			"donor_email":  req.Email,
			"amount_paid":  amount.StringFixed(2),
			"source":       metadataSource,
			"payment_date": h.now().UTC().Format(time.RFC3339),
		},
		BillingAddressCollection: "auto",
		SubmitType:               "pay",
		AllowPromotionCodes:      true,
		SuccessURL:               successURL,
		CancelURL:                cancelURL,
	}
}

func providerErrorMessage(err error) string {
	if err == nil || err.Error() == "" {
		return "Failed to create checkout session"
	}
	return err.Error()
}
