package server

import (
	"github.com/shopspring/decimal"

	"github.com/barkai-yeshivah/payment-api/internal/stripe/checkout"
)

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// CheckoutRequest is the body of POST /api/create-checkout.
//
// Amount is a pointer so an absent field can be told apart from zero.
type CheckoutRequest struct {
	AccountID string           `json:"accountId"`
	Amount    *decimal.Decimal `json:"amount"`
	FullName  string           `json:"fullName"`
	Email     string           `json:"email"`
}

// CheckoutResponse is the success envelope for session creation.
// Amount echoes the original value, not minor units.
type CheckoutResponse struct {
	Success     bool            `json:"success"`
	CheckoutURL string          `json:"checkoutUrl"`
	SessionID   string          `json:"sessionId"`
	Amount      decimal.Decimal `json:"amount"`
}

// SessionStatusResponse is the success envelope for a session status fetch.
type SessionStatusResponse struct {
	Success bool              `json:"success"`
	Session *checkout.Session `json:"session"`
}

// ErrorResponse is the error envelope shared by all failure paths.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// HealthResponse is the body of GET /.
type HealthResponse struct {
	Status string `json:"status"`
}
