package stripe

import "github.com/barkai-yeshivah/payment-api/internal/log"

// API is the provider surface the rest of the service depends on.
type API interface {
	Checkout() *CheckoutService

	SetLogLevel(level log.Level)
}

var _ API = (*Client)(nil)
