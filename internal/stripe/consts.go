package stripe

const (
	// DefaultBaseURL is the live Stripe API host. Tests point the client at
	// an httptest server instead.
	DefaultBaseURL = "https://api.stripe.com"

	checkoutSessionsPath = "/v1/checkout/sessions"
)

// MinimumChargeAmount is the smallest unit_amount Stripe accepts for a USD
// charge, in cents.
const MinimumChargeAmount = 50
