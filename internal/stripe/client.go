package stripe

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"

	"github.com/barkai-yeshivah/payment-api/internal/httpclient"
	"github.com/barkai-yeshivah/payment-api/internal/log"
	"github.com/barkai-yeshivah/payment-api/internal/stripe/checkout"
	"github.com/stremovskyy/recorder"
)

// Client is a minimal Stripe API client covering the Checkout Sessions
// surface this service needs.
//
// Requests are form-encoded and authorized with the secret key.
type Client struct {
	cfg config

	http *httpclient.Client

	checkout *CheckoutService
}

func NewClient(opts ...Option) (API, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}
	if cfg.apiKey == "" {
		return nil, errors.New("stripe api key is not configured; use WithAPIKey(...)")
	}

	c := &Client{cfg: cfg}
	c.http = httpclient.New(cfg.httpClient, cfg.apiKey, cfg.logger, cfg.recorder, cfg.logBodies)
	c.checkout = &CheckoutService{c: c}
	return c, nil
}

// NewClientWithRecorder is a convenience wrapper that attaches a recorder.
func NewClientWithRecorder(rec recorder.Recorder, opts ...Option) (API, error) {
	opts = append([]Option{WithRecorder(rec)}, opts...)
	return NewClient(opts...)
}

func (c *Client) Checkout() *CheckoutService { return c.checkout }

// SetLogLevel updates client log level when current logger supports it.
func (c *Client) SetLogLevel(level log.Level) {
	if c == nil || c.cfg.logger == nil {
		return
	}
	if l, ok := c.cfg.logger.(interface{ SetLevel(log.Level) }); ok {
		l.SetLevel(level)
	}
}

func joinURL(base string, p string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid base url %q: %w", base, err)
	}
	u.Path = path.Join(u.Path, p)
	return u.String(), nil
}

func wrapAPIError(err error) error {
	if err == nil {
		return nil
	}
	var hs *httpclient.HTTPStatusError
	if errors.As(err, &hs) {
		return newAPIError(hs.StatusCode, hs.Body)
	}
	return err
}

// =========================
// Checkout Sessions
// =========================

type CheckoutService struct{ c *Client }

// CreateSession creates a hosted checkout session.
func (s *CheckoutService) CreateSession(ctx context.Context, params *checkout.SessionParams, runOpts ...RunOption) (*checkout.Session, error) {
	if s == nil || s.c == nil {
		return nil, errors.New("client is nil")
	}
	if params == nil {
		return nil, &ValidationError{Fields: []FieldError{{Field: "params", Message: "is nil"}}}
	}
	if err := validateSessionParams(params); err != nil {
		return nil, err
	}

	full, err := joinURL(s.c.cfg.baseURL, checkoutSessionsPath)
	if err != nil {
		return nil, err
	}
	form := params.Values()
	if shouldDryRun(runOpts, "POST", full, form) {
		return nil, nil
	}
	var out checkout.Session
	_, _, err = s.c.http.DoForm(ctx, "POST", full, form, &out)
	if err != nil {
		return nil, wrapAPIError(err)
	}
	return &out, nil
}

// GetSession retrieves the provider's current view of a session.
func (s *CheckoutService) GetSession(ctx context.Context, sessionID string, runOpts ...RunOption) (*checkout.Session, error) {
	if s == nil || s.c == nil {
		return nil, errors.New("client is nil")
	}
	if sessionID == "" {
		return nil, &ValidationError{Fields: []FieldError{{Field: "session_id", Message: "is required"}}}
	}

	full, err := joinURL(s.c.cfg.baseURL, path.Join(checkoutSessionsPath, sessionID))
	if err != nil {
		return nil, err
	}
	if shouldDryRun(runOpts, "GET", full, nil) {
		return nil, nil
	}
	var out checkout.Session
	_, _, err = s.c.http.DoForm(ctx, "GET", full, nil, &out)
	if err != nil {
		return nil, wrapAPIError(err)
	}
	return &out, nil
}

// Do performs an authorized request against the configured base URL.
func (s *CheckoutService) Do(ctx context.Context, method string, endpointPath string, form url.Values, out any, runOpts ...RunOption) error {
	if s == nil || s.c == nil {
		return errors.New("client is nil")
	}
	full, err := joinURL(s.c.cfg.baseURL, endpointPath)
	if err != nil {
		return err
	}
	if shouldDryRun(runOpts, method, full, form) {
		return nil
	}
	_, _, err = s.c.http.DoForm(ctx, method, full, form, out)
	return wrapAPIError(err)
}

// =========================
// Validation
// =========================

func validateSessionParams(params *checkout.SessionParams) error {
	ve := &ValidationError{}
	if params.Mode == "" {
		ve.Add("mode", "is required")
	}
	if params.SuccessURL == "" {
		ve.Add("success_url", "is required")
	}
	if params.CancelURL == "" {
		ve.Add("cancel_url", "is required")
	}
	if len(params.LineItems) == 0 {
		ve.Add("line_items", "must contain at least one item")
	}
	for i, li := range params.LineItems {
		if li.Quantity <= 0 {
			ve.Add(fmt.Sprintf("line_items[%d].quantity", i), "must be > 0")
		}
		if li.PriceData.Currency == "" {
			ve.Add(fmt.Sprintf("line_items[%d].price_data.currency", i), "is required")
		}
		if li.PriceData.UnitAmount < MinimumChargeAmount {
			ve.Add(fmt.Sprintf("line_items[%d].price_data.unit_amount", i), fmt.Sprintf("must be >= %d", MinimumChargeAmount))
		}
	}
	if ve.HasErrors() {
		return ve
	}
	return nil
}
