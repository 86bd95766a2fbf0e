// Package checkout holds wire types for the Stripe Checkout Sessions API
// (POST /v1/checkout/sessions).
//
// Stripe takes urlencoded form bodies with bracketed keys for nested fields
// (line_items[0][price_data][unit_amount]) and answers with JSON.
package checkout

import (
	"fmt"
	"net/url"
	"strconv"
)

// SessionParams corresponds to "Create a Session".
// Only the fields this service uses are modeled.
type SessionParams struct {
	PaymentMethodTypes []string
	Mode               string
	ClientReferenceID  string
	CustomerCreation   string

	LineItems []LineItem
	Metadata  map[string]string

	BillingAddressCollection string
	SubmitType               string
	AllowPromotionCodes      bool

	SuccessURL string
	CancelURL  string
}

type LineItem struct {
	Quantity  int64
	PriceData PriceData
}

// PriceData describes a dynamically priced line item.
// UnitAmount is in minor units (cents).
type PriceData struct {
	Currency    string
	UnitAmount  int64
	ProductData ProductData
}

type ProductData struct {
	Name        string
	Description string
}

// Values flattens the params into Stripe's form encoding.
func (p *SessionParams) Values() url.Values {
	v := url.Values{}
	for i, t := range p.PaymentMethodTypes {
		v.Set(fmt.Sprintf("payment_method_types[%d]", i), t)
	}
	setIfNotEmpty(v, "mode", p.Mode)
	setIfNotEmpty(v, "client_reference_id", p.ClientReferenceID)
	setIfNotEmpty(v, "customer_creation", p.CustomerCreation)

	for i, li := range p.LineItems {
		prefix := fmt.Sprintf("line_items[%d]", i)
		v.Set(prefix+"[quantity]", strconv.FormatInt(li.Quantity, 10))
		v.Set(prefix+"[price_data][currency]", li.PriceData.Currency)
		v.Set(prefix+"[price_data][unit_amount]", strconv.FormatInt(li.PriceData.UnitAmount, 10))
		setIfNotEmpty(v, prefix+"[price_data][product_data][name]", li.PriceData.ProductData.Name)
		setIfNotEmpty(v, prefix+"[price_data][product_data][description]", li.PriceData.ProductData.Description)
	}

	for key, val := range p.Metadata {
		v.Set(fmt.Sprintf("metadata[%s]", key), val)
	}

	setIfNotEmpty(v, "billing_address_collection", p.BillingAddressCollection)
	setIfNotEmpty(v, "submit_type", p.SubmitType)
	if p.AllowPromotionCodes {
		v.Set("allow_promotion_codes", "true")
	}
	setIfNotEmpty(v, "success_url", p.SuccessURL)
	setIfNotEmpty(v, "cancel_url", p.CancelURL)
	return v
}

func setIfNotEmpty(v url.Values, key, value string) {
	if value != "" {
		v.Set(key, value)
	}
}

// Session is the provider's view of a checkout session.
type Session struct {
	ID                string `json:"id"`
	URL               string `json:"url"`
	Status            string `json:"status"`
	PaymentStatus     string `json:"payment_status"`
	AmountTotal       int64  `json:"amount_total"`
	Currency          string `json:"currency"`
	ClientReferenceID string `json:"client_reference_id"`
}
