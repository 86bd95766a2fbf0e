package checkout

import (
	"testing"
)

func TestSessionParamsValues(t *testing.T) {
	p := &SessionParams{
		PaymentMethodTypes: []string{"card"},
		Mode:               "payment",
		ClientReferenceID:  "ACC1",
		CustomerCreation:   "always",
		LineItems: []LineItem{
			{
				Quantity: 1,
				PriceData: PriceData{
					Currency:   "usd",
					UnitAmount: 2500,
					ProductData: ProductData{
						Name:        "Pledge Payment - Account ACC1",
						Description: "Pledge payment for Barkai Yeshivah",
					},
				},
			},
		},
		Metadata: map[string]string{
			"account_id":  "ACC1",
			"amount_paid": "25.00",
		},
		BillingAddressCollection: "auto",
		SubmitType:               "pay",
		AllowPromotionCodes:      true,
		SuccessURL:               "https://example.com/success",
		CancelURL:                "https://example.com/cancel",
	}

	v := p.Values()

	if got := v.Get("line_items[0][price_data][unit_amount]"); got != "2500" {
		t.Fatalf("unit_amount = %q", got)
	}
	if got := v.Get("line_items[0][price_data][product_data][description]"); got != "Pledge payment for Barkai Yeshivah" {
		t.Fatalf("description = %q", got)
	}
	if got := v.Get("metadata[amount_paid]"); got != "25.00" {
		t.Fatalf("metadata amount_paid = %q", got)
	}
	if got := v.Get("allow_promotion_codes"); got != "true" {
		t.Fatalf("allow_promotion_codes = %q", got)
	}
}

func TestSessionParamsValuesOmitsEmptyFields(t *testing.T) {
	p := &SessionParams{Mode: "payment"}
	v := p.Values()

	if _, ok := v["client_reference_id"]; ok {
		t.Fatalf("empty client_reference_id must be omitted")
	}
	if _, ok := v["allow_promotion_codes"]; ok {
		t.Fatalf("false allow_promotion_codes must be omitted")
	}
	if _, ok := v["success_url"]; ok {
		t.Fatalf("empty success_url must be omitted")
	}
	if got := v.Get("mode"); got != "payment" {
		t.Fatalf("mode = %q", got)
	}
}
