package stripe

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"

	"github.com/stremovskyy/recorder"

	"github.com/barkai-yeshivah/payment-api/internal/stripe/checkout"
)

func testSessionParams() *checkout.SessionParams {
	return &checkout.SessionParams{
		PaymentMethodTypes: []string{"card"},
		Mode:               "payment",
		ClientReferenceID:  "ACC1",
		CustomerCreation:   "always",
		LineItems: []checkout.LineItem{
			{
				Quantity: 1,
				PriceData: checkout.PriceData{
					Currency:   "usd",
					UnitAmount: 2500,
					ProductData: checkout.ProductData{
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
}

func TestCreateSessionSendsFormAndAuth(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v1/checkout/sessions" {
			http.NotFound(w, r)
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
			return
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sk_test_123" {
			http.Error(w, "bad auth", http.StatusUnauthorized)
			t.Errorf("unexpected authorization header: %q", got)
			return
		}
		if got := r.Header.Get("Content-Type"); got != "application/x-www-form-urlencoded" {
			http.Error(w, "bad content type", http.StatusBadRequest)
			t.Errorf("unexpected content type: %q", got)
			return
		}

		raw, err := io.ReadAll(r.Body)
		_ = r.Body.Close()
		if err != nil {
			t.Errorf("read body: %v", err)
			return
		}
		form, err := url.ParseQuery(string(raw))
		if err != nil {
			t.Errorf("parse form: %v", err)
			return
		}
		checks := []struct {
			key  string
			want string
		}{
			{"payment_method_types[0]", "card"},
			{"mode", "payment"},
			{"client_reference_id", "ACC1"},
			{"customer_creation", "always"},
			{"line_items[0][quantity]", "1"},
			{"line_items[0][price_data][currency]", "usd"},
			{"line_items[0][price_data][unit_amount]", "2500"},
			{"line_items[0][price_data][product_data][name]", "Pledge Payment - Account ACC1"},
			{"metadata[account_id]", "ACC1"},
			{"metadata[amount_paid]", "25.00"},
			{"billing_address_collection", "auto"},
			{"submit_type", "pay"},
			{"allow_promotion_codes", "true"},
			{"success_url", "https://example.com/success"},
			{"cancel_url", "https://example.com/cancel"},
		}
		for _, check := range checks {
			if got := form.Get(check.key); got != check.want {
				t.Errorf("form[%s] = %q, want %q", check.key, got, check.want)
			}
		}

		_, _ = w.Write([]byte(`{"id":"cs_test_1","url":"https://checkout.stripe.com/c/pay/cs_test_1","amount_total":2500,"currency":"usd"}`))
	}))
	defer ts.Close()

	client, err := NewClient(
		WithAPIKey("sk_test_123"),
		WithBaseURL(ts.URL),
	)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	session, err := client.Checkout().CreateSession(context.Background(), testSessionParams())
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	if session.ID != "cs_test_1" || session.URL != "https://checkout.stripe.com/c/pay/cs_test_1" {
		t.Fatalf("unexpected session: %+v", session)
	}
	if session.AmountTotal != 2500 {
		t.Fatalf("unexpected amount total: %d", session.AmountTotal)
	}
}

func TestCreateSessionValidation(t *testing.T) {
	client, err := NewClient(WithAPIKey("sk_test_123"))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	params := testSessionParams()
	params.SuccessURL = ""
	params.LineItems[0].PriceData.UnitAmount = 49

	_, err = client.Checkout().CreateSession(context.Background(), params)
	ve, ok := err.(*ValidationError)
	if !ok {
		t.Fatalf("expected ValidationError, got %T (%v)", err, err)
	}
	if len(ve.Fields) != 2 {
		t.Fatalf("expected 2 validation fields, got %+v", ve.Fields)
	}
	if ve.Fields[0].Field != "success_url" {
		t.Fatalf("unexpected first field: %+v", ve.Fields[0])
	}
	if ve.Fields[1].Field != "line_items[0].price_data.unit_amount" {
		t.Fatalf("unexpected second field: %+v", ve.Fields[1])
	}
}

func TestCreateSessionNilParams(t *testing.T) {
	client, err := NewClient(WithAPIKey("sk_test_123"))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	_, err = client.Checkout().CreateSession(context.Background(), nil)
	if !IsValidationError(err) {
		t.Fatalf("expected ValidationError, got %T (%v)", err, err)
	}
}

func TestCreateSessionAPIErrorMessage(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
		_, _ = w.Write([]byte(`{"error":{"type":"card_error","code":"card_declined","message":"Your card was declined."}}`))
	}))
	defer ts.Close()

	client, err := NewClient(WithAPIKey("sk_test_123"), WithBaseURL(ts.URL))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	_, err = client.Checkout().CreateSession(context.Background(), testSessionParams())
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %T (%v)", err, err)
	}
	if apiErr.StatusCode != http.StatusPaymentRequired {
		t.Fatalf("unexpected status: %d", apiErr.StatusCode)
	}
	if apiErr.Message != "Your card was declined." || apiErr.Code != "card_declined" {
		t.Fatalf("unexpected parsed error: %+v", apiErr)
	}
	if apiErr.Error() != "Your card was declined." {
		t.Fatalf("Error() must surface the provider message, got %q", apiErr.Error())
	}
}

func TestGetSession(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/v1/checkout/sessions/cs_test_7" {
			http.NotFound(w, r)
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
			return
		}
		_, _ = w.Write([]byte(`{"id":"cs_test_7","status":"complete","payment_status":"paid"}`))
	}))
	defer ts.Close()

	client, err := NewClient(WithAPIKey("sk_test_123"), WithBaseURL(ts.URL))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	session, err := client.Checkout().GetSession(context.Background(), "cs_test_7")
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if session.Status != "complete" || session.PaymentStatus != "paid" {
		t.Fatalf("unexpected session: %+v", session)
	}
}

func TestNewClientRequiresAPIKey(t *testing.T) {
	if _, err := NewClient(); err == nil {
		t.Fatalf("expected error for missing api key")
	}
}

func TestDryRunSkipsHTTPCall(t *testing.T) {
	var hitCount int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hitCount, 1)
		_, _ = w.Write([]byte(`{"id":"cs_test_1"}`))
	}))
	defer ts.Close()

	client, err := NewClient(WithAPIKey("sk_test_123"), WithBaseURL(ts.URL))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	var (
		called    bool
		gotMethod string
		gotURL    string
		gotForm   url.Values
	)

	_, err = client.Checkout().CreateSession(context.Background(), testSessionParams(), DryRun(func(method string, url string, form url.Values) {
		called = true
		gotMethod = method
		gotURL = url
		gotForm = form
	}))
	if err != nil {
		t.Fatalf("create session dry run: %v", err)
	}

	if !called {
		t.Fatalf("dry run handler was not called")
	}
	if gotMethod != "POST" {
		t.Fatalf("unexpected method: %q", gotMethod)
	}
	if gotURL != ts.URL+"/v1/checkout/sessions" {
		t.Fatalf("unexpected url: %q", gotURL)
	}
	if gotForm.Get("client_reference_id") != "ACC1" {
		t.Fatalf("unexpected form: %v", gotForm)
	}
	if atomic.LoadInt32(&hitCount) != 0 {
		t.Fatalf("expected no HTTP calls, got %d", hitCount)
	}
}

func TestNewClientWithRecorderRecordsTraffic(t *testing.T) {
	rec := &testRecorder{}
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":"cs_test_1"}`))
	}))
	defer ts.Close()

	client, err := NewClientWithRecorder(rec,
		WithAPIKey("sk_test_123"),
		WithBaseURL(ts.URL),
	)
	if err != nil {
		t.Fatalf("new client with recorder: %v", err)
	}

	_, err = client.Checkout().CreateSession(context.Background(), testSessionParams())
	if err != nil {
		t.Fatalf("create session: %v", err)
	}

	if rec.requestCount != 1 {
		t.Fatalf("expected 1 recorded request, got %d", rec.requestCount)
	}
	if rec.responseCount != 1 {
		t.Fatalf("expected 1 recorded response, got %d", rec.responseCount)
	}
	if rec.errorCount != 0 {
		t.Fatalf("expected 0 recorded errors, got %d", rec.errorCount)
	}
}

type testRecorder struct {
	requestCount  int
	responseCount int
	errorCount    int
}

func (t *testRecorder) RecordRequest(context.Context, *string, string, []byte, map[string]string) error {
	t.requestCount++
	return nil
}

func (t *testRecorder) RecordResponse(context.Context, *string, string, []byte, map[string]string) error {
	t.responseCount++
	return nil
}

func (t *testRecorder) RecordError(context.Context, *string, string, error, map[string]string) error {
	t.errorCount++
	return nil
}

func (t *testRecorder) RecordMetrics(context.Context, *string, string, map[string]string, map[string]string) error {
	return nil
}

func (t *testRecorder) GetRequest(context.Context, string) ([]byte, error) {
	return nil, nil
}

func (t *testRecorder) GetResponse(context.Context, string) ([]byte, error) {
	return nil, nil
}

func (t *testRecorder) FindByTag(context.Context, string) ([]string, error) {
	return nil, nil
}

func (t *testRecorder) Async() recorder.AsyncRecorder {
	return nil
}
