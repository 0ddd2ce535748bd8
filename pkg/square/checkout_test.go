package square

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/davemorenodev/loungelab-backend/pkg/config"
	pkgerrors "github.com/davemorenodev/loungelab-backend/pkg/errors"
	"github.com/davemorenodev/loungelab-backend/pkg/logger"
)

func newTestCheckoutClient(t *testing.T, serverURL string) *CheckoutClient {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	base, err := NewClient(context.Background(), config.SquareConfig{
		AccessToken: "test-token",
		Environment: "sandbox",
	}, logg)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	client, err := NewCheckoutClient(base, "loc-1", WithCheckoutBaseURL(serverURL))
	if err != nil {
		t.Fatalf("NewCheckoutClient: %v", err)
	}
	return client
}

func TestFetchProductParsesVariations(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v2/catalog/object/prod-1" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("unexpected authorization header %q", got)
		}
		_, _ = w.Write([]byte(`{
			"object": {
				"id": "prod-1",
				"item_data": {
					"name": "Cloud Sweatpants",
					"variations": [
						{"id": "var-s", "item_variation_data": {"name": "S"}},
						{"id": "var-m", "item_variation_data": {"name": "M"}}
					]
				}
			}
		}`))
	}))
	defer server.Close()

	client := newTestCheckoutClient(t, server.URL)
	product, err := client.FetchProduct(context.Background(), "prod-1")
	if err != nil {
		t.Fatalf("FetchProduct: %v", err)
	}
	if product.Name != "Cloud Sweatpants" {
		t.Fatalf("unexpected product name %q", product.Name)
	}
	if len(product.Variants) != 2 || product.Variants[1].Name != "M" {
		t.Fatalf("unexpected variants %+v", product.Variants)
	}
}

func TestFetchProductRejectsItemWithoutVariations(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"object": {"id": "prod-1", "item_data": {"name": "Cloud Sweatpants", "variations": []}}}`))
	}))
	defer server.Close()

	client := newTestCheckoutClient(t, server.URL)
	_, err := client.FetchProduct(context.Background(), "prod-1")
	domainErr := pkgerrors.As(err)
	if domainErr == nil || domainErr.Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency error, got %v", err)
	}
}

func TestCreatePaymentLinkBuildsOrder(t *testing.T) {
	var captured map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v2/online-checkout/payment-links" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"payment_link": {"id": "plink-1", "url": "https://square.link/u/abc", "order_id": "order-1"}}`))
	}))
	defer server.Close()

	client := newTestCheckoutClient(t, server.URL)
	link, err := client.CreatePaymentLink(context.Background(), PaymentLinkParams{
		IdempotencyKey: "sess-1",
		RedirectURL:    "https://loungelab.example/thanks",
		Items: []PaymentLinkItem{
			{CatalogObjectID: "var-m", Quantity: 2, Note: "Size: M", Metadata: map[string]string{"Size": "M"}},
		},
	})
	if err != nil {
		t.Fatalf("CreatePaymentLink: %v", err)
	}
	if link.URL != "https://square.link/u/abc" || link.OrderID != "order-1" {
		t.Fatalf("unexpected link %+v", link)
	}

	if captured["idempotency_key"] != "sess-1" {
		t.Fatalf("idempotency key not sent, got %v", captured["idempotency_key"])
	}
	order, ok := captured["order"].(map[string]any)
	if !ok {
		t.Fatalf("order missing in payload: %v", captured)
	}
	if order["location_id"] != "loc-1" {
		t.Fatalf("location not sent, got %v", order["location_id"])
	}
	items, ok := order["line_items"].([]any)
	if !ok || len(items) != 1 {
		t.Fatalf("unexpected line items %v", order["line_items"])
	}
	item := items[0].(map[string]any)
	if item["quantity"] != "2" {
		t.Fatalf("quantity must be sent as a string, got %v", item["quantity"])
	}
	if item["catalog_object_id"] != "var-m" {
		t.Fatalf("unexpected catalog object %v", item["catalog_object_id"])
	}
}

func TestCreatePaymentLinkValidation(t *testing.T) {
	client := newTestCheckoutClient(t, "http://localhost:0")

	if _, err := client.CreatePaymentLink(context.Background(), PaymentLinkParams{IdempotencyKey: "k"}); err == nil {
		t.Fatal("expected error for empty items")
	}
	if _, err := client.CreatePaymentLink(context.Background(), PaymentLinkParams{
		IdempotencyKey: "k",
		Items:          []PaymentLinkItem{{CatalogObjectID: "var-m", Quantity: 0}},
	}); err == nil {
		t.Fatal("expected error for zero quantity")
	}
}

func TestStatusErrorMapsToDomainCode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"errors": [{"category": "AUTHENTICATION_ERROR"}]}`))
	}))
	defer server.Close()

	client := newTestCheckoutClient(t, server.URL)
	_, err := client.FetchProduct(context.Background(), "prod-1")
	domainErr := pkgerrors.As(err)
	if domainErr == nil || domainErr.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized mapping for 401, got %v", err)
	}
}
