package checkout

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
	"github.com/davemorenodev/loungelab-backend/pkg/square"
)

func newTestPlatform(t *testing.T, serverURL string) *SquarePlatform {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	base, err := square.NewClient(context.Background(), config.SquareConfig{
		AccessToken: "test-token",
		Environment: "sandbox",
	}, logg)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	client, err := square.NewCheckoutClient(base, "loc-1", square.WithCheckoutBaseURL(serverURL))
	if err != nil {
		t.Fatalf("NewCheckoutClient: %v", err)
	}
	platform, err := NewSquarePlatform(client, "https://loungelab.example/thanks")
	if err != nil {
		t.Fatalf("NewSquarePlatform: %v", err)
	}
	return platform
}

func TestSquarePlatformFinalizesSession(t *testing.T) {
	var captured map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_, _ = w.Write([]byte(`{"payment_link": {"id": "plink-1", "url": "https://square.link/u/abc", "order_id": "order-1"}}`))
	}))
	defer server.Close()

	platform := newTestPlatform(t, server.URL)
	ctx := context.Background()

	session, err := platform.CreateCheckoutSession(ctx)
	if err != nil {
		t.Fatalf("CreateCheckoutSession: %v", err)
	}
	if session.WebURL != "" {
		t.Fatal("pending session must not have a checkout URL yet")
	}

	finalized, err := platform.AddLineItems(ctx, session.ID, []LineItem{
		{VariantID: "var-m", Quantity: 2, Attributes: map[string]string{"Size": "M"}},
	})
	if err != nil {
		t.Fatalf("AddLineItems: %v", err)
	}
	if finalized.WebURL != "https://square.link/u/abc" {
		t.Fatalf("unexpected checkout URL %q", finalized.WebURL)
	}

	if captured["idempotency_key"] != session.ID {
		t.Fatal("payment link must reuse the session id as idempotency key")
	}
	order := captured["order"].(map[string]any)
	items := order["line_items"].([]any)
	item := items[0].(map[string]any)
	if item["note"] != "Size: M" {
		t.Fatalf("size note missing, got %v", item["note"])
	}
}

func TestSquarePlatformRejectsUnknownSession(t *testing.T) {
	platform := newTestPlatform(t, "http://localhost:0")

	_, err := platform.AddLineItems(context.Background(), "never-created", []LineItem{
		{VariantID: "var-m", Quantity: 1},
	})
	domainErr := pkgerrors.As(err)
	if domainErr == nil || domainErr.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestSquarePlatformSessionIsSingleUse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"payment_link": {"id": "plink-1", "url": "https://square.link/u/abc"}}`))
	}))
	defer server.Close()

	platform := newTestPlatform(t, server.URL)
	ctx := context.Background()
	session, err := platform.CreateCheckoutSession(ctx)
	if err != nil {
		t.Fatalf("CreateCheckoutSession: %v", err)
	}

	items := []LineItem{{VariantID: "var-m", Quantity: 1}}
	if _, err := platform.AddLineItems(ctx, session.ID, items); err != nil {
		t.Fatalf("AddLineItems: %v", err)
	}
	if _, err := platform.AddLineItems(ctx, session.ID, items); err == nil {
		t.Fatal("a finalized session must not be reusable")
	}
}
