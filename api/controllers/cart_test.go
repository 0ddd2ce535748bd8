package controllers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/davemorenodev/loungelab-backend/api/middleware"
	"github.com/davemorenodev/loungelab-backend/internal/cart"
	"github.com/davemorenodev/loungelab-backend/pkg/config"
	"github.com/davemorenodev/loungelab-backend/pkg/logger"
	"github.com/davemorenodev/loungelab-backend/pkg/types"
)

type stubControllerCartService struct {
	lines      []cart.Line
	lastInput  cart.LineInput
	lastSubj   cart.Subject
	addCalled  bool
	listCalled bool
}

func (s *stubControllerCartService) List(ctx context.Context, subject cart.Subject) ([]cart.Line, error) {
	s.listCalled = true
	s.lastSubj = subject
	return s.lines, nil
}

func (s *stubControllerCartService) Add(ctx context.Context, subject cart.Subject, input cart.LineInput) ([]cart.Line, error) {
	s.addCalled = true
	s.lastSubj = subject
	s.lastInput = input
	return s.lines, nil
}

func (s *stubControllerCartService) UpdateQuantity(ctx context.Context, subject cart.Subject, lineID string, quantity int) ([]cart.Line, error) {
	s.lastSubj = subject
	return s.lines, nil
}

func (s *stubControllerCartService) Remove(ctx context.Context, subject cart.Subject, lineID string) ([]cart.Line, error) {
	s.lastSubj = subject
	return s.lines, nil
}

func (s *stubControllerCartService) Clear(ctx context.Context, subject cart.Subject) error {
	s.lastSubj = subject
	return nil
}

func testStorefront() config.StorefrontConfig {
	return config.StorefrontConfig{ProductName: "Cloud Sweatpants"}
}

func decodeCartData(t *testing.T, body io.Reader) CartResponse {
	t.Helper()
	var envelope types.SuccessEnvelope
	if err := json.NewDecoder(body).Decode(&envelope); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	raw, err := json.Marshal(envelope.Data)
	if err != nil {
		t.Fatalf("remarshal data: %v", err)
	}
	var data CartResponse
	if err := json.Unmarshal(raw, &data); err != nil {
		t.Fatalf("decode cart response: %v", err)
	}
	return data
}

func TestCartAddGuestEchoesCartToken(t *testing.T) {
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	svc := &stubControllerCartService{}
	handler := CartAdd(svc, testStorefront(), logg)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/cart", strings.NewReader(`{"quantity":2,"size":"m","unit_price":"78.00"}`))
	req = req.WithContext(middleware.WithCartToken(req.Context(), "tok-123"))
	resp := httptest.NewRecorder()
	handler(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.Code, resp.Body.String())
	}
	if !svc.addCalled {
		t.Fatal("service Add was not called")
	}
	if svc.lastSubj.Authenticated() {
		t.Fatal("expected a guest subject")
	}
	if svc.lastInput.ProductName != "Cloud Sweatpants" {
		t.Fatalf("product name must default to the storefront product, got %q", svc.lastInput.ProductName)
	}
	if svc.lastInput.Size.String() != "M" {
		t.Fatalf("size must be normalized, got %q", svc.lastInput.Size)
	}

	data := decodeCartData(t, resp.Body)
	if data.CartToken != "tok-123" {
		t.Fatalf("guest responses must echo the cart token, got %q", data.CartToken)
	}
}

func TestCartAddRejectsUnknownSize(t *testing.T) {
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	svc := &stubControllerCartService{}
	handler := CartAdd(svc, testStorefront(), logg)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/cart", strings.NewReader(`{"quantity":1,"size":"XXXL"}`))
	req = req.WithContext(middleware.WithCartToken(req.Context(), "tok"))
	resp := httptest.NewRecorder()
	handler(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
	if svc.addCalled {
		t.Fatal("service must not be reached for an unknown size")
	}
}

func TestCartAddRejectsMissingQuantity(t *testing.T) {
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	svc := &stubControllerCartService{}
	handler := CartAdd(svc, testStorefront(), logg)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/cart", strings.NewReader(`{"size":"M"}`))
	req = req.WithContext(middleware.WithCartToken(req.Context(), "tok"))
	resp := httptest.NewRecorder()
	handler(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestCartListAuthenticatedOmitsCartToken(t *testing.T) {
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	svc := &stubControllerCartService{}
	handler := CartList(svc, logg)

	ctx := middleware.WithCartToken(context.Background(), "tok-123")
	ctx = middleware.WithUserID(ctx, uuid.NewString())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil).WithContext(ctx)
	resp := httptest.NewRecorder()
	handler(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if !svc.lastSubj.Authenticated() {
		t.Fatal("expected an authenticated subject")
	}
	data := decodeCartData(t, resp.Body)
	if data.CartToken != "" {
		t.Fatalf("authenticated responses must not echo a cart token, got %q", data.CartToken)
	}
}
