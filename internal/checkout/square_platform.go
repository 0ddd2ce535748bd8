package checkout

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	pkgerrors "github.com/davemorenodev/loungelab-backend/pkg/errors"
	"github.com/davemorenodev/loungelab-backend/pkg/square"
)

// SquarePlatform implements Platform over the Square catalog and payment-link
// APIs. Square builds the hosted checkout in a single call, so the session is
// held pending locally until AddLineItems supplies the order lines.
type SquarePlatform struct {
	client      *square.CheckoutClient
	redirectURL string

	mu      sync.Mutex
	pending map[string]struct{}
}

// NewSquarePlatform wires the adapter to the Square REST client.
func NewSquarePlatform(client *square.CheckoutClient, redirectURL string) (*SquarePlatform, error) {
	if client == nil {
		return nil, fmt.Errorf("square checkout client required")
	}
	return &SquarePlatform{
		client:      client,
		redirectURL: redirectURL,
		pending:     make(map[string]struct{}),
	}, nil
}

// FetchProduct loads the catalog item and requires at least one variation.
func (p *SquarePlatform) FetchProduct(ctx context.Context, productID string) (*Product, error) {
	sqProduct, err := p.client.FetchProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	variants := make([]Variant, 0, len(sqProduct.Variants))
	for _, v := range sqProduct.Variants {
		variants = append(variants, Variant{ID: v.ID, Name: v.Name})
	}
	return &Product{ID: sqProduct.ID, Name: sqProduct.Name, Variants: variants}, nil
}

// CreateCheckoutSession allocates a pending session. No Square call happens
// yet; the payment link cannot exist before its order lines.
func (p *SquarePlatform) CreateCheckoutSession(_ context.Context) (*Session, error) {
	id := uuid.NewString()
	p.mu.Lock()
	p.pending[id] = struct{}{}
	p.mu.Unlock()
	return &Session{ID: id}, nil
}

// AddLineItems creates the Square payment link for the pending session and
// returns it finalized, with the hosted checkout URL filled in.
func (p *SquarePlatform) AddLineItems(ctx context.Context, sessionID string, items []LineItem) (*Session, error) {
	p.mu.Lock()
	_, ok := p.pending[sessionID]
	if ok {
		delete(p.pending, sessionID)
	}
	p.mu.Unlock()
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "unknown checkout session")
	}

	linkItems := make([]square.PaymentLinkItem, 0, len(items))
	for _, item := range items {
		linkItem := square.PaymentLinkItem{
			CatalogObjectID: item.VariantID,
			Quantity:        item.Quantity,
			Metadata:        item.Attributes,
		}
		if size, ok := item.Attributes["Size"]; ok {
			linkItem.Note = "Size: " + size
		}
		linkItems = append(linkItems, linkItem)
	}

	link, err := p.client.CreatePaymentLink(ctx, square.PaymentLinkParams{
		IdempotencyKey: sessionID,
		RedirectURL:    p.redirectURL,
		Items:          linkItems,
	})
	if err != nil {
		return nil, err
	}

	return &Session{ID: link.ID, WebURL: link.URL}, nil
}
