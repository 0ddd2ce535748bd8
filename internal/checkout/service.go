package checkout

import (
	"context"
	"fmt"
	"strings"

	"github.com/davemorenodev/loungelab-backend/internal/cart"
	pkgerrors "github.com/davemorenodev/loungelab-backend/pkg/errors"
	"github.com/davemorenodev/loungelab-backend/pkg/logger"
)

// Result carries the hosted checkout the shopper is redirected to.
type Result struct {
	SessionID   string `json:"session_id"`
	CheckoutURL string `json:"checkout_url"`
}

// Service normalizes the active cart into platform line items and hands the
// shopper off to the hosted checkout.
type Service interface {
	Execute(ctx context.Context, subject cart.Subject) (*Result, error)
}

type service struct {
	carts     cart.Service
	platform  Platform
	productID string
	logger    *logger.Logger
}

// NewService builds the checkout service.
func NewService(carts cart.Service, platform Platform, productID string, logg *logger.Logger) (Service, error) {
	if carts == nil {
		return nil, fmt.Errorf("cart service required")
	}
	if platform == nil {
		return nil, fmt.Errorf("checkout platform required")
	}
	if strings.TrimSpace(productID) == "" {
		return nil, fmt.Errorf("storefront product ID required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{carts: carts, platform: platform, productID: productID, logger: logg}, nil
}

// Execute reads the subject's active cart, one store only, and creates the
// hosted checkout. Platform failures surface to the caller untouched; there
// is no retry.
func (s *service) Execute(ctx context.Context, subject cart.Subject) (*Result, error) {
	lines, err := s.carts.List(ctx, subject)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	product, err := s.platform.FetchProduct(ctx, s.productID)
	if err != nil {
		return nil, err
	}
	if len(product.Variants) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "product has no purchasable variants")
	}

	items := make([]LineItem, 0, len(lines))
	for _, line := range lines {
		items = append(items, LineItem{
			VariantID: variantForSize(product, line.Size.String()),
			Quantity:  line.Quantity,
			Attributes: map[string]string{
				"Size": line.Size.String(),
			},
		})
	}

	session, err := s.platform.CreateCheckoutSession(ctx)
	if err != nil {
		return nil, err
	}
	finalized, err := s.platform.AddLineItems(ctx, session.ID, items)
	if err != nil {
		return nil, err
	}

	logCtx := s.logger.WithField(ctx, "session_id", finalized.ID)
	s.logger.Info(logCtx, "checkout session created")

	return &Result{SessionID: finalized.ID, CheckoutURL: finalized.WebURL}, nil
}

// variantForSize matches a variant by name, falling back to the first variant
// when the platform has no size-named variation.
func variantForSize(product *Product, size string) string {
	for _, variant := range product.Variants {
		if strings.EqualFold(variant.Name, size) {
			return variant.ID
		}
	}
	return product.Variants[0].ID
}
