package checkout

import "context"

// Product is the storefront's catalog item as the platform reports it.
type Product struct {
	ID       string
	Name     string
	Variants []Variant
}

// Variant is one purchasable variation of the product.
type Variant struct {
	ID   string
	Name string
}

// LineItem is a normalized order line handed to the platform.
type LineItem struct {
	VariantID  string
	Quantity   int
	Attributes map[string]string
}

// Session is the platform-hosted checkout.
type Session struct {
	ID     string
	WebURL string
}

// Platform abstracts the hosted-checkout provider. FetchProduct must return a
// product with at least one variant or fail. AddLineItems returns the session
// in its updated form; the redirect URL is only guaranteed there.
type Platform interface {
	FetchProduct(ctx context.Context, productID string) (*Product, error)
	CreateCheckoutSession(ctx context.Context) (*Session, error)
	AddLineItems(ctx context.Context, sessionID string, items []LineItem) (*Session, error)
}
