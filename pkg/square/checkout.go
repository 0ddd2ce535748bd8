package square

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	pkgerrors "github.com/davemorenodev/loungelab-backend/pkg/errors"
)

const responseBodyReadLimit int64 = 2048

var errSquareClientRequired = errors.New("square client is required")

// CheckoutClient calls the Square catalog and payment-link REST endpoints
// that the SDK wrapper does not cover.
type CheckoutClient struct {
	httpClient  *http.Client
	baseURL     string
	accessToken string
	locationID  string
}

// CheckoutOption configures optional checkout client behavior.
type CheckoutOption func(*CheckoutClient)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) CheckoutOption {
	return func(c *CheckoutClient) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithCheckoutBaseURL overrides the REST base URL, mainly for tests.
func WithCheckoutBaseURL(baseURL string) CheckoutOption {
	return func(c *CheckoutClient) {
		trimmed := strings.TrimSpace(baseURL)
		if trimmed != "" {
			c.baseURL = trimmed
		}
	}
}

// NewCheckoutClient builds the REST checkout client sharing the wrapper's credentials.
func NewCheckoutClient(base *Client, locationID string, opts ...CheckoutOption) (*CheckoutClient, error) {
	if base == nil {
		return nil, errSquareClientRequired
	}

	client := &CheckoutClient{
		httpClient:  &http.Client{Timeout: 15 * time.Second},
		baseURL:     base.BaseURL(),
		accessToken: base.AccessToken(),
		locationID:  strings.TrimSpace(locationID),
	}

	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}

	if client.httpClient == nil {
		client.httpClient = &http.Client{Timeout: 15 * time.Second}
	}

	return client, nil
}

// Product is the normalized catalog item returned by FetchProduct.
type Product struct {
	ID       string
	Name     string
	Variants []Variant
}

// Variant is a purchasable variation of a catalog item.
type Variant struct {
	ID   string
	Name string
}

// PaymentLinkItem is one order line sent to the payment-link API.
type PaymentLinkItem struct {
	CatalogObjectID string
	Quantity        int
	Note            string
	Metadata        map[string]string
}

// PaymentLink holds the hosted checkout created by Square.
type PaymentLink struct {
	ID      string
	URL     string
	OrderID string
}

// PaymentLinkParams groups the data needed to create a payment link.
type PaymentLinkParams struct {
	IdempotencyKey string
	RedirectURL    string
	Items          []PaymentLinkItem
}

// FetchProduct loads a catalog item and its variations by catalog object ID.
func (c *CheckoutClient) FetchProduct(ctx context.Context, objectID string) (*Product, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "square checkout client not configured")
	}
	trimmed := strings.TrimSpace(objectID)
	if trimmed == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "catalog object ID is required")
	}

	endpoint := fmt.Sprintf("%s/v2/catalog/object/%s", strings.TrimRight(c.baseURL, "/"), url.PathEscape(trimmed))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build catalog request")
	}
	c.setHeaders(httpReq)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute catalog request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, c.statusError(resp, "catalog request failed")
	}

	var apiResp struct {
		Object struct {
			ID       string `json:"id"`
			ItemData struct {
				Name       string `json:"name"`
				Variations []struct {
					ID                string `json:"id"`
					ItemVariationData struct {
						Name string `json:"name"`
					} `json:"item_variation_data"`
				} `json:"variations"`
			} `json:"item_data"`
		} `json:"object"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode catalog response")
	}

	variants := make([]Variant, 0, len(apiResp.Object.ItemData.Variations))
	for _, variation := range apiResp.Object.ItemData.Variations {
		variants = append(variants, Variant{
			ID:   variation.ID,
			Name: variation.ItemVariationData.Name,
		})
	}
	if len(variants) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "catalog item has no purchasable variations")
	}

	return &Product{
		ID:       apiResp.Object.ID,
		Name:     apiResp.Object.ItemData.Name,
		Variants: variants,
	}, nil
}

// CreatePaymentLink builds a Square order from the items and returns the hosted checkout.
func (c *CheckoutClient) CreatePaymentLink(ctx context.Context, params PaymentLinkParams) (*PaymentLink, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "square checkout client not configured")
	}
	if len(params.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one line item is required")
	}

	type lineItemPayload struct {
		Quantity        string            `json:"quantity"`
		CatalogObjectID string            `json:"catalog_object_id"`
		Note            string            `json:"note,omitempty"`
		Metadata        map[string]string `json:"metadata,omitempty"`
	}

	lineItems := make([]lineItemPayload, 0, len(params.Items))
	for _, item := range params.Items {
		if strings.TrimSpace(item.CatalogObjectID) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "line item catalog object ID is required")
		}
		if item.Quantity < 1 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "line item quantity must be at least 1")
		}
		lineItems = append(lineItems, lineItemPayload{
			Quantity:        strconv.Itoa(item.Quantity),
			CatalogObjectID: item.CatalogObjectID,
			Note:            item.Note,
			Metadata:        item.Metadata,
		})
	}

	body := map[string]any{
		"idempotency_key": params.IdempotencyKey,
		"order": map[string]any{
			"location_id": c.locationID,
			"line_items":  lineItems,
		},
	}
	if trimmed := strings.TrimSpace(params.RedirectURL); trimmed != "" {
		body["checkout_options"] = map[string]any{"redirect_url": trimmed}
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "marshal payment link request")
	}

	endpoint := fmt.Sprintf("%s/v2/online-checkout/payment-links", strings.TrimRight(c.baseURL, "/"))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build payment link request")
	}
	c.setHeaders(httpReq)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute payment link request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, c.statusError(resp, "payment link request failed")
	}

	var apiResp struct {
		PaymentLink struct {
			ID      string `json:"id"`
			URL     string `json:"url"`
			OrderID string `json:"order_id"`
		} `json:"payment_link"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode payment link response")
	}
	if apiResp.PaymentLink.URL == "" {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "payment link response missing checkout URL")
	}

	return &PaymentLink{
		ID:      apiResp.PaymentLink.ID,
		URL:     apiResp.PaymentLink.URL,
		OrderID: apiResp.PaymentLink.OrderID,
	}, nil
}

func (c *CheckoutClient) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	req.Header.Set("Content-Type", "application/json")
}

func (c *CheckoutClient) statusError(resp *http.Response, message string) error {
	msg, _ := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
	code := domainCodeForStatus(resp.StatusCode)
	return pkgerrors.Wrap(code, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))), message)
}
