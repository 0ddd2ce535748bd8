package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/davemorenodev/loungelab-backend/api/middleware"
	"github.com/davemorenodev/loungelab-backend/api/responses"
	"github.com/davemorenodev/loungelab-backend/api/validators"
	"github.com/davemorenodev/loungelab-backend/internal/cart"
	"github.com/davemorenodev/loungelab-backend/pkg/config"
	"github.com/davemorenodev/loungelab-backend/pkg/enums"
	pkgerrors "github.com/davemorenodev/loungelab-backend/pkg/errors"
	"github.com/davemorenodev/loungelab-backend/pkg/logger"
)

// AddCartItemRequest is the payload for adding a line to the active cart.
// ProductName defaults to the storefront's single product when omitted.
type AddCartItemRequest struct {
	ProductName string          `json:"product_name,omitempty"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    int             `json:"quantity" validate:"required,min=1"`
	Size        string          `json:"size" validate:"required"`
}

// UpdateCartItemRequest carries the new quantity for a cart line.
type UpdateCartItemRequest struct {
	Quantity int `json:"quantity" validate:"required"`
}

// CartResponse is the envelope data for every cart endpoint.
type CartResponse struct {
	Items     []cart.Line `json:"items"`
	CartToken string      `json:"cart_token,omitempty"`
}

func cartResponse(subject cart.Subject, items []cart.Line) CartResponse {
	resp := CartResponse{Items: items}
	if !subject.Authenticated() {
		resp.CartToken = subject.CartToken
	}
	return resp
}

// CartList returns the caller's active cart.
func CartList(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		subject := middleware.SubjectFromContext(r.Context())
		items, err := svc.List(r.Context(), subject)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, cartResponse(subject, items))
	}
}

// CartAdd appends a line to the caller's active cart.
func CartAdd(svc cart.Service, storefront config.StorefrontConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body AddCartItemRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		size, err := enums.ParseSize(strings.ToUpper(strings.TrimSpace(body.Size)))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "unknown size"))
			return
		}

		productName := strings.TrimSpace(body.ProductName)
		if productName == "" {
			productName = storefront.ProductName
		}

		subject := middleware.SubjectFromContext(r.Context())
		items, err := svc.Add(r.Context(), subject, cart.LineInput{
			ProductName: productName,
			UnitPrice:   body.UnitPrice,
			Quantity:    body.Quantity,
			Size:        size,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, cartResponse(subject, items))
	}
}

// CartUpdateQuantity sets the quantity of one cart line.
func CartUpdateQuantity(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lineID := chi.URLParam(r, "lineID")
		if lineID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "cart line ID is required"))
			return
		}

		var body UpdateCartItemRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		subject := middleware.SubjectFromContext(r.Context())
		items, err := svc.UpdateQuantity(r.Context(), subject, lineID, body.Quantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, cartResponse(subject, items))
	}
}

// CartRemove deletes one cart line.
func CartRemove(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lineID := chi.URLParam(r, "lineID")
		if lineID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "cart line ID is required"))
			return
		}

		subject := middleware.SubjectFromContext(r.Context())
		items, err := svc.Remove(r.Context(), subject, lineID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, cartResponse(subject, items))
	}
}

// CartClear empties the caller's active cart.
func CartClear(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		subject := middleware.SubjectFromContext(r.Context())
		if err := svc.Clear(r.Context(), subject); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, cartResponse(subject, []cart.Line{}))
	}
}
