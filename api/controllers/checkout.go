package controllers

import (
	"net/http"

	"github.com/davemorenodev/loungelab-backend/api/middleware"
	"github.com/davemorenodev/loungelab-backend/api/responses"
	"github.com/davemorenodev/loungelab-backend/internal/checkout"
	pkgerrors "github.com/davemorenodev/loungelab-backend/pkg/errors"
	"github.com/davemorenodev/loungelab-backend/pkg/logger"
)

// Checkout hands the caller's active cart off to the hosted checkout and
// returns the redirect URL.
func Checkout(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		subject := middleware.SubjectFromContext(r.Context())
		result, err := svc.Execute(r.Context(), subject)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}
