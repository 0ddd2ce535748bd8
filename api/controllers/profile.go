package controllers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/davemorenodev/loungelab-backend/api/middleware"
	"github.com/davemorenodev/loungelab-backend/api/responses"
	"github.com/davemorenodev/loungelab-backend/api/validators"
	"github.com/davemorenodev/loungelab-backend/internal/sizing"
	pkgerrors "github.com/davemorenodev/loungelab-backend/pkg/errors"
	"github.com/davemorenodev/loungelab-backend/pkg/logger"
)

// MeasurementsRequest carries the caller's fit measurements, in inches.
type MeasurementsRequest struct {
	Waist  decimal.Decimal `json:"waist" validate:"required"`
	Inseam decimal.Decimal `json:"inseam" validate:"required"`
}

// ProfileMeasurements upserts the caller's measurements and returns the
// resulting size recommendation.
func ProfileMeasurements(svc sizing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := uuid.Parse(middleware.UserIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
			return
		}

		var body MeasurementsRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.SaveMeasurements(r.Context(), userID, body.Waist, body.Inseam)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

// ProfileSizeRecommendation returns the size matching the caller's stored
// measurements.
func ProfileSizeRecommendation(svc sizing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := uuid.Parse(middleware.UserIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
			return
		}

		result, err := svc.Recommend(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}
