package sizing

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/davemorenodev/loungelab-backend/pkg/db/models"
	"github.com/davemorenodev/loungelab-backend/pkg/enums"
	pkgerrors "github.com/davemorenodev/loungelab-backend/pkg/errors"
)

// MeasurementRepository defines the persistence surface required by the service.
type MeasurementRepository interface {
	Upsert(ctx context.Context, userID uuid.UUID, waist, inseam decimal.Decimal) (*models.Measurement, error)
	FindByUser(ctx context.Context, userID uuid.UUID) (*models.Measurement, error)
}

// Recommendation pairs the recommended size with the measurements it came from.
type Recommendation struct {
	Size   enums.Size      `json:"size"`
	Waist  decimal.Decimal `json:"waist"`
	Inseam decimal.Decimal `json:"inseam"`
}

// Service exposes measurement storage and size recommendation.
type Service interface {
	SaveMeasurements(ctx context.Context, userID uuid.UUID, waist, inseam decimal.Decimal) (*Recommendation, error)
	Recommend(ctx context.Context, userID uuid.UUID) (*Recommendation, error)
}

type service struct {
	repo MeasurementRepository
}

// NewService builds a sizing service backed by the measurements repo.
func NewService(repo MeasurementRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("measurement repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) SaveMeasurements(ctx context.Context, userID uuid.UUID, waist, inseam decimal.Decimal) (*Recommendation, error) {
	size, err := Recommend(waist, inseam)
	if err != nil {
		return nil, err
	}

	if _, err := s.repo.Upsert(ctx, userID, waist, inseam); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "save measurements")
	}

	return &Recommendation{Size: size, Waist: waist, Inseam: inseam}, nil
}

func (s *service) Recommend(ctx context.Context, userID uuid.UUID) (*Recommendation, error) {
	measurement, err := s.repo.FindByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load measurements")
	}
	if measurement == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no measurements on file")
	}

	size, err := Recommend(measurement.Waist, measurement.Inseam)
	if err != nil {
		return nil, err
	}
	return &Recommendation{Size: size, Waist: measurement.Waist, Inseam: measurement.Inseam}, nil
}
