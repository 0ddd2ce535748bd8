package sizing

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/davemorenodev/loungelab-backend/pkg/db/models"
)

// Repository exposes measurement persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a measurements repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Upsert stores the user's measurements, replacing any previous row.
func (r *Repository) Upsert(ctx context.Context, userID uuid.UUID, waist, inseam decimal.Decimal) (*models.Measurement, error) {
	measurement := &models.Measurement{
		UserID: userID,
		Waist:  waist,
		Inseam: inseam,
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"waist", "inseam", "updated_at"}),
		}).
		Create(measurement).Error
	if err != nil {
		return nil, err
	}
	return measurement, nil
}

// FindByUser loads the user's measurements, or nil when none are stored.
func (r *Repository) FindByUser(ctx context.Context, userID uuid.UUID) (*models.Measurement, error) {
	var measurement models.Measurement
	err := r.db.WithContext(ctx).First(&measurement, "user_id = ?", userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &measurement, nil
}
