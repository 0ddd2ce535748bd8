package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Measurement holds one user's fit measurements, in inches.
type Measurement struct {
	UserID    uuid.UUID       `gorm:"column:user_id;type:uuid;primaryKey"`
	Waist     decimal.Decimal `gorm:"column:waist;type:numeric(5,2);not null"`
	Inseam    decimal.Decimal `gorm:"column:inseam;type:numeric(5,2);not null"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
