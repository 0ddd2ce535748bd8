package cart

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/davemorenodev/loungelab-backend/pkg/db/models"
	"github.com/davemorenodev/loungelab-backend/pkg/enums"
)

// CreateItemDTO holds the data required to persist one account cart row.
type CreateItemDTO struct {
	UserID      uuid.UUID
	ProductName string
	UnitPrice   decimal.Decimal
	Quantity    int
	Size        enums.Size
}

func (c CreateItemDTO) toModel() *models.CartItem {
	return &models.CartItem{
		UserID:      c.UserID,
		ProductName: c.ProductName,
		UnitPrice:   c.UnitPrice,
		Quantity:    c.Quantity,
		Size:        c.Size,
	}
}

// Repository exposes account cart persistence operations. Every query is
// scoped by the owning user id.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a cart repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// ListByUser returns the user's cart rows in insertion order.
func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.CartItem, error) {
	var items []models.CartItem
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// Insert persists a new cart row and returns it with the server-assigned id.
func (r *Repository) Insert(ctx context.Context, dto CreateItemDTO) (*models.CartItem, error) {
	item := dto.toModel()
	if err := r.db.WithContext(ctx).Create(item).Error; err != nil {
		return nil, err
	}
	return item, nil
}

// FindByUserProductSize locates the row matching the dedup key, or nil when
// the user has no such line.
func (r *Repository) FindByUserProductSize(ctx context.Context, userID uuid.UUID, productName string, size enums.Size) (*models.CartItem, error) {
	var item models.CartItem
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND product_name = ? AND size = ?", userID, productName, size).
		First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

// UpdateQuantity sets the quantity of the user's row.
func (r *Repository) UpdateQuantity(ctx context.Context, userID, rowID uuid.UUID, quantity int) error {
	return r.db.WithContext(ctx).
		Model(&models.CartItem{}).
		Where("id = ? AND user_id = ?", rowID, userID).
		UpdateColumn("quantity", quantity).Error
}

// Remove deletes the user's row. Deleting an absent row is not an error.
func (r *Repository) Remove(ctx context.Context, userID, rowID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", rowID, userID).
		Delete(&models.CartItem{}).Error
}

// DeleteByUser empties the user's cart.
func (r *Repository) DeleteByUser(ctx context.Context, userID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&models.CartItem{}).Error
}
