package cart

import (
	"context"

	"github.com/google/uuid"

	"github.com/davemorenodev/loungelab-backend/pkg/db/models"
	"github.com/davemorenodev/loungelab-backend/pkg/enums"
)

// AccountRepository defines the persistence surface required for account carts.
type AccountRepository interface {
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.CartItem, error)
	Insert(ctx context.Context, dto CreateItemDTO) (*models.CartItem, error)
	FindByUserProductSize(ctx context.Context, userID uuid.UUID, productName string, size enums.Size) (*models.CartItem, error)
	UpdateQuantity(ctx context.Context, userID, rowID uuid.UUID, quantity int) error
	Remove(ctx context.Context, userID, rowID uuid.UUID) error
	DeleteByUser(ctx context.Context, userID uuid.UUID) error
}

// GuestCartStore defines the guest cart surface required by the cart service
// and the reconciliation controller.
type GuestCartStore interface {
	List(ctx context.Context, token string) []Line
	Add(ctx context.Context, token string, input LineInput) ([]Line, error)
	UpdateQuantity(ctx context.Context, token, lineID string, quantity int) []Line
	Remove(ctx context.Context, token, lineID string) []Line
	Clear(ctx context.Context, token string)
}
