package cart

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/davemorenodev/loungelab-backend/pkg/db/models"
	pkgerrors "github.com/davemorenodev/loungelab-backend/pkg/errors"
	"github.com/davemorenodev/loungelab-backend/pkg/logger"
)

// Subject identifies the shopper a cart operation acts for. A nil UserID means
// the request is anonymous and CartToken selects the guest slot.
type Subject struct {
	UserID    *uuid.UUID
	CartToken string
}

// Authenticated reports whether the subject carries an account identity.
func (s Subject) Authenticated() bool {
	return s.UserID != nil
}

// Service exposes the unified cart surface. Every call touches exactly one of
// the two stores, chosen by the subject's identity; merging between the stores
// belongs to the reconciliation controller, never here.
type Service interface {
	List(ctx context.Context, subject Subject) ([]Line, error)
	Add(ctx context.Context, subject Subject, input LineInput) ([]Line, error)
	UpdateQuantity(ctx context.Context, subject Subject, lineID string, quantity int) ([]Line, error)
	Remove(ctx context.Context, subject Subject, lineID string) ([]Line, error)
	Clear(ctx context.Context, subject Subject) error
}

type service struct {
	guest  GuestCartStore
	repo   AccountRepository
	logger *logger.Logger
}

// NewService builds the cart service backed by both stores.
func NewService(guest GuestCartStore, repo AccountRepository, logg *logger.Logger) (Service, error) {
	if guest == nil {
		return nil, fmt.Errorf("guest cart store required")
	}
	if repo == nil {
		return nil, fmt.Errorf("account cart repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{guest: guest, repo: repo, logger: logg}, nil
}

func (s *service) List(ctx context.Context, subject Subject) ([]Line, error) {
	if !subject.Authenticated() {
		return s.guest.List(ctx, subject.CartToken), nil
	}

	items, err := s.repo.ListByUser(ctx, *subject.UserID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list cart items")
	}
	return linesFromModels(items), nil
}

func (s *service) Add(ctx context.Context, subject Subject, input LineInput) ([]Line, error) {
	if !subject.Authenticated() {
		return s.guest.Add(ctx, subject.CartToken, input)
	}

	if input.Quantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}
	if !input.Size.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown size")
	}

	userID := *subject.UserID
	existing, err := s.repo.FindByUserProductSize(ctx, userID, input.ProductName, input.Size)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "look up cart line")
	}
	if existing != nil {
		if err := s.repo.UpdateQuantity(ctx, userID, existing.ID, existing.Quantity+input.Quantity); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "bump cart line quantity")
		}
	} else {
		_, err := s.repo.Insert(ctx, CreateItemDTO{
			UserID:      userID,
			ProductName: input.ProductName,
			UnitPrice:   input.UnitPrice,
			Quantity:    input.Quantity,
			Size:        input.Size,
		})
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "insert cart line")
		}
	}

	return s.List(ctx, subject)
}

func (s *service) UpdateQuantity(ctx context.Context, subject Subject, lineID string, quantity int) ([]Line, error) {
	if !subject.Authenticated() {
		return s.guest.UpdateQuantity(ctx, subject.CartToken, lineID, quantity), nil
	}

	if quantity < 1 {
		s.logger.Debug(ctx, "ignoring cart quantity below 1")
		return s.List(ctx, subject)
	}

	rowID, err := uuid.Parse(lineID)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid cart line ID")
	}
	if err := s.repo.UpdateQuantity(ctx, *subject.UserID, rowID, quantity); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update cart line quantity")
	}
	return s.List(ctx, subject)
}

func (s *service) Remove(ctx context.Context, subject Subject, lineID string) ([]Line, error) {
	if !subject.Authenticated() {
		return s.guest.Remove(ctx, subject.CartToken, lineID), nil
	}

	rowID, err := uuid.Parse(lineID)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid cart line ID")
	}
	if err := s.repo.Remove(ctx, *subject.UserID, rowID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "remove cart line")
	}
	return s.List(ctx, subject)
}

func (s *service) Clear(ctx context.Context, subject Subject) error {
	if !subject.Authenticated() {
		s.guest.Clear(ctx, subject.CartToken)
		return nil
	}

	if err := s.repo.DeleteByUser(ctx, *subject.UserID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "clear cart")
	}
	return nil
}

func linesFromModels(items []models.CartItem) []Line {
	lines := make([]Line, 0, len(items))
	for _, item := range items {
		lines = append(lines, Line{
			LineID:      item.ID.String(),
			ProductName: item.ProductName,
			UnitPrice:   item.UnitPrice,
			Quantity:    item.Quantity,
			Size:        item.Size,
			AddedAt:     item.CreatedAt,
		})
	}
	return lines
}
