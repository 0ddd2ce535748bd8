package reconcile

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/multierr"

	"github.com/davemorenodev/loungelab-backend/internal/cart"
	"github.com/davemorenodev/loungelab-backend/internal/identity"
	"github.com/davemorenodev/loungelab-backend/pkg/logger"
)

// Controller merges guest carts into account carts when a shopper signs in.
// It owns an explicit previous-state map keyed by cart token, so the
// merge-once decision never depends on anything outside this package: a
// sign-in seen while the token's last known state was not Authenticated
// triggers exactly one merge, and token refreshes never do.
type Controller struct {
	guest  cart.GuestCartStore
	repo   cart.AccountRepository
	logger *logger.Logger

	mu   sync.Mutex
	prev map[string]identity.State
}

// NewController builds the reconciliation controller.
func NewController(guest cart.GuestCartStore, repo cart.AccountRepository, logg *logger.Logger) (*Controller, error) {
	if guest == nil {
		return nil, fmt.Errorf("guest cart store required")
	}
	if repo == nil {
		return nil, fmt.Errorf("account cart repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Controller{
		guest:  guest,
		repo:   repo,
		logger: logg,
		prev:   make(map[string]identity.State),
	}, nil
}

// Subscribe attaches the controller to the identity broadcaster.
func (c *Controller) Subscribe(broadcaster *identity.Broadcaster) {
	broadcaster.Subscribe(c.handleTransition)
}

func (c *Controller) handleTransition(ctx context.Context, transition identity.Transition) {
	token := transition.CartToken
	if token == "" {
		return
	}

	c.mu.Lock()
	previous, seen := c.prev[token]
	if !seen {
		previous = identity.StateUnknown
	}
	next := transition.State()
	c.prev[token] = next
	c.mu.Unlock()

	if transition.Event != identity.EventSignedIn {
		return
	}
	if previous == identity.StateAuthenticated {
		return
	}
	if transition.UserID == nil {
		return
	}

	c.merge(ctx, token, transition)
}

// merge moves every guest line into the account cart in its original order,
// then clears the guest slot. A failing line is logged and skipped; the
// remaining lines still transfer and the slot is still cleared.
func (c *Controller) merge(ctx context.Context, token string, transition identity.Transition) {
	lines := c.guest.List(ctx, token)
	if len(lines) == 0 {
		return
	}

	userID := *transition.UserID
	var failures error
	transferred := 0
	for _, line := range lines {
		if err := c.insertLine(ctx, transition, line); err != nil {
			failures = multierr.Append(failures, fmt.Errorf("line %s: %w", line.LineID, err))
			continue
		}
		transferred++
	}

	c.guest.Clear(ctx, token)

	logCtx := c.logger.WithCartToken(ctx, token)
	logCtx = c.logger.WithUserID(logCtx, userID.String())
	logCtx = c.logger.WithField(logCtx, "transferred", transferred)
	if failures != nil {
		logCtx = c.logger.WithField(logCtx, "dropped", len(lines)-transferred)
		c.logger.Warn(logCtx, "guest cart merged with dropped lines")
		c.logger.Error(logCtx, "guest cart merge failures", failures)
		return
	}
	c.logger.Info(logCtx, "guest cart merged")
}

func (c *Controller) insertLine(ctx context.Context, transition identity.Transition, line cart.Line) error {
	userID := *transition.UserID
	existing, err := c.repo.FindByUserProductSize(ctx, userID, line.ProductName, line.Size)
	if err != nil {
		return err
	}
	if existing != nil {
		return c.repo.UpdateQuantity(ctx, userID, existing.ID, existing.Quantity+line.Quantity)
	}
	_, err = c.repo.Insert(ctx, cart.CreateItemDTO{
		UserID:      userID,
		ProductName: line.ProductName,
		UnitPrice:   line.UnitPrice,
		Quantity:    line.Quantity,
		Size:        line.Size,
	})
	return err
}
