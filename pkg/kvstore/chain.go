package kvstore

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/davemorenodev/loungelab-backend/pkg/logger"
)

// Chain tries its stores in fixed priority order and degrades stickily: once a
// store fails with an infrastructure error, the chain stays on the next store
// for the rest of the process lifetime. Degradation is logged at warn and never
// surfaced to the caller as long as some store still works.
type Chain struct {
	mu     sync.Mutex
	stores []Store
	active int
	logg   *logger.Logger
}

// NewChain builds a fallback chain over the provided stores, first is primary.
func NewChain(logg *logger.Logger, stores ...Store) (*Chain, error) {
	if len(stores) == 0 {
		return nil, fmt.Errorf("at least one store is required")
	}
	for _, s := range stores {
		if s == nil {
			return nil, fmt.Errorf("nil store in chain")
		}
	}
	return &Chain{stores: stores, logg: logg}, nil
}

// Name identifies the currently active store.
func (c *Chain) Name() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stores[c.active].Name()
}

func (c *Chain) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := c.attempt(ctx, func(s Store) error {
		v, err := s.Get(ctx, key)
		if err != nil {
			return err
		}
		value = v
		return nil
	})
	return value, err
}

func (c *Chain) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return c.attempt(ctx, func(s Store) error {
		return s.Set(ctx, key, value, ttl)
	})
}

func (c *Chain) Del(ctx context.Context, key string) error {
	return c.attempt(ctx, func(s Store) error {
		return s.Del(ctx, key)
	})
}

// attempt runs op against the active store, advancing down the chain on
// infrastructure failures. ErrNotFound is returned as-is without advancing.
func (c *Chain) attempt(ctx context.Context, op func(Store) error) error {
	c.mu.Lock()
	start := c.active
	c.mu.Unlock()

	var lastErr error
	for i := start; i < len(c.stores); i++ {
		store := c.stores[i]
		err := op(store)
		if err == nil || errors.Is(err, ErrNotFound) {
			c.promote(ctx, i, lastErr)
			return err
		}
		lastErr = err
	}
	return lastErr
}

func (c *Chain) promote(ctx context.Context, index int, cause error) {
	c.mu.Lock()
	changed := index != c.active
	if changed {
		c.active = index
	}
	name := c.stores[index].Name()
	c.mu.Unlock()

	if changed && c.logg != nil {
		fields := map[string]any{"store": name}
		if cause != nil {
			fields["cause"] = cause.Error()
		}
		c.logg.Warn(c.logg.WithFields(ctx, fields), "kvstore degraded to fallback store")
	}
}
