package identity

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/davemorenodev/loungelab-backend/pkg/logger"
)

var errBroadcasterLogger = errors.New("identity broadcaster requires a logger")

// Handler receives auth transitions. Handlers run synchronously in
// subscription order so downstream work observes a deterministic sequence.
type Handler func(ctx context.Context, transition Transition)

// Broadcaster fans auth transitions out to in-process subscribers.
type Broadcaster struct {
	mu       sync.RWMutex
	handlers []Handler
	logger   *logger.Logger
}

// NewBroadcaster constructs an empty broadcaster.
func NewBroadcaster(logg *logger.Logger) (*Broadcaster, error) {
	if logg == nil {
		return nil, errBroadcasterLogger
	}
	return &Broadcaster{logger: logg}, nil
}

// Subscribe registers a handler for all future transitions.
func (b *Broadcaster) Subscribe(handler Handler) {
	if handler == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = append(b.handlers, handler)
}

// Publish delivers the transition to every subscriber. A panicking handler is
// contained and logged so the remaining subscribers still run.
func (b *Broadcaster) Publish(ctx context.Context, transition Transition) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers))
	copy(handlers, b.handlers)
	b.mu.RUnlock()

	for _, handler := range handlers {
		b.deliver(ctx, handler, transition)
	}
}

func (b *Broadcaster) deliver(ctx context.Context, handler Handler, transition Transition) {
	defer func() {
		if rec := recover(); rec != nil {
			logCtx := b.logger.WithField(ctx, "event", string(transition.Event))
			b.logger.Error(logCtx, "identity transition handler panicked", fmt.Errorf("%v", rec))
		}
	}()
	handler(ctx, transition)
}
