package kvstore

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound signals the key has no value in the consulted store. It is a
// normal miss, never a reason to fall through to the next store.
var ErrNotFound = errors.New("kvstore: key not found")

// Store is a synchronous key→string slot. Implementations may fail for
// infrastructure reasons (connection lost, disk full, permissions); the chain
// treats any non-ErrNotFound error as that store being unavailable.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Del(ctx context.Context, key string) error
	Name() string
}
