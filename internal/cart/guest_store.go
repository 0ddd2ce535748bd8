package cart

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	pkgerrors "github.com/davemorenodev/loungelab-backend/pkg/errors"
	"github.com/davemorenodev/loungelab-backend/pkg/kvstore"
	"github.com/davemorenodev/loungelab-backend/pkg/logger"
)

const defaultGuestCartTTL = 30 * 24 * time.Hour

var (
	errGuestStoreKV     = errors.New("guest cart store requires a kv store")
	errGuestStoreLogger = errors.New("guest cart store requires a logger")
)

// GuestStore keeps anonymous carts in the kv fallback chain, one JSON-encoded
// slot per cart token. Storage failures are absorbed and logged; callers only
// ever see validation errors.
type GuestStore struct {
	kv       kvstore.Store
	ttl      time.Duration
	maxLines int
	logger   *logger.Logger
}

// NewGuestStore wires the guest cart store to its backing kv chain.
func NewGuestStore(kv kvstore.Store, ttl time.Duration, maxLines int, logg *logger.Logger) (*GuestStore, error) {
	if kv == nil {
		return nil, errGuestStoreKV
	}
	if logg == nil {
		return nil, errGuestStoreLogger
	}
	if ttl <= 0 {
		ttl = defaultGuestCartTTL
	}
	return &GuestStore{kv: kv, ttl: ttl, maxLines: maxLines, logger: logg}, nil
}

// List returns the cart lines in insertion order. A missing slot or a storage
// failure both read as an empty cart.
func (s *GuestStore) List(ctx context.Context, token string) []Line {
	return s.load(ctx, token)
}

// Add appends a line, or bumps the quantity of the existing line with the same
// product name and size.
func (s *GuestStore) Add(ctx context.Context, token string, input LineInput) ([]Line, error) {
	if err := s.validate(input); err != nil {
		return nil, err
	}

	lines := s.load(ctx, token)
	merged := false
	for i := range lines {
		if lines[i].ProductName == input.ProductName && lines[i].Size == input.Size {
			lines[i].Quantity += input.Quantity
			merged = true
			break
		}
	}
	if !merged {
		if s.maxLines > 0 && len(lines) >= s.maxLines {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart line limit reached")
		}
		lines = append(lines, Line{
			LineID:      NewLineID(),
			ProductName: input.ProductName,
			UnitPrice:   input.UnitPrice,
			Quantity:    input.Quantity,
			Size:        input.Size,
			AddedAt:     time.Now().UTC(),
		})
	}

	s.save(ctx, token, lines)
	return lines, nil
}

// UpdateQuantity sets the quantity of the identified line. Quantities below 1
// and unknown line ids are silent no-ops.
func (s *GuestStore) UpdateQuantity(ctx context.Context, token, lineID string, quantity int) []Line {
	lines := s.load(ctx, token)
	if quantity < 1 {
		s.logger.Debug(s.logger.WithCartToken(ctx, token), "ignoring cart quantity below 1")
		return lines
	}

	for i := range lines {
		if lines[i].LineID == lineID {
			lines[i].Quantity = quantity
			s.save(ctx, token, lines)
			break
		}
	}
	return lines
}

// Remove deletes the identified line. Unknown line ids are a no-op.
func (s *GuestStore) Remove(ctx context.Context, token, lineID string) []Line {
	lines := s.load(ctx, token)
	for i := range lines {
		if lines[i].LineID == lineID {
			lines = append(lines[:i], lines[i+1:]...)
			s.save(ctx, token, lines)
			break
		}
	}
	return lines
}

// Clear drops the whole cart slot.
func (s *GuestStore) Clear(ctx context.Context, token string) {
	if strings.TrimSpace(token) == "" {
		return
	}
	if err := s.kv.Del(ctx, token); err != nil && !errors.Is(err, kvstore.ErrNotFound) {
		s.warn(ctx, token, "clear guest cart failed", err)
	}
}

func (s *GuestStore) validate(input LineInput) error {
	if strings.TrimSpace(input.ProductName) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "product name is required")
	}
	if input.Quantity < 1 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}
	if !input.Size.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "unknown size")
	}
	if input.UnitPrice.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "unit price cannot be negative")
	}
	return nil
}

func (s *GuestStore) load(ctx context.Context, token string) []Line {
	if strings.TrimSpace(token) == "" {
		return []Line{}
	}

	raw, err := s.kv.Get(ctx, token)
	if err != nil {
		if !errors.Is(err, kvstore.ErrNotFound) {
			s.warn(ctx, token, "read guest cart failed", err)
		}
		return []Line{}
	}

	var lines []Line
	if err := json.Unmarshal([]byte(raw), &lines); err != nil {
		s.warn(ctx, token, "corrupt guest cart slot discarded", err)
		return []Line{}
	}
	return lines
}

func (s *GuestStore) save(ctx context.Context, token string, lines []Line) {
	if strings.TrimSpace(token) == "" {
		return
	}

	raw, err := json.Marshal(lines)
	if err != nil {
		s.warn(ctx, token, "encode guest cart failed", err)
		return
	}
	if err := s.kv.Set(ctx, token, string(raw), s.ttl); err != nil {
		s.warn(ctx, token, "write guest cart failed", err)
	}
}

func (s *GuestStore) warn(ctx context.Context, token, msg string, err error) {
	ctx = s.logger.WithCartToken(ctx, token)
	ctx = s.logger.WithField(ctx, "error", err.Error())
	s.logger.Warn(ctx, msg)
}
