package cart

import (
	"encoding/binary"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/davemorenodev/loungelab-backend/pkg/enums"
)

// Line is one cart entry as surfaced to clients, regardless of which store
// holds it. For account carts LineID is the database row id; for guest carts
// it is generated when the line is appended.
type Line struct {
	LineID      string          `json:"line_id"`
	ProductName string          `json:"product_name"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    int             `json:"quantity"`
	Size        enums.Size      `json:"size"`
	AddedAt     time.Time       `json:"added_at"`
}

// LineInput carries the fields needed to add a line to either store.
type LineInput struct {
	ProductName string
	UnitPrice   decimal.Decimal
	Quantity    int
	Size        enums.Size
}

// NewLineID returns a fresh line identifier. When the platform's secure
// random source is unavailable it falls back to a time-seeded pseudo-random
// id rather than failing the add.
func NewLineID() string {
	id, err := uuid.NewRandom()
	if err == nil {
		return id.String()
	}

	src := rand.New(rand.NewSource(time.Now().UnixNano()))
	var buf [16]byte
	binary.BigEndian.PutUint64(buf[:8], src.Uint64())
	binary.BigEndian.PutUint64(buf[8:], src.Uint64())
	return fmt.Sprintf("pr-%x", buf)
}
