package shop

import (
	"time"

	"github.com/google/uuid"
)

type Status string

type Line struct {
	SKU      string
	Quantity int
}

type Audit struct {
	CreatedBy string
}

type Order struct {
	Audit
	ID       int32
	Total    float64
	PlacedAt time.Time `db:"placed_at"`
	Note     *string
	Status   Status
	Ref      uuid.UUID
	Blob     []byte
	Lines    []Line
	Timeout  time.Duration
	internal int
}

func (o Order) Internal() int { return o.internal }
