package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// BookLevel is the aggregate resting quantity at one price.
type BookLevel struct {
	Price    decimal.Decimal `json:"price"`
	Quantity decimal.Decimal `json:"total_quantity"`
}

type OrderbookSnapshot struct {
	InstrumentID string      `json:"instrument_id"`
	Bids         []BookLevel `json:"bids"`
	Asks         []BookLevel `json:"asks"`
	Version      uint64      `json:"version"`
	Timestamp    time.Time   `json:"timestamp"`
}

// LevelChange is the new aggregate of a level touched by a mutation. A zero
// quantity means the level was removed.
type LevelChange struct {
	Side     Side            `json:"side"`
	Price    decimal.Decimal `json:"price"`
	Quantity decimal.Decimal `json:"quantity"`
}

// OrderbookDelta carries the levels changed by one engine call. Version is
// the book version after the call; a consumer seeing a gap should fetch a
// fresh snapshot.
type OrderbookDelta struct {
	InstrumentID string        `json:"instrument_id"`
	Changes      []LevelChange `json:"changes"`
	Version      uint64        `json:"version"`
	Timestamp    time.Time     `json:"timestamp"`
}

type PriceTick struct {
	InstrumentID string          `json:"instrument_id"`
	Price        decimal.Decimal `json:"price"`
	Change24h    decimal.Decimal `json:"change_24h"`
	Timestamp    time.Time       `json:"timestamp"`
}

type OrderEvent string

const (
	OrderNew       OrderEvent = "NEW"
	OrderCancelled OrderEvent = "CANCELLED"
)

// OrderUpdate notifies an owner about a change of one of their orders that
// is not a fill.
type OrderUpdate struct {
	Event        OrderEvent      `json:"event"`
	OrderID      string          `json:"order_id"`
	InstrumentID string          `json:"instrument_id"`
	Side         Side            `json:"side"`
	Price        decimal.Decimal `json:"price"`
	Remaining    decimal.Decimal `json:"remaining"`
	Status       OrderStatus     `json:"status"`
	Timestamp    time.Time       `json:"timestamp"`
}
