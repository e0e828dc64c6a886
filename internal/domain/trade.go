package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Trade is one execution between a buy and a sell order. Price is always the
// price of the order that was resting in the book.
type Trade struct {
	ID           string          `json:"id"`
	InstrumentID string          `json:"instrument_id"`
	BuyOrderID   string          `json:"buy_order_id"`
	SellOrderID  string          `json:"sell_order_id"`
	BuyOwnerID   string          `json:"buy_owner_id"`
	SellOwnerID  string          `json:"sell_owner_id"`
	Price        decimal.Decimal `json:"price"`
	Quantity     decimal.Decimal `json:"quantity"`
	ExecutedAt   time.Time       `json:"executed_at"`
}

// CounterOrderID returns the id of the order on the other side of orderID.
func (t *Trade) CounterOrderID(orderID string) string {
	if t.BuyOrderID == orderID {
		return t.SellOrderID
	}
	return t.BuyOrderID
}

// Fill is a trade as seen by one of its owners. It names the counter order
// but never the counterparty.
type Fill struct {
	TradeID        string          `json:"trade_id"`
	InstrumentID   string          `json:"instrument_id"`
	OrderID        string          `json:"order_id"`
	CounterOrderID string          `json:"counter_order_id"`
	Side           Side            `json:"side"`
	Price          decimal.Decimal `json:"price"`
	Quantity       decimal.Decimal `json:"quantity"`
	ExecutedAt     time.Time       `json:"executed_at"`
}

// FillFor returns the fill for the owner of orderID.
func (t *Trade) FillFor(orderID string) Fill {
	side := Buy
	if t.SellOrderID == orderID {
		side = Sell
	}
	return Fill{
		TradeID:        t.ID,
		InstrumentID:   t.InstrumentID,
		OrderID:        orderID,
		CounterOrderID: t.CounterOrderID(orderID),
		Side:           side,
		Price:          t.Price,
		Quantity:       t.Quantity,
		ExecutedAt:     t.ExecutedAt,
	}
}
