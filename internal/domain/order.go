package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Side string
type OrderType string
type OrderStatus string

const (
	Buy             Side        = "BUY"
	Sell            Side        = "SELL"
	Limit           OrderType   = "LIMIT"
	Market          OrderType   = "MARKET"
	Pending         OrderStatus = "PENDING"
	PartiallyFilled OrderStatus = "PARTIALLY_FILLED"
	Filled          OrderStatus = "FILLED"
	Cancelled       OrderStatus = "CANCELLED"
)

func (s Side) Valid() bool { return s == Buy || s == Sell }

// Opposite returns the side an order of s matches against.
func (s Side) Opposite() Side {
	if s == Buy {
		return Sell
	}
	return Buy
}

func (t OrderType) Valid() bool { return t == Limit || t == Market }

// Terminal reports whether no further transition is allowed from st.
func (st OrderStatus) Terminal() bool { return st == Filled || st == Cancelled }

// Order is a buy or sell instruction for one instrument. Price is the limit
// price and stays zero for market orders.
type Order struct {
	ID           string
	OwnerID      string
	InstrumentID string
	Side         Side
	Type         OrderType
	Price        decimal.Decimal
	Quantity     decimal.Decimal
	Remaining    decimal.Decimal
	Status       OrderStatus
	Sequence     uint64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// FilledQuantity returns the executed part of the order.
func (o *Order) FilledQuantity() decimal.Decimal {
	return o.Quantity.Sub(o.Remaining)
}

// Resting reports whether the order may sit in a book.
func (o *Order) Resting() bool {
	return o.Type == Limit && !o.Status.Terminal() && o.Remaining.IsPositive()
}

// Fill reduces the remaining quantity by qty and moves the status forward.
func (o *Order) Fill(qty decimal.Decimal, at time.Time) {
	o.Remaining = o.Remaining.Sub(qty)
	if o.Remaining.IsZero() {
		o.Status = Filled
	} else {
		o.Status = PartiallyFilled
	}
	o.UpdatedAt = at
}
