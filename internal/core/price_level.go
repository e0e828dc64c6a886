package core

import (
	"container/list"

	"github.com/olyamironova/artist-exchange/internal/domain"
	"github.com/shopspring/decimal"
)

// PriceLevel is the FIFO queue of resting orders at one price. Queue order is
// arrival order, which is match priority.
type PriceLevel struct {
	Price  decimal.Decimal
	orders *list.List
	volume decimal.Decimal
}

func NewPriceLevel(price decimal.Decimal) *PriceLevel {
	return &PriceLevel{
		Price:  price,
		orders: list.New(),
		volume: decimal.Zero,
	}
}

// Push appends o to the tail of the queue.
func (l *PriceLevel) Push(o *domain.Order) {
	l.orders.PushBack(o)
	l.volume = l.volume.Add(o.Remaining)
}

// Front returns the oldest order, or nil when the level is empty.
func (l *PriceLevel) Front() *domain.Order {
	e := l.orders.Front()
	if e == nil {
		return nil
	}
	return e.Value.(*domain.Order)
}

// PopFront removes and returns the oldest order.
func (l *PriceLevel) PopFront() *domain.Order {
	e := l.orders.Front()
	if e == nil {
		return nil
	}
	o := l.orders.Remove(e).(*domain.Order)
	l.volume = l.volume.Sub(o.Remaining)
	return o
}

// Remove takes orderID out of the queue wherever it sits. Cancels are rare
// next to matches, so a scan is fine.
func (l *PriceLevel) Remove(orderID string) (*domain.Order, bool) {
	for e := l.orders.Front(); e != nil; e = e.Next() {
		o := e.Value.(*domain.Order)
		if o.ID == orderID {
			l.orders.Remove(e)
			l.volume = l.volume.Sub(o.Remaining)
			return o, true
		}
	}
	return nil, false
}

// reduce records qty executed against an order in this level.
func (l *PriceLevel) reduce(qty decimal.Decimal) {
	l.volume = l.volume.Sub(qty)
}

// TotalQuantity is the sum of remaining quantities at this price.
func (l *PriceLevel) TotalQuantity() decimal.Decimal {
	return l.volume
}

func (l *PriceLevel) Len() int { return l.orders.Len() }

func (l *PriceLevel) Empty() bool { return l.orders.Len() == 0 }

// Orders returns the queue in priority order.
func (l *PriceLevel) Orders() []*domain.Order {
	out := make([]*domain.Order, 0, l.orders.Len())
	for e := l.orders.Front(); e != nil; e = e.Next() {
		out = append(out, e.Value.(*domain.Order))
	}
	return out
}

func (l *PriceLevel) level() domain.BookLevel {
	return domain.BookLevel{Price: l.Price, Quantity: l.volume}
}
